package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Data API layout metadata (GET /layouts/{layout}), reduced to what typegen reads
type layoutEnvelope struct {
	Response *layoutMetadata `json:"response"`
	Messages []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"messages"`

	// Bare bodies without the response envelope are accepted too
	layoutMetadata
}

type layoutMetadata struct {
	FieldMetaData  []layoutField            `json:"fieldMetaData"`
	PortalMetaData map[string][]layoutField `json:"portalMetaData"`
}

type layoutField struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Result    string `json:"result"`
	NotEmpty  bool   `json:"notEmpty"`
	AutoEnter bool   `json:"autoEnter"`
	MaxRepeat int    `json:"maxRepeat"`
}

// DecodeLayout reads one Data API layout metadata response as a single table
// named after the layout. Portals become navigation paths; calculation and
// summary fields are read-only. Layouts carry no primary key or field ids.
func DecodeLayout(r io.Reader, layout string) (*Document, error) {
	if strings.TrimSpace(layout) == "" {
		return nil, fmt.Errorf("layout metadata requires a layout name")
	}

	var env layoutEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse layout metadata: %w", err)
	}

	for _, m := range env.Messages {
		if m.Code != "" && m.Code != "0" {
			return nil, fmt.Errorf("layout metadata for %s reports error %s: %s", layout, m.Code, m.Message)
		}
	}

	meta := &env.layoutMetadata
	if env.Response != nil {
		meta = env.Response
	}

	t := Table{
		Name:   layout,
		Fields: make([]Field, 0, len(meta.FieldMetaData)),
	}

	for _, lf := range meta.FieldMetaData {
		kind := strings.ToLower(lf.Type)
		t.Fields = append(t.Fields, Field{
			Name:        lf.Name,
			Type:        lf.Result,
			ReadOnly:    kind == "calculation" || kind == "summary",
			NotNull:     lf.NotEmpty,
			Repetitions: lf.MaxRepeat,
		})
	}

	portals := make([]string, 0, len(meta.PortalMetaData))
	for name := range meta.PortalMetaData {
		portals = append(portals, name)
	}
	sort.Strings(portals)
	t.NavigationPaths = portals

	doc := &Document{Tables: []Table{t}}
	return doc, doc.Validate()
}

package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Format identifies a metadata document encoding
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatEDMX   Format = "edmx"
	FormatLayout Format = "layout"
)

// ParseFormat converts a configuration value to a Format. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatJSON, FormatEDMX, FormatLayout:
		return f, nil
	default:
		return "", fmt.Errorf("unknown metadata format: %q (expected auto, json, edmx or layout)", s)
	}
}

// DecodeJSON reads the native metadata document
func DecodeJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse metadata document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Decode reads a document in the given format. name is used as the table name
// for layout metadata, which does not carry one.
func Decode(r io.Reader, format Format, name string) (*Document, error) {
	if format == FormatAuto || format == "" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata: %w", err)
		}
		format = Detect(name, data)
		r = bytes.NewReader(data)
	}

	switch format {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatEDMX:
		return DecodeEDMX(r)
	case FormatLayout:
		return DecodeLayout(r, layoutName(name))
	default:
		return nil, fmt.Errorf("unknown metadata format: %q", format)
	}
}

// Detect guesses the format of a document from its path and content
func Detect(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".edmx":
		return FormatEDMX
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return FormatEDMX
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err == nil {
		if _, ok := probe["fieldMetaData"]; ok {
			return FormatLayout
		}
		if _, ok := probe["response"]; ok {
			return FormatLayout
		}
	}
	return FormatJSON
}

func layoutName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and decodes a metadata file from fsys
func Load(fsys afero.Fs, path string, format Format) (*Document, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata %s: %w", path, err)
	}

	doc, err := Decode(bytes.NewReader(data), format, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

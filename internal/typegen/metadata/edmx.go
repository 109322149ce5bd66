package metadata

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// OData CSDL ($metadata) document, reduced to what typegen reads
type edmxDocument struct {
	XMLName      xml.Name `xml:"Edmx"`
	DataServices struct {
		Schemas []edmSchema `xml:"Schema"`
	} `xml:"DataServices"`
}

type edmSchema struct {
	Namespace   string          `xml:"Namespace,attr"`
	Alias       string          `xml:"Alias,attr"`
	EntityTypes []edmEntityType `xml:"EntityType"`
	Containers  []edmContainer  `xml:"EntityContainer"`
}

type edmEntityType struct {
	Name string `xml:"Name,attr"`
	Key  struct {
		Refs []struct {
			Name string `xml:"Name,attr"`
		} `xml:"PropertyRef"`
	} `xml:"Key"`
	Properties  []edmProperty   `xml:"Property"`
	Navigation  []edmNavigation `xml:"NavigationProperty"`
	Annotations []edmAnnotation `xml:"Annotation"`
}

type edmProperty struct {
	Name        string          `xml:"Name,attr"`
	Type        string          `xml:"Type,attr"`
	Nullable    string          `xml:"Nullable,attr"`
	Annotations []edmAnnotation `xml:"Annotation"`
}

type edmNavigation struct {
	Name string `xml:"Name,attr"`
	Type string `xml:"Type,attr"`
}

type edmAnnotation struct {
	Term           string `xml:"Term,attr"`
	String         string `xml:"String,attr"`
	Bool           string `xml:"Bool,attr"`
	EnumMember     string `xml:"EnumMember,attr"`
	EnumMemberElem string `xml:"EnumMember"`
	StringElem     string `xml:"String"`
}

type edmContainer struct {
	Name       string         `xml:"Name,attr"`
	EntitySets []edmEntitySet `xml:"EntitySet"`
}

type edmEntitySet struct {
	Name        string          `xml:"Name,attr"`
	EntityType  string          `xml:"EntityType,attr"`
	Annotations []edmAnnotation `xml:"Annotation"`
	Bindings    []struct {
		Path string `xml:"Path,attr"`
	} `xml:"NavigationPropertyBinding"`
}

// Annotation term suffixes. Terms may be written fully qualified
// (Org.OData.Core.V1.Computed) or through an alias (Core.Computed).
const (
	termFieldID     = ".FieldID"
	termTableID     = ".TableID"
	termComputed    = ".Computed"
	termCalculation = ".Calculation"
	termPermissions = ".Permissions"
	termDescription = ".Description"
)

func findAnnotation(anns []edmAnnotation, suffix string) (edmAnnotation, bool) {
	for _, a := range anns {
		if strings.HasSuffix(a.Term, suffix) {
			return a, true
		}
	}
	return edmAnnotation{}, false
}

func (a edmAnnotation) stringValue() string {
	if a.String != "" {
		return a.String
	}
	return strings.TrimSpace(a.StringElem)
}

// boolValue treats an absent Bool attribute as true, per OData tagging terms
func (a edmAnnotation) boolValue() bool {
	if a.Bool == "" {
		return true
	}
	return strings.EqualFold(a.Bool, "true")
}

func (a edmAnnotation) enumValue() string {
	if a.EnumMember != "" {
		return a.EnumMember
	}
	return strings.TrimSpace(a.EnumMemberElem)
}

func isReadOnly(anns []edmAnnotation) bool {
	if a, ok := findAnnotation(anns, termComputed); ok && a.boolValue() {
		return true
	}
	if a, ok := findAnnotation(anns, termCalculation); ok && a.boolValue() {
		return true
	}
	if a, ok := findAnnotation(anns, termPermissions); ok {
		perm := a.enumValue()
		return strings.HasSuffix(perm, "/Read") && !strings.Contains(perm, "Write")
	}
	return false
}

// DecodeEDMX reads an OData $metadata document. Entity sets become tables in
// container order; without a container every entity type becomes a table.
func DecodeEDMX(r io.Reader) (*Document, error) {
	var doc edmxDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse EDMX: %w", err)
	}

	types := make(map[string]*edmEntityType)
	var ordered []*edmEntityType
	var sets []edmEntitySet

	for si := range doc.DataServices.Schemas {
		s := &doc.DataServices.Schemas[si]
		for ti := range s.EntityTypes {
			et := &s.EntityTypes[ti]
			types[et.Name] = et
			if s.Namespace != "" {
				types[s.Namespace+"."+et.Name] = et
			}
			if s.Alias != "" {
				types[s.Alias+"."+et.Name] = et
			}
			ordered = append(ordered, et)
		}
		for _, c := range s.Containers {
			sets = append(sets, c.EntitySets...)
		}
	}

	out := &Document{}

	if len(sets) == 0 {
		for _, et := range ordered {
			out.Tables = append(out.Tables, entityTable(et.Name, et, nil))
		}
		return out, out.Validate()
	}

	for i := range sets {
		set := &sets[i]
		et, ok := types[set.EntityType]
		if !ok {
			return nil, fmt.Errorf("entity set %s references unknown entity type %s", set.Name, set.EntityType)
		}
		out.Tables = append(out.Tables, entityTable(set.Name, et, set))
	}

	return out, out.Validate()
}

func entityTable(name string, et *edmEntityType, set *edmEntitySet) Table {
	keys := make(map[string]bool, len(et.Key.Refs))
	for _, ref := range et.Key.Refs {
		keys[ref.Name] = true
	}

	anns := et.Annotations
	if set != nil {
		anns = append(append([]edmAnnotation{}, set.Annotations...), anns...)
	}

	t := Table{
		Name:   name,
		Fields: make([]Field, 0, len(et.Properties)),
	}
	if a, ok := findAnnotation(anns, termTableID); ok {
		t.ID = a.stringValue()
	}
	if a, ok := findAnnotation(anns, termDescription); ok {
		t.Comment = a.stringValue()
	}

	for _, nav := range et.Navigation {
		t.NavigationPaths = append(t.NavigationPaths, nav.Name)
	}
	if set != nil {
		for _, b := range set.Bindings {
			t.NavigationPaths = append(t.NavigationPaths, b.Path)
		}
	}

	for _, p := range et.Properties {
		f := Field{
			Name:       p.Name,
			Type:       p.Type,
			PrimaryKey: keys[p.Name],
			ReadOnly:   isReadOnly(p.Annotations),
			NotNull:    strings.EqualFold(p.Nullable, "false"),
		}
		if a, ok := findAnnotation(p.Annotations, termFieldID); ok {
			f.ID = a.stringValue()
		}
		if a, ok := findAnnotation(p.Annotations, termDescription); ok {
			f.Comment = a.stringValue()
		}
		t.Fields = append(t.Fields, f)
	}

	return t
}

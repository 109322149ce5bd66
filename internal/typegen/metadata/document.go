// Package metadata holds the raw metadata document typegen consumes and the
// decoders that produce it from the formats FileMaker introspection returns.
package metadata

import (
	"fmt"
	"strings"
)

// Document is the raw, introspected description of a database. Tables and
// fields keep the order the source listed them in.
type Document struct {
	Tables []Table `json:"tables"`
}

// Table is a raw table occurrence
type Table struct {
	Name            string   `json:"name"`
	ID              string   `json:"id,omitempty"`
	Comment         string   `json:"comment,omitempty"`
	NavigationPaths []string `json:"navigationPaths,omitempty"`
	Fields          []Field  `json:"fields"`
}

// Field is a raw field description. Name may carry a "Table::" qualifier and
// Type is the source's own type tag.
type Field struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primaryKey,omitempty"`
	ReadOnly   bool   `json:"readOnly,omitempty"`
	NotNull    bool   `json:"notNull,omitempty"`
	ID         string `json:"id,omitempty"`
	Comment    string `json:"comment,omitempty"`
	// Repetitions is the source's repetition count; more than one makes a list
	Repetitions int `json:"repetitions,omitempty"`
}

// Validate checks the structural requirements every decoder guarantees
func (d *Document) Validate() error {
	for i, t := range d.Tables {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("table %d has no name", i)
		}
		for j, f := range t.Fields {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("table %s: field %d has no name", t.Name, j)
			}
		}
	}
	return nil
}

// Merge appends the tables of other after those of d
func (d *Document) Merge(other *Document) {
	if other == nil {
		return
	}
	d.Tables = append(d.Tables, other.Tables...)
}

// Filter returns a document restricted to the named tables, keeping source
// order, and the requested names that matched nothing. An empty list keeps
// every table.
func (d *Document) Filter(names []string) (*Document, []string) {
	if len(names) == 0 {
		return &Document{Tables: d.Tables}, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = false
	}

	out := &Document{}
	for _, t := range d.Tables {
		if _, ok := wanted[t.Name]; ok {
			wanted[t.Name] = true
			out.Tables = append(out.Tables, t)
		}
	}

	var missing []string
	for _, n := range names {
		if !wanted[n] {
			missing = append(missing, n)
		}
	}
	return out, missing
}

// TableNames lists the table names in order
func (d *Document) TableNames() []string {
	names := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		names = append(names, t.Name)
	}
	return names
}

package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrDuplicateField is returned when two fields of a table share a name
	ErrDuplicateField = errors.New("duplicate field name")
	// ErrMultiplePrimaryKeys is returned when more than one field is a primary key
	ErrMultiplePrimaryKeys = errors.New("more than one primary key field")
	// ErrDuplicateTable is returned when a schema already holds a table of that name
	ErrDuplicateTable = errors.New("duplicate table name")
)

// Table is one named, queryable table occurrence
type Table struct {
	name            string
	externalID      string
	comment         string
	navigationPaths []string
	fields          []Field
	index           map[string]int
	primaryKey      int
}

type tableConfig struct {
	externalID      string
	comment         string
	navigationPaths []string
}

// TableOption configures a table at construction
type TableOption func(*tableConfig)

// TableExternalID records the source's stable identifier for the table
func TableExternalID(id string) TableOption {
	return func(c *tableConfig) { c.externalID = id }
}

// TableComment attaches a human readable description
func TableComment(text string) TableOption {
	return func(c *tableConfig) { c.comment = text }
}

// NavigationPaths records relationship names reachable from the table
func NavigationPaths(names ...string) TableOption {
	return func(c *tableConfig) { c.navigationPaths = append(c.navigationPaths, names...) }
}

// NewTable constructs a table from fields in their source order. Field names
// must be unique and at most one field may be the primary key.
func NewTable(name string, fields []Field, opts ...TableOption) (*Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Table{
		name:            name,
		externalID:      cfg.externalID,
		comment:         strings.TrimSpace(cfg.comment),
		navigationPaths: normalizePaths(cfg.navigationPaths),
		fields:          make([]Field, 0, len(fields)),
		index:           make(map[string]int, len(fields)),
		primaryKey:      -1,
	}

	for _, f := range fields {
		if f.kind == KindUnknown {
			return nil, fmt.Errorf("table %s: field %q was not constructed with NewField", name, f.name)
		}
		if _, exists := t.index[f.name]; exists {
			return nil, fmt.Errorf("table %s: %w: %s", name, ErrDuplicateField, f.name)
		}
		if f.primaryKey {
			if t.primaryKey >= 0 {
				return nil, fmt.Errorf("table %s: %w: %s and %s",
					name, ErrMultiplePrimaryKeys, t.fields[t.primaryKey].name, f.name)
			}
			t.primaryKey = len(t.fields)
		}
		t.index[f.name] = len(t.fields)
		t.fields = append(t.fields, f)
	}

	return t, nil
}

// normalizePaths dedupes and sorts navigation names; they form a set
func normalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (t *Table) Name() string       { return t.name }
func (t *Table) ExternalID() string { return t.externalID }
func (t *Table) Comment() string    { return t.comment }

// Len returns the number of fields
func (t *Table) Len() int { return len(t.fields) }

// Fields returns the fields in source order
func (t *Table) Fields() []Field {
	return slices.Clone(t.fields)
}

// Field returns the named field
func (t *Table) Field(name string) (Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

// HasField returns true if the table has a field with the given name
func (t *Table) HasField(name string) bool {
	_, ok := t.index[name]
	return ok
}

// PrimaryKey returns the primary key field, if one is designated
func (t *Table) PrimaryKey() (Field, bool) {
	if t.primaryKey < 0 {
		return Field{}, false
	}
	return t.fields[t.primaryKey], true
}

// NavigationPaths returns the relationship names in sorted order
func (t *Table) NavigationPaths() []string {
	return slices.Clone(t.navigationPaths)
}

// Schema is the ordered set of tables produced by one normalization
type Schema struct {
	tables []*Table
	index  map[string]int
}

// NewSchema creates an empty schema
func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// Add appends a table, rejecting duplicate names
func (s *Schema) Add(t *Table) error {
	if _, exists := s.index[t.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, t.name)
	}
	s.index[t.name] = len(s.tables)
	s.tables = append(s.tables, t)
	return nil
}

// Tables returns the tables in source order
func (s *Schema) Tables() []*Table {
	return slices.Clone(s.tables)
}

// Table returns the named table
func (s *Schema) Table(name string) (*Table, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.tables[i], true
}

// Len returns the number of tables
func (s *Schema) Len() int { return len(s.tables) }

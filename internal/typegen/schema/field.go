package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyName is returned when a field or table has no name
	ErrEmptyName = errors.New("name cannot be empty")
	// ErrInvalidKind is returned when a field is constructed with an unknown kind
	ErrInvalidKind = errors.New("invalid field kind")
)

// Field is the canonical, immutable description of one field
type Field struct {
	name       string
	kind       Kind
	primaryKey bool
	notNull    bool
	readOnly   bool
	validators *ValidatorPair
	externalID string
	comment    string
}

type fieldConfig struct {
	primaryKey bool
	notNull    bool
	readOnly   bool
	read       string
	write      string
	externalID string
	comment    string
}

// FieldOption configures a field at construction
type FieldOption func(*fieldConfig)

// PrimaryKey marks the field as the table's primary key. It implies NotNull.
func PrimaryKey() FieldOption {
	return func(c *fieldConfig) { c.primaryKey = true }
}

// NotNull marks the field as never empty
func NotNull() FieldOption {
	return func(c *fieldConfig) { c.notNull = true }
}

// ReadOnly marks the field as computed or otherwise not writable
func ReadOnly() FieldOption {
	return func(c *fieldConfig) { c.readOnly = true }
}

// WithValidators installs a validator override. Either side may be empty, in
// which case it is derived from the field's kind.
func WithValidators(read, write string) FieldOption {
	return func(c *fieldConfig) {
		c.read = read
		c.write = write
	}
}

// ExternalID records the source's stable identifier for the field
func ExternalID(id string) FieldOption {
	return func(c *fieldConfig) { c.externalID = id }
}

// Comment attaches a human readable description
func Comment(text string) FieldOption {
	return func(c *fieldConfig) { c.comment = text }
}

// NewField validates its inputs and constructs a Field
func NewField(name string, kind Kind, opts ...FieldOption) (Field, error) {
	if strings.TrimSpace(name) == "" {
		return Field{}, ErrEmptyName
	}
	if !kind.Valid() {
		return Field{}, fmt.Errorf("field %s: %w: %d", name, ErrInvalidKind, int(kind))
	}

	var cfg fieldConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return Field{
		name:       name,
		kind:       kind,
		primaryKey: cfg.primaryKey,
		notNull:    cfg.notNull || cfg.primaryKey,
		readOnly:   cfg.readOnly,
		validators: completeValidators(kind, cfg.read, cfg.write),
		externalID: cfg.externalID,
		comment:    strings.TrimSpace(cfg.comment),
	}, nil
}

func (f Field) Name() string       { return f.name }
func (f Field) Kind() Kind         { return f.kind }
func (f Field) IsPrimaryKey() bool { return f.primaryKey }
func (f Field) IsNotNull() bool    { return f.notNull }
func (f Field) IsReadOnly() bool   { return f.readOnly }
func (f Field) ExternalID() string { return f.externalID }
func (f Field) Comment() string    { return f.comment }

// Validators returns the field's validator override, if any
func (f Field) Validators() (ValidatorPair, bool) {
	if f.validators == nil {
		return ValidatorPair{}, false
	}
	return *f.validators, true
}

// ReadValidator returns the expression used to validate values read from the
// source: the override's read side, or the kind's default.
func (f Field) ReadValidator() string {
	if f.validators != nil {
		return f.validators.Read
	}
	return DefaultValidator(f.kind)
}

// AttributeKind identifies one optional qualifier of a field
type AttributeKind int

// Attribute kinds in their canonical serialization order
const (
	AttrPrimaryKey AttributeKind = iota
	AttrNotNull
	AttrReadOnly
	AttrReadValidator
	AttrWriteValidator
	AttrExternalID
	AttrComment
)

// String returns the string representation of the attribute kind
func (a AttributeKind) String() string {
	switch a {
	case AttrPrimaryKey:
		return "primaryKey"
	case AttrNotNull:
		return "notNull"
	case AttrReadOnly:
		return "readOnly"
	case AttrReadValidator:
		return "readValidator"
	case AttrWriteValidator:
		return "writeValidator"
	case AttrExternalID:
		return "entityId"
	case AttrComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Attribute is one set qualifier of a field. Value is empty for flags.
type Attribute struct {
	Kind  AttributeKind
	Value string
}

// Attributes returns the field's set qualifiers in canonical order: primary key,
// not null, read only, read validator, write validator, external id, comment.
// Regeneration is byte-stable only because this order never varies.
func (f Field) Attributes() []Attribute {
	attrs := make([]Attribute, 0, 7)
	if f.primaryKey {
		attrs = append(attrs, Attribute{Kind: AttrPrimaryKey})
	}
	if f.notNull {
		attrs = append(attrs, Attribute{Kind: AttrNotNull})
	}
	if f.readOnly {
		attrs = append(attrs, Attribute{Kind: AttrReadOnly})
	}
	if f.validators != nil {
		attrs = append(attrs,
			Attribute{Kind: AttrReadValidator, Value: f.validators.Read},
			Attribute{Kind: AttrWriteValidator, Value: f.validators.Write},
		)
	}
	if f.externalID != "" {
		attrs = append(attrs, Attribute{Kind: AttrExternalID, Value: f.externalID})
	}
	if f.comment != "" {
		attrs = append(attrs, Attribute{Kind: AttrComment, Value: f.comment})
	}
	return attrs
}

// String returns a compact description used in logs and test failures
func (f Field) String() string {
	var b strings.Builder
	b.WriteString(f.name)
	b.WriteString(": ")
	b.WriteString(f.kind.String())
	for _, a := range f.Attributes() {
		b.WriteString(" @")
		b.WriteString(a.Kind.String())
	}
	return b.String()
}

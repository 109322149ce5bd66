package normalize

import (
	"fmt"
	"strings"

	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
	"github.com/proofkit/proofkit/internal/typegen/schema"
)

// Override is a user-declared remapping of one field. Table is optional; an
// override without one applies to the field name in every table.
type Override struct {
	Table     string
	Field     string
	Kind      string
	Validator string
	Read      string
	Write     string
}

func (o Override) target() string {
	if o.Table == "" {
		return o.Field
	}
	return o.Table + "." + o.Field
}

// resolved is a validated override
type resolved struct {
	Override
	kind  schema.Kind
	read  string
	write string
}

type overrideKey struct {
	table string
	field string
}

// Overrides is a validated set of field overrides
type Overrides struct {
	scoped map[overrideKey]*resolved
	global map[string]*resolved
	all    []*resolved
}

// NewOverrides validates the declared overrides. Every invalid entry is
// reported; the returned set holds only the valid ones.
func NewOverrides(list []Override) (*Overrides, diagnostics.List) {
	o := &Overrides{
		scoped: make(map[overrideKey]*resolved),
		global: make(map[string]*resolved),
	}
	var diags diagnostics.List

	for _, raw := range list {
		r, err := resolve(raw)
		if err != nil {
			diags = append(diags, diagnostics.InvalidOverride(raw.Table, raw.Field, err.Error()))
			continue
		}

		if r.Table == "" {
			if _, dup := o.global[r.Field]; dup {
				diags = append(diags, diagnostics.InvalidOverride("", r.Field,
					fmt.Sprintf("override for %q declared more than once", r.target())))
				continue
			}
			o.global[r.Field] = r
		} else {
			key := overrideKey{table: r.Table, field: r.Field}
			if _, dup := o.scoped[key]; dup {
				diags = append(diags, diagnostics.InvalidOverride(r.Table, r.Field,
					fmt.Sprintf("override for %q declared more than once", r.target())))
				continue
			}
			o.scoped[key] = r
		}
		o.all = append(o.all, r)
	}

	return o, diags
}

func resolve(raw Override) (*resolved, error) {
	raw.Table = strings.TrimSpace(raw.Table)
	raw.Field = strings.TrimSpace(raw.Field)
	if raw.Field == "" {
		return nil, fmt.Errorf("override has no field name")
	}

	r := &resolved{Override: raw, read: raw.Read, write: raw.Write}

	if raw.Kind != "" {
		k, err := schema.ParseKind(raw.Kind)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", raw.target(), err)
		}
		r.kind = k
	}

	if raw.Validator != "" {
		if raw.Read != "" || raw.Write != "" {
			return nil, fmt.Errorf("override for %q: validator preset cannot be combined with read/write", raw.target())
		}
		p, err := schema.LookupPreset(raw.Validator)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", raw.target(), err)
		}
		if r.kind == schema.KindUnknown {
			r.kind = p.Kind
		}
		r.read, r.write = p.Read, p.Write
	}

	if r.kind == schema.KindUnknown && r.read == "" && r.write == "" {
		return nil, fmt.Errorf("override for %q changes nothing: set kind, validator, read or write", raw.target())
	}

	return r, nil
}

// lookup finds the override for a field, preferring a table-scoped entry
func (o *Overrides) lookup(table, field string) (*resolved, bool) {
	if o == nil {
		return nil, false
	}
	if r, ok := o.scoped[overrideKey{table: table, field: field}]; ok {
		return r, true
	}
	r, ok := o.global[field]
	return r, ok
}

// Len returns the number of valid overrides
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.all)
}

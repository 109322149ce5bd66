package schema

import (
	"fmt"
	"strings"
)

// Validator expressions are written in the generated code's validator language (Zod).

// DefaultValidator returns the validator expression a kind reads and writes with
// when no override is installed.
func DefaultValidator(k Kind) string {
	switch k {
	case KindText, KindContainer:
		return "z.string()"
	case KindNumber:
		return "z.number()"
	case KindDate:
		return "z.iso.date()"
	case KindTimestamp:
		return "z.iso.datetime()"
	case KindList:
		return "z.array(z.string())"
	default:
		return "z.unknown()"
	}
}

// ValidatorPair is the read/write validator override of a field. Both sides are
// always populated on a constructed Field.
type ValidatorPair struct {
	Read  string
	Write string
}

// Preset is a named validator pair users can reference from configuration
type Preset struct {
	Name string
	// Kind is the kind the preset applies to; an override using the preset
	// without an explicit kind forces this kind.
	Kind  Kind
	Read  string
	Write string
}

var presets = map[string]Preset{
	"boolean": {
		Name:  "boolean",
		Kind:  KindNumber,
		Read:  "z.coerce.boolean()",
		Write: "z.boolean().transform((v) => (v ? 1 : 0))",
	},
}

// LookupPreset returns the named validator preset
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown validator preset: %q", name)
	}
	return p, nil
}

// completeValidators derives the missing side of a partially specified pair from
// the kind's default validator. It returns nil when neither side is set.
func completeValidators(k Kind, read, write string) *ValidatorPair {
	read = strings.TrimSpace(read)
	write = strings.TrimSpace(write)
	if read == "" && write == "" {
		return nil
	}
	if read == "" {
		read = DefaultValidator(k)
	}
	if write == "" {
		write = DefaultValidator(k)
	}
	return &ValidatorPair{Read: read, Write: write}
}

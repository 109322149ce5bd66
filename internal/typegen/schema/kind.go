// Package schema provides the canonical model typegen generates from: field
// descriptors with one of six storage kinds, and table occurrences holding an
// ordered set of fields plus table-level metadata.
//
// Values in this package are immutable once constructed. They are rebuilt from
// the latest metadata on every run and never persisted.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the canonical storage kind of a field
type Kind int

const (
	// KindUnknown is the zero value and never appears on a constructed Field
	KindUnknown Kind = iota
	KindText
	KindNumber
	KindDate
	KindTimestamp
	KindContainer
	KindList
)

// Kinds lists every valid kind in declaration order
var Kinds = []Kind{KindText, KindNumber, KindDate, KindTimestamp, KindContainer, KindList}

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindContainer:
		return "container"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the six canonical kinds
func (k Kind) Valid() bool {
	return k >= KindText && k <= KindList
}

// ParseKind converts a kind name to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return KindText, nil
	case "number":
		return KindNumber, nil
	case "date":
		return KindDate, nil
	case "timestamp":
		return KindTimestamp, nil
	case "container":
		return KindContainer, nil
	case "list":
		return KindList, nil
	default:
		return KindUnknown, fmt.Errorf("unknown field kind: %q", s)
	}
}

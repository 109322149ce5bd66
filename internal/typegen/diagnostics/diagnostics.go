// Package diagnostics defines the structured problems reported by a typegen run.
// Every diagnostic carries a stable code, a severity, and the table and field it
// concerns so the CLI can surface all problems of a run in one pass.
package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Code is a stable identifier for a class of typegen problem
type Code string

// Severity indicates how a diagnostic affects generation
type Severity string

const (
	// SeverityError means the affected table (or the run) was not generated
	SeverityError Severity = "error"
	// SeverityWarning means generation proceeded with a degraded result
	SeverityWarning Severity = "warning"
	// SeverityInfo is purely informational
	SeverityInfo Severity = "info"
)

// Normalization codes (TG100-199)
const (
	CodeUnsupportedSourceType Code = "TG100"
	CodeFieldNameCollision    Code = "TG101"
	CodeAmbiguousPrimaryKey   Code = "TG102"
	CodeEmptyTable            Code = "TG103"
	CodeUnusedOverride        Code = "TG104"
	CodeInvalidOverride       Code = "TG105"
	CodeDuplicateTable        Code = "TG106"
	CodeInvalidField          Code = "TG107"
)

// Output codes (TG200-299)
const (
	CodeFilesystemWriteFailure Code = "TG200"
	CodeOutputPathCollision    Code = "TG201"
	CodeStaleGeneratedFile     Code = "TG202"
	CodeGeneratedOutOfDate     Code = "TG203"
	CodeOverrideMissing        Code = "TG204"
)

// Sentinel errors, one per code. A *Diagnostic matches its sentinel with errors.Is.
var (
	ErrUnsupportedSourceType  = errors.New("unsupported source type")
	ErrFieldNameCollision     = errors.New("field name collision")
	ErrAmbiguousPrimaryKey    = errors.New("ambiguous primary key")
	ErrEmptyTable             = errors.New("table has no fields")
	ErrUnusedOverride         = errors.New("unused override")
	ErrInvalidOverride        = errors.New("invalid override")
	ErrDuplicateTable         = errors.New("duplicate table")
	ErrInvalidField           = errors.New("invalid field")
	ErrFilesystemWriteFailure = errors.New("filesystem write failure")
	ErrOutputPathCollision    = errors.New("output path collision")
	ErrStaleGeneratedFile     = errors.New("stale generated file")
	ErrGeneratedOutOfDate     = errors.New("generated file out of date")
	ErrOverrideMissing        = errors.New("override file missing")
)

var sentinels = map[Code]error{
	CodeUnsupportedSourceType:  ErrUnsupportedSourceType,
	CodeFieldNameCollision:     ErrFieldNameCollision,
	CodeAmbiguousPrimaryKey:    ErrAmbiguousPrimaryKey,
	CodeEmptyTable:             ErrEmptyTable,
	CodeUnusedOverride:         ErrUnusedOverride,
	CodeInvalidOverride:        ErrInvalidOverride,
	CodeDuplicateTable:         ErrDuplicateTable,
	CodeInvalidField:           ErrInvalidField,
	CodeFilesystemWriteFailure: ErrFilesystemWriteFailure,
	CodeOutputPathCollision:    ErrOutputPathCollision,
	CodeStaleGeneratedFile:     ErrStaleGeneratedFile,
	CodeGeneratedOutOfDate:     ErrGeneratedOutOfDate,
	CodeOverrideMissing:        ErrOverrideMissing,
}

// Diagnostic is a single problem found during a run
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Table    string   `json:"table,omitempty"`
	Field    string   `json:"field,omitempty"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
	// Detail holds supplementary output such as a unified diff
	Detail string `json:"detail,omitempty"`
	Cause  error  `json:"-"`
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(string(d.Code))
	b.WriteString(": ")
	if d.Table != "" {
		b.WriteString(d.Table)
		if d.Field != "" {
			b.WriteString(".")
			b.WriteString(d.Field)
		}
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	if d.Cause != nil {
		b.WriteString(": ")
		b.WriteString(d.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the code's sentinel and the underlying cause
func (d *Diagnostic) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[d.Code]; ok {
		errs = append(errs, s)
	}
	if d.Cause != nil {
		errs = append(errs, d.Cause)
	}
	return errs
}

// IsError reports whether the diagnostic has error severity
func (d *Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

func newDiagnostic(code Code, sev Severity, table, field, msg string) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: sev,
		Table:    table,
		Field:    field,
		Message:  msg,
	}
}

// UnsupportedSourceType creates a TG100 error
func UnsupportedSourceType(table, field, sourceType string) *Diagnostic {
	return newDiagnostic(CodeUnsupportedSourceType, SeverityError, table, field,
		fmt.Sprintf("source type %q has no canonical kind", sourceType))
}

// FieldNameCollision creates a TG101 error
func FieldNameCollision(table, name, first, second string) *Diagnostic {
	return newDiagnostic(CodeFieldNameCollision, SeverityError, table, name,
		fmt.Sprintf("fields %q and %q both normalize to %q", first, second, name))
}

// AmbiguousPrimaryKey creates a TG102 warning. candidates may be empty.
func AmbiguousPrimaryKey(table string, candidates []string) *Diagnostic {
	msg := "no primary key field; generating without a primary key"
	if len(candidates) > 1 {
		msg = fmt.Sprintf("multiple primary key candidates (%s); generating without a primary key",
			strings.Join(candidates, ", "))
	}
	return newDiagnostic(CodeAmbiguousPrimaryKey, SeverityWarning, table, "", msg)
}

// EmptyTable creates a TG103 warning
func EmptyTable(table string) *Diagnostic {
	return newDiagnostic(CodeEmptyTable, SeverityWarning, table, "",
		"table has no fields; generating an empty definition")
}

// UnusedOverride creates a TG104 info diagnostic
func UnusedOverride(table, field string) *Diagnostic {
	target := field
	if table != "" {
		target = table + "." + field
	}
	return newDiagnostic(CodeUnusedOverride, SeverityInfo, table, field,
		fmt.Sprintf("override for %q matched no field", target))
}

// InvalidOverride creates a TG105 error
func InvalidOverride(table, field, reason string) *Diagnostic {
	return newDiagnostic(CodeInvalidOverride, SeverityError, table, field, reason)
}

// DuplicateTable creates a TG106 error
func DuplicateTable(table string) *Diagnostic {
	return newDiagnostic(CodeDuplicateTable, SeverityError, table, "",
		"table appears more than once in the metadata; later definition skipped")
}

// InvalidField creates a TG107 error for a field the model rejected
func InvalidField(table, field string, cause error) *Diagnostic {
	d := newDiagnostic(CodeInvalidField, SeverityError, table, field, "field rejected")
	d.Cause = cause
	return d
}

// FilesystemWriteFailure creates a TG200 error
func FilesystemWriteFailure(table, path string, cause error) *Diagnostic {
	d := newDiagnostic(CodeFilesystemWriteFailure, SeverityError, table, "",
		fmt.Sprintf("failed to write %s", path))
	d.Path = path
	d.Cause = cause
	return d
}

// OutputPathCollision creates a TG201 error
func OutputPathCollision(table, other, path string) *Diagnostic {
	d := newDiagnostic(CodeOutputPathCollision, SeverityError, table, "",
		fmt.Sprintf("output path %s is already used by table %q", path, other))
	d.Path = path
	return d
}

// StaleGeneratedFile creates a TG202 info diagnostic
func StaleGeneratedFile(path string, removed bool) *Diagnostic {
	msg := "generated file no longer matches any table"
	if removed {
		msg = "removed generated file that no longer matches any table"
	}
	d := newDiagnostic(CodeStaleGeneratedFile, SeverityInfo, "", "", msg)
	d.Path = path
	return d
}

// GeneratedOutOfDate creates a TG203 error
func GeneratedOutOfDate(table, path, diff string) *Diagnostic {
	d := newDiagnostic(CodeGeneratedOutOfDate, SeverityError, table, "",
		fmt.Sprintf("%s is out of date", path))
	d.Path = path
	d.Detail = diff
	return d
}

// OverrideMissing creates a TG204 error
func OverrideMissing(table, path string) *Diagnostic {
	d := newDiagnostic(CodeOverrideMissing, SeverityError, table, "",
		fmt.Sprintf("%s does not exist", path))
	d.Path = path
	return d
}

// List is an ordered collection of diagnostics
type List []*Diagnostic

// HasErrors reports whether any diagnostic has error severity
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics with the given severity
func (l List) Filter(sev Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// ForTable returns the diagnostics concerning the named table
func (l List) ForTable(table string) List {
	var out List
	for _, d := range l {
		if d.Table == table {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of errors, warnings and infos
func (l List) Count() (errs, warnings, infos int) {
	for _, d := range l {
		switch d.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			infos++
		}
	}
	return errs, warnings, infos
}

// ToJSON renders the list for machine consumption
func (l List) ToJSON() (string, error) {
	if l == nil {
		l = List{}
	}
	bytes, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

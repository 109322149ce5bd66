// Package normalize converts a raw metadata document into the canonical schema
// model, stripping table qualifiers from field names, mapping source type tags
// to canonical kinds and applying user-declared overrides.
package normalize

import (
	"strings"

	"github.com/proofkit/proofkit/internal/typegen/schema"
)

// sourceTypes maps lower-cased source type tags to canonical kinds. It covers
// FileMaker Data API result types and the OData EDM primitives FileMaker emits.
var sourceTypes = map[string]schema.Kind{
	// Data API
	"text":      schema.KindText,
	"varchar":   schema.KindText,
	"time":      schema.KindText,
	"number":    schema.KindNumber,
	"date":      schema.KindDate,
	"timestamp": schema.KindTimestamp,
	"container": schema.KindContainer,
	"list":      schema.KindList,

	// OData
	"edm.string":         schema.KindText,
	"edm.guid":           schema.KindText,
	"edm.timeofday":      schema.KindText,
	"edm.decimal":        schema.KindNumber,
	"edm.double":         schema.KindNumber,
	"edm.single":         schema.KindNumber,
	"edm.byte":           schema.KindNumber,
	"edm.sbyte":          schema.KindNumber,
	"edm.int16":          schema.KindNumber,
	"edm.int32":          schema.KindNumber,
	"edm.int64":          schema.KindNumber,
	"edm.date":           schema.KindDate,
	"edm.datetimeoffset": schema.KindTimestamp,
	"edm.binary":         schema.KindContainer,
	"edm.stream":         schema.KindContainer,
}

// KindForSourceType maps a source type tag to its canonical kind. Collection
// types map to list. The mapping is fixed; unknown tags report false.
func KindForSourceType(tag string) (schema.Kind, bool) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if strings.HasPrefix(t, "collection(") && strings.HasSuffix(t, ")") {
		return schema.KindList, true
	}
	k, ok := sourceTypes[t]
	return k, ok
}

// StripQualifier removes a "table::" prefix from a field name when the
// qualifier names the owning table. Related-table qualifiers are kept.
func StripQualifier(table, name string) string {
	i := strings.Index(name, "::")
	if i <= 0 {
		return name
	}
	if !strings.EqualFold(name[:i], table) {
		return name
	}
	if rest := name[i+2:]; strings.TrimSpace(rest) != "" {
		return rest
	}
	return name
}

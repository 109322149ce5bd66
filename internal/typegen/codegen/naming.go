package codegen

import (
	"bytes"
	"encoding/json"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// reserved holds the names a generated module cannot bind: ECMAScript and
// TypeScript reserved words (modules are strict mode) and every name the
// generated file imports.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "await": true, "let": true,
	"static": true, "implements": true, "interface": true, "package": true,
	"private": true, "protected": true, "public": true, "arguments": true,
	"eval": true, "undefined": true, "NaN": true, "Infinity": true,

	"z":                 true,
	"fmTableOccurrence": true,
	"textField":         true,
	"numberField":       true,
	"dateField":         true,
	"timestampField":    true,
	"containerField":    true,
	"listField":         true,
}

// Identifier derives a TypeScript identifier (and file name stem) from a table
// name. Characters that are not letters, digits, '_' or '$' become '_', and a
// name the module cannot bind gets a trailing '_'.
func Identifier(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	id := b.String()
	if id == "" {
		return "_"
	}
	if first := []rune(id)[0]; unicode.IsDigit(first) {
		return "_" + id
	}
	if reserved[id] {
		return id + "_"
	}
	return id
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) {
			return false
		}
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// propertyKey renders an object key, quoting it when it is not an identifier
func propertyKey(name string) string {
	if isIdentifier(name) {
		return name
	}
	return jsString(name)
}

// jsString renders s as a double-quoted JavaScript string literal
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding a string cannot fail
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// docComment renders text as a JSDoc block at the given indent
func docComment(text, indent string) string {
	text = strings.ReplaceAll(text, "*/", "*\\/")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 1 {
		return indent + "/** " + lines[0] + " */\n"
	}

	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			b.WriteString(indent + " *\n")
		} else {
			b.WriteString(indent + " * " + l + "\n")
		}
	}
	b.WriteString(indent + " */\n")
	return b.String()
}

// Layout derives the output paths of a table's file pair
type Layout struct {
	// OutDir holds the override files
	OutDir string
	// GeneratedDir is the tool-owned subdirectory of OutDir
	GeneratedDir string
}

// GeneratedDirPath returns the directory holding generated files
func (l Layout) GeneratedDirPath() string {
	return filepath.Join(l.OutDir, l.GeneratedDir)
}

// GeneratedPath returns the path of a table's generated file
func (l Layout) GeneratedPath(ident string) string {
	return filepath.Join(l.OutDir, l.GeneratedDir, ident+".ts")
}

// OverridePath returns the path of a table's override file
func (l Layout) OverridePath(ident string) string {
	return filepath.Join(l.OutDir, ident+".ts")
}

// GeneratedImport returns the module specifier the override file imports the
// generated file with
func (l Layout) GeneratedImport(ident string) string {
	return "./" + path.Join(filepath.ToSlash(l.GeneratedDir), ident)
}

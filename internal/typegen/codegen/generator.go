// Package codegen renders canonical tables into TypeScript source: a generated
// file holding the table occurrence definition, its Zod validator and inferred
// type, and a pass-through override file re-exporting those symbols.
//
// Rendering is a pure function of the table and the generator options, so
// regenerating an unchanged table yields byte-identical output.
package codegen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/proofkit/proofkit/internal/typegen/schema"
)

const (
	DefaultRuntimeModule = "@proofkit/fmodata"
	DefaultZodModule     = "zod/v4"
)

// Options configures the generated code
type Options struct {
	// RuntimeModule provides fmTableOccurrence and the field builders
	RuntimeModule string
	// ZodModule provides z
	ZodModule string
}

// Generator renders tables to TypeScript
type Generator struct {
	opts Options
}

// NewGenerator creates a new code generator
func NewGenerator(opts Options) *Generator {
	if opts.RuntimeModule == "" {
		opts.RuntimeModule = DefaultRuntimeModule
	}
	if opts.ZodModule == "" {
		opts.ZodModule = DefaultZodModule
	}
	return &Generator{opts: opts}
}

// Export is a symbol exported by a generated file
type Export struct {
	Name     string
	TypeOnly bool
}

// Output is the rendered generated file of one table
type Output struct {
	Table      string
	Identifier string
	Content    []byte
	Exports    []Export
}

// builder returns the field builder function for a kind
func builder(k schema.Kind) (string, error) {
	switch k {
	case schema.KindText:
		return "textField", nil
	case schema.KindNumber:
		return "numberField", nil
	case schema.KindDate:
		return "dateField", nil
	case schema.KindTimestamp:
		return "timestampField", nil
	case schema.KindContainer:
		return "containerField", nil
	case schema.KindList:
		return "listField", nil
	default:
		return "", fmt.Errorf("no field builder for kind %s", k)
	}
}

// Generate renders the generated file for a table
func (g *Generator) Generate(t *schema.Table) (*Output, error) {
	ident := Identifier(t.Name())
	fields := t.Fields()

	builders := map[string]bool{"fmTableOccurrence": true}
	chains := make([]string, len(fields))
	for i, f := range fields {
		b, err := builder(f.Kind())
		if err != nil {
			return nil, fmt.Errorf("table %s field %s: %w", t.Name(), f.Name(), err)
		}
		builders[b] = true
		chains[i] = b + "()" + renderChain(f)
	}

	imports := make([]string, 0, len(builders))
	for name := range builders {
		imports = append(imports, name)
	}
	sort.Strings(imports)

	var buf bytes.Buffer

	buf.WriteString("// Code generated by proofkit typegen. DO NOT EDIT.\n")
	fmt.Fprintf(&buf, "// Source: table occurrence %s\n", jsString(t.Name()))
	buf.WriteString("// This file is overwritten on every run. Customize it through the override file.\n\n")

	fmt.Fprintf(&buf, "import { z } from %s;\n", jsString(g.opts.ZodModule))
	fmt.Fprintf(&buf, "import { %s } from %s;\n\n", strings.Join(imports, ", "), jsString(g.opts.RuntimeModule))

	// Table occurrence definition
	if t.Comment() != "" {
		buf.WriteString(docComment(t.Comment(), ""))
	}
	fmt.Fprintf(&buf, "export const %s = fmTableOccurrence(\n", ident)
	fmt.Fprintf(&buf, "  %s,\n", jsString(t.Name()))
	if len(fields) == 0 {
		buf.WriteString("  {},\n")
	} else {
		buf.WriteString("  {\n")
		for i, f := range fields {
			fmt.Fprintf(&buf, "    %s: %s,\n", propertyKey(f.Name()), chains[i])
		}
		buf.WriteString("  },\n")
	}
	g.writeTableMetadata(&buf, t)
	buf.WriteString(");\n\n")

	// Validator and inferred type
	fmt.Fprintf(&buf, "export const Z%s = z.object({", ident)
	if len(fields) == 0 {
		buf.WriteString("});\n\n")
	} else {
		buf.WriteString("\n")
		for _, f := range fields {
			fmt.Fprintf(&buf, "  %s: %s,\n", propertyKey(f.Name()), zodType(f))
		}
		buf.WriteString("});\n\n")
	}
	fmt.Fprintf(&buf, "export type T%s = z.infer<typeof Z%s>;\n", ident, ident)

	return &Output{
		Table:      t.Name(),
		Identifier: ident,
		Content:    buf.Bytes(),
		Exports: []Export{
			{Name: ident},
			{Name: "Z" + ident},
			{Name: "T" + ident, TypeOnly: true},
		},
	}, nil
}

func (g *Generator) writeTableMetadata(buf *bytes.Buffer, t *schema.Table) {
	paths := t.NavigationPaths()
	if t.ExternalID() == "" && t.Comment() == "" && len(paths) == 0 {
		return
	}

	buf.WriteString("  {\n")
	if t.ExternalID() != "" {
		fmt.Fprintf(buf, "    entityId: %s,\n", jsString(t.ExternalID()))
	}
	if t.Comment() != "" {
		fmt.Fprintf(buf, "    comment: %s,\n", jsString(t.Comment()))
	}
	if len(paths) > 0 {
		quoted := make([]string, len(paths))
		for i, p := range paths {
			quoted[i] = jsString(p)
		}
		fmt.Fprintf(buf, "    navigationPaths: [%s],\n", strings.Join(quoted, ", "))
	}
	buf.WriteString("  },\n")
}

// renderChain renders a field's qualifiers as builder calls, in the fixed
// order schema.Field.Attributes guarantees
func renderChain(f schema.Field) string {
	var b strings.Builder
	for _, a := range f.Attributes() {
		switch a.Kind {
		case schema.AttrPrimaryKey, schema.AttrNotNull, schema.AttrReadOnly:
			fmt.Fprintf(&b, ".%s()", a.Kind)
		case schema.AttrReadValidator, schema.AttrWriteValidator:
			fmt.Fprintf(&b, ".%s(%s)", a.Kind, a.Value)
		case schema.AttrExternalID, schema.AttrComment:
			fmt.Fprintf(&b, ".%s(%s)", a.Kind, jsString(a.Value))
		}
	}
	return b.String()
}

// zodType renders the read-side validator of a field
func zodType(f schema.Field) string {
	expr := f.ReadValidator()
	if !f.IsNotNull() {
		expr += ".nullable()"
	}
	return expr
}

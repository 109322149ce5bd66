package codegen

import (
	"bytes"
	"fmt"
	"strings"
)

// Override renders the pass-through override file for a generated output. It
// imports every exported symbol from importPath and re-exports it unchanged.
func (g *Generator) Override(out *Output, importPath string) []byte {
	var buf bytes.Buffer

	buf.WriteString("/**\n")
	fmt.Fprintf(&buf, " * Customizations for the %s table occurrence.\n", jsString(out.Table))
	buf.WriteString(" *\n")
	buf.WriteString(" * proofkit typegen created this file once and will never overwrite it:\n")
	buf.WriteString(" * your edits here are preserved when types are regenerated. The generated\n")
	fmt.Fprintf(&buf, " * definitions in %s.ts are replaced on every run.\n", importPath)
	buf.WriteString(" */\n")

	var values, types, imports []string
	for _, e := range out.Exports {
		if e.TypeOnly {
			types = append(types, e.Name)
			imports = append(imports, "type "+e.Name)
		} else {
			values = append(values, e.Name)
			imports = append(imports, e.Name)
		}
	}

	fmt.Fprintf(&buf, "import { %s } from %s;\n\n", strings.Join(imports, ", "), jsString(importPath))
	if len(values) > 0 {
		fmt.Fprintf(&buf, "export { %s };\n", strings.Join(values, ", "))
	}
	if len(types) > 0 {
		fmt.Fprintf(&buf, "export type { %s };\n", strings.Join(types, ", "))
	}

	return buf.Bytes()
}

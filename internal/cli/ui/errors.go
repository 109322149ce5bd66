package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Location     string
	Problem      string
	Consequence  string
	Detail       string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func levelStyle(level ErrorLevel) (header, body *color.Color, symbol string) {
	switch level {
	case ErrorLevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
}

// FormatError creates a standardized message with suggestions and help commands
//
// Example output:
//
//	❌ TG100 UNSUPPORTED SOURCE TYPE: Assets.payload
//	   source type "blob_v2" has no canonical kind
//
//	   Table Assets was not generated.
//
//	   → Force a kind: add an override with field: payload and kind: text
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor, bodyColor, symbol := levelStyle(opts.Level)
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	switch {
	case opts.Context != "" && opts.Location != "":
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Location)
	case opts.Context != "":
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
	default:
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Context != "" && opts.Problem != "" {
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if opts.Detail != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(opts.Detail, "\n"), "\n") {
			fmt.Fprintf(&b, "   %s\n", line)
		}
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// diagnosticHelp holds the title, consequence and help text shown per code
type diagnosticHelp struct {
	title       string
	consequence string
	help        []string
}

var diagnosticHelps = map[diagnostics.Code]diagnosticHelp{
	diagnostics.CodeUnsupportedSourceType: {
		title:       "unsupported source type",
		consequence: "The table was not generated.",
		help:        []string{"Force a kind: add an override with this field and a kind in proofkit-typegen.yaml"},
	},
	diagnostics.CodeFieldNameCollision: {
		title:       "field name collision",
		consequence: "The table was not generated.",
		help:        []string{"Rename one of the fields in the data source"},
	},
	diagnostics.CodeAmbiguousPrimaryKey: {
		title:       "ambiguous primary key",
		consequence: "The table was generated without a primary key.",
	},
	diagnostics.CodeEmptyTable: {
		title:       "empty table",
		consequence: "The table was generated with no fields.",
	},
	diagnostics.CodeUnusedOverride: {
		title: "unused override",
		help:  []string{"Remove it from proofkit-typegen.yaml or fix the field name"},
	},
	diagnostics.CodeInvalidOverride: {
		title:       "invalid override",
		consequence: "Nothing was generated.",
		help:        []string{"Valid kinds: text, number, date, timestamp, container, list", "Valid presets: boolean"},
	},
	diagnostics.CodeDuplicateTable: {
		title:       "duplicate table",
		consequence: "Only the first definition was generated.",
		help:        []string{"Check for overlapping metadata sources"},
	},
	diagnostics.CodeInvalidField: {
		title:       "invalid field",
		consequence: "The table was not generated.",
	},
	diagnostics.CodeFilesystemWriteFailure: {
		title:       "write failed",
		consequence: "The table was not generated. Other tables are unaffected.",
	},
	diagnostics.CodeOutputPathCollision: {
		title:       "output path collision",
		consequence: "The table was not generated.",
		help:        []string{"Restrict generation with `tables` in proofkit-typegen.yaml"},
	},
	diagnostics.CodeStaleGeneratedFile: {
		title: "stale generated file",
	},
	diagnostics.CodeGeneratedOutOfDate: {
		title: "generated file out of date",
		help:  []string{"Regenerate: proofkit typegen"},
	},
	diagnostics.CodeOverrideMissing: {
		title: "override file missing",
		help:  []string{"Scaffold it: proofkit typegen"},
	},
}

// severityLevel maps a diagnostic severity to a display level
func severityLevel(s diagnostics.Severity) ErrorLevel {
	switch s {
	case diagnostics.SeverityWarning:
		return ErrorLevelWarning
	case diagnostics.SeverityInfo:
		return ErrorLevelInfo
	default:
		return ErrorLevelError
	}
}

// location renders "Table.Field", a path, or both
func location(d *diagnostics.Diagnostic) string {
	loc := d.Table
	if d.Field != "" {
		if loc != "" {
			loc += "."
		}
		loc += d.Field
	}
	if d.Path != "" {
		if loc != "" {
			return loc + " (" + d.Path + ")"
		}
		return d.Path
	}
	return loc
}

// FormatDiagnostic renders one diagnostic. Detail (a diff) is shown only when
// showDetail is set.
func FormatDiagnostic(d *diagnostics.Diagnostic, suggestions []string, showDetail, noColor bool) string {
	help := diagnosticHelps[d.Code]
	title := help.title
	if title == "" {
		title = "problem"
	}

	problem := d.Message
	if d.Cause != nil {
		problem += ": " + d.Cause.Error()
	}

	opts := ErrorOptions{
		Level:        severityLevel(d.Severity),
		Context:      string(d.Code) + " " + title,
		Location:     location(d),
		Problem:      problem,
		Consequence:  help.consequence,
		Suggestions:  suggestions,
		HelpCommands: help.help,
		NoColor:      noColor,
	}
	if showDetail {
		opts.Detail = d.Detail
	}
	return FormatError(opts)
}

// WriteDiagnostics writes every diagnostic of l, errors first
func WriteDiagnostics(w io.Writer, l diagnostics.List, showDetail, noColor bool) {
	for _, sev := range []diagnostics.Severity{diagnostics.SeverityError, diagnostics.SeverityWarning, diagnostics.SeverityInfo} {
		for _, d := range l.Filter(sev) {
			fmt.Fprintln(w, FormatDiagnostic(d, nil, showDetail, noColor))
		}
	}
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "configuration error",
		Problem: message,
		HelpCommands: []string{
			"Create a config: proofkit typegen init",
			"Get help: proofkit typegen --help",
		},
		NoColor: noColor,
	})
}

// TableNotFound creates the warning shown for an allow-listed table no source defines
func TableNotFound(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Context:     "table not found",
		Location:    name,
		Problem:     fmt.Sprintf("No metadata source defines table '%s'.", name),
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}

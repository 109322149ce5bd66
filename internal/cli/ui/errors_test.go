package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
)

func TestFormatError(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "context and location",
			opts: ErrorOptions{
				Level:    ErrorLevelError,
				Context:  "TG100 unsupported source type",
				Location: "Assets.payload",
				Problem:  `source type "blob_v2" has no canonical kind`,
			},
			contains: []string{
				"❌ TG100 UNSUPPORTED SOURCE TYPE: Assets.payload",
				`   source type "blob_v2" has no canonical kind`,
			},
		},
		{
			name: "suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelWarning,
				Context:     "table not found",
				Problem:     "No metadata source defines table 'Custmers'.",
				Suggestions: []string{"Customers"},
			},
			contains: []string{
				"⚠️ TABLE NOT FOUND",
				"Did you mean: Customers?",
			},
		},
		{
			name: "help commands",
			opts: ErrorOptions{
				Level:        ErrorLevelError,
				Context:      "configuration error",
				Problem:      "no sources",
				HelpCommands: []string{"Create a config: proofkit typegen init"},
			},
			contains: []string{"→ Create a config: proofkit typegen init"},
		},
		{
			name: "info without context",
			opts: ErrorOptions{
				Level:   ErrorLevelInfo,
				Problem: "removed stale file",
			},
			contains: []string{"ℹ️ removed stale file"},
		},
		{
			name: "detail is indented",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "TG203 generated file out of date",
				Problem: "out of date",
				Detail:  "--- a\n+++ b\n-old\n+new\n",
			},
			contains: []string{"   -old\n   +new\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.opts)

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("FormatError() output missing expected string:\nExpected to contain: %q\nGot: %q", expected, result)
				}
			}
		})
	}
}

func TestFormatDiagnostic(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	d := diagnostics.FilesystemWriteFailure("Orders", "schema/generated/Orders.ts", errors.New("permission denied"))
	result := FormatDiagnostic(d, nil, false, true)

	expected := []string{
		"TG200 WRITE FAILED: Orders (schema/generated/Orders.ts)",
		"failed to write schema/generated/Orders.ts: permission denied",
		"Other tables are unaffected.",
	}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("FormatDiagnostic() missing %q in:\n%s", exp, result)
		}
	}
}

func TestFormatDiagnosticDetail(t *testing.T) {
	d := diagnostics.GeneratedOutOfDate("Customers", "schema/generated/Customers.ts", "-old\n+new\n")

	if strings.Contains(FormatDiagnostic(d, nil, false, true), "+new") {
		t.Error("diff shown without showDetail")
	}
	if !strings.Contains(FormatDiagnostic(d, nil, true, true), "   +new") {
		t.Error("diff missing with showDetail")
	}
}

func TestWriteDiagnosticsOrdersBySeverity(t *testing.T) {
	list := diagnostics.List{
		diagnostics.UnusedOverride("", "zip"),
		diagnostics.EmptyTable("Empty"),
		diagnostics.UnsupportedSourceType("Assets", "payload", "blob_v2"),
	}

	var buf bytes.Buffer
	WriteDiagnostics(&buf, list, false, true)
	out := buf.String()

	errIdx := strings.Index(out, "TG100")
	warnIdx := strings.Index(out, "TG103")
	infoIdx := strings.Index(out, "TG104")
	if errIdx < 0 || warnIdx < 0 || infoIdx < 0 {
		t.Fatalf("missing diagnostics in output:\n%s", out)
	}
	if !(errIdx < warnIdx && warnIdx < infoIdx) {
		t.Errorf("expected errors, then warnings, then infos:\n%s", out)
	}
}

func TestEveryCodeHasHelp(t *testing.T) {
	codes := []diagnostics.Code{
		diagnostics.CodeUnsupportedSourceType, diagnostics.CodeFieldNameCollision,
		diagnostics.CodeAmbiguousPrimaryKey, diagnostics.CodeEmptyTable,
		diagnostics.CodeUnusedOverride, diagnostics.CodeInvalidOverride,
		diagnostics.CodeDuplicateTable, diagnostics.CodeInvalidField,
		diagnostics.CodeFilesystemWriteFailure, diagnostics.CodeOutputPathCollision,
		diagnostics.CodeStaleGeneratedFile, diagnostics.CodeGeneratedOutOfDate,
		diagnostics.CodeOverrideMissing,
	}
	for _, c := range codes {
		if diagnosticHelps[c].title == "" {
			t.Errorf("code %s has no title", c)
		}
	}
}

func TestTableNotFound(t *testing.T) {
	result := TableNotFound("Custmers", []string{"Customers"}, true)

	for _, exp := range []string{"TABLE NOT FOUND: Custmers", "Did you mean: Customers?"} {
		if !strings.Contains(result, exp) {
			t.Errorf("TableNotFound() missing %q", exp)
		}
	}
}

func TestConfigError(t *testing.T) {
	result := ConfigError("concurrency must be at least 1", true)

	for _, exp := range []string{"CONFIGURATION ERROR", "concurrency must be at least 1", "proofkit typegen init"} {
		if !strings.Contains(result, exp) {
			t.Errorf("ConfigError() missing %q", exp)
		}
	}
}

func TestFormatSuccess(t *testing.T) {
	if got := FormatSuccess("Generated 3 tables", true); got != "✓ Generated 3 tables" {
		t.Errorf("FormatSuccess() = %q", got)
	}

	var buf bytes.Buffer
	WriteSuccess(&buf, "done", true)
	if buf.String() != "✓ done\n" {
		t.Errorf("WriteSuccess() = %q", buf.String())
	}
}

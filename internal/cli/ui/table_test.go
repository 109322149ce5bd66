package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
	"github.com/proofkit/proofkit/internal/typegen/engine"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Name", "Kind"}, true)
	table.AddRow("id", "text")
	table.AddRow("created_at", "timestamp")
	table.Render()

	expected := "Name        Kind\n" +
		"──────────  ─────────\n" +
		"id          text\n" +
		"created_at  timestamp\n"
	if buf.String() != expected {
		t.Errorf("Render() =\n%q\nwant\n%q", buf.String(), expected)
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, nil, true).Render()
	if buf.Len() != 0 {
		t.Errorf("expected no output for a table without headers, got %q", buf.String())
	}
}

func TestTableStyledRowsNoColor(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, true)
	table.AddStyledRow([]string{"x", "y"}, []*color.Color{color.New(color.FgRed), nil})
	table.Render()

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected no escape codes, got %q", buf.String())
	}
}

func TestWriteReport(t *testing.T) {
	tables := []engine.TableReport{
		{Table: "Customers", Generated: engine.StatusWritten, Override: engine.StatusCreated},
		{
			Table:       "Assets",
			Generated:   engine.StatusSkipped,
			Override:    engine.StatusSkipped,
			Diagnostics: diagnostics.List{diagnostics.UnsupportedSourceType("Assets", "p", "blob_v2")},
		},
		{
			Table:       "Log",
			Generated:   engine.StatusUnchanged,
			Override:    engine.StatusPreserved,
			Diagnostics: diagnostics.List{diagnostics.AmbiguousPrimaryKey("Log", nil)},
		},
	}

	var buf bytes.Buffer
	WriteReport(&buf, tables, true)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 5 {
		t.Fatalf("expected header, separator and 3 rows, got:\n%s", buf.String())
	}
	wantRows := []string{
		"Customers  written    created    -",
		"Assets     skipped    skipped    1 error(s)",
		"Log        unchanged  preserved  1 warning(s)",
	}
	for i, want := range wantRows {
		if lines[i+2] != want {
			t.Errorf("row %d = %q; want %q", i, lines[i+2], want)
		}
	}
}

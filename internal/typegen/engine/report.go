package engine

import (
	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
)

// FileStatus describes what a run did (or would do) to one output file
type FileStatus string

const (
	// StatusWritten means the generated file content changed
	StatusWritten FileStatus = "written"
	// StatusUnchanged means the generated file was rewritten with identical content
	StatusUnchanged FileStatus = "unchanged"
	// StatusCreated means the override file was scaffolded
	StatusCreated FileStatus = "created"
	// StatusPreserved means an existing override file was left untouched
	StatusPreserved FileStatus = "preserved"
	// StatusUpToDate means check mode found the generated file current
	StatusUpToDate FileStatus = "up-to-date"
	// StatusOutOfDate means check mode found the generated file would change
	StatusOutOfDate FileStatus = "out-of-date"
	// StatusMissing means check mode found no override file
	StatusMissing FileStatus = "missing"
	// StatusFailed means writing the file failed
	StatusFailed FileStatus = "failed"
	// StatusSkipped means the file was not touched because the table failed earlier
	StatusSkipped FileStatus = "skipped"
)

// TableReport is the outcome of one table
type TableReport struct {
	Table         string           `json:"table"`
	Identifier    string           `json:"identifier"`
	GeneratedPath string           `json:"generatedPath"`
	Generated     FileStatus       `json:"generated"`
	OverridePath  string           `json:"overridePath"`
	Override      FileStatus       `json:"override"`
	Diagnostics   diagnostics.List `json:"diagnostics"`
}

// Failed reports whether the table has error diagnostics
func (r TableReport) Failed() bool {
	return r.Diagnostics.HasErrors()
}

// Report is the outcome of one engine run
type Report struct {
	Tables []TableReport `json:"tables"`
	// Removed lists stale generated files deleted by cleanup
	Removed []string `json:"removed"`
	// Diagnostics holds problems not tied to a single table
	Diagnostics diagnostics.List `json:"diagnostics"`
}

// AllDiagnostics returns run-level and per-table diagnostics together
func (r *Report) AllDiagnostics() diagnostics.List {
	all := append(diagnostics.List{}, r.Diagnostics...)
	for _, t := range r.Tables {
		all = append(all, t.Diagnostics...)
	}
	return all
}

// HasErrors reports whether any table or run-level diagnostic is an error
func (r *Report) HasErrors() bool {
	return r.AllDiagnostics().HasErrors()
}

// Succeeded returns the number of tables generated without errors
func (r *Report) Succeeded() int {
	n := 0
	for _, t := range r.Tables {
		if !t.Failed() {
			n++
		}
	}
	return n
}

// Package typegen runs one generation: it loads the metadata sources, builds
// the canonical schema and writes the per-table file pairs.
package typegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/proofkit/proofkit/internal/typegen/codegen"
	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
	"github.com/proofkit/proofkit/internal/typegen/engine"
	"github.com/proofkit/proofkit/internal/typegen/metadata"
	"github.com/proofkit/proofkit/internal/typegen/normalize"
)

// Source is one metadata file
type Source struct {
	Path   string
	Format metadata.Format
}

// Options describes a generation run
type Options struct {
	Sources []Source
	// Tables restricts generation to the named tables when non-empty
	Tables         []string
	Overrides      []normalize.Override
	Layout         codegen.Layout
	Codegen        codegen.Options
	Concurrency    int
	CleanGenerated bool
	Check          bool
	Logger         *zap.Logger
}

// Report is the outcome of a run
type Report struct {
	*engine.Report
	// Missing lists allow-listed tables no source defined
	Missing []string `json:"missing"`
	// Available lists every table the sources defined
	Available []string `json:"-"`
	// Check is set when nothing was written
	Check bool `json:"check"`
}

// OverrideError aborts a run whose override configuration is invalid
type OverrideError struct {
	Diagnostics diagnostics.List
}

func (e *OverrideError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.Error()
	}
	return fmt.Sprintf("invalid override configuration: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes each diagnostic so errors.Is matches diagnostics.ErrInvalidOverride
func (e *OverrideError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d
	}
	return errs
}

// Load reads and merges every source in order
func Load(fs afero.Fs, sources []Source, logger *zap.Logger) (*metadata.Document, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no metadata sources configured")
	}

	doc := &metadata.Document{}
	for _, src := range sources {
		part, err := metadata.Load(fs, src.Path, src.Format)
		if err != nil {
			return nil, err
		}
		logger.Debug("metadata source loaded",
			zap.String("path", src.Path),
			zap.String("format", string(src.Format)),
			zap.Int("tables", len(part.Tables)))
		doc.Merge(part)
	}
	return doc, nil
}

// Run performs one generation. Per-table problems are returned in the report;
// the error is reserved for problems that stop the whole run.
func Run(ctx context.Context, fs afero.Fs, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	overrides, diags := normalize.NewOverrides(opts.Overrides)
	if diags.HasErrors() {
		return nil, &OverrideError{Diagnostics: diags}
	}

	doc, err := Load(fs, opts.Sources, logger)
	if err != nil {
		return nil, err
	}

	available := doc.TableNames()
	doc, missing := doc.Filter(opts.Tables)
	for _, name := range missing {
		logger.Warn("allow-listed table not found in metadata", zap.String("table", name))
	}
	retained := excluded(available, doc.TableNames())

	res := normalize.New(overrides, normalize.WithLogger(logger)).Normalize(doc)

	eng := engine.New(fs, codegen.NewGenerator(opts.Codegen), engine.Options{
		Layout:         opts.Layout,
		Concurrency:    opts.Concurrency,
		CleanGenerated: opts.CleanGenerated,
		Check:          opts.Check,
		Retain:         retained,
	}, engine.WithLogger(logger))

	report, err := eng.Run(ctx, res)
	if err != nil {
		return nil, err
	}
	report.Diagnostics = append(append(diagnostics.List{}, res.Diagnostics...), report.Diagnostics...)

	logger.Debug("typegen run complete",
		zap.Int("tables", len(report.Tables)),
		zap.Int("succeeded", report.Succeeded()),
		zap.Bool("check", opts.Check))

	return &Report{Report: report, Missing: missing, Available: available, Check: opts.Check}, nil
}

// excluded returns the names of all that are not in kept
func excluded(all, kept []string) []string {
	keep := make(map[string]bool, len(kept))
	for _, name := range kept {
		keep[name] = true
	}
	var out []string
	for _, name := range all {
		if !keep[name] {
			out = append(out, name)
		}
	}
	return out
}

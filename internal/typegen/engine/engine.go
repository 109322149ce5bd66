// Package engine writes the per-table file pair: a generated file that is
// overwritten on every run and an override file that is scaffolded once and
// never touched again. Its only durable state is whether the override file
// already exists.
//
// Each table is isolated. A write failure is reported on that table and the
// remaining tables are still generated.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/proofkit/proofkit/internal/typegen/codegen"
	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
	"github.com/proofkit/proofkit/internal/typegen/normalize"
	"github.com/proofkit/proofkit/internal/typegen/schema"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options controls where and how files are written
type Options struct {
	Layout codegen.Layout
	// Concurrency is the number of tables processed at once
	Concurrency int
	// CleanGenerated removes generated files no table produced
	CleanGenerated bool
	// Check reports what would change without writing anything
	Check bool
	// Retain names tables left out of this run, such as those excluded by an
	// allow-list. Cleanup keeps their generated files.
	Retain []string
}

// Engine runs the code generator and persists its output
type Engine struct {
	fs     afero.Fs
	gen    *codegen.Generator
	opts   Options
	logger *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for debug output
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine writing to fs
func New(fs afero.Fs, gen *codegen.Generator, opts Options, extra ...Option) *Engine {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	e := &Engine{
		fs:     fs,
		gen:    gen,
		opts:   opts,
		logger: zap.NewNop(),
	}
	for _, opt := range extra {
		opt(e)
	}
	return e
}

type job struct {
	index int
	table *schema.Table
}

// Run generates every successfully normalized table in res. Failed tables keep
// their normalization diagnostics and their files are left alone. The returned
// error is non-nil only when ctx is cancelled or the generated directory
// cannot be listed during cleanup.
func (e *Engine) Run(ctx context.Context, res *normalize.Result) (*Report, error) {
	layout := e.opts.Layout
	report := &Report{Tables: make([]TableReport, len(res.Tables))}

	// paths produced by this run and paths owned by tables that failed
	claimed := make(map[string]string)
	protected := make(map[string]bool)

	var jobs []job
	for i, tr := range res.Tables {
		ident := codegen.Identifier(tr.Name)
		rep := TableReport{
			Table:         tr.Name,
			Identifier:    ident,
			GeneratedPath: layout.GeneratedPath(ident),
			OverridePath:  layout.OverridePath(ident),
			Generated:     StatusSkipped,
			Override:      StatusSkipped,
			Diagnostics:   append(diagnostics.List{}, tr.Diagnostics...),
		}
		key := pathKey(rep.GeneratedPath)

		switch {
		case tr.Failed():
			protected[key] = true
		case claimed[key] != "":
			rep.Diagnostics = append(rep.Diagnostics,
				diagnostics.OutputPathCollision(tr.Name, claimed[key], rep.GeneratedPath))
		default:
			claimed[key] = tr.Name
			jobs = append(jobs, job{index: i, table: tr.Table})
		}
		report.Tables[i] = rep
	}
	for _, name := range e.opts.Retain {
		protected[pathKey(layout.GeneratedPath(codegen.Identifier(name)))] = true
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// each job owns its slot; no other goroutine touches it
			e.processTable(j.table, &report.Tables[j.index])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.opts.CleanGenerated {
		if err := e.clean(report, claimed, protected); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (e *Engine) processTable(t *schema.Table, rep *TableReport) {
	out, err := e.gen.Generate(t)
	if err != nil {
		rep.Diagnostics = append(rep.Diagnostics, diagnostics.InvalidField(t.Name(), "", err))
		return
	}
	if e.opts.Check {
		e.checkTable(out, rep)
		return
	}

	status, err := e.writeGenerated(rep.GeneratedPath, out.Content)
	if err != nil {
		rep.Generated = StatusFailed
		rep.Diagnostics = append(rep.Diagnostics,
			diagnostics.FilesystemWriteFailure(rep.Table, rep.GeneratedPath, err))
		return
	}
	rep.Generated = status
	e.logger.Debug("generated file written",
		zap.String("table", rep.Table),
		zap.String("path", rep.GeneratedPath),
		zap.String("status", string(status)))

	scaffold := e.gen.Override(out, e.opts.Layout.GeneratedImport(out.Identifier))
	status, err = e.scaffoldOverride(rep.OverridePath, scaffold)
	if err != nil {
		rep.Override = StatusFailed
		rep.Diagnostics = append(rep.Diagnostics,
			diagnostics.FilesystemWriteFailure(rep.Table, rep.OverridePath, err))
		return
	}
	rep.Override = status
	e.logger.Debug("override file checked",
		zap.String("table", rep.Table),
		zap.String("path", rep.OverridePath),
		zap.String("status", string(status)))
}

// writeGenerated always overwrites path. The status compares against the
// previous content.
func (e *Engine) writeGenerated(path string, content []byte) (FileStatus, error) {
	status := StatusWritten
	if prev, err := afero.ReadFile(e.fs, path); err == nil && bytes.Equal(prev, content) {
		status = StatusUnchanged
	}

	if err := e.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return StatusFailed, err
	}
	if err := afero.WriteFile(e.fs, path, content, filePerm); err != nil {
		return StatusFailed, err
	}
	return status, nil
}

// scaffoldOverride creates path only when nothing exists there yet
func (e *Engine) scaffoldOverride(path string, content []byte) (FileStatus, error) {
	exists, err := afero.Exists(e.fs, path)
	if err != nil {
		return StatusFailed, err
	}
	if exists {
		return StatusPreserved, nil
	}

	if err := e.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return StatusFailed, err
	}
	if err := afero.WriteFile(e.fs, path, content, filePerm); err != nil {
		return StatusFailed, err
	}
	return StatusCreated, nil
}

func (e *Engine) checkTable(out *codegen.Output, rep *TableReport) {
	prev, err := afero.ReadFile(e.fs, rep.GeneratedPath)
	if err != nil && !os.IsNotExist(err) {
		rep.Generated = StatusFailed
		rep.Diagnostics = append(rep.Diagnostics,
			diagnostics.FilesystemWriteFailure(rep.Table, rep.GeneratedPath, err))
		return
	}

	if err == nil && bytes.Equal(prev, out.Content) {
		rep.Generated = StatusUpToDate
	} else {
		rep.Generated = StatusOutOfDate
		rep.Diagnostics = append(rep.Diagnostics,
			diagnostics.GeneratedOutOfDate(rep.Table, rep.GeneratedPath,
				unifiedDiff(rep.GeneratedPath, prev, out.Content)))
	}

	exists, err := afero.Exists(e.fs, rep.OverridePath)
	switch {
	case err != nil:
		rep.Override = StatusFailed
		rep.Diagnostics = append(rep.Diagnostics,
			diagnostics.FilesystemWriteFailure(rep.Table, rep.OverridePath, err))
	case exists:
		rep.Override = StatusPreserved
	default:
		rep.Override = StatusMissing
		rep.Diagnostics = append(rep.Diagnostics, diagnostics.OverrideMissing(rep.Table, rep.OverridePath))
	}
}

// clean removes generated files that no table of this run produced. Files of
// tables that failed or were retained are kept.
func (e *Engine) clean(report *Report, claimed map[string]string, protected map[string]bool) error {
	dir := e.opts.Layout.GeneratedDirPath()
	entries, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ts") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		key := pathKey(path)
		if claimed[key] != "" || protected[key] {
			continue
		}

		if e.opts.Check {
			report.Diagnostics = append(report.Diagnostics, diagnostics.StaleGeneratedFile(path, false))
			continue
		}
		if err := e.fs.Remove(path); err != nil {
			report.Diagnostics = append(report.Diagnostics, diagnostics.FilesystemWriteFailure("", path, err))
			continue
		}
		e.logger.Debug("stale generated file removed", zap.String("path", path))
		report.Removed = append(report.Removed, path)
		report.Diagnostics = append(report.Diagnostics, diagnostics.StaleGeneratedFile(path, true))
	}
	return nil
}

// pathKey folds case so two tables never target the same file on a
// case-insensitive filesystem
func pathKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

func unifiedDiff(path string, before, after []byte) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: path + " (on disk)",
		ToFile:   path + " (generated)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

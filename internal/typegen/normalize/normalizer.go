package normalize

import (
	"go.uber.org/zap"

	"github.com/proofkit/proofkit/internal/typegen/diagnostics"
	"github.com/proofkit/proofkit/internal/typegen/metadata"
	"github.com/proofkit/proofkit/internal/typegen/schema"
)

// Normalizer builds the canonical schema from a metadata document
type Normalizer struct {
	overrides *Overrides
	logger    *zap.Logger
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithLogger sets the logger used for debug output
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a Normalizer. overrides may be nil.
func New(overrides *Overrides, opts ...Option) *Normalizer {
	n := &Normalizer{
		overrides: overrides,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// TableResult is the outcome of normalizing one table. Table is nil when a
// fatal problem was found; Diagnostics then explains why.
type TableResult struct {
	Name        string
	Table       *schema.Table
	Diagnostics diagnostics.List
}

// Failed reports whether the table could not be normalized
func (r TableResult) Failed() bool {
	return r.Table == nil
}

// Result is the outcome of one normalization
type Result struct {
	// Schema holds the successfully normalized tables in source order
	Schema *schema.Schema
	// Tables holds one entry per source table, failed ones included
	Tables []TableResult
	// Diagnostics holds problems not tied to a single table
	Diagnostics diagnostics.List
}

// AllDiagnostics returns run-level and per-table diagnostics together
func (r *Result) AllDiagnostics() diagnostics.List {
	all := append(diagnostics.List{}, r.Diagnostics...)
	for _, t := range r.Tables {
		all = append(all, t.Diagnostics...)
	}
	return all
}

// Normalize converts every table of doc. A problem in one table never stops
// the others from being normalized.
func (n *Normalizer) Normalize(doc *metadata.Document) *Result {
	res := &Result{Schema: schema.NewSchema()}
	used := make(map[*resolved]bool)
	seen := make(map[string]bool, len(doc.Tables))

	for _, raw := range doc.Tables {
		// the first definition owns the name even when it fails
		if seen[raw.Name] {
			n.logger.Debug("duplicate table skipped", zap.String("table", raw.Name))
			res.Tables = append(res.Tables, TableResult{
				Name:        raw.Name,
				Diagnostics: diagnostics.List{diagnostics.DuplicateTable(raw.Name)},
			})
			continue
		}
		seen[raw.Name] = true

		tr := n.normalizeTable(raw, used)

		if tr.Table != nil {
			if err := res.Schema.Add(tr.Table); err != nil {
				tr.Table = nil
				tr.Diagnostics = append(tr.Diagnostics, diagnostics.DuplicateTable(raw.Name))
			}
		}

		if tr.Failed() {
			n.logger.Debug("table failed normalization",
				zap.String("table", raw.Name),
				zap.Int("problems", len(tr.Diagnostics)))
		} else {
			n.logger.Debug("table normalized",
				zap.String("table", raw.Name),
				zap.Int("fields", tr.Table.Len()))
		}
		res.Tables = append(res.Tables, tr)
	}

	if n.overrides != nil {
		for _, r := range n.overrides.all {
			if !used[r] {
				res.Diagnostics = append(res.Diagnostics, diagnostics.UnusedOverride(r.Table, r.Field))
			}
		}
	}

	return res
}

type pendingField struct {
	raw  metadata.Field
	name string
	kind schema.Kind
	ovr  *resolved
}

func (n *Normalizer) normalizeTable(raw metadata.Table, used map[*resolved]bool) TableResult {
	tr := TableResult{Name: raw.Name}
	failed := false

	seen := make(map[string]string, len(raw.Fields))
	pending := make([]pendingField, 0, len(raw.Fields))
	var pkCandidates []string

	for _, rf := range raw.Fields {
		name := StripQualifier(raw.Name, rf.Name)

		if first, dup := seen[name]; dup {
			tr.Diagnostics = append(tr.Diagnostics,
				diagnostics.FieldNameCollision(raw.Name, name, first, rf.Name))
			failed = true
			continue
		}
		seen[name] = rf.Name

		kind, ok := KindForSourceType(rf.Type)
		if !ok {
			tr.Diagnostics = append(tr.Diagnostics,
				diagnostics.UnsupportedSourceType(raw.Name, name, rf.Type))
			failed = true
			continue
		}
		if rf.Repetitions > 1 {
			kind = schema.KindList
		}

		p := pendingField{raw: rf, name: name, kind: kind}
		if ovr, ok := n.overrides.lookup(raw.Name, name); ok {
			used[ovr] = true
			p.ovr = ovr
			if ovr.kind != schema.KindUnknown {
				p.kind = ovr.kind
			}
		}

		if rf.PrimaryKey {
			pkCandidates = append(pkCandidates, name)
		}
		pending = append(pending, p)
	}

	if failed {
		return tr
	}

	if len(pending) > 0 && len(pkCandidates) != 1 {
		tr.Diagnostics = append(tr.Diagnostics, diagnostics.AmbiguousPrimaryKey(raw.Name, pkCandidates))
	}
	designateKey := len(pkCandidates) == 1

	fields := make([]schema.Field, 0, len(pending))
	for _, p := range pending {
		f, err := schema.NewField(p.name, p.kind, fieldOptions(p, designateKey)...)
		if err != nil {
			tr.Diagnostics = append(tr.Diagnostics, diagnostics.InvalidField(raw.Name, p.name, err))
			return tr
		}
		fields = append(fields, f)
	}

	if len(fields) == 0 {
		tr.Diagnostics = append(tr.Diagnostics, diagnostics.EmptyTable(raw.Name))
	}

	table, err := schema.NewTable(raw.Name, fields,
		schema.TableExternalID(raw.ID),
		schema.TableComment(raw.Comment),
		schema.NavigationPaths(raw.NavigationPaths...),
	)
	if err != nil {
		tr.Diagnostics = append(tr.Diagnostics, diagnostics.InvalidField(raw.Name, "", err))
		return tr
	}

	tr.Table = table
	return tr
}

func fieldOptions(p pendingField, designateKey bool) []schema.FieldOption {
	opts := make([]schema.FieldOption, 0, 6)
	if p.raw.PrimaryKey && designateKey {
		opts = append(opts, schema.PrimaryKey())
	}
	if p.raw.NotNull {
		opts = append(opts, schema.NotNull())
	}
	if p.raw.ReadOnly {
		opts = append(opts, schema.ReadOnly())
	}
	if p.ovr != nil && (p.ovr.read != "" || p.ovr.write != "") {
		opts = append(opts, schema.WithValidators(p.ovr.read, p.ovr.write))
	}
	if p.raw.ID != "" {
		opts = append(opts, schema.ExternalID(p.raw.ID))
	}
	if p.raw.Comment != "" {
		opts = append(opts, schema.Comment(p.raw.Comment))
	}
	return opts
}

package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/vvka-141/twbmig/internal/archive"
	"github.com/vvka-141/twbmig/internal/checksum"
	"github.com/vvka-141/twbmig/internal/fields"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
	"github.com/vvka-141/twbmig/internal/logging"
	"github.com/vvka-141/twbmig/internal/workbook"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// Extractor turns workbook files into Results.
// An Extractor holds no per-call state and is safe for concurrent use.
type Extractor struct {
	fsProvider filesystem.FileSystemProvider
	calculator checksum.SHA256
	clock      twbmig.Clock
	logger     twbmig.Logger
	skip       func(names ...string) bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFileSystem reads inputs through fsProvider instead of the OS filesystem.
func WithFileSystem(fsProvider filesystem.FileSystemProvider) Option {
	return func(e *Extractor) {
		if fsProvider != nil {
			e.fsProvider = fsProvider
		}
	}
}

// WithClock sets the clock used for ExtractedAt.
func WithClock(clock twbmig.Clock) Option {
	return func(e *Extractor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the logger for progress and resolver diagnostics.
func WithLogger(logger twbmig.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSkip leaves out datasources for which skip returns true. skip receives
// the internal name and the caption. The Parameters datasource is never skipped.
func WithSkip(skip func(names ...string) bool) Option {
	return func(e *Extractor) {
		e.skip = skip
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		fsProvider: filesystem.NewOSFileSystem(),
		calculator: checksum.New(),
		clock:      twbmig.SystemClock{},
		logger:     logging.NewNullLogger(),
		skip:       func(...string) bool { return false },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads, parses and resolves the workbook at path.
//
// Error cases:
//   - path missing → twbmig.ErrInputNotFound
//   - not a .twb/.twbx, or no workbook inside the archive → twbmig.ErrUnsupportedInput
//   - malformed XML → twbmig.ErrWorkbookParse
//   - ctx cancelled between datasources → ctx.Err()
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Verbose("Reading %s", path)
	doc, err := archive.Open(e.fsProvider, path)
	if err != nil {
		return nil, err
	}
	return e.ExtractDocument(ctx, doc, path)
}

// ExtractDocument parses and resolves an already located workbook document.
func (e *Extractor) ExtractDocument(ctx context.Context, doc *archive.Document, sourcePath string) (*Result, error) {
	wb, err := workbook.Parse(doc.Content, doc.Name)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Workbook:       archive.WorkbookName(sourcePath),
		SourcePath:     sourcePath,
		Document:       doc.Name,
		Packaged:       doc.Packaged,
		Checksum:       e.calculator.CalculateRaw(doc.Content),
		TableauVersion: wb.Version,
		SourceBuild:    wb.SourceBuild,
		ExtractedAt:    e.clock.Now(),
		PackagedFiles:  doc.Entries,
		Worksheets:     wb.WorksheetInfos(),
		Dashboards:     wb.DashboardInfos(),
		Parameters:     wb.ParameterInfos(),
	}
	e.logger.Verbose("Parsed %s: %d datasource(s), %d worksheet(s), %d dashboard(s)",
		doc.Name, len(wb.Datasources), len(result.Worksheets), len(result.Dashboards))

	// Parameters first: their captions resolve [Parameters].[Parameter N]
	// references in every other datasource.
	var external map[string]string
	if params, ok := wb.Parameters(); ok {
		d := e.resolve(wb, params, nil)
		external = qualify(twbmig.ParametersDatasource, d.Fields.ReferenceMap())
		result.Datasources = append(result.Datasources, d)
	}

	for i := range wb.Datasources {
		ds := &wb.Datasources[i]
		if ds.IsParameters() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.skip(ds.Name, ds.Caption) {
			e.logger.Verbose("Skipping datasource %s", ds.DisplayName())
			result.Skipped = append(result.Skipped, ds.DisplayName())
			continue
		}
		result.Datasources = append(result.Datasources, e.resolve(wb, ds, external))
	}

	result.CustomSQL = e.customSQL(wb, result.Skipped)
	return result, nil
}

func (e *Extractor) resolve(wb *workbook.Workbook, ds *workbook.Datasource, external map[string]string) *Datasource {
	resolver := fields.NewResolver(ds.DisplayName(),
		fields.WithLogger(e.logger),
		fields.WithExternalReferences(external),
	)
	reg := resolver.Resolve(ds.Sources(wb), wb.FieldReferences(ds.Name))

	d := &Datasource{
		Name:        ds.Name,
		Caption:     ds.Caption,
		Parameters:  ds.IsParameters(),
		Connections: ds.Connections(),
		Tables:      ds.Tables(),
		Joins:       ds.Joins(),
		HasExtract:  ds.HasExtract(),
		Worksheets:  worksheetsUsing(wb, ds.Name),
		Stats:       reg.Stats(),
		Fields:      reg,
		Diagnostics: reg.Diagnostics(),
	}
	e.logger.Verbose("Resolved %s: %d field(s), %d calculated, %d used",
		d.DisplayName(), d.Stats.Total, d.Stats.Calculated, d.Stats.Used)
	return d
}

// qualify rewrites bare parameter IDs to the qualified form formulas use
// outside the Parameters datasource.
func qualify(datasource string, refs map[string]string) map[string]string {
	out := make(map[string]string, len(refs))
	for id, name := range refs {
		out[datasource+"].["+id] = datasource + "].[" + name
	}
	return out
}

func worksheetsUsing(wb *workbook.Workbook, datasource string) []string {
	var names []string
	for _, ws := range wb.Worksheets {
		for _, v := range ws.Table.View.Datasources {
			if v.Name == datasource {
				names = append(names, ws.Name)
				break
			}
		}
	}
	return names
}

// customSQL lists every custom SQL relation and flags queries that normalize
// to the same text in more than one datasource.
func (e *Extractor) customSQL(wb *workbook.Workbook, skipped []string) []SQLQuery {
	skippedSet := make(map[string]bool, len(skipped))
	for _, s := range skipped {
		skippedSet[s] = true
	}

	var queries []SQLQuery
	owners := make(map[string][]string)
	for i := range wb.Datasources {
		ds := &wb.Datasources[i]
		if skippedSet[ds.DisplayName()] {
			continue
		}
		for _, q := range ds.CustomSQL() {
			fp := e.calculator.Fingerprint(q.SQL)
			queries = append(queries, SQLQuery{
				Datasource:  ds.DisplayName(),
				Name:        q.Name,
				Connection:  q.Connection,
				SQL:         q.SQL,
				Fingerprint: fp,
			})
			owners[fp] = appendUnique(owners[fp], ds.DisplayName())
		}
	}

	for i := range queries {
		for _, owner := range owners[queries[i].Fingerprint] {
			if owner != queries[i].Datasource {
				queries[i].SharedWith = append(queries[i].SharedWith, owner)
			}
		}
		sort.Strings(queries[i].SharedWith)
		if queries[i].Duplicate() {
			e.logger.Verbose("Custom SQL %q in %s also appears in %v", queries[i].Name, queries[i].Datasource, queries[i].SharedWith)
		}
	}
	return queries
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// ExtractAll extracts several workbooks in order, stopping at the first
// cancellation. Per-file failures are collected, not fatal.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string) ([]*Result, map[string]error, error) {
	var results []*Result
	failures := make(map[string]error)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, failures, err
		}
		r, err := e.Extract(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return results, failures, ctx.Err()
			}
			e.logger.Error("%s: %v", p, err)
			failures[p] = fmt.Errorf("%s: %w", p, err)
			continue
		}
		results = append(results, r)
	}
	return results, failures, nil
}

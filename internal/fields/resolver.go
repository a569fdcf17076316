package fields

import (
	"strings"

	"github.com/vvka-141/twbmig/internal/logging"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// measureAggregations are the metadata-record aggregations that make a field a measure.
var measureAggregations = map[string]bool{
	"Sum":     true,
	"Count":   true,
	"Average": true,
	"Min":     true,
	"Max":     true,
}

const (
	unknownValue    = "Unknown"
	noneAggregation = "None"
)

// Resolver reconciles the metadata sources of one datasource into a Registry.
// A Resolver holds no state between calls; each Ingest returns a fresh registry.
type Resolver struct {
	datasource string
	logger     twbmig.Logger
	external   map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger routes resolver diagnostics to logger at verbose level.
func WithLogger(logger twbmig.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithExternalReferences adds internal-identifier to caption mappings that were
// resolved outside this datasource, typically the workbook's parameters.
// Mappings found in the registry itself take precedence.
func WithExternalReferences(refs map[string]string) Option {
	return func(r *Resolver) {
		for id, name := range refs {
			r.external[id] = name
		}
	}
}

// NewResolver creates a resolver for the named datasource.
func NewResolver(datasource string, opts ...Option) *Resolver {
	r := &Resolver{
		datasource: datasource,
		logger:     logging.NewNullLogger(),
		external:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the full pipeline: Ingest, MarkUsage, ResolveCalculationReferences.
func (r *Resolver) Resolve(src Sources, worksheetRefs []string) *Registry {
	reg := r.Ingest(src)
	r.MarkUsage(reg, worksheetRefs)
	r.ResolveCalculationReferences(reg)
	return reg
}

// Ingest builds a registry from the four metadata sources.
//
// Sources are merged in a fixed order: cols map, metadata records,
// Document-API fields, calculation columns. Each record is matched against
// the registry (exact first, substring fallback second); attributes follow
// last-writer-wins. Classification is re-evaluated after every stage and is
// final only once all four have been merged.
func (r *Resolver) Ingest(src Sources) *Registry {
	reg := newRegistry(r.datasource)

	stages := []struct {
		name    string
		records []RawFieldRecord
	}{
		{"cols", r.colsRecords(reg, src.Cols)},
		{"metadata-records", r.metadataRecords(reg, src.MetadataRecords)},
		{"document-api", r.documentRecords(reg, src.DocumentFields)},
		{"calculation-columns", r.calculationRecords(reg, src.CalculationColumns)},
	}

	for _, stage := range stages {
		for _, rec := range stage.records {
			r.merge(reg, rec)
		}
		for _, f := range reg.entries {
			classify(f)
		}
		r.logger.Verbose("[%s] merged %d %s record(s), %d field(s) total", r.datasource, len(stage.records), stage.name, reg.Len())
	}

	for _, f := range reg.entries {
		r.finalize(reg, f)
	}

	r.logDiagnostics(reg, 0)
	return reg
}

func (r *Resolver) colsRecords(reg *Registry, cols []ColumnMapping) []RawFieldRecord {
	records := make([]RawFieldRecord, 0, len(cols))
	for _, m := range cols {
		key := StripBrackets(m.Key)
		if key == "" {
			reg.addDiagnostic(DiagMissingAttribute, "", "cols map entry without a key skipped")
			continue
		}

		value := StripBrackets(m.Value)
		table, remote := value, key
		if i := strings.Index(value, "."); i >= 0 {
			table, remote = value[:i], value[i+1:]
		}

		rec := RawFieldRecord{SourceKey: key, SourceKind: SourceColsMap}
		if table != "" {
			rec.Attributes.TableName = strPtr(table)
		}
		rec.Attributes.RemoteName = strPtr(remote)
		records = append(records, rec)
	}
	return records
}

func (r *Resolver) metadataRecords(reg *Registry, mdrs []MetadataRecord) []RawFieldRecord {
	records := make([]RawFieldRecord, 0, len(mdrs))
	for _, m := range mdrs {
		name := StripBrackets(deref(m.LocalName))
		if name == "" {
			reg.addDiagnostic(DiagMissingAttribute, "", "metadata record without local-name skipped")
			continue
		}

		aggregation := strings.TrimSpace(deref(m.Aggregation))
		if aggregation == "" {
			aggregation = noneAggregation
		}
		role := "dimension"
		if measureAggregations[aggregation] {
			role = "measure"
		}

		rec := RawFieldRecord{SourceKey: name, SourceKind: SourceMetadataRecord}
		rec.Attributes.Aggregation = strPtr(aggregation)
		rec.Attributes.Role = strPtr(role)
		if t := strings.TrimSpace(deref(m.LocalType)); t != "" {
			rec.Attributes.Datatype = strPtr(t)
		}
		if parent := StripBrackets(deref(m.ParentName)); parent != "" {
			rec.Attributes.TableName = strPtr(parent)
		}
		if remote := strings.TrimSpace(deref(m.RemoteName)); remote != "" {
			rec.Attributes.RemoteName = strPtr(remote)
		}
		records = append(records, rec)
	}
	return records
}

func (r *Resolver) documentRecords(reg *Registry, docFields []DocumentField) []RawFieldRecord {
	records := make([]RawFieldRecord, 0, len(docFields))
	for _, d := range docFields {
		name := StripBrackets(d.Name)
		if name == "" {
			reg.addDiagnostic(DiagMissingAttribute, d.Caption, "document field without a name skipped")
			continue
		}

		display := name
		if d.Caption != "" {
			display = CleanCaption(d.Caption)
		}

		calculation := d.Calculation
		if calculation != nil && strings.TrimSpace(*calculation) == "" {
			calculation = nil
		}

		rec := RawFieldRecord{
			SourceKey:      name,
			SourceKind:     SourceDocumentAPI,
			CandidateName:  strPtr(display),
			keyByCandidate: calculation != nil || d.ParamDomainType != nil,
			Attributes: RawAttributes{
				Caption:         optional(d.Caption),
				Datatype:        optional(d.Datatype),
				Role:            optional(d.Role),
				Type:            optional(d.Type),
				Aggregation:     optional(d.DefaultAggregation),
				Calculation:     calculation,
				ParamDomainType: d.ParamDomainType,
				Value:           d.Value,
				Worksheets:      d.Worksheets,
			},
		}
		records = append(records, rec)
	}
	return records
}

func (r *Resolver) calculationRecords(reg *Registry, columns []CalculationColumn) []RawFieldRecord {
	records := make([]RawFieldRecord, 0, len(columns))
	for _, c := range columns {
		name := StripBrackets(c.Name)
		if name == "" {
			reg.addDiagnostic(DiagMissingAttribute, c.Caption, "calculation column without a name skipped")
			continue
		}

		display := name
		if c.Caption != "" {
			display = CleanCaption(c.Caption)
		}

		rec := RawFieldRecord{
			SourceKey:      name,
			SourceKind:     SourceCalculationColumn,
			CandidateName:  strPtr(display),
			keyByCandidate: true,
			Attributes: RawAttributes{
				Caption:         optional(c.Caption),
				Datatype:        optional(c.Datatype),
				Role:            optional(c.Role),
				Type:            optional(c.Type),
				Calculation:     optional(c.Formula),
				ParamDomainType: c.ParamDomainType,
				Value:           c.Value,
			},
		}
		records = append(records, rec)
	}
	return records
}

// merge folds one raw record into the registry.
func (r *Resolver) merge(reg *Registry, rec RawFieldRecord) *ResolvedField {
	// Internal calculation IDs are opaque; a substring hit between two of
	// them (Calculation_1 vs Calculation_12) is never the same field.
	allowSubstring := !IsCalculationID(rec.SourceKey)

	byCaption := rec.keyByCandidate && rec.CandidateName != nil && *rec.CandidateName != ""

	f := reg.matchRecord(rec, allowSubstring)
	switch {
	case f == nil && byCaption:
		f = reg.create(*rec.CandidateName)
		f.captionKeyed = true
	case f == nil:
		f = reg.create(rec.SourceKey)
	case byCaption && !f.captionKeyed && f.CanonicalName == rec.SourceKey:
		// Seeded under its internal name by cols or metadata records.
		old := f.CanonicalName
		if reg.rename(f, *rec.CandidateName) {
			r.logger.Verbose("[%s] %q renamed to %q", r.datasource, old, f.CanonicalName)
		}
		f.captionKeyed = true
	}

	reg.addSourceKey(f, rec.SourceKey)
	addSource(f, rec.SourceKind)
	if rec.SourceKind == SourceCalculationColumn {
		f.calcColumnKeys = appendUnique(f.calcColumnKeys, rec.SourceKey)
	}

	a := rec.Attributes
	setString(&f.Caption, a.Caption)
	setString(&f.Datatype, a.Datatype)
	setString(&f.Role, a.Role)
	setString(&f.FieldType, a.Type)
	setPtr(&f.Aggregation, a.Aggregation)
	setPtr(&f.TableName, a.TableName)
	setPtr(&f.RemoteName, a.RemoteName)
	if a.Calculation != nil {
		f.calculation = *a.Calculation
	}
	if a.ParamDomainType != nil {
		f.paramDomainType = a.ParamDomainType
	}
	setString(&f.CurrentValue, a.Value)

	addWorksheets(f, a.Worksheets)
	if len(a.Worksheets) > 0 {
		f.UsedInWorkbook = true
	}
	return f
}

// classify applies the precedence parameter > calculated > regular.
func classify(f *ResolvedField) {
	switch {
	case f.paramDomainType != nil:
		f.Kind = KindParameter
		f.ParameterDomainType = *f.paramDomainType
		if strings.TrimSpace(f.calculation) != "" {
			f.CalculationFormula = f.calculation
		} else {
			f.CalculationFormula = f.CurrentValue
		}
	case strings.TrimSpace(f.calculation) != "":
		f.Kind = KindCalculated
		f.CalculationFormula = f.calculation
	default:
		f.Kind = KindRegular
		f.CalculationFormula = ""
	}
}

// finalize substitutes documented defaults for attributes no source provided.
func (r *Resolver) finalize(reg *Registry, f *ResolvedField) {
	classify(f)

	if f.Kind == KindParameter && strings.TrimSpace(f.calculation) != "" && f.calculation != f.CurrentValue {
		reg.addDiagnostic(DiagClassificationAmbiguity, f.CanonicalName,
			"field carries both a parameter domain and a calculation; classified as parameter")
	}

	if f.Datatype == "" {
		f.Datatype = unknownValue
		reg.addDiagnostic(DiagMissingAttribute, f.CanonicalName, "datatype unknown")
	}
	if f.Role == "" {
		f.Role = unknownValue
	}
	if f.Kind == KindRegular && f.RemoteName == nil && len(f.SourceKeys) > 0 {
		f.RemoteName = strPtr(f.SourceKeys[0])
	}
}

func (r *Resolver) logDiagnostics(reg *Registry, from int) {
	for _, d := range reg.diagnostics[from:] {
		if d.Field != "" {
			r.logger.Verbose("[%s] %s: %s (%s)", r.datasource, d.Kind, d.Message, d.Field)
		} else {
			r.logger.Verbose("[%s] %s: %s", r.datasource, d.Kind, d.Message)
		}
	}
}

func strPtr(s string) *string { return &s }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// optional returns nil for blank strings so they never overwrite a known value.
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setPtr(dst **string, v *string) {
	if v != nil && *v != "" {
		s := *v
		*dst = &s
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

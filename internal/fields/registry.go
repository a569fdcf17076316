package fields

import (
	"encoding/json"
	"sort"
	"strings"
)

// Registry is the unified set of resolved fields of one datasource.
//
// Entries keep their insertion order; every "first found" decision made while
// matching follows that order, which makes resolution deterministic for a
// given input order. A Registry is not safe for concurrent use.
type Registry struct {
	datasource  string
	entries     []*ResolvedField
	byName      map[string]*ResolvedField
	byKey       map[string]*ResolvedField
	diagnostics []Diagnostic
}

func newRegistry(datasource string) *Registry {
	return &Registry{
		datasource: datasource,
		byName:     make(map[string]*ResolvedField),
		byKey:      make(map[string]*ResolvedField),
	}
}

// Datasource returns the name of the datasource the registry describes.
func (r *Registry) Datasource() string { return r.datasource }

// Len returns the number of resolved fields.
func (r *Registry) Len() int { return len(r.entries) }

// Get returns the field with the given canonical name.
func (r *Registry) Get(name string) (*ResolvedField, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Fields returns the resolved fields in insertion order.
func (r *Registry) Fields() []*ResolvedField {
	out := make([]*ResolvedField, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns canonical names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, f := range r.entries {
		names[i] = f.CanonicalName
	}
	return names
}

// Map returns the registry as canonical name -> field.
func (r *Registry) Map() map[string]*ResolvedField {
	out := make(map[string]*ResolvedField, len(r.entries))
	for _, f := range r.entries {
		out[f.CanonicalName] = f
	}
	return out
}

// Diagnostics returns everything the resolver recovered from, in the order observed.
func (r *Registry) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// Stats counts fields by kind and usage.
func (r *Registry) Stats() Stats {
	s := Stats{Total: len(r.entries)}
	for _, f := range r.entries {
		switch f.Kind {
		case KindParameter:
			s.Parameters++
		case KindCalculated:
			s.Calculated++
		default:
			s.Regular++
		}
		if f.UsedInWorkbook {
			s.Used++
		}
	}
	return s
}

// MarshalJSON encodes the registry as an object keyed by canonical name.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

func (r *Registry) addDiagnostic(kind DiagnosticKind, field, message string) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Kind: kind, Field: field, Message: message})
}

// matchRecord finds the entry a raw record belongs to.
//
// Caption-keyed records (calculations, parameters) first look their caption
// up among canonical names. Every record then tries its source key against
// the source keys already merged, regular records try their candidate name
// against canonical names, and last comes the substring fallback.
//
// A source key is never compared with another entry's canonical name: an
// internal name like [Margin] and a caption "Margin" are different fields.
func (r *Registry) matchRecord(rec RawFieldRecord, allowSubstring bool) *ResolvedField {
	candidate := ""
	if rec.CandidateName != nil {
		candidate = *rec.CandidateName
	}
	if rec.keyByCandidate && candidate != "" {
		if f, ok := r.byName[candidate]; ok {
			return f
		}
	}
	if f := r.byKey[rec.SourceKey]; f != nil && rec.SourceKey != "" {
		return f
	}
	if !rec.keyByCandidate && candidate != "" {
		if f, ok := r.byName[candidate]; ok {
			return f
		}
	}
	if !allowSubstring {
		return nil
	}
	return r.substring(rec.SourceKey)
}

// match finds the entry a worksheet reference belongs to: exact match against
// canonical names and merged source keys first, then the substring fallback.
func (r *Registry) match(key string, allowSubstring bool) *ResolvedField {
	if key == "" {
		return nil
	}
	if f, ok := r.byName[key]; ok {
		return f
	}
	if f := r.byKey[key]; f != nil {
		return f
	}
	if !allowSubstring {
		return nil
	}
	return r.substring(key)
}

// substring returns the first entry, in insertion order, with a merged
// source key that contains key or is contained in it.
//
// Substring matching is a known weakness: two unrelated fields where one key
// contains the other will merge. It is kept because downstream artifacts
// depend on its results.
func (r *Registry) substring(key string) *ResolvedField {
	if key == "" {
		return nil
	}
	for _, f := range r.entries {
		for _, k := range f.SourceKeys {
			if containsEither(k, key) {
				return f
			}
		}
	}
	return nil
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// create appends a new entry. If the name is already taken the existing entry
// is returned, so the later write lands on it.
func (r *Registry) create(name string) *ResolvedField {
	if f, ok := r.byName[name]; ok {
		return f
	}
	f := &ResolvedField{
		ID:            GenerateFieldID(r.datasource, name),
		CanonicalName: name,
		Kind:          KindUnclassified,
	}
	r.entries = append(r.entries, f)
	r.byName[name] = f
	return f
}

// rename moves f to a new canonical name. The old name stays reachable
// through f's source keys. A name already held by another entry is left alone.
func (r *Registry) rename(f *ResolvedField, name string) bool {
	if name == "" || name == f.CanonicalName {
		return false
	}
	if _, taken := r.byName[name]; taken {
		return false
	}
	delete(r.byName, f.CanonicalName)
	f.CanonicalName = name
	f.ID = GenerateFieldID(r.datasource, name)
	r.byName[name] = f
	return true
}

func (r *Registry) addSourceKey(f *ResolvedField, key string) {
	if key == "" {
		return
	}
	for _, existing := range f.SourceKeys {
		if existing == key {
			return
		}
	}
	f.SourceKeys = append(f.SourceKeys, key)
	if _, taken := r.byKey[key]; !taken {
		r.byKey[key] = f
	}
}

func addSource(f *ResolvedField, kind SourceKind) {
	for _, existing := range f.Sources {
		if existing == kind {
			return
		}
	}
	f.Sources = append(f.Sources, kind)
}

func addWorksheets(f *ResolvedField, worksheets []string) {
	if len(worksheets) == 0 {
		return
	}
	seen := make(map[string]bool, len(f.Worksheets))
	for _, ws := range f.Worksheets {
		seen[ws] = true
	}
	for _, ws := range worksheets {
		if ws == "" || seen[ws] {
			continue
		}
		seen[ws] = true
		f.Worksheets = append(f.Worksheets, ws)
	}
	sort.Strings(f.Worksheets)
}

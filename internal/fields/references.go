package fields

import (
	"sort"
	"strings"
)

// ReferenceMap returns internal identifier -> canonical name for every field
// that has an internal identity: source keys of the form Calculation_<digits>
// and the names of columns that carried a <calculation> element. Identity
// mappings are omitted.
func (reg *Registry) ReferenceMap() map[string]string {
	refs := make(map[string]string)
	for _, f := range reg.entries {
		for _, key := range f.SourceKeys {
			if IsCalculationID(key) && key != f.CanonicalName {
				refs[key] = f.CanonicalName
			}
		}
		for _, key := range f.calcColumnKeys {
			if key != f.CanonicalName {
				refs[key] = f.CanonicalName
			}
		}
	}
	return refs
}

// ResolveCalculationReferences rewrites every bracketed internal identifier in
// the registry's formulas to the bracketed canonical name.
//
// It must run after ingestion so that forward references (a formula naming a
// calculation discovered in a later stage) resolve. Running it again leaves
// formulas unchanged: identifiers that are also canonical names, and mappings
// whose target is itself an identifier, are dropped, so replaced text can
// never be matched a second time.
//
// Identifiers with no mapping stay in place and are recorded as
// DiagUnresolvedReference. Returns the number of formulas rewritten.
func (r *Resolver) ResolveCalculationReferences(reg *Registry) int {
	from := len(reg.diagnostics)

	mapping := make(map[string]string, len(r.external))
	for id, name := range r.external {
		mapping[id] = name
	}
	for id, name := range reg.ReferenceMap() {
		mapping[id] = name
	}
	// An internal name that is also another field's canonical name cannot be
	// told apart from that field once formulas are rewritten.
	for id := range mapping {
		if _, named := reg.byName[id]; named {
			delete(mapping, id)
		}
	}
	ids := make([]string, 0, len(mapping))
	for id, name := range mapping {
		if _, chained := mapping[name]; chained || id == name {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		pairs = append(pairs, "["+id+"]", "["+mapping[id]+"]")
	}
	replacer := strings.NewReplacer(pairs...)

	rewritten := 0
	for _, f := range reg.entries {
		if f.CalculationFormula == "" {
			continue
		}
		updated := f.CalculationFormula
		if len(pairs) > 0 {
			updated = replacer.Replace(updated)
		}
		if updated != f.CalculationFormula {
			r.logger.Verbose("[%s] resolved references in %q", r.datasource, f.CanonicalName)
			f.CalculationFormula = updated
			rewritten++
		}
		for _, m := range bracketedCalculationID.FindAllStringSubmatch(updated, -1) {
			reg.addDiagnostic(DiagUnresolvedReference, f.CanonicalName, "no field found for ["+m[1]+"]")
		}
	}

	r.logDiagnostics(reg, from)
	return rewritten
}

package fields

// MarkUsage flags the fields referenced by worksheet view definitions.
//
// Each reference is normalized with NormalizeFieldReference and matched with
// the same exact-then-substring policy as ingestion. A matched field gets
// UsedInWorkbook set; nothing ever clears it. References that match nothing
// are recorded as DiagUnmatchedUsage and otherwise ignored.
//
// Returns the number of references that matched a field.
func (r *Resolver) MarkUsage(reg *Registry, refs []string) int {
	from := len(reg.diagnostics)
	matched := 0
	seen := make(map[string]bool, len(refs))

	for _, ref := range refs {
		name := NormalizeFieldReference(ref)
		if name == "" {
			continue
		}

		f := reg.match(name, !IsCalculationID(name))
		if f == nil {
			if !seen[name] {
				reg.addDiagnostic(DiagUnmatchedUsage, name, "worksheet reference matches no field")
			}
			seen[name] = true
			continue
		}

		f.UsedInWorkbook = true
		matched++
	}

	r.logDiagnostics(reg, from)
	return matched
}

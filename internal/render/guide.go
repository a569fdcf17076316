package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/twbmig/internal/extract"
	"github.com/vvka-141/twbmig/internal/fields"
)

const ruleWidth = 50

// SetupGuide renders the Power BI setup guide for one datasource of r.
func SetupGuide(r *extract.Result, d *extract.Datasource) []byte {
	var b bytes.Buffer
	stats := d.Stats

	heading(&b, "POWER BI SETUP GUIDE", '=')
	fmt.Fprintf(&b, "Workbook: %s\n", r.Workbook)
	fmt.Fprintf(&b, "Data Source: %s\n", d.Name)
	fmt.Fprintf(&b, "Caption: %s\n", orNA(d.Caption))
	fmt.Fprintf(&b, "Fields Available: %d\n", stats.Total)
	fmt.Fprintf(&b, "Fields Used in Workbook: %d\n", stats.Used)
	fmt.Fprintf(&b, "Unused Fields: %d\n", stats.Total-stats.Used)
	fmt.Fprintf(&b, "Calculated Fields: %d\n", stats.Calculated)
	fmt.Fprintf(&b, "Parameter Fields: %d\n", stats.Parameters)
	if d.HasExtract {
		b.WriteString("Extract: yes (refresh from the live connection in Power BI)\n")
	}
	b.WriteString("\n")

	list := d.Fields.Fields()
	byName := func(kind fields.Kind) []*fields.ResolvedField {
		var out []*fields.ResolvedField
		for _, f := range list {
			if f.Kind == kind {
				out = append(out, f)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CanonicalName < out[j].CanonicalName })
		return out
	}

	if params := byName(fields.KindParameter); len(params) > 0 {
		heading(&b, "PARAMETERS TO RECREATE IN POWER BI:", '-')
		for _, f := range params {
			fmt.Fprintf(&b, "  %s:\n", f.CanonicalName)
			fmt.Fprintf(&b, "     Type: %s\n", f.Datatype)
			if f.ParameterDomainType != "" {
				fmt.Fprintf(&b, "     Domain: %s\n", f.ParameterDomainType)
			}
			if f.CalculationFormula != "" {
				fmt.Fprintf(&b, "     Default Value: %s\n", oneLine(f.CalculationFormula))
			}
			b.WriteString("     Usage: Create as Power BI parameter\n\n")
		}
	}

	if len(d.Connections) > 0 {
		heading(&b, "CONNECTION DETAILS:", '-')
		for i, c := range d.Connections {
			fmt.Fprintf(&b, "Connection %d:\n", i+1)
			fmt.Fprintf(&b, "  Server: %s\n", orNA(c.Server))
			fmt.Fprintf(&b, "  Database: %s\n", orNA(c.Database))
			fmt.Fprintf(&b, "  Username: %s\n", orNA(c.Username))
			fmt.Fprintf(&b, "  Type: %s\n", orNA(c.Class))
			fmt.Fprintf(&b, "  Port: %s\n", orNA(c.Port))
			if c.Schema != "" {
				fmt.Fprintf(&b, "  Schema: %s\n", c.Schema)
			}
			if c.Project != "" {
				fmt.Fprintf(&b, "  Project: %s\n", c.Project)
			}
			if c.Filename != "" {
				fmt.Fprintf(&b, "  File: %s\n", c.Filename)
			}
			b.WriteString("\n")
		}
	}

	if len(d.Tables) > 0 {
		heading(&b, "TABLES TO IMPORT:", '-')
		tables := tableLines(d)
		sort.Strings(tables)
		for _, line := range tables {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
		first := d.Tables[0]
		fmt.Fprintf(&b, "MAIN TABLE: %s (aliased as %s)\n\n", first.FullReference, first.Alias)
	}

	if len(d.Joins) > 0 {
		heading(&b, "CREATE THESE RELATIONSHIPS IN POWER BI MODEL VIEW:", '-')
		for i, j := range d.Joins {
			fmt.Fprintf(&b, "%d. %s JOIN between %s\n", i+1, strings.ToUpper(j.Join), strings.Join(j.Tables, " and "))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No relationships found\n\n")
	}

	var queries []extract.SQLQuery
	for _, q := range r.CustomSQL {
		if q.Datasource == d.DisplayName() {
			queries = append(queries, q)
		}
	}
	if len(queries) > 0 {
		heading(&b, "CUSTOM SQL:", '-')
		for _, q := range queries {
			fmt.Fprintf(&b, "%s (fingerprint %s):\n", q.Name, q.Fingerprint)
			if q.Duplicate() {
				fmt.Fprintf(&b, "  Also used by: %s (import once and share)\n", strings.Join(q.SharedWith, ", "))
			}
			for _, line := range strings.Split(q.SQL, "\n") {
				fmt.Fprintf(&b, "  %s\n", strings.TrimRight(line, " \t\r"))
			}
			b.WriteString("\n")
		}
	}

	var calculated []*fields.ResolvedField
	for _, f := range byName(fields.KindCalculated) {
		if f.UsedInWorkbook {
			calculated = append(calculated, f)
		}
	}
	if len(calculated) > 0 {
		heading(&b, "CALCULATED FIELDS:", '-')
		for _, f := range calculated {
			fmt.Fprintf(&b, "%s%s:\n", f.CanonicalName, calculationLabel(f))
			fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(f.CalculationFormula))
			fmt.Fprintf(&b, "  %s\n\n", strings.Repeat("-", ruleWidth))
		}
	}

	if groups := sqlColumns(d); len(groups) > 0 {
		b.WriteString("SQL COLUMNS:\n")
		refs := make([]string, 0, len(groups))
		for ref := range groups {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			fmt.Fprintf(&b, "\n-- %s:\n", ref)
			quoted := ref
			if strings.Contains(ref, " ") {
				quoted = `"` + ref + `"`
			}
			for _, f := range groups[ref] {
				name := f.CanonicalName
				if strings.Contains(name, " ") {
					name = "'" + name + "'"
				}
				fmt.Fprintf(&b, "  %s.%s as %s,\n", quoted, deref(f.RemoteName), name)
			}
		}
	}

	return b.Bytes()
}

func heading(b *bytes.Buffer, title string, rule byte) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(string(rule), len(title)))
	b.WriteString("\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notApplicable
	}
	return s
}

func tableLines(d *extract.Datasource) []string {
	lines := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		if t.Alias != "" && t.Alias != t.FullReference {
			lines = append(lines, t.FullReference+" as "+t.Alias)
		} else {
			lines = append(lines, t.FullReference)
		}
	}
	return lines
}

// calculationLabel describes a calculated field by aggregation, else by datatype and role.
func calculationLabel(f *fields.ResolvedField) string {
	if agg := deref(f.Aggregation); agg != "" && agg != "None" {
		return " (" + agg + ")"
	}
	var parts []string
	if f.Datatype != "Unknown" {
		parts = append(parts, f.Datatype)
	}
	if f.Role != "Unknown" {
		parts = append(parts, f.Role)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// sqlColumns groups the used database columns by fully qualified table,
// sorted by remote name.
func sqlColumns(d *extract.Datasource) map[string][]*fields.ResolvedField {
	groups := make(map[string][]*fields.ResolvedField)
	for _, f := range d.Fields.Fields() {
		if f.Kind != fields.KindRegular || !f.UsedInWorkbook || deref(f.RemoteName) == "" {
			continue
		}
		ref, ok := d.TableReference(deref(f.TableName))
		if !ok {
			continue
		}
		groups[ref] = append(groups[ref], f)
	}
	for _, list := range groups {
		sort.Slice(list, func(i, j int) bool { return deref(list[i].RemoteName) < deref(list[j].RemoteName) })
	}
	return groups
}

package workbook

import (
	"regexp"
	"strings"

	"github.com/vvka-141/twbmig/internal/fields"
)

// qualifiedReference matches [datasource].[field] in shelf text; "]]" escapes a bracket.
var qualifiedReference = regexp.MustCompile(`\[((?:[^\]]|\]\])+)\]\.\[((?:[^\]]|\]\])+)\]`)

// Sources builds the four resolver inputs for ds.
//
// The Document-API view of a field is the union of the datasource's <column>
// elements and the local names of its metadata records, in that order, each
// annotated with the worksheets whose dependencies reference it.
func (ds *Datasource) Sources(wb *Workbook) fields.Sources {
	var src fields.Sources

	if ds.Connection != nil {
		for _, m := range ds.Connection.Cols {
			src.Cols = append(src.Cols, fields.ColumnMapping{Key: m.Key, Value: m.Value})
		}
		for _, r := range ds.Connection.MetadataRecords {
			if r.Class != "" && r.Class != "column" {
				continue
			}
			src.MetadataRecords = append(src.MetadataRecords, fields.MetadataRecord{
				LocalName:   r.LocalName,
				LocalType:   r.LocalType,
				Aggregation: r.Aggregation,
				ParentName:  r.ParentName,
				RemoteName:  r.RemoteName,
			})
		}
	}

	usage := wb.worksheetsByColumn(ds.Name)
	records := make(map[string]MetadataRecord)
	if ds.Connection != nil {
		for _, r := range ds.Connection.MetadataRecords {
			if r.LocalName != nil {
				records[*r.LocalName] = r
			}
		}
	}

	seen := make(map[string]bool)
	for _, c := range ds.Columns {
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true

		df := fields.DocumentField{
			Name:            c.Name,
			Caption:         c.Caption,
			Datatype:        c.Datatype,
			Role:            c.Role,
			Type:            c.Type,
			Worksheets:      usage[c.Name],
			ParamDomainType: c.ParamDomainType,
			Value:           c.Value,
		}
		if c.Calculation != nil {
			formula := c.Calculation.Formula
			df.Calculation = &formula
		}
		if r, ok := records[c.Name]; ok {
			if df.Datatype == "" && r.LocalType != nil {
				df.Datatype = *r.LocalType
			}
			if r.Aggregation != nil {
				df.DefaultAggregation = *r.Aggregation
			}
		}
		src.DocumentFields = append(src.DocumentFields, df)

		if c.Calculation != nil {
			src.CalculationColumns = append(src.CalculationColumns, fields.CalculationColumn{
				Name:            c.Name,
				Caption:         c.Caption,
				Datatype:        c.Datatype,
				Role:            c.Role,
				Type:            c.Type,
				Formula:         c.Calculation.Formula,
				ParamDomainType: c.ParamDomainType,
				Value:           c.Value,
			})
		}
	}

	if ds.Connection != nil {
		for _, r := range ds.Connection.MetadataRecords {
			if r.LocalName == nil || seen[*r.LocalName] {
				continue
			}
			if r.Class != "" && r.Class != "column" {
				continue
			}
			seen[*r.LocalName] = true
			df := fields.DocumentField{
				Name:       *r.LocalName,
				Worksheets: usage[*r.LocalName],
			}
			if r.LocalType != nil {
				df.Datatype = *r.LocalType
			}
			if r.Aggregation != nil {
				df.DefaultAggregation = *r.Aggregation
			}
			src.DocumentFields = append(src.DocumentFields, df)
		}
	}

	return src
}

// worksheetsByColumn maps bracketed column names of datasource to the
// worksheets whose dependencies reference them.
func (wb *Workbook) worksheetsByColumn(datasource string) map[string][]string {
	usage := make(map[string][]string)
	add := func(column, worksheet string) {
		if column == "" {
			return
		}
		for _, ws := range usage[column] {
			if ws == worksheet {
				return
			}
		}
		usage[column] = append(usage[column], worksheet)
	}

	for _, ws := range wb.Worksheets {
		for _, dep := range ws.Table.View.Dependencies {
			if dep.Datasource != datasource {
				continue
			}
			for _, c := range dep.Columns {
				add(c.Name, ws.Name)
			}
			for _, ci := range dep.ColumnInstances {
				add(ci.Column, ws.Name)
			}
		}
	}
	return usage
}

// FieldReferences returns every reference to datasource made by a worksheet:
// shelf text, filters, slices, encodings and column instances. References are
// qualified as [datasource].[field] and returned in order of first appearance.
func (wb *Workbook) FieldReferences(datasource string) []string {
	var refs []string
	seen := make(map[string]bool)
	add := func(ref string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	addText := func(text string) {
		for _, m := range qualifiedReference.FindAllStringSubmatch(text, -1) {
			if unescape(m[1]) == datasource {
				add("[" + m[1] + "].[" + m[2] + "]")
			}
		}
	}

	for _, ws := range wb.Worksheets {
		t := ws.Table
		addText(t.Rows)
		addText(t.Cols)
		for _, f := range t.View.Filters {
			addText(f.Column)
		}
		for _, s := range t.View.Slices {
			addText(s)
		}
		for _, p := range t.Panes {
			for _, e := range p.Encodings.Items {
				addText(e.Column)
			}
		}
		for _, dep := range t.View.Dependencies {
			if dep.Datasource != datasource {
				continue
			}
			for _, ci := range dep.ColumnInstances {
				if ci.Name != "" {
					add("[" + escape(datasource) + "]." + ci.Name)
				}
			}
		}
	}
	return refs
}

func unescape(s string) string { return strings.ReplaceAll(s, "]]", "]") }

func escape(s string) string { return strings.ReplaceAll(s, "]", "]]") }

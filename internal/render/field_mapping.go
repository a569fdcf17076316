package render

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strings"

	"github.com/vvka-141/twbmig/internal/extract"
	"github.com/vvka-141/twbmig/internal/fields"
)

// FieldMappingHeader is the header row of field_mapping.csv.
var FieldMappingHeader = []string{
	"Original_Field_Name",
	"Tableau_Field_Name",
	"Data_Type",
	"Table_Name",
	"Table_Reference_SQL",
	"Used_In_Workbook",
	"Type",
	"Calculation_Formula",
}

// FieldMappingRow is one field as the migration spreadsheet shows it.
type FieldMappingRow struct {
	OriginalName      string
	TableauName       string
	DataType          string
	TableName         string
	TableReferenceSQL string
	Used              bool
	Type              string
	Formula           string
}

// Values returns the row in FieldMappingHeader order.
func (r FieldMappingRow) Values() []string {
	used := "No"
	if r.Used {
		used = "Yes"
	}
	return []string{r.OriginalName, r.TableauName, r.DataType, r.TableName, r.TableReferenceSQL, used, r.Type, r.Formula}
}

// Field type labels.
const (
	TypeColumn     = "Column"
	TypeCalculated = "Calculated Field"
	TypeParameter  = "Parameter"
)

// FieldMappingRows lists the fields of d: columns sorted by table and remote
// name, then calculated fields and parameters. Unused fields are dropped
// unless includeUnused is set.
func FieldMappingRows(d *extract.Datasource, includeUnused bool) []FieldMappingRow {
	if d == nil || d.Fields == nil {
		return nil
	}

	list := d.Fields.Fields()
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		ac, bc := a.Kind != fields.KindRegular, b.Kind != fields.KindRegular
		if ac != bc {
			return !ac
		}
		if ta, tb := deref(a.TableName), deref(b.TableName); ta != tb {
			return ta < tb
		}
		return deref(a.RemoteName) < deref(b.RemoteName)
	})

	rows := make([]FieldMappingRow, 0, len(list))
	for _, f := range list {
		if !includeUnused && !f.UsedInWorkbook {
			continue
		}
		rows = append(rows, fieldMappingRow(d, f))
	}
	return rows
}

func fieldMappingRow(d *extract.Datasource, f *fields.ResolvedField) FieldMappingRow {
	name := strings.TrimSpace(f.CanonicalName)
	original := strings.TrimSpace(deref(f.RemoteName))
	if original == "" && f.Kind != fields.KindRegular {
		original = name
	}

	row := FieldMappingRow{
		OriginalName: original,
		TableauName:  name,
		DataType:     f.Datatype,
		TableName:    deref(f.TableName),
		Used:         f.UsedInWorkbook,
		Formula:      strings.ReplaceAll(oneLine(f.CalculationFormula), `"`, "'"),
	}

	var ref string
	switch f.Kind {
	case fields.KindParameter:
		row.Type = TypeParameter
		ref = "PARAMETER: " + name
		if f.CalculationFormula != "" {
			ref += " = " + f.CalculationFormula
		}
	case fields.KindCalculated:
		row.Type = TypeCalculated
		ref = "CALCULATED: " + name
	default:
		row.Type = TypeColumn
		ref = columnReference(d, row.TableName, original, name)
	}
	row.TableReferenceSQL = strings.NewReplacer(`"`, "", "'", "").Replace(oneLine(ref))

	if row.TableName == "" {
		row.TableName = "Unknown"
		if f.Kind != fields.KindRegular {
			row.TableName = "Workbook"
		}
	}
	return row
}

// columnReference renders "<table>.<column>", aliased to the Tableau name
// when the field was renamed.
func columnReference(d *extract.Datasource, table, original, name string) string {
	full, ok := d.TableReference(table)
	if !ok || original == "" {
		if table == "" {
			table = "Unknown"
		}
		return table + "." + original
	}
	if original == name {
		return full + "." + original
	}
	return full + "." + original + " as " + name
}

// FieldMappingCSV renders field_mapping.csv for d.
func FieldMappingCSV(d *extract.Datasource, includeUnused bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(FieldMappingHeader); err != nil {
		return nil, err
	}
	for _, row := range FieldMappingRows(d, includeUnused) {
		if err := w.Write(row.Values()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

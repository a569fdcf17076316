package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vvka-141/twbmig/internal/extract"
)

const (
	summarySheet = "Summary"
	// Excel limits sheet names to 31 characters.
	maxSheetName = 31
)

// FieldInventoryXLSX renders field_inventory.xlsx: a Summary sheet followed
// by one field mapping sheet per datasource.
func FieldInventoryXLSX(r *extract.Result, includeUnused bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSummarySheet(f, r, headerStyle); err != nil {
		return nil, err
	}

	used := map[string]bool{summarySheet: true}
	for _, d := range r.Datasources {
		if d.Fields == nil || d.Fields.Len() == 0 {
			continue
		}
		name := sheetName(d.DisplayName(), used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}

		rows := [][]string{FieldMappingHeader}
		for _, row := range FieldMappingRows(d, includeUnused) {
			rows = append(rows, row.Values())
		}
		if err := writeRows(f, name, rows); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(name, "A", "D", 22); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(name, "E", "E", 45); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(name, "H", "H", 60); err != nil {
			return nil, err
		}
		if err := f.AutoFilter(name, fmt.Sprintf("A1:H%d", len(rows)), nil); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeSummarySheet(f *excelize.File, r *extract.Result, headerStyle int) error {
	s := r.Summary()
	rows := [][]interface{}{
		{"Item", "Value"},
		{"Workbook", r.Workbook},
		{"Source", r.SourcePath},
		{"Tableau Version", r.TableauVersion},
		{"Extracted At", r.ExtractedAt.Format("2006-01-02 15:04:05 MST")},
		{"Checksum", r.Checksum},
		{"Datasources", s.Datasources},
		{"Worksheets", s.Worksheets},
		{"Dashboards", s.Dashboards},
		{"Parameters", s.Parameters},
		{"Fields", s.Fields.Total},
		{"Fields Used", s.Fields.Used},
		{"Calculated Fields", s.Fields.Calculated},
		{"Custom SQL Queries", s.CustomSQL},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "B", 70)
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// sheetName makes name a valid, unused sheet name.
func sheetName(name string, used map[string]bool) string {
	base := []rune(SafeName(name))
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	candidate := string(base)
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = string(trimmed) + suffix
	}
	used[candidate] = true
	return candidate
}

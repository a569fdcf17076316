package render

import (
	"strings"
	"unicode"
)

// SafeName turns a workbook or datasource name into a file-name fragment:
// spaces and slashes become underscores and everything but letters, digits,
// '_' and '-' is dropped. An empty result becomes "Unknown".
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ' || r == '/' || r == '\\':
			b.WriteRune('_')
		case r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Unknown"
	}
	return b.String()
}

// File names of the rendered artifacts.
const (
	WorkbookJSONFile   = "workbook.json"
	FieldMappingFile   = "field_mapping.csv"
	DashboardUsageFile = "dashboard_usage.csv"
	FieldInventoryFile = "field_inventory.xlsx"
	SetupGuideSuffix   = "_setup_guide.txt"
)

// fieldMappingFileName is field_mapping.csv for single-datasource
// workbooks and <datasource>_field_mapping.csv otherwise.
func fieldMappingFileName(datasource string, single bool) string {
	if single {
		return FieldMappingFile
	}
	return SafeName(datasource) + "_" + FieldMappingFile
}

func setupGuideFileName(datasource string) string {
	return SafeName(datasource) + SetupGuideSuffix
}

// oneLine flattens line breaks so a value fits one CSV cell or guide line.
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

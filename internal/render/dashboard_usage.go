package render

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/vvka-141/twbmig/internal/extract"
	"github.com/vvka-141/twbmig/internal/workbook"
)

// DashboardUsageHeader is the header row of dashboard_usage.csv.
var DashboardUsageHeader = []string{
	"Item_Name",
	"Item_Type",
	"Chart_Type",
	"Mark_Type",
	"Size",
	"Used_Fields",
	"Filters",
	"Filter_Function",
	"Filter_Operation",
	"Filter_Values",
	"Filter_Description",
	"Slicers",
	"Rows_Layout",
	"Columns_Layout",
	"Cards_Layout",
	"Aggregation",
	"Power_BI_Recommendations",
}

const (
	listSeparator = "; "
	notApplicable = "N/A"
)

// chartRecommendations maps chart type keywords to Power BI visuals.
// Order matters: the first keyword contained in the chart type wins.
var chartRecommendations = []struct {
	keyword string
	visual  string
}{
	{"bar", "Clustered Column Chart or Bar Chart"},
	{"line", "Line Chart"},
	{"scatter", "Scatter Chart"},
	{"crosstab", "Matrix Visual"},
	{"map", "Map Visual (with geographic field mapping)"},
	{"pie", "Pie Chart or Donut Chart"},
	{"area", "Area Chart"},
	{"heatmap", "Matrix Visual with conditional formatting"},
	{"treemap", "Treemap Visual"},
	{"bubble", "Scatter Chart with size field"},
	{"histogram", "Column Chart with binning"},
	{"box", "Box and Whisker Chart"},
	{"gantt", "Gantt Chart (custom visual)"},
	{"funnel", "Funnel Chart"},
	{"bullet", "Column Chart with target line"},
}

// Recommendation suggests a Power BI visual for a worksheet.
func Recommendation(ws workbook.WorksheetInfo) string {
	chart := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(ws.ChartType))
	for _, m := range chartRecommendations {
		if strings.Contains(chart, m.keyword) {
			return m.visual
		}
	}

	if ws.Class == "Table" {
		switch {
		case len(ws.RowsLayout) > 0 && len(ws.ColumnsLayout) > 0:
			return "Matrix Visual with rows and columns layout"
		case len(ws.RowsLayout) > 0:
			return "Table Visual with row grouping"
		default:
			return "Table Visual"
		}
	}

	switch ws.MarkType {
	case "Automatic":
		return "Auto-chart (Power BI will suggest best visual)"
	case "", "Unknown":
		return "Review chart type manually for Power BI equivalent"
	default:
		return "Custom mark type: " + ws.MarkType + " - review for Power BI equivalent"
	}
}

// DashboardUsageRows lists worksheets, then dashboards, in workbook order.
func DashboardUsageRows(r *extract.Result) [][]string {
	rows := make([][]string, 0, len(r.Worksheets)+len(r.Dashboards))
	for _, ws := range r.Worksheets {
		rows = append(rows, worksheetRow(ws))
	}
	for _, db := range r.Dashboards {
		rows = append(rows, dashboardRow(db))
	}
	return rows
}

func worksheetRow(ws workbook.WorksheetInfo) []string {
	var filters, functions, operations, values, descriptions []string
	for _, f := range ws.Filters {
		label := f.Field + "(" + f.Class + ")"
		if f.Name != "" && f.Name != f.Field {
			label = f.Name + ": " + label
		}
		filters = append(filters, label)
		functions = append(functions, f.Function)
		operations = append(operations, f.Operation)
		values = append(values, strings.Join(f.Values, listSeparator))
		descriptions = append(descriptions, f.Description)
	}

	cards := make([]string, 0, len(ws.Cards))
	for _, c := range ws.Cards {
		cards = append(cards, c.Edge+": "+strings.Join(c.Cards, ", "))
	}

	aggregation := "No"
	if ws.AggregationEnabled {
		aggregation = "Yes"
	}

	return []string{
		ws.Name,
		"worksheet",
		ws.Class,
		ws.MarkType,
		notApplicable,
		strings.Join(ws.UsedFields, listSeparator),
		strings.Join(filters, listSeparator),
		strings.Join(functions, listSeparator),
		strings.Join(operations, listSeparator),
		strings.Join(values, listSeparator),
		strings.Join(descriptions, listSeparator),
		strings.Join(ws.Slicers, listSeparator),
		strings.Join(ws.RowsLayout, listSeparator),
		strings.Join(ws.ColumnsLayout, listSeparator),
		strings.Join(cards, listSeparator),
		aggregation,
		Recommendation(ws),
	}
}

func dashboardRow(db workbook.DashboardInfo) []string {
	filters := make([]string, 0, len(db.Filters))
	for _, f := range db.Filters {
		filters = append(filters, f.Field+"("+f.Type+")")
	}
	return []string{
		db.Name,
		"dashboard",
		"Dashboard",
		notApplicable,
		db.Width + "x" + db.Height,
		notApplicable,
		strings.Join(filters, listSeparator),
		notApplicable,
		notApplicable,
		notApplicable,
		notApplicable,
		notApplicable,
		notApplicable,
		notApplicable,
		notApplicable,
		notApplicable,
		"Create new Power BI report page with same layout",
	}
}

// DashboardUsageCSV renders dashboard_usage.csv.
func DashboardUsageCSV(r *extract.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(DashboardUsageHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(DashboardUsageRows(r)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

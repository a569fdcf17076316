package workbook

import (
	"strings"

	"github.com/vvka-141/twbmig/internal/fields"
)

// WorksheetInfo is the migration-relevant summary of a worksheet.
type WorksheetInfo struct {
	Name               string         `json:"name"`
	Datasources        []string       `json:"datasources"`
	Class              string         `json:"class"`
	ChartType          string         `json:"chart_type"`
	MarkType           string         `json:"mark_type"`
	UsedFields         []string       `json:"used_fields"`
	Filters            []FilterInfo   `json:"filters"`
	Slicers            []string       `json:"slicers"`
	RowsLayout         []string       `json:"rows_layout"`
	ColumnsLayout      []string       `json:"columns_layout"`
	Encodings          []EncodingInfo `json:"encodings,omitempty"`
	Cards              []CardEdge     `json:"cards,omitempty"`
	AggregationEnabled bool           `json:"aggregation_enabled"`
}

// FilterInfo describes one worksheet filter.
type FilterInfo struct {
	Name        string   `json:"name"`
	Class       string   `json:"class"`
	Field       string   `json:"field"`
	Column      string   `json:"column"`
	Function    string   `json:"function,omitempty"`
	Operation   string   `json:"operation,omitempty"`
	Values      []string `json:"values,omitempty"`
	Min         string   `json:"min,omitempty"`
	Max         string   `json:"max,omitempty"`
	Description string   `json:"description"`
}

// EncodingInfo is one mark-card channel and the field placed on it.
type EncodingInfo struct {
	Channel string `json:"channel"`
	Field   string `json:"field"`
}

// CardEdge lists the UI cards docked on one edge of a worksheet window.
type CardEdge struct {
	Edge  string   `json:"edge"`
	Cards []string `json:"cards"`
}

// chartHints maps worksheet-name fragments to chart types; checked in order.
var chartHints = []struct{ fragment, chart string }{
	{"table", "Table"},
	{"line", "Line Chart"},
	{"bar", "Bar Chart"},
	{"column", "Bar Chart"},
	{"scatter", "Scatter Plot"},
	{"heatmap", "Heatmap"},
	{"treemap", "Treemap"},
	{"map", "Map"},
	{"pie", "Pie Chart"},
}

var markCharts = map[string]string{
	"text":         "Table",
	"table":        "Table",
	"line":         "Line Chart",
	"polygon":      "Line Chart",
	"bar":          "Bar Chart",
	"square":       "Heatmap",
	"circle":       "Scatter Plot",
	"shape":        "Scatter Plot",
	"point":        "Scatter Plot",
	"area":         "Area Chart",
	"pie":          "Pie Chart",
	"map":          "Map",
	"multipolygon": "Map",
	"ganttbar":     "Gantt Chart",
}

const (
	defaultChartType = "Bar Chart"
	automaticMark    = "Automatic"
)

// WorksheetInfos summarizes every worksheet in document order.
func (wb *Workbook) WorksheetInfos() []WorksheetInfo {
	cards := make(map[string][]CardEdge)
	for _, w := range wb.Windows {
		if w.Class == "worksheet" {
			cards[w.Name] = cardEdges(w)
		}
	}

	out := make([]WorksheetInfo, 0, len(wb.Worksheets))
	for _, ws := range wb.Worksheets {
		info := ws.info(wb)
		info.Cards = cards[ws.Name]
		out = append(out, info)
	}
	return out
}

func (ws *Worksheet) info(wb *Workbook) WorksheetInfo {
	t := ws.Table
	info := WorksheetInfo{
		Name:          ws.Name,
		MarkType:      ws.markType(),
		Slicers:       []string{},
		Filters:       []FilterInfo{},
		RowsLayout:    shelfLayout(t.Rows),
		ColumnsLayout: shelfLayout(t.Cols),
	}
	info.Class = ws.class(info.MarkType)
	info.ChartType = inferChartType(ws.Name, info.MarkType)

	for _, d := range t.View.Datasources {
		if d.Name != "" {
			info.Datasources = append(info.Datasources, d.Name)
		}
	}
	info.UsedFields = ws.usedFields(wb)
	for _, f := range t.View.Filters {
		info.Filters = append(info.Filters, filterInfo(f))
	}
	for _, s := range t.View.Slices {
		if name := fields.NormalizeFieldReference(s); name != "" {
			info.Slicers = append(info.Slicers, name)
		}
	}
	for _, p := range t.Panes {
		for _, e := range p.Encodings.Items {
			if e.Column == "" {
				continue
			}
			info.Encodings = append(info.Encodings, EncodingInfo{
				Channel: e.XMLName.Local,
				Field:   fields.NormalizeFieldReference(e.Column),
			})
		}
	}
	if t.View.Aggregation != nil {
		info.AggregationEnabled = t.View.Aggregation.Value == "true"
	}
	return info
}

func (ws *Worksheet) markType() string {
	for _, p := range ws.Table.Panes {
		if p.Mark != nil && p.Mark.Class != "" {
			return p.Mark.Class
		}
	}
	return automaticMark
}

// class is the coarse visual class: Map, Table or Chart.
func (ws *Worksheet) class(mark string) string {
	switch strings.ToLower(mark) {
	case "map", "multipolygon":
		return "Map"
	case "text":
		return "Table"
	}
	shelves := ws.Table.Rows + " " + ws.Table.Cols
	if strings.Contains(shelves, "Latitude (generated)") || strings.Contains(shelves, "Longitude (generated)") {
		return "Map"
	}
	if strings.TrimSpace(shelves) == "" {
		return "Table"
	}
	return "Chart"
}

func inferChartType(name, mark string) string {
	lower := strings.ToLower(name)
	for _, h := range chartHints {
		if strings.Contains(lower, h.fragment) {
			return h.chart
		}
	}
	if chart, ok := markCharts[strings.ToLower(mark)]; ok {
		return chart
	}
	return defaultChartType
}

// usedFields lists the display names of the columns a worksheet depends on.
// Calculated columns are shown by caption rather than by internal name.
func (ws *Worksheet) usedFields(wb *Workbook) []string {
	used := []string{}
	seen := make(map[string]bool)
	for _, dep := range ws.Table.View.Dependencies {
		captions := make(map[string]string)
		if ds, ok := wb.Datasource(dep.Datasource); ok {
			for _, c := range ds.Columns {
				if c.Caption != "" {
					captions[c.Name] = c.Caption
				}
			}
		}
		for _, c := range dep.Columns {
			if c.Name == "" {
				continue
			}
			name := fields.StripBrackets(c.Name)
			if c.Caption != "" {
				name = c.Caption
			} else if caption, ok := captions[c.Name]; ok {
				name = caption
			}
			name = fields.CleanCaption(name)
			if !seen[name] {
				seen[name] = true
				used = append(used, name)
			}
		}
	}
	return used
}

// shelfLayout lists the fields placed on a rows or cols shelf.
func shelfLayout(text string) []string {
	layout := []string{}
	matches := qualifiedReference.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		if s := fields.StripBrackets(text); s != "" {
			layout = append(layout, s)
		}
		return layout
	}
	for _, m := range matches {
		if name := fields.NormalizeFieldReference("[" + m[2] + "]"); name != "" {
			layout = append(layout, name)
		}
	}
	return layout
}

func filterInfo(f Filter) FilterInfo {
	info := FilterInfo{
		Name:   f.Name,
		Class:  f.Class,
		Column: fields.StripBrackets(f.Column),
		Field:  fields.NormalizeFieldReference(f.Column),
		Min:    strings.TrimSpace(f.Min),
		Max:    strings.TrimSpace(f.Max),
	}
	if info.Name == "" {
		info.Name = info.Field
	}
	if info.Class == "" {
		info.Class = "Unknown"
	}
	if g := f.GroupFilter; g != nil {
		info.Function = g.Function
		info.Operation = g.attr("op")
		info.Values = memberValues(*g)
	}
	info.Description = describeFilter(info)
	return info
}

func (g GroupFilter) attr(local string) string {
	for _, a := range g.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func memberValues(g GroupFilter) []string {
	var values []string
	if g.Function == "member" && g.Member != "" {
		values = append(values, cleanMember(g.Member))
	}
	for _, child := range g.Children {
		values = append(values, memberValues(child)...)
	}
	return values
}

// cleanMember turns "\"West\"" into West and "[ds].[x]" into x.
func cleanMember(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") {
		v = fields.StripBrackets(v)
		if i := strings.LastIndex(v, "."); i >= 0 {
			v = v[i+1:]
		}
	}
	return strings.Trim(v, `"`)
}

func describeFilter(f FilterInfo) string {
	switch f.Function {
	case "union", "member":
		if len(f.Values) > 0 {
			return "Show only: " + strings.Join(f.Values, ", ")
		}
		return "Include specific values"
	case "except":
		if len(f.Values) > 0 {
			return "Exclude: " + strings.Join(f.Values, ", ")
		}
		return "Exclude specific values"
	case "level-members":
		return "Show all values in level"
	case "":
		switch {
		case f.Min != "" && f.Max != "":
			return "Between " + f.Min + " and " + f.Max
		case f.Min != "":
			return "At least " + f.Min
		case f.Max != "":
			return "At most " + f.Max
		case f.Class == "relative-date":
			return "Relative date range"
		}
		return ""
	default:
		return f.Function + " operation"
	}
}

func cardEdges(w Window) []CardEdge {
	var out []CardEdge
	for _, e := range w.Edges {
		var cards []string
		for _, s := range e.Strips {
			for _, c := range s.Cards {
				if c.Type != "" {
					cards = append(cards, c.Type)
				}
			}
		}
		if len(cards) > 0 {
			out = append(out, CardEdge{Edge: e.Name, Cards: cards})
		}
	}
	return out
}

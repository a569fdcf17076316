package workbook

import (
	"github.com/vvka-141/twbmig/internal/fields"
)

// DashboardInfo is the migration-relevant summary of a dashboard.
type DashboardInfo struct {
	Name       string            `json:"name"`
	Width      string            `json:"width"`
	Height     string            `json:"height"`
	Worksheets []string          `json:"worksheets"`
	Filters    []DashboardFilter `json:"filters"`
}

// DashboardFilter is a quick-filter or parameter control placed on a dashboard.
type DashboardFilter struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Mode  string `json:"mode,omitempty"`
}

const unknownSize = "Unknown"

// DashboardInfos summarizes every dashboard in document order.
func (wb *Workbook) DashboardInfos() []DashboardInfo {
	sheets := make(map[string]bool, len(wb.Worksheets))
	for _, ws := range wb.Worksheets {
		sheets[ws.Name] = true
	}

	out := make([]DashboardInfo, 0, len(wb.Dashboards))
	for _, d := range wb.Dashboards {
		info := DashboardInfo{
			Name:       d.Name,
			Width:      unknownSize,
			Height:     unknownSize,
			Worksheets: []string{},
			Filters:    []DashboardFilter{},
		}
		if d.Size != nil {
			info.Width = firstNonEmpty(d.Size.MaxWidth, d.Size.Width, d.Size.MinWidth, unknownSize)
			info.Height = firstNonEmpty(d.Size.MaxHeight, d.Size.Height, d.Size.MinHeight, unknownSize)
		}

		seen := make(map[string]bool)
		walkZones(d.Zones, func(z Zone) {
			switch z.Type {
			case "filter", "paramctrl":
				info.Filters = append(info.Filters, DashboardFilter{
					Type:  z.Type,
					Field: fields.NormalizeFieldReference(z.Param),
					Mode:  z.Mode,
				})
			case "":
				if sheets[z.Name] && !seen[z.Name] {
					seen[z.Name] = true
					info.Worksheets = append(info.Worksheets, z.Name)
				}
			}
		})
		out = append(out, info)
	}
	return out
}

func walkZones(zones []Zone, fn func(Zone)) {
	for _, z := range zones {
		fn(z)
		walkZones(z.Zones, fn)
	}
}

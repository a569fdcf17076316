package workbook

import (
	"strings"

	"github.com/vvka-141/twbmig/internal/fields"
)

// ParameterInfo describes a workbook parameter.
type ParameterInfo struct {
	Name          string   `json:"name"`
	InternalName  string   `json:"internal_name"`
	Datatype      string   `json:"datatype"`
	DomainType    string   `json:"domain_type"`
	CurrentValue  string   `json:"current_value"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	Range         *Range   `json:"range,omitempty"`
}

// ParameterInfos lists every column carrying param-domain-type, across all datasources.
func (wb *Workbook) ParameterInfos() []ParameterInfo {
	var out []ParameterInfo
	for _, ds := range wb.Datasources {
		for _, c := range ds.Columns {
			if c.ParamDomainType == nil {
				continue
			}
			name := fields.StripBrackets(c.Name)
			if c.Caption != "" {
				name = fields.CleanCaption(c.Caption)
			}
			p := ParameterInfo{
				Name:         name,
				InternalName: fields.StripBrackets(c.Name),
				Datatype:     c.Datatype,
				DomainType:   *c.ParamDomainType,
				Range:        c.Range,
			}
			if c.Value != nil {
				p.CurrentValue = strings.Trim(*c.Value, `"`)
			}
			for _, m := range c.Members {
				p.AllowedValues = append(p.AllowedValues, strings.Trim(m.Value, `"`))
			}
			out = append(out, p)
		}
	}
	return out
}

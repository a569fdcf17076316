package extract

import (
	"time"

	"github.com/vvka-141/twbmig/internal/archive"
	"github.com/vvka-141/twbmig/internal/fields"
	"github.com/vvka-141/twbmig/internal/workbook"
)

// Result is everything extracted from one workbook.
type Result struct {
	Workbook       string                   `json:"workbook"`
	SourcePath     string                   `json:"source_path"`
	Document       string                   `json:"document"`
	Packaged       bool                     `json:"packaged"`
	Checksum       string                   `json:"checksum"`
	TableauVersion string                   `json:"tableau_version,omitempty"`
	SourceBuild    string                   `json:"source_build,omitempty"`
	ExtractedAt    time.Time                `json:"extracted_at"`
	PackagedFiles  []archive.Entry          `json:"packaged_files,omitempty"`
	Datasources    []*Datasource            `json:"datasources"`
	Worksheets     []workbook.WorksheetInfo `json:"worksheets"`
	Dashboards     []workbook.DashboardInfo `json:"dashboards"`
	Parameters     []workbook.ParameterInfo `json:"parameters"`
	CustomSQL      []SQLQuery               `json:"custom_sql"`
	Skipped        []string                 `json:"skipped_datasources,omitempty"`
}

// Datasource is one resolved datasource.
type Datasource struct {
	Name        string                    `json:"name"`
	Caption     string                    `json:"caption,omitempty"`
	Parameters  bool                      `json:"is_parameters"`
	Connections []workbook.ConnectionInfo `json:"connections"`
	Tables      []workbook.TableInfo      `json:"tables"`
	Joins       []workbook.JoinInfo       `json:"joins,omitempty"`
	HasExtract  bool                      `json:"has_extract"`
	Worksheets  []string                  `json:"worksheets"`
	Stats       fields.Stats              `json:"stats"`
	Fields      *fields.Registry          `json:"fields"`
	Diagnostics []fields.Diagnostic       `json:"diagnostics,omitempty"`
}

// DisplayName is the caption when set, the internal name otherwise.
func (d *Datasource) DisplayName() string {
	if d.Caption != "" {
		return d.Caption
	}
	return d.Name
}

// TableReference returns the fully qualified reference of the table a field
// belongs to, matched by alias or table name.
func (d *Datasource) TableReference(table string) (string, bool) {
	if table == "" {
		return "", false
	}
	for _, t := range d.Tables {
		if t.Alias == table || t.Table == table {
			return t.FullReference, true
		}
	}
	return "", false
}

// SQLQuery is a custom SQL relation with its normalized fingerprint.
type SQLQuery struct {
	Datasource  string `json:"datasource"`
	Name        string `json:"name"`
	Connection  string `json:"connection,omitempty"`
	SQL         string `json:"sql"`
	Fingerprint string `json:"fingerprint"`

	// SharedWith lists the other datasources carrying the same query after normalization.
	SharedWith []string `json:"shared_with,omitempty"`
}

// Duplicate reports whether the query also appears in another datasource.
func (q SQLQuery) Duplicate() bool { return len(q.SharedWith) > 0 }

// Datasource returns the datasource with the given internal name or caption.
func (r *Result) Datasource(name string) (*Datasource, bool) {
	for _, d := range r.Datasources {
		if d.Name == name || (d.Caption != "" && d.Caption == name) {
			return d, true
		}
	}
	return nil, false
}

// Summary counts a result for console output.
type Summary struct {
	Datasources int          `json:"datasources"`
	Worksheets  int          `json:"worksheets"`
	Dashboards  int          `json:"dashboards"`
	Parameters  int          `json:"parameters"`
	CustomSQL   int          `json:"custom_sql"`
	Fields      fields.Stats `json:"fields"`
	Diagnostics int          `json:"diagnostics"`
}

// Summary totals the result across datasources.
func (r *Result) Summary() Summary {
	s := Summary{
		Worksheets: len(r.Worksheets),
		Dashboards: len(r.Dashboards),
		Parameters: len(r.Parameters),
		CustomSQL:  len(r.CustomSQL),
	}
	for _, d := range r.Datasources {
		if !d.Parameters {
			s.Datasources++
		}
		s.Fields.Total += d.Stats.Total
		s.Fields.Regular += d.Stats.Regular
		s.Fields.Calculated += d.Stats.Calculated
		s.Fields.Parameters += d.Stats.Parameters
		s.Fields.Used += d.Stats.Used
		s.Diagnostics += len(d.Diagnostics)
	}
	return s
}

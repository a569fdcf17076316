package workbook

import "encoding/xml"

// Workbook is the decoded <workbook> root of a .twb document.
// Only the elements needed for migration are modeled; everything else is skipped.
type Workbook struct {
	XMLName     xml.Name     `xml:"workbook"`
	Version     string       `xml:"version,attr"`
	SourceBuild string       `xml:"source-build,attr"`
	Datasources []Datasource `xml:"datasources>datasource"`
	Worksheets  []Worksheet  `xml:"worksheets>worksheet"`
	Dashboards  []Dashboard  `xml:"dashboards>dashboard"`
	Windows     []Window     `xml:"windows>window"`

	// Source is the path or archive entry the document was read from.
	Source string `xml:"-"`
}

// Datasource is a workbook-level <datasource>.
type Datasource struct {
	Name          string      `xml:"name,attr"`
	Caption       string      `xml:"caption,attr"`
	Inline        string      `xml:"inline,attr"`
	HasConnection string      `xml:"hasconnection,attr"`
	Connection    *Connection `xml:"connection"`
	Columns       []Column    `xml:"column"`
	Extract       *Extract    `xml:"extract"`
}

// Connection is a <connection>. Federated connections wrap the real ones in
// <named-connections>; legacy workbooks put the attributes on this element.
type Connection struct {
	Class            string            `xml:"class,attr" json:"class"`
	Server           string            `xml:"server,attr" json:"server,omitempty"`
	DBName           string            `xml:"dbname,attr" json:"dbname,omitempty"`
	Schema           string            `xml:"schema,attr" json:"schema,omitempty"`
	Username         string            `xml:"username,attr" json:"username,omitempty"`
	Port             string            `xml:"port,attr" json:"port,omitempty"`
	Authentication   string            `xml:"authentication,attr" json:"authentication,omitempty"`
	Dialect          string            `xml:"connection-dialect,attr" json:"connection_dialect,omitempty"`
	Project          string            `xml:"project,attr" json:"project,omitempty"`
	Catalog          string            `xml:"CATALOG,attr" json:"catalog,omitempty"`
	ExecCatalog      string            `xml:"EXECCATALOG,attr" json:"exec_catalog,omitempty"`
	Filename         string            `xml:"filename,attr" json:"filename,omitempty"`
	NamedConnections []NamedConnection `xml:"named-connections>named-connection" json:"named_connections,omitempty"`
	Relation         *Relation         `xml:"relation" json:"relation,omitempty"`
	Cols             []ColMap          `xml:"cols>map" json:"-"`
	MetadataRecords  []MetadataRecord  `xml:"metadata-records>metadata-record" json:"-"`
}

// NamedConnection is one <named-connection> of a federated connection.
type NamedConnection struct {
	Name       string     `xml:"name,attr" json:"name"`
	Caption    string     `xml:"caption,attr" json:"caption,omitempty"`
	Connection Connection `xml:"connection" json:"connection"`
}

// Relation is a <relation>: a table, a join of nested relations, or custom SQL text.
type Relation struct {
	Name       string     `xml:"name,attr" json:"name,omitempty"`
	Type       string     `xml:"type,attr" json:"type"`
	Table      string     `xml:"table,attr" json:"table,omitempty"`
	Connection string     `xml:"connection,attr" json:"connection,omitempty"`
	Join       string     `xml:"join,attr" json:"join,omitempty"`
	Text       string     `xml:",chardata" json:"text,omitempty"`
	Relations  []Relation `xml:"relation" json:"relations,omitempty"`
}

// ColMap is one <cols><map key value/> entry.
type ColMap struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

// MetadataRecord is a <metadata-record>. Child elements are optional.
type MetadataRecord struct {
	Class       string  `xml:"class,attr"`
	RemoteName  *string `xml:"remote-name"`
	LocalName   *string `xml:"local-name"`
	ParentName  *string `xml:"parent-name"`
	LocalType   *string `xml:"local-type"`
	Aggregation *string `xml:"aggregation"`
}

// Column is a datasource-level <column> element.
type Column struct {
	Name            string       `xml:"name,attr"`
	Caption         string       `xml:"caption,attr"`
	Datatype        string       `xml:"datatype,attr"`
	Role            string       `xml:"role,attr"`
	Type            string       `xml:"type,attr"`
	ParamDomainType *string      `xml:"param-domain-type,attr"`
	Value           *string      `xml:"value,attr"`
	Calculation     *Calculation `xml:"calculation"`
	Range           *Range       `xml:"range"`
	Members         []Member     `xml:"members>member"`
}

// Calculation is the <calculation> child of a calculated column.
type Calculation struct {
	Class   string `xml:"class,attr"`
	Formula string `xml:"formula,attr"`
}

// Range is the allowed range of a range parameter.
type Range struct {
	Min         string `xml:"min,attr" json:"min,omitempty"`
	Max         string `xml:"max,attr" json:"max,omitempty"`
	Granularity string `xml:"granularity,attr" json:"granularity,omitempty"`
}

// Member is one allowed value of a list parameter.
type Member struct {
	Value string `xml:"value,attr"`
	Alias string `xml:"alias,attr"`
}

// Extract is a datasource <extract> block.
type Extract struct {
	Enabled    string      `xml:"enabled,attr" json:"enabled"`
	Connection *Connection `xml:"connection" json:"connection,omitempty"`
}

// Worksheet is a <worksheet>.
type Worksheet struct {
	Name  string         `xml:"name,attr"`
	Table WorksheetTable `xml:"table"`
}

// WorksheetTable is the <table> of a worksheet: the view, the panes and the shelves.
type WorksheetTable struct {
	View  View   `xml:"view"`
	Panes []Pane `xml:"panes>pane"`
	Rows  string `xml:"rows"`
	Cols  string `xml:"cols"`
}

// View holds the datasources, dependencies, filters and slices of a worksheet.
type View struct {
	Datasources  []ViewDatasource `xml:"datasources>datasource"`
	Dependencies []Dependencies   `xml:"datasource-dependencies"`
	Filters      []Filter         `xml:"filter"`
	Slices       []string         `xml:"slices>column"`
	Aggregation  *Toggle          `xml:"aggregation"`
}

// ViewDatasource names a datasource a worksheet draws from.
type ViewDatasource struct {
	Name    string `xml:"name,attr"`
	Caption string `xml:"caption,attr"`
}

// Dependencies lists the columns a worksheet uses from one datasource.
type Dependencies struct {
	Datasource      string           `xml:"datasource,attr"`
	Columns         []Column         `xml:"column"`
	ColumnInstances []ColumnInstance `xml:"column-instance"`
}

// ColumnInstance is a column placed on a shelf with a derivation, e.g. [sum:Sales:qk].
type ColumnInstance struct {
	Column     string `xml:"column,attr"`
	Derivation string `xml:"derivation,attr"`
	Name       string `xml:"name,attr"`
	Pivot      string `xml:"pivot,attr"`
	Type       string `xml:"type,attr"`
}

// Filter is a worksheet <filter>.
type Filter struct {
	Class       string       `xml:"class,attr"`
	Column      string       `xml:"column,attr"`
	Name        string       `xml:"name,attr"`
	GroupFilter *GroupFilter `xml:"groupfilter"`
	Min         string       `xml:"min"`
	Max         string       `xml:"max"`
}

// GroupFilter is a (possibly nested) <groupfilter>.
type GroupFilter struct {
	Function string        `xml:"function,attr"`
	Member   string        `xml:"member,attr"`
	Level    string        `xml:"level,attr"`
	Attrs    []xml.Attr    `xml:",any,attr"`
	Children []GroupFilter `xml:"groupfilter"`
}

// Toggle is an element carrying a value='true|false' attribute.
type Toggle struct {
	Value string `xml:"value,attr"`
}

// Pane is one <pane> of a worksheet.
type Pane struct {
	Mark      *Mark     `xml:"mark"`
	Encodings Encodings `xml:"encodings"`
}

// Mark is the mark type of a pane.
type Mark struct {
	Class string `xml:"class,attr"`
}

// Encodings holds the mark-card encodings of a pane (color, size, text, ...).
type Encodings struct {
	Items []Encoding `xml:",any"`
}

// Encoding is one encoding; the element name is the channel.
type Encoding struct {
	XMLName xml.Name
	Column  string `xml:"column,attr"`
}

// Dashboard is a <dashboard>.
type Dashboard struct {
	Name  string `xml:"name,attr"`
	Size  *Size  `xml:"size"`
	Zones []Zone `xml:"zones>zone"`
}

// Size is a dashboard <size>.
type Size struct {
	Width     string `xml:"width,attr"`
	Height    string `xml:"height,attr"`
	MaxWidth  string `xml:"maxwidth,attr"`
	MaxHeight string `xml:"maxheight,attr"`
	MinWidth  string `xml:"minwidth,attr"`
	MinHeight string `xml:"minheight,attr"`
}

// Zone is a (possibly nested) dashboard <zone>.
type Zone struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Type  string `xml:"type-v2,attr"`
	Param string `xml:"param,attr"`
	Mode  string `xml:"mode,attr"`
	Zones []Zone `xml:"zone"`
}

// Window is a <window>; worksheet windows carry the card layout.
type Window struct {
	Class string `xml:"class,attr"`
	Name  string `xml:"name,attr"`
	Edges []Edge `xml:"cards>edge"`
}

// Edge is one side of a window's card area.
type Edge struct {
	Name   string  `xml:"name,attr"`
	Strips []Strip `xml:"strip"`
}

// Strip groups cards along an edge.
type Strip struct {
	Cards []Card `xml:"card"`
}

// Card is one UI card (filters, marks, legend, ...).
type Card struct {
	Type  string `xml:"type,attr"`
	Param string `xml:"param,attr"`
}

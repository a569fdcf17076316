package workbook

import (
	"strings"

	"github.com/vvka-141/twbmig/internal/fields"
)

// ConnectionInfo describes one physical connection of a datasource.
type ConnectionInfo struct {
	Name           string `json:"name,omitempty"`
	Class          string `json:"class"`
	Server         string `json:"server,omitempty"`
	Database       string `json:"database,omitempty"`
	Schema         string `json:"schema,omitempty"`
	Username       string `json:"username,omitempty"`
	Port           string `json:"port,omitempty"`
	Project        string `json:"project,omitempty"`
	Authentication string `json:"authentication,omitempty"`
	Dialect        string `json:"dialect,omitempty"`
	Filename       string `json:"filename,omitempty"`
}

// TableInfo is a table relation of a datasource.
type TableInfo struct {
	Alias         string `json:"alias"`
	Table         string `json:"table"`
	Connection    string `json:"connection,omitempty"`
	FullReference string `json:"full_reference"`
}

// JoinInfo is a join relation and the tables it combines.
type JoinInfo struct {
	Join   string   `json:"join"`
	Tables []string `json:"tables"`
}

// CustomSQL is a relation of type "text".
type CustomSQL struct {
	Name       string `json:"name"`
	Connection string `json:"connection,omitempty"`
	SQL        string `json:"sql"`
}

// Connections lists the physical connections of ds. Federated connections are
// unwrapped into their named connections.
func (ds *Datasource) Connections() []ConnectionInfo {
	c := ds.Connection
	if c == nil {
		return nil
	}
	if len(c.NamedConnections) == 0 {
		if c.Class == "" || c.Class == "federated" {
			return nil
		}
		return []ConnectionInfo{connectionInfo("", *c)}
	}
	out := make([]ConnectionInfo, 0, len(c.NamedConnections))
	for _, nc := range c.NamedConnections {
		out = append(out, connectionInfo(nc.Name, nc.Connection))
	}
	return out
}

func connectionInfo(name string, c Connection) ConnectionInfo {
	project := firstNonEmpty(c.ExecCatalog, c.Project, c.Catalog)
	return ConnectionInfo{
		Name:           name,
		Class:          c.Class,
		Server:         c.Server,
		Database:       c.DBName,
		Schema:         c.Schema,
		Username:       c.Username,
		Port:           c.Port,
		Project:        project,
		Authentication: c.Authentication,
		Dialect:        c.Dialect,
		Filename:       c.Filename,
	}
}

// Tables lists table relations in document order, including those nested in joins.
func (ds *Datasource) Tables() []TableInfo {
	var out []TableInfo
	conns := ds.connectionsByName()
	ds.walkRelations(func(r Relation) {
		if r.Type != "table" {
			return
		}
		out = append(out, TableInfo{
			Alias:         r.Name,
			Table:         r.Table,
			Connection:    r.Connection,
			FullReference: fullReference(r.Table, conns[r.Connection]),
		})
	})
	return out
}

// Joins lists join relations in document order.
func (ds *Datasource) Joins() []JoinInfo {
	var out []JoinInfo
	ds.walkRelations(func(r Relation) {
		if r.Type != "join" {
			return
		}
		j := JoinInfo{Join: r.Join}
		for _, child := range r.Relations {
			if child.Name != "" {
				j.Tables = append(j.Tables, child.Name)
			}
		}
		out = append(out, j)
	})
	return out
}

// CustomSQL lists custom SQL relations with non-blank text.
func (ds *Datasource) CustomSQL() []CustomSQL {
	var out []CustomSQL
	ds.walkRelations(func(r Relation) {
		sql := strings.TrimSpace(r.Text)
		if r.Type != "text" || sql == "" {
			return
		}
		name := r.Name
		if name == "" {
			name = "Custom SQL Query"
		}
		out = append(out, CustomSQL{Name: name, Connection: r.Connection, SQL: sql})
	})
	return out
}

// HasExtract reports whether the datasource is backed by an enabled extract.
func (ds *Datasource) HasExtract() bool {
	return ds.Extract != nil && ds.Extract.Enabled == "true"
}

func (ds *Datasource) walkRelations(fn func(Relation)) {
	if ds.Connection == nil || ds.Connection.Relation == nil {
		return
	}
	var walk func(r Relation)
	walk = func(r Relation) {
		fn(r)
		for _, child := range r.Relations {
			walk(child)
		}
	}
	walk(*ds.Connection.Relation)
}

func (ds *Datasource) connectionsByName() map[string]Connection {
	out := make(map[string]Connection)
	if ds.Connection == nil {
		return out
	}
	for _, nc := range ds.Connection.NamedConnections {
		out[nc.Name] = nc.Connection
	}
	return out
}

// fullReference renders "[public].[orders]" as "public.orders". BigQuery
// tables are qualified with the billing project and dataset when the table
// reference does not already carry them.
func fullReference(table string, conn Connection) string {
	ref := fields.StripBrackets(table)
	if conn.Class != "bigquery" || strings.Count(ref, ".") >= 2 {
		return ref
	}
	parts := strings.Split(ref, ".")
	name := parts[len(parts)-1]
	dataset := conn.Schema
	if len(parts) == 2 {
		dataset = parts[0]
	}
	return strings.Join(nonEmpty(firstNonEmpty(conn.ExecCatalog, conn.Project, conn.Catalog), dataset, name), ".")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

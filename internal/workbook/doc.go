// Package workbook decodes Tableau .twb documents and derives the views the
// rest of twbmig needs from them.
//
// Parse maps the XML onto typed structs with encoding/xml. From a parsed
// Workbook the package builds:
//   - the four resolver inputs of a datasource (Datasource.Sources)
//   - the qualified field references worksheets make (Workbook.FieldReferences)
//   - worksheet, dashboard and parameter summaries
//   - connections, tables, joins and custom SQL per datasource
//
// Elements the package does not model are skipped. A missing optional element
// never fails parsing; only malformed XML or a non-workbook root does.
package workbook

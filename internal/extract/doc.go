// Package extract orchestrates one workbook run: locate the .twb (unpacking
// a .twbx when needed), parse it, resolve the field identities of every
// datasource and collect worksheets, dashboards, parameters and custom SQL
// into a Result that the renderers consume.
//
// The Parameters datasource is resolved first. Its internal-name to caption
// map is handed to every other datasource so that formulas such as
// [Parameters].[Parameter 1] come out as [Parameters].[Growth Rate].
package extract

// Package render turns an extract.Result into migration artifacts:
//
//   - workbook.json: the full result
//   - field_mapping.csv (or <datasource>_field_mapping.csv when the workbook
//     has several datasources): one row per field, columns first
//   - dashboard_usage.csv: worksheets and dashboards with Power BI visual suggestions
//   - field_inventory.xlsx: a Summary sheet plus one field sheet per datasource
//   - <datasource>_setup_guide.txt: connection, tables, relationships,
//     parameters, custom SQL and calculated fields to rebuild
//
// Writer places them under <output>/<workbook>/ through a
// filesystem.FileSystemProvider.
package render

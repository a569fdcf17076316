// Package fields resolves the identity of Tableau fields across the metadata
// sources of a workbook datasource.
//
// # Overview
//
// A single logical field shows up under three naming schemes:
//   - internal calculation IDs ("Calculation_1234567890")
//   - database remote names ("sales_amount")
//   - user-facing captions ("Sales Amount")
//
// The Resolver merges four inconsistently keyed collections (the <cols> map,
// <metadata-records>, the workbook object model's fields, and standalone
// calculation columns) into a Registry with one ResolvedField per logical
// field, a stable canonical name, a single Kind, and formulas that reference
// canonical names instead of internal IDs.
//
// # Usage
//
//	r := fields.NewResolver(ds.Name, fields.WithLogger(logger))
//	reg := r.Ingest(sources)
//	r.MarkUsage(reg, worksheetRefs)
//	r.ResolveCalculationReferences(reg)
//
// or equivalently r.Resolve(sources, worksheetRefs).
//
// # Guarantees
//
//  1. Deterministic: the same inputs in the same order yield identical registries
//  2. Total: incomplete records degrade to defaults and never abort ingestion
//  3. Monotonic usage: UsedInWorkbook is never reset once set
//  4. Idempotent reference resolution
//
// Resolution is single-threaded; callers resolving several datasources in
// parallel must give each its own Resolver and Registry.
package fields

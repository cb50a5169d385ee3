// Package exporter writes ledger tables and spread results out of the
// application for downstream tools.
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility. Relative paths land in the export
// directory.
//
// WorkbookExporter: Writes a set of entity tables into one XLSX workbook, one
// sheet per entity, with raw cell text.
//
// Spread results (value differences, averages and transit differentials) are
// written as two-column CSV files keyed in chronological order.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	err := w.WriteSpread("ulsd_vs_rbob.csv", "spread", points)
//
//	wb := exporter.NewWorkbookExporter(paths, logger)
//	err = wb.ExportLedgers("ledgers.xlsx", tables)
package exporter

// Package ledger implements the per-entity time series tables.
//
// A Ledger is an in-memory, date-sorted sequence of rows with unique dates.
// A Store persists one delimited file per entity under the ledger directory
// and serializes all writers of an entity behind an exclusive lock. Every
// write produces the complete replacement file in a temporary file next to
// the target and renames it into place, so readers never see a partial table.
//
// Cell values are kept as the raw text read from disk. Cells that a merge
// does not touch are written back exactly as they were read.
package ledger

// Package freshness keeps the per-(entity, cycle) acceptance timestamps and
// the per-source watermarks of merged bulletins.
//
// Records only move forward. A record with Known=false marks legacy data
// merged before timestamps were tracked; any bulletin supersedes it.
package freshness

// Package calendar implements the calendar projections used by the merger and
// the spread engine: contract-month delivery windows, business-day arithmetic
// against an injected holiday calendar, circular 1..72 cycle ranges and
// resolution of partial month/day labels.
//
// Everything in this package is pure computation. Holiday sets are loaded
// once by the caller and passed in explicitly.
//
// Example usage:
//
//	win, err := calendar.ContractWindowFor("K", 2024)
//	// win.Start == 2023-05-01, win.End == 2024-04-30
//
//	deadline := calendar.SubtractBusinessDays(domain.MustParseDate("2025-01-06"), 3, nil)
//	// deadline == 2025-01-01
//
//	cycles, err := calendar.ExpandCycleRange(70, 3)
//	// cycles == [70 71 72 1 2 3]
package calendar

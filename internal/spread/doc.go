// Package spread derives analytics from finalized ledgers: pairwise
// differences between two series, strict multi-year averages, contract
// roll-forward and transit-time differentials.
//
// Series keys are either "M/D" labels or ISO dates. Results are always ordered
// chronologically by parsing the key, never by string comparison, so "2/9"
// sorts before "10/3".
package spread

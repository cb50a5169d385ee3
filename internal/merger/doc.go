// Package merger reconciles bulletins into entity ledgers.
//
// Each bulletin carries one publish time shared by all its observations.
// For every (entity, cycle) it describes, the merger consults the freshness
// store and accepts the cycle only when no newer bulletin was merged before.
// An accepted cycle overwrites every ledger cell it names; a rejected cycle is
// dropped entirely. Because acceptance depends only on timestamps, the final
// state of a batch does not depend on the order bulletins arrive in.
//
// Values failing their column format are skipped with a warning and never
// block sibling fields. Missing entities and storage failures abort the
// entity merge and leave the committed ledger untouched.
package merger

// Package services implements the read side of the application between the
// HTTP handlers and CLI on one hand and the ledger, freshness and calendar
// packages on the other.
//
// # Services
//
//	LedgerService    entity listing, row queries and freshness records
//	SpreadService    value differences, seasonal averages and transit days
//	ContractService  contract-month windows, roll state and nomination deadlines
//	HealthService    liveness and storage checks
//
// Services take a context on every call, return *errors.AppError values from
// pipeledger/internal/errors, and never write ledger tables; writes go through
// the merger.
package services

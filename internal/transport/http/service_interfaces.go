package http

import (
	"context"

	"pipeledger/internal/services"
	"pipeledger/internal/spread"
	"pipeledger/pkg/contracts/domain"
)

// LedgerServiceInterface defines the table queries the handlers need.
type LedgerServiceInterface interface {
	Entities(ctx context.Context) ([]services.EntitySummary, error)
	Entity(ctx context.Context, entity string) (services.EntitySummary, error)
	Rows(ctx context.Context, entity string, q services.RowQuery) ([]domain.LedgerRow, error)
	Freshness(ctx context.Context, entity string) ([]domain.FreshnessRecord, error)
}

// SpreadServiceInterface defines the spread computations.
type SpreadServiceInterface interface {
	Difference(ctx context.Context, q services.DifferenceQuery) ([]spread.Point, error)
	Average(ctx context.Context, entity, column string, years []int, skipSynthetic bool) ([]spread.Point, error)
	Transit(ctx context.Context, origin, destination string, on domain.Date) ([]spread.DayPoint, error)
}

// ContractServiceInterface defines the calendar lookups.
type ContractServiceInterface interface {
	Contract(ctx context.Context, code string, settlementYear int) (services.ContractInfo, error)
	NominationDeadline(ctx context.Context, cycleStart domain.Date, leadDays int) (services.Deadline, error)
}

// HealthServiceInterface defines the health checks.
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
}

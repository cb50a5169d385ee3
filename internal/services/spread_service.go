package services

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/spread"
	"pipeledger/pkg/contracts/domain"
)

// Key layouts of a difference series.
const (
	KeyISO      = "iso"
	KeyMonthDay = "monthday"
)

// DifferenceQuery selects two entity columns to subtract.
type DifferenceQuery struct {
	A             string      `json:"a" validate:"required"`
	B             string      `json:"b" validate:"required"`
	Column        string      `json:"column" validate:"required"`
	ColumnB       string      `json:"column_b,omitempty"`
	Key           string      `json:"key" validate:"omitempty,oneof=iso monthday"`
	From          domain.Date `json:"from"`
	To            domain.Date `json:"to"`
	SkipSynthetic bool        `json:"skip_synthetic"`
}

// SpreadService computes spreads over ledger columns.
type SpreadService struct {
	ledgers LedgerReader
	logger  *slog.Logger
}

// NewSpreadService creates a SpreadService.
func NewSpreadService(ledgers LedgerReader, logger *slog.Logger) *SpreadService {
	return &SpreadService{
		ledgers: ledgers,
		logger:  logger.With(slog.String("service", "spread")),
	}
}

// Difference returns A.column - B.column for every key both sides carry.
// ColumnB defaults to Column.
func (s *SpreadService) Difference(ctx context.Context, q DifferenceQuery) ([]spread.Point, error) {
	if q.A == "" || q.B == "" || q.Column == "" {
		return nil, apperrors.NewValidationError("a, b and column are required", nil)
	}
	opts := spread.SeriesOptions{SkipSynthetic: q.SkipSynthetic, From: q.From, To: q.To}
	switch q.Key {
	case "", KeyISO:
		opts.Key = spread.ISOKey
	case KeyMonthDay:
		opts.Key = spread.MonthDayKey
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown key layout %q", q.Key), nil)
	}
	colB := q.ColumnB
	if colB == "" {
		colB = q.Column
	}

	a, err := s.series(q.A, q.Column, opts)
	if err != nil {
		return nil, err
	}
	b, err := s.series(q.B, colB, opts)
	if err != nil {
		return nil, err
	}
	points := spread.Difference(a, b)

	s.logger.DebugContext(ctx, "difference computed",
		slog.String("a", q.A),
		slog.String("b", q.B),
		slog.String("column", q.Column),
		slog.Int("points", len(points)))
	return points, nil
}

// Average returns the per-"M/D" mean of a column across the given years.
func (s *SpreadService) Average(ctx context.Context, entity, column string, years []int, skipSynthetic bool) ([]spread.Point, error) {
	if len(years) == 0 {
		return nil, apperrors.NewValidationError("at least one year is required", nil)
	}
	l, err := s.ledgers.Load(entity)
	if err != nil {
		return nil, err
	}
	byYear, err := spread.ByYear(l, column, skipSynthetic)
	if err != nil {
		return nil, err
	}
	return spread.Average(byYear, years), nil
}

// Transit returns the days between origin and destination schedules as of
// the given date, per cycle.
func (s *SpreadService) Transit(ctx context.Context, origin, destination string, on domain.Date) ([]spread.DayPoint, error) {
	if on.IsZero() {
		return nil, apperrors.NewValidationError("schedule date is required", nil)
	}
	o, err := s.schedule(origin, on)
	if err != nil {
		return nil, err
	}
	d, err := s.schedule(destination, on)
	if err != nil {
		return nil, err
	}
	return spread.TransitDifferential(o, d), nil
}

func (s *SpreadService) series(entity, column string, opts spread.SeriesOptions) (spread.Series, error) {
	l, err := s.ledgers.Load(entity)
	if err != nil {
		return nil, err
	}
	return spread.SeriesFromLedger(l, column, opts)
}

func (s *SpreadService) schedule(entity string, on domain.Date) (map[string]domain.Date, error) {
	l, err := s.ledgers.Load(entity)
	if err != nil {
		return nil, err
	}
	return spread.ScheduleOn(l, on)
}

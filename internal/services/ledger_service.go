package services

import (
	"context"
	"log/slog"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/ledger"
	"pipeledger/pkg/contracts/domain"
)

// LedgerReader is the read-only part of ledger.Store.
type LedgerReader interface {
	Entities() ([]string, error)
	Load(entity string) (*ledger.Ledger, error)
}

// FreshnessReader lists the freshness records of an entity.
type FreshnessReader interface {
	Records(ctx context.Context, entity string) ([]domain.FreshnessRecord, error)
}

// EntitySummary describes one entity table.
type EntitySummary struct {
	Entity    string           `json:"entity"`
	Kind      domain.TableKind `json:"kind"`
	Rows      int              `json:"rows"`
	Synthetic int              `json:"synthetic_rows"`
	FirstDate domain.Date      `json:"first_date"`
	LastDate  domain.Date      `json:"last_date"`
}

// RowQuery restricts a row listing. Zero dates leave that side open.
type RowQuery struct {
	From          domain.Date
	To            domain.Date
	SkipSynthetic bool
}

// LedgerService answers queries over the entity tables.
type LedgerService struct {
	ledgers LedgerReader
	fresh   FreshnessReader
	logger  *slog.Logger
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(ledgers LedgerReader, fresh FreshnessReader, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		ledgers: ledgers,
		fresh:   fresh,
		logger:  logger.With(slog.String("service", "ledger")),
	}
}

// Entities summarizes every initialized table, sorted by entity key.
func (s *LedgerService) Entities(ctx context.Context) ([]EntitySummary, error) {
	names, err := s.ledgers.Entities()
	if err != nil {
		return nil, err
	}
	out := make([]EntitySummary, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l, err := s.ledgers.Load(name)
		if err != nil {
			s.logger.WarnContext(ctx, "entity table unreadable",
				slog.String("entity", name),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, summarize(l))
	}
	return out, nil
}

// Entity summarizes one table.
func (s *LedgerService) Entity(ctx context.Context, entity string) (EntitySummary, error) {
	l, err := s.ledgers.Load(entity)
	if err != nil {
		return EntitySummary{}, err
	}
	return summarize(l), nil
}

// Rows returns the rows of an entity within the query range, oldest first.
func (s *LedgerService) Rows(ctx context.Context, entity string, q RowQuery) ([]domain.LedgerRow, error) {
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return nil, apperrors.NewValidationError("from is after to", nil)
	}
	l, err := s.ledgers.Load(entity)
	if err != nil {
		return nil, err
	}

	to := q.To
	if to.IsZero() {
		to = l.LastDate()
	}
	rows := l.Range(q.From, to)
	if rows == nil {
		rows = []domain.LedgerRow{}
	}
	if !q.SkipSynthetic {
		return rows, nil
	}
	genuine := rows[:0]
	for _, r := range rows {
		if !r.Synthetic {
			genuine = append(genuine, r)
		}
	}
	return genuine, nil
}

// Freshness returns the per-cycle freshness records of an entity.
func (s *LedgerService) Freshness(ctx context.Context, entity string) ([]domain.FreshnessRecord, error) {
	if _, err := s.ledgers.Load(entity); err != nil {
		return nil, err
	}
	return s.fresh.Records(ctx, entity)
}

func summarize(l *ledger.Ledger) EntitySummary {
	return EntitySummary{
		Entity:    l.Entity(),
		Kind:      l.Schema().Kind,
		Rows:      l.Len(),
		Synthetic: l.CountSynthetic(),
		FirstDate: l.FirstDate(),
		LastDate:  l.LastDate(),
	}
}

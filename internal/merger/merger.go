package merger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/freshness"
	"pipeledger/internal/infrastructure"
	"pipeledger/internal/ledger"
	"pipeledger/pkg/contracts/domain"
)

// LedgerStore is the ledger persistence the merger writes through.
type LedgerStore interface {
	Update(entity string, fn func(*ledger.Ledger) error) error
}

// CycleRef names one (entity, cycle) group of a bulletin. Cycle 0 stands for
// observations without a cycle.
type CycleRef struct {
	Entity string `json:"entity"`
	Cycle  int    `json:"cycle"`
}

// Result summarizes one or more merges.
type Result struct {
	Bulletins     int        `json:"bulletins"`
	Accepted      []CycleRef `json:"accepted"`
	Rejected      []CycleRef `json:"rejected"`
	CellsChanged  int        `json:"cells_changed"`
	Malformed     int        `json:"malformed"`
	SyntheticRows int        `json:"synthetic_rows"`
}

// Add folds other into r.
func (r *Result) Add(other Result) {
	r.Bulletins += other.Bulletins
	r.Accepted = append(r.Accepted, other.Accepted...)
	r.Rejected = append(r.Rejected, other.Rejected...)
	r.CellsChanged += other.CellsChanged
	r.Malformed += other.Malformed
	r.SyntheticRows += other.SyntheticRows
}

// Merger applies bulletins to ledgers.
type Merger struct {
	store    LedgerStore
	fresh    freshness.Store
	logger   *slog.Logger
	audit    AuditSink
	metrics  *infrastructure.MergeMetrics
	tracer   trace.Tracer
	gapFill  *ledger.FillOptions
	workers  int
	validate *validator.Validate

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Merger.
func New(store LedgerStore, fresh freshness.Store, opts ...Option) *Merger {
	m := &Merger{
		store:    store,
		fresh:    fresh,
		logger:   slog.Default(),
		tracer:   tracenoop.NewTracerProvider().Tracer("merger"),
		workers:  4,
		validate: validator.New(),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(slog.String("component", "merger"))
	if m.audit == nil {
		m.audit = NewLogAudit(m.logger)
	}
	return m
}

// lockEntity serializes the freshness decision, ledger write and freshness
// advance of one entity.
func (m *Merger) lockEntity(entity string) func() {
	m.mu.Lock()
	l, ok := m.locks[entity]
	if !ok {
		l = &sync.Mutex{}
		m.locks[entity] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Accept merges one bulletin. Entities are merged one after the other; an
// error aborts the remaining entities and leaves the source watermark where
// it was. Stale cycles and malformed values are reported in the Result, not
// as errors.
func (m *Merger) Accept(ctx context.Context, b domain.Bulletin) (Result, error) {
	if err := m.validate.Struct(b); err != nil {
		return Result{}, apperrors.NewValidationError("invalid bulletin", err)
	}

	ctx, span := m.tracer.Start(ctx, "merger.Accept", trace.WithAttributes(
		attribute.String("bulletin.id", b.ID),
		attribute.String("bulletin.source", b.Source),
	))
	defer span.End()

	res := Result{Bulletins: 1}
	for _, entity := range b.Entities() {
		r, err := m.acceptEntity(ctx, b.ForEntity(entity))
		res.Add(r)
		if err != nil {
			m.countError(ctx, b)
			infrastructure.RecordError(ctx, err)
			return res, err
		}
	}
	m.countBulletin(ctx, b)

	if err := m.advanceWatermark(ctx, b); err != nil {
		return res, err
	}
	return res, nil
}

// AcceptAll merges a batch in which bulletins may arrive in any order.
// Entities are independent and merged concurrently; the bulletins of one
// entity are applied oldest first.
func (m *Merger) AcceptAll(ctx context.Context, bulletins []domain.Bulletin) (Result, error) {
	for _, b := range bulletins {
		if err := m.validate.Struct(b); err != nil {
			return Result{}, apperrors.NewValidationError("invalid bulletin "+b.ID, err)
		}
	}

	sorted := make([]domain.Bulletin, len(bulletins))
	copy(sorted, bulletins)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Published.Equal(sorted[j].Published) {
			return sorted[i].Published.Before(sorted[j].Published)
		}
		return sorted[i].ID < sorted[j].ID
	})

	byEntity := make(map[string][]domain.Bulletin)
	var entities []string
	for _, b := range sorted {
		for _, e := range b.Entities() {
			if _, ok := byEntity[e]; !ok {
				entities = append(entities, e)
			}
			byEntity[e] = append(byEntity[e], b.ForEntity(e))
		}
	}

	var (
		mu  sync.Mutex
		res = Result{Bulletins: len(sorted)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, entity := range entities {
		g.Go(func() error {
			for _, b := range byEntity[entity] {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := m.acceptEntity(gctx, b)
				mu.Lock()
				res.Add(r)
				mu.Unlock()
				if err != nil {
					m.countError(gctx, b)
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, b := range sorted {
		m.countBulletin(ctx, b)
		if err := m.advanceWatermark(ctx, b); err != nil {
			return res, err
		}
	}
	sortRefs(res.Accepted)
	sortRefs(res.Rejected)
	return res, nil
}

type cycleGroup struct {
	cycle        int
	observations []domain.Observation
}

func groupByCycle(obs []domain.Observation) []cycleGroup {
	idx := make(map[int]int)
	var groups []cycleGroup
	for _, o := range obs {
		c := o.CycleKey()
		i, ok := idx[c]
		if !ok {
			i = len(groups)
			idx[c] = i
			groups = append(groups, cycleGroup{cycle: c})
		}
		groups[i].observations = append(groups[i].observations, o)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].cycle < groups[j].cycle })
	return groups
}

// pendingCell is an accepted, format-checked cell waiting to be written.
type pendingCell struct {
	cycle int
	date  domain.Date
	field string
	value string
}

// acceptEntity merges a bulletin restricted to one entity.
func (m *Merger) acceptEntity(ctx context.Context, b domain.Bulletin) (Result, error) {
	start := time.Now()
	entity := b.Observations[0].EntityKey
	logger := m.logger.With(
		slog.String("entity", entity),
		slog.String("bulletin_id", b.ID))

	unlock := m.lockEntity(entity)
	defer unlock()

	var res Result
	var accepted []cycleGroup
	for _, g := range groupByCycle(b.Observations) {
		ref := CycleRef{Entity: entity, Cycle: g.cycle}
		rec, found, err := m.fresh.Get(ctx, entity, g.cycle)
		if err != nil {
			return res, err
		}
		if !freshness.Accepts(rec, found, b.Published) {
			res.Rejected = append(res.Rejected, ref)
			logger.WarnContext(ctx, "stale bulletin dropped for cycle",
				slog.Int("cycle", g.cycle),
				slog.Time("published", b.Published),
				slog.Time("stored", rec.Timestamp),
				slog.String("error", apperrors.NewStaleError(entity, g.cycle).Error()))
			continue
		}
		res.Accepted = append(res.Accepted, ref)
		accepted = append(accepted, g)
	}
	if len(accepted) == 0 {
		m.count(ctx, b.Source, res)
		return res, nil
	}

	published := domain.DateOf(b.Published)
	var changes []AuditEntry
	err := m.store.Update(entity, func(l *ledger.Ledger) error {
		changes = changes[:0]
		res.CellsChanged, res.Malformed, res.SyntheticRows = 0, 0, 0

		var cells []pendingCell
		for _, g := range accepted {
			for _, o := range g.observations {
				cell, err := m.prepare(l.Schema(), o, published)
				if err != nil {
					res.Malformed++
					logger.WarnContext(ctx, "malformed observation skipped",
						slog.Int("cycle", g.cycle),
						slog.String("field", o.Field),
						slog.String("value", o.Value),
						slog.String("error", err.Error()))
					continue
				}
				cell.cycle = g.cycle
				cells = append(cells, cell)
			}
		}
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].date.Before(cells[j].date) })

		for _, c := range cells {
			if m.gapFill != nil && l.Schema().Kind == domain.TableInventory && c.date.After(l.LastDate()) {
				filled, err := l.FillGaps(c.date, *m.gapFill)
				if err != nil {
					return err
				}
				res.SyntheticRows += filled
			}
			old, changed, err := l.SetCell(c.date, c.field, c.value)
			if err != nil {
				return err
			}
			if changed {
				res.CellsChanged++
				changes = append(changes, AuditEntry{
					BulletinID: b.ID, Source: b.Source, Published: b.Published,
					Entity: entity, Cycle: c.cycle, Date: c.date,
					Field: c.field, OldValue: old, NewValue: c.value,
				})
			}
		}
		return nil
	})
	if err != nil {
		return Result{Rejected: res.Rejected}, err
	}

	records := make([]domain.FreshnessRecord, 0, len(accepted))
	for _, g := range accepted {
		records = append(records, domain.FreshnessRecord{
			EntityKey: entity, Cycle: g.cycle, Timestamp: b.Published, Known: true,
		})
	}
	if err := m.fresh.Advance(ctx, records...); err != nil {
		return res, err
	}

	for _, e := range changes {
		if err := m.audit.Record(ctx, e); err != nil {
			logger.DebugContext(ctx, "audit record failed", slog.String("error", err.Error()))
		}
	}

	m.count(ctx, b.Source, res)
	if m.metrics != nil {
		m.metrics.MergeDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("entity", entity)))
	}
	logger.InfoContext(ctx, "bulletin merged",
		slog.Int("cycles_accepted", len(res.Accepted)),
		slog.Int("cycles_rejected", len(res.Rejected)),
		slog.Int("cells_changed", res.CellsChanged),
		slog.Int("malformed", res.Malformed),
		slog.Int("synthetic_rows", res.SyntheticRows))
	return res, nil
}

// prepare resolves the row date and checks the value against its column.
func (m *Merger) prepare(schema domain.Schema, o domain.Observation, published domain.Date) (pendingCell, error) {
	col, ok := schema.Column(o.Field)
	if !ok {
		return pendingCell{}, apperrors.NewMalformedError(o.Field, o.Value, errors.New("no such column"))
	}
	date, err := resolveDate(o, published)
	if err != nil {
		return pendingCell{}, err
	}
	if err := checkValue(col, o.Value); err != nil {
		return pendingCell{}, err
	}
	return pendingCell{date: date, field: o.Field, value: o.Value}, nil
}

func (m *Merger) advanceWatermark(ctx context.Context, b domain.Bulletin) error {
	return m.fresh.SetWatermark(ctx, domain.Watermark{
		Source:     b.Source,
		Published:  b.Published,
		BulletinID: b.ID,
	})
}

// count records the outcome of one entity merge.
func (m *Merger) count(ctx context.Context, source string, r Result) {
	if m.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.metrics.CyclesAccepted.Add(ctx, int64(len(r.Accepted)), attrs)
	m.metrics.CyclesStale.Add(ctx, int64(len(r.Rejected)), attrs)
	m.metrics.CellsWritten.Add(ctx, int64(r.CellsChanged), attrs)
	m.metrics.MalformedValues.Add(ctx, int64(r.Malformed), attrs)
	m.metrics.SyntheticRows.Add(ctx, int64(r.SyntheticRows), attrs)
}

func (m *Merger) countBulletin(ctx context.Context, b domain.Bulletin) {
	if m.metrics == nil {
		return
	}
	m.metrics.BulletinsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", b.Source)))
}

func (m *Merger) countError(ctx context.Context, b domain.Bulletin) {
	if m.metrics == nil {
		return
	}
	m.metrics.MergeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("source", b.Source)))
}

func sortRefs(refs []CycleRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Entity != refs[j].Entity {
			return refs[i].Entity < refs[j].Entity
		}
		return refs[i].Cycle < refs[j].Cycle
	})
}

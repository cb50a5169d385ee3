package merger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/freshness"
	"pipeledger/internal/infrastructure"
	"pipeledger/internal/ledger"
	"pipeledger/pkg/contracts/domain"
)

var (
	t1 = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	t2 = t1.Add(4 * time.Hour)
)

type fixture struct {
	store  *ledger.Store
	fresh  *freshness.MemoryStore
	merger *Merger
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger := infrastructure.DiscardLogger()
	store := ledger.NewStore(t.TempDir(), logger)
	require.NoError(t, store.Init("route-1", domain.CycleSchema()))
	require.NoError(t, store.Init("route-2", domain.CycleSchema()))
	require.NoError(t, store.Init("ulsd", domain.InventorySchema()))
	fresh := freshness.NewMemoryStore()
	opts = append([]Option{WithLogger(logger)}, opts...)
	return &fixture{store: store, fresh: fresh, merger: New(store, fresh, opts...)}
}

func (f *fixture) cell(t *testing.T, entity, date, column string) string {
	t.Helper()
	l, err := f.store.Load(entity)
	require.NoError(t, err)
	v, _ := l.Cell(domain.MustParseDate(date), column)
	return v
}

func cycleObs(entity string, cycle int, date, value string) domain.Observation {
	return domain.Observation{
		EntityKey: entity,
		Cycle:     domain.CyclePtr(cycle),
		Date:      domain.MustParseDate(date),
		Field:     domain.CycleColumn(cycle),
		Value:     value,
	}
}

func invObs(date, field, value string) domain.Observation {
	return domain.Observation{EntityKey: "ulsd", Date: domain.MustParseDate(date), Field: field, Value: value}
}

func bulletin(id string, ts time.Time, obs ...domain.Observation) domain.Bulletin {
	for i := range obs {
		obs[i].SourceTimestamp = ts
	}
	return domain.Bulletin{ID: id, Source: "colonial", Published: ts, Observations: obs}
}

func TestAccept_WritesAcceptedCycles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.merger.Accept(ctx, bulletin("b1", t1,
		cycleObs("route-1", 7, "2025-01-02", "1/9"),
		cycleObs("route-1", 8, "2025-01-02", "1/14"),
	))
	require.NoError(t, err)
	assert.Equal(t, []CycleRef{{"route-1", 7}, {"route-1", 8}}, res.Accepted)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, 2, res.CellsChanged)
	assert.Equal(t, "1/9", f.cell(t, "route-1", "2025-01-02", "7"))

	rec, found, err := f.fresh.Get(ctx, "route-1", 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.Known)
	assert.True(t, rec.Timestamp.Equal(t1))

	w, found, err := f.fresh.Watermark(ctx, "colonial")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "b1", w.BulletinID)
}

func TestAccept_OrderIndependent(t *testing.T) {
	b1 := func() domain.Bulletin {
		return bulletin("b1", t1,
			cycleObs("route-1", 7, "2025-01-02", "1/9"),
			cycleObs("route-1", 8, "2025-01-02", "1/14"),
		)
	}
	b2 := func() domain.Bulletin {
		return bulletin("b2", t2, cycleObs("route-1", 7, "2025-01-02", "1/10"))
	}

	forward := newFixture(t)
	_, err := forward.merger.Accept(context.Background(), b1())
	require.NoError(t, err)
	_, err = forward.merger.Accept(context.Background(), b2())
	require.NoError(t, err)

	backward := newFixture(t)
	_, err = backward.merger.Accept(context.Background(), b2())
	require.NoError(t, err)
	res, err := backward.merger.Accept(context.Background(), b1())
	require.NoError(t, err)
	assert.Equal(t, []CycleRef{{"route-1", 7}}, res.Rejected)
	assert.Equal(t, []CycleRef{{"route-1", 8}}, res.Accepted)

	lf, err := forward.store.Load("route-1")
	require.NoError(t, err)
	lb, err := backward.store.Load("route-1")
	require.NoError(t, err)
	assert.Equal(t, lf.Rows(), lb.Rows())
	assert.Equal(t, "1/10", backward.cell(t, "route-1", "2025-01-02", "7"))
}

func TestAccept_StaleCycleDroppedEntirely(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.merger.Accept(ctx, bulletin("new", t2, cycleObs("route-1", 7, "2025-01-02", "1/10")))
	require.NoError(t, err)

	res, err := f.merger.Accept(ctx, bulletin("old", t1,
		cycleObs("route-1", 7, "2025-01-02", "1/9"),
		cycleObs("route-1", 7, "2025-01-03", "1/11"),
	))
	require.NoError(t, err)
	assert.Equal(t, []CycleRef{{"route-1", 7}}, res.Rejected)
	assert.Zero(t, res.CellsChanged)
	assert.Equal(t, "1/10", f.cell(t, "route-1", "2025-01-02", "7"))

	l, err := f.store.Load("route-1")
	require.NoError(t, err)
	_, ok := l.Row(domain.MustParseDate("2025-01-03"))
	assert.False(t, ok, "no part of a stale cycle is written")
}

func TestAccept_EqualTimestampIsStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.merger.Accept(ctx, bulletin("a", t1, cycleObs("route-1", 3, "2025-01-02", "1/5")))
	require.NoError(t, err)

	res, err := f.merger.Accept(ctx, bulletin("b", t1, cycleObs("route-1", 3, "2025-01-02", "1/6")))
	require.NoError(t, err)
	assert.Len(t, res.Rejected, 1)
	assert.Equal(t, "1/5", f.cell(t, "route-1", "2025-01-02", "3"))
}

func TestAccept_UnknownFreshnessIsSuperseded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.fresh.Advance(ctx, domain.FreshnessRecord{EntityKey: "route-1", Cycle: 3, Known: false}))

	res, err := f.merger.Accept(ctx, bulletin("a", t1, cycleObs("route-1", 3, "2025-01-02", "1/5")))
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 1)
}

func TestAccept_MalformedValueSkipped(t *testing.T) {
	f := newFixture(t)

	res, err := f.merger.Accept(context.Background(), bulletin("b", t1,
		invObs("2025-01-02", "Open", "abc"),
		invObs("2025-01-02", "Close", "1,250.75"),
		invObs("2025-01-02", "NoSuchField", "1"),
	))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Malformed)
	assert.Equal(t, 1, res.CellsChanged)
	assert.Equal(t, "1,250.75", f.cell(t, "ulsd", "2025-01-02", "Close"))
	assert.Empty(t, f.cell(t, "ulsd", "2025-01-02", "Open"))
}

func TestAccept_ResolvesPartialDates(t *testing.T) {
	f := newFixture(t)
	published := time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC)

	obs := domain.Observation{EntityKey: "route-1", Cycle: domain.CyclePtr(1), MonthDay: "1/3", Field: "1", Value: "1/8"}
	_, err := f.merger.Accept(context.Background(), bulletin("b", published, obs))
	require.NoError(t, err)
	assert.Equal(t, "1/8", f.cell(t, "route-1", "2025-01-03", "1"))
}

func TestAccept_MissingEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	obs := cycleObs("nowhere", 1, "2025-01-02", "1/3")
	_, err := f.merger.Accept(ctx, bulletin("b", t1, obs))
	assert.ErrorIs(t, err, apperrors.ErrMissingEntity)

	_, found, _ := f.fresh.Get(ctx, "nowhere", 1)
	assert.False(t, found, "freshness advances only after a committed write")
	_, found, _ = f.fresh.Watermark(ctx, "colonial")
	assert.False(t, found)
}

type failingStore struct{}

func (failingStore) Update(string, func(*ledger.Ledger) error) error {
	return apperrors.NewIOError("swap table", errors.New("disk full"))
}

func TestAccept_StorageFailureKeepsFreshness(t *testing.T) {
	fresh := freshness.NewMemoryStore()
	m := New(failingStore{}, fresh, WithLogger(infrastructure.DiscardLogger()))

	_, err := m.Accept(context.Background(), bulletin("b", t1, cycleObs("route-1", 1, "2025-01-02", "1/3")))
	assert.ErrorIs(t, err, apperrors.ErrIO)

	_, found, _ := fresh.Get(context.Background(), "route-1", 1)
	assert.False(t, found)
}

func TestAccept_InvalidBulletin(t *testing.T) {
	f := newFixture(t)
	_, err := f.merger.Accept(context.Background(), domain.Bulletin{Source: "x", Published: t1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	bad := cycleObs("route-1", 1, "2025-01-02", "1/3")
	bad.Cycle = domain.CyclePtr(73)
	_, err = f.merger.Accept(context.Background(), bulletin("b", t1, bad))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAccept_GapFill(t *testing.T) {
	f := newFixture(t, WithGapFill(ledger.DefaultFillOptions()))
	ctx := context.Background()

	_, err := f.merger.Accept(ctx, bulletin("thu", t1, invObs("2025-01-02", "Close", "10")))
	require.NoError(t, err)

	res, err := f.merger.Accept(ctx, bulletin("mon", t2, invObs("2025-01-06", "Close", "12")))
	require.NoError(t, err)
	assert.Equal(t, 2, res.SyntheticRows)

	l, err := f.store.Load("ulsd")
	require.NoError(t, err)
	assert.Equal(t, 4, l.Len())
	sat, ok := l.Row(domain.MustParseDate("2025-01-04"))
	require.True(t, ok)
	assert.True(t, sat.Synthetic)
	assert.Equal(t, "10", sat.Values["Close"])
}

func TestAccept_LateGenuineBulletinReplacesCarriedRow(t *testing.T) {
	f := newFixture(t, WithGapFill(ledger.DefaultFillOptions()))
	ctx := context.Background()

	_, err := f.merger.Accept(ctx, bulletin("thu", t1,
		invObs("2025-01-02", "Open", "100"),
		invObs("2025-01-02", "Close", "110")))
	require.NoError(t, err)
	_, err = f.merger.Accept(ctx, bulletin("mon", t2, invObs("2025-01-06", "Close", "112")))
	require.NoError(t, err)

	_, err = f.merger.Accept(ctx, bulletin("fri-late", t2.Add(time.Hour), invObs("2025-01-03", "Close", "111")))
	require.NoError(t, err)

	l, err := f.store.Load("ulsd")
	require.NoError(t, err)
	fri, ok := l.Row(domain.MustParseDate("2025-01-03"))
	require.True(t, ok)
	assert.False(t, fri.Synthetic)
	assert.Equal(t, map[string]string{"Close": "111"}, nonEmpty(fri.Values))
}

// nonEmpty drops blank cells, which a reloaded table carries for every
// column the row never set.
func nonEmpty(values map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range values {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
	fail    bool
}

func (a *recordingAudit) Record(_ context.Context, e AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	if a.fail {
		return errors.New("audit sink down")
	}
	return nil
}

func TestAccept_AuditPerChangedField(t *testing.T) {
	audit := &recordingAudit{fail: true}
	f := newFixture(t, WithAudit(audit))
	ctx := context.Background()

	_, err := f.merger.Accept(ctx, bulletin("a", t1, invObs("2025-01-02", "Close", "10"), invObs("2025-01-02", "Open", "9")))
	require.NoError(t, err, "audit failures never abort a merge")
	_, err = f.merger.Accept(ctx, bulletin("b", t2, invObs("2025-01-02", "Close", "11"), invObs("2025-01-02", "Open", "9")))
	require.NoError(t, err)

	require.Len(t, audit.entries, 3)
	last := audit.entries[2]
	assert.Equal(t, "Close", last.Field)
	assert.Equal(t, "10", last.OldValue)
	assert.Equal(t, "11", last.NewValue)
	assert.Equal(t, "b", last.BulletinID)
}

func TestAcceptAll_OrderIndependent(t *testing.T) {
	batch := func() []domain.Bulletin {
		return []domain.Bulletin{
			bulletin("b3", t2.Add(time.Hour), cycleObs("route-2", 5, "2025-01-03", "1/20")),
			bulletin("b2", t2, cycleObs("route-1", 7, "2025-01-02", "1/10"), cycleObs("route-2", 5, "2025-01-03", "1/19")),
			bulletin("b1", t1, cycleObs("route-1", 7, "2025-01-02", "1/9"), cycleObs("route-1", 9, "2025-01-02", "1/16")),
		}
	}

	f := newFixture(t, WithWorkers(2))
	res, err := f.merger.AcceptAll(context.Background(), batch())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Bulletins)
	assert.Equal(t, "1/10", f.cell(t, "route-1", "2025-01-02", "7"))
	assert.Equal(t, "1/16", f.cell(t, "route-1", "2025-01-02", "9"))
	assert.Equal(t, "1/20", f.cell(t, "route-2", "2025-01-03", "5"))

	seq := newFixture(t)
	for _, b := range []domain.Bulletin{batch()[1], batch()[0], batch()[2]} {
		_, err := seq.merger.Accept(context.Background(), b)
		require.NoError(t, err)
	}
	for _, entity := range []string{"route-1", "route-2"} {
		a, err := f.store.Load(entity)
		require.NoError(t, err)
		b, err := seq.store.Load(entity)
		require.NoError(t, err)
		assert.Equal(t, a.Rows(), b.Rows(), entity)
	}

	w, _, _ := f.fresh.Watermark(context.Background(), "colonial")
	assert.Equal(t, "b3", w.BulletinID)
}

func TestAccept_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateMergeMetrics(mp.Meter("test"))
	require.NoError(t, err)

	f := newFixture(t, WithMetrics(metrics))
	ctx := context.Background()
	_, err = f.merger.Accept(ctx, bulletin("a", t2, cycleObs("route-1", 1, "2025-01-02", "1/3")))
	require.NoError(t, err)
	_, err = f.merger.Accept(ctx, bulletin("b", t1, cycleObs("route-1", 1, "2025-01-02", "1/4")))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(2), sumOf(rm, "bulletins_merged_total"))
	assert.Equal(t, int64(1), sumOf(rm, "bulletin_cycles_stale_total"))
	assert.Equal(t, int64(1), sumOf(rm, "ledger_cells_written_total"))
}

func sumOf(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

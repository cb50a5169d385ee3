package freshness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeledger/pkg/contracts/domain"
)

var (
	t1 = time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	t2 = t1.Add(6 * time.Hour)
)

func TestAccepts(t *testing.T) {
	known := domain.FreshnessRecord{Timestamp: t1, Known: true}
	unknown := domain.FreshnessRecord{Known: false}

	tests := []struct {
		name  string
		rec   domain.FreshnessRecord
		found bool
		ts    time.Time
		want  bool
	}{
		{"no record", domain.FreshnessRecord{}, false, t1, true},
		{"unknown freshness", unknown, true, t1, true},
		{"strictly newer", known, true, t2, true},
		{"equal timestamp", known, true, t1, false},
		{"older", known, true, t1.Add(-time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepts(tt.rec, tt.found, tt.ts))
		})
	}
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	_, found, err := s.Get(ctx, "route-1", 7)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Advance(ctx, domain.FreshnessRecord{EntityKey: "route-1", Cycle: 7, Timestamp: t2, Known: true}))
	require.NoError(t, s.Advance(ctx, domain.FreshnessRecord{EntityKey: "route-1", Cycle: 7, Timestamp: t1, Known: true}))

	rec, found, err := s.Get(ctx, "route-1", 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.Timestamp.Equal(t2), "records never move backwards")

	// legacy marker only lands on empty keys
	require.NoError(t, s.Advance(ctx,
		domain.FreshnessRecord{EntityKey: "route-1", Cycle: 7, Known: false},
		domain.FreshnessRecord{EntityKey: "route-1", Cycle: 8, Known: false},
	))
	rec, _, _ = s.Get(ctx, "route-1", 7)
	assert.True(t, rec.Known)
	rec, found, _ = s.Get(ctx, "route-1", 8)
	assert.True(t, found)
	assert.False(t, rec.Known)

	// known data replaces the legacy marker
	require.NoError(t, s.Advance(ctx, domain.FreshnessRecord{EntityKey: "route-1", Cycle: 8, Timestamp: t1, Known: true}))
	rec, _, _ = s.Get(ctx, "route-1", 8)
	assert.True(t, rec.Known)

	require.NoError(t, s.Advance(ctx, domain.FreshnessRecord{EntityKey: "route-10", Cycle: 1, Timestamp: t1, Known: true}))
	records, err := s.Records(ctx, "route-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 7, records[0].Cycle)
	assert.Equal(t, 8, records[1].Cycle)

	_, found, err = s.Watermark(ctx, "colonial")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetWatermark(ctx, domain.Watermark{Source: "colonial", Published: t2, BulletinID: "b2"}))
	require.NoError(t, s.SetWatermark(ctx, domain.Watermark{Source: "colonial", Published: t1, BulletinID: "b1"}))
	w, found, err := s.Watermark(ctx, "colonial")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "b2", w.BulletinID)

	require.NoError(t, s.SetWatermark(ctx, domain.Watermark{Source: "colonial", Published: t2, BulletinID: "b3"}))
	require.NoError(t, s.SetWatermark(ctx, domain.Watermark{Source: "colonial", Published: t2, BulletinID: "b2"}))
	w, _, err = s.Watermark(ctx, "colonial")
	require.NoError(t, err)
	assert.Equal(t, "b3", w.BulletinID, "same publish time orders by bulletin id")
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer s.Close()
	storeContract(t, s)
}

func TestBadgerStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Advance(ctx, domain.FreshnessRecord{EntityKey: "ulsd", Cycle: 0, Timestamp: t1, Known: true}))
	require.NoError(t, s.Close())

	s, err = OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	rec, found, err := s.Get(ctx, "ulsd", 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.Timestamp.Equal(t1))
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}

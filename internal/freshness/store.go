package freshness

import (
	"context"
	"sort"
	"sync"
	"time"

	"pipeledger/pkg/contracts/domain"
)

// Store persists freshness records and watermarks.
type Store interface {
	Get(ctx context.Context, entity string, cycle int) (domain.FreshnessRecord, bool, error)
	Records(ctx context.Context, entity string) ([]domain.FreshnessRecord, error)
	Advance(ctx context.Context, records ...domain.FreshnessRecord) error
	Watermark(ctx context.Context, source string) (domain.Watermark, bool, error)
	SetWatermark(ctx context.Context, w domain.Watermark) error
	Close() error
}

// Accepts reports whether a bulletin published at ts may overwrite the data
// guarded by rec: when there is no record, when the record has unknown
// freshness, or when ts is strictly newer.
func Accepts(rec domain.FreshnessRecord, found bool, ts time.Time) bool {
	return !found || !rec.Known || ts.After(rec.Timestamp)
}

// supersedes reports whether next may replace prev in the store.
func supersedes(prev domain.FreshnessRecord, found bool, next domain.FreshnessRecord) bool {
	if !found {
		return true
	}
	if !next.Known {
		return false
	}
	return !prev.Known || next.Timestamp.After(prev.Timestamp)
}

type recordKey struct {
	entity string
	cycle  int
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu         sync.RWMutex
	records    map[recordKey]domain.FreshnessRecord
	watermarks map[string]domain.Watermark
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:    make(map[recordKey]domain.FreshnessRecord),
		watermarks: make(map[string]domain.Watermark),
	}
}

func (m *MemoryStore) Get(_ context.Context, entity string, cycle int) (domain.FreshnessRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[recordKey{entity, cycle}]
	return rec, ok, nil
}

func (m *MemoryStore) Records(_ context.Context, entity string) ([]domain.FreshnessRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.FreshnessRecord
	for k, rec := range m.records {
		if k.entity == entity {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cycle < out[j].Cycle })
	return out, nil
}

func (m *MemoryStore) Advance(_ context.Context, records ...domain.FreshnessRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		k := recordKey{rec.EntityKey, rec.Cycle}
		prev, found := m.records[k]
		if supersedes(prev, found, rec) {
			m.records[k] = rec
		}
	}
	return nil
}

func (m *MemoryStore) Watermark(_ context.Context, source string) (domain.Watermark, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.watermarks[source]
	return w, ok, nil
}

func (m *MemoryStore) SetWatermark(_ context.Context, w domain.Watermark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.watermarks[w.Source]; ok && !w.After(prev) {
		return nil
	}
	m.watermarks[w.Source] = w
	return nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

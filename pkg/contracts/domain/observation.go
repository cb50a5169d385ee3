package domain

import (
	"strconv"
	"time"
)

// Cycle bounds of the periodic shipping schedule.
const (
	MinCycle = 1
	MaxCycle = 72
)

// Observation is a single normalized value handed over by a report parser.
// Observations are immutable once created.
type Observation struct {
	EntityKey       string    `json:"entity_key" validate:"required"`
	Cycle           *int      `json:"cycle,omitempty" validate:"omitempty,min=1,max=72"`
	Date            Date      `json:"date"`
	MonthDay        string    `json:"month_day,omitempty"` // partial "M/D" date, resolved against the bulletin date
	Field           string    `json:"field" validate:"required"`
	Value           string    `json:"value"`
	SourceTimestamp time.Time `json:"source_timestamp"`
}

// CycleKey returns the cycle used for freshness bookkeeping; 0 when the observation has no cycle.
func (o Observation) CycleKey() int {
	if o.Cycle == nil {
		return 0
	}
	return *o.Cycle
}

// CyclePtr is a convenience for building observations.
func CyclePtr(c int) *int { return &c }

// CycleColumn is the column name cycle tables use for a cycle number.
func CycleColumn(cycle int) string { return strconv.Itoa(cycle) }

// Bulletin is one published report snapshot. Every observation it carries
// shares the bulletin's publish time, not a per-row timestamp.
type Bulletin struct {
	ID           string        `json:"id" validate:"required"`
	Source       string        `json:"source" validate:"required"`
	Published    time.Time     `json:"published" validate:"required"`
	Observations []Observation `json:"observations" validate:"dive"`
}

// Entities returns the distinct entity keys in first-seen order.
func (b Bulletin) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range b.Observations {
		if !seen[o.EntityKey] {
			seen[o.EntityKey] = true
			out = append(out, o.EntityKey)
		}
	}
	return out
}

// ForEntity returns a copy of the bulletin restricted to one entity.
func (b Bulletin) ForEntity(entity string) Bulletin {
	out := Bulletin{ID: b.ID, Source: b.Source, Published: b.Published}
	for _, o := range b.Observations {
		if o.EntityKey == entity {
			out.Observations = append(out.Observations, o)
		}
	}
	return out
}

// FreshnessRecord is the most recent accepted bulletin timestamp for one
// (entity, cycle) pair. Known is false for legacy data merged without a timestamp.
type FreshnessRecord struct {
	EntityKey string    `json:"entity_key"`
	Cycle     int       `json:"cycle"`
	Timestamp time.Time `json:"timestamp"`
	Known     bool      `json:"known"`
}

// Watermark tracks the newest bulletin already merged from a source, so a
// restart can catch up only on what it missed.
type Watermark struct {
	Source     string    `json:"source"`
	Published  time.Time `json:"published"`
	BulletinID string    `json:"bulletin_id"`
}

// After reports whether w comes later than o. Watermarks order by publish
// time, then by bulletin ID, so files published in the same second are
// still told apart.
func (w Watermark) After(o Watermark) bool {
	if !w.Published.Equal(o.Published) {
		return w.Published.After(o.Published)
	}
	return w.BulletinID > o.BulletinID
}

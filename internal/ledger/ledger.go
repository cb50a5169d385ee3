package ledger

import (
	"fmt"
	"sort"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// Ledger is the in-memory table of one entity.
type Ledger struct {
	entity string
	schema domain.Schema
	rows   []domain.LedgerRow
	dirty  bool
}

// New returns an empty ledger for entity.
func New(entity string, schema domain.Schema) *Ledger {
	return &Ledger{entity: entity, schema: schema}
}

func (l *Ledger) Entity() string        { return l.entity }
func (l *Ledger) Schema() domain.Schema { return l.schema }
func (l *Ledger) Len() int              { return len(l.rows) }

// Dirty reports whether the ledger changed since it was loaded.
func (l *Ledger) Dirty() bool { return l.dirty }

// Rows returns a copy of all rows in date order.
func (l *Ledger) Rows() []domain.LedgerRow {
	out := make([]domain.LedgerRow, len(l.rows))
	for i, r := range l.rows {
		out[i] = r.Clone()
	}
	return out
}

// Row returns the row dated d.
func (l *Ledger) Row(d domain.Date) (domain.LedgerRow, bool) {
	i, ok := l.find(d)
	if !ok {
		return domain.LedgerRow{}, false
	}
	return l.rows[i].Clone(), true
}

// LastDate returns the date of the last row, or MinDate when empty.
func (l *Ledger) LastDate() domain.Date {
	if len(l.rows) == 0 {
		return domain.MinDate
	}
	return l.rows[len(l.rows)-1].Date
}

// FirstDate returns the date of the first row, or MinDate when empty.
func (l *Ledger) FirstDate() domain.Date {
	if len(l.rows) == 0 {
		return domain.MinDate
	}
	return l.rows[0].Date
}

// InsertionPoint returns the index of the first row strictly after d.
func (l *Ledger) InsertionPoint(d domain.Date) int {
	return sort.Search(len(l.rows), func(i int) bool { return l.rows[i].Date.After(d) })
}

func (l *Ledger) find(d domain.Date) (int, bool) {
	i := l.InsertionPoint(d)
	if i > 0 && l.rows[i-1].Date == d {
		return i - 1, true
	}
	return i, false
}

// Insert writes a row dated d. A new date is inserted at InsertionPoint and
// later rows shift by one. An existing genuine row is overwritten in place:
// the given cells replace the stored ones and other cells are kept. A genuine
// write to a synthetic row drops the carried-forward cells first, so the row
// holds only genuine values afterwards. A synthetic insert never replaces an
// existing row. Insert reports whether anything changed.
func (l *Ledger) Insert(d domain.Date, values map[string]string, synthetic bool) (bool, error) {
	if d.IsZero() {
		return false, apperrors.NewValidationError("ledger row needs a date", nil)
	}
	for name := range values {
		if _, ok := l.schema.Column(name); !ok {
			return false, unknownColumn(l.entity, name)
		}
	}

	i, exists := l.find(d)
	if !exists {
		row := domain.LedgerRow{Date: d, Values: make(map[string]string, len(values)), Synthetic: synthetic}
		for k, v := range values {
			row.Values[k] = v
		}
		l.rows = append(l.rows, domain.LedgerRow{})
		copy(l.rows[i+1:], l.rows[i:])
		l.rows[i] = row
		l.dirty = true
		return true, nil
	}

	if synthetic {
		return false, nil
	}

	row := &l.rows[i]
	changed := row.Synthetic
	if row.Synthetic {
		row.Values = make(map[string]string, len(values))
		row.Synthetic = false
	}
	for k, v := range values {
		if old, ok := row.Values[k]; !ok || old != v {
			row.Values[k] = v
			changed = true
		}
	}
	l.dirty = l.dirty || changed
	return changed, nil
}

// SetCell writes one genuine cell, creating the row when absent. It reports
// the previous value and whether the table changed.
func (l *Ledger) SetCell(d domain.Date, column, value string) (old string, changed bool, err error) {
	if i, ok := l.find(d); ok {
		old = l.rows[i].Values[column]
	}
	changed, err = l.Insert(d, map[string]string{column: value}, false)
	return old, changed, err
}

// Cell returns the raw value of one cell.
func (l *Ledger) Cell(d domain.Date, column string) (string, bool) {
	i, ok := l.find(d)
	if !ok {
		return "", false
	}
	v, ok := l.rows[i].Values[column]
	return v, ok
}

// Range returns copies of the rows with from <= date <= to.
func (l *Ledger) Range(from, to domain.Date) []domain.LedgerRow {
	lo := sort.Search(len(l.rows), func(i int) bool { return !l.rows[i].Date.Before(from) })
	hi := l.InsertionPoint(to)
	if lo >= hi {
		return nil
	}
	out := make([]domain.LedgerRow, 0, hi-lo)
	for _, r := range l.rows[lo:hi] {
		out = append(out, r.Clone())
	}
	return out
}

// CountSynthetic returns the number of carry-forward rows.
func (l *Ledger) CountSynthetic() int {
	n := 0
	for _, r := range l.rows {
		if r.Synthetic {
			n++
		}
	}
	return n
}

func unknownColumn(entity, name string) error {
	return apperrors.NewValidationError(fmt.Sprintf("ledger %s has no column %q", entity, name), nil).
		WithContext("entity", entity)
}

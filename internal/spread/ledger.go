package spread

import (
	"fmt"

	"pipeledger/internal/calendar"
	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/ledger"
	"pipeledger/pkg/contracts/domain"
)

// KeyFunc names the series key of a ledger row.
type KeyFunc func(domain.Date) string

// ISOKey keys rows by their full date.
func ISOKey(d domain.Date) string { return d.String() }

// MonthDayKey keys rows by "M/D", for seasonal comparisons across years.
func MonthDayKey(d domain.Date) string { return d.MonthDay() }

// SeriesOptions controls how a ledger column becomes a series.
type SeriesOptions struct {
	Key           KeyFunc
	SkipSynthetic bool
	From, To      domain.Date
}

// SeriesFromLedger reads one numeric column. Blank and non-numeric cells are
// skipped.
func SeriesFromLedger(l *ledger.Ledger, column string, opts SeriesOptions) (Series, error) {
	if _, ok := l.Schema().Column(column); !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("ledger %s has no column %q", l.Entity(), column), nil)
	}
	key := opts.Key
	if key == nil {
		key = ISOKey
	}

	out := make(Series)
	for _, row := range l.Rows() {
		if opts.SkipSynthetic && row.Synthetic {
			continue
		}
		if !opts.From.IsZero() && row.Date.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && row.Date.After(opts.To) {
			continue
		}
		v, err := ledger.ParseNumber(row.Values[column])
		if err != nil {
			continue
		}
		out[key(row.Date)] = v
	}
	return out, nil
}

// ByYear splits a column into one "M/D" keyed series per calendar year.
func ByYear(l *ledger.Ledger, column string, skipSynthetic bool) (map[int]Series, error) {
	all, err := SeriesFromLedger(l, column, SeriesOptions{SkipSynthetic: skipSynthetic})
	if err != nil {
		return nil, err
	}
	out := make(map[int]Series)
	for k, v := range all {
		d, err := domain.ParseDate(k)
		if err != nil {
			continue
		}
		s, ok := out[d.Year()]
		if !ok {
			s = make(Series)
			out[d.Year()] = s
		}
		s[d.MonthDay()] = v
	}
	return out, nil
}

// ScheduleOn reads the cycle dates a cycle table recorded on one bulletin
// date, keyed by cycle number. "M/D" cells are resolved against that date.
func ScheduleOn(l *ledger.Ledger, on domain.Date) (map[string]domain.Date, error) {
	if l.Schema().Kind != domain.TableCycle {
		return nil, apperrors.NewValidationError(fmt.Sprintf("ledger %s is not a cycle table", l.Entity()), nil)
	}
	row, ok := l.Row(on)
	if !ok {
		return map[string]domain.Date{}, nil
	}
	out := make(map[string]domain.Date)
	for cycle, cell := range row.Values {
		if cell == "" {
			continue
		}
		d, err := calendar.ResolveMonthDay(cell, on)
		if err != nil {
			continue
		}
		out[cycle] = d
	}
	return out, nil
}

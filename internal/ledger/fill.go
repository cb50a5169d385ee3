package ledger

import (
	"time"

	"pipeledger/pkg/contracts/domain"
)

// HolidayCalendar reports designated non-business days.
type HolidayCalendar interface {
	IsHoliday(d domain.Date) bool
}

// FillOptions selects the carry-forward rule: rows on the anchor weekday are
// cloned onto the following target weekdays when those days have no report.
// Holidays, when set, are filled like target weekdays.
type FillOptions struct {
	Anchor   time.Weekday
	Targets  []time.Weekday
	Holidays HolidayCalendar
}

// DefaultFillOptions carries Thursday snapshots into Friday and Saturday.
func DefaultFillOptions() FillOptions {
	return FillOptions{Anchor: time.Thursday, Targets: []time.Weekday{time.Friday, time.Saturday}}
}

func (o FillOptions) isTarget(d domain.Date) bool {
	wd := d.Weekday()
	for _, t := range o.Targets {
		if t == wd {
			return true
		}
	}
	return o.Holidays != nil && wd != o.Anchor && o.Holidays.IsHoliday(d)
}

// FillGaps walks every calendar day strictly between LastDate and newDate and
// inserts a synthetic clone of the carry-forward template on each target
// weekday or holiday. The template starts as the genuine anchor-weekday row of
// the week ending at LastDate, if any. An anchor weekday met during the walk replaces
// the template with its row, or clears it when that day has no row, so a
// stale snapshot is never carried into a later week. Days other than targets
// stay absent. FillGaps returns the number of rows created; rows inserted
// before a failing insert stay in the table.
func (l *Ledger) FillGaps(newDate domain.Date, opts FillOptions) (int, error) {
	last := l.LastDate()
	if last.IsZero() || !newDate.After(last.Add(1)) {
		return 0, nil
	}

	template, hasTemplate := l.anchorRow(last, opts.Anchor)

	created := 0
	for d := last.Add(1); d.Before(newDate); d = d.Add(1) {
		if d.Weekday() == opts.Anchor {
			template, hasTemplate = l.genuineRow(d)
		}
		if !opts.isTarget(d) || !hasTemplate {
			continue
		}
		ok, err := l.Insert(d, template.Values, true)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// anchorRow finds the genuine anchor-weekday row within the seven days
// ending at last.
func (l *Ledger) anchorRow(last domain.Date, anchor time.Weekday) (domain.LedgerRow, bool) {
	for d := last; !d.Before(last.Add(-6)); d = d.Add(-1) {
		if d.Weekday() == anchor {
			return l.genuineRow(d)
		}
	}
	return domain.LedgerRow{}, false
}

func (l *Ledger) genuineRow(d domain.Date) (domain.LedgerRow, bool) {
	i, ok := l.find(d)
	if !ok || l.rows[i].Synthetic {
		return domain.LedgerRow{}, false
	}
	return l.rows[i].Clone(), true
}

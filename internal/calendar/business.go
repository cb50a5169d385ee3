package calendar

import (
	"time"

	"pipeledger/pkg/contracts/domain"
)

// HolidayCalendar reports designated non-business days.
type HolidayCalendar interface {
	IsHoliday(d domain.Date) bool
}

// HolidaySet is a map-backed HolidayCalendar.
type HolidaySet map[domain.Date]struct{}

// NewHolidaySet builds a set from the given dates.
func NewHolidaySet(dates ...domain.Date) HolidaySet {
	s := make(HolidaySet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// IsHoliday implements HolidayCalendar. A nil set has no holidays.
func (s HolidaySet) IsHoliday(d domain.Date) bool {
	_, ok := s[d]
	return ok
}

// Add marks d as a holiday.
func (s HolidaySet) Add(d domain.Date) { s[d] = struct{}{} }

// IsBusinessDay is false on Saturday, Sunday and holidays. A nil calendar
// means no holidays.
func IsBusinessDay(d domain.Date, holidays HolidayCalendar) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return holidays == nil || !holidays.IsHoliday(d)
}

// SubtractBusinessDays walks backwards one calendar day at a time and only
// counts business days. Holiday sets are irregular so there is no closed form.
// n <= 0 returns d unchanged.
func SubtractBusinessDays(d domain.Date, n int, holidays HolidayCalendar) domain.Date {
	return stepBusinessDays(d, n, -1, holidays)
}

// AddBusinessDays is the forward counterpart of SubtractBusinessDays.
func AddBusinessDays(d domain.Date, n int, holidays HolidayCalendar) domain.Date {
	return stepBusinessDays(d, n, 1, holidays)
}

func stepBusinessDays(d domain.Date, n, step int, holidays HolidayCalendar) domain.Date {
	for n > 0 {
		d = d.Add(step)
		if IsBusinessDay(d, holidays) {
			n--
		}
	}
	return d
}

// NominationDeadline is the last business day on which a shipment starting on
// cycleStart can still be nominated, leadDays business days earlier.
func NominationDeadline(cycleStart domain.Date, leadDays int, holidays HolidayCalendar) domain.Date {
	return SubtractBusinessDays(cycleStart, leadDays, holidays)
}

// BusinessDaysBetween counts business days in (from, to]. It is negative when
// to is before from.
func BusinessDaysBetween(from, to domain.Date, holidays HolidayCalendar) int {
	if to.Before(from) {
		return -BusinessDaysBetween(to, from, holidays)
	}
	n := 0
	for d := from.Add(1); !d.After(to); d = d.Add(1) {
		if IsBusinessDay(d, holidays) {
			n++
		}
	}
	return n
}

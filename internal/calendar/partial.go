package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// ParseMonthDay splits an "M/D" label. Leading zeros and surrounding spaces
// are accepted.
func ParseMonthDay(md string) (time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(md), "/")
	if len(parts) != 2 {
		return 0, 0, apperrors.NewMalformedError("month_day", md, nil)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, apperrors.NewMalformedError("month_day", md, err)
	}
	d, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || d < 1 || d > daysIn(time.Month(m), 2000) {
		return 0, 0, apperrors.NewMalformedError("month_day", md, err)
	}
	return time.Month(m), d, nil
}

// ResolveMonthDay turns a partial "M/D" label into a full date using the
// bulletin date as context. Of the candidate years around the context, the
// one placing the date nearest to it wins, so "1/3" seen on 2024-12-30 is
// 2025-01-03 and "12/29" seen on 2025-01-02 is 2024-12-29.
func ResolveMonthDay(md string, context domain.Date) (domain.Date, error) {
	m, d, err := ParseMonthDay(md)
	if err != nil {
		return domain.MinDate, err
	}

	var (
		best     domain.Date
		bestDist = -1
	)
	for _, y := range []int{context.Year() - 1, context.Year(), context.Year() + 1} {
		if d > daysIn(m, y) {
			continue // 2/29 outside a leap year
		}
		cand := domain.NewDate(y, m, d)
		dist := abs(context.DaysUntil(cand))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	if bestDist < 0 {
		return domain.MinDate, apperrors.NewMalformedError("month_day", md,
			fmt.Errorf("no valid year near %s", context))
	}
	return best, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

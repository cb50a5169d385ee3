package spread

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pipeledger/internal/calendar"
	"pipeledger/pkg/contracts/domain"
)

// Series maps a date key to a value.
type Series map[string]decimal.Decimal

// Point is one keyed value of an ordered result.
type Point struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// referenceYear is a leap year so "2/29" labels have an instant.
const referenceYear = 2000

// KeyInstant maps a series key to a point in time used for ordering.
// "M/D" labels land in the reference year; ISO dates map to themselves.
func KeyInstant(key string) (time.Time, bool) {
	if m, d, err := calendar.ParseMonthDay(key); err == nil {
		return time.Date(referenceYear, m, d, 0, 0, 0, 0, time.UTC), true
	}
	if d, err := domain.ParseDate(key); err == nil {
		return d.Time(), true
	}
	return time.Time{}, false
}

// lessKey orders keys chronologically. Integer keys, such as cycle numbers,
// order numerically. Anything else falls back to string order after the
// parseable keys.
func lessKey(a, b string) bool {
	ta, oka := KeyInstant(a)
	tb, okb := KeyInstant(b)
	switch {
	case oka && okb:
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a < b
	case oka != okb:
		return oka
	}
	ia, erra := strconv.Atoi(a)
	ib, errb := strconv.Atoi(b)
	if erra == nil && errb == nil {
		return ia < ib
	}
	return a < b
}

// SortKeys orders keys chronologically in place.
func SortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
}

// Points returns the series in chronological order.
func (s Series) Points() []Point {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	SortKeys(keys)
	out := make([]Point, len(keys))
	for i, k := range keys {
		out[i] = Point{Key: k, Value: s[k]}
	}
	return out
}

// Difference returns a - b for every key present in both series. Keys
// missing from either side are left out; nothing is interpolated.
func Difference(a, b Series) []Point {
	out := make(Series)
	for k, va := range a {
		if vb, ok := b[k]; ok {
			out[k] = va.Sub(vb)
		}
	}
	return out.Points()
}

// Average returns the mean per key across the requested years. A key is kept
// only when every requested year has it, so partial coverage never skews the
// comparison. A requested year with no series yields an empty result.
func Average(seriesByYear map[int]Series, years []int) []Point {
	if len(years) == 0 {
		return []Point{}
	}
	for _, y := range years {
		if _, ok := seriesByYear[y]; !ok {
			return []Point{}
		}
	}

	n := decimal.NewFromInt(int64(len(years)))
	out := make(Series)
	for k, v := range seriesByYear[years[0]] {
		sum := v
		complete := true
		for _, y := range years[1:] {
			vy, ok := seriesByYear[y][k]
			if !ok {
				complete = false
				break
			}
			sum = sum.Add(vy)
		}
		if complete {
			out[k] = sum.Div(n)
		}
	}
	return out.Points()
}

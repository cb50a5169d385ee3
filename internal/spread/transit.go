package spread

import "pipeledger/pkg/contracts/domain"

// DayPoint is a keyed whole-day difference.
type DayPoint struct {
	Key  string `json:"key"`
	Days int    `json:"days"`
}

// TransitDifferential returns, for every key present in both schedules, the
// number of days from the origin date to the destination date.
func TransitDifferential(origin, destination map[string]domain.Date) []DayPoint {
	keys := make([]string, 0, len(origin))
	for k := range origin {
		if _, ok := destination[k]; ok {
			keys = append(keys, k)
		}
	}
	SortKeys(keys)

	out := make([]DayPoint, len(keys))
	for i, k := range keys {
		out[i] = DayPoint{Key: k, Days: origin[k].DaysUntil(destination[k])}
	}
	return out
}

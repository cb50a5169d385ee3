package spread

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func series(kv ...string) Series {
	s := make(Series)
	for i := 0; i < len(kv); i += 2 {
		s[kv[i]] = dec(kv[i+1])
	}
	return s
}

func keys(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Key
	}
	return out
}

func TestDifference(t *testing.T) {
	got := Difference(series("1/1", "10", "1/2", "20"), series("1/1", "4"))
	require.Len(t, got, 1)
	assert.Equal(t, "1/1", got[0].Key)
	assert.True(t, got[0].Value.Equal(dec("6")))
}

func TestDifference_Empty(t *testing.T) {
	assert.Empty(t, Difference(series("1/1", "1"), series("1/2", "1")))
	assert.Empty(t, Difference(nil, series("1/2", "1")))
}

func TestPoints_ChronologicalNotLexical(t *testing.T) {
	s := series("10/3", "1", "2/9", "2", "2/29", "3", "1/15", "4")
	assert.Equal(t, []string{"1/15", "2/9", "2/29", "10/3"}, keys(s.Points()))

	iso := series("2025-10-03", "1", "2025-2-9", "2", "2024-12-31", "3")
	assert.Equal(t, []string{"2024-12-31", "2025-2-9", "2025-10-03"}, keys(iso.Points()))
}

func TestSortKeys_Cycles(t *testing.T) {
	k := []string{"10", "2", "72", "1"}
	SortKeys(k)
	assert.Equal(t, []string{"1", "2", "10", "72"}, k)
}

func TestAverage(t *testing.T) {
	byYear := map[int]Series{
		2020: series("1/1", "1", "1/2", "10"),
		2021: series("1/1", "2", "1/2", "10"),
		2022: series("1/1", "3", "1/2", "10"),
		2023: series("1/1", "4", "1/2", "10"),
		2024: series("1/1", "5"), // lacks 1/2
	}
	got := Average(byYear, []int{2020, 2021, 2022, 2023, 2024})
	require.Len(t, got, 1, "a date missing in any year is excluded")
	assert.Equal(t, "1/1", got[0].Key)
	assert.True(t, got[0].Value.Equal(dec("3")))

	got = Average(byYear, []int{2020, 2021})
	assert.Equal(t, []string{"1/1", "1/2"}, keys(got))
	assert.True(t, got[0].Value.Equal(dec("1.5")))
}

func TestAverage_MissingYearOrNoYears(t *testing.T) {
	byYear := map[int]Series{2020: series("1/1", "1")}
	assert.Empty(t, Average(byYear, []int{2020, 2019}))
	assert.Empty(t, Average(byYear, nil))
}

func TestKeyInstant(t *testing.T) {
	_, ok := KeyInstant("2/29")
	assert.True(t, ok)
	_, ok = KeyInstant("cycle")
	assert.False(t, ok)
}

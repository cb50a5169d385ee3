package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// 2025-01-02 is a Thursday.

func fill(t *testing.T, l *Ledger, to domain.Date, opts FillOptions) int {
	t.Helper()
	created, err := l.FillGaps(to, opts)
	require.NoError(t, err)
	return created
}

func TestFillGaps_CarriesThursdayIntoWeekend(t *testing.T) {
	l := newInventory()
	_, err := l.Insert(d("2025-01-02"), map[string]string{"Open": "100", "Close": "110"}, false)
	require.NoError(t, err)

	created := fill(t, l, d("2025-01-06"), DefaultFillOptions())
	assert.Equal(t, 2, created)

	rows := l.Rows()
	require.Len(t, rows, 3)
	for i, want := range []string{"2025-01-03", "2025-01-04"} {
		row := rows[i+1]
		assert.Equal(t, want, row.Date.String())
		assert.True(t, row.Synthetic)
		assert.Equal(t, "110", row.Values["Close"])
		assert.Equal(t, "100", row.Values["Open"])
	}
	_, sunday := l.Row(d("2025-01-05"))
	assert.False(t, sunday, "non-target days stay absent")
}

func TestFillGaps_OneRowPerTargetWeekday(t *testing.T) {
	l := newInventory()
	_, _ = l.Insert(d("2025-01-02"), map[string]string{"Close": "1"}, false)
	_, _ = l.Insert(d("2025-01-03"), map[string]string{"Close": "2"}, false) // Friday reported

	created := fill(t, l, d("2025-01-06"), DefaultFillOptions())
	assert.Equal(t, 1, created)

	sat, ok := l.Row(d("2025-01-04"))
	require.True(t, ok)
	assert.True(t, sat.Synthetic)
	assert.Equal(t, "1", sat.Values["Close"], "cloned from the anchor row, not the latest row")
}

func TestFillGaps_NoAnchorNoRows(t *testing.T) {
	l := newInventory()
	_, _ = l.Insert(d("2025-01-01"), map[string]string{"Close": "1"}, false) // Wednesday

	created := fill(t, l, d("2025-01-06"), DefaultFillOptions())
	assert.Zero(t, created)
	assert.Equal(t, 1, l.Len())
}

func TestFillGaps_StaleAnchorIsNotCarried(t *testing.T) {
	l := newInventory()
	_, _ = l.Insert(d("2025-01-02"), map[string]string{"Close": "1"}, false)
	_, _ = l.Insert(d("2025-01-08"), map[string]string{"Close": "2"}, false) // next Wednesday

	created := fill(t, l, d("2025-01-13"), DefaultFillOptions())
	assert.Zero(t, created, "the walk passes a Thursday with no report")
}

func TestFillGaps_NoGap(t *testing.T) {
	l := newInventory()
	assert.Zero(t, fill(t, l, d("2025-01-06"), DefaultFillOptions()), "empty ledger")

	_, _ = l.Insert(d("2025-01-02"), nil, false)
	assert.Zero(t, fill(t, l, d("2025-01-03"), DefaultFillOptions()))
	assert.Zero(t, fill(t, l, d("2025-01-01"), DefaultFillOptions()))
}

func TestFillGaps_CustomWeekdays(t *testing.T) {
	l := newInventory()
	_, _ = l.Insert(d("2025-01-03"), map[string]string{"Close": "9"}, false) // Friday

	opts := FillOptions{Anchor: time.Friday, Targets: []time.Weekday{time.Saturday, time.Sunday}}
	assert.Equal(t, 2, fill(t, l, d("2025-01-06"), opts))
	assert.Equal(t, 2, l.CountSynthetic())
}

type holidays map[string]bool

func (h holidays) IsHoliday(x domain.Date) bool { return h[x.String()] }

func TestFillGaps_HolidaysAreFilled(t *testing.T) {
	l := newInventory()
	_, _ = l.Insert(d("2025-01-02"), map[string]string{"Close": "5"}, false)

	opts := DefaultFillOptions()
	opts.Holidays = holidays{"2025-01-06": true}
	assert.Equal(t, 3, fill(t, l, d("2025-01-07"), opts))

	mon, ok := l.Row(d("2025-01-06"))
	require.True(t, ok)
	assert.True(t, mon.Synthetic)
	assert.Equal(t, "5", mon.Values["Close"])
}

func TestFillGaps_ReportsInsertFailure(t *testing.T) {
	l := newInventory()
	_, _ = l.Insert(d("2025-01-02"), map[string]string{"Close": "5"}, false)
	l.rows[0].Values["Bogus"] = "x"

	created, err := l.FillGaps(d("2025-01-06"), DefaultFillOptions())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, created)
	assert.Equal(t, 1, l.Len())
}

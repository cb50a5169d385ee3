package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

func TestExpandCycleRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		want       []int
	}{
		{"wraps past 72", 70, 3, []int{70, 71, 72, 1, 2, 3}},
		{"single cycle", 5, 5, []int{5}},
		{"plain range", 10, 13, []int{10, 11, 12, 13}},
		{"wrap to 1", 72, 1, []int{72, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandCycleRange(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandCycleRange_FullLoop(t *testing.T) {
	got, err := ExpandCycleRange(1, 72)
	require.NoError(t, err)
	assert.Len(t, got, 72)

	got, err = ExpandCycleRange(2, 1)
	require.NoError(t, err)
	assert.Len(t, got, 72)
	assert.Equal(t, 2, got[0])
	assert.Equal(t, 1, got[71])
}

func TestExpandCycleRange_OutOfRange(t *testing.T) {
	for _, r := range [][2]int{{0, 3}, {3, 73}, {-1, -1}} {
		_, err := ExpandCycleRange(r[0], r[1])
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycleOutOfRange)
		assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
	}
}

func TestCycles_MatchesWindowContains(t *testing.T) {
	w := domain.CycleWindow{Start: 68, End: 4}
	cycles, err := Cycles(w)
	require.NoError(t, err)
	for c := 1; c <= 72; c++ {
		assert.Equal(t, w.Contains(c), contains(cycles, c), "cycle %d", c)
	}
}

func TestNextCycle(t *testing.T) {
	assert.Equal(t, 2, NextCycle(1))
	assert.Equal(t, 1, NextCycle(72))
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

package calendar

import (
	"errors"
	"fmt"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// ErrCycleOutOfRange is wrapped by errors for cycle numbers outside 1..72.
var ErrCycleOutOfRange = errors.New("cycle out of range")

// ValidCycle reports whether c is a schedule cycle.
func ValidCycle(c int) bool { return c >= domain.MinCycle && c <= domain.MaxCycle }

// ExpandCycleRange lists the cycles of an inclusive range. When start > end
// the range wraps: start..72 followed by 1..end. start == end is a single cycle.
func ExpandCycleRange(start, end int) ([]int, error) {
	if !ValidCycle(start) || !ValidCycle(end) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("expand cycles %d..%d, want [%d,%d]", start, end, domain.MinCycle, domain.MaxCycle),
			ErrCycleOutOfRange)
	}

	if start <= end {
		out := make([]int, 0, end-start+1)
		for c := start; c <= end; c++ {
			out = append(out, c)
		}
		return out, nil
	}

	out := make([]int, 0, domain.MaxCycle-start+1+end)
	for c := start; c <= domain.MaxCycle; c++ {
		out = append(out, c)
	}
	for c := domain.MinCycle; c <= end; c++ {
		out = append(out, c)
	}
	return out, nil
}

// Cycles expands a CycleWindow.
func Cycles(w domain.CycleWindow) ([]int, error) {
	return ExpandCycleRange(w.Start, w.End)
}

// NextCycle returns the cycle following c, wrapping 72 to 1.
func NextCycle(c int) int {
	if c >= domain.MaxCycle {
		return domain.MinCycle
	}
	return c + 1
}

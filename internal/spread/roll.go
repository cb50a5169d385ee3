package spread

import (
	"pipeledger/internal/calendar"
	"pipeledger/pkg/contracts/domain"
)

// RollForward reports whether today is strictly after the code's expiration
// date in today's calendar year, meaning analytics should move to the next
// settlement year.
func RollForward(code string, today domain.Date) (bool, error) {
	exp, err := calendar.ExpirationInYear(code, today.Year())
	if err != nil {
		return false, err
	}
	return today.After(exp), nil
}

// ActiveSettlementYear returns the earliest settlement year whose window has
// not ended on today.
func ActiveSettlementYear(code string, today domain.Date) (int, error) {
	for year := today.Year(); ; year++ {
		w, err := calendar.ContractWindowFor(code, year)
		if err != nil {
			return 0, err
		}
		if !today.After(w.End) {
			return year, nil
		}
	}
}

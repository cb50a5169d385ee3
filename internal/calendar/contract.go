package calendar

import (
	"strings"
	"time"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// contractRule describes the delivery window of one contract-month code
// relative to its settlement year.
type contractRule struct {
	startMonth      time.Month
	startDay        int
	endMonth        time.Month
	endDay          int
	startYearOffset int
	endYearOffset   int
}

// contractRules is the fixed rule table for the twelve standard month codes.
// Every window is the year running up to the day before the delivery month.
var contractRules = map[string]contractRule{
	"F": {time.January, 1, time.December, 31, -1, -1},
	"G": {time.February, 1, time.January, 31, -1, 0},
	"H": {time.March, 1, time.February, 28, -1, 0},
	"J": {time.April, 1, time.March, 31, -1, 0},
	"K": {time.May, 1, time.April, 30, -1, 0},
	"M": {time.June, 1, time.May, 31, -1, 0},
	"N": {time.July, 1, time.June, 30, -1, 0},
	"Q": {time.August, 1, time.July, 31, -1, 0},
	"U": {time.September, 1, time.August, 31, -1, 0},
	"V": {time.October, 1, time.September, 30, -1, 0},
	"X": {time.November, 1, time.October, 31, -1, 0},
	"Z": {time.December, 1, time.November, 30, -1, 0},
}

// ContractCodes lists the recognized month codes in delivery-month order.
var ContractCodes = []string{"F", "G", "H", "J", "K", "M", "N", "Q", "U", "V", "X", "Z"}

// NormalizeCode trims and upper-cases a contract-month code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsContractCode reports whether code is one of the twelve month codes.
func IsContractCode(code string) bool {
	_, ok := contractRules[NormalizeCode(code)]
	return ok
}

// ContractWindowFor returns the one-year forward delivery window of a
// contract-month code for the given settlement year.
func ContractWindowFor(code string, settlementYear int) (domain.ContractWindow, error) {
	code = NormalizeCode(code)
	rule, ok := contractRules[code]
	if !ok {
		return domain.ContractWindow{}, apperrors.NewInvalidCodeError("contract-month", code)
	}

	endYear := settlementYear + rule.endYearOffset
	endDay := rule.endDay
	if rule.endMonth == time.February && isLeap(endYear) {
		endDay = 29
	}

	return domain.ContractWindow{
		Code:  code,
		Start: domain.NewDate(settlementYear+rule.startYearOffset, rule.startMonth, rule.startDay),
		End:   domain.NewDate(endYear, rule.endMonth, endDay),
	}, nil
}

// Expiration returns the last day of the code's window for settlementYear.
func Expiration(code string, settlementYear int) (domain.Date, error) {
	w, err := ContractWindowFor(code, settlementYear)
	if err != nil {
		return domain.MinDate, err
	}
	return w.End, nil
}

// ExpirationInYear returns the code's expiration date that falls in the
// given calendar year. Only F windows end in the year before settlement.
func ExpirationInYear(code string, year int) (domain.Date, error) {
	rule, ok := contractRules[NormalizeCode(code)]
	if !ok {
		return domain.MinDate, apperrors.NewInvalidCodeError("contract-month", NormalizeCode(code))
	}
	return Expiration(code, year-rule.endYearOffset)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

package merger

import (
	"strings"

	"pipeledger/internal/calendar"
	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/ledger"
	"pipeledger/pkg/contracts/domain"
)

// checkValue applies the column format check. The stored text is never
// rewritten; the check only decides whether the value may be written.
func checkValue(column domain.Column, value string) error {
	v := strings.TrimSpace(value)
	if v == "" && column.Format != domain.FormatText {
		return apperrors.NewMalformedError(column.Name, value, nil)
	}

	var err error
	switch column.Format {
	case domain.FormatNumber:
		_, err = ledger.ParseNumber(v)
	case domain.FormatMonthDay:
		_, _, err = calendar.ParseMonthDay(v)
	case domain.FormatDate:
		_, err = domain.ParseDate(v)
	}
	if err != nil {
		return apperrors.NewMalformedError(column.Name, value, err)
	}
	return nil
}

// resolveDate returns the row date of an observation. A partial month/day
// label is resolved against the bulletin's publish date.
func resolveDate(o domain.Observation, published domain.Date) (domain.Date, error) {
	if !o.Date.IsZero() {
		return o.Date, nil
	}
	if o.MonthDay == "" {
		return domain.MinDate, apperrors.NewMalformedError("date", "", nil)
	}
	return calendar.ResolveMonthDay(o.MonthDay, published)
}

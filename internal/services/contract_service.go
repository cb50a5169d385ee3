package services

import (
	"context"
	"time"

	"pipeledger/internal/calendar"
	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/spread"
	"pipeledger/pkg/contracts/domain"
)

// ContractInfo describes a contract-month code for one settlement year.
type ContractInfo struct {
	Code           string      `json:"code"`
	SettlementYear int         `json:"settlement_year"`
	Start          domain.Date `json:"start"`
	End            domain.Date `json:"end"`
	Expiration     domain.Date `json:"expiration"`
	Active         bool        `json:"active"`
	RollForward    bool        `json:"roll_forward"`
	BusinessDays   int         `json:"business_days_to_expiration"`
}

// Deadline is a nomination deadline for a cycle start date.
type Deadline struct {
	CycleStart   domain.Date `json:"cycle_start"`
	LeadDays     int         `json:"lead_days"`
	Deadline     domain.Date `json:"deadline"`
	BusinessDays int         `json:"business_days_remaining"`
}

// ContractService answers calendar questions using the loaded holiday set.
type ContractService struct {
	holidays calendar.HolidayCalendar
	now      func() time.Time
}

// NewContractService creates a ContractService. holidays may be nil.
func NewContractService(holidays calendar.HolidayCalendar) *ContractService {
	return &ContractService{holidays: holidays, now: time.Now}
}

func (s *ContractService) today() domain.Date { return domain.DateOf(s.now().UTC()) }

// Contract describes code for settlementYear. A zero year selects the
// settlement year still active today.
func (s *ContractService) Contract(ctx context.Context, code string, settlementYear int) (ContractInfo, error) {
	today := s.today()
	code = calendar.NormalizeCode(code)

	if settlementYear == 0 {
		y, err := spread.ActiveSettlementYear(code, today)
		if err != nil {
			return ContractInfo{}, err
		}
		settlementYear = y
	}
	w, err := calendar.ContractWindowFor(code, settlementYear)
	if err != nil {
		return ContractInfo{}, err
	}
	exp, err := calendar.Expiration(code, settlementYear)
	if err != nil {
		return ContractInfo{}, err
	}
	roll, err := spread.RollForward(code, today)
	if err != nil {
		return ContractInfo{}, err
	}

	return ContractInfo{
		Code:           code,
		SettlementYear: settlementYear,
		Start:          w.Start,
		End:            w.End,
		Expiration:     exp,
		Active:         w.Contains(today),
		RollForward:    roll,
		BusinessDays:   calendar.BusinessDaysBetween(today, exp, s.holidays),
	}, nil
}

// NominationDeadline steps leadDays business days back from cycleStart.
func (s *ContractService) NominationDeadline(ctx context.Context, cycleStart domain.Date, leadDays int) (Deadline, error) {
	if cycleStart.IsZero() {
		return Deadline{}, apperrors.NewValidationError("cycle start date is required", nil)
	}
	if leadDays < 0 {
		return Deadline{}, apperrors.NewValidationError("lead days must not be negative", nil)
	}
	d := calendar.NominationDeadline(cycleStart, leadDays, s.holidays)
	return Deadline{
		CycleStart:   cycleStart,
		LeadDays:     leadDays,
		Deadline:     d,
		BusinessDays: calendar.BusinessDaysBetween(s.today(), d, s.holidays),
	}, nil
}

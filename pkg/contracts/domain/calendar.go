package domain

// CycleWindow is an inclusive range of schedule cycles. A window whose Start
// is greater than its End wraps past 72 back to 1.
type CycleWindow struct {
	Start int `json:"start" validate:"min=1,max=72"`
	End   int `json:"end" validate:"min=1,max=72"`
}

// Wraps reports whether the window crosses the 72 -> 1 boundary.
func (w CycleWindow) Wraps() bool { return w.Start > w.End }

// Contains reports whether cycle c falls inside the window.
func (w CycleWindow) Contains(c int) bool {
	if w.Wraps() {
		return c >= w.Start && c <= MaxCycle || c >= MinCycle && c <= w.End
	}
	return c >= w.Start && c <= w.End
}

// ContractWindow is the one-year forward delivery period of a contract-month code.
type ContractWindow struct {
	Code  string `json:"code"`
	Start Date   `json:"start"`
	End   Date   `json:"end"`
}

// Contains reports whether d falls inside the window, boundaries included.
func (w ContractWindow) Contains(d Date) bool { return !d.Before(w.Start) && !d.After(w.End) }

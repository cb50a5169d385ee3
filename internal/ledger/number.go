package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber reads a numeric cell. Thousands separators are accepted.
func ParseNumber(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

package validate

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a client supplied money value. It accepts only positive
// values with at most two decimal places.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if !IsMoney(amount) {
		return decimal.Zero, false
	}
	return amount, true
}

func IsMoney(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(2))
}

func IsPercent(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

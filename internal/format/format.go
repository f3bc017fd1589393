// Package format renders amounts, percentages and alert text for display.
package format

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/shopspring/decimal"
)

// Currency formats amount in the ISO currency code (EUR when unknown).
// NaN renders as zero.
func Currency(amount float64, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		code = money.EUR
		cur = money.GetCurrency(code)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// SignedCurrency prefixes positive amounts with +
func SignedCurrency(amount float64, code string) string {
	if amount > 0 {
		return "+" + Currency(amount, code)
	}
	return Currency(amount, code)
}

// Percentage formats v with a sign and two decimals; NaN renders as 0.00%
func Percentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00%"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

// Compact abbreviates large numbers with K, M or B
func Compact(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s%.2fK", sign, v/1e3)
	}
	return fmt.Sprintf("%s%.2f", sign, v)
}

// AlertMessage describes a triggered alert, e.g. "AAPL rose above $180.00"
func AlertMessage(a domain.Alert) string {
	switch a.Condition {
	case domain.ConditionAbove:
		return fmt.Sprintf("%s rose above %s", a.Symbol, Currency(a.Value.Float(), money.USD))
	case domain.ConditionBelow:
		return fmt.Sprintf("%s fell below %s", a.Symbol, Currency(a.Value.Float(), money.USD))
	case domain.ConditionChange:
		return fmt.Sprintf("%s moved more than %.2f%%", a.Symbol, a.Value.Float())
	}
	return fmt.Sprintf("%s alert triggered", a.Symbol)
}

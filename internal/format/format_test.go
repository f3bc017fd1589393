package format

import (
	"math"
	"testing"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$180.00", Currency(180, "USD"))
	assert.Equal(t, "$1,234.57", Currency(1234.567, "USD"))
	assert.Equal(t, "$0.00", Currency(math.NaN(), "USD"))
	assert.Equal(t, Currency(10, "EUR"), Currency(10, "XYZ"), "unknown codes fall back to EUR")
	assert.Equal(t, "+$5.00", SignedCurrency(5, "USD"))
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.333, "+1.33%"},
		{-1.3, "-1.30%"},
		{0, "+0.00%"},
		{math.NaN(), "0.00%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.in))
	}
}

func TestCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{999, "999.00"},
		{1500, "1.50K"},
		{-2_500_000, "-2.50M"},
		{127_458_320_000, "127.46B"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compact(tt.in))
	}
}

func TestAlertMessage(t *testing.T) {
	assert.Equal(t, "AAPL rose above $180.00",
		AlertMessage(domain.Alert{Symbol: "AAPL", Condition: domain.ConditionAbove, Value: 180}))
	assert.Equal(t, "BTC fell below $40,000.00",
		AlertMessage(domain.Alert{Symbol: "BTC", Condition: domain.ConditionBelow, Value: 40000}))
	assert.Equal(t, "TSLA moved more than 5.00%",
		AlertMessage(domain.Alert{Symbol: "TSLA", Condition: domain.ConditionChange, Value: 5}))
}

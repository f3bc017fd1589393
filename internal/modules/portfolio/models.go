// Package portfolio stores the per-user portfolio summary and the named
// portfolio containers.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/aristath/stoxy/internal/modules"
)

// Summary is the one-per-user portfolio aggregate
type Summary struct {
	ID               int64             `json:"id"`
	UserID           int64             `json:"user_id"`
	TotalValue       decimal.Decimal   `json:"total_value"`
	TodayGain        decimal.Decimal   `json:"today_gain"`
	TodayGainPercent decimal.Decimal   `json:"today_gain_percent"`
	Stocks           decimal.Decimal   `json:"stocks"`
	Crypto           decimal.Decimal   `json:"crypto"`
	CreatedAt        modules.Timestamp `json:"created_at"`
	UpdatedAt        modules.Timestamp `json:"updated_at"`
}

// SummaryInput replaces the summary. Missing fields are zero.
type SummaryInput struct {
	TotalValue       decimal.Decimal `json:"total_value"`
	TodayGain        decimal.Decimal `json:"today_gain"`
	TodayGainPercent decimal.Decimal `json:"today_gain_percent"`
	Stocks           decimal.Decimal `json:"stocks"`
	Crypto           decimal.Decimal `json:"crypto"`
}

// Container is a named portfolio
type Container struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Value       decimal.Decimal   `json:"value"`
	Currency    string            `json:"currency"`
	CreatedAt   modules.Timestamp `json:"created_at"`
	UpdatedAt   modules.Timestamp `json:"updated_at"`
}

// ContainerInput creates a container
type ContainerInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Value       *decimal.Decimal `json:"value"`
	Currency    string           `json:"currency"`
}

// DefaultCurrency is used when a container is created without one
const DefaultCurrency = "EUR"

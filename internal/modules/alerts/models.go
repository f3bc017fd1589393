// Package alerts stores per-user price alerts.
package alerts

import (
	"github.com/shopspring/decimal"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/modules"
)

// Alert is a stored price alert
type Alert struct {
	ID        int64                 `json:"id"`
	UserID    int64                 `json:"user_id"`
	Symbol    string                `json:"symbol"`
	Condition domain.AlertCondition `json:"condition"`
	Value     decimal.Decimal       `json:"value"`
	Active    bool                  `json:"active"`
	Triggered bool                  `json:"triggered"`
	CreatedAt modules.Timestamp     `json:"created_at"`
	UpdatedAt modules.Timestamp     `json:"updated_at"`
}

// Input creates an alert. Active defaults to true when omitted.
type Input struct {
	Symbol    string                `json:"symbol"`
	Condition domain.AlertCondition `json:"condition"`
	Value     decimal.Decimal       `json:"value"`
	Active    *bool                 `json:"active"`
}

// Update sets the alert flags
type Update struct {
	Active    bool `json:"active"`
	Triggered bool `json:"triggered"`
}

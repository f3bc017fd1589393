// Package watchlist stores the symbols a user tracks without owning them.
package watchlist

import (
	"github.com/shopspring/decimal"

	"github.com/aristath/stoxy/internal/modules"
)

// Item is a watched symbol. A symbol appears at most once per user.
type Item struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Price         decimal.Decimal   `json:"price"`
	Change        decimal.Decimal   `json:"change"`
	ChangePercent decimal.Decimal   `json:"change_percent"`
	CreatedAt     modules.Timestamp `json:"created_at"`
	UpdatedAt     modules.Timestamp `json:"updated_at"`
}

// Input adds a symbol
type Input struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

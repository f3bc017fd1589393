// Package holdings stores owned positions per user.
package holdings

import (
	"github.com/shopspring/decimal"

	"github.com/aristath/stoxy/internal/modules"
)

// Holding is a stored position
type Holding struct {
	ID            int64               `json:"id"`
	UserID        int64               `json:"user_id"`
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	Quantity      decimal.Decimal     `json:"quantity"`
	Value         decimal.Decimal     `json:"value"`
	Change        decimal.Decimal     `json:"change"`
	ChangePercent decimal.Decimal     `json:"change_percent"`
	PurchasePrice decimal.NullDecimal `json:"purchase_price"`
	PurchaseDate  *string             `json:"purchase_date"`
	Type          *string             `json:"type"`
	CreatedAt     modules.Timestamp   `json:"created_at"`
	UpdatedAt     modules.Timestamp   `json:"updated_at"`
}

// Input creates a holding
type Input struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Value         decimal.Decimal  `json:"value"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent decimal.Decimal  `json:"change_percent"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	PurchaseDate  string           `json:"purchase_date"`
	Type          string           `json:"type"`
}

// Update rewrites the market-driven fields of a holding
type Update struct {
	Quantity      decimal.Decimal `json:"quantity"`
	Value         decimal.Decimal `json:"value"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

package stoxyapi

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/aristath/stoxy/internal/domain"
)

// Decimal is a numeric wire field. The backend sends decimals as JSON strings;
// Present records whether the key was in the payload at all.
type Decimal struct {
	Value   domain.Number
	Present bool
}

// Dec builds a present Decimal
func Dec(v float64) Decimal {
	return Decimal{Value: domain.Number(v), Present: true}
}

// UnmarshalJSON accepts strings, numbers and null (null and garbage become NaN)
func (d *Decimal) UnmarshalJSON(data []byte) error {
	d.Present = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		d.Value = domain.NaN()
		return nil
	}
	d.Value = domain.ParseNumber(strings.Trim(string(data), `"`))
	return nil
}

// MarshalJSON writes the decimal as a string, the way the backend does
func (d Decimal) MarshalJSON() ([]byte, error) {
	f := d.Value.Float()
	if !d.Present || math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(strconv.FormatFloat(f, 'f', -1, 64))), nil
}

// HealthStatus is the /health payload
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

// OK reports whether the backend declared itself healthy
func (h HealthStatus) OK() bool {
	return h.Status == "ok"
}

// PortfolioRecord is the wire shape of the portfolio summary
type PortfolioRecord struct {
	ID               *int64  `json:"id,omitempty"`
	UserID           int64   `json:"user_id,omitempty"`
	TotalValue       Decimal `json:"total_value"`
	TodayGain        Decimal `json:"today_gain"`
	TodayGainPercent Decimal `json:"today_gain_percent"`
	Stocks           Decimal `json:"stocks"`
	Crypto           Decimal `json:"crypto"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

// HoldingRecord is the wire shape of a holding
type HoldingRecord struct {
	ID            *int64  `json:"id,omitempty"`
	UserID        int64   `json:"user_id,omitempty"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Quantity      Decimal `json:"quantity"`
	Value         Decimal `json:"value"`
	Change        Decimal `json:"change"`
	ChangePercent Decimal `json:"change_percent"`
	PurchasePrice Decimal `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date,omitempty"`
	Type          string  `json:"type,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// WatchlistRecord is the wire shape of a watchlist item
type WatchlistRecord struct {
	ID            *int64  `json:"id,omitempty"`
	UserID        int64   `json:"user_id,omitempty"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         Decimal `json:"price"`
	Change        Decimal `json:"change"`
	ChangePercent Decimal `json:"change_percent"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// AlertRecord is the wire shape of an alert
type AlertRecord struct {
	ID        *int64  `json:"id,omitempty"`
	UserID    int64   `json:"user_id,omitempty"`
	Symbol    string  `json:"symbol"`
	Condition string  `json:"condition"`
	Value     Decimal `json:"value"`
	Active    *bool   `json:"active,omitempty"`
	Triggered *bool   `json:"triggered,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// ContainerRecord is the wire shape of a named portfolio
type ContainerRecord struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Value       Decimal `json:"value"`
	Currency    string  `json:"currency"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// MessageResponse is returned by delete endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// Request payloads

// PortfolioUpdate replaces the portfolio summary
type PortfolioUpdate struct {
	TotalValue       float64 `json:"total_value"`
	TodayGain        float64 `json:"today_gain"`
	TodayGainPercent float64 `json:"today_gain_percent"`
	Stocks           float64 `json:"stocks"`
	Crypto           float64 `json:"crypto"`
}

// HoldingInput creates a holding
type HoldingInput struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date,omitempty"`
	Type          string  `json:"type"`
}

// HoldingUpdate rewrites the mutable fields of a holding
type HoldingUpdate struct {
	Quantity      float64 `json:"quantity"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// WatchlistInput adds a symbol to the watchlist
type WatchlistInput struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// AlertInput creates an alert
type AlertInput struct {
	Symbol    string  `json:"symbol"`
	Condition string  `json:"condition"`
	Value     float64 `json:"value"`
	Active    *bool   `json:"active,omitempty"`
}

// AlertUpdate sets the alert flags
type AlertUpdate struct {
	Active    bool `json:"active"`
	Triggered bool `json:"triggered"`
}

// ContainerInput creates a named portfolio
type ContainerInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency"`
}

// Market data

// SearchResult is one symbol search hit
type SearchResult struct {
	Symbol   string        `json:"symbol"`
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Price    domain.Number `json:"price"`
	Change   domain.Number `json:"change"`
	Currency string        `json:"currency"`
}

// MarketIndex is a headline index quote
type MarketIndex struct {
	Symbol        string        `json:"symbol"`
	Value         domain.Number `json:"value"`
	ChangePercent domain.Number `json:"change_percent"`
}

// Quote is a priced symbol with its daily move, used by movers and crypto lists
type Quote struct {
	Symbol        string        `json:"symbol"`
	Name          string        `json:"name"`
	Price         domain.Number `json:"price"`
	ChangePercent domain.Number `json:"change_percent"`
}

// NewsRecord is a headline from /api/news
type NewsRecord struct {
	ID     int64  `json:"id"`
	Source string `json:"source"`
	Title  string `json:"title"`
	Time   string `json:"time"`
	Image  string `json:"image,omitempty"`
}

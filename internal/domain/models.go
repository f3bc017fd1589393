// Package domain provides the in-memory dashboard models shared by the client packages.
//
// Field names are camelCase on purpose: these are the shapes persisted to the
// offline store and exported, not the snake_case API wire records.
package domain

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"
)

// Number is a float64 that survives JSON round trips when it is NaN.
// NaN marshals as null and null unmarshals back to NaN, so a value that failed
// to parse stays visibly broken instead of collapsing to zero.
type Number float64

// NaN returns the not-a-number sentinel
func NaN() Number { return Number(math.NaN()) }

// Float returns the raw float64
func (n Number) Float() float64 { return float64(n) }

// IsNaN reports whether n is the not-a-number sentinel
func (n Number) IsNaN() bool { return math.IsNaN(float64(n)) }

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler. Numeric strings are accepted.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = NaN()
		return nil
	}
	*n = ParseNumber(strings.Trim(string(data), `"`))
	return nil
}

// ParseNumber parses a decimal string, returning NaN when it is not a number
func ParseNumber(s string) Number {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return NaN()
	}
	return Number(f)
}

// AssetType classifies a holding
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
	AssetETF    AssetType = "etf"
)

// Portfolio is the aggregate summary across all holdings
type Portfolio struct {
	TotalValue       Number `json:"totalValue"`
	TodayGain        Number `json:"todayGain"`
	TodayGainPercent Number `json:"todayGainPercent"`
	Stocks           Number `json:"stocks"`
	Crypto           Number `json:"crypto"`
}

// Holding is an owned position. ID is nil until the backend assigns one.
type Holding struct {
	ID            *int64    `json:"id,omitempty"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Quantity      Number    `json:"quantity"`
	Value         Number    `json:"value"`
	Change        Number    `json:"change"`
	ChangePercent Number    `json:"changePercent"`
	PurchasePrice Number    `json:"purchasePrice,omitempty"`
	PurchaseDate  string    `json:"purchaseDate,omitempty"`
	Type          AssetType `json:"type,omitempty"`
}

// WatchlistItem is a tracked symbol without a position
type WatchlistItem struct {
	ID            *int64 `json:"id,omitempty"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Price         Number `json:"price"`
	Change        Number `json:"change"`
	ChangePercent Number `json:"changePercent"`
}

// AlertCondition is the breach test applied to a watchlist item
type AlertCondition string

const (
	ConditionAbove  AlertCondition = "above"
	ConditionBelow  AlertCondition = "below"
	ConditionChange AlertCondition = "change"
)

// Valid reports whether c is a known condition
func (c AlertCondition) Valid() bool {
	switch c {
	case ConditionAbove, ConditionBelow, ConditionChange:
		return true
	}
	return false
}

// Alert fires once when its condition is breached. Triggered never resets.
type Alert struct {
	ID        *int64         `json:"id,omitempty"`
	Symbol    string         `json:"symbol"`
	Condition AlertCondition `json:"condition"`
	Value     Number         `json:"value"`
	Active    bool           `json:"active"`
	Triggered bool           `json:"triggered"`
}

// PortfolioContainer is a named portfolio; one of them is current on the client
type PortfolioContainer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       Number `json:"value"`
	Currency    string `json:"currency"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// NewsItem is a headline shown on the dashboard
type NewsItem struct {
	ID     int64  `json:"id,omitempty"`
	Source string `json:"source"`
	Title  string `json:"title"`
	Time   string `json:"time"`
	Image  string `json:"image,omitempty"`
}

// NotificationSettings toggles delivery channels
type NotificationSettings struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// Settings are user preferences persisted only locally
type Settings struct {
	Theme           string               `json:"theme"`
	Currency        string               `json:"currency"`
	Language        string               `json:"language"`
	Notifications   NotificationSettings `json:"notifications"`
	AutoRefresh     bool                 `json:"autoRefresh"`
	RefreshInterval int                  `json:"refreshInterval"`
	ChartType       string               `json:"chartType"`
	ShowMiniCharts  bool                 `json:"showMiniCharts"`
}

// ProfilePreferences are per-user UI preferences
type ProfilePreferences struct {
	DefaultPage string `json:"defaultPage"`
	CompactView bool   `json:"compactView"`
}

// UserProfile is the locally persisted user card
type UserProfile struct {
	Name        string             `json:"name"`
	Initials    string             `json:"initials"`
	Status      string             `json:"status"`
	JoinDate    string             `json:"joinDate"`
	Preferences ProfilePreferences `json:"preferences"`
}

// NotificationKind classifies user-facing notifications
type NotificationKind string

const (
	NotificationAlert         NotificationKind = "alert"
	NotificationPositionAdded NotificationKind = "position_added"
	NotificationError         NotificationKind = "error"
	NotificationInfo          NotificationKind = "info"
)

// Notification is a message surfaced to the user
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Symbol    string           `json:"symbol,omitempty"`
	AlertID   *int64           `json:"alertId,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// MarketStatus is the simulated exchange open/closed flag
type MarketStatus struct {
	Open      bool      `json:"open"`
	Label     string    `json:"label"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 { return &v }

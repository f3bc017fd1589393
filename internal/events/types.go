// Package events provides event management functionality.
package events

import (
	"time"
)

// EventType represents different event types
type EventType string

const (
	// Load and persistence
	StateLoaded   EventType = "STATE_LOADED"
	StateFlushed  EventType = "STATE_FLUSHED"
	FlushFailed   EventType = "FLUSH_FAILED"
	DataImported  EventType = "DATA_IMPORTED"
	DataExported  EventType = "DATA_EXPORTED"
	BackupCreated EventType = "BACKUP_CREATED"

	// Simulation
	PricesTicked        EventType = "PRICES_TICKED"
	AlertTriggered      EventType = "ALERT_TRIGGERED"
	MarketStatusChanged EventType = "MARKET_STATUS_CHANGED"

	// Mutations
	HoldingCreated    EventType = "HOLDING_CREATED"
	HoldingUpdated    EventType = "HOLDING_UPDATED"
	HoldingDeleted    EventType = "HOLDING_DELETED"
	AlertCreated      EventType = "ALERT_CREATED"
	AlertUpdated      EventType = "ALERT_UPDATED"
	AlertDeleted      EventType = "ALERT_DELETED"
	WatchlistAdded    EventType = "WATCHLIST_ADDED"
	WatchlistRemoved  EventType = "WATCHLIST_REMOVED"
	PortfolioUpdated  EventType = "PORTFOLIO_UPDATED"
	PortfolioCreated  EventType = "PORTFOLIO_CREATED"
	PortfolioDeleted  EventType = "PORTFOLIO_DELETED"
	PortfolioSelected EventType = "PORTFOLIO_SELECTED"

	// User-facing
	NotificationCreated EventType = "NOTIFICATION_CREATED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type, in declaration order
var AllTypes = []EventType{
	StateLoaded, StateFlushed, FlushFailed, DataImported, DataExported, BackupCreated,
	PricesTicked, AlertTriggered, MarketStatusChanged,
	HoldingCreated, HoldingUpdated, HoldingDeleted,
	AlertCreated, AlertUpdated, AlertDeleted,
	WatchlistAdded, WatchlistRemoved,
	PortfolioUpdated, PortfolioCreated, PortfolioDeleted, PortfolioSelected,
	NotificationCreated, ErrorOccurred,
}

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

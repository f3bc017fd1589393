// Package state holds the dashboard's in-memory application state.
//
// A single AppState is created at startup and injected into every component
// that reads or mutates it. Each Update runs in one critical section, so a
// collection is never observed half-written.
package state

import (
	"sync"
	"time"

	"github.com/aristath/stoxy/internal/domain"
)

// MaxNotifications bounds the notification history kept in memory
const MaxNotifications = 50

// Data is the plain state record. Copies returned by Snapshot share nothing
// mutable with the live state.
type Data struct {
	Portfolio        domain.Portfolio
	Holdings         []domain.Holding
	Watchlist        []domain.WatchlistItem
	Alerts           []domain.Alert
	News             []domain.NewsItem
	Portfolios       []domain.PortfolioContainer
	CurrentPortfolio int64
	Settings         domain.Settings
	UserProfile      domain.UserProfile
	Notifications    []domain.Notification
	Market           domain.MarketStatus
}

// AppState is the mutex-guarded state shared by the client components
type AppState struct {
	mu     sync.RWMutex
	data   Data
	userID int64
}

// New creates an app state for userID, populated with the illustrative defaults
func New(userID int64) *AppState {
	return &AppState{
		data:   DefaultData(time.Now()),
		userID: userID,
	}
}

// DefaultData returns a fresh copy of the hardcoded defaults
func DefaultData(now time.Time) Data {
	return Data{
		Portfolio:        DefaultPortfolio(),
		Holdings:         DefaultHoldings(),
		Watchlist:        DefaultWatchlist(),
		Alerts:           DefaultAlerts(),
		News:             DefaultNews(),
		Portfolios:       DefaultPortfolios(),
		CurrentPortfolio: DefaultCurrentPortfolio,
		Settings:         DefaultSettings(),
		UserProfile:      DefaultUserProfile(now),
	}
}

// UserID returns the user whose data this state holds
func (s *AppState) UserID() int64 {
	return s.userID
}

// Snapshot returns a deep copy of the current state
func (s *AppState) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

// Read runs fn with shared access. fn must not retain or modify d.
func (s *AppState) Read(fn func(d *Data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

// Update runs fn with exclusive access
func (s *AppState) Update(fn func(d *Data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// Holdings returns a copy of the holdings
func (s *AppState) Holdings() []domain.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Holding(nil), s.data.Holdings...)
}

// Alerts returns a copy of the alerts
func (s *AppState) Alerts() []domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Alert(nil), s.data.Alerts...)
}

// Portfolio returns the portfolio summary
func (s *AppState) Portfolio() domain.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Portfolio
}

// AddNotification prepends n, trimming history to MaxNotifications
func (s *AppState) AddNotification(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Notifications = append([]domain.Notification{n}, s.data.Notifications...)
	if len(s.data.Notifications) > MaxNotifications {
		s.data.Notifications = s.data.Notifications[:MaxNotifications]
	}
}

// Notifications returns the notification history, newest first
func (s *AppState) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification(nil), s.data.Notifications...)
}

func (d Data) clone() Data {
	out := d
	out.Holdings = append([]domain.Holding(nil), d.Holdings...)
	out.Watchlist = append([]domain.WatchlistItem(nil), d.Watchlist...)
	out.Alerts = append([]domain.Alert(nil), d.Alerts...)
	out.News = append([]domain.NewsItem(nil), d.News...)
	out.Portfolios = append([]domain.PortfolioContainer(nil), d.Portfolios...)
	out.Notifications = append([]domain.Notification(nil), d.Notifications...)
	return out
}

// FindHolding returns the index of the holding with id, or -1
func (d *Data) FindHolding(id int64) int {
	for i, h := range d.Holdings {
		if h.ID != nil && *h.ID == id {
			return i
		}
	}
	return -1
}

// FindAlert returns the index of the alert with id, or -1
func (d *Data) FindAlert(id int64) int {
	for i, a := range d.Alerts {
		if a.ID != nil && *a.ID == id {
			return i
		}
	}
	return -1
}

// FindWatchlistSymbol returns the index of the watchlist item for symbol, or -1
func (d *Data) FindWatchlistSymbol(symbol string) int {
	for i, w := range d.Watchlist {
		if w.Symbol == symbol {
			return i
		}
	}
	return -1
}

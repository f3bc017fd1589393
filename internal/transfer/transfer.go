// Package transfer exports the local store to a JSON document and imports it back.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/localstore"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/rs/zerolog"
)

// Version is written into every export
const Version = "1.0.0"

// Document is the export file layout. Absent (nil) collections are omitted;
// a stored empty collection is written as [] so an import restores it.
type Document struct {
	Version     string                 `json:"version"`
	ExportDate  time.Time              `json:"exportDate"`
	Portfolio   *domain.Portfolio      `json:"portfolio,omitempty"`
	Holdings    []domain.Holding       `json:"holdings,omitzero"`
	Watchlist   []domain.WatchlistItem `json:"watchlist,omitzero"`
	Alerts      []domain.Alert         `json:"alerts,omitzero"`
	News        []domain.NewsItem      `json:"news,omitzero"`
	Settings    *domain.Settings       `json:"settings,omitempty"`
	UserProfile *domain.UserProfile    `json:"userProfile,omitempty"`
}

// Store is the slice of the local store used for export and import
type Store interface {
	LoadPortfolio() (domain.Portfolio, error)
	LoadHoldings() ([]domain.Holding, error)
	LoadWatchlist() ([]domain.WatchlistItem, error)
	LoadAlerts() ([]domain.Alert, error)
	LoadNews() ([]domain.NewsItem, error)
	LoadSettings() (domain.Settings, error)
	LoadUserProfile() (domain.UserProfile, error)

	SavePortfolio(p domain.Portfolio) error
	SaveHoldings(h []domain.Holding) error
	SaveWatchlist(w []domain.WatchlistItem) error
	SaveAlerts(a []domain.Alert) error
	SaveNews(n []domain.NewsItem) error
	SaveSettings(v domain.Settings) error
	SaveUserProfile(v domain.UserProfile) error
}

// Reloader re-runs state reconciliation after an import
type Reloader interface {
	Reload(ctx context.Context) reconciler.Outcome
}

// Service implements export and import
type Service struct {
	store    Store
	reloader Reloader
	events   *events.Manager
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a transfer service. reloader and eventManager may be nil.
func NewService(store Store, reloader Reloader, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		reloader: reloader,
		events:   eventManager,
		log:      log.With().Str("component", "transfer").Logger(),
		now:      time.Now,
	}
}

// FileName returns the conventional export file name for t
func FileName(t time.Time) string {
	return fmt.Sprintf("stoxy_backup_%s.json", t.UTC().Format("2006-01-02"))
}

// Export builds a document from the local store
func (s *Service) Export() (*Document, error) {
	doc := &Document{Version: Version, ExportDate: s.now().UTC()}

	if p, err := s.store.LoadPortfolio(); err == nil {
		doc.Portfolio = &p
	} else if !errors.Is(err, localstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to export portfolio: %w", err)
	}

	var err error
	if doc.Holdings, err = optional(s.store.LoadHoldings); err != nil {
		return nil, fmt.Errorf("failed to export holdings: %w", err)
	}
	if doc.Watchlist, err = optional(s.store.LoadWatchlist); err != nil {
		return nil, fmt.Errorf("failed to export watchlist: %w", err)
	}
	if doc.Alerts, err = optional(s.store.LoadAlerts); err != nil {
		return nil, fmt.Errorf("failed to export alerts: %w", err)
	}
	if doc.News, err = optional(s.store.LoadNews); err != nil {
		return nil, fmt.Errorf("failed to export news: %w", err)
	}

	settings, err := s.store.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}
	doc.Settings = &settings

	profile, err := s.store.LoadUserProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to export user profile: %w", err)
	}
	doc.UserProfile = &profile

	s.log.Info().Int("holdings", len(doc.Holdings)).Int("alerts", len(doc.Alerts)).Msg("Data exported")
	if s.events != nil {
		s.events.Emit(events.DataExported, "transfer", map[string]interface{}{"holdings": len(doc.Holdings)})
	}
	return doc, nil
}

// WriteTo encodes the export as indented JSON
func (s *Service) WriteTo(w io.Writer) error {
	doc, err := s.Export()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Import writes every collection present in r to the local store, then
// reloads the app state. Malformed input writes nothing.
func (s *Service) Import(ctx context.Context, r io.Reader) ([]localstore.Key, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse import: %w", err)
	}

	var written []localstore.Key
	save := func(key localstore.Key, fn func() error) error {
		if err := fn(); err != nil {
			return fmt.Errorf("failed to import %s: %w", key, err)
		}
		written = append(written, key)
		return nil
	}

	steps := []struct {
		key     localstore.Key
		present bool
		fn      func() error
	}{
		{localstore.KeyPortfolio, doc.Portfolio != nil, func() error { return s.store.SavePortfolio(*doc.Portfolio) }},
		{localstore.KeyHoldings, doc.Holdings != nil, func() error { return s.store.SaveHoldings(doc.Holdings) }},
		{localstore.KeyWatchlist, doc.Watchlist != nil, func() error { return s.store.SaveWatchlist(doc.Watchlist) }},
		{localstore.KeyAlerts, doc.Alerts != nil, func() error { return s.store.SaveAlerts(doc.Alerts) }},
		{localstore.KeyNews, doc.News != nil, func() error { return s.store.SaveNews(doc.News) }},
		{localstore.KeySettings, doc.Settings != nil, func() error { return s.store.SaveSettings(*doc.Settings) }},
		{localstore.KeyUserProfile, doc.UserProfile != nil, func() error { return s.store.SaveUserProfile(*doc.UserProfile) }},
	}
	for _, step := range steps {
		if !step.present {
			continue
		}
		if err := save(step.key, step.fn); err != nil {
			return written, err
		}
	}

	s.log.Info().Int("keys", len(written)).Str("version", doc.Version).Msg("Data imported")
	if s.events != nil {
		keys := make([]interface{}, len(written))
		for i, k := range written {
			keys[i] = string(k)
		}
		s.events.Emit(events.DataImported, "transfer", map[string]interface{}{"keys": keys})
	}

	if s.reloader != nil {
		s.reloader.Reload(ctx)
	}
	return written, nil
}

// optional treats a missing key as an empty result
func optional[T any](load func() ([]T, error)) ([]T, error) {
	v, err := load()
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

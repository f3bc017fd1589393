// Package localstore is the dashboard's offline cache.
//
// Each key holds one encoded snapshot of a whole collection, scoped to a user.
// Writes replace the previous snapshot; nothing is merged.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a key has no stored snapshot
var ErrNotFound = errors.New("localstore: key not found")

// Collections is the set of snapshots written by a whole-state flush
type Collections struct {
	Portfolio domain.Portfolio
	Holdings  []domain.Holding
	Watchlist []domain.WatchlistItem
	Alerts    []domain.Alert
}

// Store persists snapshots in the localstore SQLite database
type Store struct {
	db     *sql.DB
	userID int64
	codec  Codec
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a store for userID writing with codec (JSON when nil)
func New(db *sql.DB, userID int64, codec Codec, log zerolog.Logger) *Store {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Store{
		db:     db,
		userID: userID,
		codec:  codec,
		log:    log.With().Str("component", "localstore").Logger(),
		now:    time.Now,
	}
}

// UserID returns the user this store is scoped to
func (s *Store) UserID() int64 {
	return s.userID
}

// Save encodes v under key and refreshes last_sync
func (s *Store) Save(key Key, v interface{}) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := s.put(tx, key, v); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// SaveAll writes the four core collections in one transaction
func (s *Store) SaveAll(c Collections) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := s.put(tx, KeyPortfolio, c.Portfolio); err != nil {
			return err
		}
		if err := s.put(tx, KeyHoldings, nonNil(c.Holdings)); err != nil {
			return err
		}
		if err := s.put(tx, KeyWatchlist, nonNil(c.Watchlist)); err != nil {
			return err
		}
		if err := s.put(tx, KeyAlerts, nonNil(c.Alerts)); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// Load decodes the snapshot under key into v
func (s *Store) Load(key Key, v interface{}) error {
	if !key.Valid() {
		return fmt.Errorf("invalid key: %s", key)
	}

	var codecName string
	var data []byte
	err := s.db.QueryRow(
		"SELECT codec, data FROM snapshots WHERE user_id = ? AND key = ?",
		s.userID, string(key),
	).Scan(&codecName, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	// Rows keep the codec they were written with, so switching codecs stays readable
	codec, err := CodecByName(codecName)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Has reports whether key holds a snapshot
func (s *Store) Has(key Key) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM snapshots WHERE user_id = ? AND key = ?",
		s.userID, string(key),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return n > 0, nil
}

// Delete removes the given keys
func (s *Store) Delete(keys ...Key) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.Exec(
				"DELETE FROM snapshots WHERE user_id = ? AND key = ?",
				s.userID, string(key),
			); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}
		return nil
	})
}

// ClearAll removes every snapshot of this user
func (s *Store) ClearAll() error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE user_id = ?", s.userID); err != nil {
		return fmt.Errorf("failed to clear local store: %w", err)
	}
	s.log.Info().Int64("user_id", s.userID).Msg("Local store cleared")
	return nil
}

// ClearPortfolio removes the portfolio summary and holdings
func (s *Store) ClearPortfolio() error {
	return s.Delete(KeyPortfolio, KeyHoldings)
}

// ClearAlerts removes the stored alerts
func (s *Store) ClearAlerts() error {
	return s.Delete(KeyAlerts)
}

// LastSync returns the time of the last successful save
func (s *Store) LastSync() (time.Time, bool, error) {
	var raw string
	if err := s.Load(KeyLastSync, &raw); err != nil {
		if errors.Is(err, ErrNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid last_sync %q: %w", raw, err)
	}
	return t, true, nil
}

// SizeKB reports how much space this user's snapshots take, in KiB
func (s *Store) SizeKB() (float64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		"SELECT SUM(LENGTH(data) + LENGTH(key)) FROM snapshots WHERE user_id = ?",
		s.userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute store size: %w", err)
	}
	return float64(total.Int64) / 1024, nil
}

// Typed accessors

// SavePortfolio stores the portfolio summary
func (s *Store) SavePortfolio(p domain.Portfolio) error { return s.Save(KeyPortfolio, p) }

// LoadPortfolio reads the portfolio summary
func (s *Store) LoadPortfolio() (domain.Portfolio, error) {
	var p domain.Portfolio
	err := s.Load(KeyPortfolio, &p)
	return p, err
}

// SaveHoldings stores the holdings list
func (s *Store) SaveHoldings(h []domain.Holding) error { return s.Save(KeyHoldings, nonNil(h)) }

// LoadHoldings reads the holdings list
func (s *Store) LoadHoldings() ([]domain.Holding, error) {
	var h []domain.Holding
	err := s.Load(KeyHoldings, &h)
	return h, err
}

// SaveWatchlist stores the watchlist
func (s *Store) SaveWatchlist(w []domain.WatchlistItem) error {
	return s.Save(KeyWatchlist, nonNil(w))
}

// LoadWatchlist reads the watchlist
func (s *Store) LoadWatchlist() ([]domain.WatchlistItem, error) {
	var w []domain.WatchlistItem
	err := s.Load(KeyWatchlist, &w)
	return w, err
}

// SaveAlerts stores the alerts
func (s *Store) SaveAlerts(a []domain.Alert) error { return s.Save(KeyAlerts, nonNil(a)) }

// LoadAlerts reads the alerts
func (s *Store) LoadAlerts() ([]domain.Alert, error) {
	var a []domain.Alert
	err := s.Load(KeyAlerts, &a)
	return a, err
}

// SaveNews stores the news list
func (s *Store) SaveNews(n []domain.NewsItem) error { return s.Save(KeyNews, nonNil(n)) }

// LoadNews reads the news list
func (s *Store) LoadNews() ([]domain.NewsItem, error) {
	var n []domain.NewsItem
	err := s.Load(KeyNews, &n)
	return n, err
}

// SavePortfolios stores the portfolio containers
func (s *Store) SavePortfolios(p []domain.PortfolioContainer) error {
	return s.Save(KeyPortfolios, nonNil(p))
}

// LoadPortfolios reads the portfolio containers
func (s *Store) LoadPortfolios() ([]domain.PortfolioContainer, error) {
	var p []domain.PortfolioContainer
	err := s.Load(KeyPortfolios, &p)
	return p, err
}

// SaveCurrentPortfolio stores the selected container id
func (s *Store) SaveCurrentPortfolio(id int64) error { return s.Save(KeyCurrentPortfolio, id) }

// LoadCurrentPortfolio reads the selected container id
func (s *Store) LoadCurrentPortfolio() (int64, error) {
	var id int64
	err := s.Load(KeyCurrentPortfolio, &id)
	return id, err
}

// SaveSettings stores the user settings
func (s *Store) SaveSettings(v domain.Settings) error { return s.Save(KeySettings, v) }

// LoadSettings reads the settings, falling back to the defaults when absent
func (s *Store) LoadSettings() (domain.Settings, error) {
	v := state.DefaultSettings()
	if err := s.Load(KeySettings, &v); err != nil && !errors.Is(err, ErrNotFound) {
		return state.DefaultSettings(), err
	}
	return v, nil
}

// SaveUserProfile stores the user profile
func (s *Store) SaveUserProfile(v domain.UserProfile) error { return s.Save(KeyUserProfile, v) }

// LoadUserProfile reads the profile, falling back to the default when absent
func (s *Store) LoadUserProfile() (domain.UserProfile, error) {
	v := state.DefaultUserProfile(s.now())
	if err := s.Load(KeyUserProfile, &v); err != nil && !errors.Is(err, ErrNotFound) {
		return state.DefaultUserProfile(s.now()), err
	}
	return v, nil
}

func (s *Store) put(tx *sql.Tx, key Key, v interface{}) error {
	if !key.Valid() {
		return fmt.Errorf("invalid key: %s", key)
	}

	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	_, err = tx.Exec(`
		INSERT INTO snapshots (user_id, key, codec, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
			codec = excluded.codec,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, s.userID, string(key), s.codec.Name(), data, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *Store) touch(tx *sql.Tx) error {
	return s.put(tx, KeyLastSync, s.now().UTC().Format(time.RFC3339Nano))
}

// nonNil keeps empty collections encoded as [] rather than null
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

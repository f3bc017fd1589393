package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SearchCacheTTL is how long a remote search response is reused
const SearchCacheTTL = 10 * time.Minute

// SearchCache stores remote search responses per normalized query.
// Uses INSERT OR REPLACE; readers pick between fresh and stale entries.
type SearchCache struct {
	db     *sql.DB
	userID int64
	now    func() time.Time
}

// NewSearchCache creates a search cache for userID
func NewSearchCache(db *sql.DB, userID int64) *SearchCache {
	return &SearchCache{db: db, userID: userID, now: time.Now}
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Store saves data for query with expiration = now + ttl
func (c *SearchCache) Store(query string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO search_cache (user_id, query, data, expires_at) VALUES (?, ?, ?, ?)",
		c.userID, normalizeQuery(query), string(jsonData), c.now().Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store search results: %w", err)
	}
	return nil
}

// GetIfFresh returns the cached response only if it has not expired.
// Returns nil, nil when the query is missing or stale.
func (c *SearchCache) GetIfFresh(query string) (json.RawMessage, error) {
	var data string
	err := c.db.QueryRow(
		"SELECT data FROM search_cache WHERE user_id = ? AND query = ? AND expires_at > ?",
		c.userID, normalizeQuery(query), c.now().Unix(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search cache: %w", err)
	}
	return json.RawMessage(data), nil
}

// Get returns the cached response regardless of expiration.
// Stale results beat the static fallback when the backend is down.
func (c *SearchCache) Get(query string) (json.RawMessage, error) {
	var data string
	err := c.db.QueryRow(
		"SELECT data FROM search_cache WHERE user_id = ? AND query = ?",
		c.userID, normalizeQuery(query),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search cache: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteExpired removes expired entries for every user and returns the count
func (c *SearchCache) DeleteExpired() (int64, error) {
	result, err := c.db.Exec("DELETE FROM search_cache WHERE expires_at <= ?", c.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired search results: %w", err)
	}
	return result.RowsAffected()
}

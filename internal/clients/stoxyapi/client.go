// Package stoxyapi is the dashboard's gateway to the Stoxy REST backend.
//
// Every method returns a Result instead of an error. On transport failure,
// a non-2xx status or an undecodable body, the Result carries the method's
// fallback value so the dashboard keeps rendering while offline.
package stoxyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// UserIDHeader carries the explicit user id on every request
const UserIDHeader = "X-User-ID"

const searchCacheTTL = 10 * time.Minute

// SearchCache persists search responses between runs (optional)
type SearchCache interface {
	Store(query string, data interface{}, ttl time.Duration) error
	GetIfFresh(query string) (json.RawMessage, error)
	Get(query string) (json.RawMessage, error)
}

// Client is the Stoxy API gateway
type Client struct {
	baseURL    string
	userID     int64
	httpClient *http.Client
	cache      SearchCache
	log        zerolog.Logger
	now        func() time.Time
}

// NewClient creates a gateway for userID against baseURL.
// cache is optional - if nil, search results are not cached.
func NewClient(baseURL string, userID int64, timeout time.Duration, cache SearchCache, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
		log:   log.With().Str("component", "stoxyapi").Logger(),
		now:   time.Now,
	}
}

// UserID returns the user this gateway acts for
func (c *Client) UserID() int64 {
	return c.userID
}

// doRequest performs one call and decodes a 2xx JSON body into out
func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(UserIDHeader, strconv.FormatInt(c.userID, 10))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// call runs one request and resolves failures to fb()
func call[T any](ctx context.Context, c *Client, method, path string, body interface{}, fb func() T) Result[T] {
	var out T
	if err := c.doRequest(ctx, method, path, body, &out); err != nil {
		c.log.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("API call failed, using fallback")
		return fallback(fb(), err)
	}
	return success(out)
}

func empty[T any]() []T { return []T{} }

func none[T any]() *T { return nil }

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// Health

// Health checks the backend; the fallback status is "error"
func (c *Client) Health(ctx context.Context) Result[HealthStatus] {
	return call(ctx, c, http.MethodGet, "/health", nil, func() HealthStatus {
		return HealthStatus{Status: "error"}
	})
}

// Portfolio summary

// GetPortfolio returns the portfolio summary (fallback nil)
func (c *Client) GetPortfolio(ctx context.Context) Result[*PortfolioRecord] {
	return call(ctx, c, http.MethodGet, "/api/portfolio", nil, none[PortfolioRecord])
}

// UpdatePortfolio upserts the portfolio summary (fallback nil)
func (c *Client) UpdatePortfolio(ctx context.Context, in PortfolioUpdate) Result[*PortfolioRecord] {
	return call(ctx, c, http.MethodPut, "/api/portfolio", in, none[PortfolioRecord])
}

// Holdings

// GetHoldings lists holdings (fallback [])
func (c *Client) GetHoldings(ctx context.Context) Result[[]HoldingRecord] {
	return call(ctx, c, http.MethodGet, "/api/holdings", nil, empty[HoldingRecord])
}

// GetHolding fetches one holding (fallback nil)
func (c *Client) GetHolding(ctx context.Context, id int64) Result[*HoldingRecord] {
	return call(ctx, c, http.MethodGet, idPath("/api/holdings", id), nil, none[HoldingRecord])
}

// CreateHolding creates a holding (fallback nil)
func (c *Client) CreateHolding(ctx context.Context, in HoldingInput) Result[*HoldingRecord] {
	return call(ctx, c, http.MethodPost, "/api/holdings", in, none[HoldingRecord])
}

// UpdateHolding rewrites a holding's values (fallback nil)
func (c *Client) UpdateHolding(ctx context.Context, id int64, in HoldingUpdate) Result[*HoldingRecord] {
	return call(ctx, c, http.MethodPut, idPath("/api/holdings", id), in, none[HoldingRecord])
}

// DeleteHolding deletes a holding (fallback nil)
func (c *Client) DeleteHolding(ctx context.Context, id int64) Result[*MessageResponse] {
	return call(ctx, c, http.MethodDelete, idPath("/api/holdings", id), nil, none[MessageResponse])
}

// Watchlist

// GetWatchlist lists watchlist items (fallback [])
func (c *Client) GetWatchlist(ctx context.Context) Result[[]WatchlistRecord] {
	return call(ctx, c, http.MethodGet, "/api/watchlist", nil, empty[WatchlistRecord])
}

// AddToWatchlist adds a symbol (fallback nil)
func (c *Client) AddToWatchlist(ctx context.Context, in WatchlistInput) Result[*WatchlistRecord] {
	return call(ctx, c, http.MethodPost, "/api/watchlist", in, none[WatchlistRecord])
}

// RemoveFromWatchlist removes a watchlist item (fallback nil)
func (c *Client) RemoveFromWatchlist(ctx context.Context, id int64) Result[*MessageResponse] {
	return call(ctx, c, http.MethodDelete, idPath("/api/watchlist", id), nil, none[MessageResponse])
}

// Alerts

// GetAlerts lists alerts (fallback [])
func (c *Client) GetAlerts(ctx context.Context) Result[[]AlertRecord] {
	return call(ctx, c, http.MethodGet, "/api/alerts", nil, empty[AlertRecord])
}

// CreateAlert creates an alert (fallback nil)
func (c *Client) CreateAlert(ctx context.Context, in AlertInput) Result[*AlertRecord] {
	return call(ctx, c, http.MethodPost, "/api/alerts", in, none[AlertRecord])
}

// UpdateAlert sets an alert's flags (fallback nil)
func (c *Client) UpdateAlert(ctx context.Context, id int64, in AlertUpdate) Result[*AlertRecord] {
	return call(ctx, c, http.MethodPut, idPath("/api/alerts", id), in, none[AlertRecord])
}

// DeleteAlert deletes an alert (fallback nil)
func (c *Client) DeleteAlert(ctx context.Context, id int64) Result[*MessageResponse] {
	return call(ctx, c, http.MethodDelete, idPath("/api/alerts", id), nil, none[MessageResponse])
}

// Portfolio containers

// GetPortfolios lists named portfolios (fallback: one default container)
func (c *Client) GetPortfolios(ctx context.Context) Result[[]ContainerRecord] {
	return call(ctx, c, http.MethodGet, "/api/portfolios", nil, func() []ContainerRecord {
		return fallbackPortfolios(c.now())
	})
}

// CreatePortfolio creates a named portfolio (fallback: a locally built record)
func (c *Client) CreatePortfolio(ctx context.Context, in ContainerInput) Result[*ContainerRecord] {
	return call(ctx, c, http.MethodPost, "/api/portfolios", in, func() *ContainerRecord {
		return fallbackCreatedPortfolio(in, c.now())
	})
}

// DeletePortfolio deletes a named portfolio (fallback nil)
func (c *Client) DeletePortfolio(ctx context.Context, id int64) Result[*MessageResponse] {
	return call(ctx, c, http.MethodDelete, idPath("/api/portfolios", id), nil, none[MessageResponse])
}

// Market data

// Search finds symbols. Fresh cached responses are served without a request;
// on failure a stale cached response beats the static snapshot.
func (c *Client) Search(ctx context.Context, query string) Result[[]SearchResult] {
	if results, ok := c.cachedSearch(query, true); ok {
		c.log.Debug().Str("query", query).Msg("Search cache hit")
		return success(results)
	}

	path := "/api/search?q=" + url.QueryEscape(query)
	res := call(ctx, c, http.MethodGet, path, nil, func() []SearchResult {
		if stale, ok := c.cachedSearch(query, false); ok {
			c.log.Warn().Str("query", query).Msg("API failed, using stale search results")
			return stale
		}
		return FilterSearchSnapshot(query)
	})

	if !res.Failed() && c.cache != nil {
		if err := c.cache.Store(query, res.Data, searchCacheTTL); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache search results")
		}
	}
	return res
}

func (c *Client) cachedSearch(query string, fresh bool) ([]SearchResult, bool) {
	if c.cache == nil {
		return nil, false
	}

	var raw json.RawMessage
	var err error
	if fresh {
		raw, err = c.cache.GetIfFresh(query)
	} else {
		raw, err = c.cache.Get(query)
	}
	if err != nil || raw == nil {
		return nil, false
	}

	var results []SearchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

// GetMarketIndices returns index quotes (fallback: static snapshot)
func (c *Client) GetMarketIndices(ctx context.Context) Result[[]MarketIndex] {
	return call(ctx, c, http.MethodGet, "/api/market/indices", nil, IndicesSnapshot)
}

// GetTopMovers returns the day's movers (fallback: static snapshot)
func (c *Client) GetTopMovers(ctx context.Context) Result[[]Quote] {
	return call(ctx, c, http.MethodGet, "/api/market/movers", nil, MoversSnapshot)
}

// GetCryptoPrices returns crypto quotes (fallback: static snapshot)
func (c *Client) GetCryptoPrices(ctx context.Context) Result[[]Quote] {
	return call(ctx, c, http.MethodGet, "/api/crypto/prices", nil, CryptoPricesSnapshot)
}

// GetTopCryptos returns the top cryptocurrencies (fallback: static snapshot)
func (c *Client) GetTopCryptos(ctx context.Context) Result[[]Quote] {
	return call(ctx, c, http.MethodGet, "/api/crypto/top", nil, TopCryptosSnapshot)
}

// GetNews returns headlines (fallback: static snapshot)
func (c *Client) GetNews(ctx context.Context) Result[[]NewsRecord] {
	return call(ctx, c, http.MethodGet, "/api/news", nil, NewsSnapshot)
}

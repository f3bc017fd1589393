package dashboard

import (
	"strings"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/state"
)

// MinLocalQueryLength is the shortest query the local search answers
const MinLocalQueryLength = 2

// StateView is the JSON shape of the app state served to the UI
type StateView struct {
	UserID           int64                       `json:"userId"`
	Portfolio        domain.Portfolio            `json:"portfolio"`
	Holdings         []domain.Holding            `json:"holdings"`
	Watchlist        []domain.WatchlistItem      `json:"watchlist"`
	Alerts           []domain.Alert              `json:"alerts"`
	News             []domain.NewsItem           `json:"news"`
	Portfolios       []domain.PortfolioContainer `json:"portfolios"`
	CurrentPortfolio int64                       `json:"currentPortfolio"`
	Settings         domain.Settings             `json:"settings"`
	UserProfile      domain.UserProfile          `json:"userProfile"`
	Market           domain.MarketStatus         `json:"market"`
}

// NewStateView copies d into its wire shape
func NewStateView(userID int64, d state.Data) StateView {
	return StateView{
		UserID:           userID,
		Portfolio:        d.Portfolio,
		Holdings:         nonNil(d.Holdings),
		Watchlist:        nonNil(d.Watchlist),
		Alerts:           nonNil(d.Alerts),
		News:             nonNil(d.News),
		Portfolios:       nonNil(d.Portfolios),
		CurrentPortfolio: d.CurrentPortfolio,
		Settings:         d.Settings,
		UserProfile:      d.UserProfile,
		Market:           d.Market,
	}
}

// LocalMatch is a search hit from the user's own data
type LocalMatch struct {
	Symbol string        `json:"symbol"`
	Name   string        `json:"name"`
	Source string        `json:"source"` // "watchlist" or "holding"
	Price  domain.Number `json:"price"`
}

// SearchLocal matches query against watchlist and holdings symbols and names.
// Queries shorter than MinLocalQueryLength return nothing. A symbol found in
// both places is reported once, from the watchlist.
func SearchLocal(d state.Data, query string) []LocalMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []LocalMatch{}
	if len([]rune(q)) < MinLocalQueryLength {
		return out
	}

	matches := func(symbol, name string) bool {
		return strings.Contains(strings.ToLower(symbol), q) || strings.Contains(strings.ToLower(name), q)
	}

	seen := make(map[string]bool)
	for _, w := range d.Watchlist {
		if matches(w.Symbol, w.Name) && !seen[w.Symbol] {
			seen[w.Symbol] = true
			out = append(out, LocalMatch{Symbol: w.Symbol, Name: w.Name, Source: "watchlist", Price: w.Price})
		}
	}
	for _, h := range d.Holdings {
		if matches(h.Symbol, h.Name) && !seen[h.Symbol] {
			seen[h.Symbol] = true
			price := domain.NaN()
			if h.Quantity.Float() != 0 {
				price = domain.Number(h.Value.Float() / h.Quantity.Float())
			}
			out = append(out, LocalMatch{Symbol: h.Symbol, Name: h.Name, Source: "holding", Price: price})
		}
	}
	return out
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

package stoxyapi

import (
	"strings"
	"time"
)

// Static snapshots returned when the backend cannot answer

func fallbackPortfolios(now time.Time) []ContainerRecord {
	return []ContainerRecord{
		{ID: 1, Name: "Cartera Principal", Value: Dec(0), Currency: "EUR", CreatedAt: now.UTC().Format(time.RFC3339)},
	}
}

func fallbackCreatedPortfolio(in ContainerInput, now time.Time) *ContainerRecord {
	return &ContainerRecord{
		ID:          now.UnixMilli(),
		Name:        in.Name,
		Description: in.Description,
		Value:       Dec(0),
		Currency:    in.Currency,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
}

var searchSnapshot = []SearchResult{
	{Symbol: "AAPL", Name: "Apple Inc.", Type: "stock", Price: 178.45, Change: 2.34, Currency: "$"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Type: "stock", Price: 142.67, Change: -0.87, Currency: "$"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "stock", Price: 378.91, Change: 1.56, Currency: "$"},
}

// FilterSearchSnapshot matches query as a case-insensitive substring of symbol or name
func FilterSearchSnapshot(query string) []SearchResult {
	q := strings.ToLower(query)
	out := []SearchResult{}
	for _, r := range searchSnapshot {
		if strings.Contains(strings.ToLower(r.Symbol), q) || strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// IndicesSnapshot returns the illustrative index quotes
func IndicesSnapshot() []MarketIndex {
	return []MarketIndex{
		{Symbol: "S&P 500", Value: 4783.45, ChangePercent: 0.85},
		{Symbol: "NASDAQ", Value: 15011.35, ChangePercent: 1.24},
		{Symbol: "IBEX 35", Value: 10234.67, ChangePercent: -0.32},
		{Symbol: "DAX", Value: 16789.23, ChangePercent: 0.56},
	}
}

// MoversSnapshot returns the illustrative top movers
func MoversSnapshot() []Quote {
	return []Quote{
		{Symbol: "NVDA", Name: "NVIDIA", Price: 495.22, ChangePercent: 5.67},
		{Symbol: "TSLA", Name: "Tesla", Price: 248.50, ChangePercent: 3.45},
		{Symbol: "META", Name: "Meta Platforms", Price: 356.70, ChangePercent: 2.89},
		{Symbol: "AMD", Name: "AMD", Price: 147.30, ChangePercent: 2.34},
		{Symbol: "AMZN", Name: "Amazon", Price: 151.94, ChangePercent: 1.87},
		{Symbol: "GOOGL", Name: "Alphabet", Price: 139.25, ChangePercent: -1.23},
		{Symbol: "NFLX", Name: "Netflix", Price: 476.50, ChangePercent: -0.89},
		{Symbol: "DIS", Name: "Disney", Price: 89.45, ChangePercent: -2.15},
	}
}

// CryptoPricesSnapshot returns the illustrative crypto prices
func CryptoPricesSnapshot() []Quote {
	return []Quote{
		{Symbol: "BTC", Name: "Bitcoin", Price: 43567.89, ChangePercent: -0.54},
		{Symbol: "ETH", Name: "Ethereum", Price: 2289.45, ChangePercent: 2.12},
		{Symbol: "ADA", Name: "Cardano", Price: 0.58, ChangePercent: 3.45},
		{Symbol: "SOL", Name: "Solana", Price: 98.23, ChangePercent: 5.67},
	}
}

// TopCryptosSnapshot returns the illustrative top cryptocurrencies
func TopCryptosSnapshot() []Quote {
	return []Quote{
		{Symbol: "BTC", Name: "Bitcoin", Price: 43567.89, ChangePercent: -0.54},
		{Symbol: "ETH", Name: "Ethereum", Price: 2289.45, ChangePercent: 2.12},
		{Symbol: "BNB", Name: "Binance Coin", Price: 312.45, ChangePercent: 1.23},
		{Symbol: "XRP", Name: "Ripple", Price: 0.62, ChangePercent: 0.87},
		{Symbol: "ADA", Name: "Cardano", Price: 0.58, ChangePercent: 3.45},
		{Symbol: "SOL", Name: "Solana", Price: 98.23, ChangePercent: 5.67},
		{Symbol: "DOGE", Name: "Dogecoin", Price: 0.089, ChangePercent: -1.34},
		{Symbol: "DOT", Name: "Polkadot", Price: 7.45, ChangePercent: 2.56},
	}
}

// NewsSnapshot returns the illustrative headlines
func NewsSnapshot() []NewsRecord {
	return []NewsRecord{
		{ID: 1, Source: "Bloomberg", Title: "Los mercados alcanzan nuevos máximos históricos impulsados por el sector tecnológico", Time: "Hace 2 horas"},
		{ID: 2, Source: "CNBC", Title: "Bitcoin supera los $44,000 en medio de creciente interés institucional", Time: "Hace 4 horas"},
		{ID: 3, Source: "Wall Street Journal", Title: "Apple anuncia nuevos productos y servicios para 2024", Time: "Hace 6 horas"},
	}
}

package state

import (
	"time"

	"github.com/aristath/stoxy/internal/domain"
)

// Illustrative data shown until a real source is reconciled

// DefaultPortfolio returns the illustrative portfolio summary
func DefaultPortfolio() domain.Portfolio {
	return domain.Portfolio{
		TotalValue:       127458.32,
		TodayGain:        1842.67,
		TodayGainPercent: 1.47,
		Stocks:           89234.50,
		Crypto:           38223.82,
	}
}

// DefaultHoldings returns the five illustrative holdings
func DefaultHoldings() []domain.Holding {
	return []domain.Holding{
		{Symbol: "AAPL", Name: "Apple Inc.", Quantity: 150, Value: 26767.50, Change: 2.34, ChangePercent: 1.33, Type: domain.AssetStock},
		{Symbol: "TSLA", Name: "Tesla Inc.", Quantity: 75, Value: 18200.25, Change: -3.21, ChangePercent: -1.30, Type: domain.AssetStock},
		{Symbol: "MSFT", Name: "Microsoft", Quantity: 100, Value: 37489.00, Change: 5.67, ChangePercent: 1.54, Type: domain.AssetStock},
		{Symbol: "BTC", Name: "Bitcoin", Quantity: 0.5, Value: 21783.95, Change: -234.56, ChangePercent: -0.54, Type: domain.AssetCrypto},
		{Symbol: "ETH", Name: "Ethereum", Quantity: 8, Value: 16439.87, Change: 45.23, ChangePercent: 2.12, Type: domain.AssetCrypto},
	}
}

// DefaultWatchlist returns the illustrative watchlist
func DefaultWatchlist() []domain.WatchlistItem {
	return []domain.WatchlistItem{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 178.45, Change: 2.34, ChangePercent: 1.33},
		{Symbol: "TSLA", Name: "Tesla Inc.", Price: 242.67, Change: -3.21, ChangePercent: -1.30},
		{Symbol: "MSFT", Name: "Microsoft", Price: 374.89, Change: 5.67, ChangePercent: 1.54},
		{Symbol: "GOOGL", Name: "Alphabet", Price: 139.23, Change: 1.89, ChangePercent: 1.38},
		{Symbol: "BTC", Name: "Bitcoin", Price: 43567.89, Change: -234.56, ChangePercent: -0.54},
	}
}

// DefaultAlerts returns the three illustrative alerts
func DefaultAlerts() []domain.Alert {
	return []domain.Alert{
		{ID: domain.Int64Ptr(1), Symbol: "AAPL", Condition: domain.ConditionAbove, Value: 180, Active: true},
		{ID: domain.Int64Ptr(2), Symbol: "BTC", Condition: domain.ConditionBelow, Value: 40000, Active: true},
		{ID: domain.Int64Ptr(3), Symbol: "TSLA", Condition: domain.ConditionChange, Value: 5, Active: true},
	}
}

// DefaultNews returns the dashboard's illustrative headlines
func DefaultNews() []domain.NewsItem {
	return []domain.NewsItem{
		{ID: 1, Source: "Bloomberg", Title: "Los mercados alcanzan nuevos máximos históricos impulsados por el sector tecnológico", Time: "Hace 2 horas", Image: "news1"},
		{ID: 2, Source: "CNBC", Title: "Bitcoin supera los $44,000 en medio de creciente interés institucional", Time: "Hace 4 horas", Image: "news2"},
		{ID: 3, Source: "Wall Street Journal", Title: "Apple anuncia nuevos productos y servicios para 2024", Time: "Hace 6 horas", Image: "news3"},
		{ID: 4, Source: "Financial Times", Title: "La Fed mantiene las tasas de interés sin cambios", Time: "Hace 8 horas", Image: "news4"},
	}
}

// DefaultPortfolios returns the illustrative portfolio containers
func DefaultPortfolios() []domain.PortfolioContainer {
	return []domain.PortfolioContainer{
		{ID: 1, Name: "Cartera Principal", Value: 127458.32, Currency: "EUR"},
		{ID: 2, Name: "Inversiones Cripto", Value: 45230.15, Currency: "USD"},
		{ID: 3, Name: "Cartera Conservadora", Value: 89500.00, Currency: "EUR"},
	}
}

// DefaultCurrentPortfolio is the container selected on first start
const DefaultCurrentPortfolio int64 = 1

// DefaultSettings returns the preferences used when none are stored
func DefaultSettings() domain.Settings {
	return domain.Settings{
		Theme:    "dark",
		Currency: "EUR",
		Language: "es",
		Notifications: domain.NotificationSettings{
			Push:  true,
			Email: true,
			SMS:   false,
		},
		AutoRefresh:     true,
		RefreshInterval: 5000,
		ChartType:       "line",
		ShowMiniCharts:  true,
	}
}

// DefaultUserProfile returns the profile used when none is stored
func DefaultUserProfile(now time.Time) domain.UserProfile {
	return domain.UserProfile{
		Name:     "Francisco",
		Initials: "FG",
		Status:   "Inversor Pro",
		JoinDate: now.UTC().Format(time.RFC3339),
		Preferences: domain.ProfilePreferences{
			DefaultPage: "dashboard",
			CompactView: false,
		},
	}
}

package stoxyapi

import (
	"strings"

	"github.com/aristath/stoxy/internal/domain"
)

// Number returns the parsed value, or NaN when the key was absent
func (d Decimal) Number() domain.Number {
	if !d.Present {
		return domain.NaN()
	}
	return d.Value
}

// ToDomain converts the record. ok is false when total_value is missing,
// which is how an empty {} body from the backend reads.
func (r PortfolioRecord) ToDomain() (domain.Portfolio, bool) {
	if !r.TotalValue.Present {
		return domain.Portfolio{}, false
	}
	return domain.Portfolio{
		TotalValue:       r.TotalValue.Number(),
		TodayGain:        r.TodayGain.Number(),
		TodayGainPercent: r.TodayGainPercent.Number(),
		Stocks:           r.Stocks.Number(),
		Crypto:           r.Crypto.Number(),
	}, true
}

// ToDomain converts the record; ok is false when symbol, quantity or value is missing
func (r HoldingRecord) ToDomain() (domain.Holding, bool) {
	if r.Symbol == "" || !r.Quantity.Present || !r.Value.Present {
		return domain.Holding{}, false
	}
	return domain.Holding{
		ID:            r.ID,
		Symbol:        r.Symbol,
		Name:          r.Name,
		Quantity:      r.Quantity.Number(),
		Value:         r.Value.Number(),
		Change:        r.Change.Number(),
		ChangePercent: r.ChangePercent.Number(),
		PurchasePrice: r.PurchasePrice.Number(),
		PurchaseDate:  dateOnly(r.PurchaseDate),
		Type:          domain.AssetType(r.Type),
	}, true
}

// ToDomain converts the record; ok is false when symbol or price is missing
func (r WatchlistRecord) ToDomain() (domain.WatchlistItem, bool) {
	if r.Symbol == "" || !r.Price.Present {
		return domain.WatchlistItem{}, false
	}
	return domain.WatchlistItem{
		ID:            r.ID,
		Symbol:        r.Symbol,
		Name:          r.Name,
		Price:         r.Price.Number(),
		Change:        r.Change.Number(),
		ChangePercent: r.ChangePercent.Number(),
	}, true
}

// ToDomain converts the record; ok is false when symbol, condition or value is missing
func (r AlertRecord) ToDomain() (domain.Alert, bool) {
	if r.Symbol == "" || r.Condition == "" || !r.Value.Present {
		return domain.Alert{}, false
	}
	return domain.Alert{
		ID:        r.ID,
		Symbol:    r.Symbol,
		Condition: domain.AlertCondition(r.Condition),
		Value:     r.Value.Number(),
		Active:    r.Active == nil || *r.Active,
		Triggered: r.Triggered != nil && *r.Triggered,
	}, true
}

// ToDomain converts the record; ok is false when name is missing
func (r ContainerRecord) ToDomain() (domain.PortfolioContainer, bool) {
	if r.Name == "" {
		return domain.PortfolioContainer{}, false
	}
	value := r.Value.Number()
	if !r.Value.Present {
		value = 0
	}
	return domain.PortfolioContainer{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Value:       value,
		Currency:    r.Currency,
		CreatedAt:   r.CreatedAt,
	}, true
}

// ToDomain converts the headline
func (r NewsRecord) ToDomain() domain.NewsItem {
	return domain.NewsItem{ID: r.ID, Source: r.Source, Title: r.Title, Time: r.Time, Image: r.Image}
}

// dateOnly trims timestamps like 2024-01-15T00:00:00Z to the date part
func dateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i == 10 {
		return s[:i]
	}
	return s
}

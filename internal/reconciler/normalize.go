package reconciler

import (
	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/domain"
)

// A remote list is applied only as a whole: it must be non-empty and every
// element must carry its required keys. Anything else counts as absent.

// NormalizeHoldings converts wire holdings to domain holdings
func NormalizeHoldings(records []stoxyapi.HoldingRecord) ([]domain.Holding, bool) {
	return normalizeAll(records, stoxyapi.HoldingRecord.ToDomain)
}

// NormalizeWatchlist converts wire watchlist items
func NormalizeWatchlist(records []stoxyapi.WatchlistRecord) ([]domain.WatchlistItem, bool) {
	return normalizeAll(records, stoxyapi.WatchlistRecord.ToDomain)
}

// NormalizeAlerts converts wire alerts; unknown conditions make the list malformed
func NormalizeAlerts(records []stoxyapi.AlertRecord) ([]domain.Alert, bool) {
	alerts, ok := normalizeAll(records, stoxyapi.AlertRecord.ToDomain)
	if !ok {
		return nil, false
	}
	for _, a := range alerts {
		if !a.Condition.Valid() {
			return nil, false
		}
	}
	return alerts, true
}

// NormalizeContainers converts wire portfolio containers
func NormalizeContainers(records []stoxyapi.ContainerRecord) ([]domain.PortfolioContainer, bool) {
	return normalizeAll(records, stoxyapi.ContainerRecord.ToDomain)
}

func normalizeAll[R, D any](records []R, convert func(R) (D, bool)) ([]D, bool) {
	if len(records) == 0 {
		return nil, false
	}
	out := make([]D, 0, len(records))
	for _, rec := range records {
		d, ok := convert(rec)
		if !ok {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}

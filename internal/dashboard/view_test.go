package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/state"
)

func searchData() state.Data {
	return state.Data{
		Watchlist: []domain.WatchlistItem{
			{Symbol: "AAPL", Name: "Apple Inc.", Price: 180},
			{Symbol: "MSFT", Name: "Microsoft", Price: 410},
		},
		Holdings: []domain.Holding{
			{Symbol: "AAPL", Name: "AAPL Holdings", Quantity: 2, Value: 360},
			{Symbol: "BTC", Name: "Bitcoin", Quantity: 0.5, Value: 20000},
			{Symbol: "ZERO", Name: "Empty position", Quantity: 0, Value: 0},
		},
	}
}

func TestSearchLocal_ShortQueryReturnsNothing(t *testing.T) {
	assert.Empty(t, SearchLocal(searchData(), "a"))
	assert.Empty(t, SearchLocal(searchData(), "  "))
	assert.NotNil(t, SearchLocal(searchData(), ""))
}

func TestSearchLocal_WatchlistWinsOverHoldings(t *testing.T) {
	got := SearchLocal(searchData(), "aapl")
	require.Len(t, got, 1)
	assert.Equal(t, "watchlist", got[0].Source)
	assert.Equal(t, domain.Number(180), got[0].Price)
}

func TestSearchLocal_MatchesNamesCaseInsensitively(t *testing.T) {
	got := SearchLocal(searchData(), "BITCO")
	require.Len(t, got, 1)
	assert.Equal(t, "BTC", got[0].Symbol)
	assert.Equal(t, "holding", got[0].Source)
	assert.InDelta(t, 40000, got[0].Price.Float(), 0.001)
}

func TestSearchLocal_ZeroQuantityHasNoPrice(t *testing.T) {
	got := SearchLocal(searchData(), "zero")
	require.Len(t, got, 1)
	assert.True(t, got[0].Price.IsNaN())
}

func TestNewStateView_NeverNullCollections(t *testing.T) {
	v := NewStateView(7, state.Data{})
	assert.Equal(t, int64(7), v.UserID)
	assert.NotNil(t, v.Holdings)
	assert.NotNil(t, v.Watchlist)
	assert.NotNil(t, v.Alerts)
	assert.NotNil(t, v.News)
	assert.NotNil(t, v.Portfolios)
}

package mutation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway is a mock API gateway for testing
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) UpdatePortfolio(ctx context.Context, in stoxyapi.PortfolioUpdate) stoxyapi.Result[*stoxyapi.PortfolioRecord] {
	return m.Called(in).Get(0).(stoxyapi.Result[*stoxyapi.PortfolioRecord])
}

func (m *MockGateway) CreateHolding(ctx context.Context, in stoxyapi.HoldingInput) stoxyapi.Result[*stoxyapi.HoldingRecord] {
	return m.Called(in).Get(0).(stoxyapi.Result[*stoxyapi.HoldingRecord])
}

func (m *MockGateway) UpdateHolding(ctx context.Context, id int64, in stoxyapi.HoldingUpdate) stoxyapi.Result[*stoxyapi.HoldingRecord] {
	return m.Called(id, in).Get(0).(stoxyapi.Result[*stoxyapi.HoldingRecord])
}

func (m *MockGateway) DeleteHolding(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse] {
	return m.Called(id).Get(0).(stoxyapi.Result[*stoxyapi.MessageResponse])
}

func (m *MockGateway) AddToWatchlist(ctx context.Context, in stoxyapi.WatchlistInput) stoxyapi.Result[*stoxyapi.WatchlistRecord] {
	return m.Called(in).Get(0).(stoxyapi.Result[*stoxyapi.WatchlistRecord])
}

func (m *MockGateway) RemoveFromWatchlist(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse] {
	return m.Called(id).Get(0).(stoxyapi.Result[*stoxyapi.MessageResponse])
}

func (m *MockGateway) CreateAlert(ctx context.Context, in stoxyapi.AlertInput) stoxyapi.Result[*stoxyapi.AlertRecord] {
	return m.Called(in).Get(0).(stoxyapi.Result[*stoxyapi.AlertRecord])
}

func (m *MockGateway) UpdateAlert(ctx context.Context, id int64, in stoxyapi.AlertUpdate) stoxyapi.Result[*stoxyapi.AlertRecord] {
	return m.Called(id, in).Get(0).(stoxyapi.Result[*stoxyapi.AlertRecord])
}

func (m *MockGateway) DeleteAlert(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse] {
	return m.Called(id).Get(0).(stoxyapi.Result[*stoxyapi.MessageResponse])
}

func (m *MockGateway) CreatePortfolio(ctx context.Context, in stoxyapi.ContainerInput) stoxyapi.Result[*stoxyapi.ContainerRecord] {
	return m.Called(in).Get(0).(stoxyapi.Result[*stoxyapi.ContainerRecord])
}

func (m *MockGateway) DeletePortfolio(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse] {
	return m.Called(id).Get(0).(stoxyapi.Result[*stoxyapi.MessageResponse])
}

// MockNotifier records surfaced messages
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Error(title, message string) {
	m.Called(title, message)
}

func (m *MockNotifier) Info(kind domain.NotificationKind, title, message string) {
	m.Called(kind, title, message)
}

type memoryStore struct {
	portfolios []domain.PortfolioContainer
	current    int64
}

func (s *memoryStore) SavePortfolios(p []domain.PortfolioContainer) error {
	s.portfolios = p
	return nil
}

func (s *memoryStore) SaveCurrentPortfolio(id int64) error {
	s.current = id
	return nil
}

var errBackend = errors.New("backend unreachable")

func failedResult[T any](data T) stoxyapi.Result[T] {
	return stoxyapi.Result[T]{Data: data, Err: errBackend, Fallback: true}
}

func okResult[T any](data T) stoxyapi.Result[T] {
	return stoxyapi.Result[T]{Data: data}
}

func dec(v float64) stoxyapi.Decimal { return stoxyapi.Dec(v) }

func newPipeline(gateway *MockGateway, notifier *MockNotifier, appState *state.AppState, store PortfolioStore) *Pipeline {
	p := New(gateway, appState, store, notifier, nil, zerolog.Nop())
	p.random = func() float64 { return 0.5 }
	return p
}

func TestCreateHolding_FailureLeavesStateUnchanged(t *testing.T) {
	gateway := new(MockGateway)
	notifier := new(MockNotifier)
	appState := state.New(1)
	before := appState.Holdings()

	gateway.On("CreateHolding", mock.Anything).Return(failedResult[*stoxyapi.HoldingRecord](nil))
	notifier.On("Error", "Could not save the position. Try again.", mock.Anything).Once()

	_, err := newPipeline(gateway, notifier, appState, nil).CreateHolding(context.Background(), HoldingRequest{
		Symbol: "nvda", Type: domain.AssetStock, Quantity: 3, Price: 495.22, Date: "2024-01-15",
	})

	require.ErrorIs(t, err, ErrRemoteWrite)
	assert.Equal(t, before, appState.Holdings())
	gateway.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateHolding_NullResponseIsFailure(t *testing.T) {
	gateway := new(MockGateway)
	notifier := new(MockNotifier)
	appState := state.New(1)

	gateway.On("CreateHolding", mock.Anything).Return(okResult[*stoxyapi.HoldingRecord](nil))
	notifier.On("Error", mock.Anything, mock.Anything)

	_, err := newPipeline(gateway, notifier, appState, nil).CreateHolding(context.Background(), HoldingRequest{
		Symbol: "NVDA", Quantity: 3, Price: 495.22,
	})

	assert.ErrorIs(t, err, ErrRemoteWrite)
	assert.Len(t, appState.Holdings(), 5)
}

func TestCreateHolding_SuccessAppendsCanonicalHolding(t *testing.T) {
	gateway := new(MockGateway)
	notifier := new(MockNotifier)
	appState := state.New(1)

	gateway.On("CreateHolding", mock.MatchedBy(func(in stoxyapi.HoldingInput) bool {
		return in.Symbol == "NVDA" &&
			in.Name == "NVDA Holdings" &&
			in.Quantity == 3 &&
			math.Abs(in.Value-1485.66) < 1e-9 &&
			in.Change == 0 &&
			in.ChangePercent == 0 &&
			in.PurchasePrice == 495.22 &&
			in.PurchaseDate == "2024-01-15" &&
			in.Type == "stock"
	})).Return(okResult(&stoxyapi.HoldingRecord{
		ID: domain.Int64Ptr(11), Symbol: "NVDA", Name: "NVDA Holdings",
		Quantity: dec(3), Value: dec(1485.66), Change: dec(0), ChangePercent: dec(0),
		PurchasePrice: dec(495.22), PurchaseDate: "2024-01-15T00:00:00Z", Type: "stock",
	}))
	notifier.On("Info", domain.NotificationPositionAdded, "Position added", "NVDA: 3 units added to your portfolio").Once()

	holding, err := newPipeline(gateway, notifier, appState, nil).CreateHolding(context.Background(), HoldingRequest{
		Symbol: " nvda ", Type: domain.AssetStock, Quantity: 3, Price: 495.22, Date: "2024-01-15",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), *holding.ID)
	assert.Equal(t, "2024-01-15", holding.PurchaseDate)

	holdings := appState.Holdings()
	require.Len(t, holdings, 6)
	assert.Equal(t, holding, holdings[5])
	gateway.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateHolding_RejectsInvalidInputWithoutCalling(t *testing.T) {
	gateway := new(MockGateway)
	notifier := new(MockNotifier)
	notifier.On("Error", "Invalid position", mock.Anything)

	_, err := newPipeline(gateway, notifier, state.New(1), nil).CreateHolding(context.Background(), HoldingRequest{Symbol: "AAPL", Quantity: 0, Price: 10})

	assert.ErrorIs(t, err, ErrInvalidInput)
	gateway.AssertNotCalled(t, "CreateHolding", mock.Anything)
}

func TestDeleteHolding(t *testing.T) {
	gateway := new(MockGateway)
	notifier := new(MockNotifier)
	appState := state.New(1)
	appState.Update(func(d *state.Data) {
		d.Holdings = []domain.Holding{{ID: domain.Int64Ptr(1), Symbol: "AAPL"}, {ID: domain.Int64Ptr(2), Symbol: "MSFT"}}
	})
	p := newPipeline(gateway, notifier, appState, nil)

	gateway.On("DeleteHolding", int64(1)).Return(failedResult[*stoxyapi.MessageResponse](nil)).Once()
	notifier.On("Error", mock.Anything, mock.Anything)
	require.Error(t, p.DeleteHolding(context.Background(), 1))
	assert.Len(t, appState.Holdings(), 2)

	gateway.On("DeleteHolding", int64(1)).Return(okResult(&stoxyapi.MessageResponse{Message: "Holding deleted"})).Once()
	require.NoError(t, p.DeleteHolding(context.Background(), 1))

	holdings := appState.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, "MSFT", holdings[0].Symbol)
}

func TestUpdateHolding_ReplacesInPlace(t *testing.T) {
	gateway := new(MockGateway)
	appState := state.New(1)
	appState.Update(func(d *state.Data) {
		d.Holdings = []domain.Holding{{ID: domain.Int64Ptr(4), Symbol: "AAPL", Quantity: 1, Value: 100}}
	})

	in := stoxyapi.HoldingUpdate{Quantity: 2, Value: 360, Change: 1, ChangePercent: 0.5}
	gateway.On("UpdateHolding", int64(4), in).Return(okResult(&stoxyapi.HoldingRecord{
		ID: domain.Int64Ptr(4), Symbol: "AAPL", Quantity: dec(2), Value: dec(360), Change: dec(1), ChangePercent: dec(0.5),
	}))

	_, err := newPipeline(gateway, new(MockNotifier), appState, nil).UpdateHolding(context.Background(), 4, in)
	require.NoError(t, err)

	holdings := appState.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, domain.Number(360), holdings[0].Value)
}

func TestCreateAlert(t *testing.T) {
	gateway := new(MockGateway)
	notifier := new(MockNotifier)
	appState := state.New(1)

	gateway.On("CreateAlert", mock.MatchedBy(func(in stoxyapi.AlertInput) bool {
		return in.Symbol == "ETH" && in.Condition == "below" && in.Active != nil && *in.Active
	})).Return(okResult(&stoxyapi.AlertRecord{ID: domain.Int64Ptr(8), Symbol: "ETH", Condition: "below", Value: dec(2000)}))

	alert, err := newPipeline(gateway, notifier, appState, nil).CreateAlert(context.Background(), AlertRequest{
		Symbol: "eth", Condition: domain.ConditionBelow, Value: 2000,
	})

	require.NoError(t, err)
	assert.True(t, alert.Active)
	assert.Len(t, appState.Alerts(), 4)
}

func TestCreateAlert_InvalidCondition(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Error", mock.Anything, mock.Anything)

	_, err := newPipeline(new(MockGateway), notifier, state.New(1), nil).CreateAlert(context.Background(), AlertRequest{
		Symbol: "ETH", Condition: "sideways", Value: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetAlertActive_KeepsTriggeredFlag(t *testing.T) {
	gateway := new(MockGateway)
	appState := state.New(1)
	appState.Update(func(d *state.Data) { d.Alerts[0].Triggered = true })

	gateway.On("UpdateAlert", int64(1), stoxyapi.AlertUpdate{Active: false, Triggered: true}).Return(okResult(&stoxyapi.AlertRecord{
		ID: domain.Int64Ptr(1), Symbol: "AAPL", Condition: "above", Value: dec(180),
		Active: boolPtr(false), Triggered: boolPtr(true),
	}))

	alert, err := newPipeline(gateway, new(MockNotifier), appState, nil).SetAlertActive(context.Background(), 1, false)
	require.NoError(t, err)
	assert.False(t, alert.Active)
	assert.True(t, appState.Alerts()[0].Triggered)
	gateway.AssertExpectations(t)
}

func TestSetAlertActive_UnknownAlert(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Error", "Alert not found", mock.Anything)

	_, err := newPipeline(new(MockGateway), notifier, state.New(1), nil).SetAlertActive(context.Background(), 99, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAlert(t *testing.T) {
	gateway := new(MockGateway)
	appState := state.New(1)
	gateway.On("DeleteAlert", int64(2)).Return(okResult(&stoxyapi.MessageResponse{Message: "Alert deleted"}))

	require.NoError(t, newPipeline(gateway, new(MockNotifier), appState, nil).DeleteAlert(context.Background(), 2))

	snap := appState.Snapshot()
	assert.Len(t, snap.Alerts, 2)
	assert.Equal(t, -1, snap.FindAlert(2))
}

func TestCreatePortfolio_MockFallbackIsFailure(t *testing.T) {
	gateway := new(MockGateway)
	notifier := new(MockNotifier)
	appState := state.New(1)
	store := &memoryStore{}

	gateway.On("CreatePortfolio", mock.Anything).Return(failedResult(&stoxyapi.ContainerRecord{ID: 1700000000000, Name: "Dividendos", Value: dec(0)}))
	notifier.On("Error", "Could not create the portfolio.", mock.Anything)

	_, err := newPipeline(gateway, notifier, appState, store).CreatePortfolio(context.Background(), stoxyapi.ContainerInput{Name: "Dividendos"})

	assert.ErrorIs(t, err, ErrRemoteWrite)
	assert.Len(t, appState.Snapshot().Portfolios, 3)
	assert.Nil(t, store.portfolios)
}

func TestCreatePortfolio_SelectsAndPersists(t *testing.T) {
	gateway := new(MockGateway)
	appState := state.New(1)
	store := &memoryStore{}

	gateway.On("CreatePortfolio", stoxyapi.ContainerInput{Name: "Dividendos", Currency: "EUR"}).
		Return(okResult(&stoxyapi.ContainerRecord{ID: 12, Name: "Dividendos", Value: dec(0), Currency: "EUR"}))

	_, err := newPipeline(gateway, new(MockNotifier), appState, store).CreatePortfolio(context.Background(), stoxyapi.ContainerInput{Name: "Dividendos"})
	require.NoError(t, err)

	snap := appState.Snapshot()
	assert.Len(t, snap.Portfolios, 4)
	assert.Equal(t, int64(12), snap.CurrentPortfolio)
	assert.Len(t, store.portfolios, 4)
	assert.Equal(t, int64(12), store.current)
}

func TestDeletePortfolio_MovesSelection(t *testing.T) {
	gateway := new(MockGateway)
	appState := state.New(1)
	store := &memoryStore{}
	gateway.On("DeletePortfolio", int64(1)).Return(okResult(&stoxyapi.MessageResponse{Message: "Portfolio deleted"}))

	require.NoError(t, newPipeline(gateway, new(MockNotifier), appState, store).DeletePortfolio(context.Background(), 1))

	snap := appState.Snapshot()
	assert.Len(t, snap.Portfolios, 2)
	assert.Equal(t, int64(2), snap.CurrentPortfolio)
	assert.Equal(t, int64(2), store.current)
}

func TestSelectPortfolio(t *testing.T) {
	appState := state.New(1)
	store := &memoryStore{}
	p := newPipeline(new(MockGateway), new(MockNotifier), appState, store)

	require.NoError(t, p.SelectPortfolio(3))
	assert.Equal(t, int64(3), appState.Snapshot().CurrentPortfolio)
	assert.Equal(t, int64(3), store.current)

	assert.ErrorIs(t, p.SelectPortfolio(42), ErrNotFound)
	assert.Equal(t, int64(3), appState.Snapshot().CurrentPortfolio)
}

func TestUpdatePortfolio(t *testing.T) {
	gateway := new(MockGateway)
	appState := state.New(1)

	gateway.On("UpdatePortfolio", stoxyapi.PortfolioUpdate{TotalValue: 1000, Stocks: 600, Crypto: 400}).
		Return(okResult(&stoxyapi.PortfolioRecord{TotalValue: dec(1000), TodayGain: dec(0), TodayGainPercent: dec(0), Stocks: dec(600), Crypto: dec(400)}))

	_, err := newPipeline(gateway, new(MockNotifier), appState, nil).UpdatePortfolio(context.Background(), domain.Portfolio{TotalValue: 1000, Stocks: 600, Crypto: 400})
	require.NoError(t, err)
	assert.Equal(t, domain.Number(1000), appState.Portfolio().TotalValue)
}

func TestWatchlistAddAndRemove(t *testing.T) {
	gateway := new(MockGateway)
	appState := state.New(1)
	p := newPipeline(gateway, new(MockNotifier), appState, nil)

	gateway.On("AddToWatchlist", stoxyapi.WatchlistInput{Symbol: "AMZN", Name: "Amazon", Price: 151.94}).
		Return(okResult(&stoxyapi.WatchlistRecord{ID: domain.Int64Ptr(6), Symbol: "AMZN", Name: "Amazon", Price: dec(151.94), Change: dec(0), ChangePercent: dec(0)}))
	gateway.On("RemoveFromWatchlist", int64(6)).Return(okResult(&stoxyapi.MessageResponse{Message: "Removed from watchlist"}))

	_, err := p.AddToWatchlist(context.Background(), stoxyapi.WatchlistInput{Symbol: "amzn", Name: "Amazon", Price: 151.94})
	require.NoError(t, err)
	assert.Len(t, appState.Snapshot().Watchlist, 6)

	require.NoError(t, p.RemoveFromWatchlist(context.Background(), 6))
	assert.Len(t, appState.Snapshot().Watchlist, 5)
}

func boolPtr(b bool) *bool { return &b }

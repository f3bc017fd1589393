package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/modules/holdings"
	"github.com/aristath/stoxy/internal/modules/portfolio"
	testingpkg "github.com/aristath/stoxy/internal/testing"
)

const export = `Id,Portfolio,Symbol,Name,Transaction,Quantity,Price,Timestamp
1,Francisco,AAPL,Apple Inc.,BUY,10,150,2023-05-01T10:00:00Z
2,Francisco,AAPL,Apple Inc.,BUY,10,170,2023-06-01T10:00:00Z
3,Francisco,AAPL,Apple Inc.,SELL,5,190,2023-07-01T10:00:00Z
,,,,,,,
4,Jaime,BTC-EUR,Bitcoin,BUY,0.5,40000,2023-01-15 09:30:00
5,Jaime,TSLA,Tesla,BUY,3,200,2023-02-01
6,Jaime,TSLA,Tesla,SELL,3,250,2023-03-01
7,Nobody,MSFT,Microsoft,BUY,1,300,2023-01-01
8,Adela,ETH,Ethereum,BUY,2,bad-price,not-a-date
`

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseCSV(t *testing.T) {
	txs, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, txs, 8)

	assert.Equal(t, "Francisco", txs[0].Portfolio)
	assert.Equal(t, Buy, txs[0].Kind)
	assert.True(t, d("10").Equal(txs[0].Quantity))
	assert.True(t, txs[7].Price.IsZero(), "unparseable price counts as zero")
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Id,Portfolio,Symbol\n1,Francisco,AAPL\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}

func TestConsolidate(t *testing.T) {
	txs, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)

	positions := Consolidate(txs, DefaultUsers)
	require.Len(t, positions, 4, "unmapped portfolios are ignored")

	apple := positions[0]
	assert.Equal(t, int64(1), apple.UserID)
	assert.True(t, d("15").Equal(apple.Quantity))
	assert.True(t, d("3200").Equal(apple.TotalCost), "sells do not reduce cost")
	assert.True(t, d("3200").Div(d("15")).Equal(apple.PurchasePrice()))

	tesla := positions[2]
	assert.False(t, tesla.Open())
}

func TestPosition_Holding(t *testing.T) {
	p := Position{
		Symbol:    "BTC-EUR",
		Name:      "Bitcoin",
		Quantity:  d("0.5"),
		TotalCost: d("20000"),
		FirstSeen: "2023-01-15 09:30:00",
	}

	h := p.Holding()

	assert.Equal(t, "crypto", h.Type)
	assert.Equal(t, "2023-01-15", h.PurchaseDate)
	assert.True(t, d("40000").Equal(*h.PurchasePrice))
	assert.True(t, d("20000").Equal(h.Value))
	assert.True(t, h.Change.IsZero())
}

func TestAssetType(t *testing.T) {
	assert.Equal(t, domain.AssetCrypto, AssetType("btc"))
	assert.Equal(t, domain.AssetCrypto, AssetType("WETH"))
	assert.Equal(t, domain.AssetCrypto, AssetType("USDT"))
	assert.Equal(t, domain.AssetStock, AssetType("AAPL"))
}

func TestPurchaseDate(t *testing.T) {
	assert.Equal(t, "2023-05-01", purchaseDate("2023-05-01T10:00:00Z"))
	assert.Equal(t, "2023-05-01", purchaseDate("2023-05-01"))
	assert.Equal(t, "", purchaseDate("yesterday"))
}

func TestSeeder_Run(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "stoxy")
	defer cleanup()
	ctx := context.Background()

	holdingsRepo := holdings.NewRepository(db, zerolog.Nop())
	portfolioRepo := portfolio.NewRepository(db, zerolog.Nop())

	// stale holding that must be replaced
	_, err := holdingsRepo.Create(ctx, 1, holdings.Input{Symbol: "OLD", Name: "Old", Quantity: d("1"), Value: d("1")})
	require.NoError(t, err)
	// existing daily gain survives the recompute
	_, err = portfolioRepo.UpsertSummary(ctx, 2, portfolio.SummaryInput{TodayGain: d("12.5")})
	require.NoError(t, err)

	txs, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)

	report, err := NewSeeder(holdingsRepo, portfolioRepo, nil, zerolog.Nop()).Run(ctx, txs)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.Removed)
	assert.Equal(t, 3, report.Inserted, "AAPL, BTC-EUR and the zero-cost ETH")
	assert.Equal(t, 1, report.Skipped, "TSLA was sold out")

	francisco, err := holdingsRepo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, francisco, 1)
	assert.Equal(t, "AAPL", francisco[0].Symbol)

	summary, err := portfolioRepo.GetSummary(ctx, 2)
	require.NoError(t, err)
	assert.True(t, d("20000").Equal(summary.TotalValue))
	assert.True(t, d("20000").Equal(summary.Crypto))
	assert.True(t, summary.Stocks.IsZero())
	assert.True(t, d("12.5").Equal(summary.TodayGain))

	adela, err := portfolioRepo.GetSummary(ctx, 3)
	require.NoError(t, err, "summary is created for every mapped user")
	assert.True(t, adela.TotalValue.IsZero())
}

func TestSumHoldings(t *testing.T) {
	stock, crypto := "stock", "crypto"
	totals := SumHoldings([]holdings.Holding{
		{Value: d("100"), Type: &stock},
		{Value: d("50.25"), Type: &crypto},
		{Value: d("10")},
	})

	assert.True(t, d("160.25").Equal(totals.Total))
	assert.True(t, d("100").Equal(totals.Stocks))
	assert.True(t, d("50.25").Equal(totals.Crypto))
}

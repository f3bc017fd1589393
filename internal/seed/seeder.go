package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/holdings"
	"github.com/aristath/stoxy/internal/modules/portfolio"
)

// Totals is a user's recomputed portfolio split
type Totals struct {
	Total  decimal.Decimal
	Stocks decimal.Decimal
	Crypto decimal.Decimal
}

// Report summarizes one seeding run
type Report struct {
	Removed  int64
	Inserted int
	Skipped  int
	Totals   map[int64]Totals
}

// Seeder replaces the holdings of the mapped users with consolidated positions
type Seeder struct {
	holdings  *holdings.Repository
	portfolio *portfolio.Repository
	users     map[string]int64
	log       zerolog.Logger
}

// NewSeeder creates a seeder. A nil users map means DefaultUsers.
func NewSeeder(h *holdings.Repository, p *portfolio.Repository, users map[string]int64, log zerolog.Logger) *Seeder {
	if users == nil {
		users = DefaultUsers
	}
	return &Seeder{
		holdings:  h,
		portfolio: p,
		users:     users,
		log:       log.With().Str("component", "seed").Logger(),
	}
}

// Run seeds txs. Summaries are created for users that have none, existing
// holdings of every mapped user are removed, open positions are inserted and
// the totals are recomputed. Daily gain fields of existing summaries are kept.
func (s *Seeder) Run(ctx context.Context, txs []Transaction) (*Report, error) {
	userIDs := s.userIDs()
	for _, userID := range userIDs {
		if err := s.ensureSummary(ctx, userID); err != nil {
			return nil, err
		}
	}

	report := &Report{Totals: make(map[int64]Totals, len(userIDs))}
	for _, userID := range userIDs {
		n, err := s.holdings.DeleteForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		report.Removed += n
	}
	s.log.Info().Int64("removed", report.Removed).Msg("Cleared existing holdings")

	for _, pos := range Consolidate(txs, s.users) {
		if !pos.Open() {
			report.Skipped++
			continue
		}
		in := pos.Holding()
		if _, err := s.holdings.Create(ctx, pos.UserID, in); err != nil {
			s.log.Error().Err(err).Str("symbol", pos.Symbol).Int64("user_id", pos.UserID).Msg("Failed to insert holding")
			continue
		}
		report.Inserted++
		s.log.Debug().
			Int64("user_id", pos.UserID).
			Str("symbol", pos.Symbol).
			Str("quantity", pos.Quantity.StringFixed(2)).
			Str("purchase_price", in.PurchasePrice.StringFixed(2)).
			Msg("Inserted holding")
	}

	for _, userID := range userIDs {
		totals, err := s.recompute(ctx, userID)
		if err != nil {
			return nil, err
		}
		report.Totals[userID] = totals
		s.log.Info().
			Int64("user_id", userID).
			Str("total", totals.Total.StringFixed(2)).
			Str("stocks", totals.Stocks.StringFixed(2)).
			Str("crypto", totals.Crypto.StringFixed(2)).
			Msg("Recomputed portfolio totals")
	}

	return report, nil
}

func (s *Seeder) userIDs() []int64 {
	ids := make([]int64, 0, len(s.users))
	for _, id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Seeder) ensureSummary(ctx context.Context, userID int64) error {
	_, err := s.portfolio.GetSummary(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, modules.ErrNotFound) {
		return err
	}
	if _, err := s.portfolio.UpsertSummary(ctx, userID, portfolio.SummaryInput{}); err != nil {
		return fmt.Errorf("failed to create portfolio for user %d: %w", userID, err)
	}
	return nil
}

func (s *Seeder) recompute(ctx context.Context, userID int64) (Totals, error) {
	items, err := s.holdings.List(ctx, userID)
	if err != nil {
		return Totals{}, err
	}

	totals := SumHoldings(items)

	current, err := s.portfolio.GetSummary(ctx, userID)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to read portfolio for user %d: %w", userID, err)
	}
	_, err = s.portfolio.UpsertSummary(ctx, userID, portfolio.SummaryInput{
		TotalValue:       totals.Total,
		TodayGain:        current.TodayGain,
		TodayGainPercent: current.TodayGainPercent,
		Stocks:           totals.Stocks,
		Crypto:           totals.Crypto,
	})
	if err != nil {
		return Totals{}, fmt.Errorf("failed to update portfolio for user %d: %w", userID, err)
	}
	return totals, nil
}

// SumHoldings adds up values overall and per asset type. Holdings without a
// type count toward the total only.
func SumHoldings(items []holdings.Holding) Totals {
	t := Totals{Total: decimal.Zero, Stocks: decimal.Zero, Crypto: decimal.Zero}
	for _, h := range items {
		t.Total = t.Total.Add(h.Value)
		if h.Type == nil {
			continue
		}
		switch domain.AssetType(*h.Type) {
		case domain.AssetStock:
			t.Stocks = t.Stocks.Add(h.Value)
		case domain.AssetCrypto:
			t.Crypto = t.Crypto.Add(h.Value)
		}
	}
	return t
}

package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/modules"
)

const summaryColumns = `id, user_id, total_value, today_gain, today_gain_percent, stocks, crypto, created_at, updated_at`

const containerColumns = `id, user_id, name, description, value, currency, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repository handles the portfolio and portfolios tables
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a portfolio repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// GetSummary returns the user's summary or modules.ErrNotFound
func (r *Repository) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM portfolio WHERE user_id = ?`, userID)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, modules.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio for user %d: %w", userID, err)
	}
	return s, nil
}

// UpsertSummary creates or overwrites the user's summary
func (r *Repository) UpsertSummary(ctx context.Context, userID int64, in SummaryInput) (*Summary, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO portfolio (user_id, total_value, today_gain, today_gain_percent, stocks, crypto)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			total_value = excluded.total_value,
			today_gain = excluded.today_gain,
			today_gain_percent = excluded.today_gain_percent,
			stocks = excluded.stocks,
			crypto = excluded.crypto,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+summaryColumns,
		userID, in.TotalValue, in.TodayGain, in.TodayGainPercent, in.Stocks, in.Crypto)

	s, err := scanSummary(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert portfolio for user %d: %w", userID, err)
	}
	return s, nil
}

// ListContainers returns the user's containers, newest first
func (r *Repository) ListContainers(ctx context.Context, userID int64) ([]Container, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+containerColumns+` FROM portfolios WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	out := []Container{}
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}
	return out, nil
}

// CreateContainer inserts a container. Value defaults to 0 and currency to EUR.
func (r *Repository) CreateContainer(ctx context.Context, userID int64, in ContainerInput) (*Container, error) {
	value := decimal.Zero
	if in.Value != nil {
		value = *in.Value
	}
	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO portfolios (user_id, name, description, value, currency)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+containerColumns,
		userID, in.Name, in.Description, value, currency)

	c, err := scanContainer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return c, nil
}

// DeleteContainer removes a container owned by the user
func (r *Repository) DeleteContainer(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete portfolio %d: %w", id, err)
	}
	if n == 0 {
		return modules.ErrNotFound
	}
	return nil
}

func scanSummary(row rowScanner) (*Summary, error) {
	var s Summary
	err := row.Scan(&s.ID, &s.UserID, &s.TotalValue, &s.TodayGain, &s.TodayGainPercent,
		&s.Stocks, &s.Crypto, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanContainer(row rowScanner) (*Container, error) {
	var c Container
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Value, &c.Currency, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

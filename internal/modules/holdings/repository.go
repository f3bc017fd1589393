package holdings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/modules"
)

const holdingColumns = `id, user_id, symbol, name, quantity, value, change, change_percent,
	purchase_price, purchase_date, type, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repository handles the holdings table
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a holdings repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// List returns the user's holdings, newest first
func (r *Repository) List(ctx context.Context, userID int64) ([]Holding, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	out := []Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return out, nil
}

// Get returns one holding or modules.ErrNotFound
func (r *Repository) Get(ctx context.Context, userID, id int64) (*Holding, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE id = ? AND user_id = ?`, id, userID)
	h, err := scanHolding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, modules.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding %d: %w", id, err)
	}
	return h, nil
}

// Create inserts a holding
func (r *Repository) Create(ctx context.Context, userID int64, in Input) (*Holding, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO holdings (user_id, symbol, name, quantity, value, change, change_percent,
			purchase_price, purchase_date, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+holdingColumns,
		userID, in.Symbol, in.Name, in.Quantity, in.Value, in.Change, in.ChangePercent,
		purchasePrice(in), nullString(in.PurchaseDate), nullString(in.Type))

	h, err := scanHolding(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create holding %s: %w", in.Symbol, err)
	}
	return h, nil
}

// Update rewrites quantity, value and the daily change of a holding
func (r *Repository) Update(ctx context.Context, userID, id int64, in Update) (*Holding, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE holdings
		SET quantity = ?, value = ?, change = ?, change_percent = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
		RETURNING `+holdingColumns,
		in.Quantity, in.Value, in.Change, in.ChangePercent, id, userID)

	h, err := scanHolding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, modules.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update holding %d: %w", id, err)
	}
	return h, nil
}

// Delete removes a holding owned by the user
func (r *Repository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holding %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete holding %d: %w", id, err)
	}
	if n == 0 {
		return modules.ErrNotFound
	}
	return nil
}

// DeleteForUser removes every holding of the user and returns how many went
func (r *Repository) DeleteForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear holdings for user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear holdings for user %d: %w", userID, err)
	}
	return n, nil
}

func purchasePrice(in Input) interface{} {
	if in.PurchasePrice == nil {
		return nil
	}
	return *in.PurchasePrice
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func scanHolding(row rowScanner) (*Holding, error) {
	var h Holding
	err := row.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Name, &h.Quantity, &h.Value, &h.Change, &h.ChangePercent,
		&h.PurchasePrice, &h.PurchaseDate, &h.Type, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

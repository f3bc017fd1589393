package watchlist

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/modules"
)

const itemColumns = `id, user_id, symbol, name, price, change, change_percent, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repository handles the watchlist table
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a watchlist repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "watchlist").Logger(),
	}
}

// List returns the user's watchlist, newest first
func (r *Repository) List(ctx context.Context, userID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM watchlist WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}
	return out, nil
}

// Add inserts a symbol. Adding a symbol twice violates the unique constraint.
func (r *Repository) Add(ctx context.Context, userID int64, in Input) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO watchlist (user_id, symbol, name, price, change, change_percent)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+itemColumns,
		userID, in.Symbol, in.Name, in.Price, in.Change, in.ChangePercent)

	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s to watchlist: %w", in.Symbol, err)
	}
	return item, nil
}

// Remove deletes a watchlist item owned by the user
func (r *Repository) Remove(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove watchlist item %d: %w", id, err)
	}
	if n == 0 {
		return modules.ErrNotFound
	}
	return nil
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.UserID, &item.Symbol, &item.Name, &item.Price, &item.Change,
		&item.ChangePercent, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

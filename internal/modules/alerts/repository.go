package alerts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/modules"
)

const alertColumns = `id, user_id, symbol, condition, value, active, triggered, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repository handles the alerts table
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates an alerts repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "alerts").Logger(),
	}
}

// List returns the user's alerts, newest first
func (r *Repository) List(ctx context.Context, userID int64) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	out := []Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return out, nil
}

// Create inserts an alert. New alerts are never triggered.
func (r *Repository) Create(ctx context.Context, userID int64, in Input) (*Alert, error) {
	active := in.Active == nil || *in.Active

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO alerts (user_id, symbol, condition, value, active, triggered)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+alertColumns,
		userID, in.Symbol, string(in.Condition), in.Value, active, false)

	a, err := scanAlert(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert for %s: %w", in.Symbol, err)
	}
	return a, nil
}

// Update sets active and triggered
func (r *Repository) Update(ctx context.Context, userID, id int64, in Update) (*Alert, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE alerts SET active = ?, triggered = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
		RETURNING `+alertColumns,
		in.Active, in.Triggered, id, userID)

	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, modules.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update alert %d: %w", id, err)
	}
	return a, nil
}

// Delete removes an alert owned by the user
func (r *Repository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete alert %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete alert %d: %w", id, err)
	}
	if n == 0 {
		return modules.ErrNotFound
	}
	return nil
}

func scanAlert(row rowScanner) (*Alert, error) {
	var a Alert
	var condition string
	err := row.Scan(&a.ID, &a.UserID, &a.Symbol, &condition, &a.Value, &a.Active, &a.Triggered,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Condition = domain.AlertCondition(condition)
	return &a, nil
}

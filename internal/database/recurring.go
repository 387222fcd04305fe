package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/finboard-api/internal/models"
)

// RecurringRepo is CRUD over recurring-transaction templates plus the due
// queries consumed by the recurring worker.
type RecurringRepo struct {
	pool *pgxpool.Pool
}

func NewRecurringRepo(pool *pgxpool.Pool) *RecurringRepo {
	return &RecurringRepo{pool: pool}
}

// Create inserts a template. The first due date is the start date. The
// referenced account (and category, when set) must belong to the same
// user; a foreign reference inserts nothing and reports ErrNotFound.
func (r *RecurringRepo) Create(ctx context.Context, rt *models.RecurringTransaction) error {
	query := `
		INSERT INTO recurring_transactions
			(user_id, account_id, category_id, description, amount, frequency, start_date, next_due_date)
		SELECT $1, $2, $3, $4, $5, $6, $7, $7
		WHERE EXISTS (SELECT 1 FROM accounts WHERE id = $2 AND user_id = $1)
		  AND ($3::uuid IS NULL OR EXISTS (SELECT 1 FROM categories WHERE id = $3 AND user_id = $1))
		RETURNING id, next_due_date, created_at`

	err := r.pool.QueryRow(ctx, query,
		rt.UserID, rt.AccountID, rt.CategoryID, rt.Description,
		rt.Amount, rt.Frequency, rt.StartDate,
	).Scan(&rt.ID, &rt.NextDueDate, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("create recurring transaction: %w", err)
	}
	return nil
}

func (r *RecurringRepo) List(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransaction, error) {
	query := `
		SELECT r.id, r.user_id, r.account_id, r.category_id, r.description,
		       r.amount, r.frequency, r.start_date, r.next_due_date, r.created_at,
		       c.name, a.name
		FROM recurring_transactions r
		LEFT JOIN categories c ON c.id = r.category_id
		JOIN accounts a ON a.id = r.account_id
		WHERE r.user_id = $1
		ORDER BY r.next_due_date`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()
	return scanRecurring(rows)
}

// ListDue returns every template, across all users, whose next due date is
// on or before the given day. Worker-only query.
func (r *RecurringRepo) ListDue(ctx context.Context, day time.Time) ([]models.RecurringTransaction, error) {
	query := `
		SELECT r.id, r.user_id, r.account_id, r.category_id, r.description,
		       r.amount, r.frequency, r.start_date, r.next_due_date, r.created_at,
		       c.name, a.name
		FROM recurring_transactions r
		LEFT JOIN categories c ON c.id = r.category_id
		JOIN accounts a ON a.id = r.account_id
		WHERE r.next_due_date <= $1
		ORDER BY r.next_due_date`

	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list due recurring transactions: %w", err)
	}
	defer rows.Close()
	return scanRecurring(rows)
}

func scanRecurring(rows pgx.Rows) ([]models.RecurringTransaction, error) {
	var templates []models.RecurringTransaction
	for rows.Next() {
		var rt models.RecurringTransaction
		if err := rows.Scan(
			&rt.ID, &rt.UserID, &rt.AccountID, &rt.CategoryID, &rt.Description,
			&rt.Amount, &rt.Frequency, &rt.StartDate, &rt.NextDueDate, &rt.CreatedAt,
			&rt.CategoryName, &rt.AccountName,
		); err != nil {
			return nil, err
		}
		templates = append(templates, rt)
	}
	return templates, rows.Err()
}

// Update rewrites the template fields and resets the due date to the new
// start date, matching the create semantics. Ownership of the new account
// and category references is enforced the same way Create does it.
func (r *RecurringRepo) Update(ctx context.Context, rt *models.RecurringTransaction) error {
	query := `
		UPDATE recurring_transactions
		SET account_id = $1, category_id = $2, description = $3,
		    amount = $4, frequency = $5, start_date = $6, next_due_date = $6
		WHERE id = $7 AND user_id = $8
		  AND EXISTS (SELECT 1 FROM accounts WHERE id = $1 AND user_id = $8)
		  AND ($2::uuid IS NULL OR EXISTS (SELECT 1 FROM categories WHERE id = $2 AND user_id = $8))`

	tag, err := r.pool.Exec(ctx, query,
		rt.AccountID, rt.CategoryID, rt.Description,
		rt.Amount, rt.Frequency, rt.StartDate,
		rt.ID, rt.UserID)
	if err != nil {
		return fmt.Errorf("update recurring transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecurringRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM recurring_transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/models"
)

// ErrBudgetExists is returned when a budget already covers the
// (category, month, year) tuple. Handlers map it to a 409.
var ErrBudgetExists = errors.New("budget already exists for this category and month")

// uniqueViolation is the Postgres SQLSTATE for unique constraint errors
const uniqueViolation = "23505"

// BudgetRepo is row-level CRUD over monthly budgets. One row per
// (user, category, month, year); spent and progress are derived by the
// finance package, never stored.
type BudgetRepo struct {
	pool *pgxpool.Pool
}

func NewBudgetRepo(pool *pgxpool.Pool) *BudgetRepo {
	return &BudgetRepo{pool: pool}
}

// Create inserts a budget row. The category must belong to the same user;
// a foreign category id inserts nothing and reports ErrNotFound.
func (r *BudgetRepo) Create(ctx context.Context, userID, categoryID uuid.UUID, amount decimal.Decimal, month, year int) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, category_id, amount, month, year)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM categories WHERE id = $2 AND user_id = $1)
		RETURNING id, user_id, category_id, amount, month, year, created_at`

	b := &models.Budget{}
	err := r.pool.QueryRow(ctx, query, userID, categoryID, amount, month, year).Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Month, &b.Year, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrBudgetExists
		}
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

// ListByMonth returns the budgets of one calendar month with joined
// category names.
func (r *BudgetRepo) ListByMonth(ctx context.Context, userID uuid.UUID, month, year int) ([]models.Budget, error) {
	query := `
		SELECT b.id, b.user_id, b.category_id, b.amount, b.month, b.year, b.created_at, c.name
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = $1 AND b.month = $2 AND b.year = $3
		ORDER BY c.name`

	rows, err := r.pool.Query(ctx, query, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.CategoryName); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepo) GetByID(ctx context.Context, userID, budgetID uuid.UUID) (*models.Budget, error) {
	query := `
		SELECT b.id, b.user_id, b.category_id, b.amount, b.month, b.year, b.created_at, c.name
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1 AND b.user_id = $2`

	b := &models.Budget{}
	err := r.pool.QueryRow(ctx, query, budgetID, userID).Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.CategoryName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// UpdateAmount changes only the limit; the (category, month, year) identity
// of a budget row is fixed once created.
func (r *BudgetRepo) UpdateAmount(ctx context.Context, userID, budgetID uuid.UUID, amount decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET amount = $1 WHERE id = $2 AND user_id = $3`,
		amount, budgetID, userID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BudgetRepo) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

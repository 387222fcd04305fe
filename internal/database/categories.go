package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/finboard-api/internal/models"
)

// CategoryRepo is row-level CRUD over categories. Deleting a category
// nulls the references on its transactions rather than cascading; budgets
// on the category do cascade.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Create(ctx context.Context, userID uuid.UUID, name string, catType models.CategoryType) (*models.Category, error) {
	query := `
		INSERT INTO categories (user_id, name, type)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, type, created_at`

	cat := &models.Category{}
	err := r.pool.QueryRow(ctx, query, userID, name, catType).Scan(
		&cat.ID, &cat.UserID, &cat.Name, &cat.Type, &cat.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// List returns the user's categories, optionally filtered by type
func (r *CategoryRepo) List(ctx context.Context, userID uuid.UUID, catType *models.CategoryType) ([]models.Category, error) {
	query := `
		SELECT id, user_id, name, type, created_at
		FROM categories
		WHERE user_id = $1 AND ($2::text IS NULL OR type = $2)
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query, userID, catType)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Type, &cat.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *CategoryRepo) GetByID(ctx context.Context, userID, categoryID uuid.UUID) (*models.Category, error) {
	query := `
		SELECT id, user_id, name, type, created_at
		FROM categories
		WHERE id = $1 AND user_id = $2`

	cat := &models.Category{}
	err := r.pool.QueryRow(ctx, query, categoryID, userID).Scan(
		&cat.ID, &cat.UserID, &cat.Name, &cat.Type, &cat.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func (r *CategoryRepo) Update(ctx context.Context, userID, categoryID uuid.UUID, name string, catType models.CategoryType) error {
	query := `
		UPDATE categories
		SET name = $1, type = $2
		WHERE id = $3 AND user_id = $4`

	tag, err := r.pool.Exec(ctx, query, name, catType, categoryID, userID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

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

// UserRepo syncs and resolves identities managed by the external auth
// service. Rows are created by the webhook handler and looked up by every
// authenticated request.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Upsert creates or refreshes a user row keyed by the external auth id
func (r *UserRepo) Upsert(ctx context.Context, clerkUserID, email string, fullName *string) (*models.User, error) {
	query := `
		INSERT INTO users (id, clerk_user_id, email, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (clerk_user_id) DO UPDATE
		SET email = EXCLUDED.email,
		    full_name = EXCLUDED.full_name,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, clerk_user_id, email, full_name, created_at, updated_at`

	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, uuid.New(), clerkUserID, email, fullName, time.Now()).Scan(
		&user.ID,
		&user.ClerkUserID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

// GetByClerkID resolves the database identity for an authenticated session
func (r *UserRepo) GetByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	query := `
		SELECT id, clerk_user_id, email, full_name, created_at, updated_at
		FROM users
		WHERE clerk_user_id = $1`

	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, clerkUserID).Scan(
		&user.ID,
		&user.ClerkUserID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by clerk id: %w", err)
	}
	return user, nil
}

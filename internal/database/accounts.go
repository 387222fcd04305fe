package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/models"
)

// AccountRepo is row-level CRUD over accounts, always scoped by user id.
// Balance mutations happen only through the ledger service, not here,
// except for the seed balance supplied on create/update.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, userID uuid.UUID, name string, balance decimal.Decimal) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, name, balance)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, balance, created_at, updated_at`

	acc := &models.Account{}
	err := r.pool.QueryRow(ctx, query, userID, name, balance).Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return acc, nil
}

func (r *AccountRepo) List(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	query := `
		SELECT id, user_id, name, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (r *AccountRepo) GetByID(ctx context.Context, userID, accountID uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, user_id, name, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND user_id = $2`

	acc := &models.Account{}
	err := r.pool.QueryRow(ctx, query, accountID, userID).Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acc, nil
}

// Update renames the account and resets its seed balance
func (r *AccountRepo) Update(ctx context.Context, userID, accountID uuid.UUID, name string, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET name = $1, balance = $2, updated_at = now()
		WHERE id = $3 AND user_id = $4`

	tag, err := r.pool.Exec(ctx, query, name, balance, accountID, userID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account; its transactions cascade at the schema level
func (r *AccountRepo) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/finboard-api/internal/models"
)

// TransactionRepo is the read side of the ledger. Inserts and deletes run
// through the ledger service so the owning account balance moves in the
// same database transaction.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `
	t.id, t.user_id, t.account_id, t.category_id, t.description,
	t.amount, t.transaction_date, t.created_at, c.name, a.name`

func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.AccountID, &tx.CategoryID, &tx.Description,
			&tx.Amount, &tx.TransactionDate, &tx.CreatedAt, &tx.CategoryName, &tx.AccountName,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// ListRecent returns the newest transactions with joined category and
// account names, most recent first.
func (r *TransactionRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1
		ORDER BY t.transaction_date DESC, t.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *TransactionRepo) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// ListByMonth returns every transaction dated inside the given calendar
// month, boundary days included.
func (r *TransactionRepo) ListByMonth(ctx context.Context, userID uuid.UUID, month, year int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1
		  AND t.transaction_date >= make_date($2, $3, 1)
		  AND t.transaction_date < make_date($2, $3, 1) + INTERVAL '1 month'
		ORDER BY t.transaction_date DESC`

	rows, err := r.pool.Query(ctx, query, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list month transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListMonthExpenses returns only the negative-amount rows of the month,
// the input set for budget spend derivation.
func (r *TransactionRepo) ListMonthExpenses(ctx context.Context, userID uuid.UUID, month, year int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1
		  AND t.transaction_date >= make_date($2, $3, 1)
		  AND t.transaction_date < make_date($2, $3, 1) + INTERVAL '1 month'
		  AND t.amount < 0`

	rows, err := r.pool.Query(ctx, query, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

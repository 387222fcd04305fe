package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/events"
	"github.com/finboard/finboard-api/internal/models"
)

// Validation failures surfaced by the ledger operations
var (
	ErrSameAccount      = errors.New("source and destination accounts must differ")
	ErrNonPositiveValue = errors.New("amount must be greater than zero")
)

// DefaultTransferDescription tags transfer rows when the caller gives none
const DefaultTransferDescription = "Transfer between accounts"

// EventPublisher receives ledger events after a successful commit.
// A nil publisher disables eventing.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *events.LedgerEvent) error
}

// LedgerService owns every mutation of the transaction ledger. Each
// operation runs in a single database transaction so the denormalized
// account and goal counters can never drift from the ledger rows.
type LedgerService struct {
	pool      *pgxpool.Pool
	publisher EventPublisher
	log       *logrus.Entry
}

// NewLedgerService creates the ledger service. publisher may be nil.
func NewLedgerService(pool *pgxpool.Pool, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		pool:      pool,
		publisher: publisher,
		log:       logrus.WithField("component", "ledger"),
	}
}

// TransactionInput is a user-entered ledger row. Amount is already signed
// by the caller: negative for expenses, positive for income.
type TransactionInput struct {
	AccountID       uuid.UUID
	CategoryID      *uuid.UUID
	Description     *string
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// AddTransaction inserts a ledger row and moves the owning account balance
// by the same amount, atomically.
func (s *LedgerService) AddTransaction(ctx context.Context, userID uuid.UUID, input TransactionInput) (*models.Transaction, error) {
	if input.Amount.IsZero() {
		return nil, ErrNonPositiveValue
	}

	var created *models.Transaction
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if input.CategoryID != nil {
				if err := ownsCategory(ctx, tx, userID, *input.CategoryID); err != nil {
					return err
				}
			}

			if err := adjustBalance(ctx, tx, userID, input.AccountID, input.Amount); err != nil {
				return err
			}

			row, err := insertTransaction(ctx, tx, userID, input)
			if err != nil {
				return err
			}
			created = row
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewLedgerEvent(events.KindTransactionCreated, created.ID, input.Amount))
	return created, nil
}

// TransactionUpdate rewrites the editable fields of a ledger row. The
// owning account is fixed; only the amount delta moves its balance.
type TransactionUpdate struct {
	CategoryID      *uuid.UUID
	Description     *string
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// UpdateTransaction rewrites a ledger row and moves the owning account
// balance by (new amount - old amount), atomically.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, update TransactionUpdate) (*models.Transaction, error) {
	if update.Amount.IsZero() {
		return nil, ErrNonPositiveValue
	}

	var updated *models.Transaction
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if update.CategoryID != nil {
				if err := ownsCategory(ctx, tx, userID, *update.CategoryID); err != nil {
					return err
				}
			}

			var oldAmount decimal.Decimal
			var accountID uuid.UUID
			err := tx.QueryRow(ctx,
				`SELECT amount, account_id FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`,
				transactionID, userID,
			).Scan(&oldAmount, &accountID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return database.ErrNotFound
				}
				return fmt.Errorf("lock transaction: %w", err)
			}

			if err := adjustBalance(ctx, tx, userID, accountID, update.Amount.Sub(oldAmount)); err != nil {
				return err
			}

			row := &models.Transaction{}
			err = tx.QueryRow(ctx,
				`UPDATE transactions
				 SET category_id = $1, description = $2, amount = $3, transaction_date = $4
				 WHERE id = $5 AND user_id = $6
				 RETURNING id, user_id, account_id, category_id, description, amount, transaction_date, created_at`,
				update.CategoryID, update.Description, update.Amount, update.TransactionDate,
				transactionID, userID,
			).Scan(
				&row.ID, &row.UserID, &row.AccountID, &row.CategoryID, &row.Description,
				&row.Amount, &row.TransactionDate, &row.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("update transaction: %w", err)
			}
			updated = row
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewLedgerEvent(events.KindTransactionUpdated, transactionID, update.Amount))
	return updated, nil
}

// DeleteTransaction removes a ledger row and backs its amount out of the
// owning account balance, atomically.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			var amount decimal.Decimal
			var accountID uuid.UUID
			err := tx.QueryRow(ctx,
				`DELETE FROM transactions WHERE id = $1 AND user_id = $2 RETURNING amount, account_id`,
				transactionID, userID,
			).Scan(&amount, &accountID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return database.ErrNotFound
				}
				return fmt.Errorf("delete transaction: %w", err)
			}

			return adjustBalance(ctx, tx, userID, accountID, amount.Neg())
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewLedgerEvent(events.KindTransactionDeleted, transactionID, decimal.Zero))
	return nil
}

// CreateTransfer atomically debits the source account, credits the
// destination and records one signed ledger row per side. A transfer to
// the same account is rejected before the store is touched.
func (s *LedgerService) CreateTransfer(ctx context.Context, userID, fromAccountID, toAccountID uuid.UUID, amount decimal.Decimal, description string, transferDate time.Time) error {
	if fromAccountID == toAccountID {
		return ErrSameAccount
	}
	if !amount.IsPositive() {
		return ErrNonPositiveValue
	}
	if description == "" {
		description = DefaultTransferDescription
	}

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if err := adjustBalance(ctx, tx, userID, fromAccountID, amount.Neg()); err != nil {
				return err
			}
			if err := adjustBalance(ctx, tx, userID, toAccountID, amount); err != nil {
				return err
			}

			if _, err := insertTransaction(ctx, tx, userID, TransactionInput{
				AccountID:       fromAccountID,
				Description:     &description,
				Amount:          amount.Neg(),
				TransactionDate: transferDate,
			}); err != nil {
				return err
			}
			_, err := insertTransaction(ctx, tx, userID, TransactionInput{
				AccountID:       toAccountID,
				Description:     &description,
				Amount:          amount,
				TransactionDate: transferDate,
			})
			return err
		})
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"from":   fromAccountID,
		"to":     toAccountID,
		"amount": amount.String(),
	}).Info("transfer committed")
	s.publish(ctx, events.NewLedgerEvent(events.KindTransferCreated, fromAccountID, amount))
	return nil
}

// AddFundsToGoal atomically increments the goal's funded counter, debits
// the funding account and records the deposit as an expense row. The
// counter is not clamped to the target.
func (s *LedgerService) AddFundsToGoal(ctx context.Context, userID, goalID, accountID uuid.UUID, amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return ErrNonPositiveValue
	}

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			var goalName string
			err := tx.QueryRow(ctx,
				`UPDATE saving_goals SET current_amount = current_amount + $1
				 WHERE id = $2 AND user_id = $3
				 RETURNING name`,
				amount, goalID, userID,
			).Scan(&goalName)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return database.ErrNotFound
				}
				return fmt.Errorf("fund goal: %w", err)
			}

			if err := adjustBalance(ctx, tx, userID, accountID, amount.Neg()); err != nil {
				return err
			}

			desc := description
			if desc == "" {
				desc = fmt.Sprintf("Saving for: %s", goalName)
			}
			_, err = insertTransaction(ctx, tx, userID, TransactionInput{
				AccountID:       accountID,
				Description:     &desc,
				Amount:          amount.Neg(),
				TransactionDate: time.Now(),
			})
			return err
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewLedgerEvent(events.KindGoalFunded, goalID, amount))
	return nil
}

// PostRecurringTransaction materializes one due occurrence of a recurring
// template: the ledger insert, the account balance move and the advance of
// next_due_date commit in a single database transaction, so a crash cannot
// post the occurrence twice.
func (s *LedgerService) PostRecurringTransaction(ctx context.Context, tpl models.RecurringTransaction, dueDate, nextDue time.Time) (*models.Transaction, error) {
	if tpl.Amount.IsZero() {
		return nil, ErrNonPositiveValue
	}

	var posted *models.Transaction
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if err := adjustBalance(ctx, tx, tpl.UserID, tpl.AccountID, tpl.Amount); err != nil {
				return err
			}

			desc := tpl.Description
			row, err := insertTransaction(ctx, tx, tpl.UserID, TransactionInput{
				AccountID:       tpl.AccountID,
				CategoryID:      tpl.CategoryID,
				Description:     &desc,
				Amount:          tpl.Amount,
				TransactionDate: dueDate,
			})
			if err != nil {
				return err
			}

			tag, err := tx.Exec(ctx,
				`UPDATE recurring_transactions SET next_due_date = $1 WHERE id = $2 AND user_id = $3`,
				nextDue, tpl.ID, tpl.UserID)
			if err != nil {
				return fmt.Errorf("advance recurring schedule: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return database.ErrNotFound
			}

			posted = row
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewLedgerEvent(events.KindRecurringPosted, tpl.ID, tpl.Amount))
	return posted, nil
}

// withRetry reruns the operation once when pgx reports the failure as safe
// to retry (connection died before the statement reached the server).
func (s *LedgerService) withRetry(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || !pgconn.SafeToRetry(err) {
		return err
	}
	s.log.WithError(err).Warn("retrying ledger operation after transient failure")
	return fn(ctx)
}

func (s *LedgerService) publish(ctx context.Context, event *events.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		s.log.WithError(err).WithField("kind", event.Kind).Warn("failed to publish ledger event")
	}
}

// adjustBalance moves an account balance by delta inside the caller's
// transaction. Zero rows means the account does not exist or belongs to
// another user.
func adjustBalance(ctx context.Context, tx pgx.Tx, userID, accountID uuid.UUID, delta decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3`,
		delta, accountID, userID)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

func ownsCategory(ctx context.Context, tx pgx.Tx, userID, categoryID uuid.UUID) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)`,
		categoryID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return database.ErrNotFound
	}
	return nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, userID uuid.UUID, input TransactionInput) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, account_id, category_id, description, amount, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, account_id, category_id, description, amount, transaction_date, created_at`

	row := &models.Transaction{}
	err := tx.QueryRow(ctx, query,
		userID, input.AccountID, input.CategoryID, input.Description,
		input.Amount, input.TransactionDate,
	).Scan(
		&row.ID, &row.UserID, &row.AccountID, &row.CategoryID, &row.Description,
		&row.Amount, &row.TransactionDate, &row.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return row, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryType classifies a category as income or expense
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Valid reports whether t is one of the known category types
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Frequency is the repetition interval of a recurring transaction template
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is one of the supported frequencies
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// User mirrors an identity managed by the external auth service
type User struct {
	ID          uuid.UUID `json:"id"`
	ClerkUserID string    `json:"clerk_user_id"`
	Email       string    `json:"email"`
	FullName    *string   `json:"full_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Account is a named money container with a denormalized running balance.
// The balance is adjusted inside the same database transaction as every
// ledger write touching the account.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Category labels a transaction as income or expense
type Category struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
}

// Transaction is one ledger row. Amount is signed: positive for inflow,
// negative for outflow. CategoryID is nil when the transaction was never
// categorized or its category was deleted.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	AccountID       uuid.UUID       `json:"account_id"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`

	// Joined display fields, populated by list queries
	CategoryName *string `json:"category_name,omitempty"`
	AccountName  *string `json:"account_name,omitempty"`
}

// Budget is a per-category spending limit for one calendar month.
// Spent and progress are derived, never stored.
type Budget struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	CreatedAt  time.Time       `json:"created_at"`

	CategoryName *string `json:"category_name,omitempty"`
}

// SavingGoal tracks progress toward a target amount. CurrentAmount is a
// denormalized counter incremented by funding operations and may exceed
// the target; only the progress display clamps.
type SavingGoal struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecurringTransaction is a template that the recurring worker materializes
// into concrete transactions whenever NextDueDate falls due.
type RecurringTransaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   time.Time       `json:"start_date"`
	NextDueDate time.Time       `json:"next_due_date"`
	CreatedAt   time.Time       `json:"created_at"`

	CategoryName *string `json:"category_name,omitempty"`
	AccountName  *string `json:"account_name,omitempty"`
}

package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard-api/internal/models"
)

// testPool connects to TEST_DATABASE_URL and applies migrations. Tests that
// need a live database skip when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, RunMigrations(url))

	pool, err := Connect(context.Background(), url, 2, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool) *models.User {
	t.Helper()

	clerkID := "user_" + uuid.NewString()
	user, err := NewUserRepo(pool).Upsert(context.Background(), clerkID,
		fmt.Sprintf("%s@example.com", clerkID), nil)
	require.NoError(t, err)
	return user
}

// TestBudgetCreate_ForeignCategory verifies a budget cannot be attached to
// another user's category: the insert writes nothing and reports not found.
func TestBudgetCreate_ForeignCategory(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	owner := seedUser(t, pool)
	intruder := seedUser(t, pool)

	category, err := NewCategoryRepo(pool).Create(ctx, owner.ID, "Groceries", models.CategoryExpense)
	require.NoError(t, err)

	budgets := NewBudgetRepo(pool)
	created, err := budgets.Create(ctx, intruder.ID, category.ID, decimal.NewFromInt(200), 9, 2026)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, created)

	// The owner can still budget against their own category.
	created, err = budgets.Create(ctx, owner.ID, category.ID, decimal.NewFromInt(200), 9, 2026)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, created.UserID)
}

// TestRecurringCreate_Ownership verifies a recurring template cannot point
// at another user's account or category.
func TestRecurringCreate_Ownership(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	owner := seedUser(t, pool)
	intruder := seedUser(t, pool)

	account, err := NewAccountRepo(pool).Create(ctx, owner.ID, "Checking", decimal.NewFromInt(1000))
	require.NoError(t, err)
	category, err := NewCategoryRepo(pool).Create(ctx, owner.ID, "Bills", models.CategoryExpense)
	require.NoError(t, err)
	ownAccount, err := NewAccountRepo(pool).Create(ctx, intruder.ID, "Checking", decimal.NewFromInt(1000))
	require.NoError(t, err)

	repo := NewRecurringRepo(pool)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	foreignAccount := &models.RecurringTransaction{
		UserID:      intruder.ID,
		AccountID:   account.ID,
		Description: "Rent",
		Amount:      decimal.NewFromInt(-900),
		Frequency:   models.FrequencyMonthly,
		StartDate:   start,
	}
	assert.ErrorIs(t, repo.Create(ctx, foreignAccount), ErrNotFound)

	foreignCategory := &models.RecurringTransaction{
		UserID:      intruder.ID,
		AccountID:   ownAccount.ID,
		CategoryID:  &category.ID,
		Description: "Rent",
		Amount:      decimal.NewFromInt(-900),
		Frequency:   models.FrequencyMonthly,
		StartDate:   start,
	}
	assert.ErrorIs(t, repo.Create(ctx, foreignCategory), ErrNotFound)

	// Own account and no category is fine.
	ok := &models.RecurringTransaction{
		UserID:      intruder.ID,
		AccountID:   ownAccount.ID,
		Description: "Rent",
		Amount:      decimal.NewFromInt(-900),
		Frequency:   models.FrequencyMonthly,
		StartDate:   start,
	}
	require.NoError(t, repo.Create(ctx, ok))
	assert.NotEqual(t, uuid.Nil, ok.ID)

	// An update cannot repoint the template at a foreign account either.
	ok.AccountID = account.ID
	assert.ErrorIs(t, repo.Update(ctx, ok), ErrNotFound)
}

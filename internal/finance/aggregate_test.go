package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard-api/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

// TestMonthlySummary tests income/expense folding and account balance sums
func TestMonthlySummary(t *testing.T) {
	tests := []struct {
		name         string
		transactions []models.Transaction
		accounts     []models.Account
		wantIncome   string
		wantExpense  string
		wantBalance  string
	}{
		{
			name:        "Empty month yields zero summary",
			wantIncome:  "0",
			wantExpense: "0",
			wantBalance: "0",
		},
		{
			name: "Mixed income and expenses",
			transactions: []models.Transaction{
				{Amount: dec("2500")},
				{Amount: dec("-120.50")},
				{Amount: dec("-79.50")},
				{Amount: dec("300")},
			},
			accounts: []models.Account{
				{Balance: dec("1000")},
				{Balance: dec("-250.25")},
			},
			wantIncome:  "2800",
			wantExpense: "200",
			wantBalance: "749.75",
		},
		{
			name: "Expense total is reported as absolute value",
			transactions: []models.Transaction{
				{Amount: dec("-42")},
			},
			wantIncome:  "0",
			wantExpense: "42",
			wantBalance: "0",
		},
		{
			name: "Balance is independent of the transaction set",
			accounts: []models.Account{
				{Balance: dec("500")},
			},
			wantIncome:  "0",
			wantExpense: "0",
			wantBalance: "500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlySummary(tt.transactions, tt.accounts)
			assert.True(t, got.TotalIncome.Equal(dec(tt.wantIncome)), "income: got %s", got.TotalIncome)
			assert.True(t, got.TotalExpense.Equal(dec(tt.wantExpense)), "expense: got %s", got.TotalExpense)
			assert.True(t, got.Balance.Equal(dec(tt.wantBalance)), "balance: got %s", got.Balance)
		})
	}
}

// TestMonthlySummary_Idempotent tests that folding the same rows twice
// gives the same summary
func TestMonthlySummary_Idempotent(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: dec("100")},
		{Amount: dec("-60")},
	}
	accounts := []models.Account{{Balance: dec("40")}}

	first := MonthlySummary(transactions, accounts)
	second := MonthlySummary(transactions, accounts)

	assert.True(t, first.TotalIncome.Equal(second.TotalIncome))
	assert.True(t, first.TotalExpense.Equal(second.TotalExpense))
	assert.True(t, first.Balance.Equal(second.Balance))
}

// TestExpenseByCategory tests grouping, exclusions and ordering
func TestExpenseByCategory(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: dec("-50"), CategoryName: strPtr("Groceries")},
		{Amount: dec("-30"), CategoryName: strPtr("Transport")},
		{Amount: dec("-25"), CategoryName: strPtr("Groceries")},
		{Amount: dec("1000"), CategoryName: strPtr("Salary")},   // income excluded
		{Amount: dec("-10"), CategoryName: nil},                 // uncategorized excluded
		{Amount: dec("0"), CategoryName: strPtr("Transport")},   // zero excluded
	}

	got := ExpenseByCategory(transactions)

	require.Len(t, got, 2)
	assert.Equal(t, "Groceries", got[0].Name)
	assert.True(t, got[0].Total.Equal(dec("75")))
	assert.Equal(t, "Transport", got[1].Name)
	assert.True(t, got[1].Total.Equal(dec("30")))
}

// TestExpenseByCategory_TieBreaksByName tests that equal totals sort by name
func TestExpenseByCategory_TieBreaksByName(t *testing.T) {
	transactions := []models.Transaction{
		{Amount: dec("-20"), CategoryName: strPtr("Zoo")},
		{Amount: dec("-20"), CategoryName: strPtr("Apples")},
	}

	got := ExpenseByCategory(transactions)

	require.Len(t, got, 2)
	assert.Equal(t, "Apples", got[0].Name)
	assert.Equal(t, "Zoo", got[1].Name)
}

// TestBudgetSpent tests that only matching expense rows count
func TestBudgetSpent(t *testing.T) {
	categoryID := uuid.New()
	otherID := uuid.New()
	budget := models.Budget{CategoryID: categoryID, Amount: dec("100")}

	expenses := []models.Transaction{
		{Amount: dec("-40"), CategoryID: &categoryID},
		{Amount: dec("-15"), CategoryID: &categoryID},
		{Amount: dec("-99"), CategoryID: &otherID}, // different category
		{Amount: dec("200"), CategoryID: &categoryID}, // income
		{Amount: dec("-5"), CategoryID: nil},          // uncategorized
	}

	spent := BudgetSpent(budget, expenses)
	assert.True(t, spent.Equal(dec("55")), "got %s", spent)
}

// TestBudgetStatuses tests the derived spend and progress per budget
func TestBudgetStatuses(t *testing.T) {
	categoryID := uuid.New()
	budgets := []models.Budget{
		{ID: uuid.New(), CategoryID: categoryID, Amount: dec("100")},
		{ID: uuid.New(), CategoryID: uuid.New(), Amount: dec("50")},
	}
	expenses := []models.Transaction{
		{Amount: dec("-150"), CategoryID: &categoryID},
	}

	got := BudgetStatuses(budgets, expenses)

	require.Len(t, got, 2)
	assert.True(t, got[0].Spent.Equal(dec("150")))
	assert.Equal(t, float64(100), got[0].Progress, "overspent budget clamps at 100")
	assert.True(t, got[1].Spent.Equal(decimal.Zero))
	assert.Equal(t, float64(0), got[1].Progress)
}

// TestProgress tests clamping and the zero-target guard
func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		current string
		target  string
		want    float64
	}{
		{"Halfway", "50", "100", 50},
		{"Complete", "100", "100", 100},
		{"Over target clamps to 100", "250", "100", 100},
		{"Zero target yields zero", "50", "0", 0},
		{"Negative target yields zero", "50", "-10", 0},
		{"Negative current clamps to zero", "-5", "100", 0},
		{"Fractional", "1", "3", 100.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Progress(dec(tt.current), dec(tt.target))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

// TestGoalProgress tests progress from a saving goal's counters
func TestGoalProgress(t *testing.T) {
	goal := models.SavingGoal{
		CurrentAmount: dec("750"),
		TargetAmount:  dec("1000"),
	}
	assert.InDelta(t, 75, GoalProgress(goal), 1e-9)
}

// Package finance holds the derived financial aggregations: monthly
// income/expense totals, budget spend and progress, per-category expense
// breakdowns, and saving-goal progress. Everything here is pure; callers
// fetch the rows and the functions fold them.
package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary is the monthly overview shown on the dashboard. TotalExpense is
// reported as an absolute value; Balance is the sum of stored account
// balances, independent of the transaction set.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}

// MonthlySummary folds a month of transactions into income and expense
// totals and sums account balances. An empty month yields a zero summary.
func MonthlySummary(transactions []models.Transaction, accounts []models.Account) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
	}
	for _, tx := range transactions {
		if tx.Amount.IsPositive() {
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		} else {
			s.TotalExpense = s.TotalExpense.Add(tx.Amount.Abs())
		}
	}
	for _, acc := range accounts {
		s.Balance = s.Balance.Add(acc.Balance)
	}
	return s
}

// CategoryTotal is one slice of the expense-by-category breakdown
type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// ExpenseByCategory groups expense transactions by category name, summing
// absolute amounts. Transactions with a positive amount or no category are
// excluded. The result is sorted by descending total for stable charting.
func ExpenseByCategory(transactions []models.Transaction) []CategoryTotal {
	byName := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.Amount.IsNegative() || tx.CategoryName == nil {
			continue
		}
		byName[*tx.CategoryName] = byName[*tx.CategoryName].Add(tx.Amount.Abs())
	}

	totals := make([]CategoryTotal, 0, len(byName))
	for name, total := range byName {
		totals = append(totals, CategoryTotal{Name: name, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}

// BudgetStatus is a budget row with its derived spend for the period
type BudgetStatus struct {
	models.Budget
	Spent    decimal.Decimal `json:"spent"`
	Progress float64         `json:"progress"`
}

// BudgetStatuses derives spent and progress for each budget from the
// expense transactions of the same (month, year). Spent may exceed the
// limit; the progress bar clamps at 100.
func BudgetStatuses(budgets []models.Budget, expenses []models.Transaction) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := BudgetSpent(b, expenses)
		statuses = append(statuses, BudgetStatus{
			Budget:   b,
			Spent:    spent,
			Progress: Progress(spent, b.Amount),
		})
	}
	return statuses
}

// BudgetSpent sums the absolute value of expense transactions whose
// category matches the budget's category.
func BudgetSpent(budget models.Budget, expenses []models.Transaction) decimal.Decimal {
	spent := decimal.Zero
	for _, tx := range expenses {
		if !tx.Amount.IsNegative() {
			continue
		}
		if tx.CategoryID == nil || *tx.CategoryID != budget.CategoryID {
			continue
		}
		spent = spent.Add(tx.Amount.Abs())
	}
	return spent
}

// Progress returns current/target as a percentage clamped to [0, 100].
// A zero or negative target yields 0 rather than dividing by zero.
func Progress(current, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	pct := current.Div(target).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return 100
	}
	if pct.IsNegative() {
		return 0
	}
	return pct.InexactFloat64()
}

// GoalProgress is Progress applied to a saving goal's counters
func GoalProgress(goal models.SavingGoal) float64 {
	return Progress(goal.CurrentAmount, goal.TargetAmount)
}

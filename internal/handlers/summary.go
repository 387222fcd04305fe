package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/finance"
	"github.com/finboard/finboard-api/internal/models"
)

// recentChartSize is how many of the latest transactions feed the
// expense-by-category breakdown on the dashboard.
const recentChartSize = 10

type SummaryHandler struct {
	transactions *database.TransactionRepo
	accounts     *database.AccountRepo
	users        *database.UserRepo
	timeout      time.Duration
}

func NewSummaryHandler(transactions *database.TransactionRepo, accounts *database.AccountRepo, users *database.UserRepo, timeout time.Duration) *SummaryHandler {
	return &SummaryHandler{
		transactions: transactions,
		accounts:     accounts,
		users:        users,
		timeout:      timeout,
	}
}

type summaryResponse struct {
	finance.Summary
	Month              int                     `json:"month"`
	Year               int                     `json:"year"`
	ExpenseByCategory  []finance.CategoryTotal `json:"expense_by_category"`
	RecentTransactions []models.Transaction    `json:"recent_transactions"`
}

// Get computes the dashboard view: monthly income/expense totals, the sum
// of account balances, the recent transactions and their expense breakdown.
// A month with no activity yields a zero summary, not an error.
// GET /v1/summary?month=9&year=2026
func (h *SummaryHandler) Get(c fiber.Ctx) error {
	month, year, err := monthYearParams(c)
	if err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	monthTransactions, err := h.transactions.ListByMonth(ctx, user.ID, month, year)
	if err != nil {
		return storeError(err, "transactions")
	}

	accounts, err := h.accounts.List(ctx, user.ID)
	if err != nil {
		return storeError(err, "accounts")
	}

	recent, err := h.transactions.ListRecent(ctx, user.ID, recentChartSize, 0)
	if err != nil {
		return storeError(err, "transactions")
	}

	return c.JSON(summaryResponse{
		Summary:            finance.MonthlySummary(monthTransactions, accounts),
		Month:              month,
		Year:               year,
		ExpenseByCategory:  finance.ExpenseByCategory(recent),
		RecentTransactions: recent,
	})
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/finance"
	"github.com/finboard/finboard-api/internal/services"
	"github.com/finboard/finboard-api/internal/utils"
)

type ReportsHandler struct {
	transactions *database.TransactionRepo
	accounts     *database.AccountRepo
	budgets      *database.BudgetRepo
	users        *database.UserRepo
	reports      *services.ReportService
	timeout      time.Duration
}

func NewReportsHandler(
	transactions *database.TransactionRepo,
	accounts *database.AccountRepo,
	budgets *database.BudgetRepo,
	users *database.UserRepo,
	reports *services.ReportService,
	timeout time.Duration,
) *ReportsHandler {
	return &ReportsHandler{
		transactions: transactions,
		accounts:     accounts,
		budgets:      budgets,
		users:        users,
		reports:      reports,
		timeout:      timeout,
	}
}

type monthlyReportResponse struct {
	URL   string `json:"url"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

// Monthly renders the month's activity into an XLSX workbook, stores it
// and returns a time-limited download link.
// GET /v1/reports/monthly?month=9&year=2026
func (h *ReportsHandler) Monthly(c fiber.Ctx) error {
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

	transactions, err := h.transactions.ListByMonth(ctx, user.ID, month, year)
	if err != nil {
		return storeError(err, "transactions")
	}
	accounts, err := h.accounts.List(ctx, user.ID)
	if err != nil {
		return storeError(err, "accounts")
	}
	budgets, err := h.budgets.ListByMonth(ctx, user.ID, month, year)
	if err != nil {
		return storeError(err, "budgets")
	}
	expenses, err := h.transactions.ListMonthExpenses(ctx, user.ID, month, year)
	if err != nil {
		return storeError(err, "transactions")
	}

	url, err := h.reports.GenerateMonthlyReport(ctx, user.ID.String(), services.MonthlyReportData{
		Month:        month,
		Year:         year,
		Summary:      finance.MonthlySummary(transactions, accounts),
		Transactions: transactions,
		Budgets:      finance.BudgetStatuses(budgets, expenses),
	})
	if err != nil {
		return utils.NewInternalError(err)
	}

	return utils.SuccessResponse(c, monthlyReportResponse{URL: url, Month: month, Year: year})
}

// Delete removes a generated report from storage. The download links keep
// working until they expire; only the stored object goes away.
// DELETE /v1/reports/monthly?month=9&year=2026
func (h *ReportsHandler) Delete(c fiber.Ctx) error {
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

	if err := h.reports.DeleteMonthlyReport(ctx, user.ID.String(), month, year); err != nil {
		return utils.NewInternalError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

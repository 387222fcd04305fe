package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/finance"
	"github.com/finboard/finboard-api/internal/utils"
)

type BudgetsHandler struct {
	budgets      *database.BudgetRepo
	transactions *database.TransactionRepo
	users        *database.UserRepo
	timeout      time.Duration
}

func NewBudgetsHandler(budgets *database.BudgetRepo, transactions *database.TransactionRepo, users *database.UserRepo, timeout time.Duration) *BudgetsHandler {
	return &BudgetsHandler{
		budgets:      budgets,
		transactions: transactions,
		users:        users,
		timeout:      timeout,
	}
}

// List returns the month's budgets with derived spent and progress
// GET /v1/budgets?month=9&year=2026
func (h *BudgetsHandler) List(c fiber.Ctx) error {
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

	budgets, err := h.budgets.ListByMonth(ctx, user.ID, month, year)
	if err != nil {
		return storeError(err, "budgets")
	}

	expenses, err := h.transactions.ListMonthExpenses(ctx, user.ID, month, year)
	if err != nil {
		return storeError(err, "transactions")
	}

	return utils.SuccessResponse(c, finance.BudgetStatuses(budgets, expenses))
}

type createBudgetRequest struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
}

// Create sets a monthly limit for a category. A non-positive limit is
// rejected here so progress derivation never divides by zero.
// POST /v1/budgets
func (h *BudgetsHandler) Create(c fiber.Ctx) error {
	var req createBudgetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if req.CategoryID == uuid.Nil {
		return utils.NewValidationError("category_id is required", nil)
	}
	if !req.Amount.IsPositive() {
		return utils.NewValidationError("amount must be greater than zero", req.Amount)
	}
	if req.Month < 1 || req.Month > 12 {
		return utils.NewValidationError("month must be between 1 and 12", req.Month)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	budget, err := h.budgets.Create(ctx, user.ID, req.CategoryID, req.Amount, req.Month, req.Year)
	if err != nil {
		return storeError(err, "budget")
	}
	return c.Status(fiber.StatusCreated).JSON(budget)
}

type updateBudgetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Update changes the limit of an existing budget
// PUT /v1/budgets/:id
func (h *BudgetsHandler) Update(c fiber.Ctx) error {
	budgetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req updateBudgetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if !req.Amount.IsPositive() {
		return utils.NewValidationError("amount must be greater than zero", req.Amount)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.budgets.UpdateAmount(ctx, user.ID, budgetID, req.Amount); err != nil {
		return storeError(err, "budget")
	}
	return utils.SuccessResponse(c, fiber.Map{"id": budgetID})
}

// DELETE /v1/budgets/:id
func (h *BudgetsHandler) Delete(c fiber.Ctx) error {
	budgetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.budgets.Delete(ctx, user.ID, budgetID); err != nil {
		return storeError(err, "budget")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

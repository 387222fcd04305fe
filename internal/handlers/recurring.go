package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/models"
	"github.com/finboard/finboard-api/internal/utils"
)

type RecurringHandler struct {
	recurring *database.RecurringRepo
	users     *database.UserRepo
	timeout   time.Duration
}

func NewRecurringHandler(recurring *database.RecurringRepo, users *database.UserRepo, timeout time.Duration) *RecurringHandler {
	return &RecurringHandler{recurring: recurring, users: users, timeout: timeout}
}

type recurringRequest struct {
	AccountID   uuid.UUID           `json:"account_id"`
	CategoryID  *uuid.UUID          `json:"category_id"`
	Type        models.CategoryType `json:"type"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	Frequency   models.Frequency    `json:"frequency"`
	StartDate   string              `json:"start_date"`
}

func (r *recurringRequest) validate() error {
	if r.AccountID == uuid.Nil {
		return utils.NewValidationError("account_id is required", nil)
	}
	if !r.Type.Valid() {
		return utils.NewValidationError("type must be income or expense", r.Type)
	}
	if !r.Amount.IsPositive() {
		return utils.NewValidationError("amount must be greater than zero", r.Amount)
	}
	if r.Description == "" {
		return utils.NewValidationError("description is required", nil)
	}
	if !r.Frequency.Valid() {
		return utils.NewValidationError("frequency must be daily, weekly, monthly or yearly", r.Frequency)
	}
	if r.StartDate == "" {
		return utils.NewValidationError("start_date is required", nil)
	}
	return nil
}

// signedAmount applies the income/expense convention used by the ledger:
// expenses are stored negative.
func (r *recurringRequest) signedAmount() decimal.Decimal {
	amount := r.Amount.Abs()
	if r.Type == models.CategoryExpense {
		amount = amount.Neg()
	}
	return amount
}

// List returns the user's recurring templates ordered by next due date
// GET /v1/recurring-transactions
func (h *RecurringHandler) List(c fiber.Ctx) error {
	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	templates, err := h.recurring.List(ctx, user.ID)
	if err != nil {
		return storeError(err, "recurring transactions")
	}
	return utils.SuccessResponse(c, templates)
}

// Create registers a template. The first occurrence is due on the start
// date itself; the worker picks it up on its next pass.
// POST /v1/recurring-transactions
func (h *RecurringHandler) Create(c fiber.Ctx) error {
	var req recurringRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if err := req.validate(); err != nil {
		return err
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return utils.NewValidationError("invalid start_date, want YYYY-MM-DD", req.StartDate)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	template := &models.RecurringTransaction{
		UserID:      user.ID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.signedAmount(),
		Frequency:   req.Frequency,
		StartDate:   startDate,
	}
	if err := h.recurring.Create(ctx, template); err != nil {
		return storeError(err, "recurring transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// Update rewrites a template and resets its schedule to the new start date
// PUT /v1/recurring-transactions/:id
func (h *RecurringHandler) Update(c fiber.Ctx) error {
	templateID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req recurringRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if err := req.validate(); err != nil {
		return err
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return utils.NewValidationError("invalid start_date, want YYYY-MM-DD", req.StartDate)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	template := &models.RecurringTransaction{
		ID:          templateID,
		UserID:      user.ID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.signedAmount(),
		Frequency:   req.Frequency,
		StartDate:   startDate,
	}
	if err := h.recurring.Update(ctx, template); err != nil {
		return storeError(err, "recurring transaction")
	}
	template.NextDueDate = startDate
	return utils.SuccessResponse(c, template)
}

// Delete removes a template. Transactions it already materialized stay.
// DELETE /v1/recurring-transactions/:id
func (h *RecurringHandler) Delete(c fiber.Ctx) error {
	templateID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.recurring.Delete(ctx, user.ID, templateID); err != nil {
		return storeError(err, "recurring transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

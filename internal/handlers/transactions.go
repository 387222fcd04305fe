package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/models"
	"github.com/finboard/finboard-api/internal/services"
	"github.com/finboard/finboard-api/internal/utils"
)

type TransactionsHandler struct {
	transactions *database.TransactionRepo
	users        *database.UserRepo
	ledger       *services.LedgerService
	timeout      time.Duration
}

func NewTransactionsHandler(transactions *database.TransactionRepo, users *database.UserRepo, ledger *services.LedgerService, timeout time.Duration) *TransactionsHandler {
	return &TransactionsHandler{
		transactions: transactions,
		users:        users,
		ledger:       ledger,
		timeout:      timeout,
	}
}

// List returns transactions newest-first with limit/offset pagination
// GET /v1/transactions?limit=50&offset=0
func (h *TransactionsHandler) List(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	transactions, err := h.transactions.ListRecent(ctx, user.ID, limit, offset)
	if err != nil {
		return storeError(err, "transactions")
	}
	total, err := h.transactions.Count(ctx, user.ID)
	if err != nil {
		return storeError(err, "transactions")
	}

	return utils.ListResponse(c, transactions, limit, offset, total)
}

type createTransactionRequest struct {
	AccountID       uuid.UUID           `json:"account_id"`
	CategoryID      *uuid.UUID          `json:"category_id"`
	Type            models.CategoryType `json:"type"`
	Amount          decimal.Decimal     `json:"amount"`
	Description     *string             `json:"description"`
	TransactionDate string              `json:"transaction_date"`
}

// Create inserts a ledger row. The caller supplies a positive amount plus
// an income/expense type; expenses are stored negative. The owning account
// balance moves in the same database transaction.
// POST /v1/transactions
func (h *TransactionsHandler) Create(c fiber.Ctx) error {
	var req createTransactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if req.AccountID == uuid.Nil {
		return utils.NewValidationError("account_id is required", nil)
	}
	if !req.Type.Valid() {
		return utils.NewValidationError("type must be income or expense", req.Type)
	}
	if !req.Amount.IsPositive() {
		return utils.NewValidationError("amount must be greater than zero", req.Amount)
	}

	txDate := time.Now()
	if req.TransactionDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TransactionDate)
		if err != nil {
			return utils.NewValidationError("invalid transaction_date, want YYYY-MM-DD", req.TransactionDate)
		}
		txDate = parsed
	}

	amount := req.Amount.Abs()
	if req.Type == models.CategoryExpense {
		amount = amount.Neg()
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	created, err := h.ledger.AddTransaction(ctx, user.ID, services.TransactionInput{
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Amount:          amount,
		TransactionDate: txDate,
	})
	if err != nil {
		return storeError(err, "account")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

type updateTransactionRequest struct {
	CategoryID      *uuid.UUID          `json:"category_id"`
	Type            models.CategoryType `json:"type"`
	Amount          decimal.Decimal     `json:"amount"`
	Description     *string             `json:"description"`
	TransactionDate string              `json:"transaction_date"`
}

// Update rewrites an existing ledger row. The owning account stays fixed;
// its balance moves by the difference between the new and old amounts.
// PUT /v1/transactions/:id
func (h *TransactionsHandler) Update(c fiber.Ctx) error {
	transactionID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req updateTransactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if !req.Type.Valid() {
		return utils.NewValidationError("type must be income or expense", req.Type)
	}
	if !req.Amount.IsPositive() {
		return utils.NewValidationError("amount must be greater than zero", req.Amount)
	}
	if req.TransactionDate == "" {
		return utils.NewValidationError("transaction_date is required", nil)
	}
	txDate, err := time.Parse("2006-01-02", req.TransactionDate)
	if err != nil {
		return utils.NewValidationError("invalid transaction_date, want YYYY-MM-DD", req.TransactionDate)
	}

	amount := req.Amount.Abs()
	if req.Type == models.CategoryExpense {
		amount = amount.Neg()
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	updated, err := h.ledger.UpdateTransaction(ctx, user.ID, transactionID, services.TransactionUpdate{
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Amount:          amount,
		TransactionDate: txDate,
	})
	if err != nil {
		return storeError(err, "transaction")
	}
	return utils.SuccessResponse(c, updated)
}

// Delete removes a ledger row and backs it out of the account balance
// DELETE /v1/transactions/:id
func (h *TransactionsHandler) Delete(c fiber.Ctx) error {
	transactionID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.ledger.DeleteTransaction(ctx, user.ID, transactionID); err != nil {
		return storeError(err, "transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

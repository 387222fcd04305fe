package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/utils"
)

type AccountsHandler struct {
	accounts *database.AccountRepo
	users    *database.UserRepo
	timeout  time.Duration
}

func NewAccountsHandler(accounts *database.AccountRepo, users *database.UserRepo, timeout time.Duration) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, users: users, timeout: timeout}
}

type accountRequest struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// List returns all accounts of the session user
// GET /v1/accounts
func (h *AccountsHandler) List(c fiber.Ctx) error {
	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	accounts, err := h.accounts.List(ctx, user.ID)
	if err != nil {
		return storeError(err, "accounts")
	}
	return utils.SuccessResponse(c, accounts)
}

// Create adds an account with a seed balance
// POST /v1/accounts
func (h *AccountsHandler) Create(c fiber.Ctx) error {
	var req accountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if req.Name == "" {
		return utils.NewValidationError("name is required", nil)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	acc, err := h.accounts.Create(ctx, user.ID, req.Name, req.Balance)
	if err != nil {
		return storeError(err, "account")
	}
	return c.Status(fiber.StatusCreated).JSON(acc)
}

// Update renames an account or resets its seed balance
// PUT /v1/accounts/:id
func (h *AccountsHandler) Update(c fiber.Ctx) error {
	accountID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req accountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if req.Name == "" {
		return utils.NewValidationError("name is required", nil)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.accounts.Update(ctx, user.ID, accountID, req.Name, req.Balance); err != nil {
		return storeError(err, "account")
	}
	return utils.SuccessResponse(c, fiber.Map{"id": accountID})
}

// Delete removes an account; its transactions cascade
// DELETE /v1/accounts/:id
func (h *AccountsHandler) Delete(c fiber.Ctx) error {
	accountID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.accounts.Delete(ctx, user.ID, accountID); err != nil {
		return storeError(err, "account")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

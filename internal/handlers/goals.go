package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/finance"
	"github.com/finboard/finboard-api/internal/models"
	"github.com/finboard/finboard-api/internal/services"
	"github.com/finboard/finboard-api/internal/utils"
)

type GoalsHandler struct {
	goals   *database.SavingGoalRepo
	users   *database.UserRepo
	ledger  *services.LedgerService
	timeout time.Duration
}

func NewGoalsHandler(goals *database.SavingGoalRepo, users *database.UserRepo, ledger *services.LedgerService, timeout time.Duration) *GoalsHandler {
	return &GoalsHandler{goals: goals, users: users, ledger: ledger, timeout: timeout}
}

type goalResponse struct {
	models.SavingGoal
	Progress float64 `json:"progress"`
}

// List returns the user's goals with derived progress
// GET /v1/saving-goals
func (h *GoalsHandler) List(c fiber.Ctx) error {
	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	goals, err := h.goals.List(ctx, user.ID)
	if err != nil {
		return storeError(err, "saving goals")
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalResponse{SavingGoal: g, Progress: finance.GoalProgress(g)})
	}
	return utils.SuccessResponse(c, out)
}

type goalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

func (r goalRequest) validate() error {
	if r.Name == "" {
		return utils.NewValidationError("name is required", nil)
	}
	if !r.TargetAmount.IsPositive() {
		return utils.NewValidationError("target_amount must be greater than zero", r.TargetAmount)
	}
	return nil
}

// POST /v1/saving-goals
func (h *GoalsHandler) Create(c fiber.Ctx) error {
	var req goalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	goal, err := h.goals.Create(ctx, user.ID, req.Name, req.TargetAmount)
	if err != nil {
		return storeError(err, "saving goal")
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

// PUT /v1/saving-goals/:id
func (h *GoalsHandler) Update(c fiber.Ctx) error {
	goalID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req goalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.goals.Update(ctx, user.ID, goalID, req.Name, req.TargetAmount); err != nil {
		return storeError(err, "saving goal")
	}
	return utils.SuccessResponse(c, fiber.Map{"id": goalID})
}

// DELETE /v1/saving-goals/:id
func (h *GoalsHandler) Delete(c fiber.Ctx) error {
	goalID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.goals.Delete(ctx, user.ID, goalID); err != nil {
		return storeError(err, "saving goal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type addFundsRequest struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// AddFunds moves money into a goal: the goal counter grows and the funding
// account records a matching expense, atomically.
// POST /v1/saving-goals/:id/funds
func (h *GoalsHandler) AddFunds(c fiber.Ctx) error {
	goalID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req addFundsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if req.AccountID == uuid.Nil {
		return utils.NewValidationError("account_id is required", nil)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.ledger.AddFundsToGoal(ctx, user.ID, goalID, req.AccountID, req.Amount, req.Description); err != nil {
		return storeError(err, "saving goal")
	}

	goal, err := h.goals.GetByID(ctx, user.ID, goalID)
	if err != nil {
		return storeError(err, "saving goal")
	}
	return utils.SuccessResponse(c, goalResponse{SavingGoal: *goal, Progress: finance.GoalProgress(*goal)})
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/services"
	"github.com/finboard/finboard-api/internal/utils"
)

type TransfersHandler struct {
	users   *database.UserRepo
	ledger  *services.LedgerService
	timeout time.Duration
}

func NewTransfersHandler(users *database.UserRepo, ledger *services.LedgerService, timeout time.Duration) *TransfersHandler {
	return &TransfersHandler{users: users, ledger: ledger, timeout: timeout}
}

type createTransferRequest struct {
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	TransferDate  string          `json:"transfer_date"`
}

// Create moves money between two accounts: one atomic debit/credit pair
// plus the two signed ledger rows. Same-account transfers are rejected
// before the store is touched.
// POST /v1/transfers
func (h *TransfersHandler) Create(c fiber.Ctx) error {
	var req createTransferRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if req.FromAccountID == uuid.Nil || req.ToAccountID == uuid.Nil {
		return utils.NewValidationError("from_account_id and to_account_id are required", nil)
	}

	transferDate := time.Now()
	if req.TransferDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TransferDate)
		if err != nil {
			return utils.NewValidationError("invalid transfer_date, want YYYY-MM-DD", req.TransferDate)
		}
		transferDate = parsed
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	err = h.ledger.CreateTransfer(ctx, user.ID, req.FromAccountID, req.ToAccountID, req.Amount, req.Description, transferDate)
	if err != nil {
		return storeError(err, "account")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"from_account_id": req.FromAccountID,
		"to_account_id":   req.ToAccountID,
		"amount":          req.Amount,
	})
}

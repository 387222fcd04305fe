package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/utils"
)

type UsersHandler struct {
	users   *database.UserRepo
	timeout time.Duration
}

func NewUsersHandler(users *database.UserRepo, timeout time.Duration) *UsersHandler {
	return &UsersHandler{users: users, timeout: timeout}
}

type syncUserRequest struct {
	ClerkUserID string  `json:"clerk_user_id"`
	Email       string  `json:"email"`
	FullName    *string `json:"full_name"`
}

// Sync creates or refreshes a user row. Called by the auth service's
// webhook when an identity is created or updated; should sit behind a
// webhook secret in production.
// POST /v1/internal/users
func (h *UsersHandler) Sync(c fiber.Ctx) error {
	var req syncUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewValidationError("invalid request body", nil)
	}
	if req.ClerkUserID == "" || req.Email == "" {
		return utils.NewValidationError("clerk_user_id and email are required", nil)
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := h.users.Upsert(ctx, req.ClerkUserID, req.Email, req.FullName)
	if err != nil {
		return storeError(err, "user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Me returns the session user's row
// GET /v1/me
func (h *UsersHandler) Me(c fiber.Ctx) error {
	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user)
}

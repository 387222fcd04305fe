// Package handlers wires the HTTP surface: one handler struct per
// resource, each resolving the session user, enforcing the statement
// timeout and mapping store errors onto the API error taxonomy.
package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/models"
	"github.com/finboard/finboard-api/internal/services"
	"github.com/finboard/finboard-api/internal/utils"
)

// sessionUser resolves the authenticated identity set by the session gate
// to its database row.
func sessionUser(ctx context.Context, c fiber.Ctx, users *database.UserRepo) (*models.User, error) {
	clerkUserID, ok := c.Locals("clerk_user_id").(string)
	if !ok || clerkUserID == "" {
		return nil, utils.NewUnauthorizedError("user not authenticated")
	}

	user, err := users.GetByClerkID(ctx, clerkUserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("user")
		}
		return nil, utils.NewInternalError(err)
	}
	return user, nil
}

// queryCtx derives the bounded context for store calls made on behalf of
// one request.
func queryCtx(c fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), timeout)
}

// parseID parses a path parameter as a UUID
func parseID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, utils.NewValidationError("invalid id", c.Params(name))
	}
	return id, nil
}

// storeError maps repository and service errors onto the API taxonomy
func storeError(err error, resource string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return utils.NewNotFoundError(resource)
	case errors.Is(err, database.ErrBudgetExists):
		return utils.NewConflictError(err.Error())
	case errors.Is(err, services.ErrSameAccount),
		errors.Is(err, services.ErrNonPositiveValue):
		return utils.NewValidationError(err.Error(), nil)
	default:
		return utils.NewInternalError(err)
	}
}

// monthYearParams reads the month/year query pair, defaulting to the
// current calendar month.
func monthYearParams(c fiber.Ctx) (int, int, error) {
	now := time.Now()
	month := now.Month()
	year := now.Year()
	if v := c.Query("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, utils.NewValidationError("invalid month", v)
		}
		month = time.Month(parsed)
	}
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, utils.NewValidationError("invalid year", v)
		}
		year = parsed
	}
	if month < 1 || month > 12 {
		return 0, 0, utils.NewValidationError("month must be between 1 and 12", month)
	}
	if year < 1970 || year > 9999 {
		return 0, 0, utils.NewValidationError("year out of range", year)
	}
	return int(month), year, nil
}

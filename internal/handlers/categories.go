package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/models"
	"github.com/finboard/finboard-api/internal/utils"
)

type CategoriesHandler struct {
	categories *database.CategoryRepo
	users      *database.UserRepo
	timeout    time.Duration
}

func NewCategoriesHandler(categories *database.CategoryRepo, users *database.UserRepo, timeout time.Duration) *CategoriesHandler {
	return &CategoriesHandler{categories: categories, users: users, timeout: timeout}
}

type categoryRequest struct {
	Name string              `json:"name"`
	Type models.CategoryType `json:"type"`
}

func (r categoryRequest) validate() error {
	if r.Name == "" {
		return utils.NewValidationError("name is required", nil)
	}
	if !r.Type.Valid() {
		return utils.NewValidationError("type must be income or expense", r.Type)
	}
	return nil
}

// List returns categories, optionally filtered by ?type=income|expense
// GET /v1/categories
func (h *CategoriesHandler) List(c fiber.Ctx) error {
	var typeFilter *models.CategoryType
	if v := c.Query("type"); v != "" {
		t := models.CategoryType(v)
		if !t.Valid() {
			return utils.NewValidationError("type must be income or expense", v)
		}
		typeFilter = &t
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	categories, err := h.categories.List(ctx, user.ID, typeFilter)
	if err != nil {
		return storeError(err, "categories")
	}
	return utils.SuccessResponse(c, categories)
}

// POST /v1/categories
func (h *CategoriesHandler) Create(c fiber.Ctx) error {
	var req categoryRequest
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

	cat, err := h.categories.Create(ctx, user.ID, req.Name, req.Type)
	if err != nil {
		return storeError(err, "category")
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT /v1/categories/:id
func (h *CategoriesHandler) Update(c fiber.Ctx) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req categoryRequest
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

	if err := h.categories.Update(ctx, user.ID, categoryID, req.Name, req.Type); err != nil {
		return storeError(err, "category")
	}
	return utils.SuccessResponse(c, fiber.Map{"id": categoryID})
}

// Delete removes a category. Transactions that referenced it keep their
// rows with a nulled category; budgets on it are removed.
// DELETE /v1/categories/:id
func (h *CategoriesHandler) Delete(c fiber.Ctx) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := queryCtx(c, h.timeout)
	defer cancel()

	user, err := sessionUser(ctx, c, h.users)
	if err != nil {
		return err
	}

	if err := h.categories.Delete(ctx, user.ID, categoryID); err != nil {
		return storeError(err, "category")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

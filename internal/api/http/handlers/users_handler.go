package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-management/internal/api/dto"
	"github.com/spec-kit/store-management/internal/domain"
	"github.com/spec-kit/store-management/internal/service"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

// UsersHandler exposes admin-only user administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.users.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserToResponse(user)})
}

// GetByUsername handles GET /api/users/username/:username.
func (h *UsersHandler) GetByUsername(c *fiber.Ctx) error {
	user, err := h.users.FindByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserToResponse(user)})
}

// ListByRole handles GET /api/users/role/:role.
func (h *UsersHandler) ListByRole(c *fiber.Ctx) error {
	users, err := h.users.ListByRole(c.UserContext(), domain.Role(c.Params("role")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsersToResponse(users)})
}

// ListActive handles GET /api/users/active and GET /api/users.
func (h *UsersHandler) ListActive(c *fiber.Ctx) error {
	users, err := h.users.ListEnabled(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsersToResponse(users)})
}

// UpdateRole handles PUT /api/users/:id/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Role == "" {
		return apperrors.NewValidationError("role is required", nil)
	}

	user, err := h.users.UpdateRole(c.UserContext(), id, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserToResponse(user)})
}

// Enable handles PUT /api/users/:id/enable.
func (h *UsersHandler) Enable(c *fiber.Ctx) error {
	return h.setEnabled(c, true)
}

// Disable handles PUT /api/users/:id/disable.
func (h *UsersHandler) Disable(c *fiber.Ctx) error {
	return h.setEnabled(c, false)
}

func (h *UsersHandler) setEnabled(c *fiber.Ctx, enabled bool) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.users.SetEnabled(c.UserContext(), id, enabled)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserToResponse(user)})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

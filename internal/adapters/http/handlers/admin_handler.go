package handlers

import (
	"libapp/internal/core/services"
	"libapp/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles owner-only maintenance endpoints
type AdminHandler struct {
	seeder *services.SeedService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(seeder *services.SeedService) *AdminHandler {
	return &AdminHandler{seeder: seeder}
}

// Seed re-runs the baseline seed. Non-empty tables are left as they are.
// @Summary Run seed
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /admin/seed [post]
func (h *AdminHandler) Seed(c *fiber.Ctx) error {
	report, err := h.seeder.Initialize(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Seed failed: "+err.Error())
	}

	return response.Success(c, "Seed completed", report)
}

package handlers

import (
	"errors"

	"libapp/internal/core/services"
	"libapp/internal/pkg/pagination"
	"libapp/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles customer management endpoints
type CustomerHandler struct {
	identity *services.IdentityService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(identity *services.IdentityService) *CustomerHandler {
	return &CustomerHandler{identity: identity}
}

// ListCustomers lists all customers
// @Summary List customers
// @Description List customers with their roles (store manager or owner)
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	customers, meta, err := h.identity.ListCustomers(c.UserContext(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Paginated(c, "Customers retrieved successfully", customers, meta)
}

// GetCustomer gets a customer by ID
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	customer, err := h.identity.GetCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to get customer")
	}

	return response.Success(c, "Customer retrieved successfully", customer.ToResponse())
}

// ListRoles lists all roles
// @Summary List roles
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /roles [get]
func (h *CustomerHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.identity.ListRoles(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to list roles")
	}

	return response.Success(c, "Roles retrieved successfully", fiber.Map{
		"roles": roles,
	})
}

package handlers

import (
	"errors"
	"strconv"

	"libapp/internal/core/domain"
	"libapp/internal/core/services"
	"libapp/internal/pkg/pagination"
	"libapp/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles lookup and book endpoints
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ============================================================
// Lookups
// ============================================================

// ListMembershipTypes lists all membership tiers
// @Summary List membership types
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response
// @Router /membership-types [get]
func (h *CatalogHandler) ListMembershipTypes(c *fiber.Ctx) error {
	membershipTypes, err := h.catalog.ListMembershipTypes(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to list membership types")
	}

	return response.Success(c, "Membership types retrieved successfully", fiber.Map{
		"membership_types": membershipTypes,
	})
}

// ListGenres lists all genres
// @Summary List genres
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response
// @Router /genres [get]
func (h *CatalogHandler) ListGenres(c *fiber.Ctx) error {
	genres, err := h.catalog.ListGenres(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to list genres")
	}

	return response.Success(c, "Genres retrieved successfully", fiber.Map{
		"genres": genres,
	})
}

// ============================================================
// Books
// ============================================================

// ListBooks lists books with pagination
// @Summary List books
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param genre_id query int false "Filter by genre"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /books [get]
func (h *CatalogHandler) ListBooks(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var genreID uint
	if raw := c.Query("genre_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid genre ID")
		}
		genreID = uint(id)
	}

	books, meta, err := h.catalog.ListBooks(c.UserContext(), &services.ListBooksInput{
		GenreID: genreID,
		Page:    params.Page,
		Limit:   params.Limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Paginated(c, "Books retrieved successfully", books, meta)
}

// GetBook gets a book by ID
// @Summary Get book
// @Tags Catalog
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *CatalogHandler) GetBook(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.catalog.GetBook(c.UserContext(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", book)
}

package routes

import (
	"time"

	"libapp/internal/adapters/http/handlers"
	"libapp/internal/adapters/http/middleware"
	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/config"
	"libapp/internal/core/domain"
	"libapp/internal/core/services"
	"libapp/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// lookupCacheAge is how long clients may cache lookup lists
const lookupCacheAge = 10 * time.Minute

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, seeder *services.SeedService, log *logger.Logger) {
	// Initialize repositories
	customerRepo := repositories.NewCustomerRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	membershipTypeRepo := repositories.NewMembershipTypeRepository(db)
	genreRepo := repositories.NewGenreRepository(db)
	bookRepo := repositories.NewBookRepository(db)

	// Initialize services
	identityService := services.NewIdentityService(customerRepo, roleRepo, refreshTokenRepo, membershipTypeRepo, cfg, log)
	catalogService := services.NewCatalogService(membershipTypeRepo, genreRepo, bookRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(identityService, cfg)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	customerHandler := handlers.NewCustomerHandler(identityService)
	adminHandler := handlers.NewAdminHandler(seeder)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes
	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Catalog routes (public)
	setupCatalogRoutes(apiV1, catalogHandler)

	// Customer routes (store manager or owner)
	staffOnly := middleware.RoleMiddleware(domain.RoleStoreManager, domain.RoleOwner)
	customerRoutes := apiV1.Group("/customers", middleware.AuthMiddleware(cfg), staffOnly)
	setupCustomerRoutes(customerRoutes, customerHandler)
	apiV1.Get("/roles", middleware.AuthMiddleware(cfg), staffOnly, customerHandler.ListRoles)

	// Admin routes (owner only)
	adminRoutes := apiV1.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(domain.RoleOwner))
	adminRoutes.Post("/seed", middleware.StrictRateLimiter(), adminHandler.Seed)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupCatalogRoutes configures lookup and book routes
func setupCatalogRoutes(router fiber.Router, handler *handlers.CatalogHandler) {
	cache := middleware.CacheControl(lookupCacheAge)

	router.Get("/membership-types", cache, handler.ListMembershipTypes)
	router.Get("/genres", cache, handler.ListGenres)
	router.Get("/books", handler.ListBooks)
	router.Get("/books/:id", handler.GetBook)
}

// setupCustomerRoutes configures customer routes
func setupCustomerRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	router.Get("/", handler.ListCustomers)
	router.Get("/:id", handler.GetCustomer)
}

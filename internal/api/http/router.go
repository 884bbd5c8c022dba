package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-management/internal/api/http/handlers"
	"github.com/spec-kit/store-management/internal/auth"
)

// PublicPaths lists path prefixes that bypass the authentication gate.
// Enumerated explicitly rather than inferred from routing.
var PublicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/health",
	"/error",
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.Middleware
	Policy         *auth.Policy
}

// RegisterRoutes wires HTTP routes. The authentication gate runs on every
// request; the policy runs on the protected API groups after it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	products := app.Group("/api/products", cfg.Policy.Enforce)
	products.Get("/search", cfg.Products.Search)
	products.Get("/available", cfg.Products.Available)
	products.Get("/category/:category", cfg.Products.ByCategory)
	products.Get("/:id", cfg.Products.Get)
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Put("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)

	users := app.Group("/api/users", cfg.Policy.Enforce)
	users.Get("/active", cfg.Users.ListActive)
	users.Get("/username/:username", cfg.Users.GetByUsername)
	users.Get("/role/:role", cfg.Users.ListByRole)
	users.Get("/:id", cfg.Users.Get)
	users.Get("/", cfg.Users.ListActive)
	users.Put("/:id/role", cfg.Users.UpdateRole)
	users.Put("/:id/enable", cfg.Users.Enable)
	users.Put("/:id/disable", cfg.Users.Disable)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	LoginPath      string
	Health         *handlers.HealthHandler
	Login          *auth.AuthenticationStage
	AuthMiddleware *auth.AuthMiddleware
	Customers      *handlers.CustomersHandler
	Books          *handlers.BooksHandler
	Purchases      *handlers.PurchasesHandler
	Admin          *handlers.AdminHandler
}

// RegisterRoutes wires HTTP routes. Every route after the health probes
// passes through the authorization stage; each route's guard decides whether
// an anonymous caller may proceed.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.AuthMiddleware.Handle)

	app.Post(cfg.LoginPath, cfg.Login.Handle)

	customers := app.Group("/customers")
	customers.Post("", cfg.Customers.Register)
	customers.Get("", auth.RequireAuthenticated(), cfg.Customers.List)
	customers.Get("/:id", auth.RequireSelfOrAdmin("id"), cfg.Customers.Get)
	customers.Put("/:id", auth.RequireSelfOrAdmin("id"), cfg.Customers.Update)
	customers.Delete("/:id", auth.RequireSelfOrAdmin("id"), cfg.Customers.Delete)

	books := app.Group("/books", auth.RequireAuthenticated())
	books.Get("", cfg.Books.List)
	books.Get("/active", cfg.Books.ListActive)
	books.Get("/:id", cfg.Books.Get)
	books.Post("", cfg.Books.Create)
	books.Put("/:id", cfg.Books.Update)
	books.Delete("/:id", cfg.Books.Delete)

	purchases := app.Group("/purchases", auth.RequireAuthenticated())
	purchases.Post("", cfg.Purchases.Create)

	admin := app.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/reports", cfg.Admin.Report)
}

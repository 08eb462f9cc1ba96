package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plotmarket/plot-service/internal/api/http/handlers"
	"github.com/plotmarket/plot-service/internal/auth"
	"github.com/plotmarket/plot-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Listings       *handlers.ListingsHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Protected groups always pass through the
// access guard before any role gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/profile", cfg.Auth.Profile)
	authProtected.Put("/profile", cfg.Auth.UpdateProfile)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	listings := app.Group("/listings")
	listings.Get("/", cfg.Listings.List)
	listings.Post("/", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSeller), cfg.Listings.Create)
	listings.Get("/my", cfg.AuthMiddleware.Handle, cfg.Listings.ListMine)
	listings.Get("/:id", cfg.Listings.Get)
	listings.Patch("/:id", cfg.AuthMiddleware.Handle, cfg.Listings.Update)
	listings.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Listings.Delete)
	listings.Patch("/:id/status", cfg.AuthMiddleware.Handle, cfg.Listings.UpdateStatus)

	uploads := app.Group("/uploads", cfg.AuthMiddleware.Handle)
	uploads.Post("/listings", cfg.Uploads.UploadListingImages)
}

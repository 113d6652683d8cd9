package router

import (
	"github.com/gamehaven/GameHaven/app/controllers"
	"github.com/gamehaven/GameHaven/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", loggedInMiddleware, controllers.HandleIndex)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/billing", controllers.HandleBillingWebhook)

	// Scheduler-driven subscription reconciliation (bearer key auth)
	app.Post("/sync/subscriptions", controllers.HandleSubscriptionSync)
}

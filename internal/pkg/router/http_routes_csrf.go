package router

import (
	"strings"
	"time"

	"github.com/gamehaven/GameHaven/app/controllers"
	"github.com/gamehaven/GameHaven/internal/pkg/env"
	"github.com/gamehaven/GameHaven/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			// API routes use session/bearer auth, webhooks are signature
			// verified and the provider return URL cannot carry a token.
			return strings.HasPrefix(c.Path(), "/api/") ||
				strings.HasPrefix(c.Path(), "/webhooks/") ||
				strings.HasPrefix(c.Path(), "/sync/") ||
				c.Path() == "/checkout/complete"
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)

	// Subscription checkout
	group.Post("/checkout", middleware.RequireAuth, controllers.HandleCheckoutStart)
	group.Get("/checkout/complete", middleware.RequireAuth, controllers.HandleCheckoutComplete)
}

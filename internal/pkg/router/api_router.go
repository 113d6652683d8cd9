package router

import (
	"github.com/gamehaven/GameHaven/app/controllers"
	"github.com/gamehaven/GameHaven/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Game catalogue
	v1.Get("/games", controllers.HandleListGames)
	v1.Get("/games/:slug", controllers.HandleViewGame)
	v1.Get("/games/:slug/play", controllers.HandlePlayGame)

	// Authenticated user surface
	user := v1.Group("/user", middleware.RequireAPISessionAuth)
	user.Get("/subscription", controllers.HandleGetUserSubscription)
	user.Get("/suggestions", controllers.HandleListOwnSuggestions)
	user.Post("/suggestions", controllers.HandleCreateSuggestion)

	// Catalogue administration
	admin := v1.Group("/admin", middleware.RequireAPISessionAuth)
	admin.Post("/games", controllers.HandleAdminCreateGame)
	admin.Put("/games/:id", controllers.HandleAdminUpdateGame)
	admin.Delete("/games/:id", controllers.HandleAdminDeleteGame)
	admin.Get("/suggestions", controllers.HandleAdminListSuggestions)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

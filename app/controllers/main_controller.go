package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gamehaven/GameHaven/internal/pkg/env"
	"github.com/gamehaven/GameHaven/internal/pkg/session"
	"github.com/gamehaven/GameHaven/internal/pkg/statistics"
	"github.com/gamehaven/GameHaven/internal/pkg/usercontext"
	"github.com/gamehaven/GameHaven/internal/pkg/utils"
)

// HandleIndex reports service identity, portal counters and the caller's
// session state.
func HandleIndex(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	appENV := env.GetEnv("APP_ENV", "prod")
	stats := statistics.GetStatisticsData()

	payload := fiber.Map{
		"name": "GameHaven",
		"env":  appENV,
		"stats": fiber.Map{
			"users":                stats.TotalUsers,
			"games":                stats.TotalGames,
			"active_subscriptions": stats.ActiveSubscriptions,
		},
	}
	if userCtx.IsLoggedIn {
		payload["username"] = userCtx.Username
		payload["plan"] = userCtx.Plan
		if email := session.GetSessionValue(c, "user_email"); email != "" {
			payload["avatar"] = utils.GetGravatarURL(email, 80)
		}
	}
	return c.JSON(payload)
}

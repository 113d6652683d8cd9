package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/app/repository"
	"github.com/gamehaven/GameHaven/internal/pkg/metrics/counter"
	"github.com/gamehaven/GameHaven/internal/pkg/plans"
	"github.com/gamehaven/GameHaven/internal/pkg/session"
	"github.com/gamehaven/GameHaven/internal/pkg/usercontext"
)

const gamesPageSize = 50

// HandleListGames returns the catalogue. Premium entries are included for
// everyone so the frontend can upsell, with a locked flag for free users.
func HandleListGames(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * gamesPageSize

	repo := repository.GetGlobalFactory().GetGameRepository()

	var (
		games []models.Game
		err   error
	)
	if query := c.Query("q"); query != "" {
		games, err = repo.Search(query)
	} else {
		games, err = repo.List(offset, gamesPageSize)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load games"})
	}

	premium := sessionPlanAllowsPremium(c)
	items := make([]fiber.Map, 0, len(games))
	for _, g := range games {
		items = append(items, fiber.Map{
			"id":         g.ID,
			"title":      g.Title,
			"slug":       g.Slug,
			"is_premium": g.IsPremium,
			"locked":     g.IsPremium && !premium,
			"play_count": g.PlayCount,
		})
	}

	return c.JSON(fiber.Map{"page": page, "games": items})
}

// HandlePlayGame returns the embed data for one game. Premium games require
// an entitled subscription.
func HandlePlayGame(c *fiber.Ctx) error {
	slug := c.Params("slug")
	repo := repository.GetGlobalFactory().GetGameRepository()

	game, err := repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load game"})
	}

	if game.IsPremium && !sessionPlanAllowsPremium(c) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "premium_required", "message": "This game requires an active subscription"})
	}

	if err := counter.AddGamePlay(game.ID); err != nil {
		log.Printf("play counter for game %d: %v", game.ID, err)
	}

	return c.JSON(fiber.Map{
		"id":          game.ID,
		"title":       game.Title,
		"slug":        game.Slug,
		"description": game.Description,
		"embed_url":   game.EmbedURL,
		"is_premium":  game.IsPremium,
	})
}

// HandleViewGame records a detail page view.
func HandleViewGame(c *fiber.Ctx) error {
	slug := c.Params("slug")
	repo := repository.GetGlobalFactory().GetGameRepository()

	game, err := repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load game"})
	}

	if err := counter.AddGameView(game.ID); err != nil {
		log.Printf("view counter for game %d: %v", game.ID, err)
	}

	return c.JSON(fiber.Map{
		"id":          game.ID,
		"title":       game.Title,
		"slug":        game.Slug,
		"description": game.Description,
		"is_premium":  game.IsPremium,
		"play_count":  game.PlayCount,
		"view_count":  game.ViewCount,
	})
}

// sessionPlanAllowsPremium reads the cached plan from the session. The cache
// is refreshed on login, checkout and webhook-driven plan changes land on the
// next login or API subscription fetch.
func sessionPlanAllowsPremium(c *fiber.Ctx) bool {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return false
	}
	name := session.GetSessionValue(c, "user_plan")
	return plans.AllowsPremiumGames(plans.Normalize(name))
}

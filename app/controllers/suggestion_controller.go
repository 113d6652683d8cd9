package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/app/repository"
	"github.com/gamehaven/GameHaven/internal/pkg/usercontext"
)

// A user may submit at most this many suggestions per day.
const suggestionDailyLimit = 5

// HandleCreateSuggestion accepts a game suggestion from a logged-in user.
func HandleCreateSuggestion(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var input struct {
		GameName        string `json:"game_name" form:"game_name"`
		GameURL         string `json:"game_url" form:"game_url"`
		GameDescription string `json:"game_description" form:"game_description"`
		GameReason      string `json:"game_reason" form:"game_reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": "Could not parse request body"})
	}

	repo := repository.GetGlobalFactory().GetSuggestionRepository()

	recent, err := repo.CountByUserIDSince(userCtx.UserID, 24)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check submission limit"})
	}
	if recent >= suggestionDailyLimit {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited", "message": "Suggestion limit reached, try again tomorrow"})
	}

	suggestion, err := models.NewGameSuggestion(userCtx.UserID, input.GameName, input.GameURL, input.GameDescription, input.GameReason)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	if err := repo.Create(suggestion); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store suggestion"})
	}

	return c.Status(fiber.StatusCreated).JSON(suggestion)
}

// HandleListOwnSuggestions returns the user's submitted suggestions.
func HandleListOwnSuggestions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetSuggestionRepository()
	suggestions, err := repo.GetByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load suggestions"})
	}
	return c.JSON(fiber.Map{"suggestions": suggestions})
}

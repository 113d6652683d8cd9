package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/app/repository"
	"github.com/gamehaven/GameHaven/internal/pkg/usercontext"
)

// HandleAdminCreateGame adds a game to the catalogue.
func HandleAdminCreateGame(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	var game models.Game
	if err := c.BodyParser(&game); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": "Could not parse request body"})
	}
	game.ID = 0
	game.Slug = normalizeSlug(game.Slug)
	if game.Slug == "" {
		game.Slug = normalizeSlug(game.Title)
	}

	if err := validator.New().Struct(&game); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetGameRepository()
	taken, err := repo.SlugExists(game.Slug)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check slug"})
	}
	if taken {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "slug_taken", "message": "A game with this slug already exists"})
	}

	if err := repo.Create(&game); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store game"})
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

// HandleAdminUpdateGame updates catalogue metadata.
func HandleAdminUpdateGame(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	repo := repository.GetGlobalFactory().GetGameRepository()
	game, err := repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load game"})
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		EmbedURL    *string `json:"embed_url"`
		IsPremium   *bool   `json:"is_premium"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": "Could not parse request body"})
	}

	if input.Title != nil {
		game.Title = *input.Title
	}
	if input.Description != nil {
		game.Description = *input.Description
	}
	if input.EmbedURL != nil {
		game.EmbedURL = *input.EmbedURL
	}
	if input.IsPremium != nil {
		game.IsPremium = *input.IsPremium
	}

	if err := validator.New().Struct(game); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repo.Update(game); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update game"})
	}
	return c.JSON(game)
}

// HandleAdminDeleteGame removes a game from the catalogue.
func HandleAdminDeleteGame(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	repo := repository.GetGlobalFactory().GetGameRepository()
	if err := repo.Delete(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete game"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleAdminListSuggestions returns submitted game suggestions, newest
// first.
func HandleAdminListSuggestions(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * gamesPageSize

	repo := repository.GetGlobalFactory().GetSuggestionRepository()
	suggestions, err := repo.List(offset, gamesPageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load suggestions"})
	}
	return c.JSON(fiber.Map{"page": page, "suggestions": suggestions})
}

// normalizeSlug lowercases and hyphenates a candidate slug.
func normalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

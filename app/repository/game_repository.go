package repository

import (
	"strings"

	"github.com/gamehaven/GameHaven/app/models"
	"gorm.io/gorm"
)

// gameRepository implements the GameRepository interface
type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository creates a new game repository instance
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

// Create adds a new game to the catalogue
func (r *gameRepository) Create(game *models.Game) error {
	return r.db.Create(game).Error
}

// GetByID retrieves a game by its ID
func (r *gameRepository) GetByID(id uint) (*models.Game, error) {
	var game models.Game
	err := r.db.First(&game, id).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetBySlug retrieves a game by its URL slug
func (r *gameRepository) GetBySlug(slug string) (*models.Game, error) {
	var game models.Game
	err := r.db.Where("slug = ?", slug).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// List retrieves a paginated list of the full catalogue
func (r *gameRepository) List(offset, limit int) ([]models.Game, error) {
	var games []models.Game
	err := r.db.Order("title ASC").Offset(offset).Limit(limit).Find(&games).Error
	return games, err
}

// ListFree retrieves only the games available without a subscription
func (r *gameRepository) ListFree(offset, limit int) ([]models.Game, error) {
	var games []models.Game
	err := r.db.Where("is_premium = ?", false).
		Order("title ASC").Offset(offset).Limit(limit).Find(&games).Error
	return games, err
}

// Update updates an existing game
func (r *gameRepository) Update(game *models.Game) error {
	return r.db.Save(game).Error
}

// Delete removes a game from the catalogue
func (r *gameRepository) Delete(id uint) error {
	return r.db.Delete(&models.Game{}, id).Error
}

// Count returns the total number of games
func (r *gameRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Game{}).Count(&count).Error
	return count, err
}

// Search searches for games by title
func (r *gameRepository) Search(query string) ([]models.Game, error) {
	var games []models.Game
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("title LIKE ?", searchPattern).Order("title ASC").Find(&games).Error
	return games, err
}

// SlugExists checks if a slug is already taken
func (r *gameRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Game{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

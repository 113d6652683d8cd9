package repository

import (
	"github.com/gamehaven/GameHaven/app/models"
	"gorm.io/gorm"
)

// suggestionRepository implements the SuggestionRepository interface
type suggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository creates a new suggestion repository instance
func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

// Create stores a new game suggestion
func (r *suggestionRepository) Create(suggestion *models.GameSuggestion) error {
	return r.db.Create(suggestion).Error
}

// GetByID retrieves a suggestion by its ID
func (r *suggestionRepository) GetByID(id string) (*models.GameSuggestion, error) {
	var suggestion models.GameSuggestion
	err := r.db.Where("id = ?", id).First(&suggestion).Error
	if err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// GetByUserID retrieves all suggestions submitted by a user
func (r *suggestionRepository) GetByUserID(userID uint) ([]models.GameSuggestion, error) {
	var suggestions []models.GameSuggestion
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&suggestions).Error
	return suggestions, err
}

// List retrieves a paginated list of all suggestions, newest first
func (r *suggestionRepository) List(offset, limit int) ([]models.GameSuggestion, error) {
	var suggestions []models.GameSuggestion
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&suggestions).Error
	return suggestions, err
}

// Delete removes a suggestion
func (r *suggestionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.GameSuggestion{}).Error
}

// Count returns the total number of suggestions
func (r *suggestionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.GameSuggestion{}).Count(&count).Error
	return count, err
}

// CountByUserIDSince counts a user's suggestions within the last N hours,
// used for submission rate limiting.
func (r *suggestionRepository) CountByUserIDSince(userID uint, hours int) (int64, error) {
	var count int64
	err := r.db.Model(&models.GameSuggestion{}).
		Where("user_id = ? AND created_at > DATE_SUB(NOW(), INTERVAL ? HOUR)", userID, hours).
		Count(&count).Error
	return count, err
}

package repository

import (
	"github.com/gamehaven/GameHaven/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// GameRepository defines the interface for catalogue operations
type GameRepository interface {
	Create(game *models.Game) error
	GetByID(id uint) (*models.Game, error)
	GetBySlug(slug string) (*models.Game, error)
	List(offset, limit int) ([]models.Game, error)
	ListFree(offset, limit int) ([]models.Game, error)
	Update(game *models.Game) error
	Delete(id uint) error
	Count() (int64, error)
	Search(query string) ([]models.Game, error)
	SlugExists(slug string) (bool, error)
}

// SuggestionRepository defines the interface for game suggestion operations
type SuggestionRepository interface {
	Create(suggestion *models.GameSuggestion) error
	GetByID(id string) (*models.GameSuggestion, error)
	GetByUserID(userID uint) ([]models.GameSuggestion, error)
	List(offset, limit int) ([]models.GameSuggestion, error)
	Delete(id string) error
	Count() (int64, error)
	CountByUserIDSince(userID uint, hours int) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Game       GameRepository
	Suggestion SuggestionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Game:       NewGameRepository(db),
		Suggestion: NewSuggestionRepository(db),
	}
}

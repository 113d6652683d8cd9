package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// GameSuggestion is a user-submitted request to add a game to the catalogue.
type GameSuggestion struct {
	ID              string    `gorm:"primaryKey;type:char(36)" json:"id"`
	GameName        string    `gorm:"type:varchar(150);not null" json:"game_name" validate:"required,min=2,max=150"`
	GameURL         string    `gorm:"type:varchar(255);not null" json:"game_url" validate:"required,url,max=255"`
	GameDescription string    `gorm:"type:text;not null" json:"game_description" validate:"required,max=2000"`
	GameReason      string    `gorm:"type:text;not null" json:"game_reason" validate:"required,max=2000"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func NewGameSuggestion(userID uint, name, url, description, reason string) (*GameSuggestion, error) {
	s := &GameSuggestion{
		ID:              uuid.NewString(),
		GameName:        name,
		GameURL:         url,
		GameDescription: description,
		GameReason:      reason,
		UserID:          userID,
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, err
	}
	return s, nil
}

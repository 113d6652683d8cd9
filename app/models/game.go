package models

import "time"

// Game is a catalogue entry. Play/view counters are buffered in Redis and
// flushed in batches, so the columns here can lag slightly behind.
type Game struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(150);not null" json:"title" validate:"required,min=2,max=150"`
	Slug        string    `gorm:"uniqueIndex;type:varchar(150);not null" json:"slug" validate:"required,min=2,max=150"`
	Description string    `gorm:"type:text" json:"description"`
	EmbedURL    string    `gorm:"type:varchar(255)" json:"embed_url" validate:"max=255"`
	IsPremium   bool      `gorm:"default:false;index" json:"is_premium"`
	PlayCount   uint64    `gorm:"default:0" json:"play_count"`
	ViewCount   uint64    `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

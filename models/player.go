package models

import (
	"time"

	"gorm.io/gorm"
)

type Player struct {
	ID        string         `json:"player_id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Handicap  *int           `json:"handicap"` // nil means no handicap adjustment
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

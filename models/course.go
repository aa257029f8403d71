package models

import (
	"time"

	"gorm.io/gorm"
)

// HolesPerRound is the fixed length of every pars/scores vector.
const HolesPerRound = 18

type Course struct {
	ID          string         `json:"course_id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Pars        []int          `json:"pars" gorm:"serializer:json"` // 18 entries, each >= 1
	TripRoundID *int           `json:"trip_round_id"`               // ordering key among courses, nil sorts last
	IsActive    bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// ParAt returns the par for a hole, or 0 when the pars vector is missing
// or too short (placeholder courses loaded after a failed lookup).
func (c *Course) ParAt(hole int) int {
	if c == nil || hole < 0 || hole >= len(c.Pars) {
		return 0
	}
	return c.Pars[hole]
}

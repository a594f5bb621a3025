package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account identified by phone number. Reproductive status lives in
// the tracker module's status_profiles table, keyed by the user ID.
type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Phone             string         `gorm:"not null;size:32;uniqueIndex" json:"phone"`
	Password          string         `gorm:"not null" json:"-"`
	Name              string         `gorm:"size:100;not null" json:"name"`
	Role              string         `gorm:"size:20;default:'user'" json:"role"`
	HeightCm          string         `gorm:"size:10" json:"height_cm"`
	WeightKg          string         `gorm:"size:10" json:"weight_kg"`
	ChronicDiseases   string         `gorm:"type:text" json:"chronic_diseases"`
	PreviousSurgeries string         `gorm:"type:text" json:"previous_surgeries"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

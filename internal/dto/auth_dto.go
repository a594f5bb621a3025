package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the signup form: credentials plus the demographic fields
// that seed the user's status profile.
type RegisterRequest struct {
	Phone             string `json:"phone"`
	Password          string `json:"password"`
	Name              string `json:"name"`
	BirthDate         string `json:"birth_date"` // YYYY-MM-DD
	MaritalStatus     string `json:"marital_status"`
	MotherhoodStatus  string `json:"motherhood_status"`
	HeightCm          string `json:"height_cm"`
	WeightKg          string `json:"weight_kg"`
	ChronicDiseases   string `json:"chronic_diseases"`
	PreviousSurgeries string `json:"previous_surgeries"`
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Modules   int    `json:"modules"`
}

package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/config"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
	"github.com/nestgirl/nestgirl-backend/internal/models"
	"github.com/nestgirl/nestgirl-backend/internal/modules/tracker"
	"github.com/nestgirl/nestgirl-backend/internal/status"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrInvalidPhone       = errors.New("phone number must contain 7 to 15 digits")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidBirthDate   = errors.New("birth date must be a past date in YYYY-MM-DD format")
	ErrInvalidMarital     = errors.New("marital status must be single or married")
	ErrInvalidMotherhood  = errors.New("motherhood status must be none, pregnant, not_pregnant or mother")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	clock status.Clock
	cal   status.Calendar
}

// NewAuthService judges signup dates with clock in cal's zone, the same day
// boundaries the status engine uses.
func NewAuthService(db *gorm.DB, cfg *config.Config, clock status.Clock, cal status.Calendar) *AuthService {
	if clock == nil {
		clock = status.SystemClock{}
	}
	return &AuthService{db: db, cfg: cfg, clock: clock, cal: cal}
}

// Register creates the account and its status profile in one transaction.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	profile, err := SignupProfile(req, s.today())
	if err != nil {
		return nil, err
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&existing).Error; err == nil {
		return nil, ErrPhoneTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:                uuid.New(),
		Phone:             phone,
		Password:          string(hash),
		Name:              name,
		Role:              "user",
		HeightCm:          strings.TrimSpace(req.HeightCm),
		WeightKg:          strings.TrimSpace(req.WeightKg),
		ChronicDiseases:   strings.TrimSpace(req.ChronicDiseases),
		PreviousSurgeries: strings.TrimSpace(req.PreviousSurgeries),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		profile.Version = 1
		return tracker.NewGormStore(tx).Save(ctx, user.ID, profile)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID.String(), "motherhood_status", string(profile.MotherhoodStatus))
	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair
// issued. A token presented after rotation revokes every session of its user.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	now := s.clock.Now()

	var stored models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(req.RefreshToken)).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if stored.RevokedAt != nil {
		slog.Warn("revoked refresh token reused, revoking all sessions", "user_id", stored.UserID.String())
		if err := s.revokeAll(ctx, stored.UserID, now); err != nil {
			slog.Error("session revocation failed", "user_id", stored.UserID.String(), "error", err.Error())
		}
		return nil, ErrInvalidToken
	}
	if !stored.Active(now) {
		return nil, ErrInvalidToken
	}

	// the conditional update makes concurrent rotations of one token race to a single winner
	res := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", stored.ID).
		Update("revoked_at", now)
	if res.Error != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, req *dto.LogoutRequest) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND user_id = ? AND revoked_at IS NULL", hashToken(req.RefreshToken), userID).
		Update("revoked_at", s.clock.Now()).Error
}

func (s *AuthService) revokeAll(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

// DeleteAccount removes the user with their status profile and refresh tokens.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tracker.NewGormStore(tx).Delete(ctx, userID); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("account deleted", "user_id", userID.String())
	return nil
}

// NormalizePhone strips formatting and keeps an optional leading "+".
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case unicode.IsDigit(r):
			b.WriteRune(r)
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}
	if digits < 7 || digits > 15 {
		return "", ErrInvalidPhone
	}
	return b.String(), nil
}

func (s *AuthService) today() status.Date {
	return s.cal.Today(s.clock.Now())
}

// SignupProfile builds the pre-intake status profile from the signup form.
// The birth date must fall before today.
func SignupProfile(req *dto.RegisterRequest, today status.Date) (status.Profile, error) {
	birth, err := status.ParseDate(strings.TrimSpace(req.BirthDate))
	if err != nil || !birth.Before(today) {
		return status.Profile{}, ErrInvalidBirthDate
	}

	marital := status.MaritalStatus(strings.TrimSpace(req.MaritalStatus))
	if marital == "" {
		marital = status.MaritalSingle
	}
	if !marital.Valid() {
		return status.Profile{}, ErrInvalidMarital
	}

	motherhood := status.MotherhoodStatus(strings.TrimSpace(req.MotherhoodStatus))
	if motherhood == "" {
		motherhood = status.MotherhoodNone
	}
	if !motherhood.Valid() {
		return status.Profile{}, ErrInvalidMotherhood
	}

	return status.NewProfile(marital, motherhood, birth), nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         ToUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"phone": user.Phone,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.clock.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Phone:     user.Phone,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

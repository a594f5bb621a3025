package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("status profile not found")

// ProfileStore loads and saves one status profile per user.
type ProfileStore interface {
	Load(ctx context.Context, userID uuid.UUID) (status.Profile, error)
	Save(ctx context.Context, userID uuid.UUID, p status.Profile) error
}

// GormStore keeps profiles in the status_profiles table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, userID uuid.UUID) (status.Profile, error) {
	var rec ProfileRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status.Profile{}, ErrProfileNotFound
		}
		return status.Profile{}, fmt.Errorf("load status profile: %w", err)
	}
	return rec.toProfile(), nil
}

// Save writes the whole profile, inserting the row if the user has none.
func (s *GormStore) Save(ctx context.Context, userID uuid.UUID, p status.Profile) error {
	rec := toRecord(userID, p)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save status profile: %w", err)
	}
	return nil
}

// Delete removes the user's profile. Missing rows are not an error.
func (s *GormStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&ProfileRecord{}).Error; err != nil {
		return fmt.Errorf("delete status profile: %w", err)
	}
	return nil
}

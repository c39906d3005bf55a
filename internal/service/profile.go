package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user profile not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &profile, nil
}

// UpsertProfile inserts the profile or replaces every attribute of the existing one.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID uuid.UUID, req *types.ProfileRequest) (*models.UserProfile, error) {
	profile := applyProfile(models.DefaultProfile(userID), req)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "age", "height_cm", "weight_kg", "gender", "goal", "activity_level", "diet_type", "updated_at",
		}),
	}).Create(profile).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// the returned row id differs from profile.ID when the conflict branch ran
	return s.GetProfile(ctx, userID)
}

// UpdateProfile replaces the attributes of an existing profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.ProfileRequest) (*models.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfile(profile, req)
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return profile, nil
}

// applyProfile copies request fields onto p. Empty enum values keep what p already holds.
func applyProfile(p *models.UserProfile, req *types.ProfileRequest) *models.UserProfile {
	p.Name = req.Name
	p.Age = req.Age
	p.HeightCm = req.HeightCm
	p.WeightKg = req.WeightKg
	if req.Gender != "" {
		p.Gender = req.Gender
	}
	if req.Goal != "" {
		p.Goal = req.Goal
	}
	if req.ActivityLevel != "" {
		p.ActivityLevel = req.ActivityLevel
	}
	if req.DietType != "" {
		p.DietType = req.DietType
	}
	return p
}

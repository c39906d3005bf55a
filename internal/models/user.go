package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     *string   `gorm:"uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the username, or an empty string when none was chosen.
func (u *User) DisplayName() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"

	GoalFatLoss     = "fat_loss"
	GoalMuscleGain  = "muscle_gain"
	GoalMaintenance = "maintenance"

	ActivitySedentary        = "sedentary"
	ActivityLightlyActive    = "lightly_active"
	ActivityModeratelyActive = "moderately_active"
	ActivityVeryActive       = "very_active"
	ActivityExtraActive      = "extra_active"

	DietVegetarian    = "vegetarian"
	DietNonVegetarian = "non_vegetarian"
	DietEggetarian    = "eggetarian"
	DietVegan         = "vegan"
	DietPescatarian   = "pescatarian"
)

// UserProfile holds the attributes used to personalise estimates. One row per user.
type UserProfile struct {
	ID            uuid.UUID `gorm:"type:varchar(36);primarykey" json:"-"`
	UserID        uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Name          string    `gorm:"size:100" json:"name"`
	Age           int       `json:"age"`
	HeightCm      float64   `json:"height_cm"`
	WeightKg      float64   `json:"weight_kg"`
	Gender        string    `gorm:"size:16;not null;default:'other'" json:"gender"`
	Goal          string    `gorm:"size:32;not null;default:'maintenance'" json:"goal"`
	ActivityLevel string    `gorm:"size:32;not null;default:'sedentary'" json:"activity_level"`
	DietType      string    `gorm:"size:32;not null;default:'vegetarian'" json:"diet_type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DefaultProfile is the profile created alongside a new account.
func DefaultProfile(userID uuid.UUID) *UserProfile {
	return &UserProfile{
		UserID:        userID,
		Gender:        GenderOther,
		Goal:          GoalMaintenance,
		ActivityLevel: ActivitySedentary,
		DietType:      DietVegetarian,
	}
}

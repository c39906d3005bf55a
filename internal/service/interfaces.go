package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Signup(ctx context.Context, email, username, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(user *models.User) (string, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, req *types.ProfileRequest) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.ProfileRequest) (*models.UserProfile, error)
}

// IEstimatorService defines the interface for free text estimation
type IEstimatorService interface {
	EstimateMeal(ctx context.Context, description string, profile *models.UserProfile) (*MealEstimate, error)
	EstimateWorkout(ctx context.Context, description string, profile *models.UserProfile) (*WorkoutEstimate, error)
}

// IDietService defines the interface for diet logging and summaries
type IDietService interface {
	Analyze(ctx context.Context, userID uuid.UUID, description string) (*MealEstimate, string, error)
	Save(ctx context.Context, userID uuid.UUID, description string, estimate *MealEstimate) (*models.DietEntry, error)
	SaveDraft(ctx context.Context, userID uuid.UUID, draftID string) (*models.DietEntry, error)
	Day(ctx context.Context, userID uuid.UUID, date time.Time) (*DayNutrients, error)
	Week(ctx context.Context, userID uuid.UUID, now time.Time) (*DietWeek, error)
}

// IWorkoutService defines the interface for workout logging and summaries
type IWorkoutService interface {
	Log(ctx context.Context, userID uuid.UUID, description string) (*models.WorkoutEntry, *WorkoutEstimate, error)
	Day(ctx context.Context, userID uuid.UUID, date time.Time) (*WorkoutDaySummary, error)
	Week(ctx context.Context, userID uuid.UUID, now time.Time) (*WorkoutWeek, error)
}

// IReportService defines the interface for weekly report exports
type IReportService interface {
	BuildWeek(ctx context.Context, userID uuid.UUID, now time.Time) (*WeekReport, error)
	ExportWeek(ctx context.Context, userID uuid.UUID, now time.Time) (*ExportResult, error)
}

// DraftStore keeps analysed meal estimates until the user confirms them.
type DraftStore interface {
	SaveDraft(ctx context.Context, draft *MealDraft) error
	GetDraft(ctx context.Context, id string) (*MealDraft, error)
	DeleteDraft(ctx context.Context, id string) error
}

// EntryNotifier is told about every entry written for a user.
type EntryNotifier interface {
	Publish(userID uuid.UUID, event EntryEvent)
}

// ObjectStorage is the subset of the S3 client used for exports.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/internal/models"
	"gorm.io/gorm"
)

// WorkoutDaySummary merges every workout of one UTC day into a single record.
// ID, UserID and CreatedAt come from the earliest entry.
type WorkoutDaySummary struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Workout       string    `json:"workout"`
	Calories      float64   `json:"calories"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	MuscleTrained []string  `json:"muscle_trained"`
	Sessions      int       `json:"sessions"`
}

// WorkoutService logs workouts and summarises them.
type WorkoutService struct {
	db        *gorm.DB
	estimator IEstimatorService
	profiles  IProfileService
	notifier  EntryNotifier
	now       func() time.Time
}

// Ensure WorkoutService implements IWorkoutService
var _ IWorkoutService = (*WorkoutService)(nil)

// NewWorkoutService creates a WorkoutService. notifier may be nil.
func NewWorkoutService(db *gorm.DB, estimator IEstimatorService, profiles IProfileService, notifier EntryNotifier) *WorkoutService {
	return &WorkoutService{
		db:        db,
		estimator: estimator,
		profiles:  profiles,
		notifier:  notifier,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to stamp entries.
func (s *WorkoutService) WithClock(now func() time.Time) *WorkoutService {
	s.now = now
	return s
}

// Log estimates a workout against the user's profile and stores it.
func (s *WorkoutService) Log(ctx context.Context, userID uuid.UUID, description string) (*models.WorkoutEntry, *WorkoutEstimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil, fmt.Errorf("%w: workout_description is required", ErrValidation)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	estimate, err := s.estimator.EstimateWorkout(ctx, description, profile)
	if err != nil {
		return nil, nil, err
	}

	entry := &models.WorkoutEntry{
		UserID:        userID,
		Workout:       description,
		Calories:      estimate.CalorieBurned,
		MuscleTrained: models.StringArray(estimate.MuscleTrained),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("[WorkoutService] failed to save entry for %s: %v", userID, err)
		return nil, nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if s.notifier != nil {
		s.notifier.Publish(userID, EntryEvent{Kind: EventEntryCreated, Type: EntryTypeWorkout, Entry: entry})
	}
	return entry, estimate, nil
}

// Day merges the workouts of the UTC day containing date. ErrNoEntries is returned when there are none.
func (s *WorkoutService) Day(ctx context.Context, userID uuid.UUID, date time.Time) (*WorkoutDaySummary, error) {
	day := DayRange(date)
	entries, err := s.entriesBetween(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	merged := MergeWorkouts(entries)
	first := entries[0]
	return &WorkoutDaySummary{
		ID:            first.ID,
		UserID:        first.UserID,
		Workout:       merged.Workout,
		Calories:      merged.Calories,
		Date:          day.Start.Format(models.DateLayout),
		CreatedAt:     first.CreatedAt,
		MuscleTrained: merged.Muscles,
		Sessions:      len(entries),
	}, nil
}

// Week summarises the workouts of the week containing now. An empty week yields zero values.
func (s *WorkoutService) Week(ctx context.Context, userID uuid.UUID, now time.Time) (*WorkoutWeek, error) {
	entries, err := s.entriesBetween(ctx, userID, WeekRange(now))
	if err != nil {
		return nil, err
	}
	week := SumWorkoutWeek(entries)
	return &week, nil
}

func (s *WorkoutService) entriesBetween(ctx context.Context, userID uuid.UUID, r Range) ([]models.WorkoutEntry, error) {
	var entries []models.WorkoutEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, r.Start, r.End).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return entries, nil
}

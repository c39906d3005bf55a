package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/internal/models"
	"gorm.io/gorm"
)

// DayNutrients is the nutrient total for one UTC day.
type DayNutrients struct {
	DietTotals
	Date    string             `json:"date"`
	Entries []models.DietEntry `json:"-"`
}

// DietWeek is the nutrient total for one Monday-start week.
type DietWeek struct {
	TotalCaloriesConsumed float64 `json:"totalCaloriesConsumed"`
	Protein               float64 `json:"protein"`
	Carbs                 float64 `json:"carbs"`
	Fats                  float64 `json:"fats"`
	WeekStart             string  `json:"weekStart"`
	WeekEnd               string  `json:"weekEnd"`
	Meals                 int     `json:"meals"`
}

// DietService logs meals and summarises them.
type DietService struct {
	db        *gorm.DB
	estimator IEstimatorService
	profiles  IProfileService
	drafts    DraftStore
	notifier  EntryNotifier
	now       func() time.Time
}

// Ensure DietService implements IDietService
var _ IDietService = (*DietService)(nil)

// NewDietService creates a DietService. drafts and notifier may be nil.
func NewDietService(db *gorm.DB, estimator IEstimatorService, profiles IProfileService, drafts DraftStore, notifier EntryNotifier) *DietService {
	return &DietService{
		db:        db,
		estimator: estimator,
		profiles:  profiles,
		drafts:    drafts,
		notifier:  notifier,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to stamp entries.
func (s *DietService) WithClock(now func() time.Time) *DietService {
	s.now = now
	return s
}

// Analyze estimates a meal and, when a draft store is configured, keeps the result as a draft.
// The draft id is empty when no draft was stored.
func (s *DietService) Analyze(ctx context.Context, userID uuid.UUID, description string) (*MealEstimate, string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, "", fmt.Errorf("%w: meal_description is required", ErrValidation)
	}

	var profile *models.UserProfile
	if s.profiles != nil {
		p, err := s.profiles.GetProfile(ctx, userID)
		switch {
		case err == nil:
			profile = p
		case errors.Is(err, ErrNotFound):
		default:
			return nil, "", err
		}
	}

	estimate, err := s.estimator.EstimateMeal(ctx, description, profile)
	if err != nil {
		return nil, "", err
	}

	if s.drafts == nil {
		return estimate, "", nil
	}
	draft := &MealDraft{UserID: userID, Description: description, Estimate: *estimate, CreatedAt: s.now().UTC()}
	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		log.Printf("[DietService] failed to store draft for %s: %v", userID, err)
		return estimate, "", nil
	}
	return estimate, draft.ID, nil
}

// Save persists one diet entry stamped with the current time.
func (s *DietService) Save(ctx context.Context, userID uuid.UUID, description string, estimate *MealEstimate) (*models.DietEntry, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: meal_description is required", ErrValidation)
	}
	if estimate == nil {
		return nil, fmt.Errorf("%w: nutrition is required", ErrValidation)
	}

	entry := &models.DietEntry{
		UserID:    userID,
		Food:      description,
		Calories:  estimate.Calories,
		Protein:   estimate.Protein,
		Carbs:     estimate.Carbs,
		Fats:      estimate.Fat,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("[DietService] failed to save entry for %s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if s.notifier != nil {
		s.notifier.Publish(userID, EntryEvent{Kind: EventEntryCreated, Type: EntryTypeDiet, Entry: entry})
	}
	return entry, nil
}

// SaveDraft persists a previously analysed meal and discards the draft.
// Drafts belonging to someone else are reported as not found.
func (s *DietService) SaveDraft(ctx context.Context, userID uuid.UUID, draftID string) (*models.DietEntry, error) {
	if s.drafts == nil {
		return nil, fmt.Errorf("%w: drafts are not enabled", ErrUnavailable)
	}

	draft, err := s.drafts.GetDraft(ctx, draftID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if draft.UserID != userID {
		return nil, fmt.Errorf("%w: draft %s", ErrNotFound, draftID)
	}

	entry, err := s.Save(ctx, userID, draft.Description, &draft.Estimate)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.DeleteDraft(ctx, draftID); err != nil {
		log.Printf("[DietService] failed to delete draft %s: %v", draftID, err)
	}
	return entry, nil
}

// Day sums the entries of the UTC day containing date. ErrNoEntries is returned when there are none.
func (s *DietService) Day(ctx context.Context, userID uuid.UUID, date time.Time) (*DayNutrients, error) {
	day := DayRange(date)
	entries, err := s.entriesBetween(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	return &DayNutrients{
		DietTotals: SumDiet(entries),
		Date:       day.Start.Format(models.DateLayout),
		Entries:    entries,
	}, nil
}

// Week sums the entries of the week containing now. An empty week yields zero totals.
func (s *DietService) Week(ctx context.Context, userID uuid.UUID, now time.Time) (*DietWeek, error) {
	week := WeekRange(now)
	entries, err := s.entriesBetween(ctx, userID, week)
	if err != nil {
		return nil, err
	}

	totals := SumDiet(entries)
	return &DietWeek{
		TotalCaloriesConsumed: totals.Calories,
		Protein:               totals.Protein,
		Carbs:                 totals.Carbs,
		Fats:                  totals.Fat,
		WeekStart:             week.Start.Format(models.DateLayout),
		WeekEnd:               week.End.AddDate(0, 0, -1).Format(models.DateLayout),
		Meals:                 len(entries),
	}, nil
}

func (s *DietService) entriesBetween(ctx context.Context, userID uuid.UUID, r Range) ([]models.DietEntry, error) {
	var entries []models.DietEntry
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

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/internal/models"
)

// ExportURLTTL is the lifetime of presigned report links.
const ExportURLTTL = 15 * time.Minute

// WeekReport is the document uploaded for a weekly export.
type WeekReport struct {
	UserID      uuid.UUID   `json:"user_id"`
	Range       Range       `json:"range"`
	Diet        DietWeek    `json:"diet"`
	Workout     WorkoutWeek `json:"workout"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// ExportResult points at an uploaded report.
type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ReportService builds weekly reports and uploads them to object storage.
type ReportService struct {
	diet     IDietService
	workouts IWorkoutService
	storage  ObjectStorage
}

// Ensure ReportService implements IReportService
var _ IReportService = (*ReportService)(nil)

// NewReportService creates a ReportService. storage may be nil, in which case exports are unavailable.
func NewReportService(diet IDietService, workouts IWorkoutService, storage ObjectStorage) *ReportService {
	return &ReportService{diet: diet, workouts: workouts, storage: storage}
}

// BuildWeek assembles the report for the week containing now.
func (s *ReportService) BuildWeek(ctx context.Context, userID uuid.UUID, now time.Time) (*WeekReport, error) {
	diet, err := s.diet.Week(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	workout, err := s.workouts.Week(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return &WeekReport{
		UserID:      userID,
		Range:       WeekRange(now),
		Diet:        *diet,
		Workout:     *workout,
		GeneratedAt: now.UTC(),
	}, nil
}

// ExportWeek uploads the weekly report as JSON and returns a presigned download link.
func (s *ReportService) ExportWeek(ctx context.Context, userID uuid.UUID, now time.Time) (*ExportResult, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: report storage is not configured", ErrUnavailable)
	}

	report, err := s.BuildWeek(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s.json", userID, report.Range.Start.Format(models.DateLayout))
	if err := s.storage.PutObject(ctx, key, body, "application/json"); err != nil {
		log.Printf("[ReportService] upload of %s failed: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	url, err := s.storage.GeneratePresignedURL(ctx, key, ExportURLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &ExportResult{Key: key, URL: url}, nil
}

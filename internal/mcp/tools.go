package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "diet_day",
		Description: "Total calories and macronutrients a user ate on one UTC day",
	}, s.handleDietDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "diet_week",
		Description: "Calorie and macronutrient totals for the Monday-start week containing a date",
	}, s.handleDietWeek)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "workout_day",
		Description: "All workouts a user logged on one UTC day, merged into one summary",
	}, s.handleWorkoutDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "workout_week",
		Description: "Calories burned and muscle groups trained in the Monday-start week containing a date",
	}, s.handleWorkoutWeek)
}

type dayInput struct {
	UserID string `json:"user_id" jsonschema:"ID of the user"`
	Date   string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD or RFC3339, defaults to today"`
}

type dietDayOutput struct {
	Date     string   `json:"date"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Foods    []string `json:"foods"`
	Message  string   `json:"message,omitempty"`
}

type workoutDayOutput struct {
	Date          string   `json:"date"`
	Workout       string   `json:"workout"`
	Calories      float64  `json:"calories"`
	MuscleTrained []string `json:"muscle_trained"`
	Sessions      int      `json:"sessions"`
	Message       string   `json:"message,omitempty"`
}

func (s *Server) handleDietDay(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, dietDayOutput, error) {
	userID, date, err := s.parseInput(input)
	if err != nil {
		return nil, dietDayOutput{}, err
	}

	out := dietDayOutput{Date: date.Format(models.DateLayout), Foods: []string{}}
	day, err := s.diet.Day(ctx, userID, date)
	if errors.Is(err, service.ErrNoEntries) {
		out.Message = "No diet found for this date"
		return nil, out, nil
	}
	if err != nil {
		return nil, dietDayOutput{}, fmt.Errorf("failed to load diet: %w", err)
	}

	out.Date = day.Date
	out.Calories = day.Calories
	out.Protein = day.Protein
	out.Carbs = day.Carbs
	out.Fat = day.Fat
	for _, e := range day.Entries {
		out.Foods = append(out.Foods, e.Food)
	}
	return nil, out, nil
}

func (s *Server) handleDietWeek(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, service.DietWeek, error) {
	userID, date, err := s.parseInput(input)
	if err != nil {
		return nil, service.DietWeek{}, err
	}

	week, err := s.diet.Week(ctx, userID, date)
	if err != nil {
		return nil, service.DietWeek{}, fmt.Errorf("failed to load diet week: %w", err)
	}
	return nil, *week, nil
}

func (s *Server) handleWorkoutDay(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, workoutDayOutput, error) {
	userID, date, err := s.parseInput(input)
	if err != nil {
		return nil, workoutDayOutput{}, err
	}

	out := workoutDayOutput{Date: date.Format(models.DateLayout), MuscleTrained: []string{}}
	summary, err := s.workouts.Day(ctx, userID, date)
	if errors.Is(err, service.ErrNoEntries) {
		out.Message = "No workouts found for this date"
		return nil, out, nil
	}
	if err != nil {
		return nil, workoutDayOutput{}, fmt.Errorf("failed to load workouts: %w", err)
	}

	out.Date = summary.Date
	out.Workout = summary.Workout
	out.Calories = summary.Calories
	out.MuscleTrained = summary.MuscleTrained
	out.Sessions = summary.Sessions
	return nil, out, nil
}

func (s *Server) handleWorkoutWeek(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, service.WorkoutWeek, error) {
	userID, date, err := s.parseInput(input)
	if err != nil {
		return nil, service.WorkoutWeek{}, err
	}

	week, err := s.workouts.Week(ctx, userID, date)
	if err != nil {
		return nil, service.WorkoutWeek{}, fmt.Errorf("failed to load workout week: %w", err)
	}
	return nil, *week, nil
}

func (s *Server) parseInput(input dayInput) (uuid.UUID, time.Time, error) {
	userID, err := uuid.Parse(strings.TrimSpace(input.UserID))
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("invalid user_id: %s", input.UserID)
	}

	raw := strings.TrimSpace(input.Date)
	if raw == "" {
		return userID, s.now().UTC(), nil
	}
	date, err := service.ParseDate(raw)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	return userID, date, nil
}

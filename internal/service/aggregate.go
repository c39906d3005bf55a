package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pageza/fittrack/backend/internal/models"
)

// Range is a half-open UTC interval [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// DayRange returns the UTC day containing t.
func DayRange(t time.Time) Range {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the instant in UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(models.DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, raw)
}

// WeekRange returns the Monday-to-Sunday UTC week containing t.
func WeekRange(t time.Time) Range {
	day := DayRange(t).Start
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Range{Start: start, End: start.AddDate(0, 0, 7)}
}

// DietTotals is the nutrient sum over a set of diet entries.
type DietTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// SumDiet adds up entries, counting missing values as zero.
func SumDiet(entries []models.DietEntry) DietTotals {
	var t DietTotals
	for _, e := range entries {
		t.Calories += valueOr(e.Calories)
		t.Protein += valueOr(e.Protein)
		t.Carbs += valueOr(e.Carbs)
		t.Fat += valueOr(e.Fats)
	}
	return t
}

// WorkoutDay merges the workouts of a single day.
type WorkoutDay struct {
	Workout  string   `json:"workout"`
	Calories float64  `json:"calories"`
	Muscles  []string `json:"muscle_trained"`
}

// MergeWorkouts joins descriptions with " | ", sums calories and unions muscles in first-seen order.
func MergeWorkouts(entries []models.WorkoutEntry) WorkoutDay {
	descriptions := make([]string, 0, len(entries))
	muscles := []string{}
	seen := map[string]bool{}
	var calories float64

	for _, e := range entries {
		descriptions = append(descriptions, e.Workout)
		calories += valueOr(e.Calories)
		for _, m := range e.MuscleTrained {
			m = strings.ToLower(strings.TrimSpace(m))
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			muscles = append(muscles, m)
		}
	}

	return WorkoutDay{
		Workout:  strings.Join(descriptions, " | "),
		Calories: calories,
		Muscles:  muscles,
	}
}

// WorkoutWeek is the weekly workout summary.
type WorkoutWeek struct {
	TotalCaloriesBurned float64        `json:"totalCaloriesBurned"`
	MusclesTrained      []string       `json:"musclesTrained"`
	MuscleIntensity     map[string]int `json:"muscleIntensity"`
}

// SumWorkoutWeek totals calories and counts how many entries trained each muscle.
// The result does not depend on the order of entries.
func SumWorkoutWeek(entries []models.WorkoutEntry) WorkoutWeek {
	week := WorkoutWeek{
		MusclesTrained:  []string{},
		MuscleIntensity: map[string]int{},
	}

	for _, e := range entries {
		week.TotalCaloriesBurned += valueOr(e.Calories)
		counted := map[string]bool{}
		for _, m := range e.MuscleTrained {
			m = strings.ToLower(strings.TrimSpace(m))
			if m == "" || counted[m] {
				continue
			}
			counted[m] = true
			week.MuscleIntensity[m]++
		}
	}

	for m := range week.MuscleIntensity {
		week.MusclesTrained = append(week.MusclesTrained, m)
	}
	sort.Strings(week.MusclesTrained)
	return week
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/fittrack/backend/config"
	"github.com/pageza/fittrack/backend/internal/models"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completions request
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
}

// MealEstimate is the nutrition estimate for a meal. Numeric fields are nil when the
// model left them out; the wire keys keep the spellings clients already depend on.
type MealEstimate struct {
	Calories  *float64 `json:"calories"`
	Protein   *float64 `json:"protein"`
	Carbs     *float64 `json:"carbs"`
	Fat       *float64 `json:"fat"`
	Analysis  string   `json:"analysis"`
	Watchouts string   `json:"watchouts"`
	Tips      string   `json:"Tips"`
	Benefits  string   `json:"benifits"`
}

func (m *MealEstimate) CaloriesValue() float64 { return valueOr(m.Calories) }
func (m *MealEstimate) ProteinValue() float64  { return valueOr(m.Protein) }
func (m *MealEstimate) CarbsValue() float64    { return valueOr(m.Carbs) }
func (m *MealEstimate) FatValue() float64      { return valueOr(m.Fat) }

// WorkoutEstimate is the estimate for a workout session.
type WorkoutEstimate struct {
	CalorieBurned     *float64 `json:"calorie_burned"`
	WorkoutSuggestion string   `json:"workout_suggestion"`
	MuscleTrained     []string `json:"muscle_trained"`
}

func (w *WorkoutEstimate) CaloriesValue() float64 { return valueOr(w.CalorieBurned) }

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// EstimatorService turns free text into structured estimates through an
// OpenAI-compatible chat-completions endpoint.
type EstimatorService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// Ensure EstimatorService implements IEstimatorService
var _ IEstimatorService = (*EstimatorService)(nil)

// NewEstimatorService creates an estimator from the LLM settings in cfg.
func NewEstimatorService(cfg *config.Config) *EstimatorService {
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &EstimatorService{
		apiKey: cfg.LLMAPIKey,
		apiURL: cfg.LLMAPIURL,
		model:  cfg.LLMModel,
		client: &http.Client{Timeout: timeout},
	}
}

// EstimateMeal estimates calories and macronutrients for a meal description.
// profile may be nil.
func (s *EstimatorService) EstimateMeal(ctx context.Context, description string, profile *models.UserProfile) (*MealEstimate, error) {
	content, err := s.complete(ctx, BuildMealPrompt(description, profile))
	if err != nil {
		return nil, err
	}
	return ParseMealEstimate(content)
}

// EstimateWorkout estimates calories burned and muscles trained for a workout description.
func (s *EstimatorService) EstimateWorkout(ctx context.Context, description string, profile *models.UserProfile) (*WorkoutEstimate, error) {
	content, err := s.complete(ctx, BuildWorkoutPrompt(description, profile))
	if err != nil {
		return nil, err
	}
	return ParseWorkoutEstimate(content)
}

// complete sends a single-message chat request and returns the first choice's content.
func (s *EstimatorService) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := Request{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: "You are a nutrition and fitness assistant. Respond only with valid JSON."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Estimator] request failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Estimator] upstream returned %d: %s", resp.StatusCode, truncate(string(body), 200))
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from API", ErrUpstream)
	}

	log.Printf("[Estimator] completion received in %v", time.Since(start))
	return result.Choices[0].Message.Content, nil
}

// BuildMealPrompt builds the meal estimation prompt. The diet type is mentioned when a profile is given.
func BuildMealPrompt(description string, profile *models.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimate the total calories and macronutrients in the following meal: %q.", description)
	if profile != nil && profile.DietType != "" {
		fmt.Fprintf(&b, " The person eating it follows a %s diet.", strings.ReplaceAll(profile.DietType, "_", " "))
	}
	b.WriteString(` Return the output in this JSON format strictly: { "calories": number, "protein": number, "carbs": number, "fat": number, "analysis": string, "watchouts": string, "Tips": string, "benifits": string }`)
	return b.String()
}

// BuildWorkoutPrompt builds the workout estimation prompt around the user's profile.
func BuildWorkoutPrompt(description string, profile *models.UserProfile) string {
	p := profile
	if p == nil {
		p = &models.UserProfile{}
	}
	return fmt.Sprintf(`You are a fitness assistant helping users track and improve their workouts. Always respond accurately, clearly, and in structured JSON format.

User Profile:
- Age: %d
- Height: %g cm
- Weight: %g kg
- Activity Level: %s
- Goal: %s

Workout Details:
%q

Instructions:
1. Estimate the total calories burned using scientifically sound methods (e.g., MET values) based on the user's profile and workout description. If the duration is missing, assume 30 minutes.
2. Provide a concise, personalized analysis in HTML format with inline font-size styling covering intensity, duration, primary muscle groups, effectiveness for the user's goal and suggestions for improvement or safety.
3. List the major muscle groups trained as an array of lowercase strings (e.g., ["chest", "shoulders", "quads"]).

Respond strictly in valid JSON with no extra text, comments, markdown or code blocks:
{
  "calorie_burned": number,
  "workout_suggestion": string,
  "muscle_trained": [string]
}`, p.Age, p.HeightCm, p.WeightKg, p.ActivityLevel, p.Goal, description)
}

// StripCodeFences removes markdown code fences around model output.
func StripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ParseMealEstimate decodes model output into a MealEstimate.
func ParseMealEstimate(raw string) (*MealEstimate, error) {
	var parsed struct {
		Calories  flexNumber `json:"calories"`
		Protein   flexNumber `json:"protein"`
		Carbs     flexNumber `json:"carbs"`
		Fat       flexNumber `json:"fat"`
		Analysis  string     `json:"analysis"`
		Watchouts string     `json:"watchouts"`
		Tips      string     `json:"Tips"`
		Benefits  string     `json:"benifits"`
	}
	if err := decodeObject(raw, &parsed); err != nil {
		return nil, err
	}
	return &MealEstimate{
		Calories:  parsed.Calories.Value,
		Protein:   parsed.Protein.Value,
		Carbs:     parsed.Carbs.Value,
		Fat:       parsed.Fat.Value,
		Analysis:  parsed.Analysis,
		Watchouts: parsed.Watchouts,
		Tips:      parsed.Tips,
		Benefits:  parsed.Benefits,
	}, nil
}

// ParseWorkoutEstimate decodes model output into a WorkoutEstimate with normalised muscle names.
func ParseWorkoutEstimate(raw string) (*WorkoutEstimate, error) {
	var parsed struct {
		CalorieBurned     flexNumber         `json:"calorie_burned"`
		WorkoutSuggestion string             `json:"workout_suggestion"`
		MuscleTrained     models.StringArray `json:"muscle_trained"`
	}
	if err := decodeObject(raw, &parsed); err != nil {
		return nil, err
	}
	return &WorkoutEstimate{
		CalorieBurned:     parsed.CalorieBurned.Value,
		WorkoutSuggestion: parsed.WorkoutSuggestion,
		MuscleTrained:     NormalizeMuscles([]string(parsed.MuscleTrained)),
	}, nil
}

// NormalizeMuscles lowercases and trims muscle names, dropping blanks and duplicates.
func NormalizeMuscles(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, m := range in {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func decodeObject(raw string, v interface{}) error {
	cleaned := StripCodeFences(raw)
	if !strings.HasPrefix(cleaned, "{") {
		log.Printf("[Estimator] non-JSON output: %s", truncate(cleaned, 200))
		return fmt.Errorf("%w: expected a JSON object", ErrParse)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		log.Printf("[Estimator] failed to parse output: %v", err)
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// flexNumber accepts a JSON number, a numeric string or null.
type flexNumber struct {
	Value *float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Value = nil
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		return n.set(num)
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			n.Value = nil
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", str)
		}
		return n.set(f)
	}

	return fmt.Errorf("invalid number format")
}

// set rejects NaN and infinities, which cannot be encoded back to JSON.
func (n *flexNumber) set(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number %v", f)
	}
	n.Value = &f
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

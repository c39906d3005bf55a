package types

import (
	"github.com/google/uuid"
)

// SignupRequest represents the request body for account creation
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account returned with a token.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileRequest is the body of POST and PUT /user/profile.
type ProfileRequest struct {
	Name          string  `json:"name" binding:"max=100"`
	Age           int     `json:"age" binding:"gte=0,lte=130"`
	HeightCm      float64 `json:"height_cm" binding:"gte=0"`
	WeightKg      float64 `json:"weight_kg" binding:"gte=0"`
	Gender        string  `json:"gender" binding:"omitempty,oneof=male female other"`
	Goal          string  `json:"goal" binding:"omitempty,oneof=fat_loss muscle_gain maintenance"`
	ActivityLevel string  `json:"activity_level" binding:"omitempty,oneof=sedentary lightly_active moderately_active very_active extra_active"`
	DietType      string  `json:"diet_type" binding:"omitempty,oneof=vegetarian non_vegetarian eggetarian vegan pescatarian"`
}

// AnalyzeDietRequest is the body of POST /diet/analyze.
type AnalyzeDietRequest struct {
	MealDescription string `json:"meal_description"`
}

// SaveDietRequest is the body of POST /diet/save. Either DraftID or the
// description/nutrition pair must be set.
type SaveDietRequest struct {
	DraftID         string          `json:"draft_id"`
	MealDescription string          `json:"meal_description"`
	Nutrition       *NutritionInput `json:"nutrition"`
}

// NutritionInput carries the numbers a client confirms when saving a meal.
type NutritionInput struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

// LogWorkoutRequest is the body of POST /workout.
type LogWorkoutRequest struct {
	WorkoutDescription string `json:"workout_description"`
}

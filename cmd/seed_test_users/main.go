package main

import (
	"log"
	"time"

	"github.com/pageza/fittrack/backend/config"
	"github.com/pageza/fittrack/backend/internal/database"
	"github.com/pageza/fittrack/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedMeal struct {
	food                          string
	calories, protein, carbs, fat float64
}

type seedWorkout struct {
	workout  string
	calories float64
	muscles  []string
}

var meals = []seedMeal{
	{"2 rotis with dal and salad", 450, 18, 62, 12},
	{"poha with peanuts", 320, 8, 48, 11},
	{"paneer tikka with mint chutney", 380, 24, 10, 26},
	{"masala chai and 2 biscuits", 160, 3, 24, 5},
}

var workouts = []seedWorkout{
	{"30 min brisk walk", 160, []string{"calves", "quads"}},
	{"push day: bench press, overhead press, dips", 280, []string{"chest", "shoulders", "triceps"}},
	{"45 min cycling", 400, []string{"quads", "glutes", "calves"}},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, cfg.PostgresDSN()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Hash password for test users
	password := "testpassword123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	testUsers := []struct {
		email    string
		username string
		profile  models.UserProfile
	}{
		{
			email:    "john.doe@example.com",
			username: "johndoe",
			profile: models.UserProfile{Name: "John Doe", Age: 34, HeightCm: 178, WeightKg: 82,
				Gender: models.GenderMale, Goal: models.GoalFatLoss, ActivityLevel: models.ActivityLightlyActive, DietType: models.DietNonVegetarian},
		},
		{
			email:    "jane.smith@example.com",
			username: "janesmith",
			profile: models.UserProfile{Name: "Jane Smith", Age: 28, HeightCm: 165, WeightKg: 58,
				Gender: models.GenderFemale, Goal: models.GoalMuscleGain, ActivityLevel: models.ActivityVeryActive, DietType: models.DietVegetarian},
		},
		{
			email:    "new.user@example.com",
			username: "newuser",
		},
	}

	log.Println("Creating test users...")

	now := time.Now().UTC()
	for i, userData := range testUsers {
		// Check if user already exists
		var existing models.User
		if err := db.Where("email = ?", userData.email).First(&existing).Error; err == nil {
			log.Printf("User %s already exists, skipping...", userData.email)
			continue
		}

		username := userData.username
		user := models.User{
			Email:        userData.email,
			Username:     &username,
			PasswordHash: string(hashedPassword),
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			profile := models.DefaultProfile(user.ID)
			if userData.profile.Name != "" {
				p := userData.profile
				p.UserID = user.ID
				profile = &p
			}
			if err := tx.Create(profile).Error; err != nil {
				return err
			}

			// the last user starts with an empty history
			if i == len(testUsers)-1 {
				return nil
			}
			return seedHistory(tx, user, now)
		})
		if err != nil {
			log.Printf("Failed to create user %s: %v", userData.email, err)
			continue
		}
		log.Printf("Created user: %s (%s)", username, userData.email)
	}

	var users, diet, workout int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.DietEntry{}).Count(&diet)
	db.Model(&models.WorkoutEntry{}).Count(&workout)

	log.Println("Test data summary:")
	log.Printf("  users: %d", users)
	log.Printf("  diet entries: %d", diet)
	log.Printf("  workout entries: %d", workout)
	log.Printf("Password for every test user: %s", password)
}

// seedHistory logs meals and workouts over the seven days before now.
func seedHistory(tx *gorm.DB, user models.User, now time.Time) error {
	for day := 0; day < 7; day++ {
		base := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, time.UTC).AddDate(0, 0, -day)

		for i, m := range meals {
			m := m
			entry := models.DietEntry{
				UserID:    user.ID,
				Food:      m.food,
				Calories:  &m.calories,
				Protein:   &m.protein,
				Carbs:     &m.carbs,
				Fats:      &m.fat,
				CreatedAt: base.Add(time.Duration(i*4) * time.Hour),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		w := workouts[day%len(workouts)]
		entry := models.WorkoutEntry{
			UserID:        user.ID,
			Workout:       w.workout,
			Calories:      &w.calories,
			MuscleTrained: models.StringArray(w.muscles),
			CreatedAt:     base.Add(-90 * time.Minute),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

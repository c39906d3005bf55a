package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/config"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	weekUser   string
	weekDate   string
	weekExport bool
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Print or export a user's weekly summary",
	Long: `Print the Monday-to-Sunday diet and workout summary for one user.

The user is given by id or email. --date picks any day inside the week
(YYYY-MM-DD, default today). --export uploads the report to S3 and prints a
presigned download link.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC()
		if weekDate != "" {
			d, err := time.Parse(models.DateLayout, weekDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", weekDate)
			}
			now = d
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		userID, err := resolveUser(ctx, db, weekUser)
		if err != nil {
			return err
		}

		var storage service.ObjectStorage
		if weekExport && cfg.S3Bucket != "" {
			s3cfg, err := config.NewS3Config(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to configure S3: %w", err)
			}
			storage = s3cfg
		}

		diet := service.NewDietService(db, nil, nil, nil, nil)
		workouts := service.NewWorkoutService(db, nil, nil, nil)
		reports := service.NewReportService(diet, workouts, storage)

		if weekExport {
			result, err := reports.ExportWeek(ctx, userID, now)
			if err != nil {
				return err
			}
			color.Green("Uploaded %s", result.Key)
			fmt.Println(result.URL)
			return nil
		}

		report, err := reports.BuildWeek(ctx, userID, now)
		if err != nil {
			return err
		}
		printWeek(report)
		return nil
	},
}

func resolveUser(ctx context.Context, db *gorm.DB, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uuid.Nil, fmt.Errorf("--user is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	var user models.User
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(ref)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("no user with email %s", ref)
	}
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func printWeek(r *service.WeekReport) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Printf("Week %s to %s\n", r.Diet.WeekStart, r.Diet.WeekEnd)
	fmt.Println()

	bold.Println("Diet")
	fmt.Printf("  %-10s %8.0f kcal\n", "consumed", r.Diet.TotalCaloriesConsumed)
	fmt.Printf("  %-10s %8.1f g\n", "protein", r.Diet.Protein)
	fmt.Printf("  %-10s %8.1f g\n", "carbs", r.Diet.Carbs)
	fmt.Printf("  %-10s %8.1f g\n", "fats", r.Diet.Fats)
	faint.Printf("  %d meals logged\n", r.Diet.Meals)
	fmt.Println()

	bold.Println("Workouts")
	fmt.Printf("  %-10s %8.0f kcal\n", "burned", r.Workout.TotalCaloriesBurned)
	if len(r.Workout.MusclesTrained) == 0 {
		faint.Println("  no muscles trained")
		return
	}

	muscles := append([]string(nil), r.Workout.MusclesTrained...)
	sort.SliceStable(muscles, func(i, j int) bool {
		return r.Workout.MuscleIntensity[muscles[i]] > r.Workout.MuscleIntensity[muscles[j]]
	})
	cyan := color.New(color.FgCyan)
	for _, m := range muscles {
		n := r.Workout.MuscleIntensity[m]
		fmt.Printf("  %-14s %s %d\n", m, cyan.Sprint(strings.Repeat("#", n)), n)
	}
}

func init() {
	weekCmd.Flags().StringVarP(&weekUser, "user", "u", "", "user id or email")
	weekCmd.Flags().StringVarP(&weekDate, "date", "d", "", "any day in the week (YYYY-MM-DD)")
	weekCmd.Flags().BoolVar(&weekExport, "export", false, "upload the report to S3 and print a download link")
	rootCmd.AddCommand(weekCmd)
}

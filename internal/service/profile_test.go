package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/pageza/fittrack/backend/internal/testhelpers"
	"github.com/pageza/fittrack/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileNotFound(t *testing.T) {
	svc := service.NewProfileService(testhelpers.SetupTestDatabase(t))
	_, err := svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpsertProfile(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.UpsertProfile(ctx, userID, &types.ProfileRequest{
		Name: "Priya", Age: 29, HeightCm: 162, WeightKg: 58,
		Gender: models.GenderFemale, Goal: models.GoalMuscleGain,
	})
	require.NoError(t, err)
	assert.Equal(t, "Priya", created.Name)
	assert.Equal(t, models.GoalMuscleGain, created.Goal)
	assert.Equal(t, models.ActivitySedentary, created.ActivityLevel)

	updated, err := svc.UpsertProfile(ctx, userID, &types.ProfileRequest{
		Name: "Priya S", Age: 30, HeightCm: 162, WeightKg: 57,
		DietType: models.DietVegan,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Priya S", updated.Name)
	assert.Equal(t, 30, updated.Age)
	assert.Equal(t, models.DietVegan, updated.DietType)

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProfileRequiresExisting(t *testing.T) {
	svc := service.NewProfileService(testhelpers.SetupTestDatabase(t))
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.UpdateProfile(ctx, userID, &types.ProfileRequest{Name: "Sam"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.UpsertProfile(ctx, userID, &types.ProfileRequest{Name: "Sam", Goal: models.GoalFatLoss})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, userID, &types.ProfileRequest{Name: "Sam", Age: 40, ActivityLevel: models.ActivityExtraActive})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Age)
	assert.Equal(t, models.ActivityExtraActive, updated.ActivityLevel)
	assert.Equal(t, models.GoalFatLoss, updated.Goal)
}

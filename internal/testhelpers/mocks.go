package testhelpers

import (
	"context"
	"time"

	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockEstimatorService is a mock implementation of the IEstimatorService interface
type MockEstimatorService struct {
	mock.Mock
}

func (m *MockEstimatorService) EstimateMeal(ctx context.Context, description string, profile *models.UserProfile) (*service.MealEstimate, error) {
	args := m.Called(ctx, description, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MealEstimate), args.Error(1)
}

func (m *MockEstimatorService) EstimateWorkout(ctx context.Context, description string, profile *models.UserProfile) (*service.WorkoutEstimate, error) {
	args := m.Called(ctx, description, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WorkoutEstimate), args.Error(1)
}

// MockObjectStorage is a mock implementation of the ObjectStorage interface
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

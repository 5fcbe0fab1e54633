package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/cinerec/cinerec/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) RecordAction(ctx context.Context, req *models.ActionRequest) (*models.Action, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Action), args.Error(1)
}

func (m *MockTrackingService) GetUserActions(ctx context.Context, userID string, limit int, actionType string) ([]models.Action, error) {
	args := m.Called(ctx, userID, limit, actionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Action), args.Error(1)
}

func (m *MockTrackingService) GetRecentActions(ctx context.Context, userID string) ([]models.Action, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Action), args.Error(1)
}

func (m *MockTrackingService) GetUserItemRating(ctx context.Context, userID string, itemID int64) (float64, bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockTrackingService) GetActedItemIDs(ctx context.Context, userID string, actionTypes ...string) (map[int64]bool, error) {
	args := m.Called(ctx, userID, actionTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) AvailableMovies(ctx context.Context, limit int) ([]models.Movie, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Movie), args.Error(1)
}

type MockMatrixFactorization struct {
	mock.Mock
}

func (m *MockMatrixFactorization) Predict(ctx context.Context, userID string, itemIDs []int64) ([]Prediction, error) {
	args := m.Called(ctx, userID, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Prediction), args.Error(1)
}

type MockSimilarUserFinder struct {
	mock.Mock
}

func (m *MockSimilarUserFinder) FindSimilarUsers(ctx context.Context, userID string, limit int) ([]models.SimilarUser, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SimilarUser), args.Error(1)
}

type MockProfileBuilder struct {
	mock.Mock
}

func (m *MockProfileBuilder) Build(ctx context.Context, userID string) *models.UserProfile {
	args := m.Called(ctx, userID)
	return args.Get(0).(*models.UserProfile)
}

type MockScorer struct {
	mock.Mock
	name string
}

func (m *MockScorer) Name() string { return m.name }

func (m *MockScorer) Score(ctx context.Context, profile *models.UserProfile, candidates []models.Movie) ([]models.ScoreRecord, error) {
	args := m.Called(ctx, profile, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, *models.UserProfile, []models.Movie) []models.ScoreRecord); ok {
		return fn(ctx, profile, candidates), args.Error(1)
	}
	return args.Get(0).([]models.ScoreRecord), args.Error(1)
}

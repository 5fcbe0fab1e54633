package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/pkg/models"
)

func float64Ptr(v float64) *float64 { return &v }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Recommend(ctx context.Context, userID string, opts services.RecommendOptions) ([]models.HybridRecord, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HybridRecord), args.Error(1)
}

type mockTracking struct {
	mock.Mock
}

func (m *mockTracking) RecordAction(ctx context.Context, req *models.ActionRequest) (*models.Action, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Action), args.Error(1)
}

func (m *mockTracking) GetUserActions(ctx context.Context, userID string, limit int, actionType string) ([]models.Action, error) {
	args := m.Called(ctx, userID, limit, actionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Action), args.Error(1)
}

func (m *mockTracking) GetRecentActions(ctx context.Context, userID string) ([]models.Action, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Action), args.Error(1)
}

func (m *mockTracking) GetUserItemRating(ctx context.Context, userID string, itemID int64) (float64, bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *mockTracking) GetActedItemIDs(ctx context.Context, userID string, actionTypes ...string) (map[int64]bool, error) {
	args := m.Called(ctx, userID, actionTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

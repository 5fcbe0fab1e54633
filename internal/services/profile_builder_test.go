package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerec/cinerec/pkg/models"
)

func ratingAction(value float64, ts time.Time, meta *models.ActionMetadata) models.Action {
	return models.Action{
		UserID:    "user-1",
		ItemID:    1,
		Type:      models.ActionRate,
		Value:     value,
		Timestamp: ts,
		Metadata:  meta,
	}
}

func newTestProfileBuilder(tracking *MockTrackingService, now time.Time) *ProfileBuilder {
	builder := NewProfileBuilder(tracking, testLogger())
	builder.now = func() time.Time { return now }
	return builder
}

func TestProfileBuilder_Build_RatingStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ratings := []models.Action{
		ratingAction(8, now.Add(-24*time.Hour), nil),
		ratingAction(6, now.Add(-10*24*time.Hour), nil),
		ratingAction(7, now.Add(-5*24*time.Hour), nil),
	}

	tracking := &MockTrackingService{}
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, models.ActionRate).Return(ratings, nil)
	tracking.On("GetRecentActions", context.Background(), "user-1").Return([]models.Action{}, nil)
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, "").Return(ratings, nil)

	profile := newTestProfileBuilder(tracking, now).Build(context.Background(), "user-1")

	assert.Equal(t, 3, profile.RatingCount)
	assert.InDelta(t, 7.0, profile.AvgRating, 1e-9)
	assert.InDelta(t, 2.0/3.0, profile.RatingVariance, 1e-9)
	assert.Equal(t, 10, profile.TimeActive)
}

func TestProfileBuilder_Build_Preferences(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ratings := []models.Action{
		ratingAction(10, now.Add(-time.Hour), &models.ActionMetadata{
			Genres:      []string{"Sci-Fi", "Thriller"},
			Directors:   []string{"Nolan"},
			Runtime:     150,
			ReleaseYear: 2010,
		}),
		ratingAction(1, now.Add(-2*time.Hour), &models.ActionMetadata{
			Genres: []string{"Romance"},
		}),
		ratingAction(9, now.Add(-3*time.Hour), &models.ActionMetadata{
			Genres:  []string{"sci-fi"},
			Runtime: 130,
		}),
	}

	tracking := &MockTrackingService{}
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, models.ActionRate).Return(ratings, nil)
	tracking.On("GetRecentActions", context.Background(), "user-1").Return([]models.Action{}, nil)
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, "").Return(ratings, nil)

	profile := newTestProfileBuilder(tracking, now).Build(context.Background(), "user-1")
	prefs := profile.Preferences

	// Case-folded keys merge Sci-Fi and sci-fi
	sciFi, ok := prefs.Genres[foldAttr("Sci-Fi")]
	require.True(t, ok)
	assert.Greater(t, sciFi, 0.5)

	romance := prefs.Genres[foldAttr("Romance")]
	assert.Less(t, romance, 0.0)

	assert.Greater(t, prefs.Directors[foldAttr("Nolan")], 0.0)

	// Only the two liked runtimes contribute, weighted by signal strength
	require.NotNil(t, prefs.Runtime)
	assert.Greater(t, prefs.Runtime.Ideal, 129)
	assert.LessOrEqual(t, prefs.Runtime.Ideal, 150)

	require.NotNil(t, prefs.Year)
	assert.LessOrEqual(t, prefs.Year.Min, 2010)
	assert.GreaterOrEqual(t, prefs.Year.Max, 2010)
}

func TestProfileBuilder_Build_SessionSignals(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	all := []models.Action{
		{Type: models.ActionView, Timestamp: now.Add(-10 * time.Minute)},
		{Type: models.ActionClick, Timestamp: now.Add(-8 * time.Minute)},
		{Type: models.ActionView, Timestamp: now.Add(-48 * time.Hour)},
		{Type: models.ActionView, Timestamp: now.Add(-48*time.Hour + 5*time.Minute)},
	}

	tracking := &MockTrackingService{}
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, models.ActionRate).Return([]models.Action{}, nil)
	tracking.On("GetRecentActions", context.Background(), "user-1").Return(all[:2], nil)
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, "").Return(all, nil)

	profile := newTestProfileBuilder(tracking, now).Build(context.Background(), "user-1")

	// Two sessions of two actions each
	assert.InDelta(t, 2.0, profile.Engagement, 1e-9)
	assert.InDelta(t, 0.2, profile.SessionDepth, 1e-9)
	assert.Greater(t, profile.RecencyScore, 0.9)
	assert.Len(t, profile.RecentActions, 2)
}

func TestProfileBuilder_Build_CapsRecentWindow(t *testing.T) {
	now := time.Now()
	recent := make([]models.Action, models.SequenceWindow+10)
	for i := range recent {
		recent[i] = models.Action{Type: models.ActionView, Timestamp: now}
	}

	tracking := &MockTrackingService{}
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, models.ActionRate).Return([]models.Action{}, nil)
	tracking.On("GetRecentActions", context.Background(), "user-1").Return(recent, nil)
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, "").Return(recent, nil)

	profile := newTestProfileBuilder(tracking, now).Build(context.Background(), "user-1")
	assert.Len(t, profile.RecentActions, models.SequenceWindow)
}

func TestProfileBuilder_Build_DegradesOnStoreFailure(t *testing.T) {
	tracking := &MockTrackingService{}
	tracking.On("GetUserActions", context.Background(), "user-1", actionFetchLimit, models.ActionRate).
		Return(nil, errors.New("connection refused"))

	profile := newTestProfileBuilder(tracking, time.Now()).Build(context.Background(), "user-1")

	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, 0, profile.RatingCount)
	assert.Empty(t, profile.Preferences.Genres)
	assert.Equal(t, ratingThreshold, profile.Preferences.RatingThreshold)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerec/cinerec/pkg/models"
)

func newTestSequenceScorer(now time.Time) *SequenceScorer {
	scorer := NewSequenceScorer(testLogger())
	scorer.now = func() time.Time { return now }
	return scorer
}

func TestSequenceScorer_EmptyWindowIsCold(t *testing.T) {
	scorer := newTestSequenceScorer(time.Now())
	candidates := []models.Movie{{ID: 1, Popularity: 60, AverageRating: 7, RatingCount: 100}}

	records, err := scorer.Score(context.Background(), &models.UserProfile{UserID: "user-1"}, candidates)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SourceSequenceCold, records[0].Source)
}

func TestSequenceScorer_SessionSteersTowardActiveGenre(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	scorer := newTestSequenceScorer(now)

	profile := &models.UserProfile{
		UserID: "user-1",
		RecentActions: []models.Action{
			{Type: models.ActionWatchTime, Value: 90, Timestamp: now.Add(-10 * time.Minute),
				Metadata: &models.ActionMetadata{Genres: []string{"Horror"}, Directors: []string{"Carpenter"}}},
			{Type: models.ActionView, Timestamp: now.Add(-20 * time.Minute),
				Metadata: &models.ActionMetadata{Genres: []string{"Horror"}}},
		},
	}

	candidates := []models.Movie{
		{ID: 1, Genres: []string{"Horror"}, Directors: []string{"Carpenter"}},
		{ID: 2, Genres: []string{"Comedy"}},
	}

	records, err := scorer.Score(context.Background(), profile, candidates)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.SourceSequence, records[0].Source)
	assert.Greater(t, records[0].Score, records[1].Score)
	// A candidate sharing no session attribute scores zero affinity
	assert.InDelta(t, normalize(0), records[1].Score, 1e-9)
}

func TestSequenceScorer_RecentActionsOutweighOldOnes(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	scorer := newTestSequenceScorer(now)

	profile := &models.UserProfile{
		UserID: "user-1",
		RecentActions: []models.Action{
			{Type: models.ActionView, Timestamp: now.Add(-5 * time.Minute),
				Metadata: &models.ActionMetadata{Genres: []string{"Action"}}},
			{Type: models.ActionView, Timestamp: now.Add(-72 * time.Hour),
				Metadata: &models.ActionMetadata{Genres: []string{"Documentary"}}},
		},
	}

	candidates := []models.Movie{
		{ID: 1, Genres: []string{"Action"}},
		{ID: 2, Genres: []string{"Documentary"}},
	}

	records, err := scorer.Score(context.Background(), profile, candidates)
	require.NoError(t, err)
	assert.Greater(t, records[0].Score, records[1].Score)
}

func TestEngagementBoost(t *testing.T) {
	assert.InDelta(t, 1.2, engagementBoost(models.Action{Type: models.ActionWatchTime, Value: 120}), 1e-9)
	assert.InDelta(t, 0.5, engagementBoost(models.Action{Type: models.ActionWatchTime, Value: 30}), 1e-9)
	assert.InDelta(t, 0.9, engagementBoost(models.Action{Type: models.ActionRate, Value: 9}), 1e-9)
	assert.InDelta(t, 0.7, engagementBoost(models.Action{Type: models.ActionAddWatchlist}), 1e-9)
	assert.InDelta(t, 0.5, engagementBoost(models.Action{Type: models.ActionView}), 1e-9)
	assert.InDelta(t, 0.4, engagementBoost(models.Action{Type: models.ActionClick}), 1e-9)
}

func TestSequenceScorer_ZeroWeightWindowIsNeutral(t *testing.T) {
	now := time.Now()
	scorer := newTestSequenceScorer(now)

	// Rating of zero carries no engagement weight
	profile := &models.UserProfile{
		UserID: "user-1",
		RecentActions: []models.Action{
			{Type: models.ActionRate, Value: 0, Timestamp: now,
				Metadata: &models.ActionMetadata{Genres: []string{"Drama"}}},
		},
	}

	records, err := scorer.Score(context.Background(), profile, []models.Movie{{ID: 1, Genres: []string{"Drama"}}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, sequenceNeutral, records[0].Score, 1e-9)
}

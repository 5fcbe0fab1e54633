package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerec/cinerec/pkg/models"
)

func TestRuleScorer_ColdStartFallsBackToPopularity(t *testing.T) {
	scorer := NewRuleScorer(testLogger())
	candidates := []models.Movie{{ID: 1, Popularity: 75, AverageRating: 7.8, RatingCount: 900}}

	records, err := scorer.Score(context.Background(), profileWithPrefs(0, models.Preferences{}), candidates)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SourceRuleCold, records[0].Source)
}

func TestRuleScorer_AdditiveRules(t *testing.T) {
	scorer := NewRuleScorer(testLogger())
	profile := profileWithPrefs(10, models.Preferences{
		Genres:    map[string]float64{foldAttr("thriller"): 0.6},
		Directors: map[string]float64{foldAttr("fincher"): 0.5},
		Actors:    map[string]float64{foldAttr("pitt"): 0.4},
		Runtime:   &models.RuntimePref{Min: 90, Max: 160, Ideal: 120},
		Year:      &models.YearPref{Min: 1995, Max: 2010},
	})

	tests := []struct {
		name  string
		movie models.Movie
		want  float64
	}{
		{
			name: "full match hits every rule",
			movie: models.Movie{
				ID: 1, Genres: []string{"Thriller"}, Directors: []string{"Fincher"},
				Actors: []string{"Pitt"}, Runtime: 139, ReleaseYear: 1999, AverageRating: 8.8,
			},
			want: 1.0,
		},
		{
			name:  "genre only",
			movie: models.Movie{ID: 2, Genres: []string{"Thriller"}, Runtime: 300, ReleaseYear: 1950, AverageRating: 5.0},
			want:  0.35,
		},
		{
			name:  "runtime and year windows",
			movie: models.Movie{ID: 3, Genres: []string{"Romance"}, Runtime: 100, ReleaseYear: 2000, AverageRating: 5.0},
			want:  0.20,
		},
		{
			name:  "highly rated stranger",
			movie: models.Movie{ID: 4, Runtime: 300, ReleaseYear: 1950, AverageRating: 9.0},
			want:  0.10,
		},
		{
			name:  "nothing matches",
			movie: models.Movie{ID: 5, Genres: []string{"Romance"}, Runtime: 300, ReleaseYear: 1950, AverageRating: 5.0},
			want:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := scorer.Score(context.Background(), profile, []models.Movie{tt.movie})
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, models.SourceRule, records[0].Source)
			assert.InDelta(t, tt.want, records[0].Score, 1e-9)
		})
	}
}

func TestRuleScorer_WeakPreferencesDoNotFire(t *testing.T) {
	scorer := NewRuleScorer(testLogger())
	// Weight at the threshold does not count as established taste
	profile := profileWithPrefs(10, models.Preferences{
		Genres: map[string]float64{foldAttr("comedy"): ruleAttrThreshold},
	})

	records, err := scorer.Score(context.Background(), profile, []models.Movie{
		{ID: 1, Genres: []string{"Comedy"}, AverageRating: 5.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, records[0].Score)
}

func TestHasEstablishedAttr(t *testing.T) {
	prefs := map[string]float64{
		foldAttr("drama"):  0.8,
		foldAttr("horror"): -0.5,
	}

	assert.True(t, hasEstablishedAttr(prefs, []string{"Drama"}))
	assert.False(t, hasEstablishedAttr(prefs, []string{"Horror"}))
	assert.False(t, hasEstablishedAttr(prefs, []string{"Western"}))
	assert.False(t, hasEstablishedAttr(prefs, nil))
}

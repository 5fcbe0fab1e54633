package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/cinerec/cinerec/pkg/models"
)

const (
	// ratingThreshold is the policy cutoff an item's average rating must
	// clear to count as a quality match in rule scoring.
	ratingThreshold = 6.5

	// actionFetchLimit bounds how much history feeds one profile build.
	actionFetchLimit = 1000
)

// ProfileBuilder aggregates a user's action history into a UserProfile.
// The profile is request-local and discarded after the response.
type ProfileBuilder struct {
	tracking TrackingServiceInterface
	logger   *logrus.Logger
	now      func() time.Time
}

func NewProfileBuilder(tracking TrackingServiceInterface, logger *logrus.Logger) *ProfileBuilder {
	return &ProfileBuilder{
		tracking: tracking,
		logger:   logger,
		now:      time.Now,
	}
}

// Build derives the preference model for userID. Downstream read errors
// degrade to a zero profile instead of propagating; the engine prefers a
// partial answer over a failed one.
func (b *ProfileBuilder) Build(ctx context.Context, userID string) *models.UserProfile {
	ratings, err := b.tracking.GetUserActions(ctx, userID, actionFetchLimit, models.ActionRate)
	if err != nil {
		b.logger.WithError(err).WithField("user_id", userID).Warn("Profile degraded: failed to load ratings")
		return degenerateProfile(userID)
	}

	recent, err := b.tracking.GetRecentActions(ctx, userID)
	if err != nil {
		b.logger.WithError(err).WithField("user_id", userID).Warn("Profile degraded: failed to load recent actions")
		return degenerateProfile(userID)
	}

	all, err := b.tracking.GetUserActions(ctx, userID, actionFetchLimit, "")
	if err != nil {
		b.logger.WithError(err).WithField("user_id", userID).Warn("Profile degraded: failed to load action history")
		return degenerateProfile(userID)
	}

	now := b.now()
	profile := &models.UserProfile{
		UserID:      userID,
		Preferences: emptyPreferences(),
	}

	sessions := groupBySessions(all, sessionTimeout)
	if len(sessions) > 0 {
		last := sessions[len(sessions)-1]
		profile.SessionDepth = math.Min(1, float64(len(last))/10)
		profile.Engagement = float64(len(all)) / float64(len(sessions))
	}

	profile.RecencyScore = recencyScore(all, now)
	if len(recent) > models.SequenceWindow {
		recent = recent[:models.SequenceWindow]
	}
	profile.RecentActions = recent

	b.deriveRatingStats(profile, ratings, now)
	b.derivePreferences(profile, ratings, now)

	return profile
}

func (b *ProfileBuilder) deriveRatingStats(profile *models.UserProfile, ratings []models.Action, now time.Time) {
	profile.RatingCount = len(ratings)
	if len(ratings) == 0 {
		return
	}

	values := make([]float64, len(ratings))
	first := ratings[0].Timestamp
	for i, r := range ratings {
		values[i] = r.Value
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
	}

	profile.AvgRating = stat.Mean(values, nil)
	profile.RatingVariance = ratingVariance(values)
	profile.TimeActive = int(now.Sub(first).Hours() / 24)
}

func (b *ProfileBuilder) derivePreferences(profile *models.UserProfile, ratings []models.Action, now time.Time) {
	prefs := &profile.Preferences

	genreSum := make(map[string]float64)
	genreCount := make(map[string]int)
	directorSum := make(map[string]float64)
	directorCount := make(map[string]int)
	actorSum := make(map[string]float64)
	actorCount := make(map[string]int)

	var runtimeWeighted, runtimeWeight float64
	var yearWeighted, yearWeight float64

	for _, r := range ratings {
		signal := normalizeRatingSignal(r.Value)
		if r.Metadata == nil {
			continue
		}

		accumulate(genreSum, genreCount, r.Metadata.Genres, signal)
		accumulate(directorSum, directorCount, r.Metadata.Directors, signal)
		accumulate(actorSum, actorCount, r.Metadata.Actors, signal)

		// Runtime and year preferences track what the user likes, so only
		// positive signals contribute.
		if signal > 0 {
			if r.Metadata.Runtime > 0 {
				runtimeWeighted += float64(r.Metadata.Runtime) * signal
				runtimeWeight += signal
			}
			if r.Metadata.ReleaseYear > 0 {
				yearWeighted += float64(r.Metadata.ReleaseYear) * signal
				yearWeight += signal
			}
		}
	}

	prefs.Genres = finalizeWeights(genreSum, genreCount)
	prefs.Directors = finalizeWeights(directorSum, directorCount)
	prefs.Actors = finalizeWeights(actorSum, actorCount)

	currentYear := now.Year()
	if runtimeWeight > 0 {
		ideal := int(math.Round(runtimeWeighted / runtimeWeight))
		prefs.Runtime = &models.RuntimePref{
			Min:   max(50, ideal-40),
			Max:   ideal + 50,
			Ideal: ideal,
		}
	} else {
		prefs.Runtime = &models.RuntimePref{Min: 70, Max: 190, Ideal: 120}
	}

	if yearWeight > 0 {
		ideal := int(math.Round(yearWeighted / yearWeight))
		prefs.Year = &models.YearPref{
			Min: max(1950, ideal-15),
			Max: min(currentYear, ideal+15),
		}
	} else {
		prefs.Year = &models.YearPref{Min: 1980, Max: currentYear}
	}
}

func accumulate(sums map[string]float64, counts map[string]int, attrs []string, signal float64) {
	for _, attr := range attrs {
		key := foldAttr(attr)
		if key == "" {
			continue
		}
		sums[key] += signal
		counts[key]++
	}
}

func finalizeWeights(sums map[string]float64, counts map[string]int) map[string]float64 {
	weights := make(map[string]float64, len(sums))
	for key, sum := range sums {
		n := counts[key]
		if n < 1 {
			n = 1
		}
		weights[key] = sum / float64(n)
	}
	return weights
}

func emptyPreferences() models.Preferences {
	return models.Preferences{
		Genres:          make(map[string]float64),
		Directors:       make(map[string]float64),
		Actors:          make(map[string]float64),
		RatingThreshold: ratingThreshold,
	}
}

func degenerateProfile(userID string) *models.UserProfile {
	return &models.UserProfile{
		UserID:      userID,
		Preferences: emptyPreferences(),
	}
}

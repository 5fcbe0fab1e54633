package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gonum.org/v1/gonum/stat"

	"github.com/cinerec/cinerec/pkg/models"
)

const (
	// sessionTimeout is the maximal intra-session gap between actions.
	sessionTimeout = 30 * time.Minute

	// recencyHalfLife is the decay half-life for recency signals.
	recencyHalfLife = 24.0 // hours
)

var attrFolder = cases.Fold()

// foldAttr canonicalizes an attribute key (genre, director, actor) so that
// "Sci-Fi" and "sci-fi" accumulate into the same preference bucket.
func foldAttr(s string) string {
	return attrFolder.String(strings.TrimSpace(s))
}

// normalize maps a raw 1-10 strength signal to [0,1].
func normalize(x float64) float64 {
	if x < 1 {
		return 0
	}
	if x > 10 {
		return 1
	}
	return (x - 1) / 9
}

// normalizeRatingSignal maps a 0-10 rating to a [-1,1] like/dislike signal
// centered at 5.5.
func normalizeRatingSignal(v float64) float64 {
	s := (v - 5.5) / 4.5
	if s < -1 {
		return -1
	}
	if s > 1 {
		return 1
	}
	return s
}

// popularityScore is a user-independent signal computed from item-intrinsic
// statistics, used by every cold-start fallback.
func popularityScore(m *models.Movie) float64 {
	logTerm := math.Log(float64(m.RatingCount)+1) / math.Log(10000)
	if logTerm > 1 {
		logTerm = 1
	}
	score := 0.4*(m.Popularity/100) + 0.4*(m.AverageRating/10) + 0.2*logTerm
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ratingVariance is the population variance; 0 for fewer than two samples.
func ratingVariance(ratings []float64) float64 {
	if len(ratings) < 2 {
		return 0
	}
	mean := stat.Mean(ratings, nil)
	var sum float64
	for _, r := range ratings {
		d := r - mean
		sum += d * d
	}
	return sum / float64(len(ratings))
}

// groupBySessions splits actions into sessions: a new session starts whenever
// the gap from the previous action exceeds the timeout. Sessions are emitted
// in chronological order regardless of input ordering.
func groupBySessions(actions []models.Action, timeout time.Duration) [][]models.Action {
	if len(actions) == 0 {
		return nil
	}

	sorted := make([]models.Action, len(actions))
	copy(sorted, actions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sessions [][]models.Action
	current := []models.Action{sorted[0]}
	for _, a := range sorted[1:] {
		if a.Timestamp.Sub(current[len(current)-1].Timestamp) > timeout {
			sessions = append(sessions, current)
			current = nil
		}
		current = append(current, a)
	}
	sessions = append(sessions, current)

	return sessions
}

// recencyScore decays with the age of the most recent action: 1 for an action
// right now, 0.5 after one half-life, 0 when there are no actions.
func recencyScore(actions []models.Action, now time.Time) float64 {
	if len(actions) == 0 {
		return 0
	}

	latest := actions[0].Timestamp
	for _, a := range actions[1:] {
		if a.Timestamp.After(latest) {
			latest = a.Timestamp
		}
	}

	hours := now.Sub(latest).Hours()
	if hours < 0 {
		hours = 0
	}
	score := math.Exp(-math.Ln2 * hours / recencyHalfLife)
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// sequenceNeutral is the final score when the session window carries no
// usable signal weight.
const sequenceNeutral = 0.4

// SequenceScorer scores candidates by affinity with the user's most recent
// actions, so that an active session steers toward what the user is watching
// right now rather than their long-term taste.
type SequenceScorer struct {
	logger *logrus.Logger
	now    func() time.Time
}

func NewSequenceScorer(logger *logrus.Logger) *SequenceScorer {
	return &SequenceScorer{logger: logger, now: time.Now}
}

func (s *SequenceScorer) Name() string { return "sequence" }

func (s *SequenceScorer) Score(ctx context.Context, profile *models.UserProfile, candidates []models.Movie) ([]models.ScoreRecord, error) {
	if len(profile.RecentActions) == 0 {
		return popularityFallback(candidates, models.SourceSequenceCold), nil
	}

	genres, directors, actors, totalWeight := s.sessionSignals(profile.RecentActions)

	records := make([]models.ScoreRecord, 0, len(candidates))
	for i := range candidates {
		m := &candidates[i]

		score := sequenceNeutral
		if totalWeight > 0 {
			genreScore := signalAttrScore(genres, m.Genres, totalWeight, false)
			directorScore := signalAttrScore(directors, m.Directors, totalWeight, true)
			actorScore := signalAttrScore(actors, m.Actors, totalWeight, false)
			score = normalize((0.5*genreScore + 0.3*directorScore + 0.2*actorScore) * 10)
		}

		records = append(records, models.ScoreRecord{
			ItemID: m.ID,
			Item:   m,
			Score:  score,
			Source: models.SourceSequence,
		})
	}

	return records, nil
}

// sessionSignals accumulates per-attribute affinity from the recent window.
// Each action contributes its type-specific engagement boost decayed by age
// and by position in the window, newest actions counting the most.
func (s *SequenceScorer) sessionSignals(recent []models.Action) (genres, directors, actors map[string]float64, totalWeight float64) {
	genres = make(map[string]float64)
	directors = make(map[string]float64)
	actors = make(map[string]float64)

	now := s.now()
	for i, a := range recent {
		hours := now.Sub(a.Timestamp).Hours()
		if hours < 0 {
			hours = 0
		}
		decay := math.Exp(-math.Ln2 * hours / recencyHalfLife)
		positionPenalty := math.Min(0.3, float64(i)/40)
		weight := decay * (1 - positionPenalty) * engagementBoost(a)
		if weight <= 0 || a.Metadata == nil {
			continue
		}

		addSignal(genres, a.Metadata.Genres, weight)
		addSignal(directors, a.Metadata.Directors, weight)
		addSignal(actors, a.Metadata.Actors, weight)
		totalWeight += weight
	}

	return genres, directors, actors, totalWeight
}

// engagementBoost weighs an action by how strong an intent signal its type
// carries. Watch time is in minutes; an hour of watching outranks a click.
func engagementBoost(a models.Action) float64 {
	switch a.Type {
	case models.ActionWatchTime:
		return math.Min(1.2, a.Value/60)
	case models.ActionRate:
		return a.Value / 10
	case models.ActionAddWatchlist:
		return 0.7
	case models.ActionView:
		return 0.5
	default:
		return 0.4
	}
}

func addSignal(signals map[string]float64, attrs []string, weight float64) {
	for _, attr := range attrs {
		key := foldAttr(attr)
		if key == "" {
			continue
		}
		signals[key] += weight
	}
}

// signalAttrScore normalizes an attribute's accumulated signal by the total
// session weight and reduces matches by max or mean. No match scores 0, not
// the neutral default; session affinity is all-or-nothing per attribute.
func signalAttrScore(signals map[string]float64, attrs []string, totalWeight float64, useMax bool) float64 {
	var sum, best float64
	matched := 0
	for _, attr := range attrs {
		signal, ok := signals[foldAttr(attr)]
		if !ok {
			continue
		}
		value := signal / totalWeight
		if value > 1 {
			value = 1
		}
		sum += value
		if matched == 0 || value > best {
			best = value
		}
		matched++
	}

	if matched == 0 {
		return 0
	}
	if useMax {
		return best
	}
	return sum / float64(matched)
}

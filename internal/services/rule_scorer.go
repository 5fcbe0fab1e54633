package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// ruleAttrThreshold is the minimal preference weight for an attribute to count
// as an established taste in rule matching.
const ruleAttrThreshold = 0.3

// RuleScorer applies a fixed additive rule set over established preferences.
// It is fully deterministic: the same profile and candidate always produce
// the same score, which makes it the auditable baseline next to the learned
// strategies.
type RuleScorer struct {
	logger *logrus.Logger
}

func NewRuleScorer(logger *logrus.Logger) *RuleScorer {
	return &RuleScorer{logger: logger}
}

func (s *RuleScorer) Name() string { return "rule" }

func (s *RuleScorer) Score(ctx context.Context, profile *models.UserProfile, candidates []models.Movie) ([]models.ScoreRecord, error) {
	if profile.RatingCount == 0 {
		return popularityFallback(candidates, models.SourceRuleCold), nil
	}

	prefs := &profile.Preferences
	records := make([]models.ScoreRecord, 0, len(candidates))

	for i := range candidates {
		m := &candidates[i]

		var score float64
		if hasEstablishedAttr(prefs.Genres, m.Genres) {
			score += 0.35
		}
		if hasEstablishedAttr(prefs.Directors, m.Directors) {
			score += 0.20
		}
		if hasEstablishedAttr(prefs.Actors, m.Actors) {
			score += 0.15
		}
		if prefs.Runtime != nil && m.Runtime >= prefs.Runtime.Min && m.Runtime <= prefs.Runtime.Max {
			score += 0.10
		}
		if prefs.Year != nil && m.ReleaseYear >= prefs.Year.Min && m.ReleaseYear <= prefs.Year.Max {
			score += 0.10
		}
		if m.AverageRating >= prefs.RatingThreshold {
			score += 0.10
		}
		if score > 1 {
			score = 1
		}

		records = append(records, models.ScoreRecord{
			ItemID: m.ID,
			Item:   m,
			Score:  score,
			Source: models.SourceRule,
		})
	}

	return records, nil
}

// hasEstablishedAttr reports whether any of the item's attributes carries a
// preference weight above the rule threshold.
func hasEstablishedAttr(prefs map[string]float64, attrs []string) bool {
	for _, attr := range attrs {
		if w, ok := prefs[foldAttr(attr)]; ok && w > ruleAttrThreshold {
			return true
		}
	}
	return false
}

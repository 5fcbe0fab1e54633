package services

import "github.com/cinerec/cinerec/pkg/models"

// Maturity tier boundaries on the profile's rating count.
const (
	tierNewMax         = 5
	tierEstablishedMax = 25
)

// strategyWeights maps profile maturity to the fusion weights. New users lean
// on content and rules, established users shift toward collaborative signals,
// and the sequence share grows with session activity. The result is always
// normalized back to the simplex.
func strategyWeights(profile *models.UserProfile) models.StrategyWeights {
	var w models.StrategyWeights

	switch {
	case profile.RatingCount < tierNewMax:
		w = models.StrategyWeights{
			Content:       0.40,
			Collaborative: 0.10,
			Sequence:      0.20 + 0.1*profile.RecencyScore,
			Rule:          0.30,
		}
	case profile.RatingCount < tierEstablishedMax:
		w = models.StrategyWeights{
			Content:       0.35,
			Collaborative: 0.25,
			Sequence:      0.25 + 0.05*profile.SessionDepth,
			Rule:          0.15,
		}
	default:
		w = models.StrategyWeights{
			Content:       0.25,
			Collaborative: 0.45,
			Sequence:      0.20 + 0.1*profile.RecencyScore,
			Rule:          0.10,
		}
	}

	total := w.Content + w.Collaborative + w.Sequence + w.Rule
	w.Content /= total
	w.Collaborative /= total
	w.Sequence /= total
	w.Rule /= total

	return w
}

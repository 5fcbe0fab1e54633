package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// Attribute match defaults shared by the content and sequence scorers: an
// empty preference map is a neutral 0.5, an item with no matching attribute
// sits just below neutral at 0.45.
const (
	attrScoreUnknown = 0.5
	attrScoreNoMatch = 0.45
)

// ContentScorer scores candidates by similarity between item attributes and
// the profile's derived preferences.
type ContentScorer struct {
	logger *logrus.Logger
}

func NewContentScorer(logger *logrus.Logger) *ContentScorer {
	return &ContentScorer{logger: logger}
}

func (s *ContentScorer) Name() string { return "content" }

func (s *ContentScorer) Score(ctx context.Context, profile *models.UserProfile, candidates []models.Movie) ([]models.ScoreRecord, error) {
	if profile.RatingCount == 0 {
		return popularityFallback(candidates, models.SourceContentCold), nil
	}

	prefs := &profile.Preferences
	records := make([]models.ScoreRecord, 0, len(candidates))

	for i := range candidates {
		m := &candidates[i]

		genreScore := preferenceAttrScore(prefs.Genres, m.Genres, false)
		directorScore := preferenceAttrScore(prefs.Directors, m.Directors, true)
		actorScore := preferenceAttrScore(prefs.Actors, m.Actors, false)
		runtimeScore := runtimeMatchScore(prefs.Runtime, m.Runtime)
		yearScore := yearMatchScore(prefs.Year, m.ReleaseYear)

		raw := 0.4*genreScore + 0.2*directorScore + 0.2*actorScore + 0.1*runtimeScore + 0.1*yearScore

		records = append(records, models.ScoreRecord{
			ItemID: m.ID,
			Item:   m,
			Score:  normalize(raw * 10),
			Source: models.SourceContent,
		})
	}

	return records, nil
}

// preferenceAttrScore maps attribute preference weights from [-1,1] to [0,1]
// via (w+1)/2 and reduces the matches, by max when a single strong preference
// should dominate (directors) and by mean otherwise.
func preferenceAttrScore(prefs map[string]float64, attrs []string, useMax bool) float64 {
	if len(prefs) == 0 {
		return attrScoreUnknown
	}

	var sum, best float64
	matched := 0
	for _, attr := range attrs {
		w, ok := prefs[foldAttr(attr)]
		if !ok {
			continue
		}
		adjusted := (w + 1) / 2
		sum += adjusted
		if matched == 0 || adjusted > best {
			best = adjusted
		}
		matched++
	}

	if matched == 0 {
		return attrScoreNoMatch
	}
	if useMax {
		return best
	}
	return sum / float64(matched)
}

func runtimeMatchScore(pref *models.RuntimePref, runtime int) float64 {
	if pref == nil {
		return attrScoreUnknown
	}
	if runtime < pref.Min || runtime > pref.Max {
		return 0.2
	}

	maxSide := max(pref.Ideal-pref.Min, pref.Max-pref.Ideal)
	if maxSide == 0 {
		return 1
	}
	dist := runtime - pref.Ideal
	if dist < 0 {
		dist = -dist
	}
	return 1 - float64(dist)/float64(maxSide)
}

func yearMatchScore(pref *models.YearPref, year int) float64 {
	if pref == nil {
		return attrScoreUnknown
	}
	if year < pref.Min || year > pref.Max {
		return 0.3
	}
	return 1
}

// popularityFallback is the shared cold-start path: score every candidate by
// item-intrinsic popularity, tagged with the strategy's cold source.
func popularityFallback(candidates []models.Movie, source string) []models.ScoreRecord {
	records := make([]models.ScoreRecord, 0, len(candidates))
	for i := range candidates {
		m := &candidates[i]
		records = append(records, models.ScoreRecord{
			ItemID: m.ID,
			Item:   m,
			Score:  popularityScore(m),
			Source: source,
		})
	}
	return records
}

package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// Attribute weights in the redundancy penalty.
const (
	diversityGenreWeight    = 0.3
	diversityDirectorWeight = 0.2
)

// DiversityFilter reranks a fused list by penalizing items that repeat the
// genres and directors already selected above them. It only ever lowers
// scores; no item is dropped here.
type DiversityFilter struct {
	logger *logrus.Logger
}

func NewDiversityFilter(logger *logrus.Logger) *DiversityFilter {
	return &DiversityFilter{logger: logger}
}

// Apply runs the greedy pass: walk the list best-first, penalize each item
// that shares any attribute with everything chosen so far, then re-sort by
// the penalized scores. The penalty is an indicator per attribute class, not
// proportional to how much overlaps. A non-positive factor disables the
// filter.
func (df *DiversityFilter) Apply(records []models.HybridRecord, factor float64) []models.HybridRecord {
	if factor <= 0 || len(records) <= 1 {
		return records
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})

	seenGenres := make(map[string]bool)
	seenDirectors := make(map[string]bool)

	for i := range records {
		rec := &records[i]
		if rec.Item == nil {
			continue
		}

		var penalty float64
		if overlapsSeen(seenGenres, rec.Item.Genres) {
			penalty += diversityGenreWeight
		}
		if overlapsSeen(seenDirectors, rec.Item.Directors) {
			penalty += diversityDirectorWeight
		}
		if penalty > 0 {
			rec.Score *= 1 - penalty*factor
		}

		addSeen(seenGenres, rec.Item.Genres)
		addSeen(seenDirectors, rec.Item.Directors)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].ItemID < records[j].ItemID
	})

	return records
}

// overlapsSeen reports whether any of the item's attributes already appeared
// in the list above it.
func overlapsSeen(seen map[string]bool, attrs []string) bool {
	for _, attr := range attrs {
		if seen[foldAttr(attr)] {
			return true
		}
	}
	return false
}

func addSeen(seen map[string]bool, attrs []string) {
	for _, attr := range attrs {
		if key := foldAttr(attr); key != "" {
			seen[key] = true
		}
	}
}

package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// CollaborativeScorer scores candidates with the latent-factor model and
// falls back to user-based collaborative filtering when the model has no
// predictions for this user.
type CollaborativeScorer struct {
	model            MatrixFactorizationInterface
	finder           SimilarUserFinderInterface
	tracking         TrackingServiceInterface
	similarUserLimit int
	logger           *logrus.Logger
}

func NewCollaborativeScorer(
	model MatrixFactorizationInterface,
	finder SimilarUserFinderInterface,
	tracking TrackingServiceInterface,
	similarUserLimit int,
	logger *logrus.Logger,
) *CollaborativeScorer {
	if similarUserLimit <= 0 {
		similarUserLimit = 50
	}
	return &CollaborativeScorer{
		model:            model,
		finder:           finder,
		tracking:         tracking,
		similarUserLimit: similarUserLimit,
		logger:           logger,
	}
}

func (s *CollaborativeScorer) Name() string { return "collaborative" }

func (s *CollaborativeScorer) Score(ctx context.Context, profile *models.UserProfile, candidates []models.Movie) ([]models.ScoreRecord, error) {
	itemIDs := make([]int64, len(candidates))
	byID := make(map[int64]*models.Movie, len(candidates))
	for i := range candidates {
		itemIDs[i] = candidates[i].ID
		byID[candidates[i].ID] = &candidates[i]
	}

	predictions, err := s.model.Predict(ctx, profile.UserID, itemIDs)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", profile.UserID).
			Warn("Matrix factorization predict failed, falling back to user-based CF")
	}
	if err == nil && len(predictions) > 0 {
		records := make([]models.ScoreRecord, 0, len(predictions))
		for _, p := range predictions {
			item, ok := byID[p.ItemID]
			if !ok {
				continue
			}
			records = append(records, models.ScoreRecord{
				ItemID: p.ItemID,
				Item:   item,
				Score:  normalize(p.Score),
				Source: models.SourceCollaborativeMF,
			})
		}
		return records, nil
	}

	return s.userBasedCF(ctx, profile.UserID, candidates)
}

// userBasedCF predicts from rating neighbors: the similarity-weighted mean of
// each neighbor's rating of the candidate. With no neighbors at all the
// strategy degrades to popularity.
func (s *CollaborativeScorer) userBasedCF(ctx context.Context, userID string, candidates []models.Movie) ([]models.ScoreRecord, error) {
	similar, err := s.finder.FindSimilarUsers(ctx, userID, s.similarUserLimit)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Similar user lookup failed")
		return popularityFallback(candidates, models.SourceCollaborativeCold), nil
	}
	if len(similar) == 0 {
		return popularityFallback(candidates, models.SourceCollaborativeCold), nil
	}

	records := make([]models.ScoreRecord, 0, len(candidates))
	for i := range candidates {
		m := &candidates[i]

		var weightedSum, similaritySum float64
		for _, neighbor := range similar {
			value, rated, err := s.tracking.GetUserItemRating(ctx, neighbor.UserID, m.ID)
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"user_id":  neighbor.UserID,
					"item_id":  m.ID,
					"neighbor": true,
				}).Debug("Neighbor rating lookup failed")
				continue
			}
			if !rated {
				continue
			}
			weightedSum += value * neighbor.Similarity
			similaritySum += neighbor.Similarity
		}

		var score float64
		if similaritySum > 0 {
			score = normalize(weightedSum / similaritySum)
		}

		records = append(records, models.ScoreRecord{
			ItemID: m.ID,
			Item:   m,
			Score:  score,
			Source: models.SourceCollaborativeUser,
		})
	}

	return records, nil
}

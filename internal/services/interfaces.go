package services

import (
	"context"

	"github.com/cinerec/cinerec/pkg/models"
)

// TrackingServiceInterface is the user-action store consumed by the engine.
// Both listing operations return actions newest-first.
type TrackingServiceInterface interface {
	RecordAction(ctx context.Context, req *models.ActionRequest) (*models.Action, error)
	GetUserActions(ctx context.Context, userID string, limit int, actionType string) ([]models.Action, error)
	GetRecentActions(ctx context.Context, userID string) ([]models.Action, error)
	GetUserItemRating(ctx context.Context, userID string, itemID int64) (float64, bool, error)
	GetActedItemIDs(ctx context.Context, userID string, actionTypes ...string) (map[int64]bool, error)
}

// CatalogServiceInterface yields candidate items for scoring.
type CatalogServiceInterface interface {
	AvailableMovies(ctx context.Context, limit int) ([]models.Movie, error)
}

// Prediction is a latent-factor score for one item.
type Prediction struct {
	ItemID int64
	Score  float64
}

// MatrixFactorizationInterface is the latent-factor model consumed by the
// collaborative scorer. An empty result is a valid "no prediction" signal.
type MatrixFactorizationInterface interface {
	Predict(ctx context.Context, userID string, itemIDs []int64) ([]Prediction, error)
}

// SimilarUserFinderInterface finds rating neighbors for user-based CF.
type SimilarUserFinderInterface interface {
	FindSimilarUsers(ctx context.Context, userID string, limit int) ([]models.SimilarUser, error)
}

// ProfileBuilderInterface derives a per-request preference model. It degrades
// to a zero profile instead of failing.
type ProfileBuilderInterface interface {
	Build(ctx context.Context, userID string) *models.UserProfile
}

// StrategyScorer is one of the four scoring strategies. Implementations must
// return scores in [0,1] and must not emit duplicate item ids.
type StrategyScorer interface {
	Name() string
	Score(ctx context.Context, profile *models.UserProfile, candidates []models.Movie) ([]models.ScoreRecord, error)
}

// RecommendationEngineInterface is the orchestrator entry point.
type RecommendationEngineInterface interface {
	Recommend(ctx context.Context, userID string, opts RecommendOptions) ([]models.HybridRecord, error)
}

package services

import (
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/config"
	"github.com/cinerec/cinerec/internal/database"
	"github.com/cinerec/cinerec/internal/messaging"
)

type Services struct {
	Auth      *AuthService
	Health    *HealthService
	RateLimit *RateLimitService
	ActionBus *messaging.ActionBus

	Tracking            *TrackingService
	Catalog             *CatalogService
	MatrixFactorization *MatrixFactorizationModel
	SimilarUsers        *SimilarUserFinder
	ProfileBuilder      *ProfileBuilder

	Engine        *RecommendationEngine
	EngineMetrics *EngineMetrics
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	authService := NewAuthService(cfg, logger, db.Redis)
	healthService := NewHealthService(cfg, logger, db)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis)

	actionBus, err := messaging.NewActionBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	tracking := NewTrackingService(db.PG, actionBus, logger)
	catalog := NewCatalogService(db.PG, logger)
	mfModel := NewMatrixFactorizationModel(db.PG, logger)
	similarUsers := NewSimilarUserFinder(db.Neo4j, logger)
	profileBuilder := NewProfileBuilder(tracking, logger)

	contentScorer := NewContentScorer(logger)
	collaborativeScorer := NewCollaborativeScorer(mfModel, similarUsers, tracking, cfg.Engine.SimilarUserLimit, logger)
	sequenceScorer := NewSequenceScorer(logger)
	ruleScorer := NewRuleScorer(logger)

	diversityFilter := NewDiversityFilter(logger)
	engineMetrics := NewEngineMetrics()

	engine := NewRecommendationEngine(
		profileBuilder, catalog, tracking,
		contentScorer, collaborativeScorer, sequenceScorer, ruleScorer,
		diversityFilter, db.Redis, engineMetrics, &cfg.Engine, logger,
	)

	return &Services{
		Auth:                authService,
		Health:              healthService,
		RateLimit:           rateLimitService,
		ActionBus:           actionBus,
		Tracking:            tracking,
		Catalog:             catalog,
		MatrixFactorization: mfModel,
		SimilarUsers:        similarUsers,
		ProfileBuilder:      profileBuilder,
		Engine:              engine,
		EngineMetrics:       engineMetrics,
	}, nil
}

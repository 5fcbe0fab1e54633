package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/config"
	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/internal/validation"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Action         *ActionHandler
	Recommendation *RecommendationHandler
	User           *UserHandler
}

func New(cfg *config.Config, logger *logrus.Logger, services *services.Services) (*Handlers, error) {
	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Auth:           NewAuthHandler(services.Auth, validator, cfg.Auth.TokenTTL, logger),
		Action:         NewActionHandler(services.Tracking, validator, logger),
		Recommendation: NewRecommendationHandler(services.Engine, logger),
		User:           NewUserHandler(services.Tracking, services.ProfileBuilder, logger),
	}, nil
}

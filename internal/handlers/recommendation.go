package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/pkg/models"
)

type RecommendationHandler struct {
	engine services.RecommendationEngineInterface
	logger *logrus.Logger
}

func NewRecommendationHandler(engine services.RecommendationEngineInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		engine: engine,
		logger: logger,
	}
}

// Get serves GET /api/v1/recommendations/:userId.
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "User ID is required",
			},
		})
		return
	}

	opts := services.RecommendOptions{
		ExcludeRated:     true,
		ExcludeWatchlist: true,
	}

	if countStr := c.Query("count"); countStr != "" {
		if count, err := strconv.Atoi(countStr); err == nil && count > 0 && count <= 100 {
			opts.Count = count
		}
	}
	if minScoreStr := c.Query("min_score"); minScoreStr != "" {
		if minScore, err := strconv.ParseFloat(minScoreStr, 64); err == nil && minScore >= 0 && minScore <= 1 {
			opts.MinScore = &minScore
		}
	}
	if factorStr := c.Query("diversity_factor"); factorStr != "" {
		if factor, err := strconv.ParseFloat(factorStr, 64); err == nil && factor <= 1 {
			opts.DiversityFactor = &factor
		}
	}
	if c.Query("exclude_rated") == "false" {
		opts.ExcludeRated = false
	}
	if c.Query("exclude_watchlist") == "false" {
		opts.ExcludeWatchlist = false
	}
	opts.IncludeReasons = c.Query("explain") == "true"

	recommendations, err := h.engine.Recommend(c.Request.Context(), userID, opts)
	if err != nil {
		if errors.Is(err, services.ErrEngineTimeout) {
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": gin.H{
					"code":    "RECOMMENDATION_TIMEOUT",
					"message": "Recommendation generation timed out",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to generate recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "ENGINE_INTERNAL",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	if recommendations == nil {
		recommendations = []models.HybridRecord{}
	}

	c.JSON(http.StatusOK, models.RecommendationResponse{
		UserID:          userID,
		Recommendations: recommendations,
		GeneratedAt:     time.Now(),
	})
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/pkg/models"
)

type UserHandler struct {
	tracking services.TrackingServiceInterface
	profiles services.ProfileBuilderInterface
	logger   *logrus.Logger
}

func NewUserHandler(tracking services.TrackingServiceInterface, profiles services.ProfileBuilderInterface, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		tracking: tracking,
		profiles: profiles,
		logger:   logger,
	}
}

// GetActions serves GET /api/v1/users/:userId/actions.
func (h *UserHandler) GetActions(c *gin.Context) {
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

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	actionType := c.Query("type")

	actions, err := h.tracking.GetUserActions(c.Request.Context(), userID, limit, actionType)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to fetch user actions")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "ACTION_FETCH_FAILED",
				"message": "Failed to fetch user actions",
			},
		})
		return
	}

	if actions == nil {
		actions = []models.Action{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"actions": actions,
		"count":   len(actions),
	})
}

// GetProfile serves GET /api/v1/users/:userId/profile with the derived
// preference model. The profile is computed on demand, not stored.
func (h *UserHandler) GetProfile(c *gin.Context) {
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

	profile := h.profiles.Build(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"profile":      profile,
		"generated_at": time.Now(),
	})
}

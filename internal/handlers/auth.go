package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/internal/validation"
	"github.com/cinerec/cinerec/pkg/models"
)

type AuthHandler struct {
	auth      *services.AuthService
	validator *validation.SchemaValidator
	logger    *logrus.Logger
	tokenTTL  time.Duration
}

func NewAuthHandler(auth *services.AuthService, validator *validation.SchemaValidator, tokenTTL time.Duration, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: validator,
		logger:    logger,
		tokenTTL:  tokenTTL,
	}
}

// Token serves POST /api/v1/auth/token, exchanging an API key for a JWT.
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	if result := h.validator.ValidateAuthRequest(&req); !result.Valid {
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	userTier, err := h.auth.ValidateAPIKey(req.APIKey)
	if err != nil {
		h.logger.WithError(err).Warn("Token request with invalid API key")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "INVALID_API_KEY",
				"message": "Invalid API key",
			},
		})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	token, err := h.auth.GenerateToken(userID, req.APIKey, userTier)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "TOKEN_GENERATION_FAILED",
				"message": "Failed to generate token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokenTTL),
		UserTier:  userTier,
	})
}

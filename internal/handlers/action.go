package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/internal/validation"
	"github.com/cinerec/cinerec/pkg/models"
)

type ActionHandler struct {
	tracking  services.TrackingServiceInterface
	validator *validation.SchemaValidator
	logger    *logrus.Logger
}

func NewActionHandler(tracking services.TrackingServiceInterface, validator *validation.SchemaValidator, logger *logrus.Logger) *ActionHandler {
	return &ActionHandler{
		tracking:  tracking,
		validator: validator,
		logger:    logger,
	}
}

// Record serves POST /api/v1/actions. The body is validated against the
// action JSON schema before the semantic checks in the tracking service.
func (h *ActionHandler) Record(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Failed to read request body",
			},
		})
		return
	}

	if result := h.validator.ValidateAction(body); !result.Valid {
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	var req models.ActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	action, err := h.tracking.RecordAction(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAction) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_ACTION",
					"message": err.Error(),
				},
			})
			return
		}

		h.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to record action")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "ACTION_RECORDING_FAILED",
				"message": "Failed to record action",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, action)
}

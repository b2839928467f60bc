package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bodybae/web/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	logger   *zap.Logger
}

func NewProfileHandler(profiles *services.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// Profile returns the stored profile with its derived metrics.
func (h *ProfileHandler) Profile(c *gin.Context) {
	userID := c.Param("user_id")

	resp, err := h.profiles.Profile(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, h.logger, zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Recommendations returns the goal-specific guidance bundle.
func (h *ProfileHandler) Recommendations(c *gin.Context) {
	userID := c.Param("user_id")

	resp, err := h.profiles.Recommendations(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, h.logger, zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthStats returns the full wellness snapshot.
func (h *ProfileHandler) HealthStats(c *gin.Context) {
	userID := c.Param("user_id")

	resp, err := h.profiles.HealthStats(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, h.logger, zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

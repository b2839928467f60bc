package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bodybae/web/middleware"
	"bodybae/web/services"
	"bodybae/web/types"
)

type OnboardHandler struct {
	profiles *services.ProfileService
	logger   *zap.Logger
}

func NewOnboardHandler(profiles *services.ProfileService, logger *zap.Logger) *OnboardHandler {
	return &OnboardHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// Onboard creates a profile from the intake form and issues the session
// cookie so later requests can omit user_id.
func (h *OnboardHandler) Onboard(c *gin.Context) {
	var req types.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind onboard request", zap.Error(err))
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.profiles.Onboard(c.Request.Context(), req)
	if err != nil {
		respondWithServiceError(c, err, h.logger)
		return
	}

	middleware.SetUserCookie(c, resp.UserID)
	c.JSON(http.StatusOK, resp)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bodybae/web/middleware"
	"bodybae/web/services"
	"bodybae/web/types"
)

type GoalHandler struct {
	goals  *services.GoalService
	logger *zap.Logger
}

func NewGoalHandler(goals *services.GoalService, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{
		goals:  goals,
		logger: logger,
	}
}

// SetGoal validates a goal timeline and, for onboarded users, stores the
// goal against the profile.
func (h *GoalHandler) SetGoal(c *gin.Context) {
	var req types.SetGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind set_goal request", zap.Error(err))
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		req.UserID = middleware.UserID(c)
	}

	resp, err := h.goals.SetGoal(c.Request.Context(), req)
	if err != nil {
		respondWithServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// LogProgress records a weight, workout, calorie or note entry.
func (h *GoalHandler) LogProgress(c *gin.Context) {
	var req types.LogProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind log_progress request", zap.Error(err))
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		req.UserID = middleware.UserID(c)
	}

	resp, err := h.goals.LogProgress(c.Request.Context(), req)
	if err != nil {
		respondWithServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Progress summarizes recent logs. The days query parameter defaults to 30.
func (h *GoalHandler) Progress(c *gin.Context) {
	userID := c.Param("user_id")

	days := 0
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	resp, err := h.goals.Summary(c.Request.Context(), userID, days)
	if err != nil {
		respondWithServiceError(c, err, h.logger, zap.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

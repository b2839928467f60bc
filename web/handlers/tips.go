package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bodybae/web/services"
)

type TipHandler struct {
	tips   *services.TipService
	logger *zap.Logger
}

func NewTipHandler(tips *services.TipService, logger *zap.Logger) *TipHandler {
	return &TipHandler{
		tips:   tips,
		logger: logger,
	}
}

// DailyTip returns the tip of the day, optionally filtered by category.
func (h *TipHandler) DailyTip(c *gin.Context) {
	category := c.Query("category")
	c.JSON(http.StatusOK, h.tips.DailyTip(category))
}

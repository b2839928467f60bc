package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bodybae/web/middleware"
	"bodybae/web/services"
	"bodybae/web/types"
)

type ChatHandler struct {
	chat   *services.ChatService
	logger *zap.Logger
}

func NewChatHandler(chat *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// Chat answers a coaching question. The session cookie fills in user_id
// when the body omits it; without either the chat runs anonymously.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind chat request", zap.Error(err))
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		req.UserID = middleware.UserID(c)
	}

	resp, err := h.chat.Chat(c.Request.Context(), req)
	if err != nil {
		respondWithServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, resp)
}

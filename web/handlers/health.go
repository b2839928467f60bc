package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bodybae/rag"
	"bodybae/store"
	"bodybae/web/types"
)

const appVersion = "2.0.0"

type HealthHandler struct {
	store  store.Store
	engine *rag.Engine
	logger *zap.Logger
}

func NewHealthHandler(st store.Store, engine *rag.Engine, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:  st,
		engine: engine,
		logger: logger,
	}
}

// Health reports liveness. A warming RAG engine does not degrade the status
// because chat still answers from the fallback pool.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "healthy"
	services := make(map[string]string)

	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Store ping failed", zap.Error(err))
		services["store"] = "error"
		status = "degraded"
	} else {
		services["store"] = "ok"
	}

	if h.engine.Ready() {
		services["rag_engine"] = "ready"
	} else {
		services["rag_engine"] = "warming"
	}
	services["knowledge_chunks"] = strconv.Itoa(h.engine.ChunkCount())

	if count, err := h.store.CountProfiles(c.Request.Context()); err != nil {
		services["active_users"] = "unknown"
	} else {
		services["active_users"] = strconv.Itoa(count)
	}

	c.JSON(http.StatusOK, types.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   appVersion,
		Services:  services,
	})
}

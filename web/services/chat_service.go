package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"bodybae/config"
	apperrors "bodybae/errors"
	"bodybae/rag"
	"bodybae/store"
	"bodybae/web/format"
	"bodybae/web/types"
)

// ChatService resolves the user, produces the coach reply and records the
// exchange in the conversation history.
type ChatService struct {
	engine *rag.Engine
	store  store.Store
	cfg    *config.Config
	logger *zap.Logger
}

func NewChatService(engine *rag.Engine, st store.Store, cfg *config.Config, logger *zap.Logger) *ChatService {
	return &ChatService{
		engine: engine,
		store:  st,
		cfg:    cfg,
		logger: logger,
	}
}

// Chat answers a message. Users without a profile get unpersonalized
// replies; a reply is produced even when retrieval or generation is down.
func (cs *ChatService) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "message is required")
	}

	var (
		profile *store.Profile
		history []store.Turn
	)
	if userID := strings.TrimSpace(req.UserID); userID != "" {
		var err error
		profile, err = cs.store.GetProfile(ctx, userID)
		if err != nil {
			if !apperrors.IsNotFound(err) {
				cs.logger.Warn("Could not load profile for chat",
					zap.Error(err),
					zap.String("user_id", userID))
			}
			profile = nil
		}
	}
	if profile != nil {
		var err error
		history, err = cs.store.RecentTurns(ctx, profile.ID, cs.cfg.HistoryWindow)
		if err != nil {
			cs.logger.Warn("Could not load conversation history",
				zap.Error(err),
				zap.String("user_id", profile.ID))
			history = nil
		}
	}

	reply := cs.engine.Respond(ctx, profile, history, message)
	reply = format.PreprocessAssistantText(reply)

	now := time.Now().UTC()
	response := &types.ChatResponse{
		Response:     reply,
		ResponseHTML: format.ToHTML(reply),
		Timestamp:    now,
	}
	if profile == nil {
		return response, nil
	}

	response.UserID = profile.ID
	cs.recordTurn(ctx, profile.ID, store.Turn{Role: "user", Content: message, Timestamp: now})
	cs.recordTurn(ctx, profile.ID, store.Turn{Role: "assistant", Content: reply, Timestamp: now})
	return response, nil
}

func (cs *ChatService) recordTurn(ctx context.Context, userID string, turn store.Turn) {
	if err := cs.store.AppendTurn(ctx, userID, turn); err != nil {
		cs.logger.Warn("Could not record conversation turn",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("role", turn.Role))
	}
}

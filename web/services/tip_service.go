package services

import (
	"time"

	"go.uber.org/zap"

	"bodybae/knowledge"
	"bodybae/web/types"
)

// TipService serves the deterministic daily tip.
type TipService struct {
	kb     *knowledge.Base
	seed   int
	logger *zap.Logger
}

func NewTipService(kb *knowledge.Base, seed int, logger *zap.Logger) *TipService {
	return &TipService{
		kb:     kb,
		seed:   seed,
		logger: logger,
	}
}

// DailyTip returns the tip of the day, optionally narrowed to a category.
// Every caller sees the same tip on the same day.
func (ts *TipService) DailyTip(category string) types.TipResponse {
	now := time.Now().UTC()
	tip := ts.kb.TipOfDay(now, category, ts.seed)

	return types.TipResponse{
		Tip:      tip.Text,
		Category: tip.Category,
		Date:     now.Format("2006-01-02"),
	}
}

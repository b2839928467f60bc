package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "bodybae/errors"
	"bodybae/goals"
	"bodybae/metrics"
	"bodybae/store"
	"bodybae/utils"
	"bodybae/web/types"
)

// defaultSummaryDays is the progress summary window when none is requested.
const defaultSummaryDays = 30

// GoalService sets goals, records progress logs and summarizes them.
type GoalService struct {
	store   store.Store
	tracker *goals.Tracker
	logger  *zap.Logger
}

func NewGoalService(st store.Store, tracker *goals.Tracker, logger *zap.Logger) *GoalService {
	return &GoalService{
		store:   st,
		tracker: tracker,
		logger:  logger,
	}
}

// SetGoal returns timeline feedback for a goal and, when the request names
// a user, stores the goal record and updates the profile's primary goal.
// Without a user id the advice is returned without persisting anything.
func (gs *GoalService) SetGoal(ctx context.Context, req types.SetGoalRequest) (*types.SetGoalResponse, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "goal is required")
	}
	if req.TargetWeeks <= 0 {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "target_weeks must be positive")
	}

	goalType, _ := metrics.NormalizeGoal(req.Goal)
	timeline, advice := goals.TimelineAdvice(goalType, req.TargetWeeks)
	response := &types.SetGoalResponse{
		Goal:        goalType,
		TargetWeeks: req.TargetWeeks,
		Advice:      advice,
		Message:     goals.ConfirmationMessage(goalType, req.TargetWeeks, advice),
		Timeline: types.GoalTimeline{
			MinWeeks: timeline.MinWeeks,
			MaxWeeks: timeline.MaxWeeks,
		},
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return response, nil
	}

	profile, err := gs.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	targetKg := req.TargetKg
	if targetKg <= 0 {
		targetKg, _ = metrics.WeightGoalKg(profile.WeightKg, profile.HeightCm, goalType)
	}

	goal := &store.Goal{
		UserID:         profile.ID,
		Type:           goalType,
		TargetWeeks:    req.TargetWeeks,
		StartWeightKg:  profile.WeightKg,
		TargetWeightKg: targetKg,
		StartDate:      time.Now().UTC(),
	}
	if err := gs.store.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}

	profile.Goal = goalType
	if err := gs.store.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	gs.logger.Info("Goal set",
		zap.String("user_id", profile.ID),
		zap.String("goal", goalType),
		zap.Int("target_weeks", req.TargetWeeks))
	return response, nil
}

// LogProgress appends a progress log entry, keeps the profile weight
// current and reports where the user's goal stands.
func (gs *GoalService) LogProgress(ctx context.Context, req types.LogProgressRequest) (*types.LogProgressResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "user_id is required")
	}
	if req.WeightKg == nil && req.Workout == "" && req.Calories == nil && req.Notes == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "log at least one of weight, workout, calories or notes")
	}
	if req.WeightKg != nil && *req.WeightKg <= 0 {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "weight must be positive")
	}
	if req.Calories != nil && *req.Calories < 0 {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "calories cannot be negative")
	}

	profile, err := gs.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &store.ProgressLog{
		ID:       utils.GenerateLogID(),
		UserID:   profile.ID,
		LoggedAt: time.Now().UTC(),
		WeightKg: req.WeightKg,
		Workout:  strings.TrimSpace(req.Workout),
		Calories: req.Calories,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := gs.store.AddProgressLog(ctx, entry); err != nil {
		return nil, err
	}

	if req.WeightKg != nil {
		if err := gs.updateWeight(ctx, profile, *req.WeightKg); err != nil {
			return nil, err
		}
	}

	update, err := gs.tracker.CheckProgress(ctx, profile)
	if err != nil {
		gs.logger.Warn("Could not evaluate goal progress",
			zap.Error(err),
			zap.String("user_id", profile.ID))
		update = nil
	}

	return &types.LogProgressResponse{
		Status:         "success",
		Message:        "Progress logged successfully!",
		ProgressUpdate: toProgressUpdate(update),
	}, nil
}

// Summary aggregates the progress logs of the last days (default 30).
func (gs *GoalService) Summary(ctx context.Context, userID string, days int) (*types.ProgressSummary, error) {
	if days <= 0 {
		days = defaultSummaryDays
	}
	profile, err := gs.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	logs, err := gs.store.ProgressLogs(ctx, profile.ID, since)
	if err != nil {
		return nil, err
	}

	entries := make([]types.ProgressLogEntry, 0, len(logs))
	workouts := 0
	caloriesSum := 0
	for _, log := range logs {
		if log.Workout != "" {
			workouts++
		}
		if log.Calories != nil {
			caloriesSum += *log.Calories
		}
		entries = append(entries, types.ProgressLogEntry{
			Date:     log.LoggedAt,
			WeightKg: log.WeightKg,
			Workout:  log.Workout,
			Calories: log.Calories,
			Notes:    log.Notes,
		})
	}

	averageCalories := 0.0
	if len(logs) > 0 {
		averageCalories = float64(caloriesSum) / float64(len(logs))
	}

	update, err := gs.tracker.CheckProgress(ctx, profile)
	if err != nil {
		gs.logger.Warn("Could not evaluate goal progress",
			zap.Error(err),
			zap.String("user_id", profile.ID))
		update = nil
	}

	return &types.ProgressSummary{
		UserID:          profile.ID,
		Days:            days,
		TotalLogs:       len(logs),
		WorkoutCount:    workouts,
		AverageCalories: averageCalories,
		Logs:            entries,
		ProgressUpdate:  toProgressUpdate(update),
	}, nil
}

// updateWeight overwrites the profile weight and recomputes the metrics
// that depend on it.
func (gs *GoalService) updateWeight(ctx context.Context, profile *store.Profile, weightKg float64) error {
	// profiles may carry goal types outside the calorie table; the report
	// does not depend on the goal, so compute with a known one
	goal := profile.Goal
	if _, ok := metrics.NormalizeGoal(goal); !ok {
		goal = metrics.GoalMaintain
	}
	report, err := metrics.Compute(metrics.Inputs{
		Name:          profile.Name,
		Age:           profile.Age,
		Sex:           profile.Sex,
		HeightCm:      profile.HeightCm,
		WeightKg:      weightKg,
		ActivityLevel: profile.ActivityLevel,
		Goal:          goal,
	})
	if err != nil {
		return err
	}

	profile.WeightKg = weightKg
	profile.BMI = report.BMI
	profile.BMICategory = report.BMICategory
	profile.BMR = report.BMR
	profile.TDEE = report.TDEE
	profile.ProteinTargetG = report.ProteinTargetG
	profile.WaterTargetML = report.WaterTargetML
	return gs.store.SaveProfile(ctx, profile)
}

func toProgressUpdate(progress *goals.Progress) *types.ProgressUpdate {
	if progress == nil {
		return nil
	}
	return &types.ProgressUpdate{
		GoalType:   progress.GoalType,
		Current:    progress.CurrentKg,
		Target:     progress.TargetKg,
		Percentage: progress.Percentage,
		Message:    progress.Message,
		Completed:  progress.Completed,
	}
}

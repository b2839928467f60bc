package goals

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "bodybae/errors"
	"bodybae/metrics"
	"bodybae/store"
)

// Progress is a goal's completion snapshot. CurrentKg and TargetKg are set
// for weight-based goals only.
type Progress struct {
	GoalType   string
	CurrentKg  *float64
	TargetKg   *float64
	Percentage float64
	Message    string
	Completed  bool
}

// Tracker evaluates goal progress against the store.
type Tracker struct {
	store  store.Store
	logger *zap.Logger
}

func NewTracker(st store.Store, logger *zap.Logger) *Tracker {
	return &Tracker{store: st, logger: logger}
}

// CheckProgress recomputes the user's goal progress and marks the stored
// goal completed once the raw percentage reaches 100. Returns nil when the
// user has no goal or the goal is already completed.
func (t *Tracker) CheckProgress(ctx context.Context, profile *store.Profile) (*Progress, error) {
	goal, err := t.store.GetGoal(ctx, profile.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if goal.Completed {
		return nil, nil
	}

	var (
		progress *Progress
		raw      float64
	)
	normalized, _ := metrics.NormalizeGoal(goal.Type)
	switch normalized {
	case metrics.GoalLoseWeight:
		progress, raw = t.weightLossProgress(ctx, profile, goal)
	case metrics.GoalGainWeight:
		progress, raw = t.weightGainProgress(ctx, profile, goal)
	default:
		progress, raw = timeProgress(goal, time.Now())
	}

	if raw >= 100 {
		goal.Completed = true
		if err := t.store.SaveGoal(ctx, goal); err != nil {
			return nil, err
		}
		progress.Completed = true
	}
	return progress, nil
}

func (t *Tracker) weightLossProgress(ctx context.Context, profile *store.Profile, goal *store.Goal) (*Progress, float64) {
	start := t.startingWeight(ctx, profile, goal)
	current := profile.WeightKg
	target := goal.TargetWeightKg

	totalToLose := start - target
	lostSoFar := start - current

	raw := 0.0
	if totalToLose > 0 {
		raw = lostSoFar / totalToLose * 100
	}

	return &Progress{
		GoalType:   "Weight Loss",
		CurrentKg:  &current,
		TargetKg:   &target,
		Percentage: round1(raw),
		Message:    fmt.Sprintf("You've lost %.1f kg! %.1f kg to go!", lostSoFar, totalToLose-lostSoFar),
	}, raw
}

func (t *Tracker) weightGainProgress(ctx context.Context, profile *store.Profile, goal *store.Goal) (*Progress, float64) {
	start := t.startingWeight(ctx, profile, goal)
	current := profile.WeightKg
	target := goal.TargetWeightKg

	totalToGain := target - start
	gainedSoFar := current - start

	raw := 0.0
	if totalToGain > 0 {
		raw = gainedSoFar / totalToGain * 100
	}

	return &Progress{
		GoalType:   "Weight Gain",
		CurrentKg:  &current,
		TargetKg:   &target,
		Percentage: round1(raw),
		Message:    fmt.Sprintf("You've gained %.1f kg! %.1f kg to go!", gainedSoFar, totalToGain-gainedSoFar),
	}, raw
}

// timeProgress covers goal types without a weight target: percentage of the
// target duration elapsed since the goal was set.
func timeProgress(goal *store.Goal, now time.Time) (*Progress, float64) {
	daysElapsed := int(now.Sub(goal.StartDate).Hours() / 24)
	totalDays := goal.TargetWeeks * 7

	raw := 0.0
	if totalDays > 0 {
		raw = float64(daysElapsed) / float64(totalDays) * 100
	}

	return &Progress{
		GoalType:   displayGoal(goal.Type),
		Percentage: round1(raw),
		Message:    fmt.Sprintf("You're %.1f%% through your journey! Keep going!", round1(raw)),
	}, raw
}

// startingWeight is the weight at the start of the journey: the earliest
// weight logged since the goal was set, else the weight recorded when the
// goal was created.
func (t *Tracker) startingWeight(ctx context.Context, profile *store.Profile, goal *store.Goal) float64 {
	logs, err := t.store.ProgressLogs(ctx, profile.ID, goal.StartDate)
	if err != nil {
		t.logger.Warn("Could not load progress logs for starting weight", zap.Error(err))
		logs = nil
	}
	// logs arrive newest first
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].WeightKg != nil {
			return *logs[i].WeightKg
		}
	}
	if goal.StartWeightKg > 0 {
		return goal.StartWeightKg
	}
	return profile.WeightKg
}

// displayGoal title-cases a goal type for presentation ("gain_muscle"
// becomes "Gain Muscle").
func displayGoal(goalType string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(goalType), "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

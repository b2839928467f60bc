// Package goals tracks fitness goals: realistic timeline feedback when a
// goal is set, and percentage-to-goal progress as weight and workouts are
// logged.
package goals

import (
	"fmt"
	"strings"

	"bodybae/metrics"
)

// Timeline is the sustainable week range for a goal type.
type Timeline struct {
	MinWeeks int
	MaxWeeks int
}

// realisticTimelines maps goal types to sustainable durations. Types
// outside the map get the default range.
var realisticTimelines = map[string]Timeline{
	metrics.GoalLoseWeight: {MinWeeks: 8, MaxWeeks: 16},
	metrics.GoalGainWeight: {MinWeeks: 8, MaxWeeks: 16},
	metrics.GoalGainMuscle: {MinWeeks: 12, MaxWeeks: 24},
	"lose_fat":             {MinWeeks: 8, MaxWeeks: 16},
	"toning":               {MinWeeks: 8, MaxWeeks: 12},
	"bulking":              {MinWeeks: 12, MaxWeeks: 20},
	metrics.GoalMaintain:   {MinWeeks: 4, MaxWeeks: 52},
}

var defaultTimeline = Timeline{MinWeeks: 8, MaxWeeks: 16}

// Estimate pairs an expected goal duration with expectation-setting text.
type Estimate struct {
	Weeks       int    `json:"weeks"`
	Description string `json:"description"`
}

var timelineEstimates = map[string]Estimate{
	metrics.GoalLoseWeight: {Weeks: 12, Description: "Healthy weight loss takes time - expect visible changes in 4-6 weeks"},
	metrics.GoalGainMuscle: {Weeks: 16, Description: "Muscle building is gradual - noticeable gains in 8-12 weeks"},
	"improve_endurance":    {Weeks: 8, Description: "Cardiovascular improvements visible in 4-6 weeks"},
	"general_fitness":      {Weeks: 12, Description: "Overall fitness improvements in 6-8 weeks"},
	metrics.GoalMaintain:   {Weeks: 52, Description: "Focus on consistency and long-term habits"},
}

var generalEstimate = timelineEstimates["general_fitness"]

// normalizeType lowercases and canonicalizes a goal type for table lookups.
// An empty type stays empty so lookups fall through to the defaults.
func normalizeType(goalType string) string {
	if strings.TrimSpace(goalType) == "" {
		return ""
	}
	normalized, _ := metrics.NormalizeGoal(goalType)
	return normalized
}

// TimelineFor returns the realistic week range for a goal type.
func TimelineFor(goalType string) Timeline {
	if timeline, ok := realisticTimelines[normalizeType(goalType)]; ok {
		return timeline
	}
	return defaultTimeline
}

// TimelineAdvice judges a requested duration against the realistic range
// for the goal type and returns the range plus feedback text.
func TimelineAdvice(goalType string, targetWeeks int) (Timeline, string) {
	timeline := TimelineFor(goalType)
	switch {
	case targetWeeks < timeline.MinWeeks:
		return timeline, fmt.Sprintf("Your timeline might be too aggressive. Consider %d-%d weeks for sustainable results.",
			timeline.MinWeeks, timeline.MaxWeeks)
	case targetWeeks > timeline.MaxWeeks:
		return timeline, "Great! A longer timeline allows for sustainable progress. Stay consistent!"
	default:
		return timeline, fmt.Sprintf("Perfect! %d weeks is a realistic timeline for your %s goal.",
			targetWeeks, HumanizeGoal(goalType))
	}
}

// ConfirmationMessage is the goal-set acknowledgment shown to the user.
func ConfirmationMessage(goalType string, targetWeeks int, advice string) string {
	return fmt.Sprintf("Goal set! Let's work together to %s over the next %d weeks. %s",
		HumanizeGoal(goalType), targetWeeks, advice)
}

// EstimateFor returns the expected duration for a goal type, defaulting to
// the general fitness estimate.
func EstimateFor(goalType string) Estimate {
	if estimate, ok := timelineEstimates[normalizeType(goalType)]; ok {
		return estimate
	}
	return generalEstimate
}

// HumanizeGoal renders a goal type for prose ("lose_weight" becomes
// "lose weight").
func HumanizeGoal(goalType string) string {
	humanized := strings.ToLower(strings.TrimSpace(goalType))
	return strings.ReplaceAll(humanized, "_", " ")
}

package types

import (
	"time"

	"bodybae/metrics"
)

// ChatMessage is a single turn in the format expected by an OpenAI-style
// chat completion endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OnboardRequest is the payload for POST /api/onboard. Height is in
// centimeters and weight in kilograms.
type OnboardRequest struct {
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`
	HeightCm      float64 `json:"height"`
	WeightKg      float64 `json:"weight"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal,omitempty"`
}

// OnboardResponse echoes the derived metrics back to a new user.
type OnboardResponse struct {
	UserID         string  `json:"user_id"`
	BMI            float64 `json:"bmi"`
	BMICategory    string  `json:"bmi_category"`
	BMIAdvice      string  `json:"bmi_advice"`
	BMR            int     `json:"bmr"`
	TDEE           int     `json:"tdee"`
	ProteinTargetG float64 `json:"protein_target_g"`
	WaterTargetML  int     `json:"water_target_ml"`
	Message        string  `json:"message"`
}

// ChatRequest is the payload for POST /api/chat. UserID is optional; the
// session cookie supplies it for onboarded browsers.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// ChatResponse carries the coach's reply.
type ChatResponse struct {
	Response     string    `json:"response"`
	ResponseHTML string    `json:"response_html,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// SetGoalRequest is the payload for POST /api/set_goal.
type SetGoalRequest struct {
	UserID      string  `json:"user_id,omitempty"`
	Goal        string  `json:"goal"`
	TargetWeeks int     `json:"target_weeks"`
	TargetKg    float64 `json:"target_weight,omitempty"`
}

// GoalTimeline is the realistic week range for a goal type.
type GoalTimeline struct {
	MinWeeks int `json:"min_weeks"`
	MaxWeeks int `json:"max_weeks"`
}

// SetGoalResponse confirms a goal with timeline feedback.
type SetGoalResponse struct {
	Goal        string       `json:"goal"`
	TargetWeeks int          `json:"target_weeks"`
	Advice      string       `json:"advice"`
	Message     string       `json:"message"`
	Timeline    GoalTimeline `json:"timeline"`
}

// LogProgressRequest is the payload for POST /api/log_progress. All fields
// except UserID are optional; absent ones are simply not logged.
type LogProgressRequest struct {
	UserID   string   `json:"user_id,omitempty"`
	WeightKg *float64 `json:"weight,omitempty"`
	Workout  string   `json:"workout,omitempty"`
	Calories *int     `json:"calories,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// ProgressUpdate reports where a goal stands after a log entry. Current and
// Target are set for weight-based goals only.
type ProgressUpdate struct {
	GoalType   string   `json:"goal_type"`
	Current    *float64 `json:"current,omitempty"`
	Target     *float64 `json:"target,omitempty"`
	Percentage float64  `json:"percentage"`
	Message    string   `json:"message"`
	Completed  bool     `json:"completed"`
}

// LogProgressResponse acknowledges a progress log.
type LogProgressResponse struct {
	Status         string          `json:"status"`
	Message        string          `json:"message"`
	ProgressUpdate *ProgressUpdate `json:"progress_update,omitempty"`
}

// ProgressLogEntry is one historical log row in a summary.
type ProgressLogEntry struct {
	Date     time.Time `json:"date"`
	WeightKg *float64  `json:"weight,omitempty"`
	Workout  string    `json:"workout,omitempty"`
	Calories *int      `json:"calories,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// ProgressSummary aggregates recent logs for GET /api/progress/:user_id.
type ProgressSummary struct {
	UserID          string             `json:"user_id"`
	Days            int                `json:"days"`
	TotalLogs       int                `json:"total_logs"`
	WorkoutCount    int                `json:"workout_count"`
	AverageCalories float64            `json:"average_calories"`
	Logs            []ProgressLogEntry `json:"logs"`
	ProgressUpdate  *ProgressUpdate    `json:"progress_update,omitempty"`
}

// ProfileResponse is the stored profile plus derived metrics.
type ProfileResponse struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	Age            int     `json:"age"`
	Sex            string  `json:"sex"`
	HeightCm       float64 `json:"height"`
	WeightKg       float64 `json:"weight"`
	ActivityLevel  string  `json:"activity_level"`
	Goal           string  `json:"goal,omitempty"`
	BMI            float64 `json:"bmi"`
	BMICategory    string  `json:"bmi_category"`
	BMR            int     `json:"bmr"`
	TDEE           int     `json:"tdee"`
	ProteinTargetG float64 `json:"protein_target_g"`
	WaterTargetML  int     `json:"water_target_ml"`
}

// Recommendations is the per-goal guidance bundle for
// GET /api/recommendations/:user_id.
type Recommendations struct {
	Workout   []string `json:"workout"`
	Nutrition []string `json:"nutrition"`
	Lifestyle []string `json:"lifestyle"`
	DailyTips []string `json:"daily_tips"`
}

// WeightGoal describes the target weight derived from the user's goal.
type WeightGoal struct {
	CurrentKg float64 `json:"current_kg"`
	TargetKg  float64 `json:"target_kg"`
	ChangeKg  float64 `json:"change_kg"`
}

// TimelineEstimate is the expected duration for a goal.
type TimelineEstimate struct {
	Weeks       int    `json:"weeks"`
	Description string `json:"description"`
}

// HealthStats is the full wellness snapshot for GET /api/health-stats/:user_id.
type HealthStats struct {
	UserID         string                `json:"user_id"`
	BMI            float64               `json:"bmi"`
	BMICategory    string                `json:"bmi_category"`
	BMR            int                   `json:"bmr"`
	TDEE           int                   `json:"tdee"`
	CalorieTarget  metrics.CalorieTarget `json:"calorie_target"`
	ProteinTargetG float64               `json:"protein_target_g"`
	WaterTargetML  int                   `json:"water_target_ml"`
	IdealWeightMin float64               `json:"ideal_weight_min"`
	IdealWeightMax float64               `json:"ideal_weight_max"`
	WeightGoal     WeightGoal            `json:"weight_goal"`
	WeeklyTargets  metrics.WeeklyTargets `json:"weekly_targets"`
	Timeline       TimelineEstimate      `json:"timeline"`
}

// TipResponse is the daily tip for GET /api/daily_tip.
type TipResponse struct {
	Tip      string `json:"tip"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date"`
}

// HealthResponse reports service liveness for GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

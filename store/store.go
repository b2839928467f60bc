// Package store persists user profiles, conversation history, goals and
// progress logs. The memory backend is the default; the postgres backend
// survives restarts and also hosts the knowledge base index.
package store

import (
	"context"
	"time"
)

// Profile is a user's onboarded biometrics plus the derived metrics.
type Profile struct {
	ID             string
	Name           string
	Age            int
	Sex            string
	HeightCm       float64
	WeightKg       float64
	ActivityLevel  string
	Goal           string
	BMI            float64
	BMICategory    string
	BMR            int
	TDEE           int
	ProteinTargetG float64
	WaterTargetML  int
	CreatedAt      time.Time
}

// Turn is one half of a conversation exchange.
type Turn struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// Goal is a user's active fitness goal.
type Goal struct {
	UserID         string
	Type           string
	TargetWeeks    int
	StartWeightKg  float64
	TargetWeightKg float64
	StartDate      time.Time
	Completed      bool
}

// ProgressLog is one logged progress entry. Nil fields were not reported.
type ProgressLog struct {
	ID       string
	UserID   string
	LoggedAt time.Time
	WeightKg *float64
	Workout  string
	Calories *int
	Notes    string
}

// Store is the persistence boundary. GetProfile and GetGoal return
// ErrNotFound when the user has no record.
type Store interface {
	SaveProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	CountProfiles(ctx context.Context) (int, error)
	AppendTurn(ctx context.Context, userID string, turn Turn) error
	RecentTurns(ctx context.Context, userID string, n int) ([]Turn, error)
	SaveGoal(ctx context.Context, goal *Goal) error
	GetGoal(ctx context.Context, userID string) (*Goal, error)
	AddProgressLog(ctx context.Context, entry *ProgressLog) error
	ProgressLogs(ctx context.Context, userID string, since time.Time) ([]ProgressLog, error)
	Ping(ctx context.Context) error
	Close() error
}

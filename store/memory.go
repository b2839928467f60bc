package store

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "bodybae/errors"
)

// MemoryStore keeps everything in process memory. It is the default backend
// and is safe for concurrent handlers; all state is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	turns    map[string][]Turn
	goals    map[string]Goal
	logs     map[string][]ProgressLog
	maxTurns int
}

// NewMemoryStore creates an empty in-memory store. Conversation history is
// trimmed to maxTurns entries per user.
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &MemoryStore{
		profiles: make(map[string]Profile),
		turns:    make(map[string][]Turn),
		goals:    make(map[string]Goal),
		logs:     make(map[string][]ProgressLog),
		maxTurns: maxTurns,
	}
}

func (s *MemoryStore) SaveProfile(ctx context.Context, profile *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, apperrors.WrapErrorf(apperrors.ErrNotFound, "profile %s", userID)
	}
	copied := profile
	return &copied, nil
}

func (s *MemoryStore) CountProfiles(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, userID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.turns[userID], turn)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.turns[userID] = turns
	return nil
}

func (s *MemoryStore) RecentTurns(ctx context.Context, userID string, n int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[userID]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) SaveGoal(ctx context.Context, goal *Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[goal.UserID] = *goal
	return nil
}

func (s *MemoryStore) GetGoal(ctx context.Context, userID string) (*Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goal, ok := s.goals[userID]
	if !ok {
		return nil, apperrors.WrapErrorf(apperrors.ErrNotFound, "goal for %s", userID)
	}
	copied := goal
	return &copied, nil
}

func (s *MemoryStore) AddProgressLog(ctx context.Context, entry *ProgressLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[entry.UserID] = append(s.logs[entry.UserID], *entry)
	return nil
}

// ProgressLogs returns entries at or after since, newest first.
func (s *MemoryStore) ProgressLogs(ctx context.Context, userID string, since time.Time) ([]ProgressLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ProgressLog
	for _, entry := range s.logs[userID] {
		if entry.LoggedAt.Before(since) {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LoggedAt.After(out[j].LoggedAt)
	})
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"bodybae/config"
	"bodybae/knowledge"
	"bodybae/rag"
	"bodybae/store"
	"bodybae/web/middleware"
	"bodybae/web/types"
)

type nopEmbedder struct{}

func (nopEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1}, nil
}

type nopIndex struct{}

func (nopIndex) Rebuild(ctx context.Context, chunks []rag.IndexedChunk) error { return nil }

func (nopIndex) Search(ctx context.Context, embedding []float32, k int) ([]rag.Result, error) {
	return nil, nil
}

type nopGenerator struct{}

func (nopGenerator) Chat(ctx context.Context, host string, messages []types.ChatMessage, temperature *float64) (string, error) {
	return "", nil
}

type pingFailStore struct {
	store.Store
}

func (pingFailStore) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func testServerConfig() *config.Config {
	return &config.Config{
		LLMTemperature:          0.7,
		RAGTopK:                 3,
		RAGMinSimilarity:        0.3,
		HistoryWindow:           4,
		RateLimitMessagesPerMin: 60,
		RateLimitBurstSize:      20,
	}
}

// newTestServer builds a server over the in-memory store with an unwarmed
// RAG engine, so chat answers come from the fallback pool.
func newTestServer(t *testing.T, cfg *config.Config, st store.Store) *Server {
	t.Helper()

	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("knowledge.Load() error = %v", err)
	}

	logger := zap.NewNop()
	engine := rag.NewEngine(cfg, kb, &knowledge.RegexSentenceSplitter{}, nopEmbedder{}, nopIndex{}, nopGenerator{}, logger)
	return NewServer(st, engine, kb, logger, cfg)
}

func performJSON(t *testing.T, s *Server, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", middleware.SessionCookieName)
	return nil
}

func TestServerUserJourney(t *testing.T) {
	s := newTestServer(t, testServerConfig(), store.NewMemoryStore(50))

	// Onboard Sam and capture the session cookie.
	w := performJSON(t, s, http.MethodPost, "/api/onboard", map[string]any{
		"name":           "Sam",
		"age":            25,
		"sex":            "male",
		"height":         175,
		"weight":         70,
		"activity_level": "moderately_active",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("onboard status = %d, body %s", w.Code, w.Body.String())
	}

	var onboard types.OnboardResponse
	decodeJSON(t, w, &onboard)
	if onboard.UserID == "" {
		t.Fatal("onboard returned empty user_id")
	}
	if onboard.BMI != 22.9 || onboard.BMICategory != "Normal weight" {
		t.Errorf("onboard BMI = %v (%s), want 22.9 (Normal weight)", onboard.BMI, onboard.BMICategory)
	}
	if onboard.BMR != 1674 || onboard.TDEE != 2594 {
		t.Errorf("onboard BMR/TDEE = %d/%d, want 1674/2594", onboard.BMR, onboard.TDEE)
	}
	wantMessage := "Welcome Sam! Your BMI is 22.9 (Normal weight). Your daily calorie needs are approximately 2594 calories."
	if onboard.Message != wantMessage {
		t.Errorf("onboard message = %q, want %q", onboard.Message, wantMessage)
	}

	cookie := sessionCookie(t, w)
	if cookie.Value != onboard.UserID {
		t.Errorf("session cookie = %q, want user id %q", cookie.Value, onboard.UserID)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be http-only")
	}

	// Profile round-trips the stored metrics.
	w = performJSON(t, s, http.MethodGet, "/api/profile/"+onboard.UserID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d, body %s", w.Code, w.Body.String())
	}
	var profile types.ProfileResponse
	decodeJSON(t, w, &profile)
	if profile.Name != "Sam" || profile.TDEE != 2594 {
		t.Errorf("profile = %s/%d, want Sam/2594", profile.Name, profile.TDEE)
	}

	// Set a goal using only the cookie for identity.
	w = performJSON(t, s, http.MethodPost, "/api/set_goal", map[string]any{
		"goal":         "lose_weight",
		"target_weeks": 12,
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("set_goal status = %d, body %s", w.Code, w.Body.String())
	}
	var goal types.SetGoalResponse
	decodeJSON(t, w, &goal)
	wantAdvice := "Perfect! 12 weeks is a realistic timeline for your lose weight goal."
	if goal.Advice != wantAdvice {
		t.Errorf("set_goal advice = %q, want %q", goal.Advice, wantAdvice)
	}
	if goal.Timeline.MinWeeks != 8 || goal.Timeline.MaxWeeks != 16 {
		t.Errorf("set_goal timeline = %+v, want 8-16", goal.Timeline)
	}

	w = performJSON(t, s, http.MethodGet, "/api/profile/"+onboard.UserID, nil)
	decodeJSON(t, w, &profile)
	if profile.Goal != "lose_weight" {
		t.Errorf("profile goal after set_goal = %q, want lose_weight", profile.Goal)
	}

	// First weight log becomes the journey baseline, so progress starts at 0.
	w = performJSON(t, s, http.MethodPost, "/api/log_progress", map[string]any{
		"weight": 69,
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("log_progress status = %d, body %s", w.Code, w.Body.String())
	}
	var logged types.LogProgressResponse
	decodeJSON(t, w, &logged)
	if logged.Status != "success" {
		t.Errorf("log_progress status field = %q, want success", logged.Status)
	}
	if logged.ProgressUpdate == nil {
		t.Fatal("log_progress returned no progress update")
	}
	if logged.ProgressUpdate.GoalType != "Weight Loss" || logged.ProgressUpdate.Percentage != 0 {
		t.Errorf("first log progress = %s %.1f%%, want Weight Loss 0.0%%",
			logged.ProgressUpdate.GoalType, logged.ProgressUpdate.Percentage)
	}

	// Second log measures against the baseline: lost 1.0 of 1.6 kg.
	w = performJSON(t, s, http.MethodPost, "/api/log_progress", map[string]any{
		"weight":  68,
		"workout": "30 min run",
	}, cookie)
	decodeJSON(t, w, &logged)
	if logged.ProgressUpdate == nil {
		t.Fatal("second log returned no progress update")
	}
	if logged.ProgressUpdate.Percentage != 62.5 {
		t.Errorf("second log percentage = %.1f, want 62.5", logged.ProgressUpdate.Percentage)
	}
	wantProgressMsg := "You've lost 1.0 kg! 0.6 kg to go!"
	if logged.ProgressUpdate.Message != wantProgressMsg {
		t.Errorf("second log message = %q, want %q", logged.ProgressUpdate.Message, wantProgressMsg)
	}

	// Summary aggregates both logs.
	w = performJSON(t, s, http.MethodGet, "/api/progress/"+onboard.UserID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("progress status = %d, body %s", w.Code, w.Body.String())
	}
	var summary types.ProgressSummary
	decodeJSON(t, w, &summary)
	if summary.TotalLogs != 2 || summary.WorkoutCount != 1 || summary.Days != 30 {
		t.Errorf("summary = %d logs, %d workouts, %d days, want 2/1/30",
			summary.TotalLogs, summary.WorkoutCount, summary.Days)
	}

	// Anonymous chat falls back without personalization.
	question := "How do I lose weight?"
	w = performJSON(t, s, http.MethodPost, "/api/chat", map[string]any{"message": question})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body %s", w.Code, w.Body.String())
	}
	var chat types.ChatResponse
	decodeJSON(t, w, &chat)
	if want := rag.FallbackResponse(question, "", ""); chat.Response != want {
		t.Errorf("anonymous chat = %q, want %q", chat.Response, want)
	}
	if chat.UserID != "" {
		t.Errorf("anonymous chat user_id = %q, want empty", chat.UserID)
	}

	// Cookie-backed chat is personalized with Sam's name and goal.
	w = performJSON(t, s, http.MethodPost, "/api/chat", map[string]any{"message": question}, cookie)
	decodeJSON(t, w, &chat)
	if want := rag.FallbackResponse(question, "Sam", "lose_weight"); chat.Response != want {
		t.Errorf("cookie chat = %q, want %q", chat.Response, want)
	}
	if chat.UserID != onboard.UserID {
		t.Errorf("cookie chat user_id = %q, want %q", chat.UserID, onboard.UserID)
	}
	if chat.ResponseHTML == "" {
		t.Error("chat response_html should not be empty")
	}

	// Recommendations and health stats resolve for the stored profile.
	w = performJSON(t, s, http.MethodGet, "/api/recommendations/"+onboard.UserID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("recommendations status = %d, body %s", w.Code, w.Body.String())
	}
	var recs types.Recommendations
	decodeJSON(t, w, &recs)
	if len(recs.Workout) == 0 || len(recs.Nutrition) == 0 {
		t.Errorf("recommendations missing sections: %+v", recs)
	}

	w = performJSON(t, s, http.MethodGet, "/api/health-stats/"+onboard.UserID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health-stats status = %d, body %s", w.Code, w.Body.String())
	}
	var stats types.HealthStats
	decodeJSON(t, w, &stats)
	if stats.WeightGoal.TargetKg != 67.4 {
		t.Errorf("health-stats target weight = %v, want 67.4", stats.WeightGoal.TargetKg)
	}
}

func TestServerDailyTip(t *testing.T) {
	s := newTestServer(t, testServerConfig(), store.NewMemoryStore(10))

	w := performJSON(t, s, http.MethodGet, "/api/daily_tip", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("daily_tip status = %d, body %s", w.Code, w.Body.String())
	}

	var tip types.TipResponse
	decodeJSON(t, w, &tip)
	if tip.Tip == "" {
		t.Error("daily tip is empty")
	}
	if _, err := time.Parse("2006-01-02", tip.Date); err != nil {
		t.Errorf("daily tip date %q is not YYYY-MM-DD: %v", tip.Date, err)
	}
}

func TestServerValidation(t *testing.T) {
	s := newTestServer(t, testServerConfig(), store.NewMemoryStore(10))

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "chat_empty_message",
			method:     http.MethodPost,
			path:       "/api/chat",
			body:       map[string]any{"message": "   "},
			wantStatus: http.StatusBadRequest,
			wantError:  "message is required",
		},
		{
			name:       "onboard_negative_age",
			method:     http.MethodPost,
			path:       "/api/onboard",
			body:       map[string]any{"name": "Sam", "age": -1, "sex": "male", "height": 175, "weight": 70, "activity_level": "sedentary"},
			wantStatus: http.StatusBadRequest,
			wantError:  "age must be positive",
		},
		{
			name:       "set_goal_missing_goal",
			method:     http.MethodPost,
			path:       "/api/set_goal",
			body:       map[string]any{"target_weeks": 12},
			wantStatus: http.StatusBadRequest,
			wantError:  "goal is required",
		},
		{
			name:       "log_progress_anonymous",
			method:     http.MethodPost,
			path:       "/api/log_progress",
			body:       map[string]any{"weight": 70},
			wantStatus: http.StatusBadRequest,
			wantError:  "user_id is required",
		},
		{
			name:       "profile_unknown_user",
			method:     http.MethodGet,
			path:       "/api/profile/nobody12",
			wantStatus: http.StatusNotFound,
			wantError:  "User not found",
		},
		{
			name:       "unknown_route",
			method:     http.MethodGet,
			path:       "/api/nope",
			wantStatus: http.StatusNotFound,
			wantError:  "Endpoint not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(t, s, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			var resp map[string]string
			decodeJSON(t, w, &resp)
			if !strings.Contains(resp["error"], tt.wantError) {
				t.Errorf("error = %q, want to contain %q", resp["error"], tt.wantError)
			}
		})
	}
}

func TestServerChatRateLimit(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitMessagesPerMin = 1
	cfg.RateLimitBurstSize = 2
	s := newTestServer(t, cfg, store.NewMemoryStore(10))

	body := map[string]any{"message": "hello"}
	for i := 0; i < 2; i++ {
		w := performJSON(t, s, http.MethodPost, "/api/chat", body)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := performJSON(t, s, http.MethodPost, "/api/chat", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Errorf("X-RateLimit-Limit = %q, want 2", got)
	}

	var resp map[string]any
	decodeJSON(t, w, &resp)
	if resp["error"] != "rate limit exceeded" {
		t.Errorf("error = %v, want rate limit exceeded", resp["error"])
	}
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t, testServerConfig(), store.NewMemoryStore(10))

	w := performJSON(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	var health types.HealthResponse
	decodeJSON(t, w, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.Services["store"] != "ok" {
		t.Errorf("store service = %q, want ok", health.Services["store"])
	}
	// The test engine is never warmed.
	if health.Services["rag_engine"] != "warming" {
		t.Errorf("rag_engine service = %q, want warming", health.Services["rag_engine"])
	}
	if health.Services["knowledge_chunks"] != "0" {
		t.Errorf("knowledge_chunks = %q, want 0", health.Services["knowledge_chunks"])
	}
	if health.Services["active_users"] != "0" {
		t.Errorf("active_users = %q, want 0", health.Services["active_users"])
	}
}

func TestServerHealthDegraded(t *testing.T) {
	s := newTestServer(t, testServerConfig(), pingFailStore{store.NewMemoryStore(10)})

	w := performJSON(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	var health types.HealthResponse
	decodeJSON(t, w, &health)
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded", health.Status)
	}
	if health.Services["store"] != "error" {
		t.Errorf("store service = %q, want error", health.Services["store"])
	}
}

package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"bodybae/config"
	apperrors "bodybae/errors"
	"bodybae/web/types"
)

func testClientConfig() *config.Config {
	return &config.Config{
		ChatModel:         "coach-chat",
		EmbeddingModel:    "coach-embed",
		LLMMaxTokens:      300,
		LLMRequestTimeout: 5 * time.Second,
		MaxRetries:        3,
		RetryDelaySeconds: time.Millisecond,
	}
}

func chatReplyJSON(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestChatRetriesWhileModelLoads(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(chatReplyJSON("Stay hydrated!"))
	}))
	defer srv.Close()

	client := New(testClientConfig(), zap.NewNop())
	reply, err := client.Chat(context.Background(), srv.URL, []types.ChatMessage{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Stay hydrated!" {
		t.Errorf("Chat() = %q, want %q", reply, "Stay hydrated!")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestChatClassifiesUnavailableUpstream(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testClientConfig()
	client := New(cfg, zap.NewNop())
	_, err := client.Chat(context.Background(), srv.URL, []types.ChatMessage{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("Chat() error = nil, want llm communication error")
	}
	if !apperrors.IsLLMCommunication(err) {
		t.Errorf("IsLLMCommunication(%v) = false, want true", err)
	}
	if apperrors.IsInvalidInput(err) {
		t.Errorf("IsInvalidInput(%v) = true, want false", err)
	}
	if got := calls.Load(); got != int32(cfg.MaxRetries) {
		t.Errorf("server calls = %d, want %d", got, cfg.MaxRetries)
	}
}

func TestChatRequestShape(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatReplyJSON("ok"))
	}))
	defer srv.Close()

	cfg := testClientConfig()
	cfg.LLMAPIKey = "secret"
	client := New(cfg, zap.NewNop())
	temp := 0.2
	if _, err := client.Chat(context.Background(), srv.URL, []types.ChatMessage{{Role: "user", Content: "hello"}}, &temp); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if got.Model != "coach-chat" {
		t.Errorf("request model = %q, want %q", got.Model, "coach-chat")
	}
	if got.Stream {
		t.Error("request stream = true, want false")
	}
	if got.MaxTokens != 300 {
		t.Errorf("request max_tokens = %d, want 300", got.MaxTokens)
	}
	if got.Temperature == nil || *got.Temperature != 0.2 {
		t.Errorf("request temperature = %v, want 0.2", got.Temperature)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("request messages = %+v, want the single user turn", got.Messages)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization header = %q, want %q", auth, "Bearer secret")
	}
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := New(testClientConfig(), zap.NewNop())
	_, err := client.Chat(context.Background(), srv.URL, []types.ChatMessage{{Role: "user", Content: "hi"}}, nil)
	if err == nil || !apperrors.IsLLMCommunication(err) {
		t.Errorf("Chat() error = %v, want llm communication error", err)
	}
}

func TestEmbed(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	client := New(testClientConfig(), zap.NewNop())
	vec, err := client.Embed(context.Background(), srv.URL, "protein intake")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("Embed() vector length = %d, want 3", len(vec))
	}
	if got.Model != "coach-embed" || got.Input != "protein intake" {
		t.Errorf("request = %+v, want model coach-embed with the query text", got)
	}
}

func TestEmbedEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	client := New(testClientConfig(), zap.NewNop())
	_, err := client.Embed(context.Background(), srv.URL, "protein intake")
	if err == nil || !apperrors.IsLLMCommunication(err) {
		t.Errorf("Embed() error = %v, want llm communication error", err)
	}
}

package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"bodybae/config"
	"bodybae/knowledge"
	"bodybae/store"
	"bodybae/web/types"
)

type stubEmbedder struct {
	embedding []float32
	err       error
	calls     int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.embedding, nil
}

type stubIndex struct {
	results    []Result
	searchErr  error
	rebuilt    []IndexedChunk
	rebuildErr error
}

func (s *stubIndex) Rebuild(ctx context.Context, chunks []IndexedChunk) error {
	if s.rebuildErr != nil {
		return s.rebuildErr
	}
	s.rebuilt = chunks
	return nil
}

func (s *stubIndex) Search(ctx context.Context, embedding []float32, k int) ([]Result, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

type stubGenerator struct {
	reply    string
	err      error
	messages []types.ChatMessage
}

func (s *stubGenerator) Chat(ctx context.Context, host string, messages []types.ChatMessage, temperature *float64) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ChatLLMHost:      "http://localhost:8080",
		LLMTemperature:   0.7,
		RAGTopK:          3,
		RAGMinSimilarity: 0.3,
		HistoryWindow:    4,
		ChunkSizeRunes:   500,
	}
}

func newTestEngine(embedder Embedder, index Index, generator Generator) *Engine {
	logger := zap.NewNop()
	engine := NewEngine(testConfig(), nil, nil, embedder, index, generator, logger)
	engine.ready.Store(true)
	return engine
}

func knowledgeResults() []Result {
	return []Result{
		{Topic: "Hydration", Content: "Hydration: Drink 8-10 glasses of water daily.", Similarity: 0.85},
	}
}

func TestEngineRespondSuccess(t *testing.T) {
	generator := &stubGenerator{reply: "Drink plenty of water throughout the day."}
	engine := newTestEngine(
		&stubEmbedder{embedding: []float32{0.1, 0.2}},
		&stubIndex{results: knowledgeResults()},
		generator,
	)

	got := engine.Respond(context.Background(), testProfile(), nil, "how much water should I drink?")

	want := "Drink plenty of water throughout the day.\n\nRemember Sam, consistency is key to reaching your goals!"
	if got != want {
		t.Errorf("Respond() = %q, want %q", got, want)
	}
	if len(generator.messages) != 2 {
		t.Fatalf("generator received %d messages, want 2", len(generator.messages))
	}
	if !strings.Contains(generator.messages[0].Content, "Health Topic: Hydration") {
		t.Errorf("system prompt missing retrieved knowledge")
	}
}

func TestEngineRespondAnonymous(t *testing.T) {
	engine := newTestEngine(
		&stubEmbedder{embedding: []float32{0.1}},
		&stubIndex{results: knowledgeResults()},
		&stubGenerator{reply: "Water needs vary with activity and climate."},
	)

	got := engine.Respond(context.Background(), nil, nil, "how much water?")
	if strings.Contains(got, "Remember") {
		t.Errorf("Respond() = %q, anonymous replies should not carry the name suffix", got)
	}
	if got != "Water needs vary with activity and climate." {
		t.Errorf("Respond() = %q, want the generated reply verbatim", got)
	}
}

func TestEngineRespondFallbackPaths(t *testing.T) {
	message := "how do I build muscle?"
	wantFallback := FallbackResponse(message, "Sam", "maintain")

	tests := []struct {
		name      string
		embedder  *stubEmbedder
		index     *stubIndex
		generator *stubGenerator
	}{
		{
			name:      "embed_error",
			embedder:  &stubEmbedder{err: errors.New("embedding server down")},
			index:     &stubIndex{results: knowledgeResults()},
			generator: &stubGenerator{reply: "A long enough generated answer."},
		},
		{
			name:      "search_error",
			embedder:  &stubEmbedder{embedding: []float32{0.1}},
			index:     &stubIndex{searchErr: errors.New("index unavailable")},
			generator: &stubGenerator{reply: "A long enough generated answer."},
		},
		{
			name:      "below_similarity_threshold",
			embedder:  &stubEmbedder{embedding: []float32{0.1}},
			index:     &stubIndex{results: []Result{{Topic: "Hydration", Content: "Hydration: water.", Similarity: 0.12}}},
			generator: &stubGenerator{reply: "A long enough generated answer."},
		},
		{
			name:      "no_results",
			embedder:  &stubEmbedder{embedding: []float32{0.1}},
			index:     &stubIndex{},
			generator: &stubGenerator{reply: "A long enough generated answer."},
		},
		{
			name:      "generation_error",
			embedder:  &stubEmbedder{embedding: []float32{0.1}},
			index:     &stubIndex{results: knowledgeResults()},
			generator: &stubGenerator{err: errors.New("chat server down")},
		},
		{
			name:      "reply_too_short",
			embedder:  &stubEmbedder{embedding: []float32{0.1}},
			index:     &stubIndex{results: knowledgeResults()},
			generator: &stubGenerator{reply: "  ok.  "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(tt.embedder, tt.index, tt.generator)
			got := engine.Respond(context.Background(), testProfile(), nil, message)
			if got != wantFallback {
				t.Errorf("Respond() = %q, want fallback %q", got, wantFallback)
			}
		})
	}
}

func TestEngineRespondNotReady(t *testing.T) {
	logger := zap.NewNop()
	engine := NewEngine(testConfig(), nil, nil,
		&stubEmbedder{embedding: []float32{0.1}},
		&stubIndex{results: knowledgeResults()},
		&stubGenerator{reply: "A long enough generated answer."},
		logger,
	)

	message := "what should I eat?"
	got := engine.Respond(context.Background(), testProfile(), nil, message)
	if got != FallbackResponse(message, "Sam", "maintain") {
		t.Errorf("Respond() = %q, want fallback before warm-up", got)
	}
	if engine.Ready() {
		t.Errorf("Ready() = true before warm-up")
	}
}

func TestEngineRespondSimilarityFilter(t *testing.T) {
	generator := &stubGenerator{reply: "Sleep seven to nine hours for best recovery."}
	engine := newTestEngine(
		&stubEmbedder{embedding: []float32{0.1}},
		&stubIndex{results: []Result{
			{Topic: "Sleep and Recovery", Content: "Sleep and Recovery: Aim for 7-9 hours.", Similarity: 0.72},
			{Topic: "Supplements", Content: "Supplements: Most people don't need them.", Similarity: 0.18},
		}},
		generator,
	)

	engine.Respond(context.Background(), testProfile(), nil, "how much sleep do I need?")

	system := generator.messages[0].Content
	if !strings.Contains(system, "Health Topic: Sleep and Recovery") {
		t.Errorf("system prompt missing the relevant topic")
	}
	if strings.Contains(system, "Supplements") {
		t.Errorf("system prompt should exclude results below the similarity threshold")
	}
}

func TestEngineRespondHistoryWindow(t *testing.T) {
	generator := &stubGenerator{reply: "Keep your routine simple and consistent."}
	engine := newTestEngine(
		&stubEmbedder{embedding: []float32{0.1}},
		&stubIndex{results: knowledgeResults()},
		generator,
	)

	history := []store.Turn{
		{Role: "user", Content: "turn one"},
		{Role: "assistant", Content: "turn two"},
		{Role: "user", Content: "turn three"},
		{Role: "assistant", Content: "turn four"},
		{Role: "user", Content: "turn five"},
		{Role: "assistant", Content: "turn six"},
	}
	engine.Respond(context.Background(), testProfile(), history, "any advice?")

	system := generator.messages[0].Content
	if strings.Contains(system, "turn one") || strings.Contains(system, "turn two") {
		t.Errorf("system prompt should only carry the last %d turns", testConfig().HistoryWindow)
	}
	for _, content := range []string{"turn three", "turn four", "turn five", "turn six"} {
		if !strings.Contains(system, content) {
			t.Errorf("system prompt missing recent turn %q", content)
		}
	}
}

func TestEngineWarm(t *testing.T) {
	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	logger := zap.NewNop()
	splitter := &knowledge.RegexSentenceSplitter{}

	t.Run("success", func(t *testing.T) {
		index := &stubIndex{}
		engine := NewEngine(testConfig(), kb, splitter,
			&stubEmbedder{embedding: []float32{0.1, 0.2}}, index, &stubGenerator{}, logger)

		if err := engine.Warm(context.Background()); err != nil {
			t.Fatalf("Warm() error = %v", err)
		}
		if !engine.Ready() {
			t.Errorf("Ready() = false after successful warm-up")
		}
		if len(index.rebuilt) < 15 {
			t.Errorf("index received %d chunks, want at least one per topic", len(index.rebuilt))
		}
		for _, chunk := range index.rebuilt {
			if len(chunk.Embedding) == 0 {
				t.Fatalf("chunk %s indexed without an embedding", chunk.ID)
			}
		}
	})

	t.Run("embed_failure", func(t *testing.T) {
		engine := NewEngine(testConfig(), kb, splitter,
			&stubEmbedder{err: errors.New("embedding server down")}, &stubIndex{}, &stubGenerator{}, logger)

		if err := engine.Warm(context.Background()); err == nil {
			t.Fatalf("Warm() error = nil, want embedding failure")
		}
		if engine.Ready() {
			t.Errorf("Ready() = true after failed warm-up")
		}
	})

	t.Run("rebuild_failure", func(t *testing.T) {
		engine := NewEngine(testConfig(), kb, splitter,
			&stubEmbedder{embedding: []float32{0.1}}, &stubIndex{rebuildErr: errors.New("index down")}, &stubGenerator{}, logger)

		if err := engine.Warm(context.Background()); err == nil {
			t.Fatalf("Warm() error = nil, want rebuild failure")
		}
		if engine.Ready() {
			t.Errorf("Ready() = true after failed warm-up")
		}
	})
}

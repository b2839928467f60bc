package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"bodybae/config"
	apperrors "bodybae/errors"
	"bodybae/web/types"
)

// backoffCap bounds the exponential retry delay.
const backoffCap = 30 * time.Second

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []types.ChatMessage `json:"messages"`
	Stream      bool                `json:"stream"`
	Temperature *float64            `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message types.ChatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Client talks to OpenAI-compatible chat and embedding servers.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
}

// Chat performs a non-streaming chat completion call.
// temperature is optional; pass nil to use the server default.
func (c *Client) Chat(ctx context.Context, host string, messages []types.ChatMessage, temperature *float64) (string, error) {
	reqBody := chatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		Stream:      false,
		Temperature: temperature,
		MaxTokens:   c.cfg.LLMMaxTokens,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(host, "/"))
	bodyBytes, err := c.postWithRetry(ctx, url, jsonBody)
	if err != nil {
		return "", err
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, "no response choices from llm server")
	}
	return cr.Choices[0].Message.Content, nil
}

// Embed generates an embedding vector for the provided text using the
// OpenAI-compatible embeddings endpoint.
func (c *Client) Embed(ctx context.Context, host string, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model: c.cfg.EmbeddingModel,
		Input: text,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", strings.TrimRight(host, "/"))
	bodyBytes, err := c.postWithRetry(ctx, url, jsonBody)
	if err != nil {
		return nil, err
	}

	var er embeddingResponse
	if err := json.Unmarshal(bodyBytes, &er); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrLLMCommunication, "embedding response was empty")
	}
	return er.Data[0].Embedding, nil
}

// postWithRetry sends a JSON POST, retrying with backoff while the server
// reports 503 so a model that is still loading gets a chance to come up.
// It does not retry on context cancellation.
func (c *Client) postWithRetry(ctx context.Context, url string, jsonBody []byte) ([]byte, error) {
	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("create llm request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.LLMAPIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.LLMAPIKey)
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if r.StatusCode == http.StatusServiceUnavailable {
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			c.logger.Warn("LLM service unavailable, retrying", zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		}

		resp = r
		break
	}
	if resp == nil {
		if lastErr != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrLLMCommunication, "no response from llm server: %v", lastErr)
		}
		return nil, apperrors.WrapErrorf(apperrors.ErrLLMCommunication, "llm server unavailable after %d attempts", c.cfg.MaxRetries)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.WrapErrorf(apperrors.ErrLLMCommunication, "llm server status %s: %s", resp.Status, string(bodyBytes))
	}
	return bodyBytes, nil
}

func (c *Client) backoffSleep(attempt int) {
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second
	}
	d := base * time.Duration(1<<attempt)
	if d > backoffCap {
		d = backoffCap
	}
	jitter := time.Duration(float64(d) * 0.1)
	time.Sleep(d - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter+1)))
}

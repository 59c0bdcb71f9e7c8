package textproc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"whisperkey/internal/config"
)

// Corrector sends the transcript through a chat-completions endpoint
// for grammar and punctuation cleanup. Every failure mode falls back to
// the input text: dictation must never lose words to a flaky API.
type Corrector struct {
	cfg config.AIConfig
	log *slog.Logger

	mu      sync.Mutex
	clients map[string]*http.Client
}

func NewCorrector(cfg config.AIConfig, log *slog.Logger) *Corrector {
	return &Corrector{
		cfg:     cfg,
		log:     log,
		clients: make(map[string]*http.Client),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Correct returns the corrected transcript, or the input unchanged when
// correction is disabled, unconfigured, or fails.
func (c *Corrector) Correct(ctx context.Context, text string) string {
	if !c.cfg.Enabled || c.cfg.APIKey == "" || strings.TrimSpace(text) == "" {
		return text
	}

	corrected, err := c.request(ctx, text)
	if err != nil {
		c.log.Warn("ai correction failed, keeping original text", "error", err)
		return text
	}
	if strings.TrimSpace(corrected) == "" {
		c.log.Warn("ai correction returned empty text, keeping original")
		return text
	}
	return corrected
}

func (c *Corrector) request(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.cfg.Prompt},
			{Role: "user", Content: text},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.APIBaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat completions: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions returned %s", resp.Status)
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response carried no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// client returns the HTTP client cached for the configured API key so
// connection pools survive across recordings.
func (c *Corrector) client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.clients[c.cfg.APIKey]; ok {
		return cl
	}
	cl := &http.Client{}
	c.clients[c.cfg.APIKey] = cl
	return cl
}

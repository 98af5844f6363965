package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPGateway talks to a chat endpoint that accepts
// {message, preamble, temperature, max_tokens, chat_history} and answers
// with {text}.
type HTTPGateway struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func NewHTTPGateway(cfg Config, log *zap.Logger) *HTTPGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("llm"),
	}
}

type chatHistoryEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type chatRequest struct {
	Model       string             `json:"model,omitempty"`
	Message     string             `json:"message"`
	Preamble    string             `json:"preamble,omitempty"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	ChatHistory []chatHistoryEntry `json:"chat_history,omitempty"`
}

type chatResponse struct {
	Text    string `json:"text"`
	Message string `json:"message,omitempty"`
}

func (g *HTTPGateway) Complete(ctx context.Context, userMessage, systemPrompt string, history []Turn) (string, error) {
	body := chatRequest{
		Model:       g.cfg.Model,
		Message:     userMessage,
		Preamble:    systemPrompt,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	}
	for _, t := range lastTurns(history, g.cfg.HistoryTurns) {
		role := "USER"
		if t.Role == RoleAssistant {
			role = "CHATBOT"
		}
		body.ChatHistory = append(body.ChatHistory, chatHistoryEntry{Role: role, Message: t.Message})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", &GatewayError{Op: "marshal request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL, bytes.NewReader(data))
	if err != nil {
		return "", &GatewayError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", &GatewayError{Op: "http request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &GatewayError{Op: "read response", StatusCode: resp.StatusCode, Err: err}
	}
	g.log.Debug("completion",
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.Int("history", len(body.ChatHistory)))

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &GatewayError{Op: "completion", StatusCode: resp.StatusCode, Err: ErrRateLimited}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &GatewayError{
			Op:         "completion",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upstream error: %.200s", strings.TrimSpace(string(raw))),
		}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &GatewayError{Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", &GatewayError{Op: "completion", StatusCode: resp.StatusCode, Err: errors.New("empty text in response")}
	}
	return out.Text, nil
}

package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenAIGateway uses Google's Gemini API.
type GenAIGateway struct {
	cfg    Config
	client *genai.Client
	log    *zap.Logger
}

func NewGenAIGateway(ctx context.Context, cfg Config, log *zap.Logger) (*GenAIGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &GatewayError{Op: "create client", Err: err}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GenAIGateway{cfg: cfg, client: client, log: log.Named("llm")}, nil
}

func (g *GenAIGateway) Complete(ctx context.Context, userMessage, systemPrompt string, history []Turn) (string, error) {
	contents := toContents(lastTurns(history, g.cfg.HistoryTurns), userMessage)

	conf := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.cfg.Temperature)),
		MaxOutputTokens: int32(g.cfg.MaxTokens),
	}
	if systemPrompt != "" {
		conf.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, conf)
	if err != nil {
		if isResourceExhausted(err) {
			return "", &GatewayError{Op: "generate content", StatusCode: http.StatusTooManyRequests, Err: ErrRateLimited}
		}
		return "", &GatewayError{Op: "generate content", Err: err}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &GatewayError{Op: "generate content", Err: errors.New("empty text in response")}
	}
	return text, nil
}

func toContents(history []Turn, userMessage string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Message, role))
	}
	return append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))
}

// isResourceExhausted spots quota errors by their status text, which is
// stable across the SDK's error types.
func isResourceExhausted(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429")
}

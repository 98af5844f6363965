// Package llm wraps the external completion service. It returns the model's
// text verbatim and never interprets it.
package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange line. History is context only.
type Turn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Gateway sends one user message under a system prompt.
type Gateway interface {
	Complete(ctx context.Context, userMessage, systemPrompt string, history []Turn) (string, error)
}

var (
	// ErrGateway matches every failure of a completion call.
	ErrGateway = errors.New("llm: gateway failure")
	// ErrRateLimited marks upstream 429 responses.
	ErrRateLimited = errors.New("llm: upstream rate limit exceeded")
)

// GatewayError is returned for transport, HTTP, auth and empty-payload
// failures. errors.Is(err, ErrGateway) is always true.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// lastTurns keeps the most recent n turns.
func lastTurns(history []Turn, n int) []Turn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}

// Package chat exposes the assistant over HTTP.
package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"github.com/5w1tchy/shelfbot/internal/api/middlewares"
	"github.com/5w1tchy/shelfbot/internal/assistant"
	"github.com/5w1tchy/shelfbot/internal/llm"
	"go.uber.org/zap"
)

const (
	maxMessageLen = 4000
	maxHistory    = 50
)

// Assistant is the part of assistant.Service the handler needs.
type Assistant interface {
	HandleUserMessage(ctx context.Context, text string, history []llm.Turn) assistant.Reply
}

type Handler struct {
	bot      Assistant
	sessions *sessions
	log      *zap.Logger
}

func New(bot Assistant, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{bot: bot, sessions: newSessions(), log: log.Named("chat")}
}

type request struct {
	Message string     `json:"message"`
	History []llm.Turn `json:"history"`
}

// Chat handles POST /chat. Turns sharing a session key are serialised.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, httpx.ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		apperr.WriteStatus(w, r, status, "", err.Error())
		return
	}
	if len(req.Message) > maxMessageLen {
		apperr.Write(w, r, apperr.Problem{
			Status:      http.StatusUnprocessableEntity,
			FieldErrors: []apperr.FieldError{{Field: "message", Code: "max", Message: "message is too long"}},
		})
		return
	}
	history, ok := cleanHistory(req.History)
	if !ok {
		apperr.Write(w, r, apperr.Problem{
			Status:      http.StatusUnprocessableEntity,
			FieldErrors: []apperr.FieldError{{Field: "history", Code: "invalid", Message: "history roles must be user or assistant"}},
		})
		return
	}

	key := sessionKey(r)
	release, err := h.sessions.acquire(r.Context(), key)
	if err != nil {
		// client went away while an earlier turn was still running
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "", "request cancelled")
		return
	}
	defer release()

	log := middlewares.Logger(r, h.log)
	reply := h.bot.HandleUserMessage(r.Context(), req.Message, history)
	log.Debug("turn handled",
		zap.String("session", key),
		zap.Int("commands", len(reply.Results)),
		zap.Bool("success", reply.Success))

	httpx.OK(w, reply)
}

// sessionKey scopes X-Session-ID under the token subject; callers without a
// header share one session per subject.
func sessionKey(r *http.Request) string {
	sub, _ := middlewares.SubjectFrom(r.Context())
	if sub == "" {
		sub = "anonymous"
	}
	sid := strings.TrimSpace(r.Header.Get("X-Session-ID"))
	if sid == "" || len(sid) > 128 {
		return sub
	}
	return sub + ":" + sid
}

// cleanHistory keeps the newest maxHistory turns with a known role and
// drops blank ones.
func cleanHistory(in []llm.Turn) ([]llm.Turn, bool) {
	out := make([]llm.Turn, 0, len(in))
	for _, t := range in {
		role := strings.ToLower(strings.TrimSpace(t.Role))
		switch role {
		case llm.RoleUser, llm.RoleAssistant:
		default:
			return nil, false
		}
		if strings.TrimSpace(t.Message) == "" {
			continue
		}
		out = append(out, llm.Turn{Role: role, Message: t.Message})
	}
	if len(out) > maxHistory {
		out = out[len(out)-maxHistory:]
	}
	return out, true
}

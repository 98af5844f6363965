// Package assistant runs one chat turn: model call, normalization,
// resolution and execution, in that order.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/executor"
	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/llm"
	"github.com/5w1tchy/shelfbot/internal/metrics/turnqueue"
	"github.com/5w1tchy/shelfbot/internal/resolver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgEmpty       = "Please type a message."
	msgUnavailable = "I couldn't reach the assistant service. Please try again."
	msgBusy        = "The assistant is busy right now. Please try again in a moment."
	msgReadFailed  = "Something went wrong while reading your catalogue. Please try again."
	msgCancelled   = "The request was cancelled before every command ran."
)

// Reply is what the caller shows the user. Success is true only when every
// command in the turn succeeded.
type Reply struct {
	Message string            `json:"message"`
	Success bool              `json:"success"`
	Results []executor.Result `json:"-"`
	Intents []intent.Intent   `json:"-"`
}

// Auditor receives one event per executed command.
type Auditor interface {
	Enqueue(ev turnqueue.Event) bool
}

type Service struct {
	gateway llm.Gateway
	norm    *intent.Normalizer
	store   catalog.Store
	exec    *executor.Executor
	prompts llm.Prompts
	audit   Auditor
	log     *zap.Logger
}

type Option func(*Service)

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.audit = a }
}

func New(gw llm.Gateway, store catalog.Store, exec *executor.Executor, prompts llm.Prompts, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		gateway: gw,
		norm:    intent.NewNormalizer(log),
		store:   store,
		exec:    exec,
		prompts: prompts,
		log:     log.Named("assistant"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// HandleUserMessage never returns an error; every failure becomes a message.
// Commands run in the order the model emitted them and each one resolves
// against a fresh catalogue snapshot, so later commands see earlier writes.
func (s *Service) HandleUserMessage(ctx context.Context, text string, history []llm.Turn) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Message: msgEmpty}
	}

	raw, err := s.gateway.Complete(ctx, text, s.prompts.Command, history)
	if err != nil {
		s.log.Warn("completion failed", zap.Error(err))
		if errors.Is(err, llm.ErrRateLimited) {
			return Reply{Message: msgBusy}
		}
		return Reply{Message: msgUnavailable}
	}

	cmds := s.norm.NormalizeAll(raw, text)
	turnID := uuid.NewString()
	reply := Reply{Success: true}
	for i, cmd := range cmds {
		if ctx.Err() != nil {
			s.log.Info("turn cancelled", zap.String("turn", turnID), zap.Int("ran", i))
			reply.Results = append(reply.Results, executor.Result{Message: msgCancelled})
			reply.Success = false
			break
		}
		start := time.Now()
		res := s.run(ctx, cmd)
		s.record(turnID, i, cmd.Intent, res.Success, time.Since(start))

		reply.Results = append(reply.Results, res)
		reply.Intents = append(reply.Intents, cmd.Intent)
		reply.Success = reply.Success && res.Success
	}

	msgs := make([]string, 0, len(reply.Results))
	for _, r := range reply.Results {
		if m := strings.TrimSpace(r.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	reply.Message = strings.Join(msgs, "\n\n")
	return reply
}

func (s *Service) run(ctx context.Context, cmd intent.Command) executor.Result {
	var match resolver.MatchResult
	if needsSnapshot(cmd.Intent) {
		books, err := s.store.List(ctx)
		if err != nil {
			s.log.Error("catalogue snapshot failed", zap.String("intent", string(cmd.Intent)), zap.Error(err))
			return executor.Result{Message: msgReadFailed}
		}
		match = resolver.Resolve(cmd, books)
	}
	s.log.Debug("executing command",
		zap.String("intent", string(cmd.Intent)),
		zap.Int("matches", len(match.Matches)))
	return s.exec.Execute(ctx, cmd, match)
}

// needsSnapshot is false for intents whose handlers ignore the match.
func needsSnapshot(in intent.Intent) bool {
	switch in {
	case intent.Add, intent.ListAll, intent.Help, intent.Unknown:
		return false
	default:
		return true
	}
}

func (s *Service) record(turnID string, seq int, in intent.Intent, ok bool, d time.Duration) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(turnqueue.Event{
		TurnID:  turnID,
		Seq:     seq,
		Intent:  string(in),
		Success: ok,
		Latency: d,
		At:      time.Now().UTC(),
	})
}

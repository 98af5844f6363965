// Package executor applies resolved commands to the catalogue and phrases the
// outcome for the user.
package executor

import (
	"context"
	"fmt"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/llm"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/resolver"
	"go.uber.org/zap"
)

// Result is what the user is told. Success is false for refusals as well as
// failures.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Enricher fills missing metadata on a new book.
type Enricher interface {
	Enrich(ctx context.Context, p *models.Patch) error
}

type handlerFunc func(ctx context.Context, cmd intent.Command, match resolver.MatchResult) Result

type Executor struct {
	store    catalog.Store
	enricher Enricher
	convo    llm.Gateway
	prompts  llm.Prompts
	log      *zap.Logger
	handlers map[intent.Intent]handlerFunc
}

type Option func(*Executor)

func WithEnricher(e Enricher) Option {
	return func(x *Executor) {
		if e != nil {
			x.enricher = e
		}
	}
}

// WithConversation lets unknown commands get a free-form model reply.
func WithConversation(g llm.Gateway) Option {
	return func(x *Executor) { x.convo = g }
}

func New(store catalog.Store, prompts llm.Prompts, log *zap.Logger, opts ...Option) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	x := &Executor{store: store, prompts: prompts, log: log.Named("executor")}
	for _, o := range opts {
		o(x)
	}
	x.handlers = map[intent.Intent]handlerFunc{
		intent.Add:            x.add,
		intent.Update:         x.update,
		intent.Delete:         x.delete,
		intent.Search:         x.search,
		intent.ListAll:        x.listAll,
		intent.GetField:       x.getField,
		intent.GetDescription: x.getDescription,
		intent.BookDetails:    x.bookDetails,
		intent.Help:           x.help,
		intent.Unknown:        x.unknown,
	}
	return x
}

// Handles reports whether in has a handler.
func (x *Executor) Handles(in intent.Intent) bool {
	_, ok := x.handlers[in]
	return ok
}

// Execute runs cmd. Only update, delete and the single-book lookups consult
// match, and they act only when it holds exactly one book.
func (x *Executor) Execute(ctx context.Context, cmd intent.Command, match resolver.MatchResult) Result {
	h, ok := x.handlers[cmd.Intent]
	if !ok {
		x.log.Error("no handler for intent", zap.String("intent", string(cmd.Intent)))
		return x.unknown(ctx, cmd, match)
	}
	return h(ctx, cmd, match)
}

// single applies the cardinality gate shared by every single-book intent.
func single(match resolver.MatchResult, verb string) (models.Book, *Result) {
	switch match.Status {
	case resolver.ExactlyOne:
		return match.Matches[0], nil
	case resolver.Multiple:
		return models.Book{}, &Result{Success: false, Message: disambiguation(match.Matches, verb)}
	default:
		return models.Book{}, &Result{Success: false, Message: "I couldn't find a book matching that description."}
	}
}

func (x *Executor) storeFailure(op string, err error) Result {
	x.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return Result{Success: false, Message: fmt.Sprintf("Something went wrong while trying to %s. Please try again.", op)}
}

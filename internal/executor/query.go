package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/resolver"
	"go.uber.org/zap"
)

func (x *Executor) search(_ context.Context, _ intent.Command, match resolver.MatchResult) Result {
	if len(match.Matches) == 0 {
		return Result{Success: true, Message: "No books found matching your search."}
	}
	return Result{Success: true, Message: fmt.Sprintf("Found %s:\n%s", plural(len(match.Matches)), numbered(match.Matches, 0))}
}

func (x *Executor) listAll(ctx context.Context, _ intent.Command, _ resolver.MatchResult) Result {
	books, err := x.store.List(ctx)
	if err != nil {
		return x.storeFailure("list your books", err)
	}
	if len(books) == 0 {
		return Result{Success: true, Message: "No books found. Your catalogue is empty."}
	}
	return Result{Success: true, Message: fmt.Sprintf("You have %s:\n%s", plural(len(books)), numbered(books, 0))}
}

func (x *Executor) getField(_ context.Context, cmd intent.Command, match resolver.MatchResult) Result {
	field := intent.CanonicalField(cmd.Field)
	if _, ok := labels[field]; !ok {
		return Result{Success: false, Message: "Which detail do you want? I can tell you the " + strings.Join(fieldLabels(), ", ") + "."}
	}
	book, refusal := single(match, "look up")
	if refusal != nil {
		return *refusal
	}
	val, _ := book.FieldValue(field)
	if val == "" {
		return Result{Success: true, Message: fmt.Sprintf("%q has no %s recorded.", book.Title, label(field))}
	}
	return Result{Success: true, Message: fmt.Sprintf("%s of %q: %s", capitalize(label(field)), book.Title, val)}
}

func (x *Executor) getDescription(_ context.Context, _ intent.Command, match resolver.MatchResult) Result {
	book, refusal := single(match, "describe")
	if refusal != nil {
		return *refusal
	}
	if strings.TrimSpace(book.Description) == "" {
		return Result{Success: true, Message: fmt.Sprintf("%q has no description yet.", book.Title)}
	}
	return Result{Success: true, Message: fmt.Sprintf("%q: %s", book.Title, book.Description)}
}

func (x *Executor) bookDetails(_ context.Context, _ intent.Command, match resolver.MatchResult) Result {
	book, refusal := single(match, "show")
	if refusal != nil {
		return *refusal
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Details for %q:", book.Title)
	for _, f := range models.Fields {
		if v, _ := book.FieldValue(f); v != "" {
			fmt.Fprintf(&sb, "\n- %s: %s", capitalize(label(f)), v)
		}
	}
	return Result{Success: true, Message: sb.String()}
}

func (x *Executor) help(_ context.Context, _ intent.Command, _ resolver.MatchResult) Result {
	return Result{Success: true, Message: strings.TrimSpace(x.prompts.Help)}
}

// unknown never touches the catalogue.
func (x *Executor) unknown(ctx context.Context, cmd intent.Command, _ resolver.MatchResult) Result {
	if x.convo != nil && strings.TrimSpace(cmd.Message) != "" {
		reply, err := x.convo.Complete(ctx, cmd.Message, x.prompts.Conversation, nil)
		if err == nil {
			return Result{Success: false, Message: strings.TrimSpace(reply)}
		}
		x.log.Warn("conversational reply failed", zap.Error(err))
	}
	return Result{
		Success: false,
		Message: "I'm not sure what you want me to do.\n" + strings.TrimSpace(x.prompts.Help),
	}
}

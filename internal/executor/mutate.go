package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/resolver"
	"github.com/5w1tchy/shelfbot/internal/validate"
	"go.uber.org/zap"
)

func (x *Executor) add(ctx context.Context, cmd intent.Command, _ resolver.MatchResult) Result {
	p := cmd.Payload
	if p.Title == nil || strings.TrimSpace(*p.Title) == "" {
		return Result{Success: false, Message: "I need at least a title to add a book."}
	}
	if err := validate.Struct(p); err != nil {
		return Result{Success: false, Message: "I can't add that book: " + strings.Join(validate.Messages(err), "; ") + "."}
	}

	existing, err := x.store.List(ctx)
	if err != nil {
		return x.storeFailure("add the book", err)
	}
	if dup := findDuplicate(existing, p.NewBook()); dup != nil {
		return Result{Success: false, Message: fmt.Sprintf("%s is already in your catalogue.", describe(*dup))}
	}

	// Enrichment only adds references. The duplicate tuple stays as the user
	// gave it so a repeat add is rejected whether or not the lookup succeeds.
	if x.enricher != nil {
		enriched := p
		if err := x.enricher.Enrich(ctx, &enriched); err != nil {
			x.log.Warn("enrichment failed", zap.String("title", *p.Title), zap.Error(err))
		} else {
			p.OpenLibraryID, p.CoverURL = enriched.OpenLibraryID, enriched.CoverURL
		}
	}
	book := p.NewBook()

	if book.OpenLibraryID != "" {
		taken, err := x.store.ExistsByExternalID(ctx, book.OpenLibraryID)
		if err != nil {
			return x.storeFailure("add the book", err)
		}
		if taken {
			return Result{Success: false, Message: fmt.Sprintf("A book with Open Library ID %s is already in your catalogue.", book.OpenLibraryID)}
		}
	}

	created, err := x.store.Create(ctx, book)
	if errors.Is(err, catalog.ErrConflict) {
		return Result{Success: false, Message: fmt.Sprintf("%s is already in your catalogue.", describe(book))}
	}
	if err != nil {
		return x.storeFailure("add the book", err)
	}
	x.log.Info("book added", zap.String("id", created.ID), zap.String("title", created.Title))
	return Result{Success: true, Message: fmt.Sprintf("Added %s.", describe(created))}
}

// findDuplicate matches on folded title, author set, genre set and year.
func findDuplicate(books []models.Book, b models.Book) *models.Book {
	title := models.Fold(b.Title)
	for i := range books {
		e := &books[i]
		if models.Fold(e.Title) == title &&
			models.SameSet(e.Authors, b.Authors) &&
			models.SameSet(e.Genres, b.Genres) &&
			e.Year == b.Year {
			return e
		}
	}
	return nil
}

func (x *Executor) update(ctx context.Context, cmd intent.Command, match resolver.MatchResult) Result {
	book, refusal := single(match, "update")
	if refusal != nil {
		return *refusal
	}
	if cmd.Payload.Empty() {
		return Result{Success: false, Message: fmt.Sprintf("Tell me what to change about %q.", book.Title)}
	}
	if cmd.Payload.Title != nil && strings.TrimSpace(*cmd.Payload.Title) == "" {
		return Result{Success: false, Message: "A book's title can't be empty."}
	}
	if err := validate.Struct(cmd.Payload); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("I can't update %q: %s.", book.Title, strings.Join(validate.Messages(err), "; "))}
	}

	oldTitle := book.Title
	changes := cmd.Payload.Apply(&book)
	if len(changes) == 0 {
		return Result{Success: true, Message: fmt.Sprintf("%q already has those details; nothing changed.", book.Title)}
	}
	if err := x.store.Update(ctx, book.ID, book); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Result{Success: false, Message: fmt.Sprintf("%q no longer exists.", oldTitle)}
		}
		return x.storeFailure("update the book", err)
	}

	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s → %s", label(c.Field), orNone(c.Old), orNone(c.New)))
	}
	x.log.Info("book updated", zap.String("id", book.ID), zap.Int("fields", len(changes)))
	return Result{Success: true, Message: fmt.Sprintf("Updated %q (%s).", oldTitle, strings.Join(parts, "; "))}
}

func (x *Executor) delete(ctx context.Context, _ intent.Command, match resolver.MatchResult) Result {
	book, refusal := single(match, "delete")
	if refusal != nil {
		return *refusal
	}
	if err := x.store.Delete(ctx, book.ID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Result{Success: false, Message: fmt.Sprintf("%q was already removed.", book.Title)}
		}
		return x.storeFailure("delete the book", err)
	}
	x.log.Info("book deleted", zap.String("id", book.ID))
	return Result{Success: true, Message: fmt.Sprintf("Deleted %s.", describe(book))}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

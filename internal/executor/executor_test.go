package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/llm"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

var errBoom = errors.New("boom")

// brokenStore fails every call and counts them.
type brokenStore struct{ calls int }

func (s *brokenStore) List(context.Context) ([]models.Book, error) {
	s.calls++
	return nil, errBoom
}
func (s *brokenStore) Get(context.Context, string) (models.Book, error) {
	s.calls++
	return models.Book{}, errBoom
}
func (s *brokenStore) Create(context.Context, models.Book) (models.Book, error) {
	s.calls++
	return models.Book{}, errBoom
}
func (s *brokenStore) Update(context.Context, string, models.Book) error {
	s.calls++
	return errBoom
}
func (s *brokenStore) Delete(context.Context, string) error {
	s.calls++
	return errBoom
}
func (s *brokenStore) ExistsByExternalID(context.Context, string) (bool, error) {
	s.calls++
	return false, errBoom
}

type stubGateway struct {
	reply string
	err   error
	got   string
}

func (g *stubGateway) Complete(_ context.Context, msg, _ string, _ []llm.Turn) (string, error) {
	g.got = msg
	return g.reply, g.err
}

type stubEnricher struct {
	olid string
	err  error
}

func (e stubEnricher) Enrich(_ context.Context, p *models.Patch) error {
	if e.err != nil {
		return e.err
	}
	p.OpenLibraryID = &e.olid
	return nil
}

func dune() models.Book {
	return models.Book{Title: "Dune", Authors: []string{"Frank Herbert"}, Genres: []string{"sci-fi"}, Year: 1965}
}

func newExec(store catalog.Store, opts ...Option) *Executor {
	return New(store, llm.DefaultPrompts(), zap.NewNop(), opts...)
}

// run resolves against a fresh snapshot the way the assistant does.
func run(t *testing.T, x *Executor, store catalog.Store, cmd intent.Command) Result {
	t.Helper()
	books, err := store.List(t.Context())
	require.NoError(t, err)
	return x.Execute(t.Context(), cmd, resolver.Resolve(cmd, books))
}

func TestEveryIntentHasAHandler(t *testing.T) {
	x := newExec(catalog.NewMemStore())
	for _, in := range intent.All() {
		assert.True(t, x.Handles(in), in)
	}
}

func TestAdd_RoundTrip(t *testing.T) {
	store := catalog.NewMemStore()
	x := newExec(store)

	res := run(t, x, store, intent.Command{Intent: intent.Add, Payload: models.Patch{
		Title:   ptr("Dune"),
		Authors: []string{"Frank Herbert"},
		Genres:  []string{"sci-fi"},
		Year:    ptr(1965),
	}})
	require.True(t, res.Success, res.Message)
	assert.Contains(t, res.Message, `"Dune" by Frank Herbert (1965)`)

	found := run(t, x, store, intent.Command{Intent: intent.Search, Criteria: intent.Criteria{Title: "dune"}})
	assert.True(t, found.Success)
	assert.Contains(t, found.Message, "1. \"Dune\" by Frank Herbert (1965)")
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	store := catalog.NewMemStore(dune())
	x := newExec(store)

	res := run(t, x, store, intent.Command{Intent: intent.Add, Payload: models.Patch{
		Title:   ptr("DUNE"),
		Authors: []string{"frank herbert"},
		Genres:  []string{"Sci-Fi"},
		Year:    ptr(1965),
	}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "already in your catalogue")

	books, _ := store.List(t.Context())
	assert.Len(t, books, 1)
}

func TestAdd_DifferentYearIsNotDuplicate(t *testing.T) {
	store := catalog.NewMemStore(dune())
	x := newExec(store)
	res := run(t, x, store, intent.Command{Intent: intent.Add, Payload: models.Patch{
		Title: ptr("Dune"), Authors: []string{"Frank Herbert"}, Genres: []string{"sci-fi"}, Year: ptr(2021),
	}})
	assert.True(t, res.Success, res.Message)
}

func TestAdd_RejectsTakenOpenLibraryID(t *testing.T) {
	b := dune()
	b.OpenLibraryID = "OL1W"
	store := catalog.NewMemStore(b)
	x := newExec(store, WithEnricher(stubEnricher{olid: "OL1W"}))

	res := run(t, x, store, intent.Command{Intent: intent.Add, Payload: models.Patch{Title: ptr("Dune (Deluxe)")}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "OL1W")
}

func TestAdd_EnrichmentFailureIsNotFatal(t *testing.T) {
	store := catalog.NewMemStore()
	x := newExec(store, WithEnricher(stubEnricher{err: errBoom}))
	res := run(t, x, store, intent.Command{Intent: intent.Add, Payload: models.Patch{Title: ptr("Emma")}})
	assert.True(t, res.Success, res.Message)
}

// flakyEnricher fills every field it can on the first call and fails after.
type flakyEnricher struct{ calls int }

func (e *flakyEnricher) Enrich(_ context.Context, p *models.Patch) error {
	e.calls++
	if e.calls > 1 {
		return errBoom
	}
	p.Year = ptr(1965)
	p.Authors = []string{"Frank Herbert"}
	p.OpenLibraryID = ptr("OL893415W")
	p.CoverURL = ptr("https://covers.openlibrary.org/b/id/1-L.jpg")
	return nil
}

func TestAdd_RepeatIsRejectedWhateverTheLookupDoes(t *testing.T) {
	store := catalog.NewMemStore()
	enricher := &flakyEnricher{}
	x := newExec(store, WithEnricher(enricher))
	add := intent.Command{Intent: intent.Add, Payload: models.Patch{Title: ptr("Dune")}}

	first := run(t, x, store, add)
	require.True(t, first.Success, first.Message)

	second := run(t, x, store, add)
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "already in your catalogue")
	assert.Equal(t, 1, enricher.calls, "duplicates are rejected before any lookup")

	books, err := store.List(t.Context())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "OL893415W", books[0].OpenLibraryID)
	assert.Equal(t, 0, books[0].Year, "lookups never change the identity fields")
	assert.Empty(t, books[0].Authors)
}

func TestAdd_Validation(t *testing.T) {
	store := catalog.NewMemStore()
	x := newExec(store)

	res := run(t, x, store, intent.Command{Intent: intent.Add, Payload: models.Patch{Authors: []string{"Nobody"}}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "title")

	res = run(t, x, store, intent.Command{Intent: intent.Add, Payload: models.Patch{Title: ptr("X"), Year: ptr(20)}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "year must be between 1000 and 2100")

	books, _ := store.List(t.Context())
	assert.Empty(t, books)
}

func TestUpdate_MergesOnlyGivenFields(t *testing.T) {
	b := dune()
	b.Description = "Spice."
	store := catalog.NewMemStore(b)
	x := newExec(store)

	res := run(t, x, store, intent.Command{
		Intent:   intent.Update,
		Criteria: intent.Criteria{Title: "Dune"},
		Payload:  models.Patch{Year: ptr(1966)},
	})
	require.True(t, res.Success, res.Message)
	assert.Contains(t, res.Message, `"Dune"`)
	assert.Contains(t, res.Message, "year: 1965 → 1966")

	books, _ := store.List(t.Context())
	got := books[0]
	assert.Equal(t, 1966, got.Year)
	assert.Equal(t, []string{"Frank Herbert"}, got.Authors)
	assert.Equal(t, []string{"sci-fi"}, got.Genres)
	assert.Equal(t, "Spice.", got.Description)
}

func TestUpdate_AmbiguousLeavesCatalogueUnchanged(t *testing.T) {
	messiah := models.Book{Title: "Dune Messiah", Authors: []string{"Frank Herbert"}, Year: 1969}
	store := catalog.NewMemStore(dune(), messiah)
	x := newExec(store)
	before, _ := store.List(t.Context())

	res := run(t, x, store, intent.Command{
		Intent:   intent.Update,
		Criteria: intent.Criteria{Authors: []string{"Herbert"}},
		Payload:  models.Patch{Year: ptr(2000)},
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, `"Dune" by Frank Herbert (1965)`)
	assert.Contains(t, res.Message, `"Dune Messiah" by Frank Herbert (1969)`)

	after, _ := store.List(t.Context())
	assert.Equal(t, before, after)
}

func TestUpdate_RefusalsAndNoops(t *testing.T) {
	store := catalog.NewMemStore(dune())
	x := newExec(store)

	res := run(t, x, store, intent.Command{Intent: intent.Update, Criteria: intent.Criteria{Title: "Emma"}, Payload: models.Patch{Year: ptr(1816)}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "couldn't find")

	res = x.Execute(t.Context(), intent.Command{Intent: intent.Update}, resolver.MatchResult{Matches: []models.Book{dune()}, Status: resolver.ExactlyOne})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "what to change")

	res = run(t, x, store, intent.Command{Intent: intent.Update, Criteria: intent.Criteria{Title: "Dune"}, Payload: models.Patch{Year: ptr(1965)}})
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "nothing changed")
}

func TestDelete(t *testing.T) {
	store := catalog.NewMemStore(dune())
	x := newExec(store)

	res := run(t, x, store, intent.Command{Intent: intent.Delete, Criteria: intent.Criteria{Title: "dune"}})
	require.True(t, res.Success, res.Message)
	assert.Contains(t, res.Message, `Deleted "Dune" by Frank Herbert`)

	books, _ := store.List(t.Context())
	assert.Empty(t, books)
}

func TestSearchAndList(t *testing.T) {
	store := catalog.NewMemStore()
	x := newExec(store)

	res := run(t, x, store, intent.Command{Intent: intent.Search, Criteria: intent.Criteria{Genres: []string{"horror"}}})
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "No books found")

	res = run(t, x, store, intent.Command{Intent: intent.ListAll})
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "No books found")

	_, _ = store.Create(t.Context(), dune())
	_, _ = store.Create(t.Context(), models.Book{Title: "Emma", Authors: []string{"Jane Austen"}})
	res = run(t, x, store, intent.Command{Intent: intent.ListAll})
	assert.Equal(t, "You have 2 books:\n1. \"Dune\" by Frank Herbert (1965)\n2. \"Emma\" by Jane Austen", res.Message)
}

func TestLookups(t *testing.T) {
	b := dune()
	b.Description = "Desert planet."
	store := catalog.NewMemStore(b)
	x := newExec(store)
	byTitle := intent.Criteria{Title: "Dune"}

	res := run(t, x, store, intent.Command{Intent: intent.GetField, Criteria: byTitle, Field: "authors"})
	assert.Equal(t, `Author of "Dune": Frank Herbert`, res.Message)

	res = run(t, x, store, intent.Command{Intent: intent.GetField, Criteria: byTitle, Field: "coverUrl"})
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "no cover URL recorded")

	res = run(t, x, store, intent.Command{Intent: intent.GetField, Criteria: byTitle, Field: "isbn"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "author")

	res = run(t, x, store, intent.Command{Intent: intent.GetDescription, Criteria: byTitle})
	assert.Equal(t, `"Dune": Desert planet.`, res.Message)

	res = run(t, x, store, intent.Command{Intent: intent.BookDetails, Criteria: byTitle})
	assert.Contains(t, res.Message, "Details for \"Dune\":")
	assert.Contains(t, res.Message, "- Year: 1965")
	assert.Contains(t, res.Message, "- Genre: sci-fi")
}

func TestHelpAndUnknownNeverTouchStore(t *testing.T) {
	store := &brokenStore{}

	x := newExec(store)
	res := x.Execute(t.Context(), intent.Command{Intent: intent.Help}, resolver.MatchResult{})
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "Add a book")

	res = x.Execute(t.Context(), intent.Command{Intent: intent.Unknown, Message: "hi"}, resolver.MatchResult{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "not sure")

	gw := &stubGateway{reply: "  Hello there!  "}
	x = newExec(store, WithConversation(gw))
	res = x.Execute(t.Context(), intent.Command{Intent: intent.Unknown, Message: "hi"}, resolver.MatchResult{})
	assert.Equal(t, "Hello there!", res.Message)
	assert.Equal(t, "hi", gw.got)

	x = newExec(store, WithConversation(&stubGateway{err: errBoom}))
	res = x.Execute(t.Context(), intent.Command{Intent: intent.Unknown, Message: "hi"}, resolver.MatchResult{})
	assert.Contains(t, res.Message, "Add a book")

	assert.Zero(t, store.calls)
}

func TestStoreErrorsBecomeFailedResults(t *testing.T) {
	store := &brokenStore{}
	x := newExec(store)
	one := resolver.MatchResult{Matches: []models.Book{{ID: "1", Title: "Dune"}}, Status: resolver.ExactlyOne}

	res := x.Execute(t.Context(), intent.Command{Intent: intent.Delete}, one)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Something went wrong")

	res = x.Execute(t.Context(), intent.Command{Intent: intent.Add, Payload: models.Patch{Title: ptr("Dune")}}, resolver.MatchResult{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Something went wrong")
}

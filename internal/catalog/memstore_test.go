package catalog

import (
	"testing"

	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_CRUD(t *testing.T) {
	ctx := t.Context()
	s := NewMemStore()

	created, err := s.Create(ctx, models.Book{Title: "Dune", Authors: []string{"Frank Herbert"}, OpenLibraryID: "OL1W"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	// returned copies do not alias internal state
	got.Authors[0] = "someone else"
	again, _ := s.Get(ctx, created.ID)
	assert.Equal(t, "Frank Herbert", again.Authors[0])

	ok, err := s.ExistsByExternalID(ctx, "OL1W")
	require.NoError(t, err)
	assert.True(t, ok)

	got.Year = 1965
	require.NoError(t, s.Update(ctx, created.ID, got))
	again, _ = s.Get(ctx, created.ID)
	assert.Equal(t, 1965, again.Year)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)
}

func TestMemStore_ListKeepsInsertionOrder(t *testing.T) {
	s := NewMemStore(models.Book{Title: "A"}, models.Book{Title: "B"}, models.Book{Title: "C"})
	list, err := s.List(t.Context())
	require.NoError(t, err)
	titles := []string{list[0].Title, list[1].Title, list[2].Title}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
}

func TestMemStore_CreateRejectsEmptyTitle(t *testing.T) {
	_, err := NewMemStore().Create(t.Context(), models.Book{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalid)
}

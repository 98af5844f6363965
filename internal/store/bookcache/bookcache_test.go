package bookcache

import (
	"testing"
	"time"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_NilClientReturnsInner(t *testing.T) {
	inner := catalog.NewMemStore()
	assert.Same(t, inner, New(inner, nil, zap.NewNop()))
}

func TestStore_FailsOpenWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	inner := catalog.NewMemStore(models.Book{Title: "Dune"})
	s := New(inner, rdb, zap.NewNop())
	require.IsType(t, &Store{}, s)

	list, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)

	created, err := s.Create(t.Context(), models.Book{Title: "Emma"})
	require.NoError(t, err)

	list, err = s.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.Delete(t.Context(), created.ID))
	_, err = s.Get(t.Context(), created.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func newCached(t *testing.T, seed ...models.Book) (catalog.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(catalog.NewMemStore(seed...), rdb, zap.NewNop()), mr
}

func titles(t *testing.T, s catalog.Store) []string {
	t.Helper()
	list, err := s.List(t.Context())
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.Title)
	}
	return out
}

func TestStore_FirstWriteInvalidatesColdCache(t *testing.T) {
	s, mr := newCached(t, models.Book{Title: "Dune"})

	assert.Equal(t, []string{"Dune"}, titles(t, s))
	assert.True(t, mr.Exists("books:v0:all"), "list is cached")

	emma, err := s.Create(t.Context(), models.Book{Title: "Emma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Emma"}, titles(t, s))

	emma.Year = 1815
	require.NoError(t, s.Update(t.Context(), emma.ID, emma))
	list, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1815, list[1].Year)

	require.NoError(t, s.Delete(t.Context(), emma.ID))
	assert.Equal(t, []string{"Dune"}, titles(t, s))
}

func TestStore_WriteAfterFlushInvalidates(t *testing.T) {
	s, mr := newCached(t, models.Book{Title: "Dune"})

	_, err := s.Create(t.Context(), models.Book{Title: "Emma"})
	require.NoError(t, err)
	assert.Len(t, titles(t, s), 2)

	mr.FlushAll()
	assert.Len(t, titles(t, s), 2)
	_, err = s.Create(t.Context(), models.Book{Title: "Persuasion"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Emma", "Persuasion"}, titles(t, s))
}

func TestStore_ServesFromCacheBetweenWrites(t *testing.T) {
	s, mr := newCached(t, models.Book{Title: "Dune"})
	assert.Len(t, titles(t, s), 1)

	// a cached copy is returned without touching the inner store
	require.NoError(t, mr.Set("books:v0:all", `[{"id":"x","title":"Cached"}]`))
	assert.Equal(t, []string{"Cached"}, titles(t, s))
}

package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/google/uuid"
)

// MemStore keeps books in insertion order. Used by the CLI --memory mode and
// tests.
type MemStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Book
}

func NewMemStore(seed ...models.Book) *MemStore {
	s := &MemStore{byID: make(map[string]models.Book)}
	for _, b := range seed {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		s.put(b)
	}
	return s
}

func (s *MemStore) put(b models.Book) {
	if _, ok := s.byID[b.ID]; !ok {
		s.order = append(s.order, b.ID)
	}
	s.byID[b.ID] = clone(b)
}

func (s *MemStore) List(ctx context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Book, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.byID[id]))
	}
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return models.Book{}, ErrNotFound
	}
	return clone(b), nil
}

func (s *MemStore) Create(ctx context.Context, b models.Book) (models.Book, error) {
	if strings.TrimSpace(b.Title) == "" {
		return models.Book{}, ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	s.put(b)
	return clone(b), nil
}

func (s *MemStore) Update(ctx context.Context, id string, b models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	b.ID = id
	b.CreatedAt = prev.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	s.byID[id] = clone(b)
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemStore) ExistsByExternalID(ctx context.Context, openLibraryID string) (bool, error) {
	if openLibraryID == "" {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.byID {
		if b.OpenLibraryID == openLibraryID {
			return true, nil
		}
	}
	return false, nil
}

func clone(b models.Book) models.Book {
	b.Authors = append([]string{}, b.Authors...)
	b.Genres = append([]string{}, b.Genres...)
	b.Moods = append([]string{}, b.Moods...)
	return b
}

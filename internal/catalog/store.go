// Package catalog defines the book persistence contract shared by the
// assistant pipeline and the REST handlers.
package catalog

import (
	"context"
	"errors"

	"github.com/5w1tchy/shelfbot/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
)

// Store is the CRUD surface over books. Implementations decode multi-value
// fields to lists on load and encode them on write.
type Store interface {
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id string) (models.Book, error)
	Create(ctx context.Context, b models.Book) (models.Book, error)
	Update(ctx context.Context, id string, b models.Book) error
	Delete(ctx context.Context, id string) error
	ExistsByExternalID(ctx context.Context, openLibraryID string) (bool, error)
}

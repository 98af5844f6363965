// Package books serves the REST surface over the catalogue. It is thin:
// validation and existence checks only. Matching and duplicate rules for
// natural-language commands live in the executor.
package books

import (
	"context"
	"net/http"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/storage/s3"
	"go.uber.org/zap"
)

// Covers is the object-storage side of cover images.
type Covers interface {
	PresignUpload(ctx context.Context, bookID, contentType string) (s3.Upload, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type Handler struct {
	store  catalog.Store
	covers Covers
	log    *zap.Logger
}

// New returns a Handler. covers may be nil, which disables cover uploads.
func New(store catalog.Store, covers Covers, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, covers: covers, log: log.Named("books")}
}

// Register mounts the routes. Writes are wrapped in auth.
func (h *Handler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /books", h.list)
	mux.HandleFunc("GET /books/suggest", h.suggest)
	mux.HandleFunc("GET /books/{id}", h.get)
	mux.HandleFunc("GET /books/{id}/cover", h.coverRedirect)

	mux.Handle("POST /books", auth(http.HandlerFunc(h.create)))
	mux.Handle("PATCH /books/{id}", auth(http.HandlerFunc(h.patch)))
	mux.Handle("DELETE /books/{id}", auth(http.HandlerFunc(h.delete)))
	mux.Handle("POST /books/{id}/cover", auth(http.HandlerFunc(h.coverUpload)))
}

// dropCover removes a replaced or orphaned cover object. Failures only log.
func (h *Handler) dropCover(ctx context.Context, coverURL string) {
	if h.covers == nil || !s3.IsCoverKey(coverURL) {
		return
	}
	if err := h.covers.DeleteObject(ctx, coverURL); err != nil {
		h.log.Warn("cover cleanup failed", zap.String("key", coverURL), zap.Error(err))
	}
}

package books

import (
	"net/http"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/validate"
	"go.uber.org/zap"
)

// patch merges the provided fields. Absent fields keep their value; a list
// sent as [] clears it.
func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	var body models.Patch
	if !decodePatch(w, r, &body) {
		return
	}
	if body.Empty() {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "", "no fields to update")
		return
	}
	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		apperr.Write(w, r, apperr.Problem{
			Status:      http.StatusUnprocessableEntity,
			FieldErrors: []apperr.FieldError{{Field: "title", Code: "required", Message: "title can't be empty"}},
		})
		return
	}
	if err := validate.Struct(body); err != nil {
		apperr.Write(w, r, apperr.FromValidation(err))
		return
	}

	oldCover := book.CoverURL
	changes := body.Apply(&book)
	if len(changes) == 0 {
		httpx.OK(w, book)
		return
	}
	if err := h.store.Update(r.Context(), book.ID, book); apperr.HandleStoreError(w, r, h.log, err) {
		return
	}
	if book.CoverURL != oldCover {
		h.dropCover(r.Context(), oldCover)
	}
	h.log.Info("book patched", zap.String("id", book.ID), zap.Int("fields", len(changes)))
	httpx.OK(w, book)
}

package books

import (
	"errors"
	"net/http"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/validate"
	"go.uber.org/zap"
)

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body models.Patch
	if !decodePatch(w, r, &body) {
		return
	}
	if body.Title == nil || strings.TrimSpace(*body.Title) == "" {
		apperr.Write(w, r, apperr.Problem{
			Status:      http.StatusUnprocessableEntity,
			FieldErrors: []apperr.FieldError{{Field: "title", Code: "required", Message: "title is required"}},
		})
		return
	}
	if err := validate.Struct(body); err != nil {
		apperr.Write(w, r, apperr.FromValidation(err))
		return
	}

	book := body.NewBook()
	book.Title = strings.TrimSpace(book.Title)
	if book.OpenLibraryID != "" {
		taken, err := h.store.ExistsByExternalID(r.Context(), book.OpenLibraryID)
		if apperr.HandleStoreError(w, r, h.log, err) {
			return
		}
		if taken {
			apperr.Write(w, r, apperr.Problem{
				Status:      http.StatusConflict,
				FieldErrors: []apperr.FieldError{{Field: "openLibraryId", Code: "unique", Message: "value already exists"}},
			})
			return
		}
	}

	created, err := h.store.Create(r.Context(), book)
	if apperr.HandleStoreError(w, r, h.log, err) {
		return
	}
	h.log.Info("book created", zap.String("id", created.ID))
	w.Header().Set("Location", "/books/"+created.ID)
	httpx.Created(w, created)
}

// decodePatch writes 400/413 on malformed bodies.
func decodePatch(w http.ResponseWriter, r *http.Request, dst *models.Patch) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, httpx.ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		apperr.WriteStatus(w, r, status, "", err.Error())
		return false
	}
	return true
}

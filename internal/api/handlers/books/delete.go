package books

import (
	"net/http"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"go.uber.org/zap"
)

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), book.ID); apperr.HandleStoreError(w, r, h.log, err) {
		return
	}
	h.dropCover(r.Context(), book.CoverURL)
	h.log.Info("book deleted", zap.String("id", book.ID))
	w.WriteHeader(http.StatusNoContent)
}

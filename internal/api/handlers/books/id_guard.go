package books

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/models"
)

// Accepts any RFC 4122 variant, v1 through v8.
var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-8][0-9a-f]{3}-[ab89][0-9a-f]{3}-[0-9a-f]{12}$`)

func isUUID(s string) bool {
	return uuidRe.MatchString(strings.ToLower(s))
}

// loadBook resolves the {id} path value or writes a 404.
func (h *Handler) loadBook(w http.ResponseWriter, r *http.Request) (models.Book, bool) {
	id := r.PathValue("id")
	if !isUUID(id) {
		apperr.WriteStatus(w, r, http.StatusNotFound, "Not Found", "book not found")
		return models.Book{}, false
	}
	b, err := h.store.Get(r.Context(), id)
	if apperr.HandleStoreError(w, r, h.log, err) {
		return models.Book{}, false
	}
	return b, true
}

package books

import (
	"net/http"

	"github.com/5w1tchy/shelfbot/internal/api/httpx"
)

// get also answers HEAD; the mux routes HEAD to GET patterns.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	httpx.OK(w, b)
}

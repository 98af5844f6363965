package books

import (
	"net/http"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/5w1tchy/shelfbot/internal/resolver"
	"github.com/5w1tchy/shelfbot/internal/validate"
)

type listPage struct {
	Items  []models.Book `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// list filters with the same rules the assistant uses for search:
// title is a substring match, list fields match any token.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	crit, err := criteriaFromQuery(q.Get)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	all, err := h.store.List(r.Context())
	if apperr.HandleStoreError(w, r, h.log, err) {
		return
	}
	books := all
	if !crit.Empty() {
		books = resolver.Resolve(intent.Command{Intent: intent.Search, Criteria: crit}, all).Matches
	}

	limit, offset := validate.ClampLimitOffset(q.Get("limit"), q.Get("offset"), 50, 200)
	page := listPage{Items: []models.Book{}, Total: len(books), Limit: limit, Offset: offset}
	if offset < len(books) {
		page.Items = books[offset:min(offset+limit, len(books))]
	}
	httpx.OK(w, page)
}

func criteriaFromQuery(get func(string) string) (intent.Criteria, error) {
	c := intent.Criteria{
		Title:   strings.TrimSpace(get("title")),
		Query:   strings.TrimSpace(get("q")),
		Authors: models.SplitList(get("author")),
		Genres:  models.SplitList(get("genre")),
		Moods:   models.SplitList(get("mood")),
	}
	c.TitlePartial = c.Title != ""
	var err error
	if c.Year, err = validate.ParseYear("year", get("year")); err != nil {
		return c, err
	}
	if c.YearAfter, err = validate.ParseYear("after", get("after")); err != nil {
		return c, err
	}
	if c.YearBefore, err = validate.ParseYear("before", get("before")); err != nil {
		return c, err
	}
	return c, nil
}

package books

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"github.com/5w1tchy/shelfbot/internal/models"
)

type SuggestItem struct {
	Type  string  `json:"type"` // "book" | "author"
	Score float64 `json:"-"`

	Label string `json:"label"`
	URL   string `json:"url,omitempty"`

	// Book fields
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`

	// Author fields
	Name       string `json:"name,omitempty"`
	BooksCount int    `json:"booksCount,omitempty"`
}

// suggest powers title/author autocomplete. Prefix hits rank above
// substring hits; shorter labels win ties.
func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	q := models.Fold(r.URL.Query().Get("q"))
	if len([]rune(q)) < 2 {
		httpx.OK(w, []SuggestItem{})
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 20 {
			limit = n
		}
	}

	all, err := h.store.List(r.Context())
	if apperr.HandleStoreError(w, r, h.log, err) {
		return
	}

	var items []SuggestItem
	authors := map[string]*SuggestItem{}
	for _, b := range all {
		if s := score(q, b.Title); s > 0 {
			label := b.Title
			if len(b.Authors) > 0 {
				label += " by " + models.JoinList(b.Authors)
			}
			items = append(items, SuggestItem{
				Type: "book", Score: s, Label: label, URL: "/books/" + b.ID,
				ID: b.ID, Title: b.Title,
			})
		}
		for _, a := range b.Authors {
			s := score(q, a)
			if s == 0 {
				continue
			}
			k := models.Fold(a)
			if it, ok := authors[k]; ok {
				it.BooksCount++
				continue
			}
			authors[k] = &SuggestItem{Type: "author", Score: s, Label: a, Name: a, BooksCount: 1,
				URL: "/books?author=" + url.QueryEscape(a)}
		}
	}
	for _, it := range authors {
		items = append(items, *it)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if len(items[i].Label) != len(items[j].Label) {
			return len(items[i].Label) < len(items[j].Label)
		}
		return items[i].Label < items[j].Label
	})
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []SuggestItem{}
	}
	httpx.OK(w, items)
}

func score(q, s string) float64 {
	f := models.Fold(s)
	switch {
	case f == q:
		return 1
	case strings.HasPrefix(f, q):
		return 0.8
	case strings.Contains(f, " "+q):
		return 0.6 // word start
	case strings.Contains(f, q):
		return 0.4
	}
	return 0
}

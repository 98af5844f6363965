package executor

import (
	"fmt"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/models"
)

const maxCandidates = 10

var labels = map[string]string{
	"title":         "title",
	"authors":       "author",
	"genres":        "genre",
	"moods":         "mood",
	"year":          "year",
	"coverUrl":      "cover URL",
	"openLibraryId": "Open Library ID",
	"description":   "description",
	"bookUrl":       "link",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

func fieldLabels() []string {
	out := make([]string, 0, len(models.Fields))
	for _, f := range models.Fields {
		out = append(out, label(f))
	}
	return out
}

// describe renders `"Dune" by Frank Herbert (1965)`.
func describe(b models.Book) string {
	s := fmt.Sprintf("%q", b.Title)
	if len(b.Authors) > 0 {
		s += " by " + strings.Join(b.Authors, ", ")
	}
	if b.Year != 0 {
		s += fmt.Sprintf(" (%d)", b.Year)
	}
	return s
}

func numbered(books []models.Book, limit int) string {
	var sb strings.Builder
	for i, b := range books {
		if limit > 0 && i == limit {
			fmt.Fprintf(&sb, "\n...and %d more", len(books)-limit)
			break
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, describe(b))
	}
	return sb.String()
}

func disambiguation(books []models.Book, verb string) string {
	return fmt.Sprintf("I found %s matching that description. Which one do you want to %s?\n%s",
		plural(len(books)), verb, numbered(books, maxCandidates))
}

func plural(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Package resolver locates the books a command refers to.
package resolver

import (
	"slices"
	"strings"
	"unicode"

	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/models"
)

type Status string

const (
	None       Status = "none"
	ExactlyOne Status = "exactly_one"
	Multiple   Status = "multiple"
)

type MatchResult struct {
	Matches []models.Book
	Status  Status
}

func result(m []models.Book) MatchResult {
	switch len(m) {
	case 0:
		return MatchResult{Status: None}
	case 1:
		return MatchResult{Matches: m, Status: ExactlyOne}
	default:
		return MatchResult{Matches: m, Status: Multiple}
	}
}

// partialHints switch title matching from equality to containment when they
// appear as whole words in the user's message. "start" and "begin" ask for a
// prefix and also match their inflections (starts, beginning).
var (
	hintStems    = []string{"start", "begin"}
	prefixHints  = []string{"start", "begin"}
	partialHints = []string{"start", "begin", "having", "with", "title"}
)

// Resolve filters catalog by cmd.Criteria. Every non-empty criterion must
// hold. Empty criteria select everything for Search and nothing otherwise.
func Resolve(cmd intent.Command, catalog []models.Book) MatchResult {
	c := cmd.Criteria
	if c.Empty() {
		if cmd.Intent == intent.Search || cmd.Intent == intent.ListAll {
			return result(catalog)
		}
		return result(nil)
	}
	if isListAllQuery(c.Query) && c.Title == "" && c.ID == "" {
		// "all" short-circuits the query but other filters still apply
		c.Query = ""
		if c.Empty() {
			return result(catalog)
		}
	}

	msg := models.Fold(cmd.Message)
	partial := c.TitlePartial || containsAny(msg, partialHints)
	prefix := containsAny(msg, prefixHints)

	m := matcher{
		title:    models.Fold(c.Title),
		partial:  partial,
		prefix:   prefix,
		authors:  foldAll(c.Authors),
		genres:   foldAll(c.Genres),
		moods:    foldAll(c.Moods),
		query:    models.Fold(c.Query),
		criteria: c,
	}

	var out []models.Book
	for _, b := range catalog {
		if m.match(b) {
			out = append(out, b)
		}
	}

	if len(out) > 1 && m.title != "" && !(cmd.Intent == intent.Search && partial) {
		if exact := exactTitle(out, m.title); exact != nil {
			out = []models.Book{*exact}
		}
	}
	return result(out)
}

type matcher struct {
	title                  string
	partial, prefix        bool
	authors, genres, moods []string
	query                  string
	criteria               intent.Criteria
}

func (m matcher) match(b models.Book) bool {
	c := m.criteria
	if c.ID != "" && b.ID != c.ID {
		return false
	}
	if m.title != "" && !m.titleMatches(models.Fold(b.Title)) {
		return false
	}
	if len(m.authors) > 0 && !anyToken(m.authors, b.Authors) {
		return false
	}
	if len(m.genres) > 0 && !anyToken(m.genres, b.Genres) {
		return false
	}
	if len(m.moods) > 0 && !anyToken(m.moods, b.Moods) {
		return false
	}
	if c.Year != 0 && b.Year != c.Year {
		return false
	}
	if c.YearAfter != 0 && !(b.Year > c.YearAfter) {
		return false
	}
	if c.YearBefore != 0 && !(b.Year != 0 && b.Year < c.YearBefore) {
		return false
	}
	if m.query != "" && !queryMatches(m.query, b) {
		return false
	}
	return true
}

func (m matcher) titleMatches(stored string) bool {
	switch {
	case !m.partial:
		return stored == m.title
	case m.prefix:
		return strings.HasPrefix(stored, m.title)
	default:
		return strings.Contains(stored, m.title)
	}
}

// anyToken reports whether some wanted token equals or is contained in some
// stored token.
func anyToken(wanted []string, stored []string) bool {
	for tok := range models.Tokens(stored) {
		for _, w := range wanted {
			if strings.Contains(tok, w) {
				return true
			}
		}
	}
	return false
}

func queryMatches(q string, b models.Book) bool {
	if strings.Contains(models.Fold(b.Title), q) {
		return true
	}
	for tok := range models.Tokens(b.Authors) {
		if strings.Contains(tok, q) {
			return true
		}
	}
	for tok := range models.Tokens(b.Genres) {
		if strings.Contains(tok, q) {
			return true
		}
	}
	return false
}

func exactTitle(books []models.Book, folded string) *models.Book {
	var hit *models.Book
	for i := range books {
		if models.Fold(books[i].Title) == folded {
			if hit != nil {
				return nil
			}
			hit = &books[i]
		}
	}
	return hit
}

func isListAllQuery(q string) bool {
	switch models.Fold(q) {
	case "all", "list all", "everything", "*":
		return true
	}
	return false
}

func containsAny(msg string, words []string) bool {
	for _, w := range strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, h := range words {
			if w == h || (slices.Contains(hintStems, h) && strings.HasPrefix(w, h)) {
				return true
			}
		}
	}
	return false
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := models.Fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

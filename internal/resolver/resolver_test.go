package resolver

import (
	"testing"

	"github.com/5w1tchy/shelfbot/internal/intent"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/stretchr/testify/assert"
)

var shelf = []models.Book{
	{ID: "1", Title: "Dune", Authors: []string{"Frank Herbert"}, Genres: []string{"Sci-Fi", "Classic"}, Moods: []string{"epic"}, Year: 1965},
	{ID: "2", Title: "Dune Messiah", Authors: []string{"Frank Herbert"}, Genres: []string{"Sci-Fi"}, Year: 1969},
	{ID: "3", Title: "Cien años de soledad", Authors: []string{"Gabriel García Márquez"}, Genres: []string{"Magical Realism"}, Year: 1967},
	{ID: "4", Title: "Emma", Authors: []string{"Jane Austen"}, Genres: []string{"Romance", "Classic"}, Moods: []string{"cozy"}, Year: 1815},
	{ID: "5", Title: "The Shining", Authors: []string{"Stephen King"}, Genres: []string{"Horror"}, Year: 1977},
	{ID: "6", Title: "Untitled Draft", Authors: []string{"Anon"}},
}

func ids(r MatchResult) []string {
	out := []string{}
	for _, b := range r.Matches {
		out = append(out, b.ID)
	}
	return out
}

func cmd(in intent.Intent, c intent.Criteria, msg string) intent.Command {
	return intent.Command{Intent: in, Criteria: c, Message: msg}
}

func TestResolve_ExactTitleIsFoldedEquality(t *testing.T) {
	r := Resolve(cmd(intent.Delete, intent.Criteria{Title: "cien anos DE soledad"}, "delete it"), shelf)
	assert.Equal(t, ExactlyOne, r.Status)
	assert.Equal(t, []string{"3"}, ids(r))

	r = Resolve(cmd(intent.Delete, intent.Criteria{Title: "Messiah"}, "delete Messiah"), shelf)
	assert.Equal(t, None, r.Status)
}

func TestResolve_PartialTitleModes(t *testing.T) {
	r := Resolve(cmd(intent.Search, intent.Criteria{Title: "messiah"}, "books with messiah in the title"), shelf)
	assert.Equal(t, []string{"2"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{Title: "the"}, "books that start with The"), shelf)
	assert.Equal(t, []string{"5"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{Title: "draft", TitlePartial: true}, ""), shelf)
	assert.Equal(t, []string{"6"}, ids(r))
}

func TestResolve_HintsAreWholeWords(t *testing.T) {
	for _, msg := range []string{
		"delete messiah without asking",
		"remove messiah within reason",
		"drop messiah from my titles",
	} {
		r := Resolve(cmd(intent.Delete, intent.Criteria{Title: "messiah"}, msg), shelf)
		assert.Equal(t, None, r.Status, msg)
	}

	r := Resolve(cmd(intent.Search, intent.Criteria{Title: "dune"}, "titles beginning with dune"), shelf)
	assert.Equal(t, []string{"1", "2"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{Title: "messiah"}, "title: messiah"), shelf)
	assert.Equal(t, []string{"2"}, ids(r))
}

func TestResolve_ExactTitleTieBreak(t *testing.T) {
	c := intent.Criteria{Title: "Dune", TitlePartial: true}

	r := Resolve(cmd(intent.Update, c, "update dune"), shelf)
	assert.Equal(t, ExactlyOne, r.Status)
	assert.Equal(t, []string{"1"}, ids(r))

	// explicit partial search keeps every candidate
	r = Resolve(cmd(intent.Search, c, "books with dune in the title"), shelf)
	assert.Equal(t, Multiple, r.Status)
	assert.Equal(t, []string{"1", "2"}, ids(r))
}

func TestResolve_MultiValueTokens(t *testing.T) {
	r := Resolve(cmd(intent.Search, intent.Criteria{Authors: []string{"herbert"}}, ""), shelf)
	assert.Equal(t, []string{"1", "2"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{Authors: []string{"Garcia Marquez"}}, ""), shelf)
	assert.Equal(t, []string{"3"}, ids(r))

	// OR within a field
	r = Resolve(cmd(intent.Search, intent.Criteria{Genres: []string{"horror", "romance"}}, ""), shelf)
	assert.Equal(t, []string{"4", "5"}, ids(r))

	// AND across fields
	r = Resolve(cmd(intent.Search, intent.Criteria{Genres: []string{"classic"}, Moods: []string{"cozy"}}, ""), shelf)
	assert.Equal(t, []string{"4"}, ids(r))
}

func TestResolve_YearBoundsAreStrict(t *testing.T) {
	r := Resolve(cmd(intent.Search, intent.Criteria{YearAfter: 1965}, ""), shelf)
	assert.Equal(t, []string{"2", "3", "5"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{YearAfter: 1965, YearBefore: 1969}, ""), shelf)
	assert.Equal(t, []string{"3"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{YearBefore: 1900}, ""), shelf)
	assert.Equal(t, []string{"4"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{Year: 1977}, ""), shelf)
	assert.Equal(t, []string{"5"}, ids(r))
}

func TestResolve_Query(t *testing.T) {
	r := Resolve(cmd(intent.Search, intent.Criteria{Query: "king"}, ""), shelf)
	assert.Equal(t, []string{"5"}, ids(r))

	r = Resolve(cmd(intent.Search, intent.Criteria{Query: "classic"}, ""), shelf)
	assert.Equal(t, []string{"1", "4"}, ids(r))

	for _, q := range []string{"all", "List All"} {
		r = Resolve(cmd(intent.Search, intent.Criteria{Query: q}, ""), shelf)
		assert.Len(t, r.Matches, len(shelf), q)
	}
}

func TestResolve_EmptyCriteria(t *testing.T) {
	assert.Len(t, Resolve(cmd(intent.Search, intent.Criteria{}, ""), shelf).Matches, len(shelf))
	for _, in := range []intent.Intent{intent.Update, intent.Delete, intent.GetField, intent.BookDetails} {
		assert.Equal(t, None, Resolve(cmd(in, intent.Criteria{}, ""), shelf).Status, in)
	}
}

func TestResolve_ByID(t *testing.T) {
	r := Resolve(cmd(intent.Delete, intent.Criteria{ID: "4"}, ""), shelf)
	assert.Equal(t, ExactlyOne, r.Status)
	assert.Equal(t, "Emma", r.Matches[0].Title)
}

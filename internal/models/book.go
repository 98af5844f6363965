package models

import (
	"strconv"
	"time"
)

// Book is a catalogue entry. Authors, Genres and Moods are stored as
// comma-separated text and decoded to ordered, de-duplicated lists on load.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	Genres        []string  `json:"genres"`
	Moods         []string  `json:"moods"`
	Year          int       `json:"year,omitempty"`
	CoverURL      string    `json:"coverUrl,omitempty"`
	OpenLibraryID string    `json:"openLibraryId,omitempty"`
	Description   string    `json:"description,omitempty"`
	BookURL       string    `json:"bookUrl,omitempty"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Patch carries a partial book. Nil means "not provided".
type Patch struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Authors       []string `json:"authors,omitempty" validate:"omitempty,max=20,dive,min=1,max=200"`
	Genres        []string `json:"genres,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
	Moods         []string `json:"moods,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
	Year          *int     `json:"year,omitempty" validate:"omitempty,bookyear"`
	CoverURL      *string  `json:"coverUrl,omitempty" validate:"omitempty,max=2048"`
	OpenLibraryID *string  `json:"openLibraryId,omitempty" validate:"omitempty,max=64"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=10000"`
	BookURL       *string  `json:"bookUrl,omitempty" validate:"omitempty,max=2048"`
}

// Empty reports whether no field is set.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Authors == nil && p.Genres == nil && p.Moods == nil &&
		p.Year == nil && p.CoverURL == nil && p.OpenLibraryID == nil &&
		p.Description == nil && p.BookURL == nil
}

// Change describes one field touched by Apply.
type Change struct {
	Field string
	Old   string
	New   string
}

// Apply merges p into b and returns the fields whose value actually changed.
// Fields absent from p keep their prior value.
func (p Patch) Apply(b *Book) []Change {
	var out []Change
	setStr := func(field string, dst *string, v *string) {
		if v == nil || *v == *dst {
			return
		}
		out = append(out, Change{Field: field, Old: *dst, New: *v})
		*dst = *v
	}
	setList := func(field string, dst *[]string, v []string) {
		if v == nil {
			return
		}
		v = Dedup(v)
		if JoinList(v) == JoinList(*dst) {
			return
		}
		out = append(out, Change{Field: field, Old: JoinList(*dst), New: JoinList(v)})
		*dst = v
	}

	if p.Title != nil {
		t := *p.Title
		setStr("title", &b.Title, &t)
	}
	setList("authors", &b.Authors, p.Authors)
	setList("genres", &b.Genres, p.Genres)
	setList("moods", &b.Moods, p.Moods)
	if p.Year != nil && *p.Year != b.Year {
		out = append(out, Change{Field: "year", Old: yearString(b.Year), New: yearString(*p.Year)})
		b.Year = *p.Year
	}
	setStr("coverUrl", &b.CoverURL, p.CoverURL)
	setStr("openLibraryId", &b.OpenLibraryID, p.OpenLibraryID)
	setStr("description", &b.Description, p.Description)
	setStr("bookUrl", &b.BookURL, p.BookURL)
	return out
}

// NewBook builds a Book from an add payload.
func (p Patch) NewBook() Book {
	var b Book
	p.Apply(&b)
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if b.Genres == nil {
		b.Genres = []string{}
	}
	if b.Moods == nil {
		b.Moods = []string{}
	}
	return b
}

// Fields lists the attributes a Book exposes to commands.
var Fields = []string{
	"title", "authors", "genres", "moods", "year",
	"coverUrl", "openLibraryId", "description", "bookUrl",
}

// FieldValue renders one attribute of b. ok is false for unknown names.
func (b Book) FieldValue(field string) (val string, ok bool) {
	switch field {
	case "id":
		return b.ID, true
	case "title":
		return b.Title, true
	case "authors":
		return JoinList(b.Authors), true
	case "genres":
		return JoinList(b.Genres), true
	case "moods":
		return JoinList(b.Moods), true
	case "year":
		return yearString(b.Year), true
	case "coverUrl":
		return b.CoverURL, true
	case "openLibraryId":
		return b.OpenLibraryID, true
	case "description":
		return b.Description, true
	case "bookUrl":
		return b.BookURL, true
	}
	return "", false
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

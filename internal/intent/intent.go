// Package intent turns raw model output into typed catalogue commands.
package intent

import (
	"strings"

	"github.com/5w1tchy/shelfbot/internal/models"
)

// Intent is the closed set of operations a command may request.
type Intent string

const (
	Add            Intent = "add"
	Update         Intent = "update"
	Delete         Intent = "delete"
	Search         Intent = "search"
	GetField       Intent = "get_field"
	GetDescription Intent = "get_description"
	BookDetails    Intent = "book_details"
	ListAll        Intent = "list_all"
	Help           Intent = "help"
	Unknown        Intent = "unknown"
)

// All returns every Intent value.
func All() []Intent {
	return []Intent{Add, Update, Delete, Search, GetField, GetDescription, BookDetails, ListAll, Help, Unknown}
}

var synonyms = map[string]Intent{
	"add": Add, "create": Add, "insert": Add, "new": Add, "add_book": Add,
	"update": Update, "edit": Update, "modify": Update, "change": Update, "update_book": Update,
	"delete": Delete, "remove": Delete, "destroy": Delete, "delete_book": Delete,
	"search": Search, "find": Search, "lookup": Search, "filter": Search, "query": Search,
	"get_field": GetField, "getfield": GetField, "field": GetField,
	"get_description": GetDescription, "description": GetDescription, "describe": GetDescription,
	"book_details": BookDetails, "details": BookDetails, "get_details": BookDetails, "info": BookDetails, "show": BookDetails,
	"list_all": ListAll, "list": ListAll, "listall": ListAll, "list_books": ListAll, "all": ListAll,
	"help": Help,
	"unknown": Unknown, "chat": Unknown, "conversational": Unknown, "none": Unknown,
}

// Parse maps a loosely spelled intent name onto the closed set.
func Parse(s string) (Intent, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("-", "_", " ", "_").Replace(k)
	in, ok := synonyms[k]
	return in, ok
}

// needsData reports whether the intent is meaningless without a payload.
func (i Intent) needsData() bool {
	return i == Add || i == Update
}

// Criteria locate existing books. Zero values mean "not constrained".
type Criteria struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title,omitempty"`
	TitlePartial bool     `json:"titlePartial,omitempty"`
	Authors      []string `json:"authors,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Moods        []string `json:"moods,omitempty"`
	Year         int      `json:"year,omitempty"`
	YearAfter    int      `json:"yearAfter,omitempty"`
	YearBefore   int      `json:"yearBefore,omitempty"`
	Query        string   `json:"query,omitempty"`
}

func (c Criteria) Empty() bool {
	return c.ID == "" && c.Title == "" && len(c.Authors) == 0 && len(c.Genres) == 0 &&
		len(c.Moods) == 0 && c.Year == 0 && c.YearAfter == 0 && c.YearBefore == 0 && c.Query == ""
}

// Command is one normalized instruction.
type Command struct {
	Intent   Intent       `json:"intent"`
	Criteria Criteria     `json:"criteria"`
	Payload  models.Patch `json:"data"`
	Field    string       `json:"field,omitempty"`
	// Message is the user's original text.
	Message string `json:"-"`
}

func unknown(msg string) Command {
	return Command{Intent: Unknown, Message: msg}
}

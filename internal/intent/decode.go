package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/tidwall/gjson"
)

var (
	errNoIntent = errors.New("missing or unrecognised intent")
	errNoData   = errors.New("intent requires data")
)

// decodeStrict accepts only the canonical shape.
func decodeStrict(raw json.RawMessage) (Command, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Command{}, err
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return Command{}, err
	}
	var w struct {
		Intent   Intent       `json:"intent"`
		Criteria Criteria     `json:"criteria"`
		Data     models.Patch `json:"data"`
		Field    string       `json:"field"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Command{}, err
	}
	cmd := Command{Intent: w.Intent, Criteria: w.Criteria, Payload: w.Data, Field: w.Field}
	return tidy(cmd)
}

var (
	dataKeys     = []string{"data", "payload", "fieldsToUpdate", "fields_to_update", "updates", "update", "book", "fields", "changes"}
	criteriaKeys = []string{"criteria", "search", "filter", "filters", "where", "match", "target"}
	intentKeys   = []string{"intent", "action", "command", "operation", "type"}
)

// decodePermissive tolerates aliases, singular keys, scalar-or-list values and
// flattened book fields.
func decodePermissive(raw json.RawMessage) (Command, error) {
	if !gjson.ValidBytes(raw) {
		return Command{}, errors.New("invalid json")
	}
	el := gjson.ParseBytes(raw)
	if !el.IsObject() {
		return Command{}, fmt.Errorf("element is %s, not an object", el.Type)
	}

	in, ok := Parse(firstString(el, intentKeys...))
	if !ok {
		return Command{}, errNoIntent
	}
	cmd := Command{Intent: in}
	cmd.Field = firstString(el, "field", "attribute", "property", "fieldName")

	dataObj, hasData := firstObject(el, dataKeys...)
	critObj, hasCrit := firstObject(el, criteriaKeys...)

	switch {
	case hasData:
		cmd.Payload = patchFrom(dataObj)
	case in == Add:
		cmd.Payload = patchFrom(el)
	}
	if hasCrit {
		cmd.Criteria = criteriaFrom(critObj)
	} else if in != Add {
		cmd.Criteria = criteriaFrom(el)
	}
	if q := el.Get("query"); q.Type == gjson.String && cmd.Criteria.Query == "" {
		cmd.Criteria.Query = strings.TrimSpace(q.String())
	}
	return tidy(cmd)
}

func patchFrom(obj gjson.Result) models.Patch {
	var p models.Patch
	if s, ok := optString(obj, "title", "name", "bookTitle", "book_title"); ok && s != "" {
		p.Title = &s
	}
	p.Authors = listOf(obj, "authors", "author", "writer", "writers")
	p.Genres = listOf(obj, "genres", "genre", "categories", "category", "tags")
	p.Moods = listOf(obj, "moods", "mood")
	if y, ok := yearOf(obj, "year", "publishedYear", "published_year", "publicationYear"); ok {
		p.Year = &y
	}
	if s, ok := optString(obj, "coverUrl", "cover_url", "cover", "coverURL"); ok {
		p.CoverURL = &s
	}
	if s, ok := optString(obj, "openLibraryId", "open_library_id", "olid", "openLibraryID"); ok {
		p.OpenLibraryID = &s
	}
	if s, ok := optString(obj, "description", "summary", "synopsis"); ok {
		p.Description = &s
	}
	if s, ok := optString(obj, "bookUrl", "book_url", "url", "link"); ok {
		p.BookURL = &s
	}
	return p
}

func criteriaFrom(obj gjson.Result) Criteria {
	var c Criteria
	c.ID = firstString(obj, "id", "bookId", "book_id")
	c.Title = firstString(obj, "title", "name", "bookTitle", "book_title")
	c.TitlePartial = obj.Get("titlePartial").Bool() || obj.Get("partial").Bool()
	c.Authors = listOf(obj, "authors", "author", "writer")
	c.Genres = listOf(obj, "genres", "genre", "category", "categories")
	c.Moods = listOf(obj, "moods", "mood")
	c.Year, _ = yearOf(obj, "year")
	c.YearAfter, _ = yearOf(obj, "yearAfter", "year_after", "after", "publishedAfter", "range.after", "range.from")
	c.YearBefore, _ = yearOf(obj, "yearBefore", "year_before", "before", "publishedBefore", "range.before", "range.to")
	c.Query = firstString(obj, "query", "q", "keyword", "keywords", "text")
	return c
}

// tidy trims values, canonicalises the field name and rejects commands that
// cannot be acted on.
func tidy(cmd Command) (Command, error) {
	if _, ok := Parse(string(cmd.Intent)); !ok {
		return Command{}, errNoIntent
	}
	c := &cmd.Criteria
	c.ID = strings.TrimSpace(c.ID)
	c.Title = strings.TrimSpace(c.Title)
	c.Query = strings.TrimSpace(c.Query)
	c.Authors = nilIfEmpty(models.Dedup(c.Authors))
	c.Genres = nilIfEmpty(models.Dedup(c.Genres))
	c.Moods = nilIfEmpty(models.Dedup(c.Moods))

	p := &cmd.Payload
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
	if p.Authors != nil {
		p.Authors = models.Dedup(p.Authors)
	}
	if p.Genres != nil {
		p.Genres = models.Dedup(p.Genres)
	}
	if p.Moods != nil {
		p.Moods = models.Dedup(p.Moods)
	}
	cmd.Field = CanonicalField(cmd.Field)

	if cmd.Intent.needsData() && p.Empty() {
		return Command{}, errNoData
	}
	return cmd, nil
}

var fieldAliases = map[string]string{
	"author": "authors", "writer": "authors",
	"genre": "genres", "category": "genres", "categories": "genres",
	"mood": "moods",
	"cover": "coverUrl", "coverurl": "coverUrl", "cover_url": "coverUrl",
	"openlibraryid": "openLibraryId", "open_library_id": "openLibraryId", "olid": "openLibraryId",
	"summary": "description", "synopsis": "description",
	"url": "bookUrl", "bookurl": "bookUrl", "book_url": "bookUrl", "link": "bookUrl",
	"published": "year", "publication_year": "year",
}

// CanonicalField maps loose attribute names onto models.Fields spelling.
func CanonicalField(f string) string {
	f = strings.TrimSpace(f)
	if f == "" {
		return ""
	}
	for _, known := range models.Fields {
		if strings.EqualFold(f, known) {
			return known
		}
	}
	if v, ok := fieldAliases[strings.ToLower(f)]; ok {
		return v
	}
	return f
}

// --- gjson helpers ---

func firstString(obj gjson.Result, keys ...string) string {
	s, _ := optString(obj, keys...)
	return strings.TrimSpace(s)
}

func optString(obj gjson.Result, keys ...string) (string, bool) {
	for _, k := range keys {
		v := obj.Get(k)
		switch v.Type {
		case gjson.String:
			return strings.TrimSpace(v.String()), true
		case gjson.Number:
			return v.Raw, true
		}
	}
	return "", false
}

func firstObject(obj gjson.Result, keys ...string) (gjson.Result, bool) {
	for _, k := range keys {
		if v := obj.Get(k); v.IsObject() {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// listOf accepts "a, b", ["a","b"] or a mix across singular/plural keys.
func listOf(obj gjson.Result, keys ...string) []string {
	var out []string
	found := false
	for _, k := range keys {
		v := obj.Get(k)
		switch {
		case v.IsArray():
			found = true
			for _, e := range v.Array() {
				if e.Type == gjson.String {
					out = append(out, e.String())
				}
			}
		case v.Type == gjson.String:
			found = true
			out = append(out, models.SplitList(v.String())...)
		}
	}
	if !found {
		return nil
	}
	return models.Dedup(out)
}

// yearOf accepts 1965, "1965" or "1965-01-01".
func yearOf(obj gjson.Result, keys ...string) (int, bool) {
	for _, k := range keys {
		v := obj.Get(k)
		switch v.Type {
		case gjson.Number:
			return int(v.Int()), true
		case gjson.String:
			s := strings.TrimSpace(v.String())
			if len(s) >= 4 {
				if n, err := strconv.Atoi(s[:4]); err == nil {
					return n, true
				}
			}
			if n, err := strconv.Atoi(s); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

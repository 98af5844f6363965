package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/tidwall/gjson"
)

var (
	titleRe   = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	authorRe  = regexp.MustCompile(`"authors?"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	authorsRe = regexp.MustCompile(`"authors?"\s*:\s*\[([^\]]*)\]`)
	quotedRe  = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	yearRe    = regexp.MustCompile(`"year"\s*:\s*"?(\d{3,4})`)
	updatesRe = regexp.MustCompile(`"fieldsToUpdate"\s*:\s*(\{[^{}]*\})`)
	intentRe  = regexp.MustCompile(`"intent"\s*:\s*"([A-Za-z_ -]+)"`)
)

// salvage scans text that would not decode for recognisable key/value pairs.
// ok is false when nothing usable was found.
func salvage(raw, userMessage string) (Command, bool) {
	var (
		title   string
		authors []string
		year    int
		found   bool
	)
	if m := titleRe.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(unescape(m[1]))
		found = title != ""
	}
	if m := authorsRe.FindStringSubmatch(raw); m != nil {
		for _, q := range quotedRe.FindAllStringSubmatch(m[1], -1) {
			authors = append(authors, unescape(q[1]))
		}
	} else if m := authorRe.FindStringSubmatch(raw); m != nil {
		authors = models.SplitList(unescape(m[1]))
	}
	authors = nilIfEmpty(models.Dedup(authors))
	found = found || len(authors) > 0
	if m := yearRe.FindStringSubmatch(raw); m != nil {
		year, _ = strconv.Atoi(m[1])
		found = found || year > 0
	}

	var updates *models.Patch
	if m := updatesRe.FindStringSubmatch(raw); m != nil && gjson.Valid(m[1]) {
		p := patchFrom(gjson.Parse(m[1]))
		if !p.Empty() {
			updates = &p
			found = true
		}
	}
	if !found {
		return Command{}, false
	}

	// The user's wording decides. The model's intent only fills in when the
	// message carries no keyword at all.
	in, matched := guessIntent(userMessage)
	if !matched {
		if m := intentRe.FindStringSubmatch(raw); m != nil {
			if parsed, ok := Parse(m[1]); ok {
				in = parsed
			}
		}
	}

	cmd := Command{Intent: in}
	switch in {
	case Add:
		p := models.Patch{Authors: authors}
		if title != "" {
			p.Title = &title
		}
		if year > 0 {
			p.Year = &year
		}
		cmd.Payload = p
	case Update:
		cmd.Criteria = Criteria{Title: title, Authors: authors}
		if updates != nil {
			cmd.Payload = *updates
		} else if year > 0 {
			cmd.Payload = models.Patch{Year: &year}
		}
	default:
		cmd.Criteria = Criteria{Title: title, Authors: authors, Year: year}
	}
	out, err := tidy(cmd)
	if err != nil {
		return Command{}, false
	}
	return out, true
}

var keywordOrder = []struct {
	in    Intent
	words []string
}{
	{Delete, []string{"delete", "remove"}},
	{Update, []string{"update", "change", "modify", "edit"}},
	{Add, []string{"add", "create"}},
	{Help, []string{"help", "how"}},
}

// guessIntent infers an intent from the user's wording. The first matching
// group wins. ok is false when no keyword was found and search is the default.
func guessIntent(userMessage string) (in Intent, ok bool) {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(models.Fold(userMessage), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	}) {
		words[w] = struct{}{}
	}
	for _, g := range keywordOrder {
		for _, w := range g.words {
			if _, ok := words[w]; ok {
				return g.in, true
			}
		}
	}
	return Search, false
}

func unescape(s string) string {
	if v, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return v
	}
	return s
}

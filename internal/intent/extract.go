package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```[a-zA-Z]*")

// extract pulls candidate command elements out of free-form text. Arrays are
// flattened so the caller always sees a list of element payloads.
func extract(raw string) []json.RawMessage {
	text := fenceRe.ReplaceAllString(raw, "")

	start := strings.IndexAny(text, "[{")
	end := strings.LastIndexAny(text, "]}")
	if start < 0 || end < start {
		return nil
	}

	values, err := decodeStream(text[start : end+1])
	if err != nil {
		values = scanBalanced(text[start:])
	}

	var out []json.RawMessage
	for _, v := range values {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '[' {
			var elems []json.RawMessage
			if json.Unmarshal(v, &elems) == nil {
				out = append(out, elems...)
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeStream reads back-to-back JSON values. Any trailing garbage fails the
// whole slice so the brace scan can take over.
func decodeStream(s string) ([]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	var out []json.RawMessage
	for {
		var v json.RawMessage
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return out, nil
}

// scanBalanced walks s tracking bracket depth outside string literals and
// returns every top-level balanced segment that is valid JSON.
func scanBalanced(s string) []json.RawMessage {
	var (
		out      []json.RawMessage
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{', '[':
			if depth == 0 {
				start = i
			}
			depth++
		case '}', ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				seg := s[start : i+1]
				if json.Valid([]byte(seg)) {
					out = append(out, json.RawMessage(seg))
				}
				start = -1
			}
		}
	}
	return out
}

package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses whitespace so that
// "Cien Años" and "cien  anos" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// SplitList decodes the persisted comma-separated form.
func SplitList(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return []string{}
	}
	return Dedup(strings.Split(csv, ","))
}

// JoinList encodes a list for storage.
func JoinList(list []string) string {
	return strings.Join(list, ", ")
}

// Dedup trims entries, drops empties and removes case/accent-insensitive
// duplicates while keeping the first spelling and the original order.
func Dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := Fold(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Tokens returns the folded set of a multi-value field.
func Tokens(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		if f := Fold(s); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// SameSet reports whether two multi-value fields hold the same folded tokens.
func SameSet(a, b []string) bool {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) != len(tb) {
		return false
	}
	for k := range ta {
		if _, ok := tb[k]; !ok {
			return false
		}
	}
	return true
}

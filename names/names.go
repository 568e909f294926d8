// Package names turns raw credit strings into individual artist names and
// derives the canonical ids used to de-duplicate artists.
//
// Every function here is pure.
package names

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// A parenthesized or bracketed featuring clause, like "(feat. Drake)" or
// "[featuring Future]". Removed entirely, guests and all. The guest may
// follow "feat." without a space.
var featuringClauseRE = regexp.MustCompile(`(?i)\s*[(\[]\s*(?:featuring\b|feat\b\.?)[^)\]]*[)\]]`)

// Separators between credited names. Symbol separators may hug their
// neighbours; word separators must stand alone. Alternations are ordered
// longest first so "featuring" wins over "feat".
var separatorRE = regexp.MustCompile(`(?i)\s*[&,/]\s*|\s+(?:featuring|feat\.|feat|with|and|x)\s+`)

const dashes = "-‐‑‒–—―"

// Stands in for separators until the string is split. Matches are padded
// with spaces so a word separator right after another one still sees the
// whitespace it needs.
const delim = "\x00"

// SplitCredits splits a credit string into the individual names it
// credits, in credit order. The first name is the primary artist.
//
//	SplitCredits("Bad Bunny & Drake")          // ["Bad Bunny", "Drake"]
//	SplitCredits("Artist A (feat. Artist B)")  // ["Artist A"]
//	SplitCredits("Artist A feat Artist B")     // ["Artist A", "Artist B"]
func SplitCredits(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	stripped := featuringClauseRE.ReplaceAllString(raw, "")

	marked := stripped
	for {
		next := separatorRE.ReplaceAllString(marked, " "+delim+" ")
		if next == marked {
			break
		}
		marked = next
	}

	var out []string
	for _, token := range strings.Split(marked, delim) {
		token = strings.Trim(strings.TrimSpace(token), dashes)
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}

// Primary returns the first credited name, or "" if there is none.
func Primary(raw string) string {
	credits := SplitCredits(raw)
	if len(credits) == 0 {
		return ""
	}
	return credits[0]
}

// NormalizeDisplay trims and collapses whitespace. Casing is kept.
func NormalizeDisplay(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Canonicalize derives the canonical id for an artist name: lowercased,
// whitespace collapsed, words joined with hyphens. "Taylor Swift" and
// "  taylor   swift " both become "taylor-swift".
func Canonicalize(name string) string {
	lower := cases.Lower(language.Und).String(name)
	return strings.Join(strings.Fields(lower), "-")
}

// Enrichable reports whether a name is worth looking up in an external
// catalog. Short single tokens ("MO", "X") match too many unrelated
// entities to be useful.
func Enrichable(name string) bool {
	name = NormalizeDisplay(name)
	if name == "" {
		return false
	}
	if utf8.RuneCountInString(name) < 3 && !strings.Contains(name, " ") {
		return false
	}
	return true
}

// Package match resolves cross-feed event identity: it canonicalizes team
// names per sport family, resolves sport taxonomy keys, and pairs
// prediction-market events with sportsbook odds events by name similarity
// and date coincidence.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// translit maps Latin characters that do not decompose to an ASCII base via
// NFD (notably Polish stroked letters and German sharp s) plus the common
// accented vowels seen in roster data.
var translit = map[rune]string{
	'ł': "l",
	'Ł': "l",
	'ą': "a",
	'ć': "c",
	'ę': "e",
	'ń': "n",
	'ś': "s",
	'ź': "z",
	'ż': "z",
	'á': "a",
	'é': "e",
	'í': "i",
	'ó': "o",
	'ú': "u",
	'ñ': "n",
	'ü': "u",
	'ö': "o",
	'ä': "a",
	'ß': "ss",
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a team name for accent-insensitive comparison:
// lowercase, trim, transliterate known special characters to ASCII, then
// decompose and drop remaining combining marks.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if repl, ok := translit[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}

	out, _, err := transform.String(stripMarks, b.String())
	if err != nil {
		return b.String()
	}
	return out
}

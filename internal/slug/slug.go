// Package slug derives URL-safe project identifiers from human names.
// "Osiedle Słoneczne 2025" becomes "osiedle-sloneczne-2025".
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps slugs so they fit the indexed column
const MaxLength = 64

// stroked maps letters whose diacritic is not a combining mark and thus
// survives NFD (Polish ł being the one that matters here).
var stroked = runes.Map(func(r rune) rune {
	switch r {
	case 'ł':
		return 'l'
	case 'Ł':
		return 'L'
	case 'đ':
		return 'd'
	case 'Đ':
		return 'D'
	}
	return r
})

// chain decomposes accented letters and strips the combining marks
var chain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	stroked,
	norm.NFC,
)

// Make converts an arbitrary name to a lowercase ASCII slug: diacritics
// stripped, non-alphanumerics collapsed to single hyphens, trimmed and
// length-capped. Returns "" only for names with no usable characters.
func Make(name string) string {
	folded, _, err := transform.String(chain, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-")
	}
	return s
}

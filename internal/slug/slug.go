// Package slug derives the deterministic URL-safe lookup key for a movie
// from its title and release year.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiHyphen = regexp.MustCompile(`-{2,}`)

// Make returns the slug for a title/year pair, e.g.
// ("The Shawshank Redemption", 1994) -> "the-shawshank-redemption-1994".
// The same input always yields the same slug; uniqueness is enforced by
// the store's unique index, not here.
func Make(title string, year int) string {
	return fmt.Sprintf("%s-%d", normalize(title), year)
}

// normalize lower-cases the title, strips accents, and collapses every
// run of non-alphanumeric characters into a single hyphen.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}

	ascii = strings.ToLower(ascii)
	ascii = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, ascii)

	ascii = multiHyphen.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-")
}

package nlp

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var spaceRE = regexp.MustCompile(`\s+`)

// Normalize puts s into the canonical form used throughout the corpus:
// Unicode NFKC (fullwidth latin and punctuation become halfwidth, halfwidth
// kana become fullwidth) with runs of whitespace collapsed to single spaces.
//
// Anchor texts and page text must go through the same normalization, or
// entity matching misses spans that differ only in character width.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

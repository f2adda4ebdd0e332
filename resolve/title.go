// Package resolve rewrites tokenized Wikipedia pages so that every
// occurrence of a linked entity becomes a single token carrying the
// entity's canonical page title.
package resolve

import (
	"regexp"
	"strings"
)

// A trailing disambiguation clause: "スズキ (企業)", "Mercury (planet)".
var disambRE = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// NormalizeTitle strips the trailing disambiguation clause, if any, from a
// page title and trims surrounding whitespace. Parentheses that are part
// of the name proper (i.e. not trailing) are kept, so only the last clause
// of "A (b) (c)" goes. Titles without a clause come back unchanged.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(disambRE.ReplaceAllString(title, ""))
}

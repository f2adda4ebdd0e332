package resolve

import (
	"github.com/tetutaro/fasttext-binary-jawiki/nlp"
	"github.com/tetutaro/fasttext-binary-jawiki/wikidump"
)

// Candidates maps the anchor texts found on one page to the normalized
// title of the page each anchor links to. It drives the rewrite pass:
// every occurrence of a registered anchor in the page text resolves to
// its title, whether or not that occurrence carried the hyperlink.
type Candidates struct {
	anchors []string // insertion order, for deterministic automaton builds
	titles  map[string]string
}

// BuildCandidates constructs the candidate table for one page from its
// links, in document order. lookup maps a link target to the normalized
// title of an existing page in the dump; links whose targets are unknown
// (missing pages, interwiki leftovers) are dropped. When the same anchor
// text links to several targets, the first one seen wins: a surface form
// appearing later without its own link still resolves to the same entity.
func BuildCandidates(links []wikidump.Link,
	lookup func(target string) (string, bool)) *Candidates {

	c := &Candidates{titles: make(map[string]string)}
	for _, l := range links {
		anchor := nlp.Normalize(l.Anchor)
		if anchor == "" {
			continue
		}
		if _, dup := c.titles[anchor]; dup {
			continue
		}
		title, ok := lookup(l.Target)
		if !ok || title == "" {
			continue
		}
		c.anchors = append(c.anchors, anchor)
		c.titles[anchor] = title
	}
	return c
}

// Len returns the number of distinct anchor texts in the table.
func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.anchors)
}

// Title returns the normalized title registered for anchor.
func (c *Candidates) Title(anchor string) (string, bool) {
	if c == nil {
		return "", false
	}
	t, ok := c.titles[anchor]
	return t, ok
}

package resolve

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// A Rewriter replaces anchor-text matches in page text with entity tokens.
//
// Matching is leftmost-longest over the candidate anchors and matches
// never overlap: once a span is consumed, scanning resumes after it. With
// anchors 日本 and 日本語 registered, the text 日本語学 yields the entity
// for 日本語 followed by whatever the segmenter makes of 学; and in 東京都
// a match for 東京 blocks the overlapping 京都.
//
// A Rewriter is immutable and safe for concurrent use.
type Rewriter struct {
	titles []string // indexed by automaton pattern id
	ac     ahocorasick.AhoCorasick
}

// NewRewriter compiles the candidate table into a Rewriter. An empty (or
// nil) table gives a Rewriter that passes text through to the segmenter
// untouched.
func NewRewriter(c *Candidates) *Rewriter {
	if c.Len() == 0 {
		return &Rewriter{}
	}

	titles := make([]string, len(c.anchors))
	for i, anchor := range c.anchors {
		titles[i] = c.titles[anchor]
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchKind: ahocorasick.LeftMostLongestMatch,
	})
	return &Rewriter{titles: titles, ac: builder.Build(c.anchors)}
}

// Rewrite resolves entities in text. Every anchor match becomes a single
// token, the normalized title of the linked page; the stretches in between
// go through segment unchanged. The output covers all of text: no
// characters are dropped or duplicated, matched spans just collapse into
// one token each.
//
// Rewrite is deterministic: equal text and candidate tables always produce
// equal token streams.
func (rw *Rewriter) Rewrite(text string, segment func(string) []string) []string {
	if rw.titles == nil {
		return segment(text)
	}

	var tokens []string
	pos := 0
	for _, m := range rw.ac.FindAll(text) {
		if m.Start() < pos {
			// Overlaps a span that is already consumed; scanning resumes
			// strictly after a match, so this one never happens.
			continue
		}
		if m.Start() > pos {
			tokens = append(tokens, segment(text[pos:m.Start()])...)
		}
		tokens = append(tokens, rw.titles[m.Pattern()])
		pos = m.End()
	}
	if pos < len(text) {
		tokens = append(tokens, segment(text[pos:])...)
	}
	return tokens
}

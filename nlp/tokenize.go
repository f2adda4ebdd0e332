// Package nlp normalizes, filters and segments Japanese text.
package nlp

import (
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// A Segmenter splits Japanese text into morphemes using the kagome
// morphological analyzer with the IPA dictionary.
//
// A Segmenter is not safe for concurrent use; give each worker goroutine
// its own.
type Segmenter struct {
	tok  *tokenizer.Tokenizer
	base bool
}

// NewSegmenter constructs a Segmenter. If base is true, Segment emits the
// dictionary (base) form of each morpheme instead of its surface form, so
// that 導い and 導く count as the same word during training.
func NewSegmenter(base bool) (*Segmenter, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Segmenter{tok: t, base: base}, nil
}

// Segment splits s into morphemes.
func (seg *Segmenter) Segment(s string) []string {
	morphs := seg.tok.Tokenize(s)
	tokens := make([]string, 0, len(morphs))
	for _, m := range morphs {
		if m.Class == tokenizer.DUMMY || m.Surface == " " {
			continue
		}
		word := m.Surface
		if seg.base {
			// Unknown morphemes have no base form; keep the surface.
			if b, ok := m.BaseForm(); ok && b != "*" && b != "" {
				word = b
			}
		}
		tokens = append(tokens, word)
	}
	return tokens
}

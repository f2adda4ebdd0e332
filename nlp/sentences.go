package nlp

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Filter holds the thresholds that decide which pages and sentences carry
// enough content to be worth training on.
type Filter struct {
	MinText  int // minimum page length, in runes
	MinLine  int // minimum sentence length, in runes
	MinLines int // minimum number of sentences per page
	MinWords int // minimum number of tokens per sentence
}

// DefaultFilter returns the thresholds used for the released binaries.
func DefaultFilter() Filter {
	return Filter{MinText: 100, MinLine: 10, MinLines: 3, MinWords: 5}
}

// LongEnough reports whether a page body passes the MinText threshold.
func (f Filter) LongEnough(text string) bool {
	return utf8.RuneCountInString(text) >= f.MinText
}

// KeepPage reports whether a page body carries enough prose to contribute
// to the corpus and to the title dictionary. It checks the MinText
// threshold on the raw body and the MinLines threshold on the surviving
// sentences.
func (f Filter) KeepPage(text string) bool {
	return f.LongEnough(text) && len(f.Sentences(text)) >= f.MinLines
}

var (
	// [要出典], [要検証] and friends, plus [...?] style annotations.
	chuuki   = regexp.MustCompile(`\s*\[要[^\[\]]*?\]\s*`)
	gimon    = regexp.MustCompile(`\[[^\[\]]*?\?\]`)
	footnote = regexp.MustCompile(`^\[\d+\]`)

	// == section headings ==, while line structure is still intact.
	heading = regexp.MustCompile(`(?m)^\s*=+[^=\n]+=+\s*$`)

	// The see-also heading; a mention of 関連項目 in running prose is not
	// a section boundary.
	seeAlso = regexp.MustCompile(`(?m)^\s*=+\s*関連項目\s*=+\s*$`)

	// Parenthesized asides are dropped with their content; what remains
	// of a sentence still reads fine without them.
	zenkakuParen = regexp.MustCompile(`\s*（[^（）]*?）\s*`)

	emptyPairs = []string{"()", "（）", "〈〉", "『』", "「」"}

	// A 。inside 「...」quotes does not end the sentence.
	kutenInQuote = regexp.MustCompile(`「[^「」]*?。`)
)

// cleanse removes annotation markup and parenthesized asides. Runs before
// Normalize so that fullwidth parentheses are still distinguishable from
// ASCII ones that belong to the text proper.
func cleanse(text string) string {
	text = heading.ReplaceAllString(text, "")
	text = chuuki.ReplaceAllString(text, "")
	text = gimon.ReplaceAllString(text, "")
	text = zenkakuParen.ReplaceAllString(text, "")
	for _, pair := range emptyPairs {
		text = strings.Replace(text, pair, "", -1)
	}
	return text
}

// protectQuotes turns sentence-ending 。marks inside 「...」quotes into ．
// so the sentence splitter leaves quoted speech in one piece. restoreQuotes
// undoes the substitution per sentence.
func protectQuotes(text string) string {
	for {
		replaced := kutenInQuote.ReplaceAllStringFunc(text, func(m string) string {
			return m[:len(m)-len("。")] + "．"
		})
		if replaced == text {
			return text
		}
		text = replaced
	}
}

func restoreQuotes(s string) string {
	return strings.Replace(s, "．", "。", -1)
}

// Sentences cleanses a plain-text page body and splits it into sentences.
// Headings, footnotes and too-short fragments are dropped, and nothing
// after the 関連項目 (see also) section is kept. Each returned sentence is
// normalized (NFKC, collapsed whitespace) and ends with 。except possibly
// the last one.
func (f Filter) Sentences(text string) []string {
	// Nothing after the see-also section is running prose. Cut before
	// cleanse, which removes the heading that marks it.
	if loc := seeAlso.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	text = Normalize(cleanse(text))
	text = protectQuotes(text)

	parts := strings.Split(text, "。")
	sentences := make([]string, 0, len(parts))
	for i, s := range parts {
		s = strings.TrimSpace(s)
		if strings.HasSuffix(s, ".") {
			// Section heading.
			continue
		}
		if footnote.MatchString(s) {
			continue
		}
		if utf8.RuneCountInString(s) < f.MinLine {
			continue
		}
		s = restoreQuotes(s)
		if i < len(parts)-1 {
			s += "。"
		}
		sentences = append(sentences, s)
	}
	return sentences
}

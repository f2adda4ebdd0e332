package wikidump

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	special  = regexp.MustCompile(`{{|{\||\|}|}}|<[a-z][a-z0-9 "=]*/?>|</[a-z]+>`)
	starttag = regexp.MustCompile(`<[a-z].*>`)
	endtag   = regexp.MustCompile(`</[a-z]+>`)
)

// Cleanup gets rid of tables, template calls and quasi-XML, throwing away
// their content. Link syntax ([[...]]) is left in place.
//
// Assumes tables, templates and tags are properly nested, except for spurious
// end-of-{table,template,element} tags, which are ignored.
func Cleanup(s string) string {
	var depth int
	output := bytes.NewBuffer(make([]byte, 0, len(s)))

	for {
		next := special.FindStringIndex(s)
		if next == nil {
			if depth == 0 {
				output.WriteString(s)
			}
			break
		}
		i, j := next[0], next[1]

		if depth == 0 {
			output.WriteString(s[:i])
		}

		tag := s[i:j]
		switch {
		case tag == "{{":
			depth++
		case tag == "{|":
			depth++
		case starttag.MatchString(tag):
			depth++
		case tag == "}}":
			fallthrough
		case tag == "|}":
			fallthrough
		case endtag.MatchString(tag):
			if depth > 0 {
				depth--
			}
		}

		s = s[j:]
	}
	return html.UnescapeString(output.String())
}

// A Link is one hyperlink occurrence in page markup: the surface string
// that carried the link and the title of the page it points to.
type Link struct {
	Anchor, Target string
}

var (
	linkRE     = regexp.MustCompile(`(\w*)\[\[([^]]+)\]\](\w*)`)
	whitespace = regexp.MustCompile(`\s+`)
)

func normSpace(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// splitLink takes the inside of a [[...]] construct apart. ok is false for
// links we don't want: namespace (File:, Category:, interwiki) links and
// links with an empty target.
func splitLink(l string) (target, anchor string, ok bool) {
	if pipe := strings.IndexByte(l, '|'); pipe != -1 {
		target, anchor = l[:pipe], l[pipe+1:]
	} else {
		target = l
		anchor = l
	}

	// A colon in the target means a file, category or interwiki link.
	// XXX Proper solution would parse the dump's <namespaces> element.
	if strings.Contains(target, ":") {
		return "", "", false
	}

	// Remove section links.
	if hash := strings.IndexByte(target, '#'); hash != -1 {
		target = target[:hash]
	}
	if len(target) == 0 {
		return "", "", false
	}
	return target, anchor, true
}

// NormalizeTarget rewrites a link target to the format used in <title> and
// <redirect> elements: spaces instead of underscores, collapsed whitespace,
// uppercase first character.
func NormalizeTarget(target string) string {
	target = strings.Replace(target, "_", " ", -1)
	target = normSpace(target)

	first, size := utf8.DecodeRuneInString(target)
	if !unicode.IsUpper(first) {
		first = unicode.ToUpper(first)
		b := make([]byte, utf8.RuneLen(first))
		utf8.EncodeRune(b, first)
		target = string(b) + target[size:]
	}
	return target
}

// ExtractLinks returns the links occurring in the page text s, in document
// order. Call Cleanup on s first. Duplicate anchors are not collapsed; the
// caller decides which occurrence of a repeated anchor wins.
func ExtractLinks(s string) []Link {
	var links []Link
	for _, candidate := range linkRE.FindAllStringSubmatch(s, -1) {
		before, l, after := candidate[1], candidate[2], candidate[3]

		target, anchor, ok := splitLink(l)
		if !ok {
			continue
		}
		anchor = before + normSpace(anchor) + after
		links = append(links, Link{anchor, NormalizeTarget(target)})
	}
	return links
}

var anyLinkRE = regexp.MustCompile(`\[\[([^]]*)\]\]`)

// StripLinks removes link markup from the page text, leaving the anchor
// surface in place of each [[target|anchor]] or [[target]] construct.
// Namespace links disappear entirely. The result is the plain text that a
// reader of the rendered page would see.
func StripLinks(s string) string {
	return anyLinkRE.ReplaceAllStringFunc(s, func(m string) string {
		l := m[2 : len(m)-2]
		_, anchor, ok := splitLink(l)
		if !ok {
			return ""
		}
		return normSpace(anchor)
	})
}

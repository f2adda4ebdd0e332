package wikidump

import (
	"encoding/xml"
	"fmt"
	"io"
)

// A Wikipedia page: title plus raw wiki markup.
type Page struct {
	Title, Text string
}

// A Wikipedia redirect from Title to Target.
type Redirect struct {
	Title, Target string
}

// Parse out a single page or redirect. Assumes a <page> start tag has just
// been consumed.
func parsePage(d *xml.Decoder, pages chan<- *Page, redirs chan<- *Redirect) error {
	var mainNS bool
	var text, title string

	for {
		t, err := d.Token()
		if err != nil {
			return err
		}

		switch tok := t.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "ns":
				ns, err := getText(d)
				if err != nil {
					return err
				}
				mainNS = ns == "0"
			case "redirect":
				if mainNS {
					for _, attr := range tok.Attr {
						if attr.Name.Local == "title" {
							if redirs != nil {
								redirs <- &Redirect{title, attr.Value}
							}
							return nil
						}
					}
				}
			case "text":
				if mainNS {
					if text, err = getText(d); err != nil {
						return err
					}
				}
			case "title":
				// No check for mainNS because the <ns> comes *after* the
				// title. Let's hope titles are short.
				if title, err = getText(d); err != nil {
					return err
				}
			}

		case xml.EndElement:
			if tok.Name.Local == "page" {
				if mainNS {
					pages <- &Page{title, text}
				}
				return nil
			}
		}
	}
}

// Parse text out of an element. Assumes element has the form
// <foo>some text</foo> and the start tag has already been consumed.
// Consumes the whole element.
func getText(d *xml.Decoder) (text string, err error) {
	t, err := d.Token()
	if err != nil {
		return "", err
	}
	switch tok := t.(type) {
	case xml.CharData:
		text = string(tok)
		next, err := d.Token()
		if err != nil {
			return "", err
		}
		if _, ok := next.(xml.EndElement); !ok {
			return "", fmt.Errorf("wikidump: expected end element, got %T", next)
		}
	case xml.EndElement:
		text = ""
	}
	return text, nil
}

// GetPages sends the pages and redirects in the wikidump read from r down
// the given channels. Only pages in the main namespace are retrieved. A nil
// redirs channel discards the redirects.
//
// Doesn't close either of the channels passed to it, to support dumps
// consisting of multiple parts. Returns the first XML error encountered;
// pages parsed up to that point have already been delivered.
func GetPages(r io.Reader, pages chan<- *Page, redirs chan<- *Redirect) error {
	d := xml.NewDecoder(r)

	for {
		t, err := d.Token()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if tok, ok := t.(xml.StartElement); ok && tok.Name.Local == "page" {
			if err := parsePage(d, pages, redirs); err != nil {
				return err
			}
		}
	}
}

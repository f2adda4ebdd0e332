package wikidump

import (
	"strings"
	"sync"
	"testing"
)

const sampleDump = `<mediawiki>
  <page>
    <title>日本</title>
    <ns>0</ns>
    <revision>
      <text>'''日本'''は[[東アジア]]の国。</text>
    </revision>
  </page>
  <page>
    <title>Wikipedia:サンドボックス</title>
    <ns>4</ns>
    <revision>
      <text>not in the main namespace</text>
    </revision>
  </page>
  <page>
    <title>東京</title>
    <ns>0</ns>
    <redirect title="東京都" />
  </page>
  <page>
    <title>Empty text</title>
    <ns>0</ns>
    <revision>
      <text></text>
    </revision>
  </page>
</mediawiki>`

func TestGetPages(t *testing.T) {
	pages, redirs := make(chan *Page), make(chan *Redirect)

	go func() {
		if err := GetPages(strings.NewReader(sampleDump), pages, redirs); err != nil {
			t.Error(err)
		}
		close(pages)
		close(redirs)
	}()

	var got []*Page
	var redirects []*Redirect
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		for p := range pages {
			got = append(got, p)
		}
		wg.Done()
	}()
	go func() {
		for r := range redirs {
			redirects = append(redirects, r)
		}
		wg.Done()
	}()
	wg.Wait()

	if len(got) != 2 {
		t.Fatalf("expected two pages, got %d", len(got))
	}
	if got[0].Title != "日本" || !strings.Contains(got[0].Text, "[[東アジア]]") {
		t.Errorf("unexpected first page: %+v", got[0])
	}
	if got[1].Title != "Empty text" || got[1].Text != "" {
		t.Errorf("empty text not handled correctly, got %+v", got[1])
	}

	if len(redirects) != 1 {
		t.Fatalf("expected one redirect, got %d", len(redirects))
	}
	if redirects[0].Title != "東京" || redirects[0].Target != "東京都" {
		t.Errorf("unexpected redirect %+v", redirects[0])
	}
}

func TestGetPagesNilRedirects(t *testing.T) {
	pages := make(chan *Page)
	go func() {
		if err := GetPages(strings.NewReader(sampleDump), pages, nil); err != nil {
			t.Error(err)
		}
		close(pages)
	}()

	var n int
	for range pages {
		n++
	}
	if n != 2 {
		t.Errorf("expected two pages, got %d", n)
	}
}

func TestGetPagesBadXML(t *testing.T) {
	pages := make(chan *Page, 1)
	if err := GetPages(strings.NewReader("<mediawiki><page>"), pages, nil); err == nil {
		t.Error("expected an error for truncated XML")
	}
}

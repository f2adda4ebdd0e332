package wikidump

import (
	"bytes"
	"errors"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const indexHTML = `<html><body><pre>
<a href="../">../</a>
<a href="20240401/">20240401/</a>
<a href="20240501/">20240501/</a>
<a href="latest/">latest/</a>
</pre></body></html>`

// 20240501 is still running: no multistream articles file yet.
const runningHTML = `<html><body>
<a href="/jawiki/20240501/jawiki-20240501-stub-articles.xml.gz">jawiki-20240501-stub-articles.xml.gz</a>
</body></html>`

const completeHTML = `<html><body>
<a href="/jawiki/20240401/jawiki-20240401-pages-articles-multistream.xml.bz2">jawiki-20240401-pages-articles-multistream.xml.bz2</a>
<a href="/jawiki/20240401/jawiki-20240401-stub-articles.xml.gz">jawiki-20240401-stub-articles.xml.gz</a>
</body></html>`

const dumpContent = "all went well"

type mockTransport struct{}

func (t mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var msg string
	switch {
	case req.Method != "GET":
		msg = "not a GET request"
	case req.URL.Host != "dumps.wikimedia.org":
		msg = "wrong host"
	case req.Body != nil:
		msg = "non-nil Body"
	}
	if msg != "" {
		return nil, errors.New(msg)
	}

	var content string
	switch req.URL.Path {
	case "/jawiki/":
		content = indexHTML
	case "/jawiki/20240501/":
		content = runningHTML
	case "/jawiki/20240401/":
		content = completeHTML
	case "/jawiki/20240401/jawiki-20240401-pages-articles-multistream.xml.bz2":
		content = dumpContent
	default:
		return &http.Response{
			Status:     "404 Not Found",
			StatusCode: 404,
			Body:       ioutil.NopCloser(strings.NewReader("")),
			Request:    req,
		}, nil
	}

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    200,
		Body:          ioutil.NopCloser(strings.NewReader(content)),
		ContentLength: int64(len(content)),
		Request:       req,
	}, nil
}

var mockClient = http.Client{Transport: mockTransport{}}

func TestResolveDump(t *testing.T) {
	// The newest complete dump, skipping the still-running 20240501.
	d, err := ResolveDump(&mockClient, "")
	if err != nil {
		t.Fatal(err)
	}
	expected := Dump{
		Version:  "20240401",
		Filename: "jawiki-20240401-pages-articles-multistream.xml.bz2",
		URL:      "https://dumps.wikimedia.org/jawiki/20240401/jawiki-20240401-pages-articles-multistream.xml.bz2",
	}
	if d != expected {
		t.Errorf("expected %+v, got %+v", expected, d)
	}

	if d, err = ResolveDump(&mockClient, "20240401"); err != nil || d != expected {
		t.Errorf("explicit version: expected %+v, got %+v (%v)", expected, d, err)
	}

	if _, err = ResolveDump(&mockClient, "20240501"); err == nil {
		t.Error("expected an error for an incomplete dump version")
	}
}

func TestParseDumpIndex(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexHTML))
	if err != nil {
		t.Fatal(err)
	}
	got := parseDumpIndex(doc)
	expected := []string{"20240501", "20240401"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestDownload(t *testing.T) {
	dir, err := ioutil.TempDir("", "jawiki-corpus-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	d, err := ResolveDump(&mockClient, "")
	if err != nil {
		t.Fatal(err)
	}

	path, err := download(d, dir, false, &mockClient)
	if err != nil {
		t.Fatal(err)
	}
	if base := filepath.Base(path); base != d.Filename {
		t.Errorf("unexpected filename: %s", base)
	}
	if fdir := filepath.Dir(path); fdir != dir {
		t.Errorf("downloaded to wrong directory %q (wanted %q)", fdir, dir)
	}

	content, err := ioutil.ReadFile(path)
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(content, []byte(dumpContent)) {
		t.Errorf("expected %q, got %q", dumpContent, content)
	}

	// A second download finds the file in place and leaves it alone.
	if path2, err := download(d, dir, false, &mockClient); err != nil || path2 != path {
		t.Errorf("redownload: got %q, %v", path2, err)
	}
}

package wikidump

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cheggaaa/pb"
)

const baseURL = "https://dumps.wikimedia.org/jawiki/"

// A Dump identifies one downloadable jawiki dump file.
type Dump struct {
	// Dump version, YYYYMMDD.
	Version string

	// Base name of the dump file,
	// jawiki-<version>-pages-articles-multistream.xml.bz2.
	Filename string

	// Full download URL.
	URL string
}

func dumpFilename(version string) string {
	return fmt.Sprintf("jawiki-%s-pages-articles-multistream.xml.bz2", version)
}

func getDocument(client *http.Client, url string) (*goquery.Document, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d for %s", resp.StatusCode, url)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// parseDumpIndex extracts the version directories from the jawiki dump
// index page, newest first. The "latest" symlink directory is skipped
// because its file timestamps lie.
func parseDumpIndex(doc *goquery.Document) []string {
	var versions []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.HasPrefix(href, ".") || strings.HasPrefix(href, "latest") {
			return
		}
		if v := strings.TrimSuffix(href, "/"); v != "" {
			versions = append(versions, v)
		}
	})
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))
	return versions
}

// parseDumpPage looks up the multistream articles file for version on the
// version's index page. Returns ok=false when the file is not (yet) listed,
// which happens while a dump run is still in progress.
func parseDumpPage(doc *goquery.Document, version string) (d Dump, ok bool) {
	fname := dumpFilename(version)
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Text() != fname {
			return true
		}
		if href, found := sel.Attr("href"); found {
			d = Dump{
				Version:  version,
				Filename: fname,
				URL:      "https://dumps.wikimedia.org" + href,
			}
			ok = true
		}
		return false
	})
	return d, ok
}

// ResolveDump scrapes dumps.wikimedia.org for the jawiki dump with the
// given version (YYYYMMDD). An empty version means the newest version
// whose multistream articles file is complete.
func ResolveDump(client *http.Client, version string) (Dump, error) {
	doc, err := getDocument(client, baseURL)
	if err != nil {
		return Dump{}, err
	}

	for _, v := range parseDumpIndex(doc) {
		if version != "" && version != v {
			continue
		}
		page, err := getDocument(client, baseURL+v+"/")
		if err != nil {
			return Dump{}, err
		}
		if d, ok := parseDumpPage(page, v); ok {
			return d, nil
		}
		// No complete file for this version; with an explicit version
		// there is nothing left to try.
		if version != "" {
			break
		}
	}
	return Dump{}, fmt.Errorf("no usable jawiki dump found for version %q", version)
}

// Writer with progressbar.
type pbWriter struct {
	w   io.WriteCloser
	bar *pb.ProgressBar
}

func newPbWriter(w io.WriteCloser, total int64) *pbWriter {
	pbw := &pbWriter{w, pb.New64(total).SetUnits(pb.U_BYTES)}
	pbw.bar.Start()
	return pbw
}

func (w *pbWriter) Close() error {
	w.bar.Finish()
	return w.w.Close()
}

func (w *pbWriter) Write(p []byte) (n int, err error) {
	n, err = w.w.Write(p)
	w.bar.Add(n)
	return
}

func nullLogger(string, ...interface{}) {
}

// Download fetches d into directory, reporting progress on the standard
// log (with a progress bar) if logProgress is true.
//
// Returns the local file path. A previously downloaded file is reused.
func Download(d Dump, directory string, logProgress bool) (string, error) {
	return download(d, directory, logProgress, http.DefaultClient)
}

func download(d Dump, directory string, logProgress bool,
	client *http.Client) (dest string, err error) {

	logprint := nullLogger
	if logProgress {
		logprint = log.Printf
	}

	dest = filepath.Join(directory, d.Filename)
	if _, err := os.Stat(dest); err == nil {
		logprint("%s already downloaded, skipping", dest)
		return dest, nil
	}

	resp, err := client.Get(d.URL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error %d for %s", resp.StatusCode, d.URL)
	}

	var out io.WriteCloser
	out, err = os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return "", err
	}

	logprint("downloading from %s to %s", d.URL, dest)
	if logProgress && resp.ContentLength >= 0 {
		out = newPbWriter(out, resp.ContentLength)
	}
	_, err = io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A partial download would be mistaken for a complete one on the
		// next run.
		os.Remove(dest)
		return "", err
	}
	logprint("download of %s done", d.URL)
	return dest, nil
}

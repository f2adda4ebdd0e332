// Corpus builder for Japanese Wikipedia word embeddings.
//
// Takes a jawiki database dump (or downloads one automatically) and
// produces a tokenized training corpus, one page per line, in which every
// linked mention has been replaced by the title of the page it links to.
// A model database records the title dictionary and token statistics.
//
// Run with --help for command-line usage.
package main

import (
	"bufio"
	"compress/bzip2"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/tetutaro/fasttext-binary-jawiki/countmin"
	"github.com/tetutaro/fasttext-binary-jawiki/hash"
	"github.com/tetutaro/fasttext-binary-jawiki/nlp"
	"github.com/tetutaro/fasttext-binary-jawiki/resolve"
	"github.com/tetutaro/fasttext-binary-jawiki/storage"
	"github.com/tetutaro/fasttext-binary-jawiki/wikidump"
)

func init() {
	if os.Getenv("GOMAXPROCS") == "" {
		// Four is about the number of cores that we can put to useful work
		// when the disk is fast.
		runtime.GOMAXPROCS(min(runtime.NumCPU(), 4))
	}
}

func open(path string) (r io.ReadCloser, err error) {
	rf, err := os.Open(path)
	if err != nil {
		return
	}
	r = struct {
		*bufio.Reader
		io.Closer
	}{bufio.NewReader(rf), rf}
	if filepath.Ext(path) == ".bz2" {
		r = struct {
			io.Reader
			io.Closer
		}{bzip2.NewReader(r), rf}
	}
	return
}

var (
	dbpath   = kingpin.Arg("model", "path to model database").Required().String()
	dumppath = kingpin.Arg("dump", "path to jawiki dump").String()
	download = kingpin.Flag("download",
		"download the dump from dumps.wikimedia.org").Bool()
	version = kingpin.Flag("version",
		"dump version (YYYYMMDD; default: newest complete)").String()
	output = kingpin.Flag("output",
		"corpus file (default: jawiki[_base]_<version>.txt)").Short('o').String()
	base = kingpin.Flag("base",
		"emit base forms instead of surface forms").Bool()
	plain = kingpin.Flag("plain",
		"plain tokenization, no link resolution").Bool()
	minText = kingpin.Flag("min-text",
		"min. page length in characters").Default("100").Int()
	minLine = kingpin.Flag("min-line",
		"min. sentence length in characters").Default("10").Int()
	minLines = kingpin.Flag("min-lines",
		"min. sentences per page").Default("3").Int()
	minWords = kingpin.Flag("min-words",
		"min. tokens per sentence").Default("5").Int()
	nrows = kingpin.Flag("nrows",
		"number of rows in count-min sketch").Default("16").Int()
	ncols = kingpin.Flag("ncols",
		"number of columns in count-min sketch").Default("65536").Int()
)

var versionRE = regexp.MustCompile(`jawiki-(\d{8})-`)

func main() {
	kingpin.Parse()

	log.SetPrefix("jawiki-corpus ")

	var err error
	check := func() {
		if err != nil {
			log.Fatal(err)
		}
	}

	if *download {
		var d wikidump.Dump
		d, err = wikidump.ResolveDump(http.DefaultClient, *version)
		check()
		*version = d.Version
		*dumppath, err = wikidump.Download(d, *dumppath, true)
		check()
	} else if *dumppath == "" {
		log.Fatal("no --download and no dump path specified (try --help)")
	} else if *version == "" {
		if m := versionRE.FindStringSubmatch(filepath.Base(*dumppath)); m != nil {
			*version = m[1]
		} else {
			log.Fatal("cannot tell the dump version from the filename; use --version")
		}
	}

	if *output == "" {
		name := "jawiki_" + *version + ".txt"
		if *base {
			name = "jawiki_base_" + *version + ".txt"
		}
		*output = name
	}

	filter := nlp.Filter{
		MinText:  *minText,
		MinLine:  *minLine,
		MinLines: *minLines,
		MinWords: *minWords,
	}

	log.Printf("Creating database at %s", *dbpath)
	db, err := storage.MakeDB(*dbpath, true, &storage.Settings{
		Dumpname:   *dumppath,
		Version:    *version,
		Dictionary: "ipa",
		BaseForm:   *base,
	})
	check()

	var titles, redirects map[string]string
	if !*plain {
		titles, redirects, err = collectTitles(*dumppath, filter)
		check()
		log.Printf("Storing %d titles, %d redirects", len(titles), len(redirects))
		err = storage.StoreTitles(db, titles)
		check()
		err = storage.StoreRedirects(db, redirects)
		check()
	}

	counterTotal, err := countmin.New(*nrows, *ncols)
	check()
	npages, err := buildCorpus(*dumppath, *output, filter,
		titles, redirects, counterTotal)
	check()
	log.Printf("Wrote %d pages to %s", npages, *output)

	err = storage.StoreCM(db, counterTotal)
	check()
	if !*plain {
		spotCheck(counterTotal, titles)
	}

	log.Println("Finalizing database")
	err = storage.Finalize(db)
	check()
	err = db.Close()
	check()
}

// collectTitles makes the first pass over the dump: the title dictionary
// (raw title to replacement token) for pages with enough content, plus the
// redirect table.
func collectTitles(dumppath string, filter nlp.Filter) (
	titles, redirects map[string]string, err error) {

	f, err := open(dumppath)
	if err != nil {
		return
	}
	defer f.Close()

	nworkers := runtime.GOMAXPROCS(0)
	pages := make(chan *wikidump.Page, 10*nworkers)
	redirch := make(chan *wikidump.Redirect, 100)
	titlech := make(chan [2]string, 10*nworkers)

	var parseErr error
	go func() {
		parseErr = wikidump.GetPages(f, pages, redirch)
		close(pages)
		close(redirch)
	}()

	log.Printf("collecting titles with %d workers", nworkers)
	var wg sync.WaitGroup
	wg.Add(nworkers)
	for i := 0; i < nworkers; i++ {
		go func() {
			defer wg.Done()
			for p := range pages {
				body := wikidump.StripLinks(wikidump.Cleanup(p.Text))
				if !filter.KeepPage(body) {
					continue
				}
				norm := resolve.NormalizeTitle(nlp.Normalize(p.Title))
				if norm == "" {
					continue
				}
				titlech <- [2]string{p.Title, norm}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(titlech)
	}()

	redirects = make(map[string]string)
	done := make(chan struct{})
	go func() {
		for r := range redirch {
			redirects[r.Title] = r.Target
		}
		close(done)
	}()

	titles = make(map[string]string)
	for t := range titlech {
		titles[t[0]] = t[1]
	}
	<-done

	return titles, redirects, parseErr
}

// buildCorpus makes the second pass: tokenize every page, replacing linked
// mentions by their target titles, and write one line per page.
func buildCorpus(dumppath, output string, filter nlp.Filter,
	titles, redirects map[string]string, counterTotal *countmin.Sketch) (
	npages int, err error) {

	f, err := open(dumppath)
	if err != nil {
		return
	}
	defer f.Close()

	out, err := os.Create(output)
	if err != nil {
		return
	}
	defer out.Close()

	// Resolve a link target to its replacement token, following redirects.
	lookup := func(target string) (string, bool) {
		for i := 0; i < 4; i++ {
			t, ok := redirects[target]
			if !ok {
				break
			}
			target = wikidump.NormalizeTarget(t)
		}
		norm, ok := titles[target]
		return norm, ok
	}

	nworkers := runtime.GOMAXPROCS(0)
	pages := make(chan *wikidump.Page, 10*nworkers)
	lines := make(chan string, 10*nworkers)
	counters := make(chan *countmin.Sketch, nworkers)

	var parseErr error
	go func() {
		parseErr = wikidump.GetPages(f, pages, nil)
		close(pages)
	}()

	log.Printf("processing dump with %d workers", nworkers)
	var wg sync.WaitGroup
	wg.Add(nworkers)
	for i := 0; i < nworkers; i++ {
		go func() {
			defer wg.Done()
			seg, err := nlp.NewSegmenter(*base)
			if err != nil {
				log.Fatal(err)
			}
			// Same shape as counterTotal, so New cannot fail here.
			counter, _ := countmin.New(counterTotal.NRows(), counterTotal.NCols())
			for p := range pages {
				tokens := processPage(p, filter, lookup, seg)
				if len(tokens) == 0 {
					continue
				}
				for _, t := range tokens {
					counter.Add1(hash.Token(t))
				}
				lines <- strings.Join(tokens, " ")
			}
			counters <- counter
		}()
	}
	go func() {
		wg.Wait()
		close(counters)
		close(lines)
	}()

	w := bufio.NewWriter(out)
	for line := range lines {
		if _, err = w.WriteString(line); err != nil {
			return
		}
		if err = w.WriteByte('\n'); err != nil {
			return
		}
		npages++
	}
	for c := range counters {
		if err = counterTotal.Sum(c); err != nil {
			return
		}
	}
	if err = w.Flush(); err != nil {
		return
	}
	return npages, parseErr
}

// processPage turns one page into its corpus tokens. An empty result means
// the page was filtered out.
func processPage(p *wikidump.Page, filter nlp.Filter,
	lookup func(string) (string, bool), seg *nlp.Segmenter) []string {

	text := wikidump.Cleanup(p.Text)
	body := wikidump.StripLinks(text)
	if !filter.LongEnough(body) {
		return nil
	}
	sentences := filter.Sentences(body)
	if len(sentences) < filter.MinLines {
		return nil
	}

	segment := seg.Segment
	if !*plain {
		cand := resolve.BuildCandidates(wikidump.ExtractLinks(text), lookup)
		rw := resolve.NewRewriter(cand)
		segment = func(s string) []string {
			return rw.Rewrite(s, seg.Segment)
		}
	}

	var tokens []string
	for _, s := range sentences {
		ts := segment(s)
		if len(ts) < filter.MinWords {
			continue
		}
		tokens = append(tokens, ts...)
	}
	return tokens
}

// spotCheck logs estimated corpus frequencies for a handful of entity
// tokens spread through the dictionary, as a sanity check on the sketch.
func spotCheck(cm *countmin.Sketch, titles map[string]string) {
	uniq := make(map[string]bool, len(titles))
	for _, t := range titles {
		uniq[t] = true
	}
	names := make([]string, 0, len(uniq))
	for t := range uniq {
		names = append(names, t)
	}
	sort.Strings(names)

	step := len(names) / 5
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(names); i += step {
		log.Printf("entity %q: ~%d occurrences", names[i],
			cm.Get(hash.Token(names[i])))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

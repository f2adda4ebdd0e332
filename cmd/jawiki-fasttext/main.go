// Trains fastText embeddings over a corpus produced by jawiki-corpus and
// exports them as a binary word2vec model with unit-length vectors, ready
// for similarity queries with jawiki-w2v.
//
// Requires the fasttext executable (https://fasttext.cc) on the PATH.
//
// Run with --help for command-line usage.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/tetutaro/fasttext-binary-jawiki/hash"
	"github.com/tetutaro/fasttext-binary-jawiki/storage"
	"github.com/tetutaro/fasttext-binary-jawiki/vectors"
)

var (
	corpus = kingpin.Arg("corpus",
		"corpus file written by jawiki-corpus").Required().String()
	dbpath = kingpin.Flag("model",
		"model database, for vocabulary statistics").String()
	binary = kingpin.Flag("fasttext",
		"fasttext executable").Default("fasttext").String()
	algorithm = kingpin.Flag("algorithm",
		"skipgram or cbow").Default("skipgram").Enum("skipgram", "cbow")
	dim      = kingpin.Flag("dim", "embedding dimensions").Default("300").Int()
	epoch    = kingpin.Flag("epoch", "training epochs").Default("10").Int()
	minCount = kingpin.Flag("min-count",
		"min. number of token occurrences").Default("20").Int()
)

// jawiki_20240101.txt or jawiki_base_20240101.txt.
var corpusRE = regexp.MustCompile(`^(jawiki(?:_base)?)_(\d{8})\.txt$`)

func main() {
	kingpin.Parse()

	log.SetPrefix("jawiki-fasttext ")

	var err error
	check := func() {
		if err != nil {
			log.Fatal(err)
		}
	}

	m := corpusRE.FindStringSubmatch(filepath.Base(*corpus))
	if m == nil {
		log.Fatalf("%s does not look like a jawiki-corpus output file", *corpus)
	}
	stem := fmt.Sprintf("fasttext_%s_%s", m[1], m[2])
	kvpath := fmt.Sprintf("kv_fasttext_%s_%s.bin", m[1], m[2])

	if *dbpath != "" {
		reportVocabulary(*dbpath)
	}

	trainer := vectors.Trainer{
		Binary:   *binary,
		Model:    *algorithm,
		Dim:      *dim,
		Epoch:    *epoch,
		MinCount: *minCount,
	}
	log.Printf("training %s on %s", *algorithm, *corpus)
	err = trainer.Train(*corpus, stem)
	check()

	f, err := os.Open(stem + ".vec")
	check()
	kv, err := vectors.LoadText(f)
	f.Close()
	check()
	log.Printf("loaded %d vectors of dimension %d", kv.Len(), kv.Dim())

	kv.Normalize()

	out, err := os.Create(kvpath)
	check()
	if err = kv.SaveBinary(out); err != nil {
		out.Close()
		os.Remove(kvpath)
		log.Fatal(err)
	}
	err = out.Close()
	check()
	log.Printf("wrote %s", kvpath)
}

// reportVocabulary logs, from the model database's count-min sketch, how
// many of the stored titles occur often enough to get a vector.
func reportVocabulary(dbpath string) {
	db, s, err := storage.LoadModel(dbpath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	sketch, err := storage.LoadCM(db)
	if err != nil {
		log.Fatal(err)
	}
	dict, err := storage.LoadDictionary(db)
	if err != nil {
		log.Fatal(err)
	}

	seen := make(map[string]bool, len(dict))
	var kept int
	for _, title := range dict {
		if seen[title] {
			continue
		}
		seen[title] = true
		if sketch.Get(hash.Token(title)) >= uint32(*minCount) {
			kept++
		}
	}
	log.Printf("dump %s: ~%d of %d titles occur at least %d times",
		s.Version, kept, len(seen), *minCount)
}

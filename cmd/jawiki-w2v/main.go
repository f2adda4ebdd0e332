// Similarity queries against an embedding model built by jawiki-fasttext.
//
// Prints the words most similar to the given words, in the word2vec
// positive/negative arithmetic sense:
//
//	jawiki-w2v 王 女 --neg 男
//
// Run with --help for command-line usage.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/tetutaro/fasttext-binary-jawiki/vectors"
)

var (
	positive = kingpin.Arg("word",
		"words the result should be similar to").Required().Strings()
	negative = kingpin.Flag("neg",
		"words the result should be dissimilar to (repeatable)").Strings()
	topn = kingpin.Flag("topn",
		"number of results").Default("5").Int()
	modelpath = kingpin.Flag("model",
		"embedding model (default: newest kv_*.bin here)").String()
)

func main() {
	kingpin.Parse()

	log.SetPrefix("jawiki-w2v ")

	path := *modelpath
	if path == "" {
		var err error
		if path, err = findModel("."); err != nil {
			log.Fatal(err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	kv, err := vectors.LoadBinary(f)
	f.Close()
	if err != nil {
		log.Fatal(err)
	}

	sims, err := kv.MostSimilar(*positive, *negative, *topn)
	if err != nil {
		log.Fatal(err)
	}
	for i, s := range sims {
		fmt.Printf("%2d. %s (%.4f)\n", i+1, s.Word, s.Score)
	}
}

// Trailing dump version in a model filename, kv_..._YYYYMMDD.bin.
var modelVersionRE = regexp.MustCompile(`_(\d{8})\.bin$`)

// findModel picks the kv_*.bin in dir with the newest dump version,
// whatever the model family. Ties go to the lexically last name.
func findModel(dir string) (string, error) {
	models, err := filepath.Glob(filepath.Join(dir, "kv_*.bin"))
	if err != nil {
		return "", err
	}
	sort.Strings(models)

	var best, bestVersion string
	for _, m := range models {
		v := modelVersionRE.FindStringSubmatch(filepath.Base(m))
		if v != nil && v[1] >= bestVersion {
			best, bestVersion = m, v[1]
		}
	}
	if best == "" {
		return "", fmt.Errorf("no kv_*.bin model found in %s (use --model)", dir)
	}
	return best, nil
}

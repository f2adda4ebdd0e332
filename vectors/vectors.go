// Package vectors reads, writes and queries word-embedding models in the
// word2vec text and binary formats.
package vectors

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// KeyedVectors is an in-memory word-embedding lookup table.
type KeyedVectors struct {
	dim   int
	words []string
	index map[string]int
	vecs  [][]float64
}

// Dim returns the dimensionality of the embedding.
func (kv *KeyedVectors) Dim() int { return kv.dim }

// Len returns the vocabulary size.
func (kv *KeyedVectors) Len() int { return len(kv.words) }

// Vector returns the embedding for word.
func (kv *KeyedVectors) Vector(word string) ([]float64, bool) {
	i, ok := kv.index[word]
	if !ok {
		return nil, false
	}
	return kv.vecs[i], true
}

func (kv *KeyedVectors) add(word string, vec []float64) {
	kv.index[word] = len(kv.words)
	kv.words = append(kv.words, word)
	kv.vecs = append(kv.vecs, vec)
}

// Normalize scales every vector to unit L2 norm. Zero vectors are left
// alone. MostSimilar assumes unit vectors; call Normalize after loading a
// raw .vec file.
func (kv *KeyedVectors) Normalize() {
	for _, v := range kv.vecs {
		if n := floats.Norm(v, 2); n != 0 {
			floats.Scale(1/n, v)
		}
	}
}

func newKeyedVectors(nwords, dim int) *KeyedVectors {
	return &KeyedVectors{
		dim:   dim,
		words: make([]string, 0, nwords),
		index: make(map[string]int, nwords),
		vecs:  make([][]float64, 0, nwords),
	}
}

func parseHeader(line string) (nwords, dim int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("vectors: malformed header %q", line)
	}
	if nwords, err = strconv.Atoi(fields[0]); err == nil {
		dim, err = strconv.Atoi(fields[1])
	}
	if err == nil && (nwords < 0 || dim < 1) {
		err = fmt.Errorf("vectors: nonsense header %q", line)
	}
	return
}

// LoadText reads word vectors in the word2vec/fastText text format:
// a "nwords dim" header line followed by one space-separated record per
// word. Malformed records are skipped.
func LoadText(r io.Reader) (*KeyedVectors, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<22)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}
	nwords, dim, err := parseHeader(sc.Text())
	if err != nil {
		return nil, err
	}

	kv := newKeyedVectors(nwords, dim)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != dim+1 {
			continue
		}
		word := fields[0]
		if _, dup := kv.index[word]; dup {
			continue
		}
		vec := make([]float64, dim)
		ok := true
		for i, f := range fields[1:] {
			if vec[i], err = strconv.ParseFloat(f, 64); err != nil {
				ok = false
				break
			}
		}
		if ok {
			kv.add(word, vec)
		}
	}
	return kv, sc.Err()
}

// SaveBinary writes the vectors in the word2vec binary format: a text
// header, then per word the word itself, a space, and dim little-endian
// float32 values.
func (kv *KeyedVectors) SaveBinary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(kv.words), kv.dim); err != nil {
		return err
	}

	buf := make([]byte, 4*kv.dim)
	for i, word := range kv.words {
		if _, err := fmt.Fprintf(bw, "%s ", word); err != nil {
			return err
		}
		for j, x := range kv.vecs[i] {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(float32(x)))
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadBinary reads the format written by SaveBinary (and by gensim's
// KeyedVectors.save_word2vec_format with binary=True).
func LoadBinary(r io.Reader) (*KeyedVectors, error) {
	br := bufio.NewReaderSize(r, 1<<16)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, err
	}
	nwords, dim, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	kv := newKeyedVectors(nwords, dim)
	buf := make([]byte, 4*dim)
	for n := 0; n < nwords; n++ {
		word, err := br.ReadString(' ')
		if err != nil {
			return nil, err
		}
		word = strings.TrimLeft(word[:len(word)-1], "\n")

		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		vec := make([]float64, dim)
		for i := range vec {
			vec[i] = float64(math.Float32frombits(
				binary.LittleEndian.Uint32(buf[4*i:])))
		}
		kv.add(word, vec)
	}
	return kv, nil
}

// A Similarity is one most-similar query result.
type Similarity struct {
	Word  string
	Score float64
}

// MostSimilar returns the topn words most similar to the mean of the
// positive words minus the mean of the negative ones (3CosAdd), by cosine
// similarity. The query words themselves are excluded from the results.
// Words missing from the vocabulary yield an error.
func (kv *KeyedVectors) MostSimilar(positive, negative []string, topn int) ([]Similarity, error) {
	if len(positive) == 0 {
		return nil, fmt.Errorf("vectors: no positive words")
	}
	if topn < 1 {
		return nil, fmt.Errorf("vectors: topn must be positive, got %d", topn)
	}

	query := make([]float64, kv.dim)
	exclude := make(map[string]bool, len(positive)+len(negative))

	accumulate := func(words []string, sign float64) error {
		for _, w := range words {
			v, ok := kv.Vector(w)
			if !ok {
				return fmt.Errorf("vectors: %q is not in the vocabulary", w)
			}
			floats.AddScaled(query, sign, v)
			exclude[w] = true
		}
		return nil
	}
	if err := accumulate(positive, 1); err != nil {
		return nil, err
	}
	if err := accumulate(negative, -1); err != nil {
		return nil, err
	}
	if n := floats.Norm(query, 2); n != 0 {
		floats.Scale(1/n, query)
	}

	sims := make([]Similarity, 0, len(kv.words))
	for i, w := range kv.words {
		if exclude[w] {
			continue
		}
		sims = append(sims, Similarity{w, floats.Dot(query, kv.vecs[i])})
	}
	sort.SliceStable(sims, func(i, j int) bool {
		return sims[i].Score > sims[j].Score
	})
	if topn > len(sims) {
		topn = len(sims)
	}
	return sims[:topn], nil
}

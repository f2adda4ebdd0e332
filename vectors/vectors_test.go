package vectors

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

const sampleVec = `4 3
王 1.0 1.0 0.0
女王 0.8 1.2 0.1
男 1.0 0.0 0.0
女 0.0 1.0 0.1
`

func loadSample(t *testing.T) *KeyedVectors {
	t.Helper()
	kv, err := LoadText(strings.NewReader(sampleVec))
	if err != nil {
		t.Fatal(err)
	}
	return kv
}

func TestLoadText(t *testing.T) {
	kv := loadSample(t)
	if kv.Len() != 4 || kv.Dim() != 3 {
		t.Fatalf("expected 4 words of dimension 3, got %d of %d", kv.Len(), kv.Dim())
	}
	v, ok := kv.Vector("女王")
	if !ok {
		t.Fatal("女王 missing from vocabulary")
	}
	if v[0] != 0.8 || v[1] != 1.2 || v[2] != 0.1 {
		t.Errorf("unexpected vector %v", v)
	}
	if _, ok = kv.Vector("missing"); ok {
		t.Error("found a vector for a missing word")
	}
}

func TestLoadTextMalformed(t *testing.T) {
	if _, err := LoadText(strings.NewReader("not a header\n")); err == nil {
		t.Error("expected an error for a malformed header")
	}

	// Records with the wrong number of fields are skipped.
	kv, err := LoadText(strings.NewReader("2 2\nok 1.0 2.0\nbroken 1.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if kv.Len() != 1 {
		t.Errorf("expected one word, got %d", kv.Len())
	}
}

func TestNormalize(t *testing.T) {
	kv := loadSample(t)
	kv.Normalize()
	for _, word := range []string{"王", "女王", "男", "女"} {
		v, _ := kv.Vector(word)
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		if math.Abs(norm-1) > 1e-12 {
			t.Errorf("%s: squared norm %f after Normalize", word, norm)
		}
	}
}

func TestMostSimilar(t *testing.T) {
	kv := loadSample(t)
	kv.Normalize()

	// 王 - 男 + 女 ≈ 女王.
	sims, err := kv.MostSimilar([]string{"王", "女"}, []string{"男"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sims) != 1 || sims[0].Word != "女王" {
		t.Errorf("expected 女王, got %v", sims)
	}

	// Query words never show up in the results.
	sims, err = kv.MostSimilar([]string{"王"}, nil, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(sims) != 3 {
		t.Fatalf("expected 3 results, got %d", len(sims))
	}
	for _, s := range sims {
		if s.Word == "王" {
			t.Error("query word in results")
		}
	}
	for i := 1; i < len(sims); i++ {
		if sims[i].Score > sims[i-1].Score {
			t.Errorf("results out of order: %v", sims)
		}
	}

	if _, err = kv.MostSimilar([]string{"missing"}, nil, 1); err == nil {
		t.Error("expected an error for an out-of-vocabulary word")
	}
	if _, err = kv.MostSimilar(nil, nil, 1); err == nil {
		t.Error("expected an error for an empty query")
	}
}

func TestBinaryRoundtrip(t *testing.T) {
	kv := loadSample(t)
	kv.Normalize()

	var buf bytes.Buffer
	if err := kv.SaveBinary(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := LoadBinary(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Len() != kv.Len() || got.Dim() != kv.Dim() {
		t.Fatalf("expected %d words of dimension %d, got %d of %d",
			kv.Len(), kv.Dim(), got.Len(), got.Dim())
	}
	for _, word := range []string{"王", "女王", "男", "女"} {
		orig, _ := kv.Vector(word)
		back, ok := got.Vector(word)
		if !ok {
			t.Fatalf("%s missing after roundtrip", word)
		}
		for i := range orig {
			// float32 precision on the wire.
			if math.Abs(orig[i]-back[i]) > 1e-6 {
				t.Errorf("%s[%d]: %f != %f", word, i, orig[i], back[i])
			}
		}
	}
}

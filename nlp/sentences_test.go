package nlp

import (
	"reflect"
	"strings"
	"testing"
)

func TestSentences(t *testing.T) {
	text := `== 概要 ==
日本国は、東アジアに位置する民主制国家のひとつである。
短い文。
国土は本州、北海道、四国、九州および多数の島々からなる[要出典]。
「ここで終わり。」と彼は言った、その後も文は続いたのである。
== 関連項目 ==
ここは出力されない長さの文である。`

	expected := []string{
		"日本国は、東アジアに位置する民主制国家のひとつである。",
		"国土は本州、北海道、四国、九州および多数の島々からなる。",
		"「ここで終わり。」と彼は言った、その後も文は続いたのである。",
	}

	got := DefaultFilter().Sentences(text)
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %#v, got %#v", expected, got)
	}
}

func TestSentencesSeeAlsoMention(t *testing.T) {
	// Only the heading line starts the see-also section; the words
	// 関連項目 in running prose do not truncate the page.
	text := `この記事は関連項目の節を持たない構成で書かれたものである。
その後に続く文も問題なく残るのである。
== 関連項目 ==
ここから先は出力されない長さの文である。`

	expected := []string{
		"この記事は関連項目の節を持たない構成で書かれたものである。",
		"その後に続く文も問題なく残るのである。",
	}

	got := DefaultFilter().Sentences(text)
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %#v, got %#v", expected, got)
	}
}

func TestSentencesCleanse(t *testing.T) {
	cases := []struct{ in, out string }{
		// Parenthesized readings disappear with their parentheses.
		{"日本国（にほんこく）は東アジアに位置する国家である。",
			"日本国は東アジアに位置する国家である。"},
		// Fullwidth characters are normalized.
		{"ｺﾝﾋﾟｭｰﾀは計算機のことである。",
			"コンピュータは計算機のことである。"},
		// Footnote lines are dropped.
		{"[3]これは脚注であるからして出てこない。", ""},
	}
	for _, c := range cases {
		got := DefaultFilter().Sentences(c.in)
		switch {
		case c.out == "":
			if len(got) != 0 {
				t.Errorf("expected no sentences for %q, got %v", c.in, got)
			}
		case len(got) != 1 || got[0] != c.out:
			t.Errorf("expected [%q] for %q, got %v", c.out, c.in, got)
		}
	}
}

func TestKeepPage(t *testing.T) {
	long := strings.Repeat("これは充分に長い文章のひとつである。", 10)
	if !DefaultFilter().KeepPage(long) {
		t.Error("expected a long page to be kept")
	}
	if DefaultFilter().KeepPage("短い。") {
		t.Error("expected a short page to be dropped")
	}
	// Long enough in characters but too few sentences.
	two := strings.Repeat("あ", 99) + "い。" + strings.Repeat("う", 20) + "。"
	if DefaultFilter().KeepPage(two) {
		t.Error("expected a page with too few sentences to be dropped")
	}
}

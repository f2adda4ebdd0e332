package nlp

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct{ in, out string }{
		{"Ｇｏ言語", "Go言語"},
		{"ｱｲｳｴｵ", "アイウエオ"},
		{"１２３４", "1234"},
		{"a\n\n b\tc", "a b c"},
		{"　全角　スペース　", "全角 スペース"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.out {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.out)
		}
	}
}

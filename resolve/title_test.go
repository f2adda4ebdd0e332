package resolve

import "testing"

func TestNormalizeTitle(t *testing.T) {
	cases := []struct{ in, out string }{
		{"スズキ (企業)", "スズキ"},
		{"Mercury (planet)", "Mercury"},
		{"東京", "東京"},
		{"A (b) (c)", "A (b)"},
		{"弁明 (プラトン)", "弁明"},
		{"(全部括弧)", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeTitle(c.in); got != c.out {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", c.in, got, c.out)
		}
	}
}

package hash

import "testing"

func TestToken(t *testing.T) {
	// FNV-1a is stable; models written with one build must load in the next.
	if h := Token("abc"); h != 0x1a47e90b {
		t.Errorf("Token(\"abc\") = %#x", h)
	}
	if Token("東京都") != Token("東京都") {
		t.Error("hash not deterministic")
	}
	if Token("東京") == Token("京都") {
		t.Error("suspicious collision")
	}
}

package security

import "testing"

func TestTokenDigest(t *testing.T) {
	d1 := TokenDigest("refresh-token-a")
	d2 := TokenDigest("refresh-token-a")
	d3 := TokenDigest("refresh-token-b")

	if d1 != d2 {
		t.Fatalf("digest not deterministic: %q vs %q", d1, d2)
	}
	if d1 == d3 {
		t.Fatal("different tokens produced the same digest")
	}
	if len(d1) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(d1))
	}
}

func TestTokenDigestEqual(t *testing.T) {
	stored := TokenDigest("refresh-token-a")

	if !TokenDigestEqual("refresh-token-a", stored) {
		t.Fatal("matching token rejected")
	}
	if TokenDigestEqual("refresh-token-b", stored) {
		t.Fatal("non-matching token accepted")
	}
	if TokenDigestEqual("refresh-token-a", "") {
		t.Fatal("empty stored digest accepted")
	}
	if TokenDigestEqual("refresh-token-a", stored[:32]) {
		t.Fatal("truncated digest accepted")
	}
}

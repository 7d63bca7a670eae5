package otp

import "testing"

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q: want 6 digits", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	// 50 draws colliding down to a handful of values would mean broken randomness.
	if len(seen) < 10 {
		t.Errorf("only %d distinct codes in 50 draws", len(seen))
	}
}

func TestDigestEqual(t *testing.T) {
	code, err := GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	stored := Digest(code)
	if !DigestEqual(code, stored) {
		t.Error("DigestEqual should match a code against its own digest")
	}
	if DigestEqual("000000", stored) && code != "000000" {
		t.Error("DigestEqual matched a different code")
	}
	if DigestEqual(code, Digest("999999")) && code != "999999" {
		t.Error("DigestEqual matched a different digest")
	}
}

func TestDigestDeterministic(t *testing.T) {
	if Digest("123456") != Digest("123456") {
		t.Error("Digest should be deterministic")
	}
	if Digest("123456") == Digest("654321") {
		t.Error("Digest should differ for different codes")
	}
}

package recovery

import (
	"regexp"
	"testing"
)

var codeShape = regexp.MustCompile(`^[a-z0-9]{4}-[a-z0-9]{4}$`)

// Invariant 3: Generate(n) returns n distinct, correctly shaped codes.
func TestGenerateShapeAndDistinctness(t *testing.T) {
	codes, err := Generate(20)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(codes) != 20 {
		t.Fatalf("expected 20 codes, got %d", len(codes))
	}

	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if !codeShape.MatchString(c) {
			t.Errorf("code %q does not match ^[a-z0-9]{4}-[a-z0-9]{4}$", c)
		}
		if _, dup := seen[c]; dup {
			t.Errorf("duplicate code in batch: %q", c)
		}
		seen[c] = struct{}{}
	}
}

func TestGenerateRejectsNonPositiveCount(t *testing.T) {
	if _, err := Generate(0); err == nil {
		t.Error("expected error for n=0")
	}
	if _, err := Generate(-3); err == nil {
		t.Error("expected error for negative n")
	}
}

// TestVerifySingleUse checks that a code verified once is marked Used and
// a second submission of the same code is rejected.
func TestVerifySingleUse(t *testing.T) {
	codes, err := Generate(5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	hashed, err := HashAll(codes)
	if err != nil {
		t.Fatalf("HashAll: %v", err)
	}

	matched, updated := Verify(codes[0], hashed)
	if !matched {
		t.Fatal("expected first verify to match")
	}
	if !updated[0].Used {
		t.Error("expected matched entry to be marked used")
	}

	matchedAgain, updatedAgain := Verify(codes[0], updated)
	if matchedAgain {
		t.Error("expected second verify of the same code to fail")
	}

	matchedInvalid, _ := Verify("invalid-code", updatedAgain)
	if matchedInvalid {
		t.Error("expected verify of an unrelated code to fail")
	}
}

// Verify never mutates the caller's slice.
func TestVerifyDoesNotMutateInput(t *testing.T) {
	codes, _ := Generate(3)
	hashed, _ := HashAll(codes)

	originalUsed := hashed[0].Used
	_, _ = Verify(codes[0], hashed)

	if hashed[0].Used != originalUsed {
		t.Error("Verify mutated the caller's HashedCode slice in place")
	}
}

func TestVerifyNormalizesWhitespaceAndCase(t *testing.T) {
	codes, _ := Generate(1)
	hashed, _ := HashAll(codes)

	uppercased := "  " + upper(codes[0]) + "  "
	matched, _ := Verify(uppercased, hashed)
	if !matched {
		t.Error("expected Verify to accept whitespace-padded, uppercased input")
	}
}

func upper(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		out[i] = c
	}
	return string(out)
}

func TestHashAllPreservesOrder(t *testing.T) {
	codes, _ := Generate(4)
	hashed, err := HashAll(codes)
	if err != nil {
		t.Fatalf("HashAll: %v", err)
	}
	if len(hashed) != len(codes) {
		t.Fatalf("expected %d hashed entries, got %d", len(codes), len(hashed))
	}
	for i := range codes {
		matched, _ := Verify(codes[i], []HashedCode{hashed[i]})
		if !matched {
			t.Errorf("hashed entry at index %d does not correspond to code %q", i, codes[i])
		}
	}
}

package utils

import "testing"

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode(6)
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit %q in code %q", r, code)
			}
		}
		seen[code] = true
	}
	// 50 draws from a million values colliding down to a handful would
	// indicate a broken generator.
	if len(seen) < 40 {
		t.Errorf("suspiciously low variety: %d distinct codes in 50 draws", len(seen))
	}
}

func TestGenerateCodeBounds(t *testing.T) {
	if _, err := GenerateCode(0); err == nil {
		t.Error("expected error for zero length")
	}
	if _, err := GenerateCode(11); err == nil {
		t.Error("expected error for oversized length")
	}
	code, err := GenerateCode(4)
	if err != nil {
		t.Fatalf("GenerateCode(4) failed: %v", err)
	}
	if len(code) != 4 {
		t.Errorf("expected 4 digits, got %q", code)
	}
}

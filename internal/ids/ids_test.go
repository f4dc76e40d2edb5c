package ids

import "testing"

func TestNewIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestShareCodeShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := ShareCode()
		if !ValidShareCode(code) {
			t.Fatalf("invalid share code %q", code)
		}
	}
}

func TestValidShareCodeRejects(t *testing.T) {
	for _, code := range []string{"", "ABC12", "ABC1234", "abc123", "AB-123"} {
		if ValidShareCode(code) {
			t.Fatalf("expected %q to be rejected", code)
		}
	}
}

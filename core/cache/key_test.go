package cache

import "testing"

// TestComputeKey_Deterministic verifies that identical parameter tuples
// always hash to the identical key across repeated calls.
func TestComputeKey_Deterministic(t *testing.T) {
	params := KeyParams{Content: "Hello", Selector: "nova", Language: "en-US", Provider: "openai", Format: "mp3"}

	first := ComputeKey(params)
	for i := 0; i < 10; i++ {
		if got := ComputeKey(params); got != first {
			t.Fatalf("ComputeKey() not deterministic: %q vs %q", got, first)
		}
	}
}

// TestComputeKey_Uniqueness verifies that changing exactly one dimension of
// the tuple always changes the key.
func TestComputeKey_Uniqueness(t *testing.T) {
	base := KeyParams{Content: "Hello", Selector: "nova", Language: "en-US", Provider: "vendorA", Format: "m4a"}

	variants := []struct {
		name   string
		mutate func(KeyParams) KeyParams
	}{
		{"different content", func(p KeyParams) KeyParams { p.Content = "Goodbye"; return p }},
		{"different voice", func(p KeyParams) KeyParams { p.Selector = "alloy"; return p }},
		{"different language", func(p KeyParams) KeyParams { p.Language = "it-IT"; return p }},
		{"different provider", func(p KeyParams) KeyParams { p.Provider = "vendorB"; return p }},
		{"different format", func(p KeyParams) KeyParams { p.Format = "mp3"; return p }},
	}

	baseKey := ComputeKey(base)
	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeKey(tt.mutate(base)); got == baseKey {
				t.Errorf("ComputeKey() collision: %s must produce a different key", tt.name)
			}
		})
	}
}

// TestComputeKey_NoFieldBleed guards the length-prefix encoding: moving a
// character across a field boundary must not produce the same hash.
func TestComputeKey_NoFieldBleed(t *testing.T) {
	a := ComputeKey(KeyParams{Content: "ab", Selector: "c"})
	b := ComputeKey(KeyParams{Content: "a", Selector: "bc"})
	if a == b {
		t.Errorf("ComputeKey() field boundary bleed: %q == %q", a, b)
	}
}

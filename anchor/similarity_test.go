package anchor

import (
	"math"
	"testing"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"qu1ck br0wn", "quick brown", 2},
		{"αβγ", "αβδ", 1},
	}
	for _, tt := range tests {
		if got := EditDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := EditDistance(tt.b, tt.a); got != tt.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestSimilarity_Identical(t *testing.T) {
	for _, s := range []string{"", "a", "the quick brown fox"} {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %f, want 1.0", s, s, got)
		}
	}
}

func TestSimilarity_DecreasesWithEdits(t *testing.T) {
	base := "the quick brown fox"
	variants := []string{
		"the quick brown fox",
		"the quick brown fix",
		"the qu1ck br0wn fix",
		"the qu1ck br0wn f1x!",
	}
	prev := math.Inf(1)
	for _, v := range variants {
		sim := Similarity(base, v)
		if sim >= prev {
			t.Errorf("Similarity(%q, %q) = %f, want < %f", base, v, sim, prev)
		}
		prev = sim
	}
}

func TestSimilarity_CorruptedRegion(t *testing.T) {
	// Two substitutions over eleven characters.
	got := Similarity("qu1ck br0wn", "quick brown")
	want := 1.0 - 2.0/11.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity = %f, want %f", got, want)
	}
}

package anchor

import (
	"math"
	"testing"
)

func TestResolveExact(t *testing.T) {
	idx := BuildIndex(NewMemDocument([]string{"The quick brown fox"}))
	r := NewResolver(idx)

	m, ok := r.ResolveExact("quick brown", 4, 15)
	if !ok {
		t.Fatal("exact anchor not found")
	}
	if m.Start != 4 || m.End != 15 {
		t.Errorf("match range = [%d, %d), want [4, 15)", m.Start, m.End)
	}
	if m.Similarity != 1.0 {
		t.Errorf("similarity = %f, want 1.0", m.Similarity)
	}
	if len(m.Segments) != 1 {
		t.Errorf("got %d segments, want 1", len(m.Segments))
	}
}

func TestResolveExact_SplitSegments(t *testing.T) {
	idx := BuildIndex(NewMemDocument([]string{"The qui", "ck bro", "wn fox"}))
	r := NewResolver(idx)

	m, ok := r.ResolveExact("quick brown", 4, 15)
	if !ok {
		t.Fatal("exact anchor not found")
	}
	if len(m.Segments) != 3 {
		t.Errorf("got %d segments, want 3", len(m.Segments))
	}
	if m.Similarity != 1.0 {
		t.Errorf("similarity = %f, want 1.0", m.Similarity)
	}
}

func TestResolveExact_RejectsStaleOffsets(t *testing.T) {
	idx := BuildIndex(NewMemDocument([]string{"The quick brown fox"}))
	r := NewResolver(idx)

	tests := []struct {
		name       string
		raw        string
		start, end int
	}{
		{"offsets point at wrong text", "quick brown", 0, 3},
		{"offsets past document", "quick brown", 100, 111},
		{"inverted range", "quick brown", 15, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := r.ResolveExact(tt.raw, tt.start, tt.end); ok {
				t.Error("stale offsets accepted")
			}
		})
	}
}

func TestResolveFuzzy_CorruptedText(t *testing.T) {
	idx := BuildIndex(NewMemDocument([]string{"The quick brown fox"}))
	r := NewResolver(idx)

	ms := r.ResolveFuzzy("qu1ck br0wn", -1)
	if len(ms) == 0 {
		t.Fatal("corrupted text not located")
	}
	best := ms[0]
	if best.Start != 4 || best.End != 15 {
		t.Errorf("best match = [%d, %d), want [4, 15)", best.Start, best.End)
	}
	want := 1.0 - 2.0/11.0
	if math.Abs(best.Similarity-want) > 1e-9 {
		t.Errorf("similarity = %f, want %f", best.Similarity, want)
	}
}

func TestResolveFuzzy_NormalizedSymbols(t *testing.T) {
	idx := BuildIndex(NewMemDocument([]string{"the alpha-helix structure"}))
	r := NewResolver(idx)

	ms := r.ResolveFuzzy("α-helix", -1)
	if len(ms) == 0 {
		t.Fatal("symbol query not located")
	}
	if got := idx.Slice(ms[0].Start, ms[0].End); got != "alpha-helix" {
		t.Errorf("matched region = %q, want %q", got, "alpha-helix")
	}
}

func TestResolveFuzzy_PageHint(t *testing.T) {
	idx := BuildIndex(NewMemDocument(
		[]string{"nothing of interest here"},
		[]string{"the quick brown fox appears"},
	))
	r := NewResolver(idx)

	if ms := r.ResolveFuzzy("quick brown fox", 0); len(ms) != 0 {
		t.Errorf("page 0 scan found %d matches, want 0", len(ms))
	}
	ms := r.ResolveFuzzy("quick brown fox", 1)
	if len(ms) == 0 {
		t.Fatal("page 1 scan found nothing")
	}
	if ms[0].Page != 1 {
		t.Errorf("match on page %d, want 1", ms[0].Page)
	}
}

func TestResolveFuzzy_NoMatchIsEmpty(t *testing.T) {
	idx := BuildIndex(NewMemDocument([]string{"The quick brown fox"}))
	r := NewResolver(idx)

	for _, raw := range []string{"zzzz qqqq jjjj", ""} {
		if ms := r.ResolveFuzzy(raw, -1); len(ms) != 0 {
			t.Errorf("ResolveFuzzy(%q) = %d matches, want 0", raw, len(ms))
		}
	}
}

func TestResolveFuzzy_BestFirst(t *testing.T) {
	idx := BuildIndex(NewMemDocument(
		[]string{"a quick brown fox just left while the quick brown fox jumps over"},
	))
	r := NewResolver(idx)

	ms := r.ResolveFuzzy("quick brown fox jumps", -1)
	if len(ms) < 2 {
		t.Fatalf("got %d matches, want at least 2", len(ms))
	}
	for i := 1; i < len(ms); i++ {
		if ms[i].Similarity > ms[i-1].Similarity {
			t.Fatalf("matches not sorted by similarity: %f before %f", ms[i-1].Similarity, ms[i].Similarity)
		}
	}
	if got := idx.Slice(ms[0].Start, ms[0].End); got != "quick brown fox jumps" {
		t.Errorf("best match = %q, want %q", got, "quick brown fox jumps")
	}
}

func TestResolve_FallsBackToFuzzy(t *testing.T) {
	idx := BuildIndex(NewMemDocument([]string{"The quick brown fox"}))
	r := NewResolver(idx)

	start, end := 0, 3 // stale relative to the current rendering
	m, kind := r.Resolve("quick brown", &start, &end, -1)
	if kind != ResolvedFuzzy {
		t.Fatalf("kind = %s, want %s", kind, ResolvedFuzzy)
	}
	if m.Start != 4 || m.End != 15 {
		t.Errorf("match = [%d, %d), want [4, 15)", m.Start, m.End)
	}

	goodStart, goodEnd := 4, 15
	if _, kind := r.Resolve("quick brown", &goodStart, &goodEnd, -1); kind != ResolvedExact {
		t.Errorf("kind = %s, want %s", kind, ResolvedExact)
	}

	if _, kind := r.Resolve("zzzz qqqq jjjj", nil, nil, -1); kind != ResolvedNone {
		t.Errorf("kind = %s, want %s", kind, ResolvedNone)
	}
}

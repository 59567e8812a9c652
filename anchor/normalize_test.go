package anchor

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		want         string
		wantStripped string
	}{
		{
			name:         "plain text lowercased",
			in:           "The Quick Brown Fox",
			want:         "the quick brown fox",
			wantStripped: "thequickbrownfox",
		},
		{
			name:         "quotes dropped entirely",
			in:           `“Hello, World!”`,
			want:         "hello world",
			wantStripped: "helloworld",
		},
		{
			name:         "greek letters spelled out",
			in:           "α-helix",
			want:         "alpha helix",
			wantStripped: "alphahelix",
		},
		{
			name:         "uppercase greek",
			in:           "Δx",
			want:         "deltax",
			wantStripped: "deltax",
		},
		{
			name:         "math symbols spelled out",
			in:           "a ≤ b",
			want:         "a leq b",
			wantStripped: "aleqb",
		},
		{
			name:         "punctuation becomes one space",
			in:           "foo--bar__baz",
			want:         "foo bar baz",
			wantStripped: "foobarbaz",
		},
		{
			name:         "whitespace collapsed and trimmed",
			in:           "  spaced \t  out  ",
			want:         "spaced out",
			wantStripped: "spacedout",
		},
		{
			name:         "compatibility forms folded",
			in:           "E = mc²",
			want:         "e mc2",
			wantStripped: "emc2",
		},
		{
			name:         "accents folded",
			in:           "café",
			want:         "cafe",
			wantStripped: "cafe",
		},
		{
			name:         "latex command expanded",
			in:           `the \alpha subunit`,
			want:         "the alpha subunit",
			wantStripped: "thealphasubunit",
		},
		{
			name:         "latex longest name wins",
			in:           `\varepsilon`,
			want:         "epsilon",
			wantStripped: "epsilon",
		},
		{
			name:         "latex arrow",
			in:           `x \to y`,
			want:         "x rightarrow y",
			wantStripped: "xrightarrowy",
		},
		{
			name:         "unknown backslash run becomes space",
			in:           `a\zzz b`,
			want:         "a zzz b",
			wantStripped: "azzzb",
		},
		{
			name:         "empty input",
			in:           "",
			want:         "",
			wantStripped: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(tt.in)
			if n.Text != tt.want {
				t.Errorf("Normalize(%q).Text = %q, want %q", tt.in, n.Text, tt.want)
			}
			if n.Stripped != tt.wantStripped {
				t.Errorf("Normalize(%q).Stripped = %q, want %q", tt.in, n.Stripped, tt.wantStripped)
			}
			if len(n.ToOriginal) != len([]rune(n.Text)) {
				t.Errorf("ToOriginal has %d entries for %d runes", len(n.ToOriginal), len([]rune(n.Text)))
			}
			if len(n.StrippedToText) != len([]rune(n.Stripped)) {
				t.Errorf("StrippedToText has %d entries for %d runes", len(n.StrippedToText), len([]rune(n.Stripped)))
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"The quick brown fox",
		`“Curly” quotes and α-helices`,
		`\sum_{i} x_i \leq ∞`,
		"  messy\t whitespace  ",
	}
	for _, in := range inputs {
		once := Normalize(in).Text
		twice := Normalize(once).Text
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize_MappingMonotonic(t *testing.T) {
	inputs := []string{
		"The quick brown fox",
		`“Hello, World!”`,
		`the \alpha subunit of α-helix`,
		"E = mc² and café",
	}
	for _, in := range inputs {
		n := Normalize(in)
		for i := 1; i < len(n.ToOriginal); i++ {
			if n.ToOriginal[i] < n.ToOriginal[i-1] {
				t.Fatalf("ToOriginal not monotonic for %q at %d: %v", in, i, n.ToOriginal)
			}
		}
		origRunes := len([]rune(in))
		for i, orig := range n.ToOriginal {
			if orig < 0 || orig >= origRunes {
				t.Fatalf("ToOriginal[%d] = %d out of range for %q", i, orig, in)
			}
		}
	}
}

func TestNormalize_DroppedPositionsAbsent(t *testing.T) {
	n := Normalize(`a "b`)
	// original runes: a, space, quote, b
	if n.FromOriginal[2] != -1 {
		t.Errorf("quote position mapped to %d, want -1", n.FromOriginal[2])
	}
	if n.FromOriginal[0] != 0 {
		t.Errorf("first rune mapped to %d, want 0", n.FromOriginal[0])
	}
}

func TestNormalized_StrippedRange(t *testing.T) {
	n := Normalize("The quick brown fox")
	// "quickbrown" in the stripped text, back to original [4, 15).
	start, end, ok := n.StrippedRange(3, 13)
	if !ok {
		t.Fatal("StrippedRange(3, 13) not ok")
	}
	if start != 4 || end != 15 {
		t.Errorf("StrippedRange(3, 13) = [%d, %d), want [4, 15)", start, end)
	}

	if _, _, ok := n.StrippedRange(5, 5); ok {
		t.Error("empty range should not resolve")
	}
	if _, _, ok := n.StrippedRange(-1, 3); ok {
		t.Error("negative start should not resolve")
	}
	if _, _, ok := n.StrippedRange(0, 1000); ok {
		t.Error("out-of-bounds end should not resolve")
	}
}

package anchor

import (
	"sort"
	"strings"
)

// Default similarity thresholds and seed length. Empirically chosen in
// the system this module anchors for; kept as configurable fields rather
// than re-derived.
const (
	DefaultExactThreshold = 0.7
	DefaultFuzzyThreshold = 0.5
	DefaultSeedLength     = 15
)

// ResolveKind reports which path located a highlight.
type ResolveKind string

const (
	ResolvedExact ResolveKind = "exact"
	ResolvedFuzzy ResolveKind = "fuzzy"
	ResolvedNone  ResolveKind = "none"
)

// Resolver locates the segments of a stored highlight inside one built
// Index. It is a pure query over the index: it never mutates state, and
// given identical rendered text its results are deterministic. A Resolver
// is valid only for the lifetime of the Index it was created for.
type Resolver struct {
	// ExactThreshold is the minimum similarity between a stored raw text
	// and the text at its stored offsets for the offsets to be trusted.
	ExactThreshold float64

	// FuzzyThreshold is the minimum similarity for a fuzzy window to be
	// accepted as a match.
	FuzzyThreshold float64

	// SeedLength is the number of leading runes of the space-stripped
	// normalized target used to seed the fuzzy scan.
	SeedLength int

	idx  *Index
	norm map[int]*Normalized
}

// NewResolver creates a Resolver over the given index with the default
// thresholds.
func NewResolver(idx *Index) *Resolver {
	return &Resolver{
		ExactThreshold: DefaultExactThreshold,
		FuzzyThreshold: DefaultFuzzyThreshold,
		SeedLength:     DefaultSeedLength,
		idx:            idx,
		norm:           make(map[int]*Normalized),
	}
}

// pageNorm returns the normalization of one page's text, built lazily and
// cached for the lifetime of the resolver.
func (r *Resolver) pageNorm(page int) *Normalized {
	if n, ok := r.norm[page]; ok {
		return n
	}
	n := Normalize(r.idx.PageTexts[page])
	r.norm[page] = n
	return n
}

// ResolveExact locates the segments overlapping the stored global range
// [start, end) and validates the stored raw text against the text found
// there. The match is accepted only above ExactThreshold, guarding
// against offsets that are stale relative to the current rendering.
func (r *Resolver) ResolveExact(rawText string, start, end int) (Match, bool) {
	if start < 0 || end <= start || start >= r.idx.Total {
		return Match{}, false
	}
	segs := r.idx.Overlapping(start, end)
	if len(segs) == 0 {
		return Match{}, false
	}

	found := r.idx.Slice(start, end)
	sim := Similarity(strings.ToLower(rawText), strings.ToLower(found))
	if sim <= r.ExactThreshold {
		return Match{}, false
	}
	return Match{
		Page:       segs[0].Page,
		Start:      start,
		End:        end,
		Segments:   segs,
		Similarity: sim,
	}, true
}

// ResolveFuzzy locates the best approximate occurrences of rawText. When
// page is >= 0 only that page is scanned, otherwise the whole document.
// Matches are returned sorted descending by similarity; callers take the
// first. An empty result means the text could not be found anywhere above
// the threshold, and the caller must surface "not found" rather than
// silently highlighting nothing.
func (r *Resolver) ResolveFuzzy(rawText string, page int) []Match {
	target := Normalize(rawText)
	st := []rune(target.Stripped)
	if len(st) == 0 {
		return nil
	}
	seedLen := min(r.SeedLength, len(st))
	seed := st[:seedLen]

	first, last := 0, r.idx.PageCount()-1
	if page >= 0 {
		if page > last {
			return nil
		}
		first, last = page, page
	}

	var matches []Match
	seen := make(map[[2]int]bool)
	for p := first; p <= last; p++ {
		doc := r.pageNorm(p)
		hay := []rune(doc.Stripped)

		occs := runeOccurrences(hay, seed)
		if len(occs) == 0 {
			// No literal seed hit; the seed itself may be corrupted.
			// Fall back to scoring the seed against every position.
			occs = r.approxOccurrences(hay, seed)
		}

		for _, occ := range occs {
			windowLen := max(len(st), 2*seedLen)
			window := hay[occ:min(occ+windowLen, len(hay))]
			clipped := window[:min(len(window), len(st))]
			sim := max(Similarity(string(st), string(window)),
				Similarity(string(st), string(clipped)))
			if sim <= r.FuzzyThreshold {
				continue
			}

			localStart, localEnd, ok := doc.StrippedRange(occ, min(occ+len(st), len(hay)))
			if !ok {
				continue
			}
			start := r.idx.PageStarts[p] + localStart
			end := r.idx.PageStarts[p] + localEnd
			if seen[[2]int{start, end}] {
				continue
			}
			seen[[2]int{start, end}] = true

			segs := r.idx.Overlapping(start, end)
			if len(segs) == 0 {
				continue
			}
			matches = append(matches, Match{
				Page:       p,
				Start:      start,
				End:        end,
				Segments:   segs,
				Similarity: Similarity(strings.ToLower(rawText), strings.ToLower(r.idx.Slice(start, end))),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// Resolve attempts exact anchoring when offsets are present and falls
// back to the fuzzy scan, reporting which path succeeded.
func (r *Resolver) Resolve(rawText string, start, end *int, page int) (Match, ResolveKind) {
	if start != nil && end != nil {
		if m, ok := r.ResolveExact(rawText, *start, *end); ok {
			return m, ResolvedExact
		}
	}
	if ms := r.ResolveFuzzy(rawText, page); len(ms) > 0 {
		return ms[0], ResolvedFuzzy
	}
	return Match{}, ResolvedNone
}

// runeOccurrences returns every index at which needle occurs in hay,
// overlapping occurrences included.
func runeOccurrences(hay, needle []rune) []int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return nil
	}
	var out []int
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			out = append(out, i)
		}
	}
	return out
}

// approxOccurrences returns the positions whose seed-length window scores
// above the fuzzy threshold against the seed, keeping only local maxima
// so one corrupted region does not yield a pile of overlapping windows.
func (r *Resolver) approxOccurrences(hay, seed []rune) []int {
	if len(seed) == 0 || len(seed) > len(hay) {
		return nil
	}
	bestPos, bestSim := -1, 0.0
	var out []int
	flush := func() {
		if bestPos >= 0 {
			out = append(out, bestPos)
		}
		bestPos, bestSim = -1, 0.0
	}
	for i := 0; i+len(seed) <= len(hay); i++ {
		if bestPos >= 0 && i >= bestPos+len(seed) {
			flush()
		}
		sim := Similarity(string(seed), string(hay[i:i+len(seed)]))
		if sim <= r.FuzzyThreshold {
			continue
		}
		if bestPos < 0 || sim > bestSim {
			bestPos, bestSim = i, sim
		}
	}
	flush()
	return out
}

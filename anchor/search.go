package anchor

import (
	"errors"
	"unicode"
)

// ErrSearchUnavailable is returned while the document's text layer is
// unavailable and search would silently return nothing.
var ErrSearchUnavailable = errors.New("search unavailable: document text layer not ready")

// Default search styling classes. Search styling is kept disjoint from
// highlight styling so clearing one never touches the other.
const (
	ClassSearchMatch        = "search-match"
	ClassSearchMatchCurrent = "search-match-current"
)

// Search is the interactive full-text search over an indexed document.
// State is ephemeral and rebuilt per query.
type Search struct {
	MatchClass   string
	CurrentClass string

	resolver *Resolver
	results  []Match
	query    string
	explicit string
	current  int
	notFound bool
	disabled bool
}

// NewSearch creates a search engine over the resolver's index.
func NewSearch(r *Resolver) *Search {
	return &Search{
		MatchClass:   ClassSearchMatch,
		CurrentClass: ClassSearchMatchCurrent,
		resolver:     r,
	}
}

// SetAvailable toggles degraded mode. While unavailable, Perform refuses
// to run instead of silently returning empty results.
func (s *Search) SetAvailable(ok bool) { s.disabled = !ok }

// Available reports whether search can run.
func (s *Search) Available() bool { return !s.disabled }

// Query returns the active query string.
func (s *Search) Query() string { return s.query }

// Results returns the located matches in document order (or similarity
// order after a fuzzy fallback).
func (s *Search) Results() []Match { return s.results }

// CurrentIndex returns the index of the current match.
func (s *Search) CurrentIndex() int { return s.current }

// NotFound reports that the last non-empty query matched nothing.
func (s *Search) NotFound() bool { return s.notFound }

// Perform runs the query across the whole indexed document. An empty
// query clears prior results. Every case-insensitive exact occurrence is
// recorded per page; only when zero exact occurrences exist anywhere does
// the fuzzy scan over the whole document take over.
func (s *Search) Perform(query string) error {
	if s.disabled {
		return ErrSearchUnavailable
	}

	s.clearStyling()
	s.results = nil
	s.current = 0
	s.notFound = false
	s.query = query
	if query == "" {
		return nil
	}

	needle := lowerRunes([]rune(query))
	idx := s.resolver.idx
	for p, text := range idx.PageTexts {
		hay := lowerRunes([]rune(text))
		ordinal := 0
		for i := 0; i+len(needle) <= len(hay); {
			if !runesEqual(hay[i:i+len(needle)], needle) {
				i++
				continue
			}
			start := idx.PageStarts[p] + i
			end := start + len(needle)
			segs := idx.Overlapping(start, end)
			if len(segs) > 0 {
				s.results = append(s.results, Match{
					Page:       p,
					Ordinal:    ordinal,
					Start:      start,
					End:        end,
					Segments:   segs,
					Similarity: 1.0,
				})
				ordinal++
			}
			i += len(needle)
		}
	}

	if len(s.results) == 0 {
		s.results = s.resolver.ResolveFuzzy(query, -1)
		for i := range s.results {
			s.results[i].Ordinal = i
		}
	}
	if len(s.results) == 0 {
		s.notFound = true
		return nil
	}

	for _, m := range s.results {
		s.style(m, s.MatchClass)
	}
	s.focusCurrent()
	return nil
}

// Next advances to the next match, wrapping past the last back to the
// first.
func (s *Search) Next() {
	if len(s.results) == 0 {
		return
	}
	s.blurCurrent()
	s.current = (s.current + 1) % len(s.results)
	s.focusCurrent()
}

// Previous steps to the previous match, wrapping past the first back to
// the last.
func (s *Search) Previous() {
	if len(s.results) == 0 {
		return
	}
	s.blurCurrent()
	s.current = (s.current - 1 + len(s.results)) % len(s.results)
	s.focusCurrent()
}

// Clear removes search styling and results. Highlight styling is never
// touched.
func (s *Search) Clear() {
	s.clearStyling()
	s.results = nil
	s.query = ""
	s.current = 0
	s.notFound = false
}

// SetExplicitTerm sets an externally provided search term. Changing it to
// a non-empty value re-triggers the search; changing it to empty clears.
func (s *Search) SetExplicitTerm(term string) error {
	if term == s.explicit {
		return nil
	}
	s.explicit = term
	if term == "" {
		s.Clear()
		return nil
	}
	return s.Perform(term)
}

func (s *Search) focusCurrent() {
	m := s.results[s.current]
	s.style(m, s.CurrentClass)
	if len(m.Segments) > 0 {
		m.Segments[0].Node.ScrollIntoView()
	}
}

func (s *Search) blurCurrent() {
	s.unstyle(s.results[s.current], s.CurrentClass)
}

func (s *Search) style(m Match, class string) {
	for _, seg := range m.Segments {
		seg.Node.AddClass(class)
	}
}

func (s *Search) unstyle(m Match, class string) {
	for _, seg := range m.Segments {
		seg.Node.RemoveClass(class)
	}
}

func (s *Search) clearStyling() {
	for _, m := range s.results {
		s.unstyle(m, s.MatchClass)
		s.unstyle(m, s.CurrentClass)
	}
}

// lowerRunes lowercases rune by rune, preserving rune count so offsets
// stay aligned with the original text.
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package anchor

import "unicode/utf8"

// Index is the page-spanning offset index of a rendered document. It is
// pure data: rebuilding produces a new Index and the old one is dropped.
type Index struct {
	// Segments holds every non-empty leaf text segment in document
	// order, with contiguous global rune offsets.
	Segments []Segment

	// PageStarts[p] is the global offset of the first rune of page p.
	PageStarts []int

	// PageTexts[p] is the concatenation of page p's leaf texts.
	PageTexts []string

	// Total is the length of the virtual document text in runes,
	// including the implicit separator between consecutive pages.
	Total int
}

// BuildIndex walks the rendered pages in order and assigns each leaf text
// segment a half-open offset range from one running rune counter. The
// counter is not reset between pages; one separator position is reserved
// between consecutive pages. Leaves with empty text are skipped without
// breaking the walk.
func BuildIndex(view DocumentView) *Index {
	idx := &Index{}

	offset := 0
	for p, page := range view.Pages() {
		if p > 0 {
			offset++ // implicit page separator
		}
		idx.PageStarts = append(idx.PageStarts, offset)

		var text []byte
		walkLeaves(page.Root(), func(n SegmentNode) {
			t := n.Text()
			if t == "" {
				return
			}
			length := utf8.RuneCountInString(t)
			idx.Segments = append(idx.Segments, Segment{
				Node:  n,
				Start: offset,
				End:   offset + length,
				Page:  p,
			})
			offset += length
			text = append(text, t...)
		})
		idx.PageTexts = append(idx.PageTexts, string(text))
	}

	idx.Total = offset
	return idx
}

// walkLeaves visits the leaves of a page's text tree depth-first, in
// document order.
func walkLeaves(n SegmentNode, visit func(SegmentNode)) {
	if n == nil {
		return
	}
	children := n.Children()
	if len(children) == 0 {
		visit(n)
		return
	}
	for _, c := range children {
		walkLeaves(c, visit)
	}
}

// PageCount returns the number of indexed pages.
func (idx *Index) PageCount() int { return len(idx.PageStarts) }

// Overlapping returns all segments with a non-empty intersection with the
// global range [start, end). Segments are offset-ordered, so the scan
// exits as soon as a segment starts at or past the range end.
func (idx *Index) Overlapping(start, end int) []Segment {
	var out []Segment
	for _, s := range idx.Segments {
		if s.Start >= end {
			break
		}
		if s.Overlaps(start, end) {
			out = append(out, s)
		}
	}
	return out
}

// SegmentOf returns the indexed segment backed by the given node.
func (idx *Index) SegmentOf(node SegmentNode) (Segment, bool) {
	for _, s := range idx.Segments {
		if s.Node == node {
			return s, true
		}
	}
	return Segment{}, false
}

// Slice returns the text of the global range [start, end), with a single
// space standing in for the separator between pages. Out-of-range
// positions are clamped.
func (idx *Index) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > idx.Total {
		end = idx.Total
	}
	if start >= end {
		return ""
	}

	var out []rune
	for p, text := range idx.PageTexts {
		pageStart := idx.PageStarts[p]
		runes := []rune(text)
		pageEnd := pageStart + len(runes)
		if pageEnd <= start {
			continue
		}
		if pageStart >= end {
			break
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		lo := max(start-pageStart, 0)
		hi := min(end-pageStart, len(runes))
		out = append(out, runes[lo:hi]...)
	}
	return string(out)
}

// replace substitutes one segment entry with an ordered list of
// sub-segments covering the same range. Used by the painter after
// splitting a leaf so the index stays coherent for the rest of the pass.
func (idx *Index) replace(old Segment, subs []Segment) {
	for i, s := range idx.Segments {
		if s.Node == old.Node && s.Start == old.Start && s.End == old.End {
			replaced := make([]Segment, 0, len(idx.Segments)+len(subs)-1)
			replaced = append(replaced, idx.Segments[:i]...)
			replaced = append(replaced, subs...)
			replaced = append(replaced, idx.Segments[i+1:]...)
			idx.Segments = replaced
			return
		}
	}
}

// Package anchor relocates stored highlight spans inside the current
// rendering of a paginated document and drives full-text search off the
// same segment index.
//
// The rendering engine is out of scope: it is consumed through the
// DocumentView / PageView / SegmentNode interfaces, which model the
// rendered text layer as an abstract tree of text segments. A fresh view
// must be fetched for every indexing pass; segments from a previous pass
// must never be dereferenced after a rebuild.
//
// All offsets in this package are rune offsets into a single virtual
// concatenation of all pages' text, with one implicit separator position
// between consecutive pages.
package anchor

// ClickEvent carries the pointer coordinates of a click on a segment.
type ClickEvent struct {
	X, Y float64

	stopped bool
}

// StopPropagation prevents outer handlers from seeing this event.
func (e *ClickEvent) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *ClickEvent) Stopped() bool { return e.stopped }

// ClickHandler handles a click on a segment node.
type ClickHandler func(*ClickEvent)

// SegmentNode is one node of a page's rendered text tree. Leaves carry
// text; interior nodes only group their children. Bindings to a real
// renderer (a DOM text layer) implement this; MemNode is the in-memory
// reference implementation.
type SegmentNode interface {
	// Text returns the node's text. For interior nodes this is the
	// concatenation of the children's text.
	Text() string

	// Children returns the ordered child nodes, empty for leaves.
	Children() []SegmentNode

	// Split replaces a leaf node's text with an ordered list of child
	// leaves carrying the given parts. The parts must concatenate to the
	// node's current text exactly.
	Split(parts []string) ([]SegmentNode, error)

	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	SetAttribute(key, value string)
	RemoveAttribute(key string)
	Attribute(key string) (string, bool)

	OnClick(h ClickHandler)

	ScrollIntoView()
}

// PageView is one rendered page of the document.
type PageView interface {
	// Root returns the root of the page's text tree. Leaf text segments
	// are the leaves of this tree, in reading order.
	Root() SegmentNode

	// TextReady reports whether the page's text layer is finalized.
	TextReady() bool
}

// DocumentView is the rendered document as exposed by the rendering
// collaborator. Implementations should return a fresh snapshot of the
// page list on every call rather than a cached one.
type DocumentView interface {
	// PageCount returns the expected number of pages in the document,
	// which may exceed len(Pages()) while rendering is in progress.
	PageCount() int

	// Pages returns the currently rendered pages in order.
	Pages() []PageView
}

// Segment is one leaf text segment of the rendered document with its
// position in the global offset scheme. [Start, End) is half-open.
// Segments are rebuilt on every indexing pass and never persisted.
type Segment struct {
	Node  SegmentNode
	Start int
	End   int
	Page  int
}

// Len returns the segment's length in runes.
func (s Segment) Len() int { return s.End - s.Start }

// Overlaps reports whether the segment has a non-empty intersection with
// the half-open range [start, end): it contains the range start, is fully
// contained in the range, contains the range end, or fully contains the
// range.
func (s Segment) Overlaps(start, end int) bool {
	return s.Start < end && start < s.End
}

// Match is a located occurrence of a piece of text, exact or fuzzy,
// expressed as the ordered set of segments it spans. Start and End are
// global rune offsets of the matched region; Ordinal numbers the match
// among its page's occurrences for search results.
type Match struct {
	Page       int
	Ordinal    int
	Start      int
	End        int
	Segments   []Segment
	Similarity float64
}

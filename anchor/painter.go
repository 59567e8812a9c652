package anchor

import "fmt"

// Default marking classes and identifying attributes. User and assistant
// highlights are styled and identified separately.
const (
	ClassHighlight          = "pdf-highlight"
	ClassAssistantHighlight = "pdf-highlight-assistant"

	AttrHighlightID          = "data-highlight-id"
	AttrAssistantHighlightID = "data-assistant-highlight-id"
)

// HandlerSet bundles the UI callbacks a painted highlight invokes when
// clicked. Nil callbacks are skipped.
type HandlerSet struct {
	// EnterHighlightInteraction switches the UI into its highlight
	// interaction state.
	EnterHighlightInteraction func()

	// SetActiveHighlight marks the clicked highlight, by id, as active.
	SetActiveHighlight func(id string)

	// ShowActionMenu positions the highlight action menu at a point.
	ShowActionMenu func(x, y float64)

	// SetSelectedText selects the highlight's text as a synthetic
	// selection.
	SetSelectedText func(text string)
}

// HighlightMark identifies the highlight being painted.
type HighlightMark struct {
	ID        string
	RawText   string
	Assistant bool
}

// Painter applies visible marking and a click affordance to the segments
// a resolver identified, splitting segments that are only partially
// covered by the match.
type Painter struct {
	HighlightClass       string
	AssistantClass       string
	IDAttribute          string
	AssistantIDAttribute string
}

// NewPainter creates a Painter with the default classes and attributes.
func NewPainter() *Painter {
	return &Painter{
		HighlightClass:       ClassHighlight,
		AssistantClass:       ClassAssistantHighlight,
		IDAttribute:          AttrHighlightID,
		AssistantIDAttribute: AttrAssistantHighlightID,
	}
}

func (p *Painter) class(hm HighlightMark) string {
	if hm.Assistant {
		return p.AssistantClass
	}
	return p.HighlightClass
}

func (p *Painter) idAttribute(hm HighlightMark) string {
	if hm.Assistant {
		return p.AssistantIDAttribute
	}
	return p.IDAttribute
}

// Apply paints the match for the given highlight and wires its click
// handler. Segments fully covered by the match are marked whole;
// partially covered segments are split into unmatched-before, matched,
// and unmatched-after pieces, preserving all other text exactly, with
// only the matched piece styled and click-handled. The index is updated
// in place for split segments so later paints in the same pass see
// coherent offsets.
//
// The first marked segment receives the identifying attribute so later
// code can locate the highlight by id without re-running matching.
// Re-applying the same highlight to an already-marked segment is a no-op.
//
// The returned nodes are the marked pieces, for later unmarking.
func (p *Painter) Apply(idx *Index, m Match, hm HighlightMark, hs HandlerSet) ([]SegmentNode, error) {
	var marked []SegmentNode
	class := p.class(hm)

	for _, seg := range m.Segments {
		if seg.Node.HasClass(class) {
			continue
		}
		innerStart := max(m.Start, seg.Start)
		innerEnd := min(m.End, seg.End)
		if innerStart >= innerEnd {
			continue
		}

		if innerStart == seg.Start && innerEnd == seg.End {
			p.mark(seg.Node, hm, hs)
			marked = append(marked, seg.Node)
			continue
		}

		node, err := p.splitAndMark(idx, seg, innerStart, innerEnd, hm, hs)
		if err != nil {
			return marked, err
		}
		marked = append(marked, node)
	}

	if len(marked) > 0 {
		marked[0].SetAttribute(p.idAttribute(hm), hm.ID)
	}
	return marked, nil
}

// splitAndMark splits a partially covered segment into up to three
// pieces and marks the matched one, replacing the segment's index entry
// with the sub-ranges.
func (p *Painter) splitAndMark(idx *Index, seg Segment, innerStart, innerEnd int, hm HighlightMark, hs HandlerSet) (SegmentNode, error) {
	runes := []rune(seg.Node.Text())
	rs, re := innerStart-seg.Start, innerEnd-seg.Start
	if rs < 0 || re > len(runes) {
		return nil, fmt.Errorf("splitting segment [%d,%d): range [%d,%d) out of bounds", seg.Start, seg.End, innerStart, innerEnd)
	}

	var parts []string
	var bounds [][2]int
	for _, b := range [][2]int{{0, rs}, {rs, re}, {re, len(runes)}} {
		if b[0] < b[1] {
			parts = append(parts, string(runes[b[0]:b[1]]))
			bounds = append(bounds, b)
		}
	}

	nodes, err := seg.Node.Split(parts)
	if err != nil {
		return nil, fmt.Errorf("splitting segment [%d,%d): %w", seg.Start, seg.End, err)
	}
	if len(nodes) != len(parts) {
		return nil, fmt.Errorf("splitting segment [%d,%d): got %d nodes for %d parts", seg.Start, seg.End, len(nodes), len(parts))
	}

	var matched SegmentNode
	subs := make([]Segment, len(nodes))
	for i, n := range nodes {
		subs[i] = Segment{
			Node:  n,
			Start: seg.Start + bounds[i][0],
			End:   seg.Start + bounds[i][1],
			Page:  seg.Page,
		}
		if bounds[i][0] == rs {
			matched = n
		}
	}
	idx.replace(seg, subs)

	p.mark(matched, hm, hs)
	return matched, nil
}

// mark styles one node and attaches the click handler. The handler stops
// propagation and feeds the highlight's raw text, the click point, and
// the highlight id into the handler bundle.
func (p *Painter) mark(node SegmentNode, hm HighlightMark, hs HandlerSet) {
	node.AddClass(p.class(hm))
	node.OnClick(func(ev *ClickEvent) {
		ev.StopPropagation()
		if hs.EnterHighlightInteraction != nil {
			hs.EnterHighlightInteraction()
		}
		if hs.SetActiveHighlight != nil {
			hs.SetActiveHighlight(hm.ID)
		}
		if hs.SetSelectedText != nil {
			hs.SetSelectedText(hm.RawText)
		}
		if hs.ShowActionMenu != nil {
			hs.ShowActionMenu(ev.X, ev.Y)
		}
	})
}

// Unmark strips the highlight's visual state from previously marked
// nodes.
func (p *Painter) Unmark(nodes []SegmentNode, hm HighlightMark) {
	for _, n := range nodes {
		n.RemoveClass(p.class(hm))
		if id, ok := n.Attribute(p.idAttribute(hm)); ok && id == hm.ID {
			n.RemoveAttribute(p.idAttribute(hm))
		}
	}
}

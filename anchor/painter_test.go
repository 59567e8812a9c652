package anchor

import "testing"

func paintDoc() (*MemDocument, *Index) {
	doc := NewMemDocument([]string{"The quick ", "brown fox"})
	return doc, BuildIndex(doc)
}

func TestPainter_WholeSegment(t *testing.T) {
	_, idx := paintDoc()
	p := NewPainter()

	// The second segment [10, 19) is fully covered.
	m := Match{Page: 0, Start: 10, End: 19, Segments: idx.Overlapping(10, 19)}
	marked, err := p.Apply(idx, m, HighlightMark{ID: "h1", RawText: "brown fox"}, HandlerSet{})
	if err != nil {
		t.Fatal(err)
	}
	if len(marked) != 1 {
		t.Fatalf("marked %d nodes, want 1", len(marked))
	}
	node := marked[0].(*MemNode)
	if !node.HasClass(ClassHighlight) {
		t.Error("node missing highlight class")
	}
	if id, _ := node.Attribute(AttrHighlightID); id != "h1" {
		t.Errorf("identifying attribute = %q, want %q", id, "h1")
	}
	if len(node.Children()) != 0 {
		t.Error("fully covered segment should not be split")
	}
}

func TestPainter_PartialSplit(t *testing.T) {
	doc, idx := paintDoc()
	p := NewPainter()

	m := Match{Page: 0, Start: 4, End: 15, Segments: idx.Overlapping(4, 15)}
	marked, err := p.Apply(idx, m, HighlightMark{ID: "h1", RawText: "quick brown"}, HandlerSet{})
	if err != nil {
		t.Fatal(err)
	}
	if len(marked) != 2 {
		t.Fatalf("marked %d nodes, want 2", len(marked))
	}
	if got := marked[0].Text() + marked[1].Text(); got != "quick brown" {
		t.Errorf("marked text = %q, want %q", got, "quick brown")
	}

	// All other text is preserved exactly.
	var total string
	for _, page := range doc.Pages() {
		total += page.Root().Text()
	}
	if total != "The quick brown fox" {
		t.Errorf("document text corrupted: %q", total)
	}

	// The index was updated with the sub-ranges.
	wantRanges := [][2]int{{0, 4}, {4, 10}, {10, 15}, {15, 19}}
	if len(idx.Segments) != len(wantRanges) {
		t.Fatalf("index has %d segments after split, want %d", len(idx.Segments), len(wantRanges))
	}
	for i, w := range wantRanges {
		s := idx.Segments[i]
		if s.Start != w[0] || s.End != w[1] {
			t.Errorf("segment %d = [%d, %d), want [%d, %d)", i, s.Start, s.End, w[0], w[1])
		}
	}

	// Only the matched pieces carry the class.
	for _, s := range idx.Segments {
		covered := s.Start >= 4 && s.End <= 15
		if s.Node.HasClass(ClassHighlight) != covered {
			t.Errorf("segment [%d, %d) marking = %v, want %v", s.Start, s.End, s.Node.HasClass(ClassHighlight), covered)
		}
	}
}

func TestPainter_ClickHandler(t *testing.T) {
	_, idx := paintDoc()
	p := NewPainter()

	var (
		entered    bool
		activeID   string
		menuX      float64
		selectedAs string
	)
	hs := HandlerSet{
		EnterHighlightInteraction: func() { entered = true },
		SetActiveHighlight:        func(id string) { activeID = id },
		ShowActionMenu:            func(x, y float64) { menuX = x },
		SetSelectedText:           func(text string) { selectedAs = text },
	}

	m := Match{Page: 0, Start: 10, End: 19, Segments: idx.Overlapping(10, 19)}
	marked, err := p.Apply(idx, m, HighlightMark{ID: "h1", RawText: "brown fox"}, hs)
	if err != nil {
		t.Fatal(err)
	}

	ev := marked[0].(*MemNode).Click(12.5, 40)
	if !ev.Stopped() {
		t.Error("click did not stop propagation")
	}
	if !entered {
		t.Error("EnterHighlightInteraction not invoked")
	}
	if activeID != "h1" {
		t.Errorf("active highlight = %q, want %q", activeID, "h1")
	}
	if menuX != 12.5 {
		t.Errorf("menu x = %f, want 12.5", menuX)
	}
	if selectedAs != "brown fox" {
		t.Errorf("selected text = %q, want %q", selectedAs, "brown fox")
	}
}

func TestPainter_Idempotent(t *testing.T) {
	_, idx := paintDoc()
	p := NewPainter()

	m := Match{Page: 0, Start: 10, End: 19, Segments: idx.Overlapping(10, 19)}
	hm := HighlightMark{ID: "h1", RawText: "brown fox"}
	first, err := p.Apply(idx, m, hm, HandlerSet{})
	if err != nil {
		t.Fatal(err)
	}

	again, err := p.Apply(idx, Match{Page: 0, Start: 10, End: 19, Segments: idx.Overlapping(10, 19)}, hm, HandlerSet{})
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("re-apply marked %d nodes, want 0", len(again))
	}
	if node := first[0].(*MemNode); len(node.clicks) != 1 {
		t.Errorf("node has %d click handlers, want 1", len(node.clicks))
	}
}

func TestPainter_AssistantStyling(t *testing.T) {
	_, idx := paintDoc()
	p := NewPainter()

	m := Match{Page: 0, Start: 10, End: 19, Segments: idx.Overlapping(10, 19)}
	marked, err := p.Apply(idx, m, HighlightMark{ID: "a1", RawText: "brown fox", Assistant: true}, HandlerSet{})
	if err != nil {
		t.Fatal(err)
	}
	node := marked[0].(*MemNode)
	if !node.HasClass(ClassAssistantHighlight) {
		t.Error("assistant highlight missing assistant class")
	}
	if node.HasClass(ClassHighlight) {
		t.Error("assistant highlight carries user class")
	}
	if id, _ := node.Attribute(AttrAssistantHighlightID); id != "a1" {
		t.Errorf("assistant identifying attribute = %q, want %q", id, "a1")
	}
}

func TestPainter_Unmark(t *testing.T) {
	_, idx := paintDoc()
	p := NewPainter()

	hm := HighlightMark{ID: "h1", RawText: "brown fox"}
	m := Match{Page: 0, Start: 10, End: 19, Segments: idx.Overlapping(10, 19)}
	marked, err := p.Apply(idx, m, hm, HandlerSet{})
	if err != nil {
		t.Fatal(err)
	}

	p.Unmark(marked, hm)
	node := marked[0].(*MemNode)
	if node.HasClass(ClassHighlight) {
		t.Error("class not removed")
	}
	if _, ok := node.Attribute(AttrHighlightID); ok {
		t.Error("identifying attribute not removed")
	}
}

func TestMemNode_SplitValidation(t *testing.T) {
	n := NewMemNode("abc")
	if _, err := n.Split([]string{"ab", "d"}); err == nil {
		t.Error("mismatched parts accepted")
	}
	if _, err := n.Split([]string{"ab", "c"}); err != nil {
		t.Fatalf("valid split rejected: %v", err)
	}
	if _, err := n.Split([]string{"abc"}); err == nil {
		t.Error("splitting a non-leaf accepted")
	}
}

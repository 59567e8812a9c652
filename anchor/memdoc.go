package anchor

import "fmt"

// MemNode is the in-memory SegmentNode implementation. It backs the
// package tests and the CLI driver, and serves as the behavioral
// contract for bindings to a real renderer.
type MemNode struct {
	text     string
	children []*MemNode
	classes  map[string]struct{}
	attrs    map[string]string
	clicks   []ClickHandler
	scrolled bool
}

// NewMemNode creates a leaf node carrying the given text.
func NewMemNode(text string) *MemNode {
	return &MemNode{
		text:    text,
		classes: make(map[string]struct{}),
		attrs:   make(map[string]string),
	}
}

// NewMemTree creates an interior node grouping the given children.
func NewMemTree(children ...*MemNode) *MemNode {
	n := NewMemNode("")
	n.children = children
	return n
}

func (n *MemNode) Text() string {
	if len(n.children) == 0 {
		return n.text
	}
	var out string
	for _, c := range n.children {
		out += c.Text()
	}
	return out
}

func (n *MemNode) Children() []SegmentNode {
	out := make([]SegmentNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Split replaces the leaf's text with ordered child leaves carrying the
// given parts. The parts must concatenate to the current text exactly.
func (n *MemNode) Split(parts []string) ([]SegmentNode, error) {
	if len(n.children) > 0 {
		return nil, fmt.Errorf("splitting non-leaf node")
	}
	var joined string
	for _, p := range parts {
		joined += p
	}
	if joined != n.text {
		return nil, fmt.Errorf("split parts do not reassemble node text %q", n.text)
	}

	out := make([]SegmentNode, len(parts))
	n.children = make([]*MemNode, len(parts))
	for i, p := range parts {
		c := NewMemNode(p)
		n.children[i] = c
		out[i] = c
	}
	n.text = ""
	return out, nil
}

func (n *MemNode) AddClass(name string)    { n.classes[name] = struct{}{} }
func (n *MemNode) RemoveClass(name string) { delete(n.classes, name) }

func (n *MemNode) HasClass(name string) bool {
	_, ok := n.classes[name]
	return ok
}

func (n *MemNode) SetAttribute(key, value string) { n.attrs[key] = value }
func (n *MemNode) RemoveAttribute(key string)     { delete(n.attrs, key) }

func (n *MemNode) Attribute(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

func (n *MemNode) OnClick(h ClickHandler) { n.clicks = append(n.clicks, h) }

func (n *MemNode) ScrollIntoView() { n.scrolled = true }

// Scrolled reports whether ScrollIntoView was called, for tests.
func (n *MemNode) Scrolled() bool { return n.scrolled }

// Click dispatches a click at the given point to the node's handlers,
// innermost registration first, honoring StopPropagation.
func (n *MemNode) Click(x, y float64) *ClickEvent {
	ev := &ClickEvent{X: x, Y: y}
	for i := len(n.clicks) - 1; i >= 0; i-- {
		n.clicks[i](ev)
		if ev.Stopped() {
			break
		}
	}
	return ev
}

// MemPage is the in-memory PageView implementation.
type MemPage struct {
	root  *MemNode
	ready bool
}

// NewMemPage creates a page whose text tree has one leaf per chunk.
func NewMemPage(chunks ...string) *MemPage {
	leaves := make([]*MemNode, len(chunks))
	for i, c := range chunks {
		leaves[i] = NewMemNode(c)
	}
	return &MemPage{root: NewMemTree(leaves...), ready: true}
}

func (p *MemPage) Root() SegmentNode { return p.root }
func (p *MemPage) TextReady() bool   { return p.ready }

// SetReady toggles the page's text-layer readiness, for tests of the
// readiness poll.
func (p *MemPage) SetReady(ready bool) { p.ready = ready }

// MemDocument is the in-memory DocumentView implementation.
type MemDocument struct {
	pages    []*MemPage
	expected int
}

// NewMemDocument creates a document with one page per chunk list.
func NewMemDocument(pages ...[]string) *MemDocument {
	d := &MemDocument{expected: len(pages)}
	for _, chunks := range pages {
		d.pages = append(d.pages, NewMemPage(chunks...))
	}
	return d
}

// SetExpectedPages overrides the expected page count, for modeling a
// document whose pages are still rendering.
func (d *MemDocument) SetExpectedPages(n int) { d.expected = n }

// AddPage appends a rendered page.
func (d *MemDocument) AddPage(p *MemPage) { d.pages = append(d.pages, p) }

func (d *MemDocument) PageCount() int { return d.expected }

func (d *MemDocument) Pages() []PageView {
	out := make([]PageView, len(d.pages))
	for i, p := range d.pages {
		out[i] = p
	}
	return out
}

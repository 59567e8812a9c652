// Package annotator sequences the anchoring pipeline over a rendered
// document: wait for the text layer, build the segment index, fetch and
// resolve the stored highlights, paint them, and expose the interaction
// surface (selection, add/remove, search).
//
// Everything is single-threaded with respect to the rendering surface.
// The invariant "at most one anchoring pass runs at a time" is enforced
// by sequencing (index, resolve, paint), not by locks; a new pass fully
// discards the previous index and marking state.
package annotator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/khoj-ai/openpaper-sub002/anchor"
	"github.com/khoj-ai/openpaper-sub002/highlights"
)

// ErrSelectionOutside reports a live selection that cannot be mapped to
// offsets in the indexed text. The add-highlight action is aborted
// before any network call.
var ErrSelectionOutside = errors.New("selection cannot be mapped to indexed text")

// ErrNoIndex reports an operation attempted before the first Reload.
var ErrNoIndex = errors.New("document not indexed yet")

// Config controls the readiness poll and the resolver thresholds. Zero
// values use the defaults.
type Config struct {
	// PollInterval and PollAttempts bound the wait for the renderer to
	// finish producing all pages' text segments. After exhausting the
	// budget the load proceeds in degraded mode rather than blocking.
	PollInterval time.Duration
	PollAttempts int

	ExactThreshold float64
	FuzzyThreshold float64
	SeedLength     int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 200 * time.Millisecond
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = 25
	}
	if c.ExactThreshold == 0 {
		c.ExactThreshold = anchor.DefaultExactThreshold
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = anchor.DefaultFuzzyThreshold
	}
	if c.SeedLength == 0 {
		c.SeedLength = anchor.DefaultSeedLength
	}
	return c
}

// Selection is a live text selection expressed against the rendered
// segment tree.
type Selection struct {
	Text        string
	StartNode   anchor.SegmentNode
	StartOffset int // rune offset within the start node's text
	EndNode     anchor.SegmentNode
	EndOffset   int // rune offset within the end node's text
	X, Y        float64
}

// Annotator owns one document's anchoring state.
type Annotator struct {
	view       anchor.DocumentView
	client     *highlights.Client
	documentID string
	log        *zap.Logger
	cfg        Config
	handlers   anchor.HandlerSet
	painter    *anchor.Painter

	idx      *anchor.Index
	resolver *anchor.Resolver
	search   *anchor.Search

	textLayerOK bool
	records     map[string]highlights.Highlight
	applied     map[string][]anchor.SegmentNode
}

// New creates an annotator for one document.
func New(view anchor.DocumentView, client *highlights.Client, documentID string, log *zap.Logger, cfg Config, handlers anchor.HandlerSet) *Annotator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Annotator{
		view:       view,
		client:     client,
		documentID: documentID,
		log:        log,
		cfg:        cfg.withDefaults(),
		handlers:   handlers,
		painter:    anchor.NewPainter(),
		records:    make(map[string]highlights.Highlight),
		applied:    make(map[string][]anchor.SegmentNode),
	}
}

// TextLayerAvailable reports whether the last load saw a complete text
// layer. While false, anchoring is best-effort and search is disabled.
func (a *Annotator) TextLayerAvailable() bool { return a.textLayerOK }

// Index returns the current segment index, nil before the first Reload.
func (a *Annotator) Index() *anchor.Index { return a.idx }

// Reload runs one full anchoring pass: wait for the text layer, rebuild
// the index (discarding all prior segment and marking state), fetch the
// stored highlights, resolve and paint each. Results computed against a
// prior index are invalidated, never merged.
func (a *Annotator) Reload(ctx context.Context) error {
	a.textLayerOK = a.waitForTextLayer(ctx)
	if !a.textLayerOK {
		degradedLoads.Inc()
		a.log.Warn("text layer unavailable, proceeding degraded",
			zap.String("document_id", a.documentID))
	}

	for id, nodes := range a.applied {
		a.painter.Unmark(nodes, markFor(a.records[id]))
	}
	a.records = make(map[string]highlights.Highlight)
	a.applied = make(map[string][]anchor.SegmentNode)
	a.idx = anchor.BuildIndex(a.view)
	indexRebuilds.Inc()

	a.resolver = anchor.NewResolver(a.idx)
	a.resolver.ExactThreshold = a.cfg.ExactThreshold
	a.resolver.FuzzyThreshold = a.cfg.FuzzyThreshold
	a.resolver.SeedLength = a.cfg.SeedLength

	a.search = anchor.NewSearch(a.resolver)
	a.search.SetAvailable(a.textLayerOK)

	stored, err := a.client.List(ctx, a.documentID)
	if err != nil {
		return fmt.Errorf("loading highlights: %w", err)
	}
	for _, h := range highlights.FilterValid(stored) {
		a.paintRecord(h)
	}
	return nil
}

// waitForTextLayer polls until the expected page count is reached and
// every page's text layer is finalized and non-empty, or the attempt
// budget runs out.
func (a *Annotator) waitForTextLayer(ctx context.Context) bool {
	for attempt := 0; attempt < a.cfg.PollAttempts; attempt++ {
		if textLayerReady(a.view) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(a.cfg.PollInterval):
		}
	}
	return textLayerReady(a.view)
}

func textLayerReady(view anchor.DocumentView) bool {
	pages := view.Pages()
	if len(pages) < view.PageCount() {
		return false
	}
	for _, p := range pages {
		if !p.TextReady() || p.Root().Text() == "" {
			return false
		}
	}
	return true
}

// paintRecord resolves one stored highlight against the current index
// and paints it. An anchoring miss is non-fatal: the record stays
// persisted but renders nothing until its text is found again.
func (a *Annotator) paintRecord(h highlights.Highlight) {
	m, kind := a.resolveRecord(h)
	anchorResults.WithLabelValues(string(kind)).Inc()
	if kind == anchor.ResolvedNone {
		a.log.Info("highlight not found in current rendering",
			zap.String("highlight_id", h.ID),
			zap.String("role", string(h.Role)))
		return
	}

	nodes, err := a.painter.Apply(a.idx, m, markFor(h), a.handlers)
	if err != nil {
		a.log.Error("painting highlight", zap.String("highlight_id", h.ID), zap.Error(err))
		return
	}
	a.records[h.ID] = h
	a.applied[h.ID] = nodes
}

// resolveRecord picks the anchoring path for a record. User highlights
// try their stored offsets first; assistant highlights are not expected
// to carry reliable offsets and go straight to the fuzzy scan, first on
// their page hint and then across the whole document.
func (a *Annotator) resolveRecord(h highlights.Highlight) (anchor.Match, anchor.ResolveKind) {
	page := a.pageHint(h)

	if h.Role == highlights.RoleAssistant {
		if ms := a.resolver.ResolveFuzzy(h.RawText, page); len(ms) > 0 {
			return ms[0], anchor.ResolvedFuzzy
		}
		if page >= 0 {
			if ms := a.resolver.ResolveFuzzy(h.RawText, -1); len(ms) > 0 {
				return ms[0], anchor.ResolvedFuzzy
			}
		}
		return anchor.Match{}, anchor.ResolvedNone
	}

	m, kind := a.resolver.Resolve(h.RawText, h.StartOffset, h.EndOffset, page)
	if kind == anchor.ResolvedNone && page >= 0 {
		if ms := a.resolver.ResolveFuzzy(h.RawText, -1); len(ms) > 0 {
			return ms[0], anchor.ResolvedFuzzy
		}
	}
	return m, kind
}

// pageHint converts a record's stored 1-based page number to a page
// index, or -1 when absent or out of range.
func (a *Annotator) pageHint(h highlights.Highlight) int {
	if h.PageNumber == nil {
		return -1
	}
	p := *h.PageNumber - 1
	if p < 0 || p >= a.idx.PageCount() {
		return -1
	}
	return p
}

func markFor(h highlights.Highlight) anchor.HighlightMark {
	return anchor.HighlightMark{
		ID:        h.ID,
		RawText:   h.RawText,
		Assistant: h.Role == highlights.RoleAssistant,
	}
}

// AddHighlight persists a new user highlight and paints it. Nothing is
// painted when the create call fails.
func (a *Annotator) AddHighlight(ctx context.Context, text string, startOffset, endOffset, pageNumber *int, annotation string) (*highlights.Highlight, error) {
	if a.idx == nil {
		return nil, ErrNoIndex
	}
	if text == "" {
		return nil, fmt.Errorf("empty highlight text")
	}

	created, err := a.client.Create(ctx, highlights.CreateHighlightRequest{
		DocumentID:  a.documentID,
		RawText:     text,
		StartOffset: startOffset,
		EndOffset:   endOffset,
		PageNumber:  pageNumber,
		Role:        highlights.RoleUser,
		Annotation:  annotation,
	})
	if err != nil {
		return nil, fmt.Errorf("adding highlight: %w", err)
	}

	a.paintRecord(*created)
	return created, nil
}

// RemoveHighlight deletes a stored highlight. The local index and
// marking state are only mutated on confirmed success; a failed removal
// leaves prior state unchanged.
func (a *Annotator) RemoveHighlight(ctx context.Context, h highlights.Highlight) error {
	if err := a.client.Delete(ctx, h.ID); err != nil {
		return fmt.Errorf("removing highlight: %w", err)
	}

	a.painter.Unmark(a.applied[h.ID], markFor(h))
	delete(a.applied, h.ID)
	delete(a.records, h.ID)
	return nil
}

// HandleTextSelection maps a live selection to global offsets through
// the index and surfaces the selection to the UI callbacks. A selection
// spanning outside the indexed text aborts with ErrSelectionOutside
// before any network call.
func (a *Annotator) HandleTextSelection(sel Selection) (start, end int, err error) {
	if a.idx == nil {
		return 0, 0, ErrNoIndex
	}

	segStart, ok := a.idx.SegmentOf(sel.StartNode)
	if !ok {
		return 0, 0, ErrSelectionOutside
	}
	segEnd, ok := a.idx.SegmentOf(sel.EndNode)
	if !ok {
		return 0, 0, ErrSelectionOutside
	}

	start = segStart.Start + sel.StartOffset
	end = segEnd.Start + sel.EndOffset
	if sel.StartOffset < 0 || start > segStart.End || sel.EndOffset < 0 || end > segEnd.End || start >= end {
		return 0, 0, ErrSelectionOutside
	}

	if a.handlers.SetSelectedText != nil {
		a.handlers.SetSelectedText(sel.Text)
	}
	if a.handlers.ShowActionMenu != nil {
		a.handlers.ShowActionMenu(sel.X, sel.Y)
	}
	return start, end, nil
}

// ScrollToHighlight locates a painted highlight by its identifying
// attribute, without re-running matching, and scrolls it into view.
func (a *Annotator) ScrollToHighlight(id string) bool {
	if a.idx == nil {
		return false
	}
	for _, attr := range []string{a.painter.IDAttribute, a.painter.AssistantIDAttribute} {
		for _, s := range a.idx.Segments {
			if v, ok := s.Node.Attribute(attr); ok && v == id {
				s.Node.ScrollIntoView()
				return true
			}
		}
	}
	return false
}

// PerformSearch runs a full-text search across the indexed document.
func (a *Annotator) PerformSearch(query string) error {
	if a.search == nil {
		return ErrNoIndex
	}
	searchQueries.Inc()
	return a.search.Perform(query)
}

// GoToNextMatch advances the search to the next match, wrapping around.
func (a *Annotator) GoToNextMatch() {
	if a.search != nil {
		a.search.Next()
	}
}

// GoToPreviousMatch steps the search back, wrapping around.
func (a *Annotator) GoToPreviousMatch() {
	if a.search != nil {
		a.search.Previous()
	}
}

// SetExplicitSearchTerm feeds an externally provided search term (for
// example from a chat reference click) into the search engine.
func (a *Annotator) SetExplicitSearchTerm(term string) error {
	if a.search == nil {
		return ErrNoIndex
	}
	return a.search.SetExplicitTerm(term)
}

// ClearSearch removes search styling and results, leaving highlight
// styling untouched.
func (a *Annotator) ClearSearch() {
	if a.search != nil {
		a.search.Clear()
	}
}

// SearchState exposes the ephemeral search state to the UI layer.
func (a *Annotator) SearchState() (results []anchor.Match, current int, notFound bool) {
	if a.search == nil {
		return nil, 0, false
	}
	return a.search.Results(), a.search.CurrentIndex(), a.search.NotFound()
}

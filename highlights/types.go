// Package highlights is the client for the annotation persistence API:
// create, list, and delete highlight records for a document over HTTP.
package highlights

// Role distinguishes user-created highlights from machine-origin ones.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Rect is one page-relative rectangle of a highlight's stored position.
type Rect struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PageNumber int     `json:"page_number,omitempty"`
}

// ScaledPosition is the page-relative geometry captured when a highlight
// was created, scaled to the page size at capture time.
type ScaledPosition struct {
	BoundingRect Rect   `json:"bounding_rect"`
	Rects        []Rect `json:"rects"`
	PageNumber   int    `json:"page_number"`
}

// Highlight is a persisted annotation record. Identity is the
// server-assigned ID; RawText plus either the numeric offsets or the
// positional data is the anchoring key. A usable record always carries
// enough information to attempt exact anchoring (offsets) or fuzzy
// anchoring (raw text).
type Highlight struct {
	ID          string          `json:"id"`
	RawText     string          `json:"raw_text"`
	StartOffset *int            `json:"start_offset,omitempty"`
	EndOffset   *int            `json:"end_offset,omitempty"`
	PageNumber  *int            `json:"page_number,omitempty"`
	Position    *ScaledPosition `json:"position,omitempty"`
	Role        Role            `json:"role"`
	Annotation  string          `json:"annotation,omitempty"`
}

// HasOffsets reports whether the record carries both numeric offsets.
func (h Highlight) HasOffsets() bool {
	return h.StartOffset != nil && h.EndOffset != nil
}

// Valid reports whether the record carries enough information to be
// anchored: raw text, plus numeric offsets or positional data.
func (h Highlight) Valid() bool {
	if h.RawText == "" {
		return false
	}
	return h.HasOffsets() || h.Position != nil
}

// FilterValid drops malformed records before indexing, rather than
// letting them fail per-record later.
func FilterValid(hs []Highlight) []Highlight {
	out := make([]Highlight, 0, len(hs))
	for _, h := range hs {
		if h.Valid() {
			out = append(out, h)
		}
	}
	return out
}

// CreateHighlightRequest is the body of a highlight creation call.
type CreateHighlightRequest struct {
	DocumentID  string          `json:"document_id"`
	RawText     string          `json:"raw_text"`
	StartOffset *int            `json:"start_offset,omitempty"`
	EndOffset   *int            `json:"end_offset,omitempty"`
	PageNumber  *int            `json:"page_number,omitempty"`
	Position    *ScaledPosition `json:"position,omitempty"`
	Role        Role            `json:"role"`
	Annotation  string          `json:"annotation,omitempty"`
}

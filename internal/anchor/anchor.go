// Package anchor makes a reader's text selection durable. An Anchor records
// the page URL, the id of the nearest enclosing element that has one, and
// the literal selected text; Resolve finds that text again in a freshly
// loaded document and returns the token range it covers.
package anchor

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrNoIdentifiedAncestor means no element enclosing the selection has
	// an id. Loaded documents always carry ids, so this is a loader defect.
	ErrNoIdentifiedAncestor = errors.New("no ancestor with an id")

	ErrInvalidSelection = errors.New("invalid selection")
	ErrEmptySelection   = errors.New("empty selection")
	ErrUnknownElement   = errors.New("unknown element")
	ErrMalformedAnchor  = errors.New("malformed anchor")
)

// Anchor is an immutable, serializable descriptor of a selected span.
type Anchor struct {
	URL        string `json:"url"`
	AncestorID string `json:"ancestorId"`
	AnchorText string `json:"anchorText"`
}

// Validate checks that every field is present.
func (a Anchor) Validate() error {
	switch {
	case a.URL == "":
		return fmt.Errorf("%w: missing url", ErrMalformedAnchor)
	case a.AncestorID == "":
		return fmt.Errorf("%w: missing ancestorId", ErrMalformedAnchor)
	case a.AnchorText == "":
		return fmt.Errorf("%w: missing anchorText", ErrMalformedAnchor)
	}
	return nil
}

// Document is the token-addressable view anchors are created from and
// resolved against. *doctree.Stream implements it.
type Document interface {
	URL() string
	Len() int
	Content(i int) string
	Ancestors(i int) []string
	Span(id string) (start, end int, ok bool)
}

// Boundary is a point in the token stream: a token position and a byte
// offset into that token's content.
type Boundary struct {
	Token  int `json:"token"`
	Offset int `json:"offset"`
}

func (b Boundary) before(o Boundary) bool {
	return b.Token < o.Token || (b.Token == o.Token && b.Offset < o.Offset)
}

// Selection is a user selection between two boundaries, in either order.
type Selection struct {
	Start Boundary `json:"start"`
	End   Boundary `json:"end"`
}

// Range is a resolved span. End.Offset is exclusive.
type Range struct {
	Start Boundary `json:"start"`
	End   Boundary `json:"end"`
}

// SameURL compares page addresses, ignoring the fragment.
func SameURL(a, b string) bool {
	if a == b {
		return true
	}
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	ua.Fragment, ua.RawFragment = "", ""
	ub.Fragment, ub.RawFragment = "", ""
	return ua.String() == ub.String()
}

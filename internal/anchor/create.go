package anchor

import (
	"fmt"
	"strings"
)

// Create builds an Anchor for sel. Reversed selections are accepted and
// offsets are clamped to their token. The ancestor is the innermost id
// shared by the enclosing chains of both boundary tokens.
func Create(doc Document, sel Selection) (Anchor, error) {
	rng, err := normalize(doc, sel)
	if err != nil {
		return Anchor{}, err
	}

	text := sliceText(doc, rng)
	if text == "" {
		return Anchor{}, ErrEmptySelection
	}

	ancestor, err := commonAncestor(doc.Ancestors(rng.Start.Token), doc.Ancestors(rng.End.Token))
	if err != nil {
		return Anchor{}, err
	}

	return Anchor{
		URL:        doc.URL(),
		AncestorID: ancestor,
		AnchorText: text,
	}, nil
}

// CreateForElement anchors the whole text content of one element, as used
// when a reader hovers or clicks a sentence instead of dragging a range.
func CreateForElement(doc Document, elementID string) (Anchor, error) {
	if elementID == "" {
		return Anchor{}, ErrNoIdentifiedAncestor
	}
	start, end, ok := doc.Span(elementID)
	if !ok {
		return Anchor{}, fmt.Errorf("%w: %q", ErrUnknownElement, elementID)
	}
	var buf strings.Builder
	for i := start; i < end; i++ {
		buf.WriteString(doc.Content(i))
	}
	if buf.Len() == 0 {
		return Anchor{}, ErrEmptySelection
	}
	return Anchor{
		URL:        doc.URL(),
		AncestorID: elementID,
		AnchorText: buf.String(),
	}, nil
}

// normalize orders the boundaries, clamps offsets and moves boundaries
// sitting on a token edge inward, so a selection ending at offset 0 of the
// next token is the same as one ending at the end of the previous token.
func normalize(doc Document, sel Selection) (Range, error) {
	n := doc.Len()
	for _, b := range []Boundary{sel.Start, sel.End} {
		if b.Token < 0 || b.Token >= n {
			return Range{}, fmt.Errorf("%w: token %d outside [0,%d)", ErrInvalidSelection, b.Token, n)
		}
	}

	start, end := sel.Start, sel.End
	if end.before(start) {
		start, end = end, start
	}
	start.Offset = clamp(start.Offset, len(doc.Content(start.Token)))
	end.Offset = clamp(end.Offset, len(doc.Content(end.Token)))

	for start.Token < end.Token && start.Offset == len(doc.Content(start.Token)) {
		start = Boundary{Token: start.Token + 1}
	}
	for end.Token > start.Token && end.Offset == 0 {
		end = Boundary{Token: end.Token - 1, Offset: len(doc.Content(end.Token - 1))}
	}
	return Range{Start: start, End: end}, nil
}

func sliceText(doc Document, rng Range) string {
	if rng.Start.Token == rng.End.Token {
		c := doc.Content(rng.Start.Token)
		if rng.End.Offset <= rng.Start.Offset {
			return ""
		}
		return c[rng.Start.Offset:rng.End.Offset]
	}
	var buf strings.Builder
	buf.WriteString(doc.Content(rng.Start.Token)[rng.Start.Offset:])
	for i := rng.Start.Token + 1; i < rng.End.Token; i++ {
		buf.WriteString(doc.Content(i))
	}
	buf.WriteString(doc.Content(rng.End.Token)[:rng.End.Offset])
	return buf.String()
}

func commonAncestor(a, b []string) (string, error) {
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		if id != "" {
			inB[id] = true
		}
	}
	for _, id := range a {
		if id != "" && inB[id] {
			return id, nil
		}
	}
	return "", ErrNoIdentifiedAncestor
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

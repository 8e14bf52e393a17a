package anchor

import (
	"sort"
	"strings"
)

// Status is the outcome of resolving an anchor.
type Status int

const (
	Resolved Status = iota
	URLMismatch
	AncestorNotFound
	TextNotFound
	EmptyText
)

var statusNames = [...]string{
	Resolved:         "resolved",
	URLMismatch:      "url_mismatch",
	AncestorNotFound: "ancestor_not_found",
	TextNotFound:     "text_not_found",
	EmptyText:        "empty_text",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Resolution is the result of Resolve. Range is only meaningful when OK.
type Resolution struct {
	Status Status `json:"status"`
	Range  Range  `json:"range"`
}

// OK reports whether the anchor was found.
func (r Resolution) OK() bool { return r.Status == Resolved }

// Resolve locates a's text under its ancestor in doc. When the text occurs
// more than once under the ancestor, the last occurrence wins. Misses are
// reported through Status and never as errors; the caller decides whether
// to flag the annotation as unrestorable.
func Resolve(doc Document, a Anchor) Resolution {
	if a.AnchorText == "" {
		return Resolution{Status: EmptyText}
	}
	if !SameURL(a.URL, doc.URL()) {
		return Resolution{Status: URLMismatch}
	}
	start, end, ok := doc.Span(a.AncestorID)
	if !ok {
		return Resolution{Status: AncestorNotFound}
	}

	// offsets[i] is where token start+i begins in text.
	offsets := make([]int, 0, end-start+1)
	var buf strings.Builder
	for i := start; i < end; i++ {
		offsets = append(offsets, buf.Len())
		buf.WriteString(doc.Content(i))
	}
	offsets = append(offsets, buf.Len())
	text := buf.String()

	at := strings.LastIndex(text, a.AnchorText)
	if at < 0 {
		return Resolution{Status: TextNotFound}
	}
	last := at + len(a.AnchorText) - 1

	first := tokenAt(offsets, at)
	final := tokenAt(offsets, last)
	return Resolution{
		Status: Resolved,
		Range: Range{
			Start: Boundary{Token: start + first, Offset: at - offsets[first]},
			End:   Boundary{Token: start + final, Offset: last + 1 - offsets[final]},
		},
	}
}

// tokenAt returns the index of the token containing byte pos.
func tokenAt(offsets []int, pos int) int {
	return sort.Search(len(offsets)-1, func(i int) bool { return offsets[i+1] > pos })
}

package anchor

import (
	"errors"
	"testing"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://example.com/a"

type para struct{ id, text string }

// Token layout of the document built from climateParas:
//
//	p0: 0 Intro, 1 " ", 2 text, 3 "."
//	p3 / first sentence:  4 The ... 6 climate, 8 policy ... 14 " "
//	p3 / second sentence: 15 A ... 19 climate, 21 policy ... 24 "."
var climateParas = []para{
	{"p0", "Intro text."},
	{"p3", "The climate policy debate continues. A new climate policy emerged."},
}

func buildDoc(assignIDs bool, paras ...para) *doctree.Document {
	sec := &doctree.Section{ID: "sec0"}
	for _, p := range paras {
		node := segment.Paragraph(p.text)
		node.ID = p.id
		sec.Paragraphs = append(sec.Paragraphs, node)
	}
	doc := &doctree.Document{URL: pageURL, Sections: []*doctree.Section{sec}}
	if assignIDs {
		doctree.AssignIDs(doc)
	}
	return doc
}

func climateStream() *doctree.Stream {
	return doctree.NewStream(buildDoc(true, climateParas...))
}

func TestCreate_NearestIdentifiedAncestor(t *testing.T) {
	// Only paragraphs and the section carry ids, as in hand-written markup.
	doc := doctree.NewStream(buildDoc(false, climateParas...))

	a, err := Create(doc, Selection{Start: Boundary{6, 0}, End: Boundary{8, 6}})
	require.NoError(t, err)
	assert.Equal(t, Anchor{URL: pageURL, AncestorID: "p3", AnchorText: "climate policy"}, a)
}

func TestCreate_AncestorLevels(t *testing.T) {
	doc := climateStream()

	a, err := Create(doc, Selection{Start: Boundary{6, 1}, End: Boundary{6, 4}})
	require.NoError(t, err)
	assert.Equal(t, "lim", a.AnchorText)
	assert.Equal(t, doc.Ancestors(6)[0], a.AncestorID, "single token selection anchors on the token")

	a, err = Create(doc, Selection{Start: Boundary{6, 0}, End: Boundary{8, 6}})
	require.NoError(t, err)
	assert.Equal(t, "s1", a.AncestorID)

	a, err = Create(doc, Selection{Start: Boundary{8, 0}, End: Boundary{19, 7}})
	require.NoError(t, err)
	assert.Equal(t, "p3", a.AncestorID)
	assert.Equal(t, "policy debate continues. A new climate", a.AnchorText)

	a, err = Create(doc, Selection{Start: Boundary{2, 0}, End: Boundary{6, 7}})
	require.NoError(t, err)
	assert.Equal(t, "sec0", a.AncestorID)
	assert.Equal(t, "text.The climate", a.AnchorText)
}

func TestCreate_ReversedSelection(t *testing.T) {
	doc := climateStream()
	fwd, err := Create(doc, Selection{Start: Boundary{6, 0}, End: Boundary{8, 6}})
	require.NoError(t, err)
	rev, err := Create(doc, Selection{Start: Boundary{8, 6}, End: Boundary{6, 0}})
	require.NoError(t, err)
	assert.Equal(t, fwd, rev)
}

func TestCreate_InvalidSelections(t *testing.T) {
	doc := climateStream()

	_, err := Create(doc, Selection{Start: Boundary{6, 2}, End: Boundary{6, 2}})
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = Create(doc, Selection{Start: Boundary{-1, 0}, End: Boundary{3, 0}})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = Create(doc, Selection{Start: Boundary{0, 0}, End: Boundary{doc.Len(), 0}})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	a, err := Create(doc, Selection{Start: Boundary{6, -4}, End: Boundary{6, 99}})
	require.NoError(t, err)
	assert.Equal(t, "climate", a.AnchorText, "offsets are clamped to the token")
}

func TestCreate_NoIdentifiedAncestor(t *testing.T) {
	doc := buildDoc(false, climateParas...)
	doc.Sections[0].ID = ""
	doc.Sections[0].Paragraphs[0].ID = ""
	_, err := Create(doctree.NewStream(doc), Selection{Start: Boundary{0, 0}, End: Boundary{2, 4}})
	assert.True(t, errors.Is(err, ErrNoIdentifiedAncestor))
}

func TestCreateForElement(t *testing.T) {
	doc := climateStream()

	a, err := CreateForElement(doc, "s1")
	require.NoError(t, err)
	assert.Equal(t, Anchor{URL: pageURL, AncestorID: "s1", AnchorText: "The climate policy debate continues. "}, a)

	res := Resolve(doc, a)
	require.True(t, res.OK())
	assert.Equal(t, Range{Start: Boundary{4, 0}, End: Boundary{14, 1}}, res.Range)

	_, err = CreateForElement(doc, "nope")
	assert.ErrorIs(t, err, ErrUnknownElement)
	_, err = CreateForElement(doc, "")
	assert.ErrorIs(t, err, ErrNoIdentifiedAncestor)
}

func TestResolve_LastOccurrenceWins(t *testing.T) {
	doc := climateStream()
	a := Anchor{URL: pageURL, AncestorID: "p3", AnchorText: "climate policy"}

	res := Resolve(doc, a)
	require.True(t, res.OK())
	assert.Equal(t, Range{Start: Boundary{19, 0}, End: Boundary{21, 6}}, res.Range)
	assert.Equal(t, res, Resolve(doc, a), "resolution is deterministic")
}

func TestResolve_RoundTrip(t *testing.T) {
	doc := climateStream()
	tests := []struct {
		name string
		sel  Selection
		want Range
	}{
		{"whole words", Selection{Boundary{19, 0}, Boundary{21, 6}}, Range{Boundary{19, 0}, Boundary{21, 6}}},
		{"end on next token edge", Selection{Boundary{19, 0}, Boundary{22, 0}}, Range{Boundary{19, 0}, Boundary{21, 6}}},
		{"start on previous token edge", Selection{Boundary{18, 1}, Boundary{21, 6}}, Range{Boundary{19, 0}, Boundary{21, 6}}},
		{"partial tokens", Selection{Boundary{6, 3}, Boundary{8, 3}}, Range{Boundary{6, 3}, Boundary{8, 3}}},
		{"across sentences", Selection{Boundary{8, 0}, Boundary{19, 7}}, Range{Boundary{8, 0}, Boundary{19, 7}}},
		// "continues" holds "n" twice; the later one is returned.
		{"repeated text in token", Selection{Boundary{12, 2}, Boundary{12, 3}}, Range{Boundary{12, 5}, Boundary{12, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Create(doc, tt.sel)
			require.NoError(t, err)
			res := Resolve(doc, a)
			require.True(t, res.OK(), res.Status.String())
			assert.Equal(t, tt.want, res.Range)
		})
	}
}

func TestResolve_RoundTripRepeatedPhrase(t *testing.T) {
	// Tokens: 0 the, 2 cat, 4 saw, 6 the, 8 cat, 9 ".".
	doc := doctree.NewStream(buildDoc(true, para{"p1", "the cat saw the cat."}))

	a, err := Create(doc, Selection{Start: Boundary{0, 0}, End: Boundary{2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "the cat", a.AnchorText)

	res := Resolve(doc, a)
	require.True(t, res.OK())
	assert.Equal(t, Range{Start: Boundary{6, 0}, End: Boundary{8, 3}}, res.Range,
		"the first of two equal phrases resolves to the second")
}

func TestResolve_Misses(t *testing.T) {
	doc := climateStream()
	tests := []struct {
		name   string
		anchor Anchor
		want   Status
	}{
		{"other page", Anchor{URL: "https://example.com/b", AncestorID: "p3", AnchorText: "climate policy"}, URLMismatch},
		{"ancestor gone", Anchor{URL: pageURL, AncestorID: "p9", AnchorText: "climate policy"}, AncestorNotFound},
		{"text changed", Anchor{URL: pageURL, AncestorID: "p3", AnchorText: "carbon tax"}, TextNotFound},
		{"text outside ancestor", Anchor{URL: pageURL, AncestorID: "p0", AnchorText: "climate"}, TextNotFound},
		{"empty text", Anchor{URL: pageURL, AncestorID: "p3"}, EmptyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(doc, tt.anchor)
			assert.False(t, res.OK())
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestResolve_IgnoresFragment(t *testing.T) {
	res := Resolve(climateStream(), Anchor{URL: pageURL + "#comments", AncestorID: "p3", AnchorText: "emerged"})
	require.True(t, res.OK())
	assert.Equal(t, Boundary{23, 0}, res.Range.Start)
}

func TestStatus_Text(t *testing.T) {
	b, err := TextNotFound.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "text_not_found", string(b))
	assert.Equal(t, "unknown", Status(42).String())
}

package anchor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_TypedAnchor(t *testing.T) {
	in := Anchor{URL: pageURL, AncestorID: "p3", AnchorText: "climate policy"}
	got, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = Normalize(Anchor{URL: pageURL, AnchorText: "x"})
	assert.ErrorIs(t, err, ErrMalformedAnchor)
}

func TestNormalize_RawAnchorKeyStyles(t *testing.T) {
	want := Anchor{URL: pageURL, AncestorID: "p3", AnchorText: "climate policy"}

	got, err := Normalize(RawAnchor{"url": pageURL, "ancestorId": "p3", "anchorText": "climate policy"})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Normalize(RawAnchor{"url": pageURL, "ancestor_id": "p3", "anchor_text": "climate policy"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNormalize_RawAnchorWrongTypes(t *testing.T) {
	_, err := Normalize(RawAnchor{"url": pageURL, "ancestorId": 3, "anchorText": "x"})
	assert.ErrorIs(t, err, ErrMalformedAnchor)

	_, err = Normalize(RawAnchor{"url": pageURL})
	assert.ErrorIs(t, err, ErrMalformedAnchor)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrMalformedAnchor)
}

func TestDecode(t *testing.T) {
	a, err := Decode([]byte(`{"url":"https://example.com/a","ancestorId":"p3","anchorText":"climate policy"}`))
	require.NoError(t, err)
	assert.Equal(t, "p3", a.AncestorID)

	_, err = Decode([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrMalformedAnchor)
}

func TestAnchor_JSONIsVerbatim(t *testing.T) {
	b, err := json.Marshal(Anchor{URL: pageURL, AncestorID: "p3", AnchorText: "climate policy"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://example.com/a","ancestorId":"p3","anchorText":"climate policy"}`, string(b))
}

func TestSameURL(t *testing.T) {
	assert.True(t, SameURL(pageURL, pageURL))
	assert.True(t, SameURL(pageURL+"#top", pageURL))
	assert.False(t, SameURL(pageURL, "https://example.com/b"))
	assert.False(t, SameURL(pageURL+"?x=1", pageURL))
}

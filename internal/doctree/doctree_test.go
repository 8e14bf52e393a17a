package doctree

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(id string, typ TokenType, content string) *Token {
	return &Token{ID: id, Type: typ, Content: content}
}

func sampleDoc() *Document {
	return &Document{
		URL:   "https://example.com/a",
		Title: "Sample",
		Sections: []*Section{{
			ID: "sec0",
			Paragraphs: []*Paragraph{{
				ID: "p0",
				Sentences: []*Sentence{
					{ID: "s0", Rank: NewRank(0.5), Tokens: []*Token{
						tok("t0", Word, "Hello"), tok("t1", Whitespace, " "), tok("t2", Word, "world"), tok("t3", Punctuation, "."),
					}},
					{ID: "s1", Tokens: []*Token{
						tok("t4", Whitespace, " "), tok("t5", Word, "Bye"),
					}},
				},
			}},
		}},
	}
}

func TestRank_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  float64
	}{
		{`0.25`, true, 0.25},
		{`"0.75"`, true, 0.75},
		{`null`, false, 0},
		{`"abc"`, false, 0},
		{`""`, false, 0},
		{`true`, false, 0},
		{`{}`, false, 0},
	}
	for _, tt := range tests {
		var r Rank
		require.NoError(t, json.Unmarshal([]byte(tt.in), &r), tt.in)
		assert.Equal(t, tt.valid, r.Valid, tt.in)
		if tt.valid {
			assert.Equal(t, tt.want, r.Value, tt.in)
		}
	}
}

func TestRank_OmittedWhenUnknown(t *testing.T) {
	b, err := json.Marshal(&Token{ID: "t0", Type: Word, Content: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "rank")

	b, err = json.Marshal(&Sentence{ID: "s0", Rank: NewRank(0.5)})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"rank":0.5`)
}

func TestNewRank_RejectsNonFinite(t *testing.T) {
	var zero float64
	assert.False(t, NewRank(zero/zero).Valid)
	assert.Nil(t, Rank{}.Ptr())
	require.NotNil(t, NewRank(0.3).Ptr())
	assert.Equal(t, 0.3, *NewRank(0.3).Ptr())
}

func TestAssignIDs_SynthesizesPerKind(t *testing.T) {
	doc := &Document{
		Keywords: []Keyword{{Name: "subject"}},
		Sections: []*Section{
			{Paragraphs: []*Paragraph{{Sentences: []*Sentence{{Tokens: []*Token{{Content: "a"}, {Content: "b"}}}}}}},
			{Paragraphs: []*Paragraph{{Sentences: []*Sentence{{Tokens: []*Token{{Content: "c"}}}}}}},
		},
	}
	AssignIDs(doc)

	assert.Equal(t, "k0", doc.Keywords[0].ID)
	assert.Equal(t, "sec0", doc.Sections[0].ID)
	assert.Equal(t, "sec1", doc.Sections[1].ID)
	assert.Equal(t, "p1", doc.Sections[1].Paragraphs[0].ID)
	assert.Equal(t, "s1", doc.Sections[1].Paragraphs[0].Sentences[0].ID)
	assert.Equal(t, "t2", doc.Sections[1].Paragraphs[0].Sentences[0].Tokens[0].ID)
	require.NoError(t, Validate(doc))
}

func TestAssignIDs_KeepsExistingAndAvoidsCollisions(t *testing.T) {
	doc := &Document{Sections: []*Section{{
		ID: "intro",
		Paragraphs: []*Paragraph{
			{ID: "p1"},
			{},
		},
	}}}
	AssignIDs(doc)

	assert.Equal(t, "intro", doc.Sections[0].ID)
	assert.Equal(t, "p1", doc.Sections[0].Paragraphs[0].ID)
	assert.NotEqual(t, "p1", doc.Sections[0].Paragraphs[1].ID)
	require.NoError(t, Validate(doc))
}

func TestValidate_Duplicate(t *testing.T) {
	doc := sampleDoc()
	doc.Sections[0].Paragraphs[0].Sentences[1].ID = "s0"
	err := Validate(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestStream_SpansAndText(t *testing.T) {
	s := NewStream(sampleDoc())

	assert.Equal(t, "https://example.com/a", s.URL())
	assert.Equal(t, 6, s.Len())

	start, end, ok := s.Span("p0")
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 6, end)
	assert.Equal(t, "Hello world. Bye", s.Text(start, end))

	start, end, ok = s.Span("s1")
	require.True(t, ok)
	assert.Equal(t, 4, start)
	assert.Equal(t, 6, end)

	start, end, ok = s.Span("t2")
	require.True(t, ok)
	assert.Equal(t, []int{2, 3}, []int{start, end})

	_, _, ok = s.Span("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"t5", "s1", "p0", "sec0"}, s.Ancestors(5))
	assert.Equal(t, []string{"t1", "t2", "t3"}, s.IDs(1, 3))
	assert.Nil(t, s.IDs(3, 1))
}

func TestDocument_Sentences(t *testing.T) {
	got := sampleDoc().Sentences()
	require.Len(t, got, 2)
	assert.Equal(t, "s0", got[0].ID)
	assert.True(t, got[0].Rank.Valid)
	assert.False(t, got[1].Rank.Valid)
	assert.Equal(t, " Bye", sampleDoc().Sentence("s1").Text())
	assert.Equal(t, "Hello world. Bye", sampleDoc().Sections[0].Paragraphs[0].Text())
}

package segment

import (
	"strings"
	"testing"

	"github.com/depeele/summarization/internal/doctree"
)

func TestParagraphs_BlankLineSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\n\n\nThird paragraph."
	got := Paragraphs(input)
	want := []string{
		"First paragraph line one. First paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParagraphs_WhitespaceOnlyLines(t *testing.T) {
	got := Paragraphs("Para one.\n   \nPara two.")
	if len(got) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(got))
	}
}

func TestSentences_KeepTrailingWhitespace(t *testing.T) {
	input := "The quick fox. It jumped!  Did it? Yes"
	got := Sentences(input)
	want := []string{"The quick fox. ", "It jumped!  ", "Did it? ", "Yes"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
	if strings.Join(got, "") != input {
		t.Errorf("joined sentences do not reproduce input")
	}
}

func TestSentences_NoBreakInsideNumbers(t *testing.T) {
	got := Sentences("Pi is 3.14 roughly. Next.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %q", len(got), got)
	}
}

func TestSentences_ClosingQuote(t *testing.T) {
	got := Sentences(`He said "stop." Then left.`)
	if len(got) != 2 || got[0] != `He said "stop." ` {
		t.Fatalf("unexpected split: %q", got)
	}
}

func TestSentences_Empty(t *testing.T) {
	if got := Sentences("   "); len(got) != 0 {
		t.Errorf("expected no sentences, got %q", got)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Don't stop, well-known  cats.")
	want := []Piece{
		{doctree.Word, "Don't"},
		{doctree.Whitespace, " "},
		{doctree.Word, "stop"},
		{doctree.Punctuation, ","},
		{doctree.Whitespace, " "},
		{doctree.Word, "well-known"},
		{doctree.Whitespace, "  "},
		{doctree.Word, "cats"},
		{doctree.Punctuation, "."},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("piece[%d]: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestTokenize_TrailingJoinerIsPunctuation(t *testing.T) {
	got := Tokenize("cats' -")
	if len(got) != 4 || got[1].Type != doctree.Punctuation || got[1].Content != "'" {
		t.Fatalf("unexpected tokens: %+v", got)
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]doctree.TokenType{
		"word":  doctree.Word,
		"  ":    doctree.Whitespace,
		"":      doctree.Whitespace,
		"--":    doctree.Punctuation,
		"n'est": doctree.Word,
	}
	for in, want := range tests {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestParagraph_BuildsSentencesAndTokens(t *testing.T) {
	p := Paragraph("One two. Three.")
	if len(p.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(p.Sentences))
	}
	if p.Text() != "One two. Three." {
		t.Errorf("expected paragraph text to round-trip, got %q", p.Text())
	}
	if p.Sentences[0].Tokens[0].Type != doctree.Word {
		t.Errorf("expected first token to be a word")
	}
}

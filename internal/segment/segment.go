// Package segment splits plain text into the paragraph, sentence and token
// structure used by loaded documents.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/depeele/summarization/internal/doctree"
)

// Paragraphs splits on blank lines. Lines within a paragraph are joined
// with a single space.
func Paragraphs(text string) []string {
	var result []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			result = append(result, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return result
}

// Sentences breaks a paragraph after '.', '!' or '?' followed by whitespace.
// The whitespace stays attached to the sentence it follows, so joining the
// result reproduces the trimmed input exactly.
func Sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Swallow closing quotes/brackets and repeated terminators.
		for i < len(text) {
			next, n := utf8.DecodeRuneInString(text[i:])
			if !strings.ContainsRune(`.!?"')]`+"”’", next) {
				break
			}
			i += n
		}
		j := i
		for j < len(text) {
			next, n := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(next) {
				break
			}
			j += n
		}
		if j == i || j == len(text) {
			continue
		}
		sentences = append(sentences, text[start:j])
		start = j
		i = j
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// Piece is a classified slice of sentence text.
type Piece struct {
	Type    doctree.TokenType
	Content string
}

// Tokenize splits a sentence into words, whitespace runs and single
// punctuation marks. An apostrophe or hyphen between two word characters
// stays inside the word.
func Tokenize(s string) []Piece {
	var pieces []Piece
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		j := i + 1
		switch {
		case unicode.IsSpace(r):
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			pieces = append(pieces, Piece{Type: doctree.Whitespace, Content: string(runes[i:j])})
		case isWordRune(r):
			for j < len(runes) {
				if isWordRune(runes[j]) {
					j++
					continue
				}
				if isJoiner(runes[j]) && j+1 < len(runes) && isWordRune(runes[j+1]) {
					j += 2
					continue
				}
				break
			}
			pieces = append(pieces, Piece{Type: doctree.Word, Content: string(runes[i:j])})
		default:
			pieces = append(pieces, Piece{Type: doctree.Punctuation, Content: string(r)})
		}
		i = j
	}
	return pieces
}

// Classify returns the token type for an already-split piece of text.
func Classify(s string) doctree.TokenType {
	if s == "" || strings.TrimSpace(s) == "" {
		return doctree.Whitespace
	}
	for _, r := range s {
		if isWordRune(r) {
			return doctree.Word
		}
	}
	return doctree.Punctuation
}

// Sentence builds an unranked sentence node from raw text.
func Sentence(text string) *doctree.Sentence {
	sent := &doctree.Sentence{}
	for _, p := range Tokenize(text) {
		sent.Tokens = append(sent.Tokens, &doctree.Token{Type: p.Type, Content: p.Content})
	}
	return sent
}

// Paragraph builds a paragraph node, one sentence per detected sentence.
func Paragraph(text string) *doctree.Paragraph {
	para := &doctree.Paragraph{}
	for _, s := range Sentences(text) {
		para.Sentences = append(para.Sentences, Sentence(s))
	}
	return para
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '-' || r == '’'
}

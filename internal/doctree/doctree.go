package doctree

import "strings"

// TokenType classifies the literal content of a Token.
type TokenType string

const (
	Word        TokenType = "word"
	Whitespace  TokenType = "whitespace"
	Punctuation TokenType = "punctuation"
)

// Document is the root of a loaded article.
type Document struct {
	Type      string     `json:"type,omitempty"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Author    string     `json:"author,omitempty"`
	Published string     `json:"published,omitempty"`
	Keywords  []Keyword  `json:"keywords,omitempty"`
	Sections  []*Section `json:"sections"`
}

// Keyword is a named attribute of the document (subject, tag, ...).
type Keyword struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Section is a titled run of paragraphs. Title is empty for text that
// precedes the first heading.
type Section struct {
	ID         string       `json:"id"`
	Rank       Rank         `json:"rank,omitzero"`
	Title      string       `json:"title,omitempty"`
	Paragraphs []*Paragraph `json:"paragraphs"`
}

type Paragraph struct {
	ID        string      `json:"id"`
	Rank      Rank        `json:"rank,omitzero"`
	Sentences []*Sentence `json:"sentences"`
}

// Sentence is the unit the summary shows or hides.
type Sentence struct {
	ID     string   `json:"id"`
	Rank   Rank     `json:"rank,omitzero"`
	Tokens []*Token `json:"tokens"`
}

type Token struct {
	ID      string    `json:"id"`
	Type    TokenType `json:"type"`
	Rank    Rank      `json:"rank,omitzero"`
	Content string    `json:"content"`
}

// Text returns the literal text of the sentence.
func (s *Sentence) Text() string {
	var buf strings.Builder
	for _, t := range s.Tokens {
		buf.WriteString(t.Content)
	}
	return buf.String()
}

// Text returns the literal text of the paragraph.
func (p *Paragraph) Text() string {
	var buf strings.Builder
	for _, s := range p.Sentences {
		for _, t := range s.Tokens {
			buf.WriteString(t.Content)
		}
	}
	return buf.String()
}

// SentenceRank pairs a sentence id with its rank.
type SentenceRank struct {
	ID   string
	Rank Rank
}

// Sentences lists every sentence in document order.
func (d *Document) Sentences() []SentenceRank {
	var out []SentenceRank
	for _, sec := range d.Sections {
		for _, p := range sec.Paragraphs {
			for _, s := range p.Sentences {
				out = append(out, SentenceRank{ID: s.ID, Rank: s.Rank})
			}
		}
	}
	return out
}

// Sentence looks up a sentence by id.
func (d *Document) Sentence(id string) *Sentence {
	for _, sec := range d.Sections {
		for _, p := range sec.Paragraphs {
			for _, s := range p.Sentences {
				if s.ID == id {
					return s
				}
			}
		}
	}
	return nil
}

// Walk visits every node id in document order, parents before children.
func (d *Document) Walk(fn func(kind Kind, id string)) {
	for _, k := range d.Keywords {
		fn(KindKeyword, k.ID)
	}
	for _, sec := range d.Sections {
		fn(KindSection, sec.ID)
		for _, p := range sec.Paragraphs {
			fn(KindParagraph, p.ID)
			for _, s := range p.Sentences {
				fn(KindSentence, s.ID)
				for _, t := range s.Tokens {
					fn(KindToken, t.ID)
				}
			}
		}
	}
}

// Kind names a level of the document hierarchy.
type Kind string

const (
	KindKeyword   Kind = "keyword"
	KindSection   Kind = "section"
	KindParagraph Kind = "paragraph"
	KindSentence  Kind = "sentence"
	KindToken     Kind = "token"
)

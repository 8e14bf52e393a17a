package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/segment"
)

// builder accumulates sections and paragraphs in document order. Text
// before the first heading goes into an untitled section.
type builder struct {
	doc *doctree.Document
	cur *doctree.Section
}

func newBuilder(title string) *builder {
	return &builder{doc: &doctree.Document{Title: title}}
}

// section starts a new section.
func (b *builder) section(id, title string, rank doctree.Rank) {
	b.cur = &doctree.Section{ID: id, Title: strings.TrimSpace(title), Rank: rank}
	b.doc.Sections = append(b.doc.Sections, b.cur)
}

func (b *builder) paragraph(p *doctree.Paragraph) {
	if p == nil {
		return
	}
	if b.cur == nil {
		b.section("", "", doctree.Rank{})
	}
	b.cur.Paragraphs = append(b.cur.Paragraphs, p)
}

// text splits free text on blank lines and adds one paragraph per block.
func (b *builder) text(s string) {
	for _, para := range segment.Paragraphs(s) {
		b.paragraph(segment.Paragraph(para))
	}
}

// finish drops paragraphs and sentences left without content, then
// normalizes the tree.
func (b *builder) finish() (*doctree.Document, error) {
	for _, sec := range b.doc.Sections {
		for _, p := range sec.Paragraphs {
			p.Sentences = slices.DeleteFunc(p.Sentences, func(s *doctree.Sentence) bool { return len(s.Tokens) == 0 })
		}
		sec.Paragraphs = slices.DeleteFunc(sec.Paragraphs, func(p *doctree.Paragraph) bool { return len(p.Sentences) == 0 })
	}
	return normalize(b.doc)
}

// normalize drops null nodes, fills missing ids and token types, and
// checks id uniqueness.
func normalize(doc *doctree.Document) (*doctree.Document, error) {
	doc.Sections = slices.DeleteFunc(doc.Sections, func(s *doctree.Section) bool { return s == nil })
	for _, sec := range doc.Sections {
		sec.Paragraphs = slices.DeleteFunc(sec.Paragraphs, func(p *doctree.Paragraph) bool { return p == nil })
		for _, p := range sec.Paragraphs {
			p.Sentences = slices.DeleteFunc(p.Sentences, func(s *doctree.Sentence) bool { return s == nil })
			for _, s := range p.Sentences {
				s.Tokens = slices.DeleteFunc(s.Tokens, func(t *doctree.Token) bool { return t == nil })
				for _, t := range s.Tokens {
					if t.Type == "" {
						t.Type = segment.Classify(t.Content)
					}
				}
			}
		}
	}
	doctree.AssignIDs(doc)
	if err := doctree.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/segment"
)

// XMLParser reads the XML form of the document format:
//
//	<document url="" title="" author="" published="">
//	  <keyword id="" name="" value=""/>
//	  <section id="" rank="" title="">
//	    <paragraph id="" rank="">
//	      <sentence id="" rank=""><token id="" type="">word</token>...</sentence>
//
// <p>, <s> and <w> are accepted as short names, and <title>/<author> may be
// child elements. Text not wrapped in a finer element is segmented: bare
// text in a sentence becomes tokens, in a paragraph sentences, and in a
// section paragraphs.
type XMLParser struct{}

func (p *XMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	x := &xmlReader{b: newBuilder(titleFromFilename(filename))}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse xml: %w", ErrInvalidDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			x.start(t)
		case xml.EndElement:
			x.end(t.Name.Local)
		case xml.CharData:
			x.chars(string(t))
		}
	}
	x.flush()
	return x.b.finish()
}

type xmlReader struct {
	b       *builder
	para    *doctree.Paragraph
	sent    *doctree.Sentence
	tok     *doctree.Token
	capture *string
	pending strings.Builder
}

func (x *xmlReader) start(el xml.StartElement) {
	a := func(name string) string {
		for _, at := range el.Attr {
			if at.Name.Local == name {
				return strings.TrimSpace(at.Value)
			}
		}
		return ""
	}

	switch el.Name.Local {
	case "document", "article":
		doc := x.b.doc
		if v := a("title"); v != "" {
			doc.Title = v
		}
		doc.URL, doc.Type = a("url"), a("type")
		doc.Author, doc.Published = a("author"), a("published")
	case "title":
		x.flush()
		if x.b.cur != nil {
			x.capture = &x.b.cur.Title
		} else {
			x.capture = &x.b.doc.Title
		}
		*x.capture = ""
	case "author":
		x.flush()
		x.capture = &x.b.doc.Author
		*x.capture = ""
	case "keyword":
		x.b.doc.Keywords = append(x.b.doc.Keywords, doctree.Keyword{ID: a("id"), Name: a("name"), Value: a("value")})
	case "section":
		x.flush()
		x.para, x.sent = nil, nil
		x.b.section(a("id"), a("title"), doctree.ParseRank(a("rank")))
	case "paragraph", "p":
		x.flush()
		x.sent = nil
		x.para = &doctree.Paragraph{ID: a("id"), Rank: doctree.ParseRank(a("rank"))}
		x.b.paragraph(x.para)
	case "sentence", "s":
		x.flush()
		if x.para == nil {
			x.start(xml.StartElement{Name: xml.Name{Local: "paragraph"}})
		}
		x.sent = &doctree.Sentence{ID: a("id"), Rank: doctree.ParseRank(a("rank"))}
		x.para.Sentences = append(x.para.Sentences, x.sent)
	case "token", "w":
		x.flush()
		if x.sent == nil {
			x.start(xml.StartElement{Name: xml.Name{Local: "sentence"}})
		}
		x.tok = &doctree.Token{ID: a("id"), Type: doctree.TokenType(a("type")), Rank: doctree.ParseRank(a("rank"))}
		x.sent.Tokens = append(x.sent.Tokens, x.tok)
	}
}

func (x *xmlReader) end(name string) {
	switch name {
	case "title", "author":
		if x.capture != nil {
			*x.capture = collapseSpace(*x.capture)
		}
		x.capture = nil
	case "token", "w":
		x.tok = nil
	case "sentence", "s":
		x.flush()
		x.sent = nil
	case "paragraph", "p":
		x.flush()
		x.para, x.sent = nil, nil
	case "section":
		x.flush()
	}
}

func (x *xmlReader) chars(s string) {
	switch {
	case x.capture != nil:
		*x.capture += s
	case x.tok != nil:
		x.tok.Content += s
	default:
		x.pending.WriteString(s)
	}
}

// flush attaches pending bare text to the innermost open element.
func (x *xmlReader) flush() {
	raw := x.pending.String()
	x.pending.Reset()
	text := collapseSpace(raw)

	switch {
	case x.sent != nil:
		if text == "" {
			if raw != "" {
				appendSpace(x.sent)
			}
			return
		}
		for _, pc := range segment.Tokenize(spaced(raw, text)) {
			x.sent.Tokens = append(x.sent.Tokens, &doctree.Token{Type: pc.Type, Content: pc.Content})
		}
	case x.para != nil:
		if text == "" {
			// Whitespace between sentence elements separates them.
			if raw != "" && len(x.para.Sentences) > 0 {
				appendSpace(x.para.Sentences[len(x.para.Sentences)-1])
			}
			return
		}
		for _, s := range segment.Sentences(text) {
			x.para.Sentences = append(x.para.Sentences, segment.Sentence(s))
		}
	default:
		x.b.text(raw)
	}
}

// spaced restores single leading and trailing spaces that collapseSpace
// removed, so bare text between token elements stays separated.
func spaced(raw, text string) string {
	if raw != "" && strings.TrimLeft(raw, " \t\r\n") != raw {
		text = " " + text
	}
	if raw != "" && strings.TrimRight(raw, " \t\r\n") != raw {
		text += " "
	}
	return text
}

// appendSpace ends s with a single space token unless it is empty or
// already ends in whitespace.
func appendSpace(s *doctree.Sentence) {
	n := len(s.Tokens)
	if n == 0 || s.Tokens[n-1].Type == doctree.Whitespace {
		return
	}
	s.Tokens = append(s.Tokens, &doctree.Token{Type: doctree.Whitespace, Content: " "})
}

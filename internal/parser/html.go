package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/segment"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Headings start sections and block text
// elements become paragraphs. The id and data-rank attributes of headings,
// blocks and sentence spans are preserved.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := newBuilder(titleFromFilename(filename))
	if title := findTitle(root); title != "" {
		b.doc.Title = title
	}
	readMeta(root, b.doc)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if headingLevel(n.Data) > 0 {
				b.section(attr(n, "id"), textContent(n), doctree.ParseRank(attr(n, "data-rank")))
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "noscript":
				return
			case "p", "li", "td", "blockquote":
				b.paragraph(htmlParagraph(n))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(root, "body"); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	return b.finish()
}

// htmlParagraph builds a paragraph from a block element. Child spans that
// carry data-rank are taken as pre-split sentences; otherwise the text is
// segmented.
func htmlParagraph(n *html.Node) *doctree.Paragraph {
	var spans []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "span" && hasAttr(c, "data-rank") {
			spans = append(spans, c)
		}
	}

	var para *doctree.Paragraph
	if len(spans) == 0 {
		para = segment.Paragraph(collapseSpace(textContent(n)))
	} else {
		para = &doctree.Paragraph{}
		for i, sp := range spans {
			text := collapseSpace(textContent(sp))
			if text == "" {
				continue
			}
			if i < len(spans)-1 {
				text += " "
			}
			sent := segment.Sentence(text)
			sent.ID = attr(sp, "id")
			sent.Rank = doctree.ParseRank(attr(sp, "data-rank"))
			para.Sentences = append(para.Sentences, sent)
		}
	}
	para.ID = attr(n, "id")
	para.Rank = doctree.ParseRank(attr(n, "data-rank"))
	return para
}

// readMeta copies author, publication date and keywords from <meta> tags.
func readMeta(root *html.Node, doc *doctree.Document) {
	head := findElement(root, "head")
	if head == nil {
		return
	}
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "meta" {
			continue
		}
		name := strings.ToLower(attr(c, "name"))
		if name == "" {
			name = strings.ToLower(attr(c, "property"))
		}
		content := strings.TrimSpace(attr(c, "content"))
		if content == "" {
			continue
		}
		switch name {
		case "author":
			doc.Author = content
		case "article:published_time", "date":
			doc.Published = content
		case "keywords":
			for _, kw := range strings.Split(content, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					doc.Keywords = append(doc.Keywords, doctree.Keyword{Name: "keyword", Value: kw})
				}
			}
		}
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func findTitle(n *html.Node) string {
	if t := findElement(n, "title"); t != nil {
		return textContent(t)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collapseSpace replaces every whitespace run with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

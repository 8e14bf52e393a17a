package parser

import (
	"io"

	"github.com/depeele/summarization/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b := newBuilder(titleFromFilename(filename))
	b.text(string(src))
	return b.finish()
}

package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/depeele/summarization/internal/doctree"
)

// JSONParser decodes the structured document payload.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	var doc doctree.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode json: %w", ErrInvalidDocument, err)
	}
	if doc.Title == "" {
		doc.Title = titleFromFilename(filename)
	}
	return normalize(&doc)
}

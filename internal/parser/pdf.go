package parser

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/depeele/summarization/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Each non-blank page becomes a section. When
// the Go reader yields no text, pdftotext is tried if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	f, size, cleanup, err := spool(r, "summarization-pdf-*.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pages, err := readPDFPages(f, size)
	if (err != nil || blankPages(pages)) && p.FallbackPdftotext {
		if alt, altErr := pdftotextPages(f.Name()); altErr == nil {
			pages, err = alt, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	b := newBuilder(titleFromFilename(filename))
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		b.section(fmt.Sprintf("page-%d", i+1), fmt.Sprintf("Page %d", i+1), doctree.Rank{})
		b.text(page)
	}
	return b.finish()
}

// readPDFPages returns the plain text of every page. Pages that fail to
// decode come back empty so page numbers stay aligned.
func readPDFPages(ra io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdflib.NewReader(ra, size)
	if err != nil {
		return nil, err
	}
	pages := make([]string, reader.NumPage())
	for i := range pages {
		page := reader.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		if text, err := page.GetPlainText(nil); err == nil {
			pages[i] = text
		}
	}
	return pages, nil
}

func pdftotextPages(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds.
	return strings.Split(string(out), "\f"), nil
}

func blankPages(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

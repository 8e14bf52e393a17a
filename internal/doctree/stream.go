package doctree

import "strings"

// Stream is a flattened, token-addressable view of a Document. Token
// positions are zero-based indexes into document order and are the
// coordinate space for selections and resolved ranges.
type Stream struct {
	url    string
	tokens []*Token
	chains [][]string
	spans  map[string]span
}

type span struct{ start, end int }

// NewStream flattens doc. The document must not be mutated afterwards.
func NewStream(doc *Document) *Stream {
	s := &Stream{
		url:   doc.URL,
		spans: make(map[string]span),
	}

	end := func(id string, start int) {
		if id == "" {
			return
		}
		if _, dup := s.spans[id]; dup {
			return
		}
		s.spans[id] = span{start: start, end: len(s.tokens)}
	}

	for _, sec := range doc.Sections {
		secStart := len(s.tokens)
		for _, p := range sec.Paragraphs {
			pStart := len(s.tokens)
			for _, sent := range p.Sentences {
				sStart := len(s.tokens)
				for _, t := range sent.Tokens {
					tStart := len(s.tokens)
					s.tokens = append(s.tokens, t)
					s.chains = append(s.chains, []string{t.ID, sent.ID, p.ID, sec.ID})
					end(t.ID, tStart)
				}
				end(sent.ID, sStart)
			}
			end(p.ID, pStart)
		}
		end(sec.ID, secStart)
	}
	return s
}

// URL is the address the document was loaded from.
func (s *Stream) URL() string { return s.url }

// Len returns the number of tokens.
func (s *Stream) Len() int { return len(s.tokens) }

// Token returns the token at position i.
func (s *Stream) Token(i int) *Token { return s.tokens[i] }

// Content returns the literal text of the token at position i.
func (s *Stream) Content(i int) string { return s.tokens[i].Content }

// Ancestors returns the ids enclosing token i, innermost first: the token
// itself, then its sentence, paragraph and section. Ids may be empty when
// the document was not normalized.
func (s *Stream) Ancestors(i int) []string { return s.chains[i] }

// Span reports the half-open token range [start, end) covered by the node
// with the given id.
func (s *Stream) Span(id string) (start, end int, ok bool) {
	sp, ok := s.spans[id]
	return sp.start, sp.end, ok
}

// Text concatenates the content of tokens in [start, end).
func (s *Stream) Text(start, end int) string {
	var buf strings.Builder
	for i := start; i < end; i++ {
		buf.WriteString(s.tokens[i].Content)
	}
	return buf.String()
}

// IDs returns the token ids in [start, end].
func (s *Stream) IDs(first, last int) []string {
	if first < 0 || last >= len(s.tokens) || first > last {
		return nil
	}
	out := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, s.tokens[i].ID)
	}
	return out
}

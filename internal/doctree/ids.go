package doctree

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned by Validate when two nodes share an id.
var ErrDuplicateID = errors.New("duplicate id")

var idPrefix = map[Kind]string{
	KindKeyword:   "k",
	KindSection:   "sec",
	KindParagraph: "p",
	KindSentence:  "s",
	KindToken:     "t",
}

// AssignIDs gives every node without an id a synthesized one of the form
// <prefix><index>, where index counts nodes of the same kind in document
// order starting at zero. Existing ids are never changed, and a synthesized
// id that is already taken is skipped.
func AssignIDs(doc *Document) {
	used := make(map[string]bool)
	doc.Walk(func(_ Kind, id string) {
		if id != "" {
			used[id] = true
		}
	})

	next := make(map[Kind]int)
	assign := func(kind Kind, id *string) {
		n := next[kind]
		next[kind] = n + 1
		if *id != "" {
			return
		}
		for {
			cand := fmt.Sprintf("%s%d", idPrefix[kind], n)
			if !used[cand] {
				*id = cand
				used[cand] = true
				return
			}
			n++
			next[kind] = n + 1
		}
	}

	for i := range doc.Keywords {
		assign(KindKeyword, &doc.Keywords[i].ID)
	}
	for _, sec := range doc.Sections {
		assign(KindSection, &sec.ID)
		for _, p := range sec.Paragraphs {
			assign(KindParagraph, &p.ID)
			for _, s := range p.Sentences {
				assign(KindSentence, &s.ID)
				for _, t := range s.Tokens {
					assign(KindToken, &t.ID)
				}
			}
		}
	}
}

// Validate checks that ids are present and unique across the document.
func Validate(doc *Document) error {
	seen := make(map[string]Kind)
	var err error
	doc.Walk(func(kind Kind, id string) {
		if err != nil {
			return
		}
		if id == "" {
			err = fmt.Errorf("%s without id", kind)
			return
		}
		if prev, ok := seen[id]; ok {
			err = fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateID, id, prev, kind)
			return
		}
		seen[id] = kind
	})
	return err
}

// Package notes holds reader annotations. Notes and comments each embed a
// Selectable, which carries the anchor they are attached to.
package notes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/depeele/summarization/internal/anchor"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrNotFound  = errors.New("note not found")
	ErrEmptyText = errors.New("note text is empty")
)

// Selectable is the selection-anchor capability shared by notes and
// comments.
type Selectable struct {
	Anchor anchor.Anchor `json:"anchor"`
}

// OnPage reports whether the anchor belongs to the page at url.
func (s Selectable) OnPage(url string) bool {
	return anchor.SameURL(s.Anchor.URL, url)
}

// Resolve locates the anchored text in doc.
func (s Selectable) Resolve(doc anchor.Document) anchor.Resolution {
	return anchor.Resolve(doc, s.Anchor)
}

// Note is a reader's annotation on a span of a page.
type Note struct {
	ID string `json:"id"`
	Selectable
	Text     string    `json:"text"`
	Author   string    `json:"author"`
	Created  time.Time `json:"created"`
	Comments []Comment `json:"comments"`
}

// Comment is a reply attached to a note, anchored on its own span.
type Comment struct {
	ID string `json:"id"`
	Selectable
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Created time.Time `json:"created"`
}

// Store is an in-memory note registry.
type Store struct {
	mu     sync.Mutex
	notes  map[string]*Note
	policy *bluemonday.Policy
	now    func() time.Time
	newID  func() string
}

func NewStore() *Store {
	return &Store{
		notes:  make(map[string]*Note),
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Create stores a new note anchored at a. The anchor is validated and the
// text sanitized; markup outside the UGC allow-list is stripped.
func (s *Store) Create(a anchor.Source, text, author string) (Note, error) {
	anc, err := anchor.Normalize(a)
	if err != nil {
		return Note{}, err
	}
	clean := s.sanitize(text)
	if clean == "" {
		return Note{}, ErrEmptyText
	}

	n := &Note{
		ID:         s.newID(),
		Selectable: Selectable{Anchor: anc},
		Text:       clean,
		Author:     strings.TrimSpace(s.policy.Sanitize(author)),
		Created:    s.now(),
		Comments:   []Comment{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[n.ID] = n
	return copyNote(n), nil
}

// AddComment attaches a comment to an existing note.
func (s *Store) AddComment(noteID string, a anchor.Source, text, author string) (Comment, error) {
	anc, err := anchor.Normalize(a)
	if err != nil {
		return Comment{}, err
	}
	clean := s.sanitize(text)
	if clean == "" {
		return Comment{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[noteID]
	if !ok {
		return Comment{}, fmt.Errorf("%w: %s", ErrNotFound, noteID)
	}
	c := Comment{
		ID:         s.newID(),
		Selectable: Selectable{Anchor: anc},
		Text:       clean,
		Author:     strings.TrimSpace(s.policy.Sanitize(author)),
		Created:    s.now(),
	}
	n.Comments = append(n.Comments, c)
	return c, nil
}

// Get returns a copy of the note.
func (s *Store) Get(id string) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return Note{}, false
	}
	return copyNote(n), true
}

// Delete removes a note and its comments.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return false
	}
	delete(s.notes, id)
	return true
}

// ListByURL returns the notes anchored on url, oldest first.
func (s *Store) ListByURL(url string) []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Note
	for _, n := range s.notes {
		if n.OnPage(url) {
			out = append(out, copyNote(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) sanitize(text string) string {
	return strings.TrimSpace(s.policy.Sanitize(text))
}

func copyNote(n *Note) Note {
	c := *n
	c.Comments = append([]Comment{}, n.Comments...)
	return c
}

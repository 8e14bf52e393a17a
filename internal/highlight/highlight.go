// Package highlight tracks the on-page presentation state of every
// highlighted anchor. Each anchor keeps its own snapshot of the original
// presentation taken when it was attached, so hovering one highlight never
// disturbs another.
package highlight

import (
	"errors"
	"maps"
	"sync"
)

// State of a single highlight.
type State int

const (
	Unattached State = iota
	Attached
	HoverActive
	Removed
)

func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Attached:
		return "attached"
	case HoverActive:
		return "hover-active"
	case Removed:
		return "removed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Style is a set of presentation properties (border, background, ...).
type Style map[string]string

var (
	ErrRemoved = errors.New("highlight removed")
	ErrNoID    = errors.New("highlight id is empty")
)

type entry struct {
	state State
	saved Style
}

// Registry maps highlight ids to their state and saved style.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Attach records original as the style to restore for id. Attaching an
// attached highlight refreshes the snapshot; while hover is active the
// snapshot is kept, since the element currently shows the hover style.
func (r *Registry) Attach(id string, original Style) error {
	if id == "" {
		return ErrNoID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	switch {
	case !ok || e.state == Unattached:
		r.entries[id] = &entry{state: Attached, saved: maps.Clone(original)}
	case e.state == Attached:
		e.saved = maps.Clone(original)
	case e.state == Removed:
		return ErrRemoved
	}
	return nil
}

// Enter moves an attached highlight to hover-active. It reports whether
// the state changed.
func (r *Registry) Enter(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.state != Attached {
		return false
	}
	e.state = HoverActive
	return true
}

// Leave ends hover and returns the style to restore.
func (r *Registry) Leave(id string) (Style, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.state != HoverActive {
		return nil, false
	}
	e.state = Attached
	return maps.Clone(e.saved), true
}

// Detach takes the highlight off the page without deleting the
// annotation. It returns the style to restore; detaching a highlight that
// is not attached is a no-op.
func (r *Registry) Detach(id string) (Style, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || (e.state != Attached && e.state != HoverActive) {
		return nil, false
	}
	saved := e.saved
	delete(r.entries, id)
	return saved, true
}

// Remove marks the highlight as deleted for good and returns the style to
// restore, if it was on the page. An id with no entry is left untracked.
func (r *Registry) Remove(id string) (Style, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.state == Removed {
		return nil, false
	}
	saved := e.saved
	onPage := e.state == Attached || e.state == HoverActive
	e.state, e.saved = Removed, nil
	return saved, onPage
}

// State returns the current state of id.
func (r *Registry) State(id string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e.state
	}
	return Unattached
}

// Saved returns a copy of the snapshot taken at attach time.
func (r *Registry) Saved(id string) (Style, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.saved == nil {
		return nil, false
	}
	return maps.Clone(e.saved), true
}

// Active lists ids currently attached or hovered.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for id, e := range r.entries {
		if e.state == Attached || e.state == HoverActive {
			out = append(out, id)
		}
	}
	return out
}

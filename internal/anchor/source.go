package anchor

import (
	"encoding/json"
	"fmt"
)

// Source is what callers hand in when restoring an annotation: either an
// already typed Anchor or a RawAnchor decoded from storage. Normalize turns
// either into an Anchor once, at the boundary.
type Source interface {
	anchorSource()
}

func (Anchor) anchorSource()    {}
func (RawAnchor) anchorSource() {}

// RawAnchor is an untyped anchor record as found in stored notes. Older
// records use snake_case keys.
type RawAnchor map[string]any

// Normalize validates src and returns it as an Anchor.
func Normalize(src Source) (Anchor, error) {
	switch v := src.(type) {
	case Anchor:
		return v, v.Validate()
	case RawAnchor:
		a := Anchor{}
		var err error
		if a.URL, err = v.field("url"); err != nil {
			return Anchor{}, err
		}
		if a.AncestorID, err = v.field("ancestorId", "ancestor_id"); err != nil {
			return Anchor{}, err
		}
		if a.AnchorText, err = v.field("anchorText", "anchor_text"); err != nil {
			return Anchor{}, err
		}
		return a, a.Validate()
	case nil:
		return Anchor{}, fmt.Errorf("%w: no anchor", ErrMalformedAnchor)
	default:
		return Anchor{}, fmt.Errorf("%w: unsupported source %T", ErrMalformedAnchor, src)
	}
}

// Decode reads a JSON anchor record in either key style.
func Decode(data []byte) (Anchor, error) {
	var raw RawAnchor
	if err := json.Unmarshal(data, &raw); err != nil {
		return Anchor{}, fmt.Errorf("%w: %v", ErrMalformedAnchor, err)
	}
	return Normalize(raw)
}

func (r RawAnchor) field(keys ...string) (string, error) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: %s is %T, not a string", ErrMalformedAnchor, k, v)
		}
		return s, nil
	}
	return "", nil
}

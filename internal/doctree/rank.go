package doctree

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Rank is an optional relevance score produced by an external summarizer.
// The zero value means "rank unknown".
type Rank struct {
	Value float64
	Valid bool
}

// NewRank returns a valid Rank unless v is NaN or infinite.
func NewRank(v float64) Rank {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Rank{}
	}
	return Rank{Value: v, Valid: true}
}

// ParseRank parses a textual rank. Anything unparsable yields the zero Rank.
func ParseRank(s string) Rank {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rank{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Rank{}
	}
	return NewRank(v)
}

// Ptr returns the rank value, or nil when the rank is unknown.
func (r Rank) Ptr() *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}

func (r Rank) IsZero() bool { return !r.Valid }

func (r Rank) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Other values decode to
// an unknown rank instead of failing the whole document.
func (r *Rank) UnmarshalJSON(b []byte) error {
	*r = Rank{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*r = ParseRank(s)
		return nil
	}
	*r = ParseRank(string(b))
	return nil
}

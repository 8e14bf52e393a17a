package rank

// Summary is the show/hide state of one document. It owns the cached
// bucket table; changing the sentence count or toggling expansion only
// re-runs the threshold scan.
type Summary struct {
	table     *Table
	show      int
	expanded  bool
	threshold Threshold
}

// NewSummary computes the initial threshold for showSentences.
func NewSummary(table *Table, showSentences int) *Summary {
	s := &Summary{table: table, show: showSentences}
	s.recompute()
	return s
}

func (s *Summary) recompute() {
	if s.expanded {
		s.threshold = s.table.Threshold(0)
		return
	}
	s.threshold = s.table.Threshold(s.show)
}

// Table returns the cached bucket table.
func (s *Summary) Table() *Table { return s.table }

// Threshold returns the current threshold.
func (s *Summary) Threshold() Threshold { return s.threshold }

// ShowSentences returns the configured minimum.
func (s *Summary) ShowSentences() int { return s.show }

// SetShowSentences changes the minimum and recomputes.
func (s *Summary) SetShowSentences(n int) {
	s.show = n
	s.recompute()
}

// Expanded reports whether every ranked sentence is being shown.
func (s *Summary) Expanded() bool { return s.expanded }

// Expand shows every ranked sentence above bucket 0.
func (s *Summary) Expand() {
	s.expanded = true
	s.recompute()
}

// Collapse returns to the ShowSentences threshold.
func (s *Summary) Collapse() {
	s.expanded = false
	s.recompute()
}

// Toggle flips between expanded and collapsed and returns the new state.
func (s *Summary) Toggle() bool {
	if s.expanded {
		s.Collapse()
	} else {
		s.Expand()
	}
	return s.expanded
}

// Visible reports whether a sentence is currently shown.
func (s *Summary) Visible(id string) bool {
	return s.table.Visible(id, s.threshold)
}

// VisibleIDs lists the shown sentences in document order.
func (s *Summary) VisibleIDs() []string {
	return s.table.VisibleIDs(s.threshold)
}

// Package rank turns per-sentence relevance scores into a show/hide
// decision. Sentences are grouped into integer percentile buckets and a
// threshold bucket is chosen so that a minimum number of the highest ranked
// sentences is shown.
package rank

import (
	"math"
	"strconv"
)

const (
	// DefaultShowSentences is the minimum number of sentences a summary
	// tries to exceed.
	DefaultShowSentences = 5

	// MaxBucket is the bucket of a rank of 1.0.
	MaxBucket = 100
)

// Sentence is a sentence id with its rank. A nil Rank means unknown.
type Sentence struct {
	ID   string   `json:"id"`
	Rank *float64 `json:"rank"`
}

// Threshold is the lowest bucket whose sentences are shown. The zero value
// is NoThreshold: no bucket qualified and nothing is shown.
type Threshold struct {
	Bucket int
	Found  bool
}

// NoThreshold is returned when the bucket scan is exhausted.
var NoThreshold = Threshold{}

// Admits reports whether a sentence in bucket b is shown.
func (t Threshold) Admits(b int) bool {
	return t.Found && b >= t.Bucket
}

func (t Threshold) MarshalJSON() ([]byte, error) {
	if !t.Found {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(t.Bucket)), nil
}

// BucketOf maps a rank to its percentile bucket, floor(r*100) clamped to
// [0, MaxBucket]. Non-finite ranks have no bucket.
func BucketOf(r float64) (int, bool) {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	b := int(math.Floor(r * 100))
	if b < 0 {
		b = 0
	}
	if b > MaxBucket {
		b = MaxBucket
	}
	return b, true
}

// Table is the bucket table for one ranking pass. It is built once per
// document and reused for every threshold query.
type Table struct {
	buckets [MaxBucket + 1][]string
	bucket  map[string]int
	order   []string
}

// Build groups the ranked sentences by bucket. Sentences without a usable
// rank are left out and never become visible.
func Build(sentences []Sentence) *Table {
	t := &Table{bucket: make(map[string]int, len(sentences))}
	for _, s := range sentences {
		if s.Rank == nil {
			continue
		}
		b, ok := BucketOf(*s.Rank)
		if !ok {
			continue
		}
		if _, dup := t.bucket[s.ID]; dup {
			continue
		}
		t.bucket[s.ID] = b
		t.buckets[b] = append(t.buckets[b], s.ID)
		t.order = append(t.order, s.ID)
	}
	return t
}

// Compute is Build followed by Threshold.
func Compute(sentences []Sentence, minCount int) Threshold {
	return Build(sentences).Threshold(minCount)
}

// Threshold scans buckets from MaxBucket down to 1, accumulating sentence
// counts, and returns the first bucket at which the running total strictly
// exceeds minCount. Bucket 0 is never included. When minCount <= 0 every
// ranked sentence above bucket 0 qualifies, so the threshold is the lowest
// populated bucket.
func (t *Table) Threshold(minCount int) Threshold {
	if minCount <= 0 {
		for b := 1; b <= MaxBucket; b++ {
			if len(t.buckets[b]) > 0 {
				return Threshold{Bucket: b, Found: true}
			}
		}
		return NoThreshold
	}

	total := 0
	for b := MaxBucket; b >= 1; b-- {
		total += len(t.buckets[b])
		if total > minCount {
			return Threshold{Bucket: b, Found: true}
		}
	}
	return NoThreshold
}

// Bucket returns the bucket of a ranked sentence.
func (t *Table) Bucket(id string) (int, bool) {
	b, ok := t.bucket[id]
	return b, ok
}

// Count returns the number of sentences in bucket b.
func (t *Table) Count(b int) int {
	if b < 0 || b > MaxBucket {
		return 0
	}
	return len(t.buckets[b])
}

// Members returns the sentence ids in bucket b, in input order.
func (t *Table) Members(b int) []string {
	if b < 0 || b > MaxBucket {
		return nil
	}
	return append([]string(nil), t.buckets[b]...)
}

// Ranked returns how many sentences carry a usable rank.
func (t *Table) Ranked() int { return len(t.order) }

// Visible reports whether sentence id is shown under th.
func (t *Table) Visible(id string, th Threshold) bool {
	b, ok := t.bucket[id]
	return ok && th.Admits(b)
}

// VisibleIDs lists the sentences shown under th, in input order.
func (t *Table) VisibleIDs(th Threshold) []string {
	if !th.Found {
		return nil
	}
	var out []string
	for _, id := range t.order {
		if th.Admits(t.bucket[id]) {
			out = append(out, id)
		}
	}
	return out
}

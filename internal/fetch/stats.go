package fetch

import (
	"errors"
	"slices"
	"sync"
	"time"
)

const defaultStatsCapacity = 512

// Outcome classifies one upstream request.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeRetryable Outcome = "retryable"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// OutcomeOf maps a fetchOnce error to its outcome.
func OutcomeOf(err error) Outcome {
	var re *RetryableError
	var se *StatusError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &re):
		return OutcomeRetryable
	case errors.As(err, &se):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

type observation struct {
	at      time.Time
	elapsed time.Duration
	outcome Outcome
}

// Latency summarises elapsed times in milliseconds. Percentiles use the
// nearest-rank method.
type Latency struct {
	Min  float64 `json:"min_ms"`
	Mean float64 `json:"mean_ms"`
	P50  float64 `json:"p50_ms"`
	P90  float64 `json:"p90_ms"`
	P99  float64 `json:"p99_ms"`
	Max  float64 `json:"max_ms"`
}

// StatsSnapshot aggregates the observations inside the window.
type StatsSnapshot struct {
	Window    string          `json:"window"`
	Requests  int             `json:"requests"`
	Outcomes  map[Outcome]int `json:"outcomes"`
	ErrorRate float64         `json:"error_rate"`
	Latency   Latency         `json:"latency"`
}

// Stats keeps the most recent upstream requests in a fixed ring. Snapshots
// only count observations younger than the window.
type Stats struct {
	mu     sync.Mutex
	ring   []observation
	next   int
	filled bool
	window time.Duration
	now    func() time.Time
}

// NewStats returns a tracker holding up to capacity observations. A
// non-positive window defaults to one hour.
func NewStats(window time.Duration, capacity int) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	if capacity <= 0 {
		capacity = defaultStatsCapacity
	}
	return &Stats{
		ring:   make([]observation, capacity),
		window: window,
		now:    time.Now,
	}
}

// Record adds one request that took elapsed and ended with err.
func (s *Stats) Record(elapsed time.Duration, err error) {
	elapsed = max(elapsed, 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring[s.next] = observation{at: s.now(), elapsed: elapsed, outcome: OutcomeOf(err)}
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.filled = true
	}
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{Window: s.window.String(), Outcomes: map[Outcome]int{}}
	n := s.next
	if s.filled {
		n = len(s.ring)
	}
	cutoff := s.now().Add(-s.window)
	var elapsed []time.Duration
	var total time.Duration
	for _, o := range s.ring[:n] {
		if o.at.Before(cutoff) {
			continue
		}
		snap.Outcomes[o.outcome]++
		elapsed = append(elapsed, o.elapsed)
		total += o.elapsed
	}
	snap.Requests = len(elapsed)
	if snap.Requests == 0 {
		return snap
	}

	snap.ErrorRate = float64(snap.Requests-snap.Outcomes[OutcomeOK]) / float64(snap.Requests)
	slices.Sort(elapsed)
	snap.Latency = Latency{
		Min:  millis(elapsed[0]),
		Mean: millis(total) / float64(len(elapsed)),
		P50:  millis(nearestRank(elapsed, 50)),
		P90:  millis(nearestRank(elapsed, 90)),
		P99:  millis(nearestRank(elapsed, 99)),
		Max:  millis(elapsed[len(elapsed)-1]),
	}
	return snap
}

// nearestRank returns the smallest value with at least pct percent of the
// sorted values at or below it.
func nearestRank(sorted []time.Duration, pct int) time.Duration {
	rank := (pct*len(sorted) + 99) / 100
	return sorted[min(max(rank, 1), len(sorted))-1]
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

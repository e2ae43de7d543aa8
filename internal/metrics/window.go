// Package metrics keeps a rolling window of render outcomes for the stats
// endpoint and exposes Prometheus collectors on a private registry.
package metrics

import (
	"slices"
	"sync"
	"time"
)

// DefaultWindowCapacity bounds how many renders the window remembers.
const DefaultWindowCapacity = 4096

type renderEvent struct {
	at      time.Time
	source  string
	outcome string
	ms      int64
}

// Latency summarizes successful render durations in milliseconds. The
// percentiles use the nearest-rank method, so every value is an observed
// duration.
type Latency struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms int64   `json:"p50_ms"`
	P95Ms int64   `json:"p95_ms"`
	P99Ms int64   `json:"p99_ms"`
}

// WindowStats is the rolling view of recent renders.
type WindowStats struct {
	WindowSeconds int64              `json:"window_seconds"`
	Renders       int                `json:"renders"`
	Failures      int                `json:"failures"`
	Outcomes      map[string]int     `json:"outcomes"`
	Latency       Latency            `json:"latency"`
	Sources       map[string]Latency `json:"sources"`
}

// RenderWindow remembers the most recent renders younger than span in a
// fixed ring. Events arrive in time order, so expiry only trims the front.
type RenderWindow struct {
	mu   sync.Mutex
	ring []renderEvent
	head int
	n    int
	span time.Duration
	now  func() time.Time
}

func NewRenderWindow(span time.Duration, capacity int) *RenderWindow {
	if span <= 0 {
		span = time.Hour
	}
	if capacity <= 0 {
		capacity = DefaultWindowCapacity
	}
	return &RenderWindow{
		ring: make([]renderEvent, capacity),
		span: span,
		now:  time.Now,
	}
}

// Add records one finished render. Negative durations count as zero. When
// the ring is full the oldest render is dropped.
func (w *RenderWindow) Add(source, outcome string, d time.Duration) {
	ms := max(d.Milliseconds(), 0)
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.expireLocked(now)
	ev := renderEvent{at: now, source: source, outcome: outcome, ms: ms}
	if w.n == len(w.ring) {
		w.ring[w.head] = ev
		w.head = (w.head + 1) % len(w.ring)
		return
	}
	w.ring[(w.head+w.n)%len(w.ring)] = ev
	w.n++
}

// Stats aggregates the renders still inside the window. Latency covers only
// successful renders; failures are counted by outcome.
func (w *RenderWindow) Stats() WindowStats {
	now := w.now()

	w.mu.Lock()
	w.expireLocked(now)
	events := make([]renderEvent, w.n)
	for i := range events {
		events[i] = w.ring[(w.head+i)%len(w.ring)]
	}
	w.mu.Unlock()

	st := WindowStats{
		WindowSeconds: int64(w.span / time.Second),
		Renders:       len(events),
		Outcomes:      make(map[string]int),
		Sources:       make(map[string]Latency),
	}
	var all []int64
	bySource := make(map[string][]int64)
	for _, ev := range events {
		st.Outcomes[ev.outcome]++
		if ev.outcome != OutcomeOK {
			st.Failures++
			continue
		}
		all = append(all, ev.ms)
		bySource[ev.source] = append(bySource[ev.source], ev.ms)
	}
	st.Latency = summarize(all)
	for src, ms := range bySource {
		st.Sources[src] = summarize(ms)
	}
	return st
}

func (w *RenderWindow) expireLocked(now time.Time) {
	cutoff := now.Add(-w.span)
	for w.n > 0 && w.ring[w.head].at.Before(cutoff) {
		w.ring[w.head] = renderEvent{}
		w.head = (w.head + 1) % len(w.ring)
		w.n--
	}
}

func summarize(ms []int64) Latency {
	if len(ms) == 0 {
		return Latency{}
	}
	slices.Sort(ms)
	var sum int64
	for _, v := range ms {
		sum += v
	}
	return Latency{
		Count: len(ms),
		MinMs: ms[0],
		MaxMs: ms[len(ms)-1],
		AvgMs: float64(sum) / float64(len(ms)),
		P50Ms: nearestRank(ms, 50),
		P95Ms: nearestRank(ms, 95),
		P99Ms: nearestRank(ms, 99),
	}
}

// nearestRank returns the smallest value with at least pct percent of the
// sorted samples at or below it.
func nearestRank(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (pct*len(sorted) + 99) / 100
	rank = min(max(rank, 1), len(sorted))
	return sorted[rank-1]
}

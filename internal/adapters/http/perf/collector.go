// Package perf keeps a bounded window of request and mail delivery timings for the debug endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind distinguishes page requests from outbound mail deliveries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindDelivery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, transport name for deliveries
	StatusCode int    // HTTP status; 0 for deliveries
	Failed     bool   // delivery outcome
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer. When full, the oldest entry is overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	total   atomic.Int64
}

// NewCollector creates a collector holding at most size entries.
// PRE: none
// POST: size <= 0 uses DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.total.Add(1)
}

// RecordDelivery stores the outcome of one mail send. Its signature matches the contact service hook.
func (c *Collector) RecordDelivery(elapsed time.Duration, ok bool) {
	c.Record(Entry{
		Kind:       KindDelivery,
		Path:       "contact.send",
		Failed:     !ok,
		DurationMs: float64(elapsed.Microseconds()) / 1000.0,
		Timestamp:  time.Now().Add(-elapsed),
	})
}

// TotalRecorded returns how many entries were ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// PathStat aggregates timing for one request path.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	totalMs float64
}

// DeliveryStat aggregates mail sends.
type DeliveryStat struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	AvgMs  float64 `json:"avg_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// Snapshot is the aggregated view served by the debug endpoint.
type Snapshot struct {
	TotalRecorded int64        `json:"total_recorded"`
	RequestP50Ms  float64      `json:"request_p50_ms"`
	RequestP95Ms  float64      `json:"request_p95_ms"`
	RequestP99Ms  float64      `json:"request_p99_ms"`
	SlowestPaths  []PathStat   `json:"slowest_paths"`
	Deliveries    DeliveryStat `json:"deliveries"`
}

// Snapshot aggregates entries recorded at or after since.
// PRE: topN >= 0
// POST: SlowestPaths is sorted by average duration, longest first, and holds at most topN items
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	paths := make(map[string]*PathStat)
	var del DeliveryStat
	var delTotal float64

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			durations = append(durations, e.DurationMs)
			s, ok := paths[e.Path]
			if !ok {
				s = &PathStat{Path: e.Path}
				paths[e.Path] = s
			}
			s.Count++
			s.totalMs += e.DurationMs
			s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
		case KindDelivery:
			del.Count++
			if e.Failed {
				del.Failed++
			}
			delTotal += e.DurationMs
			del.MaxMs = math.Max(del.MaxMs, e.DurationMs)
		}
	}
	if del.Count > 0 {
		del.AvgMs = delTotal / float64(del.Count)
	}

	snap := Snapshot{
		TotalRecorded: c.TotalRecorded(),
		SlowestPaths:  slowest(paths, topN),
		Deliveries:    del,
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func slowest(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.totalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

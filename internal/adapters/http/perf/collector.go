// Package perf keeps a bounded in-memory record of request, upstream and
// query timings and aggregates them on demand.
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

// EntryKind distinguishes what was timed.
type EntryKind uint8

const (
	KindRequest  EntryKind = iota // inbound HTTP request
	KindUpstream                  // outbound call to the volunteer service
	KindQuery                     // stand-in API database statement
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /admin/applications", "GET /volunteers" or "volunteer.List"
	StatusCode int    // 0 when not an HTTP exchange or the call failed before a response
	DurationMs float64
	Timestamp  time.Time
}

// Recorder is the write side of a Collector.
type Recorder interface {
	Record(e Entry)
}

// Collector is a fixed-size ring buffer for timing entries.
// Writes never block on readers; when full, the oldest entries are overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: none
// POST: Returns a ready-to-use collector; size <= 0 means DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record appends an entry to the ring buffer.
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// PathStat aggregates timing for a single path.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	Count   int     `json:"count"`
	Errors  int     `json:"errors"` // status 0 or >= 500
	TotalMs float64 `json:"-"`
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	Since           time.Time  `json:"since"`
	Requests        int        `json:"requests"`
	RequestP50Ms    float64    `json:"requestP50Ms"`
	RequestP95Ms    float64    `json:"requestP95Ms"`
	RequestP99Ms    float64    `json:"requestP99Ms"`
	UpstreamP95Ms   float64    `json:"upstreamP95Ms"`
	SlowestPaths    []PathStat `json:"slowestPaths"`
	SlowestUpstream []PathStat `json:"slowestUpstream"`
	SlowestQueries  []PathStat `json:"slowestQueries"`
}

// Snapshot aggregates the buffered entries newer than since.
// PRE: topN > 0
// POST: Each top-N list is ordered by average duration, slowest first
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	stats := map[EntryKind]map[string]*PathStat{
		KindRequest:  {},
		KindUpstream: {},
		KindQuery:    {},
	}
	durations := map[EntryKind][]float64{}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		byPath, ok := stats[e.Kind]
		if !ok {
			continue
		}
		s, ok := byPath[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			byPath[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
		if e.Kind != KindQuery && (e.StatusCode == 0 || e.StatusCode >= 500) {
			s.Errors++
		}
		durations[e.Kind] = append(durations[e.Kind], e.DurationMs)
	}

	req := durations[KindRequest]
	sort.Float64s(req)
	up := durations[KindUpstream]
	sort.Float64s(up)

	return Snapshot{
		Since:           since,
		Requests:        len(req),
		RequestP50Ms:    percentile(req, 50),
		RequestP95Ms:    percentile(req, 95),
		RequestP99Ms:    percentile(req, 99),
		UpstreamP95Ms:   percentile(up, 95),
		SlowestPaths:    topByAvg(stats[KindRequest], topN),
		SlowestUpstream: topByAvg(stats[KindUpstream], topN),
		SlowestQueries:  topByAvg(stats[KindQuery], topN),
	}
}

// percentile returns the p-th percentile of a sorted slice, interpolating between ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n slowest paths by average duration.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

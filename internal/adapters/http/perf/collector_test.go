package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_SeparatesKinds verifies requests, upstream calls and queries aggregate separately.
func TestCollector_SeparatesKinds(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /admin/applications", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /admin/applications", StatusCode: 200, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindUpstream, Path: "GET /applications", StatusCode: 200, DurationMs: 8, Timestamp: now})
	c.Record(Entry{Kind: KindUpstream, Path: "GET /applications", DurationMs: 2000, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "volunteer.ListByStatus", DurationMs: 1, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.Requests != 2 {
		t.Errorf("Requests = %d, want 2", snap.Requests)
	}
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].AvgMs != 20 {
		t.Fatalf("SlowestPaths = %+v, want one path averaging 20ms", snap.SlowestPaths)
	}
	if len(snap.SlowestUpstream) != 1 || snap.SlowestUpstream[0].Errors != 1 {
		t.Errorf("SlowestUpstream = %+v, want one path with one error", snap.SlowestUpstream)
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Errors != 0 {
		t.Errorf("SlowestQueries = %+v", snap.SlowestQueries)
	}
	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
}

// TestCollector_RingBuffer_Overwrites verifies oldest entries are overwritten when full.
func TestCollector_RingBuffer_Overwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()

	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /signup", DurationMs: float64(i), Timestamp: now})
	}

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths len = %d, want 1", len(snap.SlowestPaths))
	}
	if snap.SlowestPaths[0].Count != 3 {
		t.Errorf("Count = %d, want 3 (ring buffer kept last 3)", snap.SlowestPaths[0].Count)
	}
	if snap.SlowestPaths[0].MaxMs != 4 {
		t.Errorf("MaxMs = %v, want 4", snap.SlowestPaths[0].MaxMs)
	}
}

// TestCollector_Percentiles verifies P50/P95/P99 calculation.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /admin/volunteers", DurationMs: float64(i), Timestamp: now})
	}

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.RequestP50Ms < 49 || snap.RequestP50Ms > 51 {
		t.Errorf("P50 = %v, want ~50", snap.RequestP50Ms)
	}
	if snap.RequestP95Ms < 94 || snap.RequestP95Ms > 96 {
		t.Errorf("P95 = %v, want ~95", snap.RequestP95Ms)
	}
	if snap.RequestP99Ms < 98 || snap.RequestP99Ms > 100 {
		t.Errorf("P99 = %v, want ~99", snap.RequestP99Ms)
	}
	if snap.UpstreamP95Ms != 0 {
		t.Errorf("UpstreamP95Ms = %v, want 0 with no upstream entries", snap.UpstreamP95Ms)
	}
}

// TestCollector_Snapshot_FiltersBySince verifies old entries are excluded.
func TestCollector_Snapshot_FiltersBySince(t *testing.T) {
	c := NewCollector(100)
	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 100, Timestamp: time.Now().Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 10, Timestamp: time.Now()})

	snap := c.Snapshot(time.Now().Add(-time.Hour), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "GET /new" {
		t.Errorf("SlowestPaths = %+v, want only GET /new", snap.SlowestPaths)
	}
}

// TestCollector_TopN verifies the list is truncated slowest-first.
func TestCollector_TopN(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	for i, p := range []string{"GET /a", "GET /b", "GET /c"} {
		c.Record(Entry{Kind: KindUpstream, Path: p, StatusCode: 200, DurationMs: float64(i + 1), Timestamp: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 2)
	if len(snap.SlowestUpstream) != 2 || snap.SlowestUpstream[0].Path != "GET /c" {
		t.Errorf("SlowestUpstream = %+v", snap.SlowestUpstream)
	}
}

// TestCollector_ConcurrentWrites verifies goroutine safety of Record.
func TestCollector_ConcurrentWrites(t *testing.T) {
	c := NewCollector(1000)
	now := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Record(Entry{Kind: KindRequest, Path: "GET /c", DurationMs: float64(n), Timestamp: now})
			}
		}(i)
	}
	wg.Wait()
	if c.TotalRecorded() != 1000 {
		t.Errorf("TotalRecorded = %d, want 1000", c.TotalRecorded())
	}
}

// BenchmarkCollectorRecord measures per-call cost of Record().
func BenchmarkCollectorRecord(b *testing.B) {
	c := NewCollector(DefaultRingSize)
	e := Entry{Kind: KindRequest, Path: "GET /bench", StatusCode: 200, DurationMs: 1.5, Timestamp: time.Now()}
	b.ReportAllocs()
	for b.Loop() {
		c.Record(e)
	}
}

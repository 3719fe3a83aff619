package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"volunteerdesk/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTimedDB_ExecContext verifies ExecContext records timing.
func TestTimedDB_ExecContext(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	_, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")
	if err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_QueryContext verifies QueryContext records timing.
func TestTimedDB_QueryContext(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")

	rows, err := tdb.QueryContext(context.Background(), "SELECT id, val FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	count := 0
	for rows.Next() {
		count++
	}
	rows.Close()
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
	// 1 exec + 1 query = 2 recorded
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2", collector.TotalRecorded())
	}
}

// TestTimedDB_RecordsStatementLabel verifies entries are grouped by verb and table.
func TestTimedDB_RecordsStatementLabel(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)
	ctx := context.Background()

	tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "a")
	var val string
	tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val)

	snap := collector.Snapshot(time.Time{}, 10)
	seen := map[string]bool{}
	for _, s := range snap.SlowestQueries {
		seen[s.Path] = true
	}
	for _, want := range []string{"INSERT test", "SELECT test"} {
		if !seen[want] {
			t.Errorf("missing query label %q in %+v", want, snap.SlowestQueries)
		}
	}
}

func TestStatementLabel(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT id FROM volunteer WHERE status = ?", "SELECT volunteer"},
		{"select id\n\t\tfrom cv_file", "SELECT cv_file"},
		{"INSERT INTO volunteer (id) VALUES (?)", "INSERT volunteer"},
		{"INSERT INTO cv_file(id) VALUES (?)", "INSERT cv_file"},
		{"UPDATE volunteer SET status = ?", "UPDATE volunteer"},
		{"DELETE FROM cv_file WHERE id = ?", "DELETE cv_file"},
		{"PRAGMA journal_mode=WAL", "PRAGMA"},
		{"SELECT 1", "SELECT"},
		{"   ", "?"},
	}
	for _, tt := range tests {
		if got := statementLabel(tt.query); got != tt.want {
			t.Errorf("statementLabel(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// TestTimedDB_NilCollector verifies TimedDB works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil, 0)

	_, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")
	if err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
}

// TestTimedDB_ErrorPassthrough_ExecContext verifies SQL errors are returned unchanged
// and timing is still recorded.
func TestTimedDB_ErrorPassthrough_ExecContext(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	_, err := tdb.ExecContext(context.Background(), "INSERT INTO nonexistent_table VALUES (?)")
	if err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1 (must record even on error)", collector.TotalRecorded())
	}
}

// TestTimedDB_ErrorPassthrough_QueryRowContext verifies QueryRowContext scan errors pass through.
func TestTimedDB_ErrorPassthrough_QueryRowContext(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	var val string
	err := tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "nonexistent").Scan(&val)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_CancelledContext verifies that a cancelled context returns an error
// and timing is still recorded.
func TestTimedDB_CancelledContext(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1 (must record on cancelled ctx)", collector.TotalRecorded())
	}
}

// TestTimedDB_BeginTx verifies BeginTx records timing.
func TestTimedDB_BeginTx(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	tx, err := tdb.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("tx exec: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_RawDB verifies RawDB returns the original *sql.DB.
func TestTimedDB_RawDB(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil, 0)

	if tdb.RawDB() != db {
		t.Error("RawDB() should return the original *sql.DB")
	}
}

// TestTimedDB_ConcurrentMixedOps verifies no data races or panics under concurrent
// Exec, Query, and QueryRow calls.
func TestTimedDB_ConcurrentMixedOps(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(1000)
	tdb := NewTimedDB(db, collector, time.Second)
	ctx := context.Background()

	tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "seed", "data")

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(kind int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				switch kind {
				case 0:
					tdb.ExecContext(ctx, "INSERT OR REPLACE INTO test (id, val) VALUES (?, ?)", "w", "v")
				case 1:
					if rows, err := tdb.QueryContext(ctx, "SELECT id FROM test LIMIT 1"); err == nil {
						rows.Close()
					}
				default:
					var v string
					tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "seed").Scan(&v)
				}
			}
		}(i)
	}
	wg.Wait()

	if got := collector.TotalRecorded(); got != 61 {
		t.Errorf("TotalRecorded = %d, want 61", got)
	}
}

// BenchmarkTimedDB_OverheadIsolation measures the instrumentation overhead
// by comparing TimedDB vs raw *sql.DB for the same query.
func BenchmarkTimedDB_OverheadIsolation(b *testing.B) {
	db, _ := sql.Open("sqlite", ":memory:")
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.Exec("CREATE TABLE bench (id INTEGER PRIMARY KEY, val TEXT)")
	db.Exec("INSERT INTO bench VALUES (1, 'x')")
	collector := perf.NewCollector(perf.DefaultRingSize)
	ctx := context.Background()

	b.Run("RawDB", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var v string
			db.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1").Scan(&v)
		}
	})

	tdb := NewTimedDB(db, collector, 0)
	b.Run("TimedDB", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var v string
			tdb.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1").Scan(&v)
		}
	})
}

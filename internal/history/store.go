// Package history is a small SQLite-backed log of per-run aggregate
// snapshots, a durable stand-in for redirecting a run's final counters to a
// CSV file.
//
// Grounded on internal/storage/sqlite.go's NewDB/migrate shape (WAL mode,
// busy timeout, a schema string run on open), cut down to the one table this
// domain needs.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/google/uuid"
	"github.com/ssd-technologies/multikernel/internal/message"
)

// Store wraps a SQLite connection holding run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and runs its schema
// migration.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    cores INTEGER NOT NULL,
    messages_sent INTEGER NOT NULL,
    messages_received INTEGER NOT NULL,
    processes_executed INTEGER NOT NULL,
    comm_overhead_pct REAL NOT NULL,
    delivery_rate_pct REAL NOT NULL,
    created_at INTEGER NOT NULL
);
`
	_, err := s.db.Exec(schema)
	return err
}

// Run is one persisted aggregate snapshot, keyed by a generated id so
// repeated runs under the same label never collide.
type Run struct {
	ID        string
	Label     string
	Stats     message.SystemStatistics
	CreatedAt time.Time
}

// SaveRun persists one snapshot of the system's aggregate statistics under
// label (e.g. "multikernel" or "smp_baseline"), so runs under the same label
// can be read back later with RecentRuns.
func (s *Store) SaveRun(label string, stats message.SystemStatistics) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		Label:     label,
		Stats:     stats,
		CreatedAt: time.Now(),
	}
	sent, received, executed := stats.Totals()

	_, err := s.db.Exec(`
INSERT INTO runs (
    id, label, cores, messages_sent, messages_received,
    processes_executed, comm_overhead_pct, delivery_rate_pct, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, len(stats.Cores),
		sent, received, executed,
		stats.CommOverheadPct, stats.DeliveryRatePct,
		run.CreatedAt.Unix(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// runRow is the flat shape runs are stored and read back as; Run.Stats only
// carries the system-wide totals a persisted row can reconstruct, not a
// per-core breakdown.
type runRow struct {
	sent, received, executed uint64
}

// RecentRuns returns up to limit most recent runs with the given label,
// newest first.
func (s *Store) RecentRuns(label string, limit int) ([]Run, error) {
	rows, err := s.db.Query(`
SELECT id, label, cores, messages_sent, messages_received,
       processes_executed, comm_overhead_pct, delivery_rate_pct, created_at
FROM runs WHERE label = ? ORDER BY created_at DESC LIMIT ?`, label, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var row runRow
		var createdAt int64
		var cores int
		if err := rows.Scan(&r.ID, &r.Label, &cores,
			&row.sent, &row.received, &row.executed,
			&r.Stats.CommOverheadPct, &r.Stats.DeliveryRatePct,
			&createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Stats.Cores = make([]message.CoreStatistics, cores)
		if len(r.Stats.Cores) > 0 {
			// Totals are spread across core 0 only on read-back; the exact
			// per-core split is not persisted, only the system-wide sums.
			r.Stats.Cores[0] = message.CoreStatistics{
				MessagesSent:      row.sent,
				MessagesReceived:  row.received,
				ProcessesExecuted: row.executed,
			}
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

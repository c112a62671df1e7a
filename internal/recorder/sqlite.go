package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"RetentionSentinel/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			ref_month   TEXT NOT NULL,
			orders      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS retention_rows (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			scope           TEXT NOT NULL,
			month           TEXT NOT NULL,
			segment         TEXT NOT NULL,
			count           INTEGER,
			possible        INTEGER,
			previous_active INTEGER,
			ratio           REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_retention_scope ON retention_rows(scope, month)`,

		`CREATE TABLE IF NOT EXISTS recommendation_summaries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			scope       TEXT NOT NULL,
			from_month  TEXT NOT NULL,
			to_month    TEXT NOT NULL,
			category    TEXT NOT NULL,
			count       INTEGER,
			excluded    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reco_scope ON recommendation_summaries(scope, to_month)`,

		`CREATE TABLE IF NOT EXISTS goal_gaps (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			country  TEXT NOT NULL,
			segment  TEXT NOT NULL,
			target   INTEGER,
			actual   INTEGER,
			gap      INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunReport) (id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.New().String()
	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`INSERT INTO runs (id, timestamp, kind, ref_month, orders) VALUES (?,?,?,?,?)`,
		runID, run.At.Unix(), run.Kind, run.Reference.String(), run.Orders); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, e := range run.Retention {
		if _, err = tx.Exec(`INSERT INTO retention_rows
			(run_id, scope, month, segment, count, possible, previous_active, ratio)
			VALUES (?,?,?,?,?,?,?,?)`,
			runID, e.Scope, e.Month.String(), e.Segment.String(),
			e.Count, e.Possible, e.PreviousActive, e.Ratio,
		); err != nil {
			return "", fmt.Errorf("insert retention row: %w", err)
		}
	}

	for _, e := range run.Recommendations {
		if e.Set == nil {
			continue
		}
		counts := e.Set.CountByCategory()
		for _, c := range model.Categories {
			if _, err = tx.Exec(`INSERT INTO recommendation_summaries
				(run_id, scope, from_month, to_month, category, count, excluded)
				VALUES (?,?,?,?,?,?,?)`,
				runID, e.Scope, e.Set.From.String(), e.Set.To.String(),
				c.String(), counts[c], e.Set.Excluded,
			); err != nil {
				return "", fmt.Errorf("insert recommendation summary: %w", err)
			}
		}
	}

	for _, g := range run.Goals {
		if _, err = tx.Exec(`INSERT INTO goal_gaps (run_id, country, segment, target, actual, gap)
			VALUES (?,?,?,?,?,?)`,
			runID, g.Country, g.Segment, g.Target, g.Actual, g.Gap,
		); err != nil {
			return "", fmt.Errorf("insert goal gap: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// RetentionHistory returns the most recently recorded row per month for a
// scope and segment, oldest month first.
func (r *SQLiteRecorder) RetentionHistory(scope string, seg model.Segment) ([]model.CohortRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT month, count, possible, previous_active, ratio
		FROM retention_rows
		WHERE id IN (
			SELECT MAX(id) FROM retention_rows WHERE scope = ? AND segment = ? GROUP BY month
		)
		ORDER BY month`, scope, seg.String())
	if err != nil {
		return nil, fmt.Errorf("query retention history: %w", err)
	}
	defer rows.Close()

	var out []model.CohortRow
	for rows.Next() {
		var month string
		row := model.CohortRow{Segment: seg}
		if err := rows.Scan(&month, &row.Count, &row.Possible, &row.PreviousActive, &row.Ratio); err != nil {
			return nil, fmt.Errorf("scan retention row: %w", err)
		}
		if row.Month, err = model.ParseYearMonth(month); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RunCount returns the number of recorded runs.
func (r *SQLiteRecorder) RunCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

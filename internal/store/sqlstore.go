package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"prismcheck/internal/compare"
	"prismcheck/internal/ingest"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

const currentSchemaVersion = 1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS validation_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	study_root TEXT NOT NULL,
	created_at TEXT NOT NULL,
	overall TEXT NOT NULL,
	passed INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	manual INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS comparisons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	kind TEXT NOT NULL,
	framework REAL NOT NULL,
	external REAL NOT NULL,
	diff REAL NOT NULL,
	tolerance REAL NOT NULL,
	verdict TEXT NOT NULL,
	note TEXT,
	FOREIGN KEY (run_id) REFERENCES validation_runs(id)
);
`

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .prismcheck) if it does not exist.
// The special path ":memory:" opens an in-memory database.
func Open(path string) (*SqlStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != currentSchemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// SaveReport persists one report and its comparisons atomically.
func (s *SqlStore) SaveReport(report *compare.Report) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		"INSERT INTO validation_runs(study_root, created_at, overall, passed, failed, manual) VALUES(?,?,?,?,?,?)",
		report.StudyRoot, nowUTC(), string(report.Overall), report.Passed, report.Failed, report.Manual,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO comparisons(run_id, label, kind, framework, external, diff, tolerance, verdict, note) VALUES(?,?,?,?,?,?,?,?,?)")
	if err != nil {
		return 0, fmt.Errorf("prepare comparison insert: %w", err)
	}
	defer stmt.Close()
	for _, c := range report.Comparisons {
		if _, err := stmt.Exec(runID, c.Label, string(c.Kind), c.Framework, c.External,
			c.Diff, c.Tolerance, string(c.Verdict), c.Note); err != nil {
			return 0, fmt.Errorf("insert comparison %q: %w", c.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns runs newest-first.
func (s *SqlStore) ListRuns(limit int) ([]RunSummary, error) {
	q := "SELECT id, study_root, created_at, overall, passed, failed, manual FROM validation_runs ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StudyRoot, &r.CreatedAt, &r.Overall, &r.Passed, &r.Failed, &r.Manual); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetComparisons returns the persisted comparisons of one run, in insert order.
func (s *SqlStore) GetComparisons(runID int64) ([]compare.Comparison, error) {
	rows, err := s.db.Query(
		"SELECT label, kind, framework, external, diff, tolerance, verdict, note FROM comparisons WHERE run_id = ? ORDER BY id",
		runID)
	if err != nil {
		return nil, fmt.Errorf("get comparisons: %w", err)
	}
	defer rows.Close()

	var out []compare.Comparison
	for rows.Next() {
		var c compare.Comparison
		var kind, verdict string
		var note sql.NullString
		if err := rows.Scan(&c.Label, &kind, &c.Framework, &c.External, &c.Diff, &c.Tolerance, &verdict, &note); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		c.Kind = ingest.StatKind(kind)
		c.Verdict = compare.Verdict(verdict)
		if note.Valid {
			c.Note = note.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close releases the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }

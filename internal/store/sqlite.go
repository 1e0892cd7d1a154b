package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	source_dir   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'queued',
	record_count INTEGER NOT NULL DEFAULT 0,
	brand_health REAL NOT NULL DEFAULT 0,
	error        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS records (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	page_id      TEXT NOT NULL,
	persona_id   TEXT NOT NULL,
	criterion_id TEXT NOT NULL,
	payload      TEXT NOT NULL,
	PRIMARY KEY (run_id, page_id, persona_id, criterion_id)
);

CREATE TABLE IF NOT EXISTS snapshots (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_source_dir ON runs(source_dir);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, sourceDir string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_dir, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, sourceDir, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		SourceDir: sourceDir,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, recordCount int, brandHealth float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, record_count = ?, brand_health = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), recordCount, brandHealth, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_dir, status, record_count, brand_health, error, created_at, updated_at
		 FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source_dir, status, record_count, brand_health, error, created_at, updated_at
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.SourceDir != "" {
		query += ` AND source_dir = ?`
		args = append(args, filter.SourceDir)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) SaveRecords(ctx context.Context, runID string, records []*model.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save records")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (run_id, page_id, persona_id, criterion_id, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare save records")
	}
	defer stmt.Close()

	saved := 0
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return saved, eris.Wrapf(err, "sqlite: marshal record %s", r.Key())
		}
		if _, err := stmt.ExecContext(ctx, runID, r.PageID, r.PersonaID, r.CriterionID, string(payload)); err != nil {
			return saved, eris.Wrapf(err, "sqlite: insert record %s", r.Key())
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save records")
	}
	return saved, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, runID string, kind model.SnapshotKind, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (run_id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		runID, string(kind), string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save snapshot %s/%s", runID, kind)
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, runID string, kind model.SnapshotKind) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM snapshots WHERE run_id = ? AND kind = ?`,
		runID, string(kind),
	)

	snap := model.Snapshot{RunID: runID, Kind: kind}
	var payload string
	err := row.Scan(&payload, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s/%s", runID, kind)
	}
	snap.Payload = []byte(payload)
	return &snap, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var status string
	var errText sql.NullString
	err := row.Scan(&r.ID, &r.SourceDir, &status, &r.RecordCount, &r.BrandHealth, &errText, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(err, "get run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan run")
	}
	r.Status = model.RunStatus(status)
	r.Error = errText.String
	return &r, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "rows affected for %s %s", entity, id)
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

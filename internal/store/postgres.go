package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/brand-audit-cli/internal/db"
	"github.com/sells-group/brand-audit-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	source_dir   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'queued',
	record_count INTEGER NOT NULL DEFAULT 0,
	brand_health DOUBLE PRECISION NOT NULL DEFAULT 0,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS records (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	page_id      TEXT NOT NULL,
	persona_id   TEXT NOT NULL,
	criterion_id TEXT NOT NULL,
	payload      JSONB NOT NULL,
	PRIMARY KEY (run_id, page_id, persona_id, criterion_id)
);

CREATE TABLE IF NOT EXISTS snapshots (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	kind       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_source_dir ON runs(source_dir);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, sourceDir string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, source_dir, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, sourceDir, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		SourceDir: sourceDir,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, recordCount int, brandHealth float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, record_count = $2, brand_health = $3, updated_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), recordCount, brandHealth, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source_dir, status, record_count, brand_health, error, created_at, updated_at
		 FROM runs WHERE id = $1`,
		runID,
	)

	r, err := scanPgRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source_dir, status, record_count, brand_health, error, created_at, updated_at
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.SourceDir != "" {
		args = append(args, filter.SourceDir)
		query += ` AND source_dir = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list runs")
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) SaveRecords(ctx context.Context, runID string, records []*model.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal record %s", r.Key())
		}
		rows = append(rows, []any{runID, r.PageID, r.PersonaID, r.CriterionID, payload})
	}

	n, err := db.CopyFrom(ctx, s.pool, "records",
		[]string{"run_id", "page_id", "persona_id", "criterion_id", "payload"}, rows)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, runID string, kind model.SnapshotKind, payload []byte) error {
	sql, err := db.UpsertSQL("snapshots",
		[]string{"run_id", "kind", "payload", "created_at"},
		[]string{"run_id", "kind"},
		nil,
	)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, sql, runID, string(kind), payload, time.Now().UTC())
	return eris.Wrapf(err, "postgres: save snapshot %s/%s", runID, kind)
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, runID string, kind model.SnapshotKind) (*model.Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT payload, created_at FROM snapshots WHERE run_id = $1 AND kind = $2`,
		runID, string(kind),
	)

	snap := model.Snapshot{RunID: runID, Kind: kind}
	err := row.Scan(&snap.Payload, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s/%s", runID, kind)
	}
	return &snap, nil
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var status string
	var errText *string
	err := row.Scan(&r.ID, &r.SourceDir, &status, &r.RecordCount, &r.BrandHealth, &errText, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "get run")
	}
	r.Status = model.RunStatus(status)
	if errText != nil {
		r.Error = *errText
	}
	return &r, nil
}


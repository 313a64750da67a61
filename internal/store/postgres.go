package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/db"
	"github.com/voltgruppen/kalk-cli/internal/model"
)

// PostgresStore keeps estimate snapshots in postgres via pgx.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a store with a connection pool and applies the schema.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "store: postgres connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: postgres ping")
	}
	s := &PostgresStore{pool: pool, closeFn: pool.Close}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS estimate_snapshots (
	id         UUID PRIMARY KEY,
	project_id TEXT NOT NULL,
	version    INT NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (project_id, version)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_project ON estimate_snapshots(project_id);
`

// Migrate creates the snapshot schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return eris.Wrap(err, "store: postgres migrate")
}

// SaveEstimate appends the next version for the project inside one
// transaction.
func (s *PostgresStore) SaveEstimate(ctx context.Context, projectID string, result *model.ProjectEstimationResult) (*model.EstimateSnapshot, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal result")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback(ctx)

	var version int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM estimate_snapshots WHERE project_id = $1`,
		projectID,
	).Scan(&version)
	if err != nil {
		return nil, eris.Wrap(err, "store: next version")
	}

	snap := model.EstimateSnapshot{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Version:   version,
		Result:    result,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO estimate_snapshots (id, project_id, version, result)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		snap.ID, snap.ProjectID, snap.Version, payload,
	).Scan(&snap.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: insert snapshot")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "store: commit")
	}
	return &snap, nil
}

// Snapshot fetches one snapshot by ID.
func (s *PostgresStore) Snapshot(ctx context.Context, id string) (*model.EstimateSnapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, project_id, version, result, created_at
		 FROM estimate_snapshots WHERE id = $1`, id)
	return scanPgSnapshot(row)
}

// Snapshots lists every version for a project, oldest first.
func (s *PostgresStore) Snapshots(ctx context.Context, projectID string) ([]model.EstimateSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, version, result, created_at
		 FROM estimate_snapshots WHERE project_id = $1 ORDER BY version`, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "store: list snapshots")
	}
	defer rows.Close()

	var out []model.EstimateSnapshot
	for rows.Next() {
		snap, err := scanPgSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate snapshots")
}

// Latest returns the highest version for a project.
func (s *PostgresStore) Latest(ctx context.Context, projectID string) (*model.EstimateSnapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, project_id, version, result, created_at
		 FROM estimate_snapshots WHERE project_id = $1
		 ORDER BY version DESC LIMIT 1`, projectID)
	return scanPgSnapshot(row)
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func scanPgSnapshot(row pgx.Row) (*model.EstimateSnapshot, error) {
	var snap model.EstimateSnapshot
	var payload []byte
	err := row.Scan(&snap.ID, &snap.ProjectID, &snap.Version, &payload, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan snapshot")
	}
	if err := json.Unmarshal(payload, &snap.Result); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal result")
	}
	return &snap, nil
}

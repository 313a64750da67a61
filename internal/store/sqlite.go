package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// SQLiteStore keeps estimate snapshots in a modernc.org/sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens the snapshot database and applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: sqlite exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "store: sqlite migrate")
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS estimate_snapshots (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	version    INTEGER NOT NULL,
	result     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (project_id, version)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_project ON estimate_snapshots(project_id);
`

// SaveEstimate appends the next version for the project. The version is
// assigned inside a transaction so concurrent saves cannot collide.
func (s *SQLiteStore) SaveEstimate(ctx context.Context, projectID string, result *model.ProjectEstimationResult) (*model.EstimateSnapshot, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal result")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM estimate_snapshots WHERE project_id = ?`,
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
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO estimate_snapshots (id, project_id, version, result, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.ProjectID, snap.Version, string(payload), snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: insert snapshot")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "store: commit")
	}
	return &snap, nil
}

// Snapshot fetches one snapshot by ID.
func (s *SQLiteStore) Snapshot(ctx context.Context, id string) (*model.EstimateSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, version, result, created_at
		 FROM estimate_snapshots WHERE id = ?`, id)
	return scanSnapshot(row)
}

// Snapshots lists every version for a project, oldest first.
func (s *SQLiteStore) Snapshots(ctx context.Context, projectID string) ([]model.EstimateSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, version, result, created_at
		 FROM estimate_snapshots WHERE project_id = ? ORDER BY version`, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "store: list snapshots")
	}
	defer rows.Close()

	var out []model.EstimateSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate snapshots")
}

// Latest returns the highest version for a project.
func (s *SQLiteStore) Latest(ctx context.Context, projectID string) (*model.EstimateSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, version, result, created_at
		 FROM estimate_snapshots WHERE project_id = ?
		 ORDER BY version DESC LIMIT 1`, projectID)
	return scanSnapshot(row)
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*model.EstimateSnapshot, error) {
	var snap model.EstimateSnapshot
	var payload string
	err := row.Scan(&snap.ID, &snap.ProjectID, &snap.Version, &payload, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan snapshot")
	}
	if err := json.Unmarshal([]byte(payload), &snap.Result); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal result")
	}
	return &snap, nil
}

// Package store persists finished estimates as versioned, append-only
// snapshots. Snapshots are never updated in place; re-estimating the same
// project writes the next version.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// ErrNotFound is returned when no snapshot matches the lookup.
var ErrNotFound = eris.New("store: snapshot not found")

// Store is the snapshot persistence contract. SaveEstimate assigns the next
// version for the project and returns the stored snapshot.
type Store interface {
	SaveEstimate(ctx context.Context, projectID string, result *model.ProjectEstimationResult) (*model.EstimateSnapshot, error)
	Snapshot(ctx context.Context, id string) (*model.EstimateSnapshot, error)
	Snapshots(ctx context.Context, projectID string) ([]model.EstimateSnapshot, error)
	Latest(ctx context.Context, projectID string) (*model.EstimateSnapshot, error)
	Close() error
}

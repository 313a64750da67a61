package catalog

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FixtureProvider serves a snapshot from a JSON or YAML file. Used for
// development and tests; it has no customer registry, so every customer
// resolves to the standard tier.
type FixtureProvider struct {
	path string
}

// NewFixtureProvider creates a provider reading the given fixture path.
func NewFixtureProvider(path string) *FixtureProvider {
	return &FixtureProvider{path: path}
}

// Load reads and normalizes the fixture snapshot. The file is re-read on
// every call so each estimation sees its own immutable copy.
func (p *FixtureProvider) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read fixture")
	}

	var snap Snapshot
	if strings.HasSuffix(p.path, ".yaml") || strings.HasSuffix(p.path, ".yml") {
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, eris.Wrap(err, "catalog: unmarshal yaml fixture")
		}
	} else {
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, eris.Wrap(err, "catalog: unmarshal json fixture")
		}
	}

	if err := snap.Normalize(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// CustomerTier always resolves to the standard tier for fixtures.
func (p *FixtureProvider) CustomerTier(ctx context.Context, customerID string) (string, error) {
	return TierStandard, nil
}

// StaticProvider wraps an in-memory snapshot, used by tests and the seed
// command. Tier lookups consult the optional customer map.
type StaticProvider struct {
	Snapshot  *Snapshot
	Customers map[string]string // customer ID -> tier code
}

// Load re-normalizes and returns the wrapped snapshot.
func (p *StaticProvider) Load(ctx context.Context) (*Snapshot, error) {
	if p.Snapshot == nil {
		return nil, eris.New("catalog: static provider has no snapshot")
	}
	if err := p.Snapshot.Normalize(); err != nil {
		return nil, err
	}
	return p.Snapshot, nil
}

// CustomerTier resolves the tier from the customer map.
func (p *StaticProvider) CustomerTier(ctx context.Context, customerID string) (string, error) {
	if tier, ok := p.Customers[customerID]; ok {
		return tier, nil
	}
	return TierStandard, nil
}

package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/db"
	"github.com/voltgruppen/kalk-cli/internal/model"
)

// PostgresProvider loads catalog snapshots from postgres via pgx.
type PostgresProvider struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a provider with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresProvider, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "catalog: postgres ping")
	}
	return &PostgresProvider{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// Close releases the pool.
func (p *PostgresProvider) Close() {
	if p.closeFn != nil {
		p.closeFn()
	}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS component_nodes (
	code            TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	type            TEXT NOT NULL DEFAULT 'operation',
	base_time_secs  INT NOT NULL DEFAULT 0,
	cost_price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	sale_price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	margin_percent  DOUBLE PRECISION,
	active          BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS component_variants (
	node_code        TEXT NOT NULL REFERENCES component_nodes(code),
	code             TEXT NOT NULL,
	name             TEXT NOT NULL,
	time_multiplier  DOUBLE PRECISION NOT NULL DEFAULT 1,
	extra_time_secs  INT NOT NULL DEFAULT 0,
	cost_multiplier  DOUBLE PRECISION NOT NULL DEFAULT 1,
	price_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
	waste_percent    DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_default       BOOLEAN NOT NULL DEFAULT FALSE,
	sort_order       INT NOT NULL DEFAULT 0,
	materials        JSONB,
	PRIMARY KEY (node_code, code)
);

CREATE TABLE IF NOT EXISTS calculation_rules (
	id               TEXT PRIMARY KEY,
	node_code        TEXT NOT NULL,
	variant_code     TEXT NOT NULL DEFAULT '',
	type             TEXT NOT NULL DEFAULT 'combined',
	condition        JSONB,
	time_multiplier  DOUBLE PRECISION NOT NULL DEFAULT 1,
	time_add_secs    INT NOT NULL DEFAULT 0,
	cost_multiplier  DOUBLE PRECISION NOT NULL DEFAULT 1,
	cost_add         DOUBLE PRECISION NOT NULL DEFAULT 0,
	priority         INT NOT NULL DEFAULT 100,
	active           BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS installation_types (
	code            TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	time_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS building_profiles (
	code                  TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	time_multiplier       DOUBLE PRECISION NOT NULL DEFAULT 1,
	difficulty_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
	waste_multiplier      DOUBLE PRECISION NOT NULL DEFAULT 1,
	overhead_multiplier   DOUBLE PRECISION NOT NULL DEFAULT 1,
	active                BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS customer_tiers (
	code               TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	discount_percent   DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_margin_percent DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS customers (
	id   UUID PRIMARY KEY,
	tier TEXT NOT NULL DEFAULT 'standard'
);

CREATE TABLE IF NOT EXISTS global_factors (
	id                      INT PRIMARY KEY CHECK (id = 1),
	hourly_rate             DOUBLE PRECISION NOT NULL,
	product_margin_percent  DOUBLE PRECISION NOT NULL,
	material_margin_percent DOUBLE PRECISION NOT NULL,
	vat_percent             DOUBLE PRECISION NOT NULL,
	round_increment         DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_rules_node ON calculation_rules(node_code);
`

// Migrate creates the catalog schema.
func (p *PostgresProvider) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "catalog: postgres migrate")
}

// Load reads a full snapshot.
func (p *PostgresProvider) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	nodeRows, err := p.pool.Query(ctx, `
		SELECT code, name, type, base_time_secs, cost_price, sale_price, margin_percent, active
		FROM component_nodes ORDER BY code`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query nodes")
	}
	for nodeRows.Next() {
		var n model.ComponentNode
		if err := nodeRows.Scan(&n.Code, &n.Name, &n.Type, &n.BaseTimeSeconds,
			&n.DefaultCostPrice, &n.DefaultSalePrice, &n.MarginPercent, &n.Active); err != nil {
			nodeRows.Close()
			return nil, eris.Wrap(err, "catalog: postgres scan node")
		}
		snap.Nodes = append(snap.Nodes, n)
	}
	nodeRows.Close()
	if err := nodeRows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: postgres iterate nodes")
	}

	byCode := make(map[string]*model.ComponentNode, len(snap.Nodes))
	for i := range snap.Nodes {
		byCode[snap.Nodes[i].Code] = &snap.Nodes[i]
	}

	varRows, err := p.pool.Query(ctx, `
		SELECT node_code, code, name, time_multiplier, extra_time_secs, cost_multiplier,
		       price_multiplier, waste_percent, is_default, sort_order, materials
		FROM component_variants ORDER BY node_code, sort_order`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query variants")
	}
	for varRows.Next() {
		var v model.ComponentVariant
		var nodeCode string
		var materials []byte
		if err := varRows.Scan(&nodeCode, &v.Code, &v.Name, &v.TimeMultiplier,
			&v.ExtraTimeSeconds, &v.CostMultiplier, &v.PriceMultiplier,
			&v.WastePercent, &v.IsDefault, &v.SortOrder, &materials); err != nil {
			varRows.Close()
			return nil, eris.Wrap(err, "catalog: postgres scan variant")
		}
		mats, err := UnmarshalMaterialsJSON(materials)
		if err != nil {
			varRows.Close()
			return nil, err
		}
		v.Materials = mats
		if node, ok := byCode[nodeCode]; ok {
			node.Variants = append(node.Variants, v)
		}
	}
	varRows.Close()
	if err := varRows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: postgres iterate variants")
	}

	ruleRows, err := p.pool.Query(ctx, `
		SELECT id, node_code, variant_code, type, condition, time_multiplier,
		       time_add_secs, cost_multiplier, cost_add, priority, active
		FROM calculation_rules ORDER BY priority`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query rules")
	}
	for ruleRows.Next() {
		var r model.CalculationRule
		var cond []byte
		if err := ruleRows.Scan(&r.ID, &r.NodeCode, &r.VariantCode, &r.Type, &cond,
			&r.TimeMultiplier, &r.TimeAddSeconds, &r.CostMultiplier, &r.CostAdd,
			&r.Priority, &r.Active); err != nil {
			ruleRows.Close()
			return nil, eris.Wrap(err, "catalog: postgres scan rule")
		}
		c, err := UnmarshalConditionJSON(cond)
		if err != nil {
			ruleRows.Close()
			return nil, err
		}
		r.Condition = c
		snap.Rules = append(snap.Rules, r)
	}
	ruleRows.Close()
	if err := ruleRows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: postgres iterate rules")
	}

	instRows, err := p.pool.Query(ctx,
		`SELECT code, name, time_multiplier FROM installation_types`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query installation types")
	}
	for instRows.Next() {
		var it model.InstallationType
		if err := instRows.Scan(&it.Code, &it.Name, &it.TimeMultiplier); err != nil {
			instRows.Close()
			return nil, eris.Wrap(err, "catalog: postgres scan installation type")
		}
		snap.InstallationTypes = append(snap.InstallationTypes, it)
	}
	instRows.Close()

	profRows, err := p.pool.Query(ctx, `
		SELECT code, name, time_multiplier, difficulty_multiplier, waste_multiplier,
		       overhead_multiplier, active
		FROM building_profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query building profiles")
	}
	for profRows.Next() {
		var bp model.BuildingProfile
		if err := profRows.Scan(&bp.Code, &bp.Name, &bp.TimeMultiplier,
			&bp.DifficultyMultiplier, &bp.WasteMultiplier, &bp.OverheadMultiplier, &bp.Active); err != nil {
			profRows.Close()
			return nil, eris.Wrap(err, "catalog: postgres scan building profile")
		}
		snap.BuildingProfiles = append(snap.BuildingProfiles, bp)
	}
	profRows.Close()

	tierRows, err := p.pool.Query(ctx,
		`SELECT code, name, discount_percent, min_margin_percent FROM customer_tiers`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query tiers")
	}
	for tierRows.Next() {
		var t model.CustomerTier
		if err := tierRows.Scan(&t.Code, &t.Name, &t.DiscountPercent, &t.MinMarginPercent); err != nil {
			tierRows.Close()
			return nil, eris.Wrap(err, "catalog: postgres scan tier")
		}
		snap.Tiers = append(snap.Tiers, t)
	}
	tierRows.Close()

	err = p.pool.QueryRow(ctx, `
		SELECT hourly_rate, product_margin_percent, material_margin_percent, vat_percent, round_increment
		FROM global_factors WHERE id = 1`).Scan(
		&snap.Factors.HourlyRate, &snap.Factors.ProductMarginPercent,
		&snap.Factors.MaterialMarginPercent, &snap.Factors.VATPercent,
		&snap.Factors.RoundIncrement)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query global factors")
	}

	if err := snap.Normalize(); err != nil {
		return nil, err
	}
	return snap, nil
}

// CustomerTier resolves a customer's pricing tier; unknown customers fall
// back to the standard tier.
func (p *PostgresProvider) CustomerTier(ctx context.Context, customerID string) (string, error) {
	var tier string
	err := p.pool.QueryRow(ctx,
		`SELECT tier FROM customers WHERE id = $1`, customerID).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return TierStandard, nil
	}
	if err != nil {
		return "", eris.Wrap(err, "catalog: postgres query customer tier")
	}
	return tier, nil
}

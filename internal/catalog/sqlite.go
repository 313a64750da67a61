package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// SQLiteProvider loads catalog snapshots from a modernc.org/sqlite database.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given DSN and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "catalog: sqlite exec %s", pragma)
		}
	}
	return &SQLiteProvider{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS component_nodes (
	code            TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	type            TEXT NOT NULL DEFAULT 'operation',
	base_time_secs  INTEGER NOT NULL DEFAULT 0,
	cost_price      REAL NOT NULL DEFAULT 0,
	sale_price      REAL NOT NULL DEFAULT 0,
	margin_percent  REAL,
	active          INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS component_variants (
	node_code        TEXT NOT NULL REFERENCES component_nodes(code),
	code             TEXT NOT NULL,
	name             TEXT NOT NULL,
	time_multiplier  REAL NOT NULL DEFAULT 1,
	extra_time_secs  INTEGER NOT NULL DEFAULT 0,
	cost_multiplier  REAL NOT NULL DEFAULT 1,
	price_multiplier REAL NOT NULL DEFAULT 1,
	waste_percent    REAL NOT NULL DEFAULT 0,
	is_default       INTEGER NOT NULL DEFAULT 0,
	sort_order       INTEGER NOT NULL DEFAULT 0,
	materials        TEXT,
	PRIMARY KEY (node_code, code)
);

CREATE TABLE IF NOT EXISTS calculation_rules (
	id               TEXT PRIMARY KEY,
	node_code        TEXT NOT NULL,
	variant_code     TEXT NOT NULL DEFAULT '',
	type             TEXT NOT NULL DEFAULT 'combined',
	condition        TEXT,
	time_multiplier  REAL NOT NULL DEFAULT 1,
	time_add_secs    INTEGER NOT NULL DEFAULT 0,
	cost_multiplier  REAL NOT NULL DEFAULT 1,
	cost_add         REAL NOT NULL DEFAULT 0,
	priority         INTEGER NOT NULL DEFAULT 100,
	active           INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS installation_types (
	code            TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	time_multiplier REAL NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS building_profiles (
	code                  TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	time_multiplier       REAL NOT NULL DEFAULT 1,
	difficulty_multiplier REAL NOT NULL DEFAULT 1,
	waste_multiplier      REAL NOT NULL DEFAULT 1,
	overhead_multiplier   REAL NOT NULL DEFAULT 1,
	active                INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS customer_tiers (
	code               TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	discount_percent   REAL NOT NULL DEFAULT 0,
	min_margin_percent REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS customers (
	id   TEXT PRIMARY KEY,
	tier TEXT NOT NULL DEFAULT 'standard'
);

CREATE TABLE IF NOT EXISTS global_factors (
	id                      INTEGER PRIMARY KEY CHECK (id = 1),
	hourly_rate             REAL NOT NULL,
	product_margin_percent  REAL NOT NULL,
	material_margin_percent REAL NOT NULL,
	vat_percent             REAL NOT NULL,
	round_increment         REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_rules_node ON calculation_rules(node_code);
`

// Migrate creates the catalog schema.
func (p *SQLiteProvider) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "catalog: sqlite migrate")
}

// Close closes the underlying database.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

// Load reads a full snapshot. Each call reads fresh so concurrent
// estimations never share a snapshot.
func (p *SQLiteProvider) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	nodeRows, err := p.db.QueryContext(ctx, `
		SELECT code, name, type, base_time_secs, cost_price, sale_price, margin_percent, active
		FROM component_nodes ORDER BY code`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query nodes")
	}
	defer nodeRows.Close()

	for nodeRows.Next() {
		var n model.ComponentNode
		var active int
		var margin sql.NullFloat64
		if err := nodeRows.Scan(&n.Code, &n.Name, &n.Type, &n.BaseTimeSeconds,
			&n.DefaultCostPrice, &n.DefaultSalePrice, &margin, &active); err != nil {
			return nil, eris.Wrap(err, "catalog: sqlite scan node")
		}
		n.Active = active != 0
		if margin.Valid {
			m := margin.Float64
			n.MarginPercent = &m
		}
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite iterate nodes")
	}

	byCode := make(map[string]*model.ComponentNode, len(snap.Nodes))
	for i := range snap.Nodes {
		byCode[snap.Nodes[i].Code] = &snap.Nodes[i]
	}

	varRows, err := p.db.QueryContext(ctx, `
		SELECT node_code, code, name, time_multiplier, extra_time_secs, cost_multiplier,
		       price_multiplier, waste_percent, is_default, sort_order, materials
		FROM component_variants ORDER BY node_code, sort_order`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query variants")
	}
	defer varRows.Close()

	for varRows.Next() {
		var v model.ComponentVariant
		var nodeCode string
		var isDefault int
		var materials sql.NullString
		if err := varRows.Scan(&nodeCode, &v.Code, &v.Name, &v.TimeMultiplier,
			&v.ExtraTimeSeconds, &v.CostMultiplier, &v.PriceMultiplier,
			&v.WastePercent, &isDefault, &v.SortOrder, &materials); err != nil {
			return nil, eris.Wrap(err, "catalog: sqlite scan variant")
		}
		v.IsDefault = isDefault != 0
		if materials.Valid {
			mats, err := UnmarshalMaterialsJSON([]byte(materials.String))
			if err != nil {
				return nil, err
			}
			v.Materials = mats
		}
		node, ok := byCode[nodeCode]
		if !ok {
			continue // orphan variant, skip like any other reference-data gap
		}
		node.Variants = append(node.Variants, v)
	}
	if err := varRows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite iterate variants")
	}

	ruleRows, err := p.db.QueryContext(ctx, `
		SELECT id, node_code, variant_code, type, condition, time_multiplier,
		       time_add_secs, cost_multiplier, cost_add, priority, active
		FROM calculation_rules ORDER BY priority`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query rules")
	}
	defer ruleRows.Close()

	for ruleRows.Next() {
		var r model.CalculationRule
		var active int
		var cond sql.NullString
		if err := ruleRows.Scan(&r.ID, &r.NodeCode, &r.VariantCode, &r.Type, &cond,
			&r.TimeMultiplier, &r.TimeAddSeconds, &r.CostMultiplier, &r.CostAdd,
			&r.Priority, &active); err != nil {
			return nil, eris.Wrap(err, "catalog: sqlite scan rule")
		}
		r.Active = active != 0
		if cond.Valid {
			c, err := UnmarshalConditionJSON([]byte(cond.String))
			if err != nil {
				return nil, err
			}
			r.Condition = c
		}
		snap.Rules = append(snap.Rules, r)
	}
	if err := ruleRows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite iterate rules")
	}

	instRows, err := p.db.QueryContext(ctx,
		`SELECT code, name, time_multiplier FROM installation_types`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query installation types")
	}
	defer instRows.Close()
	for instRows.Next() {
		var it model.InstallationType
		if err := instRows.Scan(&it.Code, &it.Name, &it.TimeMultiplier); err != nil {
			return nil, eris.Wrap(err, "catalog: sqlite scan installation type")
		}
		snap.InstallationTypes = append(snap.InstallationTypes, it)
	}

	profRows, err := p.db.QueryContext(ctx, `
		SELECT code, name, time_multiplier, difficulty_multiplier, waste_multiplier,
		       overhead_multiplier, active
		FROM building_profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query building profiles")
	}
	defer profRows.Close()
	for profRows.Next() {
		var bp model.BuildingProfile
		var active int
		if err := profRows.Scan(&bp.Code, &bp.Name, &bp.TimeMultiplier,
			&bp.DifficultyMultiplier, &bp.WasteMultiplier, &bp.OverheadMultiplier, &active); err != nil {
			return nil, eris.Wrap(err, "catalog: sqlite scan building profile")
		}
		bp.Active = active != 0
		snap.BuildingProfiles = append(snap.BuildingProfiles, bp)
	}

	tierRows, err := p.db.QueryContext(ctx,
		`SELECT code, name, discount_percent, min_margin_percent FROM customer_tiers`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query tiers")
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var t model.CustomerTier
		if err := tierRows.Scan(&t.Code, &t.Name, &t.DiscountPercent, &t.MinMarginPercent); err != nil {
			return nil, eris.Wrap(err, "catalog: sqlite scan tier")
		}
		snap.Tiers = append(snap.Tiers, t)
	}

	err = p.db.QueryRowContext(ctx, `
		SELECT hourly_rate, product_margin_percent, material_margin_percent, vat_percent, round_increment
		FROM global_factors WHERE id = 1`).Scan(
		&snap.Factors.HourlyRate, &snap.Factors.ProductMarginPercent,
		&snap.Factors.MaterialMarginPercent, &snap.Factors.VATPercent,
		&snap.Factors.RoundIncrement)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query global factors")
	}

	if err := snap.Normalize(); err != nil {
		return nil, err
	}
	return snap, nil
}

// CustomerTier resolves a customer's pricing tier; unknown customers fall
// back to the standard tier.
func (p *SQLiteProvider) CustomerTier(ctx context.Context, customerID string) (string, error) {
	var tier string
	err := p.db.QueryRowContext(ctx,
		`SELECT tier FROM customers WHERE id = ?`, customerID).Scan(&tier)
	if errors.Is(err, sql.ErrNoRows) {
		return TierStandard, nil
	}
	if err != nil {
		return "", eris.Wrap(err, "catalog: sqlite query customer tier")
	}
	return tier, nil
}

// Seed writes a snapshot into the database, replacing existing catalog rows.
func (p *SQLiteProvider) Seed(ctx context.Context, snap *Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "catalog: sqlite begin seed")
	}
	defer tx.Rollback()

	for _, table := range []string{
		"component_variants", "component_nodes", "calculation_rules",
		"installation_types", "building_profiles", "customer_tiers", "global_factors",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return eris.Wrapf(err, "catalog: sqlite clear %s", table)
		}
	}

	for _, n := range snap.Nodes {
		var margin any
		if n.MarginPercent != nil {
			margin = *n.MarginPercent
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO component_nodes (code, name, type, base_time_secs, cost_price, sale_price, margin_percent, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			n.Code, n.Name, string(n.Type), n.BaseTimeSeconds,
			n.DefaultCostPrice, n.DefaultSalePrice, margin, boolInt(n.Active)); err != nil {
			return eris.Wrapf(err, "catalog: sqlite seed node %s", n.Code)
		}
		for _, v := range n.Variants {
			mats, err := json.Marshal(v.Materials)
			if err != nil {
				return eris.Wrapf(err, "catalog: sqlite marshal materials for %s/%s", n.Code, v.Code)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO component_variants (node_code, code, name, time_multiplier, extra_time_secs,
					cost_multiplier, price_multiplier, waste_percent, is_default, sort_order, materials)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				n.Code, v.Code, v.Name, v.TimeMultiplier, v.ExtraTimeSeconds,
				v.CostMultiplier, v.PriceMultiplier, v.WastePercent,
				boolInt(v.IsDefault), v.SortOrder, string(mats)); err != nil {
				return eris.Wrapf(err, "catalog: sqlite seed variant %s/%s", n.Code, v.Code)
			}
		}
	}

	for _, r := range snap.Rules {
		cond, err := json.Marshal(conditionToRaw(r.Condition))
		if err != nil {
			return eris.Wrapf(err, "catalog: sqlite marshal condition for rule %s", r.ID)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO calculation_rules (id, node_code, variant_code, type, condition,
				time_multiplier, time_add_secs, cost_multiplier, cost_add, priority, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.NodeCode, r.VariantCode, string(r.Type), string(cond),
			r.TimeMultiplier, r.TimeAddSeconds, r.CostMultiplier, r.CostAdd,
			r.Priority, boolInt(r.Active)); err != nil {
			return eris.Wrapf(err, "catalog: sqlite seed rule %s", r.ID)
		}
	}

	for _, it := range snap.InstallationTypes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO installation_types (code, name, time_multiplier) VALUES (?, ?, ?)`,
			it.Code, it.Name, it.TimeMultiplier); err != nil {
			return eris.Wrapf(err, "catalog: sqlite seed installation type %s", it.Code)
		}
	}

	for _, bp := range snap.BuildingProfiles {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO building_profiles (code, name, time_multiplier, difficulty_multiplier,
				waste_multiplier, overhead_multiplier, active)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bp.Code, bp.Name, bp.TimeMultiplier, bp.DifficultyMultiplier,
			bp.WasteMultiplier, bp.OverheadMultiplier, boolInt(bp.Active)); err != nil {
			return eris.Wrapf(err, "catalog: sqlite seed building profile %s", bp.Code)
		}
	}

	for _, t := range snap.Tiers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO customer_tiers (code, name, discount_percent, min_margin_percent)
			VALUES (?, ?, ?, ?)`,
			t.Code, t.Name, t.DiscountPercent, t.MinMarginPercent); err != nil {
			return eris.Wrapf(err, "catalog: sqlite seed tier %s", t.Code)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO global_factors (id, hourly_rate, product_margin_percent, material_margin_percent, vat_percent, round_increment)
		VALUES (1, ?, ?, ?, ?, ?)`,
		snap.Factors.HourlyRate, snap.Factors.ProductMarginPercent,
		snap.Factors.MaterialMarginPercent, snap.Factors.VATPercent,
		snap.Factors.RoundIncrement); err != nil {
		return eris.Wrap(err, "catalog: sqlite seed global factors")
	}

	return eris.Wrap(tx.Commit(), "catalog: sqlite commit seed")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// conditionToRaw flattens a typed condition back into the loose record shape
// the condition column stores.
func conditionToRaw(c model.RuleCondition) map[string]any {
	raw := make(map[string]any)
	if c.MinQuantity != nil {
		raw["min_quantity"] = *c.MinQuantity
	}
	if c.MaxQuantity != nil {
		raw["max_quantity"] = *c.MaxQuantity
	}
	if c.MinCeilingHeight != nil {
		raw["min_ceiling_height"] = *c.MinCeilingHeight
	}
	if c.MaxCeilingHeight != nil {
		raw["max_ceiling_height"] = *c.MaxCeilingHeight
	}
	if c.Access != "" {
		raw["access"] = string(c.Access)
	}
	if c.MinDistanceM != nil {
		raw["min_distance_m"] = *c.MinDistanceM
	}
	for k, v := range c.Extra {
		raw[k] = v
	}
	return raw
}

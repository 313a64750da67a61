// Package model defines the typed domain model for the estimation engine:
// catalog reference data, estimation input/output, and electrical sizing types.
package model

// NodeType classifies a catalog component node.
type NodeType string

const (
	NodeTypeOperation NodeType = "operation"
	NodeTypeComposite NodeType = "composite"
	NodeTypeGroup     NodeType = "group"
)

// ComponentNode is an installable catalog unit, e.g. a wall outlet.
type ComponentNode struct {
	ID               string             `json:"id" yaml:"id"`
	Code             string             `json:"code" yaml:"code"`
	Name             string             `json:"name" yaml:"name"`
	Type             NodeType           `json:"type" yaml:"type"`
	BaseTimeSeconds  int                `json:"base_time_seconds" yaml:"base_time_seconds"`
	DefaultCostPrice float64            `json:"default_cost_price" yaml:"default_cost_price"`
	DefaultSalePrice float64            `json:"default_sale_price" yaml:"default_sale_price"`
	MarginPercent    *float64           `json:"margin_percent,omitempty" yaml:"margin_percent,omitempty"`
	Active           bool               `json:"active" yaml:"active"`
	Variants         []ComponentVariant `json:"variants" yaml:"variants"`
}

// ComponentVariant is a concrete configuration of a node, e.g. an outdoor
// IP44 outlet. At most one variant per node carries the default flag.
type ComponentVariant struct {
	ID               string     `json:"id" yaml:"id"`
	Code             string     `json:"code" yaml:"code"`
	Name             string     `json:"name" yaml:"name"`
	TimeMultiplier   float64    `json:"time_multiplier" yaml:"time_multiplier"`
	ExtraTimeSeconds int        `json:"extra_time_seconds" yaml:"extra_time_seconds"`
	CostMultiplier   float64    `json:"cost_multiplier" yaml:"cost_multiplier"`
	PriceMultiplier  float64    `json:"price_multiplier" yaml:"price_multiplier"`
	WastePercent     float64    `json:"waste_percent" yaml:"waste_percent"`
	IsDefault        bool       `json:"is_default" yaml:"is_default"`
	SortOrder        int        `json:"sort_order" yaml:"sort_order"`
	Materials        []Material `json:"materials" yaml:"materials"`
}

// Material is one line of a variant's bill of materials.
type Material struct {
	Name      string  `json:"name" yaml:"name"`
	Quantity  float64 `json:"quantity" yaml:"quantity"`
	Unit      string  `json:"unit" yaml:"unit"`
	CostPrice float64 `json:"cost_price" yaml:"cost_price"`
	SalePrice float64 `json:"sale_price" yaml:"sale_price"`
}

// RuleType scopes which figures a calculation rule adjusts.
type RuleType string

const (
	RuleTypeTime     RuleType = "time"
	RuleTypeCost     RuleType = "cost"
	RuleTypeCombined RuleType = "combined"
)

// AccessClass describes how hard the installation point is to reach.
type AccessClass string

const (
	AccessNormal     AccessClass = "normal"
	AccessDifficult  AccessClass = "difficult"
	AccessCrawlSpace AccessClass = "crawl_space"
)

// RuleCondition is the closed set of typed condition fields a rule can
// match against, plus an escape-hatch bag for forward compatibility.
// Nil pointer fields do not constrain the match.
type RuleCondition struct {
	MinQuantity      *int              `json:"min_quantity,omitempty" yaml:"min_quantity,omitempty"`
	MaxQuantity      *int              `json:"max_quantity,omitempty" yaml:"max_quantity,omitempty"`
	MinCeilingHeight *float64          `json:"min_ceiling_height,omitempty" yaml:"min_ceiling_height,omitempty"`
	MaxCeilingHeight *float64          `json:"max_ceiling_height,omitempty" yaml:"max_ceiling_height,omitempty"`
	Access           AccessClass       `json:"access,omitempty" yaml:"access,omitempty"`
	MinDistanceM     *float64          `json:"min_distance_m,omitempty" yaml:"min_distance_m,omitempty"`
	Extra            map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// CalculationRule is a conditional adjustment scoped to a node or variant.
// Matching rules stack in ascending priority order; they never override
// each other.
type CalculationRule struct {
	ID             string        `json:"id" yaml:"id"`
	NodeCode       string        `json:"node_code" yaml:"node_code"`
	VariantCode    string        `json:"variant_code,omitempty" yaml:"variant_code,omitempty"`
	Type           RuleType      `json:"type" yaml:"type"`
	Condition      RuleCondition `json:"condition" yaml:"condition"`
	TimeMultiplier float64       `json:"time_multiplier" yaml:"time_multiplier"`
	TimeAddSeconds int           `json:"time_add_seconds" yaml:"time_add_seconds"`
	CostMultiplier float64       `json:"cost_multiplier" yaml:"cost_multiplier"`
	CostAdd        float64       `json:"cost_add" yaml:"cost_add"`
	Priority       int           `json:"priority" yaml:"priority"`
	Active         bool          `json:"active" yaml:"active"`
}

// BuildingProfile is a named multiplier set for construction context.
// Its multipliers scale the per-room aggregate, not individual components.
type BuildingProfile struct {
	ID                   string  `json:"id" yaml:"id"`
	Code                 string  `json:"code" yaml:"code"`
	Name                 string  `json:"name" yaml:"name"`
	TimeMultiplier       float64 `json:"time_multiplier" yaml:"time_multiplier"`
	DifficultyMultiplier float64 `json:"difficulty_multiplier" yaml:"difficulty_multiplier"`
	WasteMultiplier      float64 `json:"waste_multiplier" yaml:"waste_multiplier"`
	OverheadMultiplier   float64 `json:"overhead_multiplier" yaml:"overhead_multiplier"`
	Active               bool    `json:"active" yaml:"active"`
}

// InstallationType maps an installation-method code (e.g. GIPS, BETON) to a
// time multiplier.
type InstallationType struct {
	Code           string  `json:"code" yaml:"code"`
	Name           string  `json:"name" yaml:"name"`
	TimeMultiplier float64 `json:"time_multiplier" yaml:"time_multiplier"`
}

// CustomerTier carries per-tier pricing policy.
type CustomerTier struct {
	Code             string  `json:"code" yaml:"code"`
	Name             string  `json:"name" yaml:"name"`
	DiscountPercent  float64 `json:"discount_percent" yaml:"discount_percent"`
	MinMarginPercent float64 `json:"min_margin_percent" yaml:"min_margin_percent"`
}

// GlobalFactors are the process-wide numeric defaults, threaded through as
// data rather than read as ambient state.
type GlobalFactors struct {
	HourlyRate            float64 `json:"hourly_rate" yaml:"hourly_rate"`
	ProductMarginPercent  float64 `json:"product_margin_percent" yaml:"product_margin_percent"`
	MaterialMarginPercent float64 `json:"material_margin_percent" yaml:"material_margin_percent"`
	VATPercent            float64 `json:"vat_percent" yaml:"vat_percent"`
	RoundIncrement        float64 `json:"round_increment" yaml:"round_increment"`
}

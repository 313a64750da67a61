package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// BuildingType classifies the building the job is in.
type BuildingType string

const (
	BuildingResidential BuildingType = "residential"
	BuildingCommercial  BuildingType = "commercial"
	BuildingIndustrial  BuildingType = "industrial"
)

// SupplyPhase is the mains supply arrangement.
type SupplyPhase string

const (
	SupplySinglePhase230 SupplyPhase = "single_phase_230"
	SupplyThreePhase400  SupplyPhase = "three_phase_400"
)

// PricingOverrides carries caller-supplied pricing parameters. Nil pointer
// fields fall back to catalog global factors.
type PricingOverrides struct {
	HourlyRate         *float64 `json:"hourly_rate,omitempty"`
	MarginPercentage   *float64 `json:"margin_percentage,omitempty"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty"`
	OverheadPercentage *float64 `json:"overhead_percentage,omitempty"`
	RiskPercentage     *float64 `json:"risk_percentage,omitempty"`
}

// RoomEstimationInput is one room of the requested job.
type RoomEstimationInput struct {
	Name             string         `json:"name"`
	RoomType         string         `json:"room_type"`
	AreaM2           float64        `json:"area_m2"`
	Floor            int            `json:"floor"`
	CeilingHeightM   float64        `json:"ceiling_height_m,omitempty"`
	InstallationType string         `json:"installation_type,omitempty"`
	Access           AccessClass    `json:"access,omitempty"`
	Points           map[string]int `json:"points"`
}

// ProjectEstimationInput is the engine's single entry contract.
type ProjectEstimationInput struct {
	Name            string                `json:"name"`
	CustomerID      string                `json:"customer_id,omitempty"`
	BuildingType    BuildingType          `json:"building_type"`
	BuildingYear    int                   `json:"building_year,omitempty"`
	BuildingProfile string                `json:"building_profile,omitempty"`
	SupplyPhase     SupplyPhase           `json:"supply_phase"`
	IsRenovation    bool                  `json:"is_renovation"`
	Rooms           []RoomEstimationInput `json:"rooms"`
	Pricing         *PricingOverrides     `json:"pricing,omitempty"`
}

// Validate checks the structural input rules the orchestrator fails fast on.
func (in *ProjectEstimationInput) Validate() error {
	if len(in.Rooms) == 0 {
		return eris.New("input: at least one room is required")
	}
	if in.CustomerID != "" {
		if _, err := uuid.Parse(in.CustomerID); err != nil {
			return eris.Wrapf(err, "input: customer_id %q is not a valid UUID", in.CustomerID)
		}
	}
	switch in.SupplyPhase {
	case "", SupplySinglePhase230, SupplyThreePhase400:
	default:
		return eris.Errorf("input: unknown supply_phase %q", in.SupplyPhase)
	}
	for i, room := range in.Rooms {
		if strings.TrimSpace(room.Name) == "" {
			return eris.Errorf("input: room %d has no name", i)
		}
		for kind, count := range room.Points {
			if count < 0 {
				return eris.Errorf("input: room %q has negative count for %q", room.Name, kind)
			}
		}
	}
	return nil
}

// ComponentLine is one expanded component of a room breakdown.
type ComponentLine struct {
	NodeCode     string  `json:"node_code"`
	NodeName     string  `json:"node_name"`
	VariantCode  string  `json:"variant_code"`
	PointKind    string  `json:"point_kind"`
	Quantity     int     `json:"quantity"`
	TimeSeconds  int     `json:"time_seconds"`
	MaterialCost float64 `json:"material_cost"`
	MaterialSale float64 `json:"material_sale"`
	RulesApplied int     `json:"rules_applied"`
}

// RoomBreakdown is the expansion result for a single room.
type RoomBreakdown struct {
	RoomName       string          `json:"room_name"`
	RoomType       string          `json:"room_type"`
	Components     []ComponentLine `json:"components"`
	TimeSeconds    int             `json:"time_seconds"`
	LaborHours     float64         `json:"labor_hours"`
	LaborCost      float64         `json:"labor_cost"`
	MaterialCost   float64         `json:"material_cost"`
	MaterialSale   float64         `json:"material_sale"`
	ComponentCount int             `json:"component_count"`
}

// LineItem is the unit the price/margin engine and risk analysis operate on.
type LineItem struct {
	Description   string  `json:"description"`
	Cost          float64 `json:"cost"`
	Sale          float64 `json:"sale"`
	MarginPercent float64 `json:"margin_percent"`
	BelowMinimum  bool    `json:"below_minimum"`
}

// RiskLevel is the aggregate estimate risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Escalate returns the higher of the two risk levels.
func (r RiskLevel) Escalate(other RiskLevel) RiskLevel {
	rank := map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}
	if rank[other] > rank[r] {
		return other
	}
	return r
}

// MarginAnalysis is the price/margin engine's aggregate output.
type MarginAnalysis struct {
	Items        []LineItem `json:"items"`
	TotalCost    float64    `json:"total_cost"`
	TotalSale    float64    `json:"total_sale"`
	DBPercent    float64    `json:"db_percent"`
	DBPerHour    float64    `json:"db_per_hour"`
	FlaggedItems int        `json:"flagged_items"`
}

// RiskAnalysis is the post-processed risk view of an estimate.
type RiskAnalysis struct {
	Level     RiskLevel `json:"level"`
	Warnings  []string  `json:"warnings"`
	OBSPoints []string  `json:"obs_points"`
}

// EstimateSummary is the flattened, human-facing summary object.
type EstimateSummary struct {
	RoomCount       int     `json:"room_count"`
	PointCount      int     `json:"point_count"`
	TotalLaborHours float64 `json:"total_labor_hours"`
	MaterialCost    float64 `json:"material_cost"`
	CableMeters     float64 `json:"cable_meters"`
	CircuitCount    int     `json:"circuit_count"`
	CostPrice       float64 `json:"cost_price"`
	SalePriceExVAT  float64 `json:"sale_price_ex_vat"`
	FinalAmount     float64 `json:"final_amount"`
	DBPercent       float64 `json:"db_percent"`
	DBPerHour       float64 `json:"db_per_hour"`
	Compliant       bool    `json:"compliant"`
	RiskLevel       string  `json:"risk_level"`
}

// ProjectEstimate is the per-room part of the result.
type ProjectEstimate struct {
	Name         string          `json:"name"`
	Rooms        []RoomBreakdown `json:"rooms"`
	TimeSeconds  int             `json:"time_seconds"`
	LaborHours   float64         `json:"labor_hours"`
	LaborCost    float64         `json:"labor_cost"`
	MaterialCost float64         `json:"material_cost"`
	MaterialSale float64         `json:"material_sale"`
}

// ProjectEstimationResult is the terminal, immutable output of one
// estimation run.
type ProjectEstimationResult struct {
	Estimate       ProjectEstimate     `json:"estimate"`
	Electrical     *ElectricalEstimate `json:"electrical"`
	MarginAnalysis MarginAnalysis      `json:"margin_analysis"`
	Risk           RiskAnalysis        `json:"risk"`
	CustomerTier   string              `json:"customer_tier"`
	AllOBSPoints   []string            `json:"all_obs_points"`
	AllWarnings    []string            `json:"all_warnings"`
	Summary        EstimateSummary     `json:"summary"`
}

// EstimationResponse is the structured envelope returned across the engine
// boundary: fatal errors become a message, never an engine-internal error
// type.
type EstimationResponse struct {
	Success bool                     `json:"success"`
	Error   string                   `json:"error,omitempty"`
	Result  *ProjectEstimationResult `json:"result,omitempty"`
}

// EstimateSnapshot is a persisted, versioned copy of a result.
type EstimateSnapshot struct {
	ID        string                   `json:"id"`
	ProjectID string                   `json:"project_id"`
	Version   int                      `json:"version"`
	Result    *ProjectEstimationResult `json:"result"`
	CreatedAt time.Time                `json:"created_at"`
}

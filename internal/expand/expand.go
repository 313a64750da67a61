// Package expand implements the rule/component expansion engine: it turns a
// room's point counts into effective installation time and material cost,
// applying variant multipliers, stacked calculation rules, and the active
// building profile.
package expand

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/catalog"
	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Engine expands rooms against one catalog snapshot.
type Engine struct {
	snap *catalog.Snapshot
}

// New creates an Engine over a normalized snapshot.
func New(snap *catalog.Snapshot) *Engine {
	return &Engine{snap: snap}
}

// RoomInput is one room plus its resolved calculation context.
type RoomInput struct {
	Room    model.RoomEstimationInput
	Profile *model.BuildingProfile
	// Variants maps point kind to an explicitly selected variant code.
	Variants   map[string]string
	HourlyRate float64
}

// ExpandRoom resolves every point kind of the room into component lines and
// aggregates per-room totals. Point kinds without catalog coverage are
// skipped, not failed: the catalog grows incrementally.
func (e *Engine) ExpandRoom(in RoomInput) model.RoomBreakdown {
	room := in.Room
	breakdown := model.RoomBreakdown{
		RoomName: room.Name,
		RoomType: room.RoomType,
	}

	instMul := 1.0
	if room.InstallationType != "" {
		if it, ok := e.snap.InstallationType(room.InstallationType); ok {
			instMul = it.TimeMultiplier
		} else {
			zap.L().Debug("expand: unknown installation type, skipping multiplier",
				zap.String("room", room.Name),
				zap.String("installation_type", room.InstallationType),
			)
		}
	}

	// Map iteration order is random; sort point kinds so identical input
	// always yields an identical breakdown.
	kinds := make([]string, 0, len(room.Points))
	for kind := range room.Points {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		count := room.Points[kind]
		node := e.snap.NodeByCode(kind)
		if node == nil {
			zap.L().Debug("expand: no catalog node for point kind",
				zap.String("room", room.Name),
				zap.String("point_kind", kind),
			)
			continue
		}

		variant := resolveVariant(node, in.Variants[kind])
		line := e.expandLine(node, variant, kind, count, room)
		breakdown.Components = append(breakdown.Components, line)

		breakdown.TimeSeconds += applyTimeMultiplier(line.TimeSeconds, instMul)
		breakdown.MaterialCost += line.MaterialCost
		breakdown.MaterialSale += line.MaterialSale
		breakdown.ComponentCount += line.Quantity
	}

	// Building-profile multipliers scale the room aggregate as a final
	// pass, not the individual components. Overhead is applied later in
	// pricing, as it concerns money, not work.
	if p := in.Profile; p != nil {
		breakdown.TimeSeconds = applyTimeMultiplier(breakdown.TimeSeconds, p.TimeMultiplier*p.DifficultyMultiplier)
		breakdown.MaterialCost *= p.WasteMultiplier
		breakdown.MaterialSale *= p.WasteMultiplier
	}

	breakdown.LaborHours = float64(breakdown.TimeSeconds) / 3600
	breakdown.LaborCost = breakdown.LaborHours * in.HourlyRate

	return breakdown
}

// expandLine computes one component line: variant-adjusted time and
// materials, then every matching rule stacked in priority order.
func (e *Engine) expandLine(node *model.ComponentNode, variant model.ComponentVariant, kind string, count int, room model.RoomEstimationInput) model.ComponentLine {
	line := model.ComponentLine{
		NodeCode:    node.Code,
		NodeName:    node.Name,
		VariantCode: variant.Code,
		PointKind:   kind,
		Quantity:    count,
	}

	// Per-unit effective time; never negative.
	unitTime := int(math.Round(float64(node.BaseTimeSeconds)*variant.TimeMultiplier)) + variant.ExtraTimeSeconds
	if unitTime < 0 {
		unitTime = 0
	}

	unitCost, unitSale := variantMaterialPrices(node, variant)

	totalTime := unitTime * count
	totalCost := unitCost * float64(count)
	totalSale := unitSale * float64(count)

	rctx := ruleContext{
		Quantity:       count,
		CeilingHeightM: room.CeilingHeightM,
		Access:         room.Access,
	}
	for _, rule := range e.snap.RulesFor(node.Code, variant.Code) {
		if !matches(rule.Condition, rctx) {
			continue
		}
		line.RulesApplied++
		// Each matching rule composes onto the running totals; the
		// previous rule's output is the next rule's input.
		if rule.Type == model.RuleTypeTime || rule.Type == model.RuleTypeCombined {
			totalTime = applyTimeMultiplier(totalTime, rule.TimeMultiplier) + rule.TimeAddSeconds
			if totalTime < 0 {
				totalTime = 0
			}
		}
		if rule.Type == model.RuleTypeCost || rule.Type == model.RuleTypeCombined {
			totalCost = totalCost*rule.CostMultiplier + rule.CostAdd
			totalSale = totalSale * rule.CostMultiplier
		}
	}

	line.TimeSeconds = totalTime
	line.MaterialCost = totalCost
	line.MaterialSale = totalSale
	return line
}

// resolveVariant reproduces the selection fallback chain: explicit code,
// then the default-flagged variant, then the first by sort order.
func resolveVariant(node *model.ComponentNode, explicit string) model.ComponentVariant {
	if explicit != "" {
		for _, v := range node.Variants {
			if v.Code == explicit {
				return v
			}
		}
	}
	for _, v := range node.Variants {
		if v.IsDefault {
			return v
		}
	}
	if len(node.Variants) > 0 {
		return node.Variants[0]
	}
	// Variant-less node: neutral configuration over the node defaults.
	return model.ComponentVariant{Code: "base", TimeMultiplier: 1, CostMultiplier: 1, PriceMultiplier: 1}
}

// variantMaterialPrices sums the variant's bill of materials per unit,
// including waste, falling back to the node's default prices when the
// variant carries no material list.
func variantMaterialPrices(node *model.ComponentNode, v model.ComponentVariant) (cost, sale float64) {
	if len(v.Materials) == 0 {
		cost = node.DefaultCostPrice * v.CostMultiplier
		sale = node.DefaultSalePrice * v.PriceMultiplier
	} else {
		for _, m := range v.Materials {
			cost += m.Quantity * m.CostPrice
			sale += m.Quantity * m.SalePrice
		}
		cost *= v.CostMultiplier
		sale *= v.PriceMultiplier
	}
	cost *= 1 + v.WastePercent/100
	return cost, sale
}

func applyTimeMultiplier(seconds int, mul float64) int {
	return int(math.Round(float64(seconds) * mul))
}

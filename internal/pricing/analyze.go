package pricing

import (
	"fmt"

	"github.com/voltgruppen/kalk-cli/internal/catalog"
	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Inputs is everything the analyzer needs to price one expanded estimate.
type Inputs struct {
	Rooms     []model.RoomBreakdown
	Snapshot  *catalog.Snapshot
	Tier      model.CustomerTier
	Overrides *model.PricingOverrides
	// Profile supplies the overhead multiplier applied to cost basis; the
	// expansion stage deliberately leaves overhead to pricing.
	Profile *model.BuildingProfile
}

// Analyze prices every room into line items and aggregates margin figures.
// Labor becomes one line per room; materials become one line per expanded
// component so each line can carry its own stored margin.
func Analyze(in Inputs) model.MarginAnalysis {
	factors := in.Snapshot.Factors

	overhead := 1.0
	if in.Profile != nil && in.Profile.OverheadMultiplier > 0 {
		overhead = in.Profile.OverheadMultiplier
	}
	if in.Overrides != nil && in.Overrides.OverheadPercentage != nil {
		overhead *= 1 + *in.Overrides.OverheadPercentage/100
	}

	var marginOverride *float64
	discount := in.Tier.DiscountPercent
	riskUplift := 1.0
	if in.Overrides != nil {
		marginOverride = in.Overrides.MarginPercentage
		if in.Overrides.DiscountPercentage != nil {
			discount = *in.Overrides.DiscountPercentage
		}
		if in.Overrides.RiskPercentage != nil {
			riskUplift = 1 + *in.Overrides.RiskPercentage/100
		}
	}

	analysis := model.MarginAnalysis{}
	var laborHours float64

	addItem := func(desc string, cost, sale float64) {
		item := model.LineItem{
			Description:   desc,
			Cost:          cost,
			Sale:          sale,
			MarginPercent: marginOf(sale, cost),
		}
		if item.MarginPercent < in.Tier.MinMarginPercent {
			item.BelowMinimum = true
			analysis.FlaggedItems++
		}
		analysis.Items = append(analysis.Items, item)
		analysis.TotalCost += cost
		analysis.TotalSale += sale
	}

	for _, room := range in.Rooms {
		laborHours += room.LaborHours

		laborCost := room.LaborCost * overhead
		laborMargin := ResolveMargin(marginOverride, nil, CategoryProducts,
			factors.ProductMarginPercent, factors.MaterialMarginPercent)
		addItem(
			fmt.Sprintf("Arbejdsløn, %s", room.RoomName),
			laborCost,
			SalePrice(laborCost, Params{
				MarginPercent:   laborMargin,
				DiscountPercent: discount,
				RoundIncrement:  factors.RoundIncrement,
			})*riskUplift,
		)

		for _, line := range room.Components {
			if line.MaterialCost == 0 {
				continue
			}
			var stored *float64
			if node := in.Snapshot.NodeByCode(line.NodeCode); node != nil {
				stored = node.MarginPercent
			}
			cost := line.MaterialCost * overhead
			margin := ResolveMargin(marginOverride, stored, CategoryMaterials,
				factors.ProductMarginPercent, factors.MaterialMarginPercent)
			addItem(
				fmt.Sprintf("%s, %s", line.NodeName, room.RoomName),
				cost,
				SalePrice(cost, Params{
					MarginPercent:   margin,
					DiscountPercent: discount,
					RoundIncrement:  factors.RoundIncrement,
				})*riskUplift,
			)
		}
	}

	analysis.DBPercent = DBPercent(analysis.TotalSale, analysis.TotalCost)
	analysis.DBPerHour = DBPerHour(analysis.TotalSale, analysis.TotalCost, laborHours)
	return analysis
}

// marginOf is the per-line margin percentage, unrounded, zero when the line
// has no sale amount.
func marginOf(sale, cost float64) float64 {
	if sale <= 0 {
		return 0
	}
	return (sale - cost) / sale * 100
}

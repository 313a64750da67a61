package catalog

import "github.com/voltgruppen/kalk-cli/internal/model"

func fptr(f float64) *float64 { return &f }
func iptr(n int) *int         { return &n }

// DefaultSnapshot returns the built-in starter catalog. It seeds new
// databases and backs tests; production catalogs come from the store.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Nodes: []model.ComponentNode{
			{
				Code: "outlet", Name: "Stikkontakt", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 900, DefaultCostPrice: 28, DefaultSalePrice: 45, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "Standard, fuldisoleret", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 2,
						Materials: []model.Material{
							{Name: "Stikkontakt m/jord", Quantity: 1, Unit: "stk", CostPrice: 28, SalePrice: 45},
							{Name: "Installationskabel 3G1,5", Quantity: 8, Unit: "m", CostPrice: 4.2, SalePrice: 7.5},
						},
					},
					{
						Code: "ip44_outdoor", Name: "IP44 udendørs", SortOrder: 2,
						TimeMultiplier: 1.3, ExtraTimeSeconds: 300, CostMultiplier: 1.8, PriceMultiplier: 1.7, WastePercent: 5,
						Materials: []model.Material{
							{Name: "Stikkontakt IP44", Quantity: 1, Unit: "stk", CostPrice: 52, SalePrice: 89},
							{Name: "Installationskabel 3G1,5", Quantity: 10, Unit: "m", CostPrice: 4.2, SalePrice: 7.5},
						},
					},
				},
			},
			{
				Code: "switch", Name: "Afbryder", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 720, DefaultCostPrice: 22, DefaultSalePrice: 38, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "1-polet afbryder", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 2,
						Materials: []model.Material{
							{Name: "Afbryder 1-polet", Quantity: 1, Unit: "stk", CostPrice: 22, SalePrice: 38},
						},
					},
				},
			},
			{
				Code: "ceiling_light", Name: "Lampeudtag, loft", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 1080, DefaultCostPrice: 35, DefaultSalePrice: 58, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "Lampeudtag med roset", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 3,
						Materials: []model.Material{
							{Name: "Lampeudtag", Quantity: 1, Unit: "stk", CostPrice: 35, SalePrice: 58},
							{Name: "Installationskabel 3G1,5", Quantity: 6, Unit: "m", CostPrice: 4.2, SalePrice: 7.5},
						},
					},
				},
			},
			{
				Code: "spot", Name: "Indbygningsspot", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 1500, DefaultCostPrice: 95, DefaultSalePrice: 160, Active: true,
				Variants: []model.ComponentVariant{
					// No default flag on purpose: resolution falls back to sort order.
					{
						Code: "led_fixed", Name: "LED, fast", SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 4,
						Materials: []model.Material{
							{Name: "LED-spot 230V", Quantity: 1, Unit: "stk", CostPrice: 95, SalePrice: 160},
						},
					},
					{
						Code: "led_tilt", Name: "LED, vipbar", SortOrder: 2,
						TimeMultiplier: 1.1, CostMultiplier: 1.2, PriceMultiplier: 1.2, WastePercent: 4,
						Materials: []model.Material{
							{Name: "LED-spot vipbar", Quantity: 1, Unit: "stk", CostPrice: 118, SalePrice: 195},
						},
					},
				},
			},
			{
				Code: "dimmer", Name: "Lysdæmper", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 900, DefaultCostPrice: 180, DefaultSalePrice: 290, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "LED-dæmper", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 2,
						Materials: []model.Material{
							{Name: "LED-lysdæmper", Quantity: 1, Unit: "stk", CostPrice: 180, SalePrice: 290},
						},
					},
				},
			},
			{
				Code: "stove_connection", Name: "Komfurtilslutning", Type: model.NodeTypeComposite,
				BaseTimeSeconds: 1800, DefaultCostPrice: 120, DefaultSalePrice: 210, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "400V tilslutning", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 3,
						Materials: []model.Material{
							{Name: "Komfurdåse", Quantity: 1, Unit: "stk", CostPrice: 46, SalePrice: 78},
							{Name: "Installationskabel 5G2,5", Quantity: 10, Unit: "m", CostPrice: 9.8, SalePrice: 16.5},
						},
					},
				},
			},
			{
				Code: "ev_charger", Name: "Ladestander til elbil", Type: model.NodeTypeComposite,
				BaseTimeSeconds: 10800, DefaultCostPrice: 4200, DefaultSalePrice: 6500,
				MarginPercent: fptr(18), Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "wallbox_11kw", Name: "Wallbox 11 kW", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 2,
						Materials: []model.Material{
							{Name: "Wallbox 11 kW, 3-faset", Quantity: 1, Unit: "stk", CostPrice: 4200, SalePrice: 6500},
							{Name: "Installationskabel 5G4", Quantity: 15, Unit: "m", CostPrice: 16.4, SalePrice: 27},
						},
					},
				},
			},
			{
				Code: "floor_heating", Name: "Gulvvarmetermostat", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 2700, DefaultCostPrice: 420, DefaultSalePrice: 690, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "Termostat m/gulvføler", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 2,
						Materials: []model.Material{
							{Name: "Gulvvarmetermostat", Quantity: 1, Unit: "stk", CostPrice: 420, SalePrice: 690},
						},
					},
				},
			},
			{
				Code: "smoke_detector", Name: "Røgalarm 230V", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 900, DefaultCostPrice: 145, DefaultSalePrice: 240, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "Serieforbundet røgalarm", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 1,
						Materials: []model.Material{
							{Name: "Røgalarm 230V m/batteribackup", Quantity: 1, Unit: "stk", CostPrice: 145, SalePrice: 240},
						},
					},
				},
			},
			{
				Code: "rcd_breaker", Name: "HPFI-relæ", Type: model.NodeTypeOperation,
				BaseTimeSeconds: 1800, DefaultCostPrice: 380, DefaultSalePrice: 620, Active: true,
				Variants: []model.ComponentVariant{
					{
						Code: "standard", Name: "HPFI 40A/30mA", IsDefault: true, SortOrder: 1,
						TimeMultiplier: 1.0, CostMultiplier: 1.0, PriceMultiplier: 1.0, WastePercent: 1,
						Materials: []model.Material{
							{Name: "HPFI-relæ 40A 30mA", Quantity: 1, Unit: "stk", CostPrice: 380, SalePrice: 620},
						},
					},
				},
			},
		},
		Rules: []model.CalculationRule{
			{
				ID: "high-ceiling-light", NodeCode: "ceiling_light", Type: model.RuleTypeTime,
				Condition:      model.RuleCondition{MinCeilingHeight: fptr(3.0)},
				TimeMultiplier: 1.25, CostMultiplier: 1.0,
				Priority: 10, Active: true,
			},
			{
				ID: "high-ceiling-spot", NodeCode: "spot", Type: model.RuleTypeTime,
				Condition:      model.RuleCondition{MinCeilingHeight: fptr(3.0)},
				TimeMultiplier: 1.25, CostMultiplier: 1.0,
				Priority: 10, Active: true,
			},
			{
				ID: "outlet-bulk", NodeCode: "outlet", Type: model.RuleTypeCost,
				Condition:      model.RuleCondition{MinQuantity: iptr(10)},
				TimeMultiplier: 1.0, CostMultiplier: 0.92,
				Priority: 20, Active: true,
			},
			{
				ID: "difficult-access", NodeCode: "spot", Type: model.RuleTypeCombined,
				Condition:      model.RuleCondition{Access: model.AccessDifficult},
				TimeMultiplier: 1.4, CostMultiplier: 1.05,
				Priority: 30, Active: true,
			},
		},
		InstallationTypes: []model.InstallationType{
			{Code: "GIPS", Name: "Gipsvæg", TimeMultiplier: 1.0},
			{Code: "BETON", Name: "Beton", TimeMultiplier: 1.35},
			{Code: "TRAE", Name: "Træværk", TimeMultiplier: 0.9},
			{Code: "LECA", Name: "Letbeton", TimeMultiplier: 1.15},
			{Code: "SYNLIG", Name: "Synlig installation", TimeMultiplier: 0.8},
		},
		BuildingProfiles: []model.BuildingProfile{
			{Code: "NYBYG", Name: "Nybyggeri", TimeMultiplier: 1.0, DifficultyMultiplier: 1.0, WasteMultiplier: 1.0, OverheadMultiplier: 1.0, Active: true},
			{Code: "RENOVERING", Name: "Renovering", TimeMultiplier: 1.15, DifficultyMultiplier: 1.1, WasteMultiplier: 1.1, OverheadMultiplier: 1.05, Active: true},
			{Code: "INDUSTRI", Name: "Industri", TimeMultiplier: 1.1, DifficultyMultiplier: 1.2, WasteMultiplier: 1.05, OverheadMultiplier: 1.1, Active: true},
		},
		Tiers: []model.CustomerTier{
			{Code: "standard", Name: "Standard", DiscountPercent: 0, MinMarginPercent: 12},
			{Code: "loyal", Name: "Stamkunde", DiscountPercent: 5, MinMarginPercent: 10},
			{Code: "partner", Name: "Partner", DiscountPercent: 8, MinMarginPercent: 8},
		},
		Factors: model.GlobalFactors{
			HourlyRate:            495,
			ProductMarginPercent:  25,
			MaterialMarginPercent: 40,
			VATPercent:            25,
			RoundIncrement:        0,
		},
	}
}

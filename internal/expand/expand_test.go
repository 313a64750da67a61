package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/catalog"
	"github.com/voltgruppen/kalk-cli/internal/model"
)

func fptr(f float64) *float64 { return &f }
func iptr(n int) *int         { return &n }

func testSnapshot(t *testing.T, rules ...model.CalculationRule) *catalog.Snapshot {
	t.Helper()
	snap := &catalog.Snapshot{
		Nodes: []model.ComponentNode{
			{
				Code: "outlet", Name: "Stikkontakt", Active: true, BaseTimeSeconds: 1000,
				Variants: []model.ComponentVariant{
					{Code: "second", SortOrder: 2, TimeMultiplier: 2, CostMultiplier: 1, PriceMultiplier: 1},
					{
						Code: "standard", SortOrder: 1, IsDefault: true,
						TimeMultiplier: 1, CostMultiplier: 1, PriceMultiplier: 1,
						Materials: []model.Material{
							{Name: "Stikkontakt", Quantity: 1, Unit: "stk", CostPrice: 30, SalePrice: 50},
						},
					},
				},
			},
			{
				Code: "spot", Name: "Spot", Active: true, BaseTimeSeconds: 600,
				Variants: []model.ComponentVariant{
					// No default: first by sort order wins.
					{Code: "first", SortOrder: 1, TimeMultiplier: 1, CostMultiplier: 1, PriceMultiplier: 1},
					{Code: "later", SortOrder: 5, TimeMultiplier: 3, CostMultiplier: 1, PriceMultiplier: 1},
				},
			},
		},
		Rules:   rules,
		Factors: model.GlobalFactors{HourlyRate: 500},
	}
	require.NoError(t, snap.Normalize())
	return snap
}

func TestRuleStackingOrder(t *testing.T) {
	t.Parallel()

	// Two active rules on the same node with priorities 1 and 2 must both
	// apply, in that order: 1000 * 1.2 = 1200, then * 1.1 = 1320.
	snap := testSnapshot(t,
		model.CalculationRule{
			ID: "p2", NodeCode: "outlet", Type: model.RuleTypeTime,
			TimeMultiplier: 1.1, CostMultiplier: 1, Priority: 2, Active: true,
		},
		model.CalculationRule{
			ID: "p1", NodeCode: "outlet", Type: model.RuleTypeTime,
			TimeMultiplier: 1.2, CostMultiplier: 1, Priority: 1, Active: true,
		},
	)
	eng := New(snap)

	b := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Stue", Points: map[string]int{"outlet": 1}},
		HourlyRate: 500,
	})

	require.Len(t, b.Components, 1)
	assert.Equal(t, 2, b.Components[0].RulesApplied)
	assert.Equal(t, 1320, b.Components[0].TimeSeconds)
}

func TestVariantFallbackChain(t *testing.T) {
	t.Parallel()
	eng := New(testSnapshot(t))

	tests := []struct {
		name        string
		kind        string
		explicit    map[string]string
		wantVariant string
		wantTime    int
	}{
		{"explicit selection", "outlet", map[string]string{"outlet": "second"}, "second", 2000},
		{"default flag wins over sort order", "outlet", nil, "standard", 1000},
		{"no default falls back to first by sort", "spot", nil, "first", 600},
		{"unknown explicit falls back to default", "outlet", map[string]string{"outlet": "gone"}, "standard", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := eng.ExpandRoom(RoomInput{
				Room:       model.RoomEstimationInput{Name: "Rum", Points: map[string]int{tt.kind: 1}},
				Variants:   tt.explicit,
				HourlyRate: 500,
			})
			require.Len(t, b.Components, 1)
			assert.Equal(t, tt.wantVariant, b.Components[0].VariantCode)
			assert.Equal(t, tt.wantTime, b.Components[0].TimeSeconds)
		})
	}
}

func TestUnknownPointKindIsSkipped(t *testing.T) {
	t.Parallel()
	eng := New(testSnapshot(t))

	b := eng.ExpandRoom(RoomInput{
		Room: model.RoomEstimationInput{
			Name:   "Stue",
			Points: map[string]int{"outlet": 2, "hologram_projector": 4},
		},
		HourlyRate: 500,
	})

	require.Len(t, b.Components, 1)
	assert.Equal(t, "outlet", b.Components[0].NodeCode)
	assert.Equal(t, 2000, b.TimeSeconds)
}

func TestZeroQuantityStillEnumerated(t *testing.T) {
	t.Parallel()
	eng := New(testSnapshot(t))

	b := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Stue", Points: map[string]int{"outlet": 0}},
		HourlyRate: 500,
	})

	require.Len(t, b.Components, 1)
	assert.Equal(t, 0, b.Components[0].TimeSeconds)
	assert.InDelta(t, 0, b.Components[0].MaterialCost, 0.001)
	assert.Equal(t, 0, b.TimeSeconds)
}

func TestConditionMatching(t *testing.T) {
	t.Parallel()

	snap := testSnapshot(t,
		model.CalculationRule{
			ID: "high-ceiling", NodeCode: "outlet", Type: model.RuleTypeTime,
			Condition:      model.RuleCondition{MinCeilingHeight: fptr(3.0)},
			TimeMultiplier: 1.5, CostMultiplier: 1, Priority: 1, Active: true,
		},
		model.CalculationRule{
			ID: "bulk", NodeCode: "outlet", Type: model.RuleTypeCost,
			Condition:      model.RuleCondition{MinQuantity: iptr(10)},
			TimeMultiplier: 1, CostMultiplier: 0.9, Priority: 2, Active: true,
		},
	)
	eng := New(snap)

	low := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Stue", CeilingHeightM: 2.4, Points: map[string]int{"outlet": 2}},
		HourlyRate: 500,
	})
	assert.Equal(t, 2000, low.TimeSeconds)
	assert.InDelta(t, 2*30*1.0, low.Components[0].MaterialCost, 0.001)

	high := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Hal", CeilingHeightM: 3.2, Points: map[string]int{"outlet": 12}},
		HourlyRate: 500,
	})
	require.Len(t, high.Components, 1)
	assert.Equal(t, 2, high.Components[0].RulesApplied)
	assert.Equal(t, 18000, high.Components[0].TimeSeconds) // 12000 * 1.5
	assert.InDelta(t, 12*30*0.9, high.Components[0].MaterialCost, 0.001)
}

func TestCostRuleDoesNotTouchTime(t *testing.T) {
	t.Parallel()

	snap := testSnapshot(t, model.CalculationRule{
		ID: "cost-only", NodeCode: "outlet", Type: model.RuleTypeCost,
		TimeMultiplier: 9, CostMultiplier: 1.1, Priority: 1, Active: true,
	})
	eng := New(snap)

	b := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Stue", Points: map[string]int{"outlet": 1}},
		HourlyRate: 500,
	})
	assert.Equal(t, 1000, b.Components[0].TimeSeconds)
	assert.InDelta(t, 33, b.Components[0].MaterialCost, 0.001)
}

func TestBuildingProfileScalesAggregate(t *testing.T) {
	t.Parallel()
	eng := New(testSnapshot(t))

	profile := &model.BuildingProfile{
		Code: "RENOVERING", TimeMultiplier: 1.2, DifficultyMultiplier: 1.1,
		WasteMultiplier: 1.1, OverheadMultiplier: 1.05, Active: true,
	}
	b := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Stue", Points: map[string]int{"outlet": 2}},
		Profile:    profile,
		HourlyRate: 500,
	})

	// Aggregate pass: 2000 * 1.2 * 1.1 = 2640, materials 60 * 1.1 = 66.
	assert.Equal(t, 2640, b.TimeSeconds)
	assert.InDelta(t, 66, b.MaterialCost, 0.001)
	// The component line keeps its pre-profile figures.
	assert.Equal(t, 2000, b.Components[0].TimeSeconds)
}

func TestInstallationTypeMultiplier(t *testing.T) {
	t.Parallel()

	snap := testSnapshot(t)
	snap.InstallationTypes = []model.InstallationType{{Code: "BETON", Name: "Beton", TimeMultiplier: 1.5}}
	require.NoError(t, snap.Normalize())
	eng := New(snap)

	b := eng.ExpandRoom(RoomInput{
		Room: model.RoomEstimationInput{
			Name: "Kælder", InstallationType: "BETON",
			Points: map[string]int{"outlet": 2},
		},
		HourlyRate: 500,
	})
	assert.Equal(t, 3000, b.TimeSeconds)

	// Unknown code contributes no multiplier instead of failing.
	b = eng.ExpandRoom(RoomInput{
		Room: model.RoomEstimationInput{
			Name: "Kælder", InstallationType: "MARMOR",
			Points: map[string]int{"outlet": 2},
		},
		HourlyRate: 500,
	})
	assert.Equal(t, 2000, b.TimeSeconds)
}

func TestLaborDerivation(t *testing.T) {
	t.Parallel()
	eng := New(testSnapshot(t))

	b := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Stue", Points: map[string]int{"outlet": 9}},
		HourlyRate: 500,
	})
	// 9000s = 2.5h at 500/h.
	assert.InDelta(t, 2.5, b.LaborHours, 0.0001)
	assert.InDelta(t, 1250, b.LaborCost, 0.001)
	assert.Equal(t, 9, b.ComponentCount)
}

func TestNegativeEffectiveTimeClamped(t *testing.T) {
	t.Parallel()

	snap := &catalog.Snapshot{
		Nodes: []model.ComponentNode{
			{
				Code: "patch", Name: "Patch", Active: true, BaseTimeSeconds: 100,
				Variants: []model.ComponentVariant{
					{Code: "fast", IsDefault: true, TimeMultiplier: 1, ExtraTimeSeconds: -500, CostMultiplier: 1, PriceMultiplier: 1},
				},
			},
		},
		Factors: model.GlobalFactors{HourlyRate: 500},
	}
	require.NoError(t, snap.Normalize())
	eng := New(snap)

	b := eng.ExpandRoom(RoomInput{
		Room:       model.RoomEstimationInput{Name: "Teknik", Points: map[string]int{"patch": 3}},
		HourlyRate: 500,
	})
	assert.Equal(t, 0, b.TimeSeconds)
}

func TestDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	eng := New(testSnapshot(t))

	in := RoomInput{
		Room: model.RoomEstimationInput{
			Name:   "Stue",
			Points: map[string]int{"outlet": 3, "spot": 4},
		},
		HourlyRate: 500,
	}
	first := eng.ExpandRoom(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, eng.ExpandRoom(in))
	}
}

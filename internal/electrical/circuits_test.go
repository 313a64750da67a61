package electrical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

func lightingLoad(room string, qty int, wet bool) model.LoadEntry {
	return model.LoadEntry{
		Description: "Indbygningsspot", Room: room, Category: model.LoadLighting,
		RatedPowerWatts: 35, Quantity: qty, PowerFactor: 0.95, WetRoom: wet,
	}
}

func TestPackSharedSplitsAtLimit(t *testing.T) {
	t.Parallel()

	circuits := packShared([]model.LoadEntry{lightingLoad("Stue", 14, false)},
		model.LoadLighting, "Lysgruppe", maxLightingPoints)

	require.Len(t, circuits, 2)
	assert.Equal(t, 10, circuits[0].Loads[0].Quantity)
	assert.Equal(t, 4, circuits[1].Loads[0].Quantity)
}

func TestPackSharedCarriesWetRoomFlag(t *testing.T) {
	t.Parallel()

	circuits := packShared([]model.LoadEntry{
		lightingLoad("Stue", 3, false),
		lightingLoad("Badeværelse", 2, true),
	}, model.LoadLighting, "Lysgruppe", maxLightingPoints)

	require.Len(t, circuits, 1)
	assert.True(t, circuits[0].ServesWetRoom)
}

func TestSizeCircuitContinuousLoad(t *testing.T) {
	t.Parallel()

	// EV on three phases: 11000 / (sqrt3 * 400 * 0.99) = 16.04 A, times the
	// continuous factor 1.25 gives 20.05 A. Breaker 25 A, cable 2.5 mm2.
	c := model.Circuit{
		Category:   model.LoadEVCharger,
		ThreePhase: true,
		Loads: []model.LoadEntry{{
			Category: model.LoadEVCharger, RatedPowerWatts: 11000,
			Quantity: 1, PowerFactor: 0.99, Continuous: true,
		}},
	}
	sizeCircuit(&c)

	assert.InDelta(t, 20.05, c.DesignCurrentA, 0.01)
	assert.Equal(t, 25, c.BreakerA)
	assert.InDelta(t, 2.5, c.CableSectionMM, 0.001)
	assert.InDelta(t, 14, c.CableMeters, 0.001) // 10 + 4*1
}

func TestSizeCircuitSharedSockets(t *testing.T) {
	t.Parallel()

	// 8 outlets at 230 W: 1840 / 230 = 8 A. Breaker 10 A, cable 1.5 mm2.
	c := model.Circuit{
		Category: model.LoadSocketOutlet,
		Loads: []model.LoadEntry{{
			Category: model.LoadSocketOutlet, RatedPowerWatts: 230,
			Quantity: 8, PowerFactor: 1.0,
		}},
	}
	sizeCircuit(&c)

	assert.InDelta(t, 8.0, c.DesignCurrentA, 0.01)
	assert.Equal(t, 10, c.BreakerA)
	assert.InDelta(t, 1.5, c.CableSectionMM, 0.001)
	assert.InDelta(t, 42, c.CableMeters, 0.001) // 10 + 4*8
}

func TestBuildPanelDedicatedCircuits(t *testing.T) {
	t.Parallel()

	loads, hasRCD := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Køkken", RoomType: "kitchen", Points: map[string]int{
			"stove_connection": 1,
			"dishwasher":       1,
			"outlet":           4,
		}},
		{Name: "Garage", RoomType: "garage", Points: map[string]int{"ev_charger": 1}},
	})
	panel := BuildPanel(loads, model.SupplyThreePhase400, hasRCD)

	// One socket group plus three dedicated circuits.
	require.Len(t, panel.Circuits, 4)

	byCat := make(map[model.LoadCategory]model.Circuit)
	for _, c := range panel.Circuits {
		byCat[c.Category] = c
	}
	assert.True(t, byCat[model.LoadCooking].ThreePhase)
	assert.True(t, byCat[model.LoadEVCharger].ThreePhase)
	assert.False(t, byCat[model.LoadFixedAppliance].ThreePhase)
	assert.False(t, byCat[model.LoadSocketOutlet].ThreePhase)

	for i, c := range panel.Circuits {
		assert.Equal(t, i+1, c.Number)
		assert.False(t, c.RCDProtected)
	}
	assert.Equal(t, 7360+2200+4*230+11000, panel.TotalLoadWatts)
}

func TestBuildPanelDefaultsToThreePhase(t *testing.T) {
	t.Parallel()

	loads, _ := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Stue", RoomType: "living_room", Points: map[string]int{"outlet": 2}},
	})
	panel := BuildPanel(loads, "", false)

	assert.Equal(t, model.SupplyThreePhase400, panel.SupplyPhase)
	assert.Len(t, panel.PhaseCurrentA, 3)
}

func TestAssignPhasesLeastLoaded(t *testing.T) {
	t.Parallel()

	panel := model.Panel{
		MainBreakerA: mainBreakerA,
		SupplyPhase:  model.SupplyThreePhase400,
		Circuits: []model.Circuit{
			{DesignCurrentA: 10},
			{DesignCurrentA: 6},
			{DesignCurrentA: 4},
			{DesignCurrentA: 4},
		},
	}
	assignPhases(&panel)

	// 10 -> L1, 6 -> L2, 4 -> L3, 4 -> L3 again (still the least loaded).
	assert.Equal(t, 1, panel.Circuits[0].Phase)
	assert.Equal(t, 2, panel.Circuits[1].Phase)
	assert.Equal(t, 3, panel.Circuits[2].Phase)
	assert.Equal(t, 3, panel.Circuits[3].Phase)
	assert.InDelta(t, 10, panel.PhaseCurrentA[0], 0.001)
	assert.InDelta(t, 6, panel.PhaseCurrentA[1], 0.001)
	assert.InDelta(t, 8, panel.PhaseCurrentA[2], 0.001)
}

func TestAssignPhasesThreePhaseLoadsAllPhases(t *testing.T) {
	t.Parallel()

	panel := model.Panel{
		MainBreakerA: mainBreakerA,
		SupplyPhase:  model.SupplyThreePhase400,
		Circuits: []model.Circuit{
			{DesignCurrentA: 11, ThreePhase: true},
			{DesignCurrentA: 5},
		},
	}
	assignPhases(&panel)

	assert.Equal(t, 0, panel.Circuits[0].Phase)
	for _, cur := range panel.PhaseCurrentA {
		assert.GreaterOrEqual(t, cur, 11.0)
	}
}

func TestSinglePhaseSupplyHasOnePhase(t *testing.T) {
	t.Parallel()

	loads, _ := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Stue", RoomType: "living_room", Points: map[string]int{"outlet": 3, "ceiling_light": 2}},
	})
	panel := BuildPanel(loads, model.SupplySinglePhase230, false)

	require.Len(t, panel.PhaseCurrentA, 1)
	for _, c := range panel.Circuits {
		assert.Equal(t, 1, c.Phase)
		assert.False(t, c.ThreePhase)
	}
}

package electrical

import (
	"fmt"
	"math"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

const (
	voltageSingle = 230.0
	voltageThree  = 400.0
	sqrt3         = 1.7320508075688772

	// Continuous loads are sized with headroom on the design current.
	continuousFactor = 1.25

	maxLightingPoints = 10
	maxSocketOutlets  = 8

	mainBreakerA = 25
)

// breakerLadder lists standard MCB ratings in ascending order.
var breakerLadder = []int{6, 10, 13, 16, 20, 25, 32, 40, 50, 63}

// ampacity maps installed cable cross-section (mm²) to allowed current for
// fixed installation in buildings. Ascending by section.
var ampacity = []struct {
	SectionMM float64
	MaxA      int
}{
	{1.5, 16},
	{2.5, 25},
	{4, 32},
	{6, 40},
	{10, 50},
	{16, 63},
}

// BuildPanel groups loads into circuits, sizes each one, balances phases,
// and assembles the panel.
func BuildPanel(loads []model.LoadEntry, supply model.SupplyPhase, hasRCD bool) model.Panel {
	if supply == "" {
		supply = model.SupplyThreePhase400
	}

	var circuits []model.Circuit

	// Shared circuits: lighting and sockets pack up to their point limits,
	// in load order, which is already deterministic.
	circuits = append(circuits, packShared(loads, model.LoadLighting, "Lysgruppe", maxLightingPoints)...)
	circuits = append(circuits, packShared(loads, model.LoadSocketOutlet, "Stikkontaktgruppe", maxSocketOutlets)...)

	// Dedicated circuits: one per cooking/heating/EV/fixed-appliance load.
	for _, load := range loads {
		switch load.Category {
		case model.LoadCooking, model.LoadHeating, model.LoadEVCharger, model.LoadFixedAppliance:
			for i := 0; i < load.Quantity; i++ {
				single := load
				single.Quantity = 1
				circuits = append(circuits, model.Circuit{
					Description:   fmt.Sprintf("%s, %s", load.Description, load.Room),
					Category:      load.Category,
					Loads:         []model.LoadEntry{single},
					ThreePhase:    supply == model.SupplyThreePhase400 && needsThreePhase(load),
					ServesWetRoom: load.WetRoom,
				})
			}
		}
	}

	for i := range circuits {
		sizeCircuit(&circuits[i])
		circuits[i].RCDProtected = hasRCD
		circuits[i].Number = i + 1
	}

	panel := model.Panel{
		MainBreakerA: mainBreakerA,
		SupplyPhase:  supply,
		Circuits:     circuits,
	}
	assignPhases(&panel)

	for _, c := range panel.Circuits {
		panel.TotalCableMeter += c.CableMeters
		for _, l := range c.Loads {
			panel.TotalLoadWatts += l.RatedPowerWatts * l.Quantity
		}
	}
	maxPhase := 0.0
	for _, cur := range panel.PhaseCurrentA {
		maxPhase = math.Max(maxPhase, cur)
	}
	panel.RemainingA = float64(panel.MainBreakerA) - maxPhase

	return panel
}

// packShared packs same-category loads into shared circuits up to the
// per-circuit point limit, splitting oversized loads across circuits.
func packShared(loads []model.LoadEntry, cat model.LoadCategory, name string, limit int) []model.Circuit {
	var circuits []model.Circuit
	var current *model.Circuit
	points := 0

	flush := func() {
		if current != nil {
			circuits = append(circuits, *current)
			current = nil
			points = 0
		}
	}

	for _, load := range loads {
		if load.Category != cat {
			continue
		}
		remaining := load.Quantity
		for remaining > 0 {
			if current == nil {
				current = &model.Circuit{
					Description: fmt.Sprintf("%s %d", name, len(circuits)+1),
					Category:    cat,
				}
			}
			take := remaining
			if points+take > limit {
				take = limit - points
			}
			part := load
			part.Quantity = take
			current.Loads = append(current.Loads, part)
			current.ServesWetRoom = current.ServesWetRoom || load.WetRoom
			points += take
			remaining -= take
			if points >= limit {
				flush()
			}
		}
	}
	flush()
	return circuits
}

// needsThreePhase reports whether a dedicated load conventionally connects
// across all three phases.
func needsThreePhase(load model.LoadEntry) bool {
	return load.Category == model.LoadEVCharger || load.Category == model.LoadCooking
}

// sizeCircuit computes design current, breaker rating, cable section, and
// a cable-length estimate for one circuit.
func sizeCircuit(c *model.Circuit) {
	var watts float64
	pf := 1.0
	continuous := false
	points := 0
	for _, l := range c.Loads {
		watts += float64(l.RatedPowerWatts * l.Quantity)
		pf = math.Min(pf, l.PowerFactor)
		continuous = continuous || l.Continuous
		points += l.Quantity
	}
	if pf <= 0 {
		pf = 1.0
	}

	var current float64
	if c.ThreePhase {
		current = watts / (sqrt3 * voltageThree * pf)
	} else {
		current = watts / (voltageSingle * pf)
	}
	if continuous {
		current *= continuousFactor
	}
	c.DesignCurrentA = math.Round(current*100) / 100

	c.BreakerA = breakerLadder[len(breakerLadder)-1]
	for _, b := range breakerLadder {
		if float64(b) >= current {
			c.BreakerA = b
			break
		}
	}

	c.CableSectionMM = ampacity[len(ampacity)-1].SectionMM
	for _, a := range ampacity {
		if a.MaxA >= c.BreakerA {
			c.CableSectionMM = a.SectionMM
			break
		}
	}

	// Rough run estimate: panel feed plus per-point drops.
	c.CableMeters = 10 + 4*float64(points)
}

// assignPhases balances single-phase circuits onto the least-loaded phase.
// Three-phase circuits load all phases. Single-phase supply has one phase.
func assignPhases(panel *model.Panel) {
	phases := 1
	if panel.SupplyPhase == model.SupplyThreePhase400 {
		phases = 3
	}
	panel.PhaseCurrentA = make([]float64, phases)

	for i := range panel.Circuits {
		c := &panel.Circuits[i]
		if c.ThreePhase && phases == 3 {
			c.Phase = 0 // all phases
			for p := 0; p < phases; p++ {
				panel.PhaseCurrentA[p] += c.DesignCurrentA
			}
			continue
		}
		c.ThreePhase = false
		least := 0
		for p := 1; p < phases; p++ {
			if panel.PhaseCurrentA[p] < panel.PhaseCurrentA[least] {
				least = p
			}
		}
		c.Phase = least + 1
		panel.PhaseCurrentA[least] += c.DesignCurrentA
	}
}

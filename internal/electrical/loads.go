// Package electrical sizes the installation: it synthesizes load entries
// from room points, groups them into panel circuits, sizes cables and
// breakers, and evaluates regulatory compliance.
//
// The whole stage is best-effort from the orchestrator's point of view: it
// augments an estimate, it never gates one.
package electrical

import (
	"sort"
	"strings"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// loadSpec is the fixed power assumption for one point kind.
type loadSpec struct {
	Description string
	Category    model.LoadCategory
	Watts       int
	PowerFactor float64
	Continuous  bool
}

// loadTable maps point kinds to electrical load assumptions. Kinds absent
// here (switches, network outlets, smoke detectors) carry no sizing load.
var loadTable = map[string]loadSpec{
	"outlet":           {"Stikkontakt", model.LoadSocketOutlet, 230, 1.0, false},
	"ceiling_light":    {"Lampeudtag", model.LoadLighting, 60, 0.95, false},
	"spot":             {"Indbygningsspot", model.LoadLighting, 35, 0.95, false},
	"stove_connection": {"Komfur", model.LoadCooking, 7360, 1.0, false},
	"oven":             {"Ovn", model.LoadCooking, 3600, 1.0, false},
	"dishwasher":       {"Opvaskemaskine", model.LoadFixedAppliance, 2200, 1.0, false},
	"washing_machine":  {"Vaskemaskine", model.LoadFixedAppliance, 2200, 1.0, false},
	"dryer":            {"Tørretumbler", model.LoadFixedAppliance, 2500, 1.0, false},
	"floor_heating":    {"Gulvvarme", model.LoadHeating, 1200, 1.0, true},
	"heat_pump":        {"Varmepumpe", model.LoadHeating, 3000, 0.9, true},
	"ev_charger":       {"Ladestander", model.LoadEVCharger, 11000, 0.99, true},
}

// rcdPointKind marks the panel-level residual current device; it is a
// protection component, not a load.
const rcdPointKind = "rcd_breaker"

// wetRoomTypes are always treated as wet for compliance, regardless of
// other input.
var wetRoomTypes = map[string]bool{
	"bathroom": true,
	"outdoor":  true,
	"utility":  true,
}

// IsWetRoom reports whether the room type is a wet room.
func IsWetRoom(roomType string) bool {
	return wetRoomTypes[strings.ToLower(roomType)]
}

// SynthesizeLoads converts room point counts into load entries, in room
// order and sorted point-kind order, so identical input yields identical
// loads. It also reports whether any room includes an RCD component.
func SynthesizeLoads(rooms []model.RoomEstimationInput) (loads []model.LoadEntry, hasRCD bool) {
	for _, room := range rooms {
		wet := IsWetRoom(room.RoomType)
		for _, kind := range sortedKinds(room.Points) {
			count := room.Points[kind]
			if count <= 0 {
				continue
			}
			if kind == rcdPointKind {
				hasRCD = true
				continue
			}
			spec, ok := loadTable[kind]
			if !ok {
				continue
			}
			loads = append(loads, model.LoadEntry{
				Description:     spec.Description,
				Room:            room.Name,
				Category:        spec.Category,
				RatedPowerWatts: spec.Watts,
				Quantity:        count,
				PowerFactor:     spec.PowerFactor,
				Continuous:      spec.Continuous,
				WetRoom:         wet,
			})
		}
	}
	return loads, hasRCD
}

func sortedKinds(points map[string]int) []string {
	kinds := make([]string, 0, len(points))
	for kind := range points {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

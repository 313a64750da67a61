package electrical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

func findSeverity(issues []model.ComplianceIssue, sev model.IssueSeverity) []model.ComplianceIssue {
	var out []model.ComplianceIssue
	for _, i := range issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

func TestComplianceWetRoomWithoutRCD(t *testing.T) {
	t.Parallel()

	loads, hasRCD := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Badeværelse", RoomType: "bathroom", Points: map[string]int{
			"outlet": 3, "ceiling_light": 2,
		}},
	})
	panel := BuildPanel(loads, model.SupplyThreePhase400, hasRCD)
	issues := EvaluateCompliance(&panel)

	errs := findSeverity(issues, model.SeverityError)
	require.Len(t, errs, 1) // both wet circuits collapse into one finding
	assert.Contains(t, errs[0].Description, "RCD")
	assert.Contains(t, errs[0].Standard, "60364-7-701")
}

func TestComplianceWetRoomWithRCD(t *testing.T) {
	t.Parallel()

	loads, hasRCD := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Badeværelse", RoomType: "bathroom", Points: map[string]int{
			"outlet": 3, "ceiling_light": 2, "rcd_breaker": 1,
		}},
	})
	panel := BuildPanel(loads, model.SupplyThreePhase400, hasRCD)
	issues := EvaluateCompliance(&panel)

	assert.Empty(t, findSeverity(issues, model.SeverityError))
}

func TestComplianceOverloadedMain(t *testing.T) {
	t.Parallel()

	loads, hasRCD := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Køkken", RoomType: "kitchen", Points: map[string]int{"stove_connection": 1, "rcd_breaker": 1}},
		{Name: "Garage", RoomType: "garage", Points: map[string]int{"ev_charger": 1}},
		{Name: "Bryggers", RoomType: "utility", Points: map[string]int{"dryer": 1, "washing_machine": 1}},
	})
	panel := BuildPanel(loads, model.SupplyThreePhase400, hasRCD)
	issues := EvaluateCompliance(&panel)

	errs := findSeverity(issues, model.SeverityError)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Description, "main breaker")
	assert.Less(t, panel.RemainingA, 0.0)
}

func TestComplianceEVChargerOnSinglePhase(t *testing.T) {
	t.Parallel()

	loads, hasRCD := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Garage", RoomType: "garage", Points: map[string]int{"ev_charger": 1, "rcd_breaker": 1}},
	})
	panel := BuildPanel(loads, model.SupplySinglePhase230, hasRCD)
	issues := EvaluateCompliance(&panel)

	warnings := findSeverity(issues, model.SeverityWarning)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Description, "EV charger")
}

func TestCompliancePhaseImbalanceWarning(t *testing.T) {
	t.Parallel()

	loads, hasRCD := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Bryggers", RoomType: "utility", Points: map[string]int{"dryer": 1, "rcd_breaker": 1}},
	})
	panel := BuildPanel(loads, model.SupplyThreePhase400, hasRCD)
	issues := EvaluateCompliance(&panel)

	found := false
	for _, w := range findSeverity(issues, model.SeverityWarning) {
		if w.Standard == "DS/HD 60364-5-52" {
			found = true
		}
	}
	assert.True(t, found, "expected a phase imbalance warning")
}

func TestComplianceUndersizedCable(t *testing.T) {
	t.Parallel()

	// Sizing never produces this; a manually edited panel can.
	panel := model.Panel{
		MainBreakerA:  mainBreakerA,
		SupplyPhase:   model.SupplySinglePhase230,
		PhaseCurrentA: []float64{12},
		Circuits: []model.Circuit{
			{Number: 1, BreakerA: 20, CableSectionMM: 1.5, RCDProtected: true},
		},
	}
	issues := EvaluateCompliance(&panel)

	errs := findSeverity(issues, model.SeverityError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Description, "undersized")
}

func TestComplianceCircuitCountWarning(t *testing.T) {
	t.Parallel()

	panel := model.Panel{
		MainBreakerA:  mainBreakerA,
		SupplyPhase:   model.SupplyThreePhase400,
		PhaseCurrentA: []float64{5, 5, 5},
		Circuits:      make([]model.Circuit, 13),
	}
	for i := range panel.Circuits {
		panel.Circuits[i] = model.Circuit{Number: i + 1, BreakerA: 10, CableSectionMM: 1.5, RCDProtected: true}
	}
	issues := EvaluateCompliance(&panel)

	warnings := findSeverity(issues, model.SeverityWarning)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Description, "circuits")
}

package electrical

import (
	"fmt"
	"math"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// EvaluateCompliance checks the sized panel against installation rules.
// Errors violate a hard requirement; warnings are advisory.
func EvaluateCompliance(panel *model.Panel) []model.ComplianceIssue {
	var issues []model.ComplianceIssue
	seen := make(map[string]bool)
	add := func(sev model.IssueSeverity, desc, standard string) {
		key := string(sev) + desc
		if seen[key] {
			return
		}
		seen[key] = true
		issues = append(issues, model.ComplianceIssue{Severity: sev, Description: desc, Standard: standard})
	}

	for _, c := range panel.Circuits {
		if c.ServesWetRoom && !c.RCDProtected {
			add(model.SeverityError,
				"wet room circuits require 30 mA RCD protection",
				"DS/HD 60364-7-701 §701.415.1")
		}
		if maxAmpacity(c.CableSectionMM) < c.BreakerA {
			add(model.SeverityError,
				fmt.Sprintf("circuit %d: %.1f mm² cable is undersized for a %d A breaker", c.Number, c.CableSectionMM, c.BreakerA),
				"DS/HD 60364-4-43 §433.1")
		}
		if c.Category == model.LoadEVCharger && !c.ThreePhase && panel.SupplyPhase == model.SupplySinglePhase230 {
			add(model.SeverityWarning,
				"EV charger on single-phase supply will charge at reduced power",
				"DS/HD 60364-7-722")
		}
	}

	maxPhase := 0.0
	minPhase := math.MaxFloat64
	for _, cur := range panel.PhaseCurrentA {
		maxPhase = math.Max(maxPhase, cur)
		minPhase = math.Min(minPhase, cur)
	}
	if len(panel.PhaseCurrentA) > 0 && maxPhase > float64(panel.MainBreakerA) {
		add(model.SeverityError,
			fmt.Sprintf("aggregated load %.1f A exceeds the %d A main breaker", maxPhase, panel.MainBreakerA),
			"DS/HD 60364-4-43 §433.1")
	}
	if len(panel.PhaseCurrentA) == 3 && maxPhase > 0 && (maxPhase-minPhase)/maxPhase > 0.2 {
		add(model.SeverityWarning,
			"phase load imbalance exceeds 20%, consider redistributing circuits",
			"DS/HD 60364-5-52")
	}
	if len(panel.Circuits) > 12 {
		add(model.SeverityWarning,
			"more than 12 circuits, verify panel has sufficient module capacity",
			"DS/HD 60364-5-51")
	}

	return issues
}

func maxAmpacity(sectionMM float64) int {
	for _, a := range ampacity {
		if a.SectionMM == sectionMM {
			return a.MaxA
		}
	}
	return 0
}

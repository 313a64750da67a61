// Package risk post-processes line items and compliance findings into an
// aggregate risk level plus deduplicated warnings and customer-facing OBS
// points.
package risk

import (
	"fmt"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Analyze derives the risk view of one estimate. Compliance errors force at
// least high risk; flagged margins force at least medium; otherwise low.
func Analyze(analysis model.MarginAnalysis, issues []model.ComplianceIssue) model.RiskAnalysis {
	out := model.RiskAnalysis{Level: model.RiskLow}

	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityError:
			out.Level = out.Level.Escalate(model.RiskHigh)
			out.OBSPoints = append(out.OBSPoints, issue.Description)
		case model.SeverityWarning:
			out.Warnings = append(out.Warnings, issue.Description)
		}
	}

	for _, item := range analysis.Items {
		if !item.BelowMinimum {
			continue
		}
		out.Level = out.Level.Escalate(model.RiskMedium)
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("lav dækningsgrad på %q (%.1f%%)", item.Description, item.MarginPercent))
	}
	if analysis.TotalSale > 0 && analysis.TotalSale < analysis.TotalCost {
		out.Level = out.Level.Escalate(model.RiskHigh)
		out.OBSPoints = append(out.OBSPoints, "samlet salgspris ligger under kostprisen")
	}

	out.Warnings = dedupe(out.Warnings)
	out.OBSPoints = dedupe(out.OBSPoints)
	return out
}

// dedupe removes repeats while preserving first-seen order. The same
// condition may be raised by more than one stage.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

package estimator

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

var danish = message.NewPrinter(language.Danish)

// FormatSummary renders the flattened summary as customer-facing text with
// Danish number formatting.
func FormatSummary(r *model.ProjectEstimationResult) string {
	s := r.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Projekt: %s\n", r.Estimate.Name)
	fmt.Fprintf(&b, "Kundesegment: %s\n\n", r.CustomerTier)

	danish.Fprintf(&b, "Rum: %d, punkter: %d\n", s.RoomCount, s.PointCount)
	danish.Fprintf(&b, "Arbejdstimer: %.1f\n", s.TotalLaborHours)
	danish.Fprintf(&b, "Materialer (kost): %.2f kr.\n", s.MaterialCost)
	if s.CircuitCount > 0 {
		danish.Fprintf(&b, "Grupper i tavle: %d, kabel: %.0f m\n", s.CircuitCount, s.CableMeters)
		if s.Compliant {
			b.WriteString("Installationen overholder gældende regler.\n")
		} else {
			b.WriteString("OBS: installationen overholder IKKE gældende regler.\n")
		}
	} else {
		b.WriteString("Elektrisk dimensionering ikke tilgængelig.\n")
	}

	b.WriteString("\n")
	danish.Fprintf(&b, "Kostpris: %.2f kr.\n", s.CostPrice)
	danish.Fprintf(&b, "Salgspris ekskl. moms: %.2f kr.\n", s.SalePriceExVAT)
	danish.Fprintf(&b, "Samlet beløb inkl. moms: %.2f kr.\n", s.FinalAmount)
	danish.Fprintf(&b, "DB: %.0f %%, DB/time: %.2f kr.\n", s.DBPercent, s.DBPerHour)
	fmt.Fprintf(&b, "Risiko: %s\n", s.RiskLevel)

	if len(r.AllOBSPoints) > 0 {
		b.WriteString("\nOBS-punkter:\n")
		for _, p := range r.AllOBSPoints {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	if len(r.AllWarnings) > 0 {
		b.WriteString("\nAdvarsler:\n")
		for _, w := range r.AllWarnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}

package electrical

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Estimate sizes the full installation for the project: loads, circuits,
// panel, and compliance evaluation.
func Estimate(input model.ProjectEstimationInput) (*model.ElectricalEstimate, error) {
	loads, hasRCD := SynthesizeLoads(input.Rooms)
	if len(loads) == 0 {
		return nil, eris.New("electrical: no sizable loads in input")
	}

	panel := BuildPanel(loads, input.SupplyPhase, hasRCD)
	issues := EvaluateCompliance(&panel)

	est := &model.ElectricalEstimate{
		Loads:     loads,
		Panel:     panel,
		Issues:    issues,
		Compliant: true,
	}
	for _, issue := range issues {
		if issue.Severity == model.SeverityError {
			est.Compliant = false
			break
		}
	}

	zap.L().Debug("electrical: installation sized",
		zap.Int("circuits", len(panel.Circuits)),
		zap.Int("total_load_watts", panel.TotalLoadWatts),
		zap.Int("issues", len(issues)),
		zap.Bool("compliant", est.Compliant),
	)
	return est, nil
}

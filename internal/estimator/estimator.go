// Package estimator is the orchestrator: the single entry point that
// sequences catalog load, component expansion, electrical sizing, pricing,
// and risk analysis into one immutable estimation result.
package estimator

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/catalog"
	"github.com/voltgruppen/kalk-cli/internal/electrical"
	"github.com/voltgruppen/kalk-cli/internal/expand"
	"github.com/voltgruppen/kalk-cli/internal/model"
	"github.com/voltgruppen/kalk-cli/internal/pricing"
	"github.com/voltgruppen/kalk-cli/internal/risk"
)

// ElectricalFunc sizes the installation. Injectable so the stage's failure
// isolation can be exercised in tests.
type ElectricalFunc func(model.ProjectEstimationInput) (*model.ElectricalEstimate, error)

// Saver persists a finished result as a versioned snapshot. Persistence is
// best-effort; the estimate never depends on it.
type Saver interface {
	SaveEstimate(ctx context.Context, projectID string, result *model.ProjectEstimationResult) (*model.EstimateSnapshot, error)
}

// Estimator runs estimations against one catalog provider.
type Estimator struct {
	provider   catalog.Provider
	electrical ElectricalFunc
	saver      Saver
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithElectrical replaces the electrical sizing stage.
func WithElectrical(fn ElectricalFunc) Option {
	return func(e *Estimator) { e.electrical = fn }
}

// WithSaver enables snapshot persistence after each successful run.
func WithSaver(s Saver) Option {
	return func(e *Estimator) { e.saver = s }
}

// New creates an Estimator over the given catalog provider.
func New(provider catalog.Provider, opts ...Option) *Estimator {
	e := &Estimator{
		provider:   provider,
		electrical: electrical.Estimate,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate runs one estimation and wraps the outcome in the structured
// response envelope: fatal errors become a message, never a raw error type.
func (e *Estimator) Estimate(ctx context.Context, input model.ProjectEstimationInput) model.EstimationResponse {
	result, err := e.Run(ctx, input)
	if err != nil {
		zap.L().Warn("estimator: run failed", zap.String("project", input.Name), zap.Error(err))
		return model.EstimationResponse{Success: false, Error: err.Error()}
	}
	return model.EstimationResponse{Success: true, Result: result}
}

// Run executes the full pipeline: validate, load catalog, expand rooms,
// optional electrical sizing, price, analyze risk, assemble. A fresh catalog
// snapshot is loaded per call; concurrent runs share nothing.
func (e *Estimator) Run(ctx context.Context, input model.ProjectEstimationInput) (*model.ProjectEstimationResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	snap, err := e.provider.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "estimator: load catalog")
	}

	tier := snap.Tier(e.resolveTierCode(ctx, input.CustomerID))

	hourlyRate := snap.Factors.HourlyRate
	if input.Pricing != nil && input.Pricing.HourlyRate != nil {
		hourlyRate = *input.Pricing.HourlyRate
	}

	profile := snap.ActiveProfile(input.BuildingProfile)
	if profile == nil && input.IsRenovation {
		profile = snap.ActiveProfile(catalog.ProfileRenovation)
	}

	engine := expand.New(snap)
	estimate := model.ProjectEstimate{Name: input.Name}
	for _, room := range input.Rooms {
		breakdown := engine.ExpandRoom(expand.RoomInput{
			Room:       room,
			Profile:    profile,
			HourlyRate: hourlyRate,
		})
		estimate.Rooms = append(estimate.Rooms, breakdown)
		estimate.TimeSeconds += breakdown.TimeSeconds
		estimate.LaborHours += breakdown.LaborHours
		estimate.LaborCost += breakdown.LaborCost
		estimate.MaterialCost += breakdown.MaterialCost
		estimate.MaterialSale += breakdown.MaterialSale
	}

	elec := e.runElectrical(input)

	analysis := pricing.Analyze(pricing.Inputs{
		Rooms:     estimate.Rooms,
		Snapshot:  snap,
		Tier:      tier,
		Overrides: input.Pricing,
		Profile:   profile,
	})

	var issues []model.ComplianceIssue
	if elec != nil {
		issues = elec.Issues
	}
	riskView := risk.Analyze(analysis, issues)

	result := &model.ProjectEstimationResult{
		Estimate:       estimate,
		Electrical:     elec,
		MarginAnalysis: analysis,
		Risk:           riskView,
		CustomerTier:   tier.Code,
		AllOBSPoints:   riskView.OBSPoints,
		AllWarnings:    riskView.Warnings,
	}
	result.Summary = summarize(input, result, snap.Factors)

	e.persist(ctx, input, result)
	return result, nil
}

// resolveTierCode looks up the customer's pricing tier; anonymous or failed
// lookups price at the standard tier.
func (e *Estimator) resolveTierCode(ctx context.Context, customerID string) string {
	if customerID == "" {
		return catalog.TierStandard
	}
	code, err := e.provider.CustomerTier(ctx, customerID)
	if err != nil {
		zap.L().Warn("estimator: customer tier lookup failed, using standard",
			zap.String("customer_id", customerID), zap.Error(err))
		return catalog.TierStandard
	}
	return code
}

// runElectrical isolates the sizing stage: any error or panic yields a nil
// section, never a failed estimate.
func (e *Estimator) runElectrical(input model.ProjectEstimationInput) (est *model.ElectricalEstimate) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("estimator: electrical stage panicked, continuing without it",
				zap.Any("panic", r))
			est = nil
		}
	}()

	est, err := e.electrical(input)
	if err != nil {
		zap.L().Debug("estimator: electrical stage unavailable", zap.Error(err))
		return nil
	}
	return est
}

// persist writes the versioned snapshot when a saver is configured. Failures
// are logged, not returned: the estimate does not depend on persistence.
func (e *Estimator) persist(ctx context.Context, input model.ProjectEstimationInput, result *model.ProjectEstimationResult) {
	if e.saver == nil {
		return
	}
	snap, err := e.saver.SaveEstimate(ctx, input.Name, result)
	if err != nil {
		zap.L().Warn("estimator: snapshot persistence failed", zap.String("project", input.Name), zap.Error(err))
		return
	}
	zap.L().Info("estimator: snapshot saved",
		zap.String("project", input.Name),
		zap.Int("version", snap.Version),
	)
}

// summarize flattens the result into the human-facing summary object.
func summarize(input model.ProjectEstimationInput, r *model.ProjectEstimationResult, factors model.GlobalFactors) model.EstimateSummary {
	s := model.EstimateSummary{
		RoomCount:       len(input.Rooms),
		TotalLaborHours: r.Estimate.LaborHours,
		MaterialCost:    r.Estimate.MaterialCost,
		CostPrice:       r.MarginAnalysis.TotalCost,
		SalePriceExVAT:  r.MarginAnalysis.TotalSale,
		FinalAmount:     r.MarginAnalysis.TotalSale * (1 + factors.VATPercent/100),
		DBPercent:       r.MarginAnalysis.DBPercent,
		DBPerHour:       r.MarginAnalysis.DBPerHour,
		RiskLevel:       string(r.Risk.Level),
	}
	for _, room := range input.Rooms {
		for _, count := range room.Points {
			if count > 0 {
				s.PointCount += count
			}
		}
	}
	if r.Electrical != nil {
		s.CableMeters = r.Electrical.Panel.TotalCableMeter
		s.CircuitCount = len(r.Electrical.Panel.Circuits)
		s.Compliant = r.Electrical.Compliant
	}
	return s
}

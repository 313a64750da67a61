package estimator

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/catalog"
	"github.com/voltgruppen/kalk-cli/internal/model"
	"github.com/voltgruppen/kalk-cli/internal/pricing"
)

func fptr(f float64) *float64 { return &f }

func testProvider() *catalog.StaticProvider {
	return &catalog.StaticProvider{Snapshot: catalog.DefaultSnapshot()}
}

func bathroomInput() model.ProjectEstimationInput {
	return model.ProjectEstimationInput{
		Name: "Badeværelse, Humlebæk",
		Rooms: []model.RoomEstimationInput{
			{
				Name:             "Badeværelse",
				RoomType:         "BATHROOM",
				AreaM2:           6,
				InstallationType: "GIPS",
				Points:           map[string]int{"outlet": 3, "ceiling_light": 2},
			},
		},
		Pricing: &model.PricingOverrides{
			HourlyRate:       fptr(495),
			MarginPercentage: fptr(15),
		},
	}
}

func TestRunBathroomScenario(t *testing.T) {
	t.Parallel()

	result, err := New(testProvider()).Run(context.Background(), bathroomInput())
	require.NoError(t, err)

	// A wet room without an RCD component is not compliant.
	require.NotNil(t, result.Electrical)
	assert.False(t, result.Electrical.Compliant)
	assert.False(t, result.Summary.Compliant)
	assert.Equal(t, model.RiskHigh, result.Risk.Level)
	assert.NotEmpty(t, result.AllOBSPoints)

	assert.Greater(t, result.Summary.TotalLaborHours, 0.0)
	assert.Equal(t, 1, result.Summary.RoomCount)
	assert.Equal(t, 5, result.Summary.PointCount)
	assert.Greater(t, result.Summary.CircuitCount, 0)

	wantDB := pricing.DBPercent(result.MarginAnalysis.TotalSale, result.MarginAnalysis.TotalCost)
	assert.InDelta(t, wantDB, result.Summary.DBPercent, 0.0001)
	assert.Greater(t, result.Summary.FinalAmount, result.Summary.SalePriceExVAT)
	assert.Equal(t, catalog.TierStandard, result.CustomerTier)
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()

	est := New(testProvider())
	first, err := est.Run(context.Background(), bathroomInput())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := est.Run(context.Background(), bathroomInput())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRunElectricalStageIsolation(t *testing.T) {
	t.Parallel()

	boom := func(model.ProjectEstimationInput) (*model.ElectricalEstimate, error) {
		panic("forced failure")
	}
	result, err := New(testProvider(), WithElectrical(boom)).Run(context.Background(), bathroomInput())
	require.NoError(t, err)

	assert.Nil(t, result.Electrical)
	assert.False(t, result.Summary.Compliant)
	assert.Zero(t, result.Summary.CircuitCount)
	// Everything else is still populated.
	assert.NotEmpty(t, result.Estimate.Rooms)
	assert.NotEmpty(t, result.MarginAnalysis.Items)
	assert.Greater(t, result.Summary.SalePriceExVAT, 0.0)
}

func TestRunElectricalErrorIsNonFatal(t *testing.T) {
	t.Parallel()

	failing := func(model.ProjectEstimationInput) (*model.ElectricalEstimate, error) {
		return nil, eris.New("no sizable loads")
	}
	result, err := New(testProvider(), WithElectrical(failing)).Run(context.Background(), bathroomInput())
	require.NoError(t, err)
	assert.Nil(t, result.Electrical)
}

func TestEstimateEnvelope(t *testing.T) {
	t.Parallel()

	est := New(testProvider())

	ok := est.Estimate(context.Background(), bathroomInput())
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Error)
	require.NotNil(t, ok.Result)

	bad := est.Estimate(context.Background(), model.ProjectEstimationInput{Name: "tom"})
	assert.False(t, bad.Success)
	assert.NotEmpty(t, bad.Error)
	assert.Nil(t, bad.Result)
}

func TestRunRejectsMalformedCustomerID(t *testing.T) {
	t.Parallel()

	in := bathroomInput()
	in.CustomerID = "not-a-uuid"
	_, err := New(testProvider()).Run(context.Background(), in)
	require.Error(t, err)
}

func TestRunCustomerTierAffectsPricing(t *testing.T) {
	t.Parallel()

	const customerID = "6f1a7b9e-6c52-4f56-9df0-2b2a7f9a3d11"
	provider := testProvider()
	provider.Customers = map[string]string{customerID: "partner"}

	in := bathroomInput()
	in.CustomerID = customerID

	standard, err := New(testProvider()).Run(context.Background(), bathroomInput())
	require.NoError(t, err)
	partner, err := New(provider).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "partner", partner.CustomerTier)
	assert.Less(t, partner.MarginAnalysis.TotalSale, standard.MarginAnalysis.TotalSale)
}

type recordingSaver struct {
	saved  []string
	err    error
	called int
}

func (s *recordingSaver) SaveEstimate(ctx context.Context, projectID string, result *model.ProjectEstimationResult) (*model.EstimateSnapshot, error) {
	s.called++
	if s.err != nil {
		return nil, s.err
	}
	s.saved = append(s.saved, projectID)
	return &model.EstimateSnapshot{ProjectID: projectID, Version: s.called, Result: result}, nil
}

func TestRunPersistsSnapshot(t *testing.T) {
	t.Parallel()

	saver := &recordingSaver{}
	_, err := New(testProvider(), WithSaver(saver)).Run(context.Background(), bathroomInput())
	require.NoError(t, err)
	assert.Equal(t, []string{"Badeværelse, Humlebæk"}, saver.saved)
}

func TestRunPersistenceFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	saver := &recordingSaver{err: eris.New("disk full")}
	result, err := New(testProvider(), WithSaver(saver)).Run(context.Background(), bathroomInput())
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 1, saver.called)
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	result, err := New(testProvider()).Run(context.Background(), bathroomInput())
	require.NoError(t, err)

	text := FormatSummary(result)
	assert.Contains(t, text, "Projekt: Badeværelse, Humlebæk")
	assert.Contains(t, text, "OBS: installationen overholder IKKE")
	assert.Contains(t, text, "Salgspris ekskl. moms")
	assert.Contains(t, text, "Risiko: high")
}

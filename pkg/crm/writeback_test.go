package crm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

type fakeClient struct {
	lastObject string
	lastID     string
	lastFields map[string]any
	err        error
}

func (f *fakeClient) Query(ctx context.Context, soql string, out any) error { return f.err }

func (f *fakeClient) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	return "new-id", f.err
}

func (f *fakeClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	f.lastObject = sObjectName
	f.lastID = id
	f.lastFields = fields
	return f.err
}

func sampleResult() *model.ProjectEstimationResult {
	return &model.ProjectEstimationResult{
		CustomerTier: "partner",
		AllOBSPoints: []string{"installationen overholder ikke gældende regler"},
		Summary: model.EstimateSummary{
			TotalLaborHours: 16,
			CostPrice:       21000,
			SalePriceExVAT:  28000,
			FinalAmount:     35000,
			DBPercent:       25,
			RiskLevel:       "high",
			Compliant:       false,
		},
	}
}

func TestWriteBackEstimate(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{}
	err := WriteBackEstimate(context.Background(), fake, "006xx0000012345", sampleResult())
	require.NoError(t, err)

	assert.Equal(t, "Opportunity", fake.lastObject)
	assert.Equal(t, "006xx0000012345", fake.lastID)
	assert.InDelta(t, 35000, fake.lastFields[fieldAmount], 0.001)
	assert.InDelta(t, 25, fake.lastFields[fieldDBPercent], 0.001)
	assert.Equal(t, "high", fake.lastFields[fieldRiskLevel])
	assert.Equal(t, false, fake.lastFields[fieldCompliant])
	assert.Equal(t, "partner", fake.lastFields[fieldCustomerTier])
	assert.Contains(t, fake.lastFields[fieldEstimateNotes], "overholder ikke")
}

func TestWriteBackEstimateRequiresID(t *testing.T) {
	t.Parallel()

	err := WriteBackEstimate(context.Background(), &fakeClient{}, "", sampleResult())
	require.Error(t, err)
}

func TestEstimateFieldsNilResult(t *testing.T) {
	t.Parallel()

	_, err := EstimateFields(nil)
	require.Error(t, err)
}

func TestEstimateFieldsOmitsEmptyNotes(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	result.AllOBSPoints = nil
	fields, err := EstimateFields(result)
	require.NoError(t, err)
	_, ok := fields[fieldEstimateNotes]
	assert.False(t, ok)
}

func TestJoinOBSTruncates(t *testing.T) {
	t.Parallel()

	long := make([]string, 0, 20)
	for range 20 {
		long = append(long, "et meget langt OBS-punkt med mange detaljer om installationen")
	}
	out := joinOBS(long)
	assert.LessOrEqual(t, len(out), 255)
	assert.Contains(t, out, "• ")
}

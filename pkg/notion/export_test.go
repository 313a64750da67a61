package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

type fakeClient struct {
	lastCreate *notionapi.PageCreateRequest
	page       *notionapi.Page
	err        error
}

func (f *fakeClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	f.lastCreate = req
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{}, nil
}

func TestExportEstimate(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{page: &notionapi.Page{ID: "page-1"}}
	exp := NewExporter(fake, "db-1")

	result := &model.ProjectEstimationResult{
		Estimate:     model.ProjectEstimate{Name: "Villa Solbakken"},
		CustomerTier: "loyal",
		Summary: model.EstimateSummary{
			TotalLaborHours: 12.5,
			CostPrice:       18000,
			SalePriceExVAT:  24500,
			DBPercent:       27,
			RiskLevel:       "low",
			Compliant:       true,
		},
	}

	id, err := exp.ExportEstimate(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)

	require.NotNil(t, fake.lastCreate)
	assert.Equal(t, notionapi.DatabaseID("db-1"), fake.lastCreate.Parent.DatabaseID)

	title, ok := fake.lastCreate.Properties["Navn"].(notionapi.TitleProperty)
	require.True(t, ok)
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Villa Solbakken", title.Title[0].Text.Content)

	sale, ok := fake.lastCreate.Properties["Salgspris"].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.InDelta(t, 24500, sale.Number, 0.001)
}

func TestExportEstimateNilResult(t *testing.T) {
	t.Parallel()

	exp := NewExporter(&fakeClient{}, "db-1")
	_, err := exp.ExportEstimate(context.Background(), nil)
	require.Error(t, err)
}

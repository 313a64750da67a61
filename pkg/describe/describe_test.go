package describe

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

type fakeClient struct {
	lastReq MessageRequest
	resp    *MessageResponse
	err     error
}

func (f *fakeClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func sampleResult() *model.ProjectEstimationResult {
	return &model.ProjectEstimationResult{
		Estimate: model.ProjectEstimate{
			Name: "Villa Solbakken",
			Rooms: []model.RoomBreakdown{
				{RoomName: "BADEVÆRELSE", ComponentCount: 5},
				{RoomName: "KØKKEN", ComponentCount: 8},
			},
		},
		AllWarnings: []string{"elbillader på enfaset forsyning"},
		Summary: model.EstimateSummary{
			TotalLaborHours: 14.5,
			FinalAmount:     43750,
			Compliant:       false,
		},
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{resp: &MessageResponse{
		Model: DefaultModel,
		Text:  "Tilbud på el-arbejde i Villa Solbakken...",
	}}
	d := New(fake)

	text, err := d.Describe(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Contains(t, text, "Villa Solbakken")

	assert.Equal(t, DefaultModel, fake.lastReq.Model)
	require.Len(t, fake.lastReq.Messages, 1)
	prompt := fake.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "BADEVÆRELSE")
	assert.Contains(t, prompt, "43750")
	assert.Contains(t, prompt, "elbillader på enfaset forsyning")
	assert.Contains(t, prompt, "overholde gældende regler")
}

func TestDescribeWithModel(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{resp: &MessageResponse{Text: "ok"}}
	d := New(fake, WithModel("claude-sonnet-4-5-20250929"))

	_, err := d.Describe(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5-20250929", fake.lastReq.Model)
}

func TestDescribeNilResult(t *testing.T) {
	t.Parallel()

	d := New(&fakeClient{})
	_, err := d.Describe(context.Background(), nil)
	require.Error(t, err)
}

func TestDescribeEmptyResponse(t *testing.T) {
	t.Parallel()

	d := New(&fakeClient{resp: &MessageResponse{Text: "  \n"}})
	_, err := d.Describe(context.Background(), sampleResult())
	require.Error(t, err)
}

func TestDescribeClientError(t *testing.T) {
	t.Parallel()

	d := New(&fakeClient{err: eris.New("api down")})
	_, err := d.Describe(context.Background(), sampleResult())
	require.Error(t, err)
}

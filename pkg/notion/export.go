package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Exporter writes estimate summaries into one Notion database.
type Exporter struct {
	client     Client
	databaseID string
}

// NewExporter creates an Exporter against the given database.
func NewExporter(client Client, databaseID string) *Exporter {
	return &Exporter{client: client, databaseID: databaseID}
}

// ExportEstimate creates one page per estimation run. The database carries
// the flattened summary; the full result stays in the snapshot store.
func (e *Exporter) ExportEstimate(ctx context.Context, result *model.ProjectEstimationResult) (string, error) {
	if result == nil {
		return "", eris.New("notion: nil result")
	}
	s := result.Summary

	props := notionapi.Properties{
		"Navn": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: result.Estimate.Name}}},
		},
		"Kundesegment": notionapi.SelectProperty{
			Select: notionapi.Option{Name: result.CustomerTier},
		},
		"Arbejdstimer": notionapi.NumberProperty{Number: s.TotalLaborHours},
		"Kostpris":     notionapi.NumberProperty{Number: s.CostPrice},
		"Salgspris":    notionapi.NumberProperty{Number: s.SalePriceExVAT},
		"DB %":         notionapi.NumberProperty{Number: s.DBPercent},
		"Risiko": notionapi.SelectProperty{
			Select: notionapi.Option{Name: s.RiskLevel},
		},
		"Regelkonform": notionapi.CheckboxProperty{Checkbox: s.Compliant},
	}

	page, err := e.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(e.databaseID),
		},
		Properties: props,
	})
	if err != nil {
		return "", err
	}
	return string(page.ID), nil
}

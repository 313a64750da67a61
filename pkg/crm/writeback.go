package crm

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Custom field API names on the Opportunity object. The org carries a small
// managed package with these fields; Amount is standard.
const (
	fieldAmount        = "Amount"
	fieldCostPrice     = "Kalk_Kostpris__c"
	fieldDBPercent     = "Kalk_DB_Procent__c"
	fieldLaborHours    = "Kalk_Arbejdstimer__c"
	fieldRiskLevel     = "Kalk_Risiko__c"
	fieldCompliant     = "Kalk_Regelkonform__c"
	fieldCustomerTier  = "Kalk_Kundesegment__c"
	fieldEstimateNotes = "Kalk_OBS_Punkter__c"
)

// UpdateOpportunity updates an Opportunity record with the given fields.
func UpdateOpportunity(ctx context.Context, c Client, opportunityID string, fields map[string]any) error {
	if opportunityID == "" {
		return eris.New("crm: opportunity id is required")
	}
	if len(fields) == 0 {
		return eris.New("crm: no fields to update")
	}
	if err := c.UpdateOne(ctx, "Opportunity", opportunityID, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("crm: update opportunity %s", opportunityID))
	}
	return nil
}

// EstimateFields maps an estimation result to Opportunity field values.
// The Amount carries the offer price including VAT, matching what the
// customer is quoted.
func EstimateFields(result *model.ProjectEstimationResult) (map[string]any, error) {
	if result == nil {
		return nil, eris.New("crm: nil result")
	}
	s := result.Summary

	fields := map[string]any{
		fieldAmount:       s.FinalAmount,
		fieldCostPrice:    s.CostPrice,
		fieldDBPercent:    s.DBPercent,
		fieldLaborHours:   s.TotalLaborHours,
		fieldRiskLevel:    s.RiskLevel,
		fieldCompliant:    s.Compliant,
		fieldCustomerTier: result.CustomerTier,
	}
	if notes := joinOBS(result.AllOBSPoints); notes != "" {
		fields[fieldEstimateNotes] = notes
	}
	return fields, nil
}

// WriteBackEstimate pushes an estimation result onto the given Opportunity.
func WriteBackEstimate(ctx context.Context, c Client, opportunityID string, result *model.ProjectEstimationResult) error {
	fields, err := EstimateFields(result)
	if err != nil {
		return err
	}
	return UpdateOpportunity(ctx, c, opportunityID, fields)
}

// joinOBS renders OBS points as one bullet per line, truncated to the
// 255-character limit of the text field.
func joinOBS(points []string) string {
	out := ""
	for _, p := range points {
		line := "• " + p
		if out != "" {
			line = "\n" + line
		}
		if len(out)+len(line) > 255 {
			break
		}
		out += line
	}
	return out
}

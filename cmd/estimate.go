package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/estimator"
	"github.com/voltgruppen/kalk-cli/internal/model"
	"github.com/voltgruppen/kalk-cli/pkg/crm"
	"github.com/voltgruppen/kalk-cli/pkg/notion"
)

var (
	estimateInput       string
	estimateJSON        bool
	estimateNoSave      bool
	estimateNotion      bool
	estimateOpportunity string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Calculate a project estimate from a JSON input file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input, err := readInput(estimateInput)
		if err != nil {
			return err
		}
		// Operator-level default; inputs carrying their own pricing win.
		if input.Pricing == nil && cfg.Pricing.HourlyRate > 0 {
			rate := cfg.Pricing.HourlyRate
			input.Pricing = &model.PricingOverrides{HourlyRate: &rate}
		}

		provider, closeCatalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeCatalog()

		var opts []estimator.Option
		if !estimateNoSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			opts = append(opts, estimator.WithSaver(st))
		}

		est := estimator.New(provider, opts...)
		result, err := est.Run(ctx, *input)
		if err != nil {
			return err
		}

		if estimateNotion {
			if cfg.Notion.Token == "" || cfg.Notion.EstimateDB == "" {
				return eris.New("notion token and estimate DB are required (KALK_NOTION_TOKEN, KALK_NOTION_ESTIMATE_DB)")
			}
			exporter := notion.NewExporter(notion.NewClient(cfg.Notion.Token), cfg.Notion.EstimateDB)
			pageID, err := exporter.ExportEstimate(ctx, result)
			if err != nil {
				return eris.Wrap(err, "export to notion")
			}
			zap.L().Info("estimate exported to notion", zap.String("page_id", pageID))
		}

		if estimateOpportunity != "" {
			sfClient, err := initSalesforce()
			if err != nil {
				return err
			}
			if err := crm.WriteBackEstimate(ctx, sfClient, estimateOpportunity, result); err != nil {
				return err
			}
			zap.L().Info("estimate written to salesforce",
				zap.String("opportunity_id", estimateOpportunity))
		}

		if estimateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Println(estimator.FormatSummary(result))
		return nil
	},
}

// readInput decodes a ProjectEstimationInput from the given file, or stdin
// when path is "-".
func readInput(path string) (*model.ProjectEstimationInput, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open input %s", path)
		}
		defer f.Close()
		r = f
	}

	var input model.ProjectEstimationInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return nil, eris.Wrap(err, "decode input")
	}
	return &input, nil
}

func init() {
	estimateCmd.Flags().StringVar(&estimateInput, "input", "-", "input JSON file, or - for stdin")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "print the full result as JSON")
	estimateCmd.Flags().BoolVar(&estimateNoSave, "no-save", false, "skip writing a snapshot")
	estimateCmd.Flags().BoolVar(&estimateNotion, "notion", false, "export the summary to the Notion estimate database")
	estimateCmd.Flags().StringVar(&estimateOpportunity, "opportunity", "", "Salesforce opportunity ID to write the estimate back to")
	rootCmd.AddCommand(estimateCmd)
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/voltgruppen/kalk-cli/pkg/describe"
)

var describeCmd = &cobra.Command{
	Use:   "describe <project>",
	Short: "Write an offer text for the latest estimate of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Anthropic.Key == "" {
			return eris.New("anthropic API key is required (KALK_ANTHROPIC_KEY)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snap, err := st.Latest(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "latest snapshot for %s", args[0])
		}

		d := describe.New(
			describe.NewClient(cfg.Anthropic.Key),
			describe.WithModel(cfg.Anthropic.Model),
		)
		text, err := d.Describe(ctx, snap.Result)
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

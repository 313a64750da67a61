package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var snapshotsJSON bool

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots <project>",
	Short: "List stored estimate versions for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.Snapshots(ctx, args[0])
		if err != nil {
			return err
		}

		if snapshotsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snaps)
		}

		if len(snaps) == 0 {
			fmt.Println("Ingen gemte overslag.")
			return nil
		}
		for _, s := range snaps {
			fmt.Printf("v%-3d %s  %s  %.2f kr. inkl. moms  risiko: %s\n",
				s.Version,
				s.CreatedAt.Format("2006-01-02 15:04"),
				s.ID,
				s.Result.Summary.FinalAmount,
				s.Result.Summary.RiskLevel,
			)
		}
		return nil
	},
}

func init() {
	snapshotsCmd.Flags().BoolVar(&snapshotsJSON, "json", false, "print snapshots as JSON")
	rootCmd.AddCommand(snapshotsCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show accuracy and outstanding mistakes per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := buildDeps(ctx, false)
		if err != nil {
			return err
		}
		defer d.Close()

		sums, err := d.ledger.Summary(ctx, appCfg.User)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sums) == 0 {
			fmt.Fprintln(out, "No tests taken yet.")
			return nil
		}

		fmt.Fprintf(out, "%-18s  %-8s  %8s  %8s  %8s\n", "Subject", "Level", "Correct", "Accuracy", "To revise")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, s := range sums {
			for _, ds := range s.ByDifficulty {
				fmt.Fprintf(out, "%-18s  %-8s  %4d/%-3d  %7.0f%%  %8d\n",
					s.Subject.DisplayName(), ds.Difficulty, ds.Correct, ds.Total, ds.Accuracy*100, ds.Outstanding)
			}
			fmt.Fprintf(out, "%-18s  %-8s  %4d/%-3d  %7.0f%%  %8d\n",
				"", "all", s.Correct, s.Total, s.Accuracy*100, s.Outstanding)
			fmt.Fprintln(out)
		}

		credits, err := d.rewards.Balance(ctx, appCfg.User)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Credits: %d\n", credits)
		return nil
	},
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the learners with the most credits",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		d, err := buildDeps(ctx, false)
		if err != nil {
			return err
		}
		defer d.Close()

		entries, err := d.rewards.Top(ctx, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No credits awarded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-24s  %8s\n", "Rank", "Learner", "Credits")
		fmt.Fprintln(out, strings.Repeat("─", 41))
		for _, e := range entries {
			marker := ""
			if e.UserID == appCfg.User {
				marker = " *"
			}
			fmt.Fprintf(out, "%-5d  %-24s  %8d%s\n", e.Rank, truncate(e.UserID, 24), e.Credits, marker)
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntP("limit", "n", 10, "Number of learners to show")
}

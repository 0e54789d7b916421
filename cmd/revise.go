package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/practice"
)

var reviseCmd = &cobra.Command{
	Use:   "revise",
	Short: "Retake questions you got wrong",
	RunE: func(cmd *cobra.Command, args []string) error {
		subjectFlag, _ := cmd.Flags().GetString("subject")
		count, _ := cmd.Flags().GetInt("count")

		subject, err := learning.ParseSubject(subjectFlag)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		d, err := buildDeps(ctx, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		sess, err := d.practice.StartRevision(ctx, appCfg.User, subject, count)
		if errors.Is(err, practice.ErrNothingToRevise) {
			fmt.Fprintf(out, "Nothing to revise in %s. Take a test first.\n", subject.DisplayName())
			return nil
		}
		if err != nil {
			return err
		}

		rep, err := runQuiz(ctx, d.practice, appCfg.User, sess, cmd.InOrStdin(), out)
		if rep != nil {
			printReport(out, rep)
		}
		return err
	},
}

func init() {
	reviseCmd.Flags().StringP("subject", "s", "mathematics", "Subject to revise")
	reviseCmd.Flags().IntP("count", "n", 0, "Maximum number of questions (default from config)")
}

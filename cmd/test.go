package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/learning"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Take a freshly generated test",
	RunE: func(cmd *cobra.Command, args []string) error {
		subjectFlag, _ := cmd.Flags().GetString("subject")
		difficultyFlag, _ := cmd.Flags().GetString("difficulty")
		count, _ := cmd.Flags().GetInt("count")

		subject, err := learning.ParseSubject(subjectFlag)
		if err != nil {
			return err
		}
		difficulty, err := learning.ParseDifficulty(difficultyFlag)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		d, err := buildDeps(ctx, true)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Generating %s %s questions...\n", difficulty, subject.DisplayName())
		sess, err := d.practice.StartTest(ctx, appCfg.User, subject, difficulty, count)
		if err != nil {
			return fmt.Errorf("could not build a test: %w", err)
		}

		rep, err := runQuiz(ctx, d.practice, appCfg.User, sess, cmd.InOrStdin(), out)
		if rep != nil {
			printReport(out, rep)
		}
		return err
	},
}

func init() {
	testCmd.Flags().StringP("subject", "s", "mathematics", "Subject to test")
	testCmd.Flags().StringP("difficulty", "d", "medium", "Difficulty: easy, medium or hard")
	testCmd.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
}

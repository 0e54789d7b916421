package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/practice"
	"github.com/abhisek/studyloop/internal/session"
)

// runQuiz asks every question of sess on out, reading answers line by line
// from in, then finishes the session. EOF or the deadline ends it early.
func runQuiz(ctx context.Context, svc *practice.Service, userID string, sess *session.Session, in io.Reader, out io.Writer) (*practice.Report, error) {
	sc := bufio.NewScanner(in)
	total := len(sess.Questions)

	for !svc.Expire(sess) {
		q, ok := sess.Current()
		if !ok {
			break
		}
		fmt.Fprintf(out, "\n[%d/%d] %s\n", sess.Cursor()+1, total, q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %c) %s\n", 'A'+i, opt)
		}
		if ref := q.ReferenceAnswer(); ref != "" && q.Origin.Kind == learning.OriginRevision {
			fmt.Fprintf(out, "  Reference: %s\n", ref)
		}
		if left := sess.Remaining(time.Now()); left > 0 {
			fmt.Fprintf(out, "  (%s left)\n", left.Round(time.Second))
		}
		fmt.Fprint(out, "> ")

		if !sc.Scan() {
			sess.Terminate()
			break
		}
		if err := sess.SubmitAnswer(q.ID, choice(sc.Text(), q)); err != nil {
			return nil, err
		}
		if err := sess.Advance(); err != nil {
			return nil, err
		}
	}
	if sess.Terminated() {
		fmt.Fprintln(out, "\nSession ended.")
	}

	return svc.Finish(ctx, userID, sess)
}

// choice maps an option letter or number onto the option text. Anything
// else is taken as a literal answer.
func choice(input string, q learning.Question) string {
	s := strings.TrimSpace(input)
	if !q.HasOptions() || s == "" {
		return s
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1]
	}
	if len(s) == 1 {
		idx := int(strings.ToUpper(s)[0]) - 'A'
		if idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	}
	return s
}

func printReport(out io.Writer, rep *practice.Report) {
	sep := strings.Repeat("─", 60)
	fmt.Fprintln(out)
	fmt.Fprintln(out, sep)
	for i, r := range rep.Results {
		mark := "✓"
		if !r.Correct {
			mark = "✗"
		}
		fmt.Fprintf(out, "%s %d. %s\n", mark, i+1, r.Question.Text)
		if !r.Correct {
			answer := r.Answer
			if !r.Answered {
				answer = "(no answer)"
			}
			fmt.Fprintf(out, "     your answer: %s\n", answer)
			fmt.Fprintf(out, "     correct:     %s\n", r.Question.CorrectAnswer)
			if r.Question.Explanation != "" {
				fmt.Fprintf(out, "     %s\n", r.Question.Explanation)
			}
		}
	}
	fmt.Fprintln(out, sep)

	sum := rep.Summary
	fmt.Fprintf(out, "Score: %d/%d (%.0f%%)  Points: %d/%d\n",
		sum.Correct, sum.Total, sum.Accuracy*100, sum.PointsEarned, sum.PointsPossible)
	if rep.Recorded > 0 {
		fmt.Fprintf(out, "%d questions added to your revision list.\n", rep.Recorded)
	}
	if rep.Cleared > 0 {
		fmt.Fprintf(out, "%d mistakes cleared from your revision list.\n", rep.Cleared)
	}
	for _, a := range rep.Awards {
		fmt.Fprintf(out, "  %s\n", a)
	}
	if rep.Credits > 0 {
		fmt.Fprintf(out, "Credits earned: %d\n", rep.Credits)
	}
}

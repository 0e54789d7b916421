package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studyloop/internal/learning"
)

// DifficultySummary is the progress of one record.
type DifficultySummary struct {
	Difficulty  learning.Difficulty
	Correct     int
	Total       int
	Accuracy    float64
	Outstanding int // mistakes still in the pool
	LastUpdated time.Time
}

// SubjectSummary rolls up every difficulty of a subject.
type SubjectSummary struct {
	Subject      learning.Subject
	Correct      int
	Total        int
	Accuracy     float64
	Outstanding  int
	ByDifficulty []DifficultySummary
}

// Summary reports a learner's progress per subject, in subject order, with
// difficulties from easy to hard. Subjects never tested are omitted.
func (l *Ledger) Summary(ctx context.Context, userID string) ([]SubjectSummary, error) {
	if userID == "" {
		return nil, &learning.InvalidInputError{Field: "user_id", Reason: "must not be empty"}
	}
	recs, err := l.repo.Query(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", userID, err)
	}

	byKey := make(map[learning.Subject]map[learning.Difficulty]learning.ProgressRecord)
	for _, r := range recs {
		if byKey[r.Key.Subject] == nil {
			byKey[r.Key.Subject] = make(map[learning.Difficulty]learning.ProgressRecord)
		}
		byKey[r.Key.Subject][r.Key.Difficulty] = r
	}

	var out []SubjectSummary
	for _, subj := range learning.AllSubjects() {
		diffs, ok := byKey[subj]
		if !ok {
			continue
		}
		s := SubjectSummary{Subject: subj}
		for _, d := range learning.AllDifficulties() {
			r, ok := diffs[d]
			if !ok {
				continue
			}
			s.ByDifficulty = append(s.ByDifficulty, DifficultySummary{
				Difficulty:  d,
				Correct:     r.CorrectAnswers,
				Total:       r.TotalQuestions,
				Accuracy:    r.Accuracy(),
				Outstanding: len(r.Mistakes),
				LastUpdated: r.LastUpdated,
			})
			s.Correct += r.CorrectAnswers
			s.Total += r.TotalQuestions
			s.Outstanding += len(r.Mistakes)
		}
		if s.Total > 0 {
			s.Accuracy = float64(s.Correct) / float64(s.Total)
		}
		out = append(out, s)
	}
	return out, nil
}

package session

import "github.com/abhisek/studyloop/internal/learning"

// Result is the grade of one question.
type Result struct {
	Question     learning.Question
	Answer       string
	Answered     bool
	Correct      bool
	PointsEarned int
}

// Summary holds the data displayed after a session.
type Summary struct {
	Correct        int
	Total          int
	PointsEarned   int
	PointsPossible int
	Accuracy       float64
}

// Perfect reports whether every question was answered correctly.
func (s Summary) Perfect() bool {
	return s.Total > 0 && s.Correct == s.Total
}

// Summarize totals graded results.
func Summarize(results []Result) Summary {
	var sum Summary
	for _, r := range results {
		sum.Total++
		sum.PointsPossible += r.Question.Points
		if r.Correct {
			sum.Correct++
			sum.PointsEarned += r.PointsEarned
		}
	}
	if sum.Total > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Total)
	}
	return sum
}

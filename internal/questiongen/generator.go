// Package questiongen turns question-source output into validated
// learning.Question values.
package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/studyloop/internal/learning"
)

// Generator produces test questions for a subject and difficulty.
type Generator interface {
	// Generate returns between 1 and input.Count validated questions, or a
	// *GenerationError. It never returns an empty list without an error.
	Generate(ctx context.Context, input GenerateInput) ([]learning.Question, error)
}

// GenerateInput describes the test to build.
type GenerateInput struct {
	Subject    learning.Subject
	Difficulty learning.Difficulty
	Count      int

	// Avoid holds question texts the learner has already seen. Generators
	// should not repeat them.
	Avoid []string
}

// Validate checks the input before any external call is made.
func (in GenerateInput) Validate() error {
	if _, err := learning.ParseSubject(string(in.Subject)); err != nil {
		return err
	}
	if _, err := learning.ParseDifficulty(string(in.Difficulty)); err != nil {
		return err
	}
	if in.Count <= 0 {
		return &learning.InvalidInputError{Field: "count", Reason: fmt.Sprintf("must be positive, got %d", in.Count)}
	}
	return nil
}

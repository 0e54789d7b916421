package questiongen

import (
	"fmt"

	"github.com/abhisek/studyloop/internal/learning"
)

const maxQuestionLen = 1000

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *learning.Question, _ GenerateInput) *ValidationError {
	switch {
	case q.Text == "":
		return &ValidationError{Validator: v.Name(), Message: "question text is empty"}
	case len(q.Text) > maxQuestionLen:
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("question text exceeds %d characters", maxQuestionLen)}
	case q.CorrectAnswer == "":
		return &ValidationError{Validator: v.Name(), Message: "correct answer is empty"}
	}
	return nil
}

// OptionsValidator checks multiple-choice questions: at least two distinct,
// non-empty options, one of which is the correct answer. Questions without
// options pass; they are asked as short answer.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(q *learning.Question, _ GenerateInput) *ValidationError {
	if !q.HasOptions() {
		return nil
	}
	if len(q.Options) < 2 {
		return &ValidationError{Validator: v.Name(), Message: "fewer than 2 options"}
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if o == "" {
			return &ValidationError{Validator: v.Name(), Message: "empty option"}
		}
		if seen[o] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", o)}
		}
		seen[o] = true
	}
	if !seen[q.CorrectAnswer] {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("correct answer %q is not one of the options", q.CorrectAnswer)}
	}
	return nil
}

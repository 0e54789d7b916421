package questiongen

import (
	"fmt"

	"github.com/abhisek/studyloop/internal/learning"
)

// Validator checks one parsed question. Implementations should be
// stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for logs, e.g. "structural".
	Name() string

	// Validate returns nil if q is usable.
	Validate(q *learning.Question, input GenerateInput) *ValidationError
}

// ValidationError describes why a question was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

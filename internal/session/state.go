package session

import (
	"sync"
	"time"

	"github.com/abhisek/studyloop/internal/learning"
)

// Phase represents the current phase of a session.
type Phase int

const (
	PhaseConfiguring Phase = iota // Questions not yet loaded
	PhaseInProgress               // Serving questions
	PhaseCompleted                // Graded or ended early
)

func (p Phase) String() string {
	switch p {
	case PhaseConfiguring:
		return "configuring"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Kind tells a fresh test from a revision test.
type Kind int

const (
	KindTest     Kind = iota // Generated questions at one difficulty
	KindRevision             // Questions drawn from the mistake pool
)

func (k Kind) String() string {
	if k == KindRevision {
		return "revision"
	}
	return "test"
}

// Session is one timed run through a fixed list of questions.
// Methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	ID      string
	Kind    Kind
	Subject learning.Subject

	// Difficulty is empty for revision sessions, whose questions keep the
	// difficulty of the record they came from.
	Difficulty learning.Difficulty

	Questions []learning.Question
	StartedAt time.Time

	// Deadline is zero when the session is untimed.
	Deadline time.Time

	cursor     int
	answers    map[string]string
	phase      Phase
	terminated bool
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Terminated reports whether the session ended before the last question.
func (s *Session) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

// Cursor returns the index of the current question.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Answer returns the stored answer for questionID.
func (s *Session) Answer(questionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[questionID]
	return a, ok
}

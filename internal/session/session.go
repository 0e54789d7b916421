// Package session runs test sessions: it serves a fixed list of questions,
// collects answers and grades them. Grading is pure; persisting the outcome
// is the caller's job.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/studyloop/internal/learning"
)

// StartOption configures a new session.
type StartOption func(*Session)

// WithDeadline bounds the session; Expired reports when it has passed.
func WithDeadline(t time.Time) StartOption {
	return func(s *Session) { s.Deadline = t }
}

// WithKind marks the session as a fresh test or a revision test.
func WithKind(k Kind) StartOption {
	return func(s *Session) { s.Kind = k }
}

// WithStartTime overrides the start time, which defaults to time.Now.
func WithStartTime(t time.Time) StartOption {
	return func(s *Session) { s.StartedAt = t }
}

// Start opens a session over questions. Questions without an ID get one.
// An empty difficulty is accepted for mixed-difficulty revision sessions.
func Start(subject learning.Subject, difficulty learning.Difficulty, questions []learning.Question, opts ...StartOption) (*Session, error) {
	if _, err := learning.ParseSubject(string(subject)); err != nil {
		return nil, err
	}
	if difficulty != "" {
		if _, err := learning.ParseDifficulty(string(difficulty)); err != nil {
			return nil, err
		}
	}
	if len(questions) == 0 {
		return nil, &learning.InvalidInputError{Field: "questions", Reason: "must not be empty"}
	}

	qs := make([]learning.Question, len(questions))
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, &learning.InvalidInputError{
				Field:  fmt.Sprintf("questions[%d].correct_answer", i),
				Reason: "must not be empty",
			}
		}
		if q.ID == "" || seen[q.ID] {
			q.ID = uuid.NewString()
		}
		seen[q.ID] = true
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}

	s := &Session{
		ID:         uuid.NewString(),
		Subject:    subject,
		Difficulty: difficulty,
		Questions:  qs,
		answers:    make(map[string]string, len(qs)),
		phase:      PhaseInProgress,
	}
	for _, o := range opts {
		o(s)
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	return s, nil
}

// Current returns the question under the cursor. ok is false once the
// session is completed.
func (s *Session) Current() (q learning.Question, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return learning.Question{}, false
	}
	return s.Questions[s.cursor], true
}

// SubmitAnswer stores answer for questionID, replacing any earlier answer.
func (s *Session) SubmitAnswer(questionID, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseCompleted {
		return &learning.InvalidInputError{Field: "session", Reason: "already completed"}
	}
	if s.indexOf(questionID) < 0 {
		return &learning.NotFoundError{Kind: "question", ID: questionID}
	}
	s.answers[questionID] = answer
	return nil
}

// Advance moves to the next question, or completes the session when the
// cursor is on the last one.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseCompleted {
		return &learning.InvalidInputError{Field: "session", Reason: "already completed"}
	}
	if s.cursor == len(s.Questions)-1 {
		s.phase = PhaseCompleted
		return nil
	}
	s.cursor++
	return nil
}

// Terminate ends the session early. Unanswered questions grade as wrong.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseCompleted {
		return
	}
	s.phase = PhaseCompleted
	s.terminated = true
}

// Expired reports whether the session has a deadline at or before now.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.Deadline.IsZero() && !now.Before(s.Deadline)
}

// Remaining returns the time left before the deadline, zero when untimed
// or past it.
func (s *Session) Remaining(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Deadline.IsZero() || !now.Before(s.Deadline) {
		return 0
	}
	return s.Deadline.Sub(now)
}

// Progress returns how many questions have an answer, and the total.
func (s *Session) Progress() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.Questions {
		if _, ok := s.answers[q.ID]; ok {
			answered++
		}
	}
	return answered, len(s.Questions)
}

// Complete grades every question and marks the session completed. It may be
// called more than once and always returns the same results.
func (s *Session) Complete() ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseConfiguring {
		return nil, &learning.InvalidInputError{Field: "session", Reason: "not started"}
	}
	s.phase = PhaseCompleted

	results := make([]Result, len(s.Questions))
	for i, q := range s.Questions {
		answer, answered := s.answers[q.ID]
		r := Result{
			Question: q,
			Answer:   answer,
			Answered: answered,
			Correct:  answered && CheckAnswer(answer, q),
		}
		if r.Correct {
			r.PointsEarned = q.Points
		}
		results[i] = r
	}
	return results, nil
}

// CheckAnswer compares answer to the correct answer after trimming
// surrounding whitespace. The comparison is otherwise exact.
func CheckAnswer(answer string, q learning.Question) bool {
	return strings.TrimSpace(answer) == strings.TrimSpace(q.CorrectAnswer)
}

func (s *Session) indexOf(questionID string) int {
	for i, q := range s.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

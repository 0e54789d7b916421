// Package practice wires question generation, test sessions, the mistake
// ledger and rewards into the two flows a learner sees: a fresh test and a
// revision test.
package practice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/ledger"
	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/rewards"
	"github.com/abhisek/studyloop/internal/session"
)

// ErrNothingToRevise is returned by StartRevision when the learner has no
// outstanding mistakes in the subject.
var ErrNothingToRevise = errors.New("no mistakes to revise")

// maxSeen bounds the per-key list of question texts passed to the
// generator as Avoid.
const maxSeen = 50

// Config holds the practice defaults.
type Config struct {
	QuestionCount int
	RevisionSize  int

	// TimeLimit is the session duration. Zero means untimed.
	TimeLimit time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{QuestionCount: 10, RevisionSize: 10, TimeLimit: 15 * time.Minute}
}

// Service runs practice flows for any number of learners.
type Service struct {
	gen     questiongen.Generator
	ledger  *ledger.Ledger
	rewards *rewards.Service
	cfg     Config
	now     func() time.Time
	log     *zap.Logger

	mu   sync.Mutex
	seen map[learning.ProgressKey][]string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for session deadlines.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithRewards enables credit awards on Finish.
func WithRewards(r *rewards.Service) Option {
	return func(s *Service) { s.rewards = r }
}

// New creates a Service.
func New(gen questiongen.Generator, led *ledger.Ledger, cfg Config, opts ...Option) *Service {
	s := &Service{
		gen:    gen,
		ledger: led,
		cfg:    cfg,
		now:    time.Now,
		seen:   make(map[learning.ProgressKey][]string),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = logger.Or(s.log).Named("practice")
	return s
}

// StartTest generates count questions and opens a test session. A count of
// zero uses the configured default. When generation fails no session is
// created and the *questiongen.GenerationError is returned.
func (s *Service) StartTest(ctx context.Context, userID string, subject learning.Subject, difficulty learning.Difficulty, count int) (*session.Session, error) {
	if userID == "" {
		return nil, &learning.InvalidInputError{Field: "user_id", Reason: "must not be empty"}
	}
	if count == 0 {
		count = s.cfg.QuestionCount
	}
	key := learning.ProgressKey{UserID: userID, Subject: subject, Difficulty: difficulty}
	input := questiongen.GenerateInput{
		Subject:    subject,
		Difficulty: difficulty,
		Count:      count,
		Avoid:      s.seenFor(key),
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	questions, err := s.gen.Generate(ctx, input)
	if err != nil {
		s.log.Warn("question generation failed",
			zap.Stringer("key", key), zap.Int("count", count), zap.Error(err))
		return nil, err
	}

	sess, err := session.Start(subject, difficulty, questions, s.startOpts(session.KindTest)...)
	if err != nil {
		return nil, fmt.Errorf("start test: %w", err)
	}
	s.remember(key, questions)
	s.log.Info("test started",
		zap.String("session", sess.ID), zap.Stringer("key", key), zap.Int("questions", len(questions)))
	return sess, nil
}

// StartRevision opens a session over up to maxCount mistakes sampled from
// every difficulty of subject. Zero uses the configured default.
func (s *Service) StartRevision(ctx context.Context, userID string, subject learning.Subject, maxCount int) (*session.Session, error) {
	if maxCount == 0 {
		maxCount = s.cfg.RevisionSize
	}
	questions, err := s.ledger.SampleForRevision(ctx, userID, subject, maxCount)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNothingToRevise
	}

	sess, err := session.Start(subject, "", questions, s.startOpts(session.KindRevision)...)
	if err != nil {
		return nil, fmt.Errorf("start revision: %w", err)
	}
	s.log.Info("revision started",
		zap.String("session", sess.ID), zap.String("user", userID),
		zap.String("subject", string(subject)), zap.Int("questions", len(questions)))
	return sess, nil
}

// Expire terminates sess if its deadline has passed and reports whether
// the session is now over.
func (s *Service) Expire(sess *session.Session) bool {
	if sess.Expired(s.now()) {
		sess.Terminate()
		return true
	}
	return sess.Phase() == session.PhaseCompleted
}

func (s *Service) startOpts(kind session.Kind) []session.StartOption {
	now := s.now()
	opts := []session.StartOption{session.WithKind(kind), session.WithStartTime(now)}
	if s.cfg.TimeLimit > 0 {
		opts = append(opts, session.WithDeadline(now.Add(s.cfg.TimeLimit)))
	}
	return opts
}

func (s *Service) seenFor(key learning.ProgressKey) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen[key]...)
}

func (s *Service) remember(key learning.ProgressKey, questions []learning.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := s.seen[key]
	for _, q := range questions {
		seen = append(seen, q.Text)
	}
	if len(seen) > maxSeen {
		seen = seen[len(seen)-maxSeen:]
	}
	s.seen[key] = seen
}

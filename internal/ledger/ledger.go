// Package ledger keeps the per-learner mistake pool: it appends wrong
// answers after a test, clears them when the learner later gets them right,
// and samples them for revision tests.
//
// Every operation is a read followed by a whole-record write. Two writers
// racing on the same (user, subject, difficulty) resolve last-write-wins.
package ledger

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/store"
)

// SessionTally is the score of one finished test.
type SessionTally struct {
	Correct int
	Total   int
}

// Ledger owns the mistake lifecycle across a learner's progress records.
type Ledger struct {
	repo   store.ProgressRepo
	now    func() time.Time
	dedupe bool
	log    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithRand sets the random source used for revision sampling.
func WithRand(r *rand.Rand) Option {
	return func(l *Ledger) { l.rng = r }
}

// WithDedupeOnWrite makes RecordMistakes skip mistakes already in the pool.
// Off by default: repeated misses accumulate, which weights revision
// sampling toward questions the learner keeps getting wrong.
func WithDedupeOnWrite(on bool) Option {
	return func(l *Ledger) { l.dedupe = on }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New returns a Ledger backed by repo.
func New(repo store.ProgressRepo, opts ...Option) *Ledger {
	l := &Ledger{
		repo: repo,
		now:  time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	l.log = logger.Or(l.log).Named("ledger")
	return l
}

// RecordMistakes folds one finished test into the record for key: it adds
// the tally to the running counts and appends newMistakes to the pool,
// creating the record if this is the first test for key.
func (l *Ledger) RecordMistakes(ctx context.Context, key learning.ProgressKey, newMistakes []learning.MistakeEntry, tally SessionTally) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if tally.Correct < 0 || tally.Total < 0 {
		return &learning.InvalidInputError{Field: "tally", Reason: "counts must not be negative"}
	}
	if tally.Correct > tally.Total {
		return &learning.InvalidInputError{
			Field:  "tally",
			Reason: fmt.Sprintf("correct %d exceeds total %d", tally.Correct, tally.Total),
		}
	}
	for i, m := range newMistakes {
		if m.Question == "" || m.CorrectAnswer == "" {
			return &learning.InvalidInputError{
				Field:  fmt.Sprintf("mistakes[%d]", i),
				Reason: "question and correct answer are required",
			}
		}
	}

	rec, err := l.repo.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("record mistakes for %s: %w", key, err)
	}
	now := l.now()
	if rec == nil {
		rec = learning.NewProgressRecord(key, now)
	}

	added := 0
	for _, m := range newMistakes {
		if l.dedupe && hasMistake(rec.Mistakes, m) {
			continue
		}
		m.Options = append([]string{}, m.Options...)
		rec.Mistakes = append(rec.Mistakes, m)
		added++
	}
	rec.CorrectAnswers += tally.Correct
	rec.TotalQuestions += tally.Total
	rec.LastUpdated = now

	if err := rec.Validate(); err != nil {
		// Only reachable when a stored record already broke the invariant.
		return fmt.Errorf("record mistakes for %s: %w", key, err)
	}
	if err := l.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("record mistakes for %s: %w", key, err)
	}

	l.log.Debug("recorded test",
		zap.Stringer("key", key),
		zap.Int("correct", tally.Correct),
		zap.Int("total", tally.Total),
		zap.Int("mistakes_added", added),
		zap.Int("pool", len(rec.Mistakes)))
	return nil
}

// ReconcileOnCorrectAnswer clears mistake from the pool of key after the
// learner answered it correctly. Every entry with the same (question,
// correct answer) pair is removed and CorrectAnswers goes up by one. It
// returns the number of entries removed. When nothing matches, the call
// changes nothing and returns 0, so repeating it is harmless. A missing
// record is a *learning.NotFoundError.
func (l *Ledger) ReconcileOnCorrectAnswer(ctx context.Context, key learning.ProgressKey, mistake learning.MistakeEntry) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}

	rec, err := l.repo.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("reconcile %s: %w", key, err)
	}
	if rec == nil {
		return 0, &learning.NotFoundError{Kind: "progress", ID: key.String()}
	}

	kept := make([]learning.MistakeEntry, 0, len(rec.Mistakes))
	for _, m := range rec.Mistakes {
		if !m.Matches(mistake) {
			kept = append(kept, m)
		}
	}
	removed := len(rec.Mistakes) - len(kept)
	if removed == 0 {
		l.log.Debug("nothing to reconcile", zap.Stringer("key", key))
		return 0, nil
	}

	correct := rec.CorrectAnswers + 1
	total := rec.TotalQuestions
	if correct > total {
		total = correct
	}
	patch := store.ProgressPatch{
		CorrectAnswers: &correct,
		Mistakes:       kept,
		LastUpdated:    l.now(),
	}
	if total != rec.TotalQuestions {
		patch.TotalQuestions = &total
	}
	if err := l.repo.Update(ctx, rec.ID, patch); err != nil {
		return 0, fmt.Errorf("reconcile %s: %w", key, err)
	}

	l.log.Debug("reconciled mistake", zap.Stringer("key", key), zap.Int("removed", removed))
	return removed, nil
}

// SampleForRevision draws up to maxCount mistakes, uniformly and without
// replacement, from every difficulty of subject. Each question remembers
// the record it came from. No mistakes yields an empty slice and no error.
func (l *Ledger) SampleForRevision(ctx context.Context, userID string, subject learning.Subject, maxCount int) ([]learning.Question, error) {
	if userID == "" {
		return nil, &learning.InvalidInputError{Field: "user_id", Reason: "must not be empty"}
	}
	if _, err := learning.ParseSubject(string(subject)); err != nil {
		return nil, err
	}
	if maxCount <= 0 {
		return nil, &learning.InvalidInputError{Field: "max_count", Reason: fmt.Sprintf("must be positive, got %d", maxCount)}
	}

	recs, err := l.repo.Query(ctx, userID, &subject)
	if err != nil {
		return nil, fmt.Errorf("sample revision for %s/%s: %w", userID, subject, err)
	}

	var pool []learning.Question
	for _, rec := range recs {
		for _, m := range rec.Mistakes {
			pool = append(pool, learning.NewRevisionQuestion(m, rec.Key))
		}
	}

	n := min(maxCount, len(pool))
	l.rngMu.Lock()
	// partial Fisher-Yates: the first n slots end up a uniform sample
	for i := 0; i < n; i++ {
		j := i + l.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	l.rngMu.Unlock()

	out := make([]learning.Question, n)
	copy(out, pool[:n])
	return out, nil
}

func hasMistake(pool []learning.MistakeEntry, m learning.MistakeEntry) bool {
	for _, p := range pool {
		if p.Matches(m) {
			return true
		}
	}
	return false
}

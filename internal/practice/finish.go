package practice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/ledger"
	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/rewards"
	"github.com/abhisek/studyloop/internal/session"
)

// Report is the outcome of a finished session.
type Report struct {
	SessionID  string
	Kind       session.Kind
	Subject    learning.Subject
	Results    []session.Result
	Summary    session.Summary
	Terminated bool

	// Recorded is the number of new mistakes added to the pool.
	Recorded int

	// Cleared is the number of distinct mistakes removed from the pool.
	Cleared int

	Awards  []rewards.Award
	Credits int
}

// Finish grades sess and applies the outcome to the learner's progress:
// wrong answers to generated questions become mistakes, right answers to
// revision questions clear theirs, and wrong answers to revision questions
// leave the pool as it was. Credits are awarded last.
//
// The report is returned even when a progress write fails; the error then
// names the first failure.
func (s *Service) Finish(ctx context.Context, userID string, sess *session.Session) (*Report, error) {
	if userID == "" {
		return nil, &learning.InvalidInputError{Field: "user_id", Reason: "must not be empty"}
	}
	results, err := sess.Complete()
	if err != nil {
		return nil, err
	}
	rep := &Report{
		SessionID:  sess.ID,
		Kind:       sess.Kind,
		Subject:    sess.Subject,
		Results:    results,
		Summary:    session.Summarize(results),
		Terminated: sess.Terminated(),
	}

	var errs []error
	if err := s.recordGenerated(ctx, userID, sess.Subject, results, rep); err != nil {
		errs = append(errs, err)
	}
	if err := s.reconcileRevision(ctx, results, rep); err != nil {
		errs = append(errs, err)
	}

	if s.rewards != nil {
		rep.Awards = s.rewards.AwardSession(ctx, userID, sess.ID, rep.Summary, rep.Cleared)
		rep.Credits = rewards.Total(rep.Awards)
	}

	s.log.Info("session finished",
		zap.String("session", sess.ID),
		zap.Stringer("kind", sess.Kind),
		zap.Int("correct", rep.Summary.Correct),
		zap.Int("total", rep.Summary.Total),
		zap.Int("recorded", rep.Recorded),
		zap.Int("cleared", rep.Cleared),
		zap.Int("credits", rep.Credits))

	if len(errs) > 0 {
		return rep, errors.Join(errs...)
	}
	return rep, nil
}

// recordGenerated folds generated questions into one record per difficulty.
func (s *Service) recordGenerated(ctx context.Context, userID string, subject learning.Subject, results []session.Result, rep *Report) error {
	type batch struct {
		tally    ledger.SessionTally
		mistakes []learning.MistakeEntry
	}
	batches := make(map[learning.Difficulty]*batch)
	var order []learning.Difficulty

	for _, r := range results {
		if r.Question.Origin.Kind != learning.OriginGenerated {
			continue
		}
		d := r.Question.Difficulty
		b, ok := batches[d]
		if !ok {
			b = &batch{}
			batches[d] = b
			order = append(order, d)
		}
		b.tally.Total++
		if r.Correct {
			b.tally.Correct++
		} else {
			b.mistakes = append(b.mistakes, r.Question.Mistake())
		}
	}

	for _, d := range order {
		b := batches[d]
		key := learning.ProgressKey{UserID: userID, Subject: subject, Difficulty: d}
		if err := s.ledger.RecordMistakes(ctx, key, b.mistakes, b.tally); err != nil {
			return fmt.Errorf("finish %s: %w", key, err)
		}
		rep.Recorded += len(b.mistakes)
	}
	return nil
}

// reconcileRevision clears correctly answered revision questions from the
// record they were sampled from.
func (s *Service) reconcileRevision(ctx context.Context, results []session.Result, rep *Report) error {
	type ident struct {
		key learning.ProgressKey
		id  learning.MistakeIdentity
	}
	done := make(map[ident]bool)

	var firstErr error
	for _, r := range results {
		q := r.Question
		if q.Origin.Kind != learning.OriginRevision || !r.Correct || q.Origin.Key == nil {
			continue
		}
		m := q.Mistake()
		k := ident{key: *q.Origin.Key, id: m.Identity()}
		if done[k] {
			continue
		}
		done[k] = true

		removed, err := s.ledger.ReconcileOnCorrectAnswer(ctx, k.key, m)
		if err != nil {
			var nf *learning.NotFoundError
			if errors.As(err, &nf) {
				// record vanished since sampling; nothing to clear
				s.log.Warn("revision record missing", zap.Stringer("key", k.key))
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("finish %s: %w", k.key, err)
			}
			continue
		}
		if removed == 0 {
			// already cleared elsewhere
			continue
		}
		rep.Cleared++
	}
	return firstErr
}

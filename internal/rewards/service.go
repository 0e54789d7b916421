// Package rewards turns finished sessions into credits and keeps the
// credit leaderboard.
package rewards

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
)

// Service computes, persists and ranks credit awards.
type Service struct {
	cfg   Config
	repo  store.CreditRepo
	board Leaderboard
	log   *zap.Logger
}

// NewService creates a Service. repo and board may be nil.
func NewService(cfg Config, repo store.CreditRepo, board Leaderboard, log *zap.Logger) *Service {
	return &Service{
		cfg:   cfg,
		repo:  repo,
		board: board,
		log:   logger.Or(log).Named("rewards"),
	}
}

// AwardSession pays out a finished session. Persistence failures are
// logged and do not undo the award; the returned awards are what the
// learner earned.
func (s *Service) AwardSession(ctx context.Context, userID, sessionID string, sum session.Summary, cleared int) []Award {
	awards := Compute(s.cfg, sum, cleared)
	if len(awards) == 0 {
		return nil
	}
	s.persist(ctx, userID, sessionID, awards)

	if s.board != nil {
		if err := s.board.Add(ctx, userID, Total(awards)); err != nil {
			s.log.Warn("leaderboard update failed", zap.String("user", userID), zap.Error(err))
		}
	}
	return awards
}

// Balance returns userID's credit total, zero without a repository.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.Balance(ctx, userID)
}

// Top returns the n best-ranked learners.
func (s *Service) Top(ctx context.Context, n int) ([]Entry, error) {
	if s.board == nil {
		return nil, nil
	}
	return s.board.Top(ctx, n)
}

func (s *Service) persist(ctx context.Context, userID, sessionID string, awards []Award) {
	if s.repo == nil {
		return
	}
	for _, a := range awards {
		err := s.repo.AppendCredit(ctx, store.CreditEventData{
			UserID:    userID,
			Amount:    a.Amount,
			Reason:    string(a.Reason),
			SessionID: sessionID,
		})
		if err != nil {
			s.log.Warn("failed to record credit",
				zap.String("user", userID),
				zap.String("reason", string(a.Reason)),
				zap.Error(err))
		}
	}
}

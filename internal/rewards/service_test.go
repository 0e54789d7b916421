package rewards

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
)

// fakeCreditRepo implements store.CreditRepo for rewards tests.
type fakeCreditRepo struct {
	events []store.CreditEventData
	err    error
}

func (f *fakeCreditRepo) AppendCredit(_ context.Context, data store.CreditEventData) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, data)
	return nil
}

func (f *fakeCreditRepo) Balance(_ context.Context, userID string) (int, error) {
	n := 0
	for _, e := range f.events {
		if e.UserID == userID {
			n += e.Amount
		}
	}
	return n, nil
}

func (f *fakeCreditRepo) TopBalances(context.Context, int) ([]store.CreditBalance, error) {
	return nil, nil
}

func TestAwardSession_PersistsAndRanks(t *testing.T) {
	ctx := context.Background()
	repo := &fakeCreditRepo{}
	board := NewMemoryLeaderboard()
	svc := NewService(DefaultConfig(), repo, board, nil)

	sum := session.Summary{Correct: 2, Total: 2, PointsEarned: 20, Accuracy: 1}
	awards := svc.AwardSession(ctx, "ana", "sess-1", sum, 0)

	if got := Total(awards); got != 30 {
		t.Fatalf("Total = %d, want 30", got)
	}
	if len(repo.events) != 2 {
		t.Fatalf("persisted %d events, want 2", len(repo.events))
	}
	for _, e := range repo.events {
		if e.SessionID != "sess-1" || e.UserID != "ana" {
			t.Errorf("event = %+v", e)
		}
	}

	bal, err := svc.Balance(ctx, "ana")
	if err != nil || bal != 30 {
		t.Errorf("Balance = %d, %v; want 30", bal, err)
	}
	top, _ := svc.Top(ctx, 1)
	if len(top) != 1 || top[0].Credits != 30 {
		t.Errorf("Top = %v", top)
	}
}

func TestAwardSession_NothingEarned(t *testing.T) {
	repo := &fakeCreditRepo{}
	svc := NewService(DefaultConfig(), repo, nil, nil)

	awards := svc.AwardSession(context.Background(), "ana", "s", session.Summary{Total: 3}, 0)
	if awards != nil {
		t.Errorf("awards = %v, want none", awards)
	}
	if len(repo.events) != 0 {
		t.Errorf("persisted %d events, want 0", len(repo.events))
	}
}

func TestAwardSession_StoreFailureKeepsAward(t *testing.T) {
	repo := &fakeCreditRepo{err: errors.New("disk full")}
	board := NewMemoryLeaderboard()
	svc := NewService(DefaultConfig(), repo, board, nil)

	awards := svc.AwardSession(context.Background(), "ana", "s",
		session.Summary{Correct: 1, Total: 2, PointsEarned: 5, Accuracy: 0.5}, 0)
	if Total(awards) != 5 {
		t.Errorf("Total = %d, want 5", Total(awards))
	}
	top, _ := board.Top(context.Background(), 1)
	if len(top) != 1 || top[0].Credits != 5 {
		t.Errorf("Top = %v", top)
	}
}

func TestService_NilCollaborators(t *testing.T) {
	svc := NewService(DefaultConfig(), nil, nil, nil)
	if bal, err := svc.Balance(context.Background(), "ana"); bal != 0 || err != nil {
		t.Errorf("Balance = %d, %v", bal, err)
	}
	if top, err := svc.Top(context.Background(), 3); top != nil || err != nil {
		t.Errorf("Top = %v, %v", top, err)
	}
}

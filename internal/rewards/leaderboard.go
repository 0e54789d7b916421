package rewards

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/studyloop/internal/store"
)

// LeaderboardKey is the sorted set holding credit totals.
const LeaderboardKey = "leaderboard:credits"

// Entry is one ranked line of the leaderboard.
type Entry struct {
	Rank    int
	UserID  string
	Credits int
}

// Leaderboard ranks learners by credits.
type Leaderboard interface {
	// Add adds delta to userID's score.
	Add(ctx context.Context, userID string, delta int) error

	// Top returns the n highest scores, ties broken by user ID.
	Top(ctx context.Context, n int) ([]Entry, error)
}

// RedisLeaderboard keeps scores in a Redis sorted set.
type RedisLeaderboard struct {
	client *redis.Client
	key    string
}

// NewRedisLeaderboard returns a leaderboard on client using LeaderboardKey.
func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client, key: LeaderboardKey}
}

func (l *RedisLeaderboard) Add(ctx context.Context, userID string, delta int) error {
	if err := l.client.ZIncrBy(ctx, l.key, float64(delta), userID).Err(); err != nil {
		return fmt.Errorf("leaderboard add %s: %w", userID, err)
	}
	return nil
}

func (l *RedisLeaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	if len(zs) == n {
		// Redis orders equal scores by reverse member; pull in every
		// member tied with the cutoff so rank can order them by user ID.
		cutoff := strconv.FormatFloat(zs[n-1].Score, 'f', -1, 64)
		zs, err = l.client.ZRevRangeByScoreWithScores(ctx, l.key, &redis.ZRangeBy{
			Min: cutoff,
			Max: "+inf",
		}).Result()
		if err != nil {
			return nil, fmt.Errorf("leaderboard top: %w", err)
		}
	}
	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, Entry{UserID: member, Credits: int(z.Score)})
	}
	entries = rank(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Seed replaces the sorted set with balances, e.g. after Redis lost its data.
func (l *RedisLeaderboard) Seed(ctx context.Context, balances []store.CreditBalance) error {
	pipe := l.client.TxPipeline()
	pipe.Del(ctx, l.key)
	for _, b := range balances {
		pipe.ZAdd(ctx, l.key, redis.Z{Score: float64(b.Credits), Member: b.UserID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard seed: %w", err)
	}
	return nil
}

// MemoryLeaderboard is an in-process Leaderboard.
type MemoryLeaderboard struct {
	mu     sync.Mutex
	scores map[string]int
}

// NewMemoryLeaderboard returns an empty leaderboard.
func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{scores: make(map[string]int)}
}

func (l *MemoryLeaderboard) Add(_ context.Context, userID string, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores[userID] += delta
	return nil
}

func (l *MemoryLeaderboard) Top(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	entries := make([]Entry, 0, len(l.scores))
	for u, c := range l.scores {
		entries = append(entries, Entry{UserID: u, Credits: c})
	}
	l.mu.Unlock()

	entries = rank(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// StoreLeaderboard reads rankings straight from the credit ledger. It is
// used when no Redis server is configured; Add is a no-op because the
// ledger already holds every award.
type StoreLeaderboard struct {
	repo store.CreditRepo
}

// NewStoreLeaderboard returns a leaderboard backed by repo.
func NewStoreLeaderboard(repo store.CreditRepo) *StoreLeaderboard {
	return &StoreLeaderboard{repo: repo}
}

func (l *StoreLeaderboard) Add(context.Context, string, int) error { return nil }

func (l *StoreLeaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	balances, err := l.repo.TopBalances(ctx, n)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(balances))
	for i, b := range balances {
		entries[i] = Entry{UserID: b.UserID, Credits: b.Credits}
	}
	return rank(entries), nil
}

// rank sorts by credits descending then user ID, and numbers the entries.
// Equal scores share a rank.
func rank(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Credits != entries[j].Credits {
			return entries[i].Credits > entries[j].Credits
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		if i > 0 && entries[i].Credits == entries[i-1].Credits {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/ledger"
	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/practice"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/rewards"
	"github.com/abhisek/studyloop/internal/store"
)

// seedLimit caps how many balances are copied into an empty Redis leaderboard.
const seedLimit = 10000

// deps holds everything a command needs, built from appCfg.
type deps struct {
	store    *store.Store
	ledger   *ledger.Ledger
	rewards  *rewards.Service
	practice *practice.Service
	closers  []func() error
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

// buildDeps opens the store and wires the services. Question generation is
// only set up when withGenerator is true, so offline commands never need
// LLM credentials.
func buildDeps(ctx context.Context, withGenerator bool) (*deps, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	d := &deps{store: st, closers: []func() error{st.Close}}

	d.ledger = ledger.New(st.ProgressRepo(),
		ledger.WithDedupeOnWrite(appCfg.Practice.DedupeOnWrite),
		ledger.WithLogger(appLog))

	board := buildLeaderboard(ctx, d)
	rcfg := rewards.Config{
		PerfectBonus:  appCfg.Rewards.PerfectBonus,
		RevisionBonus: appCfg.Rewards.RevisionBonus,
	}
	d.rewards = rewards.NewService(rcfg, st.CreditRepo(), board, appLog)

	var gen questiongen.Generator
	if withGenerator {
		gen, err = buildGenerator(ctx, st.EventRepo())
		if err != nil {
			d.Close()
			return nil, err
		}
	}

	pcfg := practice.Config{
		QuestionCount: appCfg.Practice.QuestionCount,
		RevisionSize:  appCfg.Practice.RevisionSize,
		TimeLimit:     appCfg.Practice.TimeLimit,
	}
	d.practice = practice.New(gen, d.ledger, pcfg,
		practice.WithRewards(d.rewards),
		practice.WithLogger(appLog))
	return d, nil
}

// buildGenerator picks the LLM source, the static bank, or both with the
// bank as fallback.
func buildGenerator(ctx context.Context, eventRepo store.EventRepo) (questiongen.Generator, error) {
	var static questiongen.Generator
	if appCfg.Practice.QuestionBank != "" {
		g, err := questiongen.LoadBank(appCfg.Practice.QuestionBank)
		if err != nil {
			return nil, err
		}
		static = g
	}

	provider, err := buildProvider(ctx, eventRepo)
	if err != nil {
		if static == nil {
			return nil, fmt.Errorf("no question source: %w", err)
		}
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Using the offline question bank.")
		return static, nil
	}

	gen := questiongen.New(provider, questiongen.DefaultConfig(), appLog)
	if static == nil {
		return gen, nil
	}
	return &questiongen.FallbackGenerator{Primary: gen, Secondary: static, Log: appLog}, nil
}

// buildProvider uses the configured LLM settings, or the first vendor API
// key found in the environment when those are incomplete.
func buildProvider(ctx context.Context, eventRepo store.EventRepo) (llm.Provider, error) {
	cfg := appCfg.LLM
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		discovered.Timeout = cfg.Timeout
		discovered.Retry = cfg.Retry
		cfg = discovered
		cfg.ApplyEnv()
	}
	return llm.NewProvider(ctx, cfg, eventRepo, appLog)
}

// buildLeaderboard uses Redis when configured and reachable, seeding an
// empty sorted set from the credit ledger. Otherwise rankings are read from
// the database.
func buildLeaderboard(ctx context.Context, d *deps) rewards.Leaderboard {
	fallback := rewards.NewStoreLeaderboard(d.store.CreditRepo())
	if appCfg.Redis.Addr == "" {
		return fallback
	}

	client := redis.NewClient(&redis.Options{
		Addr:     appCfg.Redis.Addr,
		Password: appCfg.Redis.Password,
		DB:       appCfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		appLog.Warn("redis unavailable, ranking from database", zap.String("addr", appCfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return fallback
	}
	d.closers = append(d.closers, client.Close)

	board := rewards.NewRedisLeaderboard(client)
	n, err := client.Exists(ctx, rewards.LeaderboardKey).Result()
	if err == nil && n == 0 {
		balances, err := d.store.CreditRepo().TopBalances(ctx, seedLimit)
		if err == nil {
			err = board.Seed(ctx, balances)
		}
		if err != nil {
			appLog.Warn("leaderboard seed failed", zap.Error(err))
		}
	}
	return board
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`[{"question":"2+2?"}]`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockText("plain text"),
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `[{"question":"2+2?"}]` {
		t.Fatalf("unexpected content %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text() != "plain text" {
		t.Fatalf("expected plain text, got %q", resp2.Text())
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_CancelledContext(t *testing.T) {
	mock := NewMockProvider(MockText("never"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected call to be recorded, got %d", mock.CallCount())
	}
}

func TestResponseText_Nil(t *testing.T) {
	var r *Response
	if r.Text() != "" {
		t.Fatal("expected empty text for nil response")
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, PurposeQuestionGen)
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	withRetry := func(c Config) Config {
		c.Retry.MaxAttempts = 1
		return c
	}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", withRetry(Config{Provider: "anthropic"}), true},
		{"anthropic with key", withRetry(Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk"}}), false},
		{"openrouter without key", withRetry(Config{Provider: "openrouter"}), true},
		{"gemini with key", withRetry(Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g"}}), false},
		{"mock needs no key", withRetry(Config{Provider: "mock"}), false},
		{"zero attempts", Config{Provider: "mock"}, true},
		{"unknown provider", withRetry(Config{Provider: "unknown"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STUDYLOOP_LLM_PROVIDER", "openai")
	t.Setenv("STUDYLOOP_OPENAI_API_KEY", "sk-env")
	t.Setenv("STUDYLOOP_LLM_TIMEOUT", "5s")
	t.Setenv("STUDYLOOP_LLM_MAX_ATTEMPTS", "3")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %s", cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d", cfg.Retry.MaxAttempts)
	}
}

func TestDefaultConfig_NoRetry(t *testing.T) {
	if got := DefaultConfig().Retry.MaxAttempts; got != 1 {
		t.Fatalf("expected generation to be attempted once, got %d", got)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock", Retry: RetryConfig{MaxAttempts: 1}}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock, got %q", p.ModelID())
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	var te *ErrTimeout
	if !errors.As(err, &te) {
		t.Fatalf("expected ErrTimeout, got %T (%v)", err, err)
	}
	if te.After != 10*time.Millisecond {
		t.Fatalf("After = %s", te.After)
	}
}

func TestWithTimeout_CallerCancelIsNotTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	var te *ErrTimeout
	if errors.As(err, &te) {
		t.Fatal("caller cancellation reported as timeout")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWithTimeout_ZeroIsPassThrough(t *testing.T) {
	mock := NewMockProvider()
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Fatal("expected the inner provider back")
	}
}

func TestWithLogging_RecordsEvents(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`[]`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, st.EventRepo(), zap.NewNop())
	ctx := WithPurpose(context.Background(), PurposeQuestionGen)

	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	events, err := st.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	failed, ok := events[0], events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Fatalf("newest event should be the failure: %+v", failed)
	}
	if !ok.Success || ok.InputTokens != 7 || ok.Purpose != "question-gen" || ok.Provider != "mock" {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if ok.RequestBody == "" || ok.ResponseBody != "[]" {
		t.Fatalf("bodies not recorded: %q / %q", ok.RequestBody, ok.ResponseBody)
	}
}

func TestLookupCost(t *testing.T) {
	if c := LookupCost("gpt-4o-mini"); c == nil || c.InputPerMTok != 0.15 {
		t.Fatalf("unexpected cost %+v", c)
	}
	if c := LookupCost("openai/gpt-4o"); c == nil || c.OutputPerMTok != 10 {
		t.Fatalf("vendor prefix not stripped: %+v", c)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
	if got := (ModelCost{InputPerMTok: 1, OutputPerMTok: 2}).Cost(1_000_000, 500_000); got != 2 {
		t.Fatalf("cost = %v", got)
	}
}

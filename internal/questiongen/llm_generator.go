package questiongen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/logger"
)

// LLMGenerator implements Generator on top of an llm.Provider. The
// provider is asked for plain text; structure is recovered by
// ParseQuestions so models without native JSON output still work.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, log: logger.Or(log).Named("questiongen")}
}

// Generate asks the provider for input.Count questions. The call is made
// once; provider errors and timeouts come back as a *GenerationError with
// stage "request".
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) ([]learning.Question, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, &GenerationError{Stage: StageRequest, Err: err}
	}

	parsed, tier, err := ParseQuestions(resp.Text(), input.Difficulty)
	if err != nil {
		g.log.Warn("unusable question source output", zap.Error(err), zap.Int("bytes", len(resp.Content)))
		return nil, err
	}
	if tier == TierRelaxed {
		g.log.Info("question output needed relaxed parsing", zap.String("subject", string(input.Subject)))
	}

	questions := filter(parsed, input, g.config.Validators, g.log)
	if len(questions) == 0 {
		return nil, &GenerationError{
			Stage: StageValidate,
			Err:   fmt.Errorf("none of %d parsed questions passed validation", len(parsed)),
		}
	}
	if len(questions) < input.Count {
		g.log.Info("source returned fewer questions than asked",
			zap.Int("asked", input.Count), zap.Int("got", len(questions)))
	}
	return questions, nil
}

// FallbackGenerator tries Primary first and, when it fails with a
// *GenerationError, Secondary. Input errors are not retried.
type FallbackGenerator struct {
	Primary   Generator
	Secondary Generator
	Log       *zap.Logger
}

func (f *FallbackGenerator) Generate(ctx context.Context, input GenerateInput) ([]learning.Question, error) {
	qs, err := f.Primary.Generate(ctx, input)
	if err == nil || f.Secondary == nil {
		return qs, err
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) || ctx.Err() != nil {
		return nil, err
	}
	logger.Or(f.Log).Warn("falling back to secondary question source", zap.Error(err))
	qs, err2 := f.Secondary.Generate(ctx, input)
	if err2 != nil {
		return nil, errors.Join(err, err2)
	}
	return qs, nil
}

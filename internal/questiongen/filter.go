package questiongen

import (
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/learning"
)

// filter runs validators over parsed questions, dropping rejects and
// repeats, and keeps at most input.Count. A question repeats when its
// normalized text matches an earlier one or an entry of input.Avoid.
func filter(questions []learning.Question, input GenerateInput, validators []Validator, log *zap.Logger) []learning.Question {
	seen := make(map[string]bool, len(questions)+len(input.Avoid))
	for _, a := range input.Avoid {
		seen[dedupKey(a)] = true
	}

	out := make([]learning.Question, 0, min(len(questions), input.Count))
	for i := range questions {
		q := &questions[i]
		if rejected := runValidators(q, input, validators); rejected != nil {
			log.Debug("dropping generated question", zap.Int("index", i), zap.String("reason", rejected.Error()))
			continue
		}
		key := dedupKey(q.Text)
		if seen[key] {
			log.Debug("dropping repeated question", zap.Int("index", i))
			continue
		}
		seen[key] = true
		out = append(out, *q)
		if len(out) == input.Count {
			break
		}
	}
	return out
}

func runValidators(q *learning.Question, input GenerateInput, validators []Validator) *ValidationError {
	for _, v := range validators {
		if verr := v.Validate(q, input); verr != nil {
			return verr
		}
	}
	return nil
}

func dedupKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

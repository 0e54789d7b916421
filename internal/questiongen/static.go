package questiongen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/studyloop/internal/learning"
)

// BankEntry is one question in a YAML question bank.
type BankEntry struct {
	Subject       string   `yaml:"subject"`
	Difficulty    string   `yaml:"difficulty"`
	Question      string   `yaml:"question"`
	Options       []string `yaml:"options"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Explanation   string   `yaml:"explanation"`
}

// StaticGenerator serves questions from a fixed bank. It is the offline
// question source and the usual fallback when the LLM is unusable.
type StaticGenerator struct {
	mu   sync.Mutex
	bank map[bankKey][]learning.Question
	rng  *rand.Rand
}

type bankKey struct {
	subject    learning.Subject
	difficulty learning.Difficulty
}

// LoadBank reads a YAML list of BankEntry from path.
func LoadBank(path string) (*StaticGenerator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	var entries []BankEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse question bank %s: %w", path, err)
	}
	return NewStatic(entries, nil)
}

// NewStatic builds a StaticGenerator from entries. Entries are normalized
// and validated the same way generated questions are. A nil rng uses a
// randomly seeded source.
func NewStatic(entries []BankEntry, rng *rand.Rand) (*StaticGenerator, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g := &StaticGenerator{bank: make(map[bankKey][]learning.Question), rng: rng}
	validators := DefaultConfig().Validators

	for i, e := range entries {
		subj, err := learning.ParseSubject(e.Subject)
		if err != nil {
			return nil, fmt.Errorf("bank entry %d: %w", i, err)
		}
		diff, err := learning.ParseDifficulty(e.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("bank entry %d: %w", i, err)
		}
		q := normalizeAll([]wireItem{{
			Question:      e.Question,
			Options:       e.Options,
			CorrectAnswer: e.CorrectAnswer,
			Explanation:   e.Explanation,
		}}, diff)[0]
		if verr := runValidators(&q, GenerateInput{Subject: subj, Difficulty: diff}, validators); verr != nil {
			return nil, fmt.Errorf("bank entry %d: %w", i, verr)
		}
		k := bankKey{subj, diff}
		g.bank[k] = append(g.bank[k], q)
	}
	return g, nil
}

// Generate draws up to input.Count questions for the subject and
// difficulty, skipping ones listed in input.Avoid when enough others remain.
func (g *StaticGenerator) Generate(ctx context.Context, input GenerateInput) ([]learning.Question, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &GenerationError{Stage: StageRequest, Err: err}
	}

	pool := g.bank[bankKey{input.Subject, input.Difficulty}]
	if len(pool) == 0 {
		return nil, &GenerationError{
			Stage: StageRequest,
			Err:   fmt.Errorf("question bank has nothing for %s/%s", input.Subject, input.Difficulty),
		}
	}

	avoid := make(map[string]bool, len(input.Avoid))
	for _, a := range input.Avoid {
		avoid[dedupKey(a)] = true
	}
	var fresh, seen []learning.Question
	for _, q := range pool {
		if avoid[dedupKey(q.Text)] {
			seen = append(seen, q)
		} else {
			fresh = append(fresh, q)
		}
	}

	g.mu.Lock()
	g.rng.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	g.rng.Shuffle(len(seen), func(i, j int) { seen[i], seen[j] = seen[j], seen[i] })
	g.mu.Unlock()

	picked := append(fresh, seen...)
	if len(picked) > input.Count {
		picked = picked[:input.Count]
	}
	out := make([]learning.Question, len(picked))
	for i, q := range picked {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out, nil
}

package questiongen

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/studyloop/internal/learning"
)

const bankYAML = `
- subject: biology
  difficulty: easy
  question: What carries oxygen in blood?
  options: ["Platelets", "Red blood cells", "Plasma"]
  correct_answer: B
  explanation: Haemoglobin in red blood cells binds oxygen.
- subject: biology
  difficulty: easy
  question: Powerhouse of the cell?
  options: ["Nucleus", "Mitochondria"]
  correct_answer: Mitochondria
- subject: biology
  difficulty: easy
  question: Basic unit of life?
  correct_answer: Cell
- subject: history
  difficulty: hard
  question: Year the Berlin Wall fell?
  correct_answer: "1989"
`

func writeBank(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBank(t *testing.T) {
	g, err := LoadBank(writeBank(t, bankYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	qs, err := g.Generate(context.Background(), GenerateInput{
		Subject: learning.SubjectBiology, Difficulty: learning.DifficultyEasy, Count: 10,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected all 3 biology questions, got %d", len(qs))
	}
	for _, q := range qs {
		if q.Text == "What carries oxygen in blood?" && q.CorrectAnswer != "Red blood cells" {
			t.Errorf("bank letter answer not resolved: %q", q.CorrectAnswer)
		}
		if q.Points != 5 {
			t.Errorf("points = %d, want 5", q.Points)
		}
	}
}

func TestStatic_AvoidAndCount(t *testing.T) {
	g, err := LoadBank(writeBank(t, bankYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	in := GenerateInput{
		Subject: learning.SubjectBiology, Difficulty: learning.DifficultyEasy, Count: 2,
		Avoid: []string{"What carries oxygen in blood?", "Powerhouse of the cell?"},
	}
	qs, err := g.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2, got %d", len(qs))
	}
	if qs[0].Text != "Basic unit of life?" {
		t.Errorf("unseen question should come first, got %q", qs[0].Text)
	}
}

func TestStatic_EmptyPool(t *testing.T) {
	g, err := NewStatic(nil, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.Generate(context.Background(), GenerateInput{
		Subject: learning.SubjectChemistry, Difficulty: learning.DifficultyHard, Count: 1,
	})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestNewStatic_RejectsBadEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry BankEntry
	}{
		{"unknown subject", BankEntry{Subject: "alchemy", Difficulty: "easy", Question: "q", CorrectAnswer: "a"}},
		{"unknown difficulty", BankEntry{Subject: "physics", Difficulty: "insane", Question: "q", CorrectAnswer: "a"}},
		{"no answer", BankEntry{Subject: "physics", Difficulty: "easy", Question: "q"}},
		{"answer not an option", BankEntry{Subject: "physics", Difficulty: "easy", Question: "q", Options: []string{"x", "y"}, CorrectAnswer: "z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStatic([]BankEntry{tt.entry}, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/abhisek/studyloop/internal/ledger"
	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/practice"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store/memstore"
)

func TestChoice(t *testing.T) {
	q := learning.NewGeneratedQuestion("2+2?", []string{"3", "4", "5"}, "4", "", learning.DifficultyEasy)
	short := learning.NewGeneratedQuestion("Capital of Italy?", nil, "Rome", "", learning.DifficultyEasy)

	tests := []struct {
		input string
		q     learning.Question
		want  string
	}{
		{"b", q, "4"},
		{" B ", q, "4"},
		{"2", q, "4"},
		{"3", q, "5"},
		{"4", q, "4"},
		{"z", q, "z"},
		{"", q, ""},
		{"a", short, "a"},
		{" Rome ", short, "Rome"},
	}
	for _, tt := range tests {
		if got := choice(tt.input, tt.q); got != tt.want {
			t.Errorf("choice(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRunQuiz(t *testing.T) {
	repo := memstore.NewProgressRepo()
	svc := practice.New(nil, ledger.New(repo), practice.Config{QuestionCount: 2, RevisionSize: 2})

	sess, err := session.Start(learning.SubjectMathematics, learning.DifficultyEasy, []learning.Question{
		learning.NewGeneratedQuestion("2+2?", []string{"3", "4"}, "4", "", learning.DifficultyEasy),
		learning.NewGeneratedQuestion("5-1?", []string{"4", "6"}, "4", "", learning.DifficultyEasy),
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rep, err := runQuiz(context.Background(), svc, "u1", sess, strings.NewReader("B\n2\n"), &out)
	if err != nil {
		t.Fatalf("runQuiz: %v", err)
	}
	if rep.Summary.Correct != 1 || rep.Summary.Total != 2 {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if rep.Recorded != 1 {
		t.Errorf("Recorded = %d, want 1", rep.Recorded)
	}
	if !strings.Contains(out.String(), "[2/2] 5-1?") {
		t.Errorf("output missing second question:\n%s", out.String())
	}

	printReport(&out, rep)
	if !strings.Contains(out.String(), "Score: 1/2") {
		t.Errorf("report missing score:\n%s", out.String())
	}
}

func TestRunQuiz_EOFEndsEarly(t *testing.T) {
	svc := practice.New(nil, ledger.New(memstore.NewProgressRepo()), practice.Config{QuestionCount: 1, RevisionSize: 1})
	sess, err := session.Start(learning.SubjectPhysics, learning.DifficultyHard, []learning.Question{
		learning.NewGeneratedQuestion("F = ?", nil, "ma", "", learning.DifficultyHard),
		learning.NewGeneratedQuestion("E = ?", nil, "mc^2", "", learning.DifficultyHard),
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rep, err := runQuiz(context.Background(), svc, "u1", sess, strings.NewReader("ma\n"), &out)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Terminated {
		t.Error("expected early termination")
	}
	if rep.Summary.Correct != 1 {
		t.Errorf("Correct = %d, want 1", rep.Summary.Correct)
	}
}

func TestRunQuiz_ShortAnswerRevisionShowsReference(t *testing.T) {
	svc := practice.New(nil, ledger.New(memstore.NewProgressRepo()), practice.Config{QuestionCount: 1, RevisionSize: 1})
	key := learning.ProgressKey{UserID: "u1", Subject: learning.SubjectChemistry, Difficulty: learning.DifficultyMedium}
	mistake := learning.MistakeEntry{Question: "Symbol for sodium?", CorrectAnswer: "Na"}
	sess, err := session.Start(learning.SubjectChemistry, "", []learning.Question{
		learning.NewRevisionQuestion(mistake, key),
	}, session.WithKind(session.KindRevision))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := runQuiz(context.Background(), svc, "u1", sess, strings.NewReader("Na\n"), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Reference: Na") {
		t.Errorf("reference answer not shown:\n%s", out.String())
	}
}

func TestRunQuiz_GeneratedShortAnswerHidesAnswer(t *testing.T) {
	svc := practice.New(nil, ledger.New(memstore.NewProgressRepo()), practice.Config{QuestionCount: 1, RevisionSize: 1})
	sess, err := session.Start(learning.SubjectPhysics, learning.DifficultyEasy, []learning.Question{
		learning.NewGeneratedQuestion("F = ?", nil, "ma", "", learning.DifficultyEasy),
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := runQuiz(context.Background(), svc, "u1", sess, strings.NewReader("ma\n"), &out); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Reference:") {
		t.Errorf("generated question leaked its answer:\n%s", out.String())
	}
}

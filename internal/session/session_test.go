package session

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/studyloop/internal/learning"
)

func testQuestions() []learning.Question {
	return []learning.Question{
		learning.NewGeneratedQuestion("2+2?", []string{"3", "4", "5"}, "4", "", learning.DifficultyMedium),
		learning.NewGeneratedQuestion("3*3?", []string{"6", "9"}, "9", "", learning.DifficultyMedium),
		learning.NewGeneratedQuestion("Capital of France?", nil, "Paris", "", learning.DifficultyMedium),
	}
}

func startTest(t *testing.T) *Session {
	t.Helper()
	s, err := Start(learning.SubjectMathematics, learning.DifficultyMedium, testQuestions())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestStart_AssignsIDs(t *testing.T) {
	s := startTest(t)

	if s.ID == "" {
		t.Fatal("expected session ID")
	}
	if s.Phase() != PhaseInProgress {
		t.Errorf("Phase = %v, want in_progress", s.Phase())
	}
	if s.Cursor() != 0 {
		t.Errorf("Cursor = %d, want 0", s.Cursor())
	}
	ids := map[string]bool{}
	for _, q := range s.Questions {
		if q.ID == "" {
			t.Fatal("question without ID")
		}
		if ids[q.ID] {
			t.Fatalf("duplicate question ID %s", q.ID)
		}
		ids[q.ID] = true
	}
	if answered, total := s.Progress(); answered != 0 || total != 3 {
		t.Errorf("Progress = %d/%d, want 0/3", answered, total)
	}
}

func TestStart_KeepsCallerIDs(t *testing.T) {
	qs := testQuestions()
	qs[0].ID = "q-1"
	qs[1].ID = "q-1"

	s, err := Start(learning.SubjectMathematics, learning.DifficultyMedium, qs)
	if err != nil {
		t.Fatal(err)
	}
	if s.Questions[0].ID != "q-1" {
		t.Errorf("ID = %q, want q-1", s.Questions[0].ID)
	}
	if s.Questions[1].ID == "q-1" {
		t.Error("duplicate ID should be replaced")
	}
}

func TestStart_InvalidInput(t *testing.T) {
	noAnswer := testQuestions()
	noAnswer[1].CorrectAnswer = "  "

	tests := []struct {
		name       string
		subject    learning.Subject
		difficulty learning.Difficulty
		questions  []learning.Question
	}{
		{"empty list", learning.SubjectMathematics, learning.DifficultyEasy, nil},
		{"empty correct answer", learning.SubjectMathematics, learning.DifficultyEasy, noAnswer},
		{"unknown subject", "astrology", learning.DifficultyEasy, testQuestions()},
		{"unknown difficulty", learning.SubjectMathematics, "insane", testQuestions()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Start(tt.subject, tt.difficulty, tt.questions)
			var inv *learning.InvalidInputError
			if !errors.As(err, &inv) {
				t.Fatalf("err = %v, want InvalidInputError", err)
			}
			if s != nil {
				t.Error("expected no session")
			}
		})
	}
}

func TestStart_RevisionAllowsMixedDifficulty(t *testing.T) {
	s, err := Start(learning.SubjectMathematics, "", testQuestions(), WithKind(KindRevision))
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != KindRevision {
		t.Errorf("Kind = %v, want revision", s.Kind)
	}
}

func TestSubmitAnswer_Overwrites(t *testing.T) {
	s := startTest(t)
	id := s.Questions[0].ID

	if err := s.SubmitAnswer(id, "3"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitAnswer(id, "4"); err != nil {
		t.Fatal(err)
	}
	if a, _ := s.Answer(id); a != "4" {
		t.Errorf("Answer = %q, want 4", a)
	}
	if answered, _ := s.Progress(); answered != 1 {
		t.Errorf("answered = %d, want 1", answered)
	}
}

func TestSubmitAnswer_UnknownQuestion(t *testing.T) {
	s := startTest(t)
	err := s.SubmitAnswer("nope", "4")
	var nf *learning.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestSubmitAnswer_AfterCompletion(t *testing.T) {
	s := startTest(t)
	if _, err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	err := s.SubmitAnswer(s.Questions[0].ID, "4")
	var inv *learning.InvalidInputError
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want InvalidInputError", err)
	}
}

func TestAdvance_CompletesAtLastQuestion(t *testing.T) {
	s := startTest(t)

	for i := 0; i < 2; i++ {
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	q, ok := s.Current()
	if !ok || q.Text != "Capital of France?" {
		t.Fatalf("Current = %q, %v", q.Text, ok)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseCompleted {
		t.Errorf("Phase = %v, want completed", s.Phase())
	}
	if _, ok := s.Current(); ok {
		t.Error("Current should be empty after completion")
	}
	if err := s.Advance(); err == nil {
		t.Error("expected error advancing a completed session")
	}
}

func TestComplete_Grades(t *testing.T) {
	s := startTest(t)
	_ = s.SubmitAnswer(s.Questions[0].ID, " 4 ")
	_ = s.SubmitAnswer(s.Questions[1].ID, "6")
	_ = s.SubmitAnswer(s.Questions[2].ID, "paris")

	results, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{true, false, false}
	for i, r := range results {
		if r.Correct != want[i] {
			t.Errorf("results[%d].Correct = %v, want %v", i, r.Correct, want[i])
		}
	}
	if results[0].PointsEarned != 10 {
		t.Errorf("PointsEarned = %d, want 10", results[0].PointsEarned)
	}
	if results[1].PointsEarned != 0 {
		t.Errorf("PointsEarned = %d, want 0", results[1].PointsEarned)
	}

	sum := Summarize(results)
	if sum.Correct != 1 || sum.Total != 3 || sum.PointsEarned != 10 || sum.PointsPossible != 30 {
		t.Errorf("Summary = %+v", sum)
	}
	if sum.Perfect() {
		t.Error("not a perfect score")
	}
}

func TestComplete_Deterministic(t *testing.T) {
	s := startTest(t)
	_ = s.SubmitAnswer(s.Questions[0].ID, "4")

	first, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].Correct != second[i].Correct || first[i].PointsEarned != second[i].PointsEarned {
			t.Errorf("result %d differs between calls", i)
		}
	}
}

func TestTerminate_UnansweredAreWrong(t *testing.T) {
	s := startTest(t)
	_ = s.SubmitAnswer(s.Questions[0].ID, "4")
	s.Terminate()

	if !s.Terminated() {
		t.Error("expected Terminated")
	}
	results, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if results[1].Answered || results[1].Correct {
		t.Errorf("unanswered result = %+v", results[1])
	}
	if got := Summarize(results).Correct; got != 1 {
		t.Errorf("Correct = %d, want 1", got)
	}
}

func TestPointsFixedAtCreation(t *testing.T) {
	qs := testQuestions()
	qs[0].Points = 99

	s, err := Start(learning.SubjectMathematics, learning.DifficultyMedium, qs)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.SubmitAnswer(s.Questions[0].ID, "4")
	results, _ := s.Complete()
	if results[0].PointsEarned != 99 {
		t.Errorf("PointsEarned = %d, want 99", results[0].PointsEarned)
	}
}

func TestExpired(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s, err := Start(learning.SubjectMathematics, learning.DifficultyEasy, testQuestions(),
		WithStartTime(start), WithDeadline(start.Add(15*time.Minute)))
	if err != nil {
		t.Fatal(err)
	}

	if s.Expired(start.Add(14 * time.Minute)) {
		t.Error("should not be expired yet")
	}
	if got := s.Remaining(start.Add(10 * time.Minute)); got != 5*time.Minute {
		t.Errorf("Remaining = %v, want 5m", got)
	}
	if !s.Expired(start.Add(15 * time.Minute)) {
		t.Error("should be expired at the deadline")
	}

	untimed := startTest(t)
	if untimed.Expired(time.Now().Add(24 * time.Hour)) {
		t.Error("untimed session never expires")
	}
}

package learning

import (
	"fmt"
	"strings"
	"time"
)

// Subject is a course area a learner can be tested on.
type Subject string

const (
	SubjectMathematics     Subject = "mathematics"
	SubjectPhysics         Subject = "physics"
	SubjectChemistry       Subject = "chemistry"
	SubjectBiology         Subject = "biology"
	SubjectEnglish         Subject = "english"
	SubjectHistory         Subject = "history"
	SubjectGeography       Subject = "geography"
	SubjectComputerScience Subject = "computer_science"
)

// AllSubjects returns every supported subject in display order.
func AllSubjects() []Subject {
	return []Subject{
		SubjectMathematics, SubjectPhysics, SubjectChemistry, SubjectBiology,
		SubjectEnglish, SubjectHistory, SubjectGeography, SubjectComputerScience,
	}
}

// ParseSubject maps user input onto the closed subject set.
// Matching is case-insensitive and accepts spaces or dashes for underscores.
func ParseSubject(s string) (Subject, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, subj := range AllSubjects() {
		if string(subj) == norm {
			return subj, nil
		}
	}
	return "", &InvalidInputError{Field: "subject", Reason: fmt.Sprintf("unknown subject %q", s)}
}

// DisplayName returns a human-readable label for the subject.
func (s Subject) DisplayName() string {
	switch s {
	case SubjectComputerScience:
		return "Computer Science"
	case "":
		return ""
	default:
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	}
}

// Difficulty is the tier a question was generated for.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// AllDifficulties returns every tier from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty maps user input onto the closed difficulty set.
func ParseDifficulty(s string) (Difficulty, error) {
	norm := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, d := range AllDifficulties() {
		if d == norm {
			return d, nil
		}
	}
	return "", &InvalidInputError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %q", s)}
}

// pointsByDifficulty is the fixed per-question reward table.
var pointsByDifficulty = map[Difficulty]int{
	DifficultyEasy:   5,
	DifficultyMedium: 10,
	DifficultyHard:   15,
}

// Points returns the reward for one correct answer at difficulty d.
// Unknown tiers score as medium.
func Points(d Difficulty) int {
	if p, ok := pointsByDifficulty[d]; ok {
		return p
	}
	return pointsByDifficulty[DifficultyMedium]
}

// ProgressKey identifies one progress record.
type ProgressKey struct {
	UserID     string
	Subject    Subject
	Difficulty Difficulty
}

func (k ProgressKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.UserID, k.Subject, k.Difficulty)
}

// Validate checks that every component of the key is set and known.
func (k ProgressKey) Validate() error {
	if strings.TrimSpace(k.UserID) == "" {
		return &InvalidInputError{Field: "user_id", Reason: "must not be empty"}
	}
	if _, err := ParseSubject(string(k.Subject)); err != nil {
		return err
	}
	if _, err := ParseDifficulty(string(k.Difficulty)); err != nil {
		return err
	}
	return nil
}

// MistakeEntry remembers a question the learner answered wrong, with enough
// context to ask it again.
type MistakeEntry struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// MistakeIdentity is the value identity used to reconcile mistakes.
type MistakeIdentity struct {
	Question      string
	CorrectAnswer string
}

// Identity returns the (question, correct answer) pair.
func (m MistakeEntry) Identity() MistakeIdentity {
	return MistakeIdentity{Question: m.Question, CorrectAnswer: m.CorrectAnswer}
}

// Matches reports whether m and other describe the same mistake.
func (m MistakeEntry) Matches(other MistakeEntry) bool {
	return m.Identity() == other.Identity()
}

// ProgressRecord aggregates a learner's results for one subject and difficulty.
type ProgressRecord struct {
	ID             int64
	Key            ProgressKey
	CorrectAnswers int
	TotalQuestions int
	Mistakes       []MistakeEntry
	LastUpdated    time.Time
}

// NewProgressRecord returns an empty record for key.
func NewProgressRecord(key ProgressKey, now time.Time) *ProgressRecord {
	return &ProgressRecord{
		Key:         key,
		Mistakes:    []MistakeEntry{},
		LastUpdated: now,
	}
}

// Validate checks the count invariant 0 <= correct <= total.
func (r *ProgressRecord) Validate() error {
	if r.CorrectAnswers < 0 || r.TotalQuestions < 0 {
		return &InvalidInputError{Field: "counts", Reason: "must not be negative"}
	}
	if r.CorrectAnswers > r.TotalQuestions {
		return &InvalidInputError{
			Field:  "correct_answers",
			Reason: fmt.Sprintf("%d exceeds total %d", r.CorrectAnswers, r.TotalQuestions),
		}
	}
	return nil
}

// Accuracy returns correct/total, or 0 when nothing was answered.
func (r *ProgressRecord) Accuracy() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.TotalQuestions)
}

// OriginKind tells where a question came from.
type OriginKind int

const (
	OriginGenerated OriginKind = iota // Fresh from a question source
	OriginRevision                    // Sampled from the mistake pool
)

func (k OriginKind) String() string {
	switch k {
	case OriginGenerated:
		return "generated"
	case OriginRevision:
		return "revision"
	default:
		return "unknown"
	}
}

// Origin links a question back to its source. Key is set only for
// revision questions and names the record the mistake lives in.
type Origin struct {
	Kind OriginKind
	Key  *ProgressKey
}

// Question is one item of a test session.
type Question struct {
	ID            string
	Text          string
	Options       []string
	CorrectAnswer string
	Explanation   string
	Difficulty    Difficulty

	// Points is fixed when the question is created.
	Points int

	Origin Origin
}

// NewGeneratedQuestion builds a fresh question, pricing it from the
// current points table.
func NewGeneratedQuestion(text string, options []string, correct, explanation string, d Difficulty) Question {
	return Question{
		Text:          text,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   explanation,
		Difficulty:    d,
		Points:        Points(d),
		Origin:        Origin{Kind: OriginGenerated},
	}
}

// NewRevisionQuestion builds a question from a stored mistake owned by key.
func NewRevisionQuestion(m MistakeEntry, key ProgressKey) Question {
	k := key
	return Question{
		Text:          m.Question,
		Options:       append([]string(nil), m.Options...),
		CorrectAnswer: m.CorrectAnswer,
		Explanation:   m.Explanation,
		Difficulty:    key.Difficulty,
		Points:        Points(key.Difficulty),
		Origin:        Origin{Kind: OriginRevision, Key: &k},
	}
}

// HasOptions reports whether the question is multiple choice.
func (q Question) HasOptions() bool {
	return len(q.Options) > 0
}

// ReferenceAnswer is what to show for a short-answer question in place
// of an option list.
func (q Question) ReferenceAnswer() string {
	if q.HasOptions() {
		return ""
	}
	return q.CorrectAnswer
}

// Mistake converts the question into a ledger entry.
func (q Question) Mistake() MistakeEntry {
	return MistakeEntry{
		Question:      q.Text,
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/studyloop/internal/learning"
)

// progressRow is a learning_progress row as scanned, before validation.
type progressRow struct {
	ID             int64
	UserID         string
	Subject        string
	Difficulty     string
	CorrectAnswers int
	TotalQuestions int
	Mistakes       string
	LastUpdated    time.Time
}

// decodeProgress validates a raw row and converts it into a typed record.
// Nothing deeper in the ledger sees unvalidated data.
func decodeProgress(row progressRow) (*learning.ProgressRecord, error) {
	if strings.TrimSpace(row.UserID) == "" {
		return nil, &learning.DecodeError{Field: "user_id", Err: errors.New("empty")}
	}
	subject, err := learning.ParseSubject(row.Subject)
	if err != nil {
		return nil, &learning.DecodeError{Field: "subject", Err: err}
	}
	difficulty, err := learning.ParseDifficulty(row.Difficulty)
	if err != nil {
		return nil, &learning.DecodeError{Field: "difficulty_level", Err: err}
	}
	if row.CorrectAnswers < 0 || row.TotalQuestions < 0 {
		return nil, &learning.DecodeError{
			Field: "counts",
			Err:   fmt.Errorf("negative count (correct=%d total=%d)", row.CorrectAnswers, row.TotalQuestions),
		}
	}

	mistakes, err := decodeMistakes(row.Mistakes)
	if err != nil {
		return nil, &learning.DecodeError{Field: "mistakes", Err: err}
	}

	return &learning.ProgressRecord{
		ID: row.ID,
		Key: learning.ProgressKey{
			UserID:     row.UserID,
			Subject:    subject,
			Difficulty: difficulty,
		},
		CorrectAnswers: row.CorrectAnswers,
		TotalQuestions: row.TotalQuestions,
		Mistakes:       mistakes,
		LastUpdated:    row.LastUpdated,
	}, nil
}

// decodeMistakes parses the stored JSON list. Empty text and JSON null both
// decode to an empty list. Entries without a question or correct answer
// cannot be revised or reconciled and are rejected.
func decodeMistakes(raw string) ([]learning.MistakeEntry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []learning.MistakeEntry{}, nil
	}
	var entries []learning.MistakeEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Question) == "" {
			return nil, fmt.Errorf("entry %d: empty question", i)
		}
		if strings.TrimSpace(e.CorrectAnswer) == "" {
			return nil, fmt.Errorf("entry %d: empty correct answer", i)
		}
		if entries[i].Options == nil {
			entries[i].Options = []string{}
		}
	}
	if entries == nil {
		entries = []learning.MistakeEntry{}
	}
	return entries, nil
}

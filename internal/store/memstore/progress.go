// Package memstore is an in-memory ProgressRepo, used when no database is
// configured and as the injected fake in tests.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/store"
)

// ErrInjected is the cause wrapped by failures triggered with FailNext.
var ErrInjected = errors.New("injected store failure")

// ProgressRepo keeps progress records in a map keyed by ProgressKey.
// Stored records are deep-copied on the way in and out.
type ProgressRepo struct {
	mu       sync.Mutex
	nextID   int64
	records  map[learning.ProgressKey]*learning.ProgressRecord
	failNext int

	// Writes counts successful Upsert and Update calls.
	Writes int
}

var _ store.ProgressRepo = (*ProgressRepo)(nil)

// NewProgressRepo returns an empty repository.
func NewProgressRepo() *ProgressRepo {
	return &ProgressRepo{records: make(map[learning.ProgressKey]*learning.ProgressRecord)}
}

// FailNext makes the next n calls fail with a StoreUnavailableError.
func (r *ProgressRepo) FailNext(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = n
}

func (r *ProgressRepo) Get(_ context.Context, key learning.ProgressKey) (*learning.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("get"); err != nil {
		return nil, err
	}
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	return clone(rec), nil
}

func (r *ProgressRepo) Upsert(_ context.Context, rec *learning.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("upsert"); err != nil {
		return err
	}
	if existing, ok := r.records[rec.Key]; ok {
		rec.ID = existing.ID
	} else {
		r.nextID++
		rec.ID = r.nextID
	}
	r.records[rec.Key] = clone(rec)
	r.Writes++
	return nil
}

func (r *ProgressRepo) Query(_ context.Context, userID string, subject *learning.Subject) ([]learning.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("query"); err != nil {
		return nil, err
	}
	var out []learning.ProgressRecord
	for key, rec := range r.records {
		if key.UserID != userID {
			continue
		}
		if subject != nil && key.Subject != *subject {
			continue
		}
		out = append(out, *clone(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Subject != out[j].Key.Subject {
			return out[i].Key.Subject < out[j].Key.Subject
		}
		return out[i].Key.Difficulty < out[j].Key.Difficulty
	})
	return out, nil
}

func (r *ProgressRepo) Update(_ context.Context, id int64, patch store.ProgressPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("update"); err != nil {
		return err
	}
	for _, rec := range r.records {
		if rec.ID != id {
			continue
		}
		if patch.CorrectAnswers != nil {
			rec.CorrectAnswers = *patch.CorrectAnswers
		}
		if patch.TotalQuestions != nil {
			rec.TotalQuestions = *patch.TotalQuestions
		}
		if patch.Mistakes != nil {
			rec.Mistakes = cloneMistakes(patch.Mistakes)
		}
		rec.LastUpdated = patch.LastUpdated
		if rec.LastUpdated.IsZero() {
			rec.LastUpdated = time.Now()
		}
		r.Writes++
		return nil
	}
	return &learning.NotFoundError{Kind: "progress", ID: strconv.FormatInt(id, 10)}
}

// Len returns the number of stored records.
func (r *ProgressRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *ProgressRepo) injected(op string) error {
	if r.failNext <= 0 {
		return nil
	}
	r.failNext--
	return &learning.StoreUnavailableError{Op: op, Err: ErrInjected}
}

func clone(rec *learning.ProgressRecord) *learning.ProgressRecord {
	c := *rec
	c.Mistakes = cloneMistakes(rec.Mistakes)
	return &c
}

func cloneMistakes(in []learning.MistakeEntry) []learning.MistakeEntry {
	out := make([]learning.MistakeEntry, len(in))
	for i, m := range in {
		m.Options = append([]string(nil), m.Options...)
		out[i] = m
	}
	return out
}

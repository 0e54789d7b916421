package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/learning"
)

const progressTable = "learning_progress"

var progressColumns = []string{
	"id", "user_id", "subject", "difficulty_level",
	"correct_answers", "total_questions", "mistakes", "last_updated",
}

// progressRepo implements ProgressRepo on SQLite.
type progressRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func (r *progressRepo) Get(ctx context.Context, key learning.ProgressKey) (*learning.ProgressRecord, error) {
	query, args := builder().Select(progressColumns...).
		From(entsql.Table(progressTable)).
		Where(entsql.And(
			entsql.EQ("user_id", key.UserID),
			entsql.EQ("subject", string(key.Subject)),
			entsql.EQ("difficulty_level", string(key.Difficulty)),
		)).
		Query()

	recs, err := r.query(ctx, "get", query, args)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (r *progressRepo) Upsert(ctx context.Context, rec *learning.ProgressRecord) error {
	mistakes, err := encodeMistakes(rec.Mistakes)
	if err != nil {
		return err
	}

	query, args := builder().Insert(progressTable).
		Columns("user_id", "subject", "difficulty_level", "correct_answers", "total_questions", "mistakes", "last_updated").
		Values(rec.Key.UserID, string(rec.Key.Subject), string(rec.Key.Difficulty),
			rec.CorrectAnswers, rec.TotalQuestions, mistakes, rec.LastUpdated.UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "subject", "difficulty_level"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &learning.StoreUnavailableError{Op: "upsert", Err: err}
	}

	if rec.ID == 0 {
		stored, err := r.Get(ctx, rec.Key)
		if err != nil {
			return err
		}
		if stored == nil {
			return &learning.StoreUnavailableError{Op: "upsert", Err: errors.New("row missing after write")}
		}
		rec.ID = stored.ID
	}
	return nil
}

func (r *progressRepo) Query(ctx context.Context, userID string, subject *learning.Subject) ([]learning.ProgressRecord, error) {
	pred := entsql.EQ("user_id", userID)
	if subject != nil {
		pred = entsql.And(pred, entsql.EQ("subject", string(*subject)))
	}
	query, args := builder().Select(progressColumns...).
		From(entsql.Table(progressTable)).
		Where(pred).
		OrderBy("subject", "difficulty_level").
		Query()

	return r.query(ctx, "query", query, args)
}

func (r *progressRepo) Update(ctx context.Context, id int64, patch ProgressPatch) error {
	last := patch.LastUpdated
	if last.IsZero() {
		last = time.Now()
	}
	upd := builder().Update(progressTable).Set("last_updated", last.UTC())
	if patch.CorrectAnswers != nil {
		upd.Set("correct_answers", *patch.CorrectAnswers)
	}
	if patch.TotalQuestions != nil {
		upd.Set("total_questions", *patch.TotalQuestions)
	}
	if patch.Mistakes != nil {
		mistakes, err := encodeMistakes(patch.Mistakes)
		if err != nil {
			return err
		}
		upd.Set("mistakes", mistakes)
	}
	query, args := upd.Where(entsql.EQ("id", id)).Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &learning.StoreUnavailableError{Op: "update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &learning.StoreUnavailableError{Op: "update", Err: err}
	}
	if n == 0 {
		return &learning.NotFoundError{Kind: "progress", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}

func (r *progressRepo) query(ctx context.Context, op, query string, args []any) ([]learning.ProgressRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &learning.StoreUnavailableError{Op: op, Err: err}
	}
	defer rows.Close()

	var out []learning.ProgressRecord
	for rows.Next() {
		var row progressRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Subject, &row.Difficulty,
			&row.CorrectAnswers, &row.TotalQuestions, &row.Mistakes, &row.LastUpdated); err != nil {
			return nil, &learning.StoreUnavailableError{Op: op, Err: err}
		}
		rec, err := decodeProgress(row)
		if err != nil {
			r.logger.Warn("rejecting malformed progress row",
				zap.Int64("id", row.ID), zap.Error(err))
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &learning.StoreUnavailableError{Op: op, Err: err}
	}
	return out, nil
}

func encodeMistakes(m []learning.MistakeEntry) (string, error) {
	if m == nil {
		m = []learning.MistakeEntry{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode mistakes: %w", err)
	}
	return string(b), nil
}

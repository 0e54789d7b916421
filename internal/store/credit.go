package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// creditRepo implements CreditRepo on SQLite.
type creditRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *creditRepo) AppendCredit(ctx context.Context, data CreditEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert("credit_events").
		Columns("sequence", "timestamp", "user_id", "amount", "reason", "session_id").
		Values(seqNum, time.Now().UTC(), data.UserID, data.Amount, data.Reason, data.SessionID).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save credit event: %w", err)
	}
	return nil
}

func (r *creditRepo) Balance(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM credit_events WHERE user_id = ?`, userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}
	return total, nil
}

func (r *creditRepo) TopBalances(ctx context.Context, limit int) ([]CreditBalance, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, SUM(amount) AS credits
		FROM credit_events
		GROUP BY user_id
		ORDER BY credits DESC, user_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top balances: %w", err)
	}
	defer rows.Close()

	var out []CreditBalance
	for rows.Next() {
		var b CreditBalance
		if err := rows.Scan(&b.UserID, &b.Credits); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"time"

	"github.com/abhisek/studyloop/internal/learning"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ProgressPatch is a partial update of a progress record. Nil fields are
// left untouched.
type ProgressPatch struct {
	CorrectAnswers *int
	TotalQuestions *int
	Mistakes       []learning.MistakeEntry // nil = unchanged, empty = clear
	LastUpdated    time.Time
}

// ProgressRepo is the row store behind the mistake ledger. Each call is a
// single-row operation; concurrent writers resolve last-write-wins.
type ProgressRepo interface {
	// Get returns the record for key, or nil if none exists.
	Get(ctx context.Context, key learning.ProgressKey) (*learning.ProgressRecord, error)

	// Upsert inserts or replaces the record keyed on (user, subject,
	// difficulty). rec.ID is set on return.
	Upsert(ctx context.Context, rec *learning.ProgressRecord) error

	// Query returns all records for userID, optionally limited to subject.
	Query(ctx context.Context, userID string, subject *learning.Subject) ([]learning.ProgressRecord, error)

	// Update applies patch to the record with the given row id.
	Update(ctx context.Context, id int64, patch ProgressPatch) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// CreditEventData is one change to a learner's credit balance.
type CreditEventData struct {
	UserID    string
	Amount    int
	Reason    string
	SessionID string
}

// CreditBalance is a learner's total credits.
type CreditBalance struct {
	UserID  string
	Credits int
}

// CreditRepo is the append-only credit ledger.
type CreditRepo interface {
	AppendCredit(ctx context.Context, data CreditEventData) error
	Balance(ctx context.Context, userID string) (int, error)

	// TopBalances returns the highest balances, largest first.
	TopBalances(ctx context.Context, limit int) ([]CreditBalance, error)
}

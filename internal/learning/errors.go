package learning

import "fmt"

// InvalidInputError reports malformed or empty arguments. Not retryable.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a record, session or question that does not exist.
type NotFoundError struct {
	Kind string // "progress", "session", "question"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// StoreUnavailableError wraps a failure of the backing store.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("progress store unavailable (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("progress store unavailable (%s)", e.Op)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// DecodeError reports a stored row that failed validation when read back.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode progress record: field %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

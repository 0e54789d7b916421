package questiongen

import "fmt"

// Stages at which question generation can fail.
const (
	StageRequest  = "request"  // the source call itself failed or timed out
	StageExtract  = "extract"  // no array-like structure in the output
	StageParse    = "parse"    // strict and relaxed parsing both failed
	StageValidate = "validate" // every parsed item was rejected
)

// GenerationError reports that the question source produced nothing usable.
// Callers should fall back to another source or tell the user; a test must
// not be started.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

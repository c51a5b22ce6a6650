package generator

import (
	"errors"
	"fmt"
)

// ErrMissingApiKey means the feature needs a generation credential and none
// is configured.
var ErrMissingApiKey = errors.New("generator: api key is required")

// ContextTooLargeError means the budget was exhausted before even a minimal
// prompt could fit.
type ContextTooLargeError struct {
	Used   int
	Budget int
}

func (e *ContextTooLargeError) Error() string {
	return fmt.Sprintf("generator: context too large for request (%d of %d estimated tokens used). Try using fewer or shorter messages", e.Used, e.Budget)
}

// GenerationError wraps a provider failure, carrying the provider's own
// message so it can be surfaced to the user.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generator: %s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

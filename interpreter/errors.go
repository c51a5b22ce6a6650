package interpreter

import (
	"errors"
	"fmt"
)

// ErrMissingApiKey means the verb needs a generation credential and none is
// configured. Rendered to the user as plain text.
var ErrMissingApiKey = errors.New("To use this feature, you'll need to add your API key. Open settings to add your key.")

// InvalidCommandFormatError means required sub-arguments were absent or
// malformed; Hint tells the user what the verb expects.
type InvalidCommandFormatError struct {
	Hint string
}

func (e *InvalidCommandFormatError) Error() string {
	return e.Hint
}

// UnknownCommandError means the verb is not recognized.
type UnknownCommandError struct {
	Verb string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command: /%s. Type /help to see available commands.", e.Verb)
}

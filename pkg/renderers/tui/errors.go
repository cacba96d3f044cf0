package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is reported when a choice field declares nothing to choose.
	ErrNoOptions = errors.New("tui: field has no options")
)

package tui

import "errors"

// ErrMissingAnswerer is returned when the answerer is not provided.
var ErrMissingAnswerer = errors.New("tui: answerer is required")

// ErrMissingStatusReporter is returned when the status reporter is not provided.
var ErrMissingStatusReporter = errors.New("tui: status reporter is required")

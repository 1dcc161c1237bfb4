// Package tui provides an interactive ask session for korpus.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions over the stored documents.
	Answer driving.Answerer

	// Status reports the store's aggregate state.
	Status driving.StatusReporter
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerer
	}
	if p.Status == nil {
		return ErrMissingStatusReporter
	}
	return nil
}

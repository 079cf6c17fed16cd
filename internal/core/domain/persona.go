// Package domain contains the core business entities and rules for the
// persona chatbot service.
package domain

import (
	"strings"
	"time"
)

// Persona is a named, independently scoped chatbot configuration.
// Each persona owns its document set, vector index snapshot and
// conversation log; nothing is shared across personas.
type Persona struct {
	// ID is the unique identifier for the persona.
	ID string

	// Name is the unique human-readable name.
	Name string

	// Description is an optional free-form description.
	Description string

	// BoundaryText is the behavioural constraint injected into every
	// generation request for this persona.
	BoundaryText string

	// CreatedAt is when the persona was created.
	CreatedAt time.Time

	// UpdatedAt is when the persona was last modified.
	UpdatedAt time.Time
}

// Validate checks the persona for creation/update.
func (p *Persona) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidInput
	}
	return nil
}

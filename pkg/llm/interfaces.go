// Package llm provides the optional narrative text generator used to fill
// free-text fields during document generation. Its output is never
// load-bearing: every caller holds a deterministic fallback and the
// pipeline is correct using templates alone.
package llm

import (
	"context"

	"github.com/tracewright/apqp-engine/pkg/models"
)

// Field names the free-text slot a narrative is requested for.
type Field string

const (
	FieldFailureEffect     Field = "failure_effect"
	FieldRecommendedAction Field = "recommended_action"
)

// Request carries the context the generator may draw on.
type Request struct {
	Field              Field
	CharacteristicName string
	Category           models.CharacteristicCategory
	FailureMode        string
	ProcessName        string
	Priority           models.ActionPriority
}

// NarrativeGenerator produces free-text narrative for document fields.
// Implementations must be safe for concurrent use.
type NarrativeGenerator interface {
	// Narrative returns text for the requested field. Errors mean the
	// caller should fall back to its deterministic value.
	Narrative(ctx context.Context, req Request) (string, error)

	// Name identifies the implementation for logging.
	Name() string
}

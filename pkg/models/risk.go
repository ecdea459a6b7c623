package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionPriority is the AIAG-VDA table-derived classification that replaces
// raw RPN ranking.
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "H"
	PriorityMedium ActionPriority = "M"
	PriorityLow    ActionPriority = "L"
)

// Rank orders priorities for comparisons: L < M < H.
func (p ActionPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// RiskHeader is the PFMEA document header. One per product.
type RiskHeader struct {
	ID         uuid.UUID      `json:"id"`
	ProductID  uuid.UUID      `json:"product_id"`
	DocNumber  string         `json:"doc_number"`
	Revision   string         `json:"revision"`
	Status     DocumentStatus `json:"status"`
	PreparedBy string         `json:"prepared_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RiskLine is one PFMEA row. Exactly one per characteristic; the 1:1 is
// enforced by the generator's idempotency check, not a database constraint.
// RPN and ActionPriority are stored for reporting but always recomputable
// from (Severity, Occurrence, Detection).
type RiskLine struct {
	ID               uuid.UUID `json:"id"`
	HeaderID         uuid.UUID `json:"header_id"`
	CharacteristicID uuid.UUID `json:"characteristic_id"`

	ProcessStep   string `json:"process_step"`
	FailureMode   string `json:"failure_mode"`
	FailureEffect string `json:"failure_effect"`
	FailureCause  string `json:"failure_cause"`

	PreventionControl string `json:"prevention_control"`
	DetectionControl  string `json:"detection_control"`

	Severity   int            `json:"severity"`
	Occurrence int            `json:"occurrence"`
	Detection  int            `json:"detection"`
	RPN        int            `json:"rpn"`
	Priority   ActionPriority `json:"action_priority"`

	RecommendedAction string    `json:"recommended_action"`
	CreatedAt         time.Time `json:"created_at"`
}

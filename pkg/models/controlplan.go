package models

import (
	"time"

	"github.com/google/uuid"
)

// ControlType determines which downstream document family an item may link
// to: prevention items feed the SOP, detection items feed the inspection
// standard.
type ControlType string

const (
	ControlPrevention ControlType = "prevention"
	ControlDetection  ControlType = "detection"
)

// Valid reports whether the control type is one of the closed set.
func (t ControlType) Valid() bool {
	return t == ControlPrevention || t == ControlDetection
}

// ControlPlan is the control plan document header. One per risk header.
type ControlPlan struct {
	ID           uuid.UUID      `json:"id"`
	RiskHeaderID uuid.UUID      `json:"risk_header_id"`
	ProductID    uuid.UUID      `json:"product_id"`
	DocNumber    string         `json:"doc_number"`
	Revision     string         `json:"revision"`
	Status       DocumentStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ControlPlanItem is one control plan row. Each risk line yields at most
// two items, one per control type. PFMEALineID and CharacteristicID are
// the traceability back-references.
type ControlPlanItem struct {
	ID               uuid.UUID `json:"id"`
	PlanID           uuid.UUID `json:"plan_id"`
	PFMEALineID      uuid.UUID `json:"pfmea_line_id"`
	CharacteristicID uuid.UUID `json:"characteristic_id"`

	ProcessStep   string      `json:"process_step"`
	ControlType   ControlType `json:"control_type"`
	ControlMethod string      `json:"control_method"`
	Specification string      `json:"specification"`
	SampleSize    string      `json:"sample_size"`
	Frequency     string      `json:"frequency"`
	ReactionPlan  string      `json:"reaction_plan"`

	CreatedAt time.Time `json:"created_at"`
}

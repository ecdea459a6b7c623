package models

import (
	"time"

	"github.com/google/uuid"
)

// Sop is the standard operating procedure document header. One per
// control plan.
type Sop struct {
	ID            uuid.UUID      `json:"id"`
	ControlPlanID uuid.UUID      `json:"control_plan_id"`
	ProductID     uuid.UUID      `json:"product_id"`
	DocNumber     string         `json:"doc_number"`
	Revision      string         `json:"revision"`
	Status        DocumentStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SopStep is one work instruction step, derived from a prevention control
// plan item. KeyPoint is the structured three-part field: control point,
// verification method, abnormality response.
type SopStep struct {
	ID             uuid.UUID `json:"id"`
	SopID          uuid.UUID `json:"sop_id"`
	LinkedCPItemID uuid.UUID `json:"linked_cp_item_id"`

	StepNumber   int    `json:"step_number"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	KeyPoint     string `json:"key_point"`
	SafetyNote   string `json:"safety_note"`
	QualityPoint string `json:"quality_point"`

	CreatedAt time.Time `json:"created_at"`
}

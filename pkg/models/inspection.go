package models

import (
	"time"

	"github.com/google/uuid"
)

// InspectionStandard is the inspection document header. One per control plan.
type InspectionStandard struct {
	ID            uuid.UUID      `json:"id"`
	ControlPlanID uuid.UUID      `json:"control_plan_id"`
	ProductID     uuid.UUID      `json:"product_id"`
	DocNumber     string         `json:"doc_number"`
	Revision      string         `json:"revision"`
	Status        DocumentStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// InspectionItem is one inspection standard row, derived from a detection
// control plan item. CharacteristicID is retained for tolerance lookups.
type InspectionItem struct {
	ID               uuid.UUID `json:"id"`
	StandardID       uuid.UUID `json:"standard_id"`
	LinkedCPItemID   uuid.UUID `json:"linked_cp_item_id"`
	CharacteristicID uuid.UUID `json:"characteristic_id"`

	ItemNumber         int    `json:"item_number"`
	InspectionName     string `json:"inspection_name"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
	InspectionMethod   string `json:"inspection_method"`
	SampleSize         string `json:"sample_size"`
	Frequency          string `json:"frequency"`

	CreatedAt time.Time `json:"created_at"`
}

// SamplingPlan renders the item's sampling as "sample_size/frequency",
// the same composition used when comparing against control plan items.
func (i *InspectionItem) SamplingPlan() string {
	return i.SampleSize + "/" + i.Frequency
}

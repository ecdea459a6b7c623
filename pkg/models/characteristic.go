package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CharacteristicType distinguishes product characteristics (dimensions,
// material properties) from process characteristics (torque, temperature).
type CharacteristicType string

const (
	CharacteristicProduct CharacteristicType = "product"
	CharacteristicProcess CharacteristicType = "process"
)

// CharacteristicCategory is the customer-facing special characteristic class.
type CharacteristicCategory string

const (
	CategoryCritical CharacteristicCategory = "critical"
	CategoryMajor    CharacteristicCategory = "major"
	CategoryMinor    CharacteristicCategory = "minor"
)

// Characteristic belongs to exactly one Product. Attributes stay editable
// until downstream documents consume them; edits after generation do not
// retroactively update generated lines.
type Characteristic struct {
	ID        uuid.UUID              `json:"id"`
	ProductID uuid.UUID              `json:"product_id"`
	Name      string                 `json:"name"`
	Type      CharacteristicType     `json:"type"`
	Category  CharacteristicCategory `json:"category"`

	// Either a numeric tolerance (LSL/USL/Unit) or a free-text
	// specification; both may be present, numeric wins for criteria.
	Specification *string  `json:"specification,omitempty"`
	LSL           *float64 `json:"lsl,omitempty"`
	USL           *float64 `json:"usl,omitempty"`
	Unit          *string  `json:"unit,omitempty"`

	MeasurementMethod *string `json:"measurement_method,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTolerance reports whether both specification limits are set.
func (c *Characteristic) HasTolerance() bool {
	return c.LSL != nil && c.USL != nil
}

// ToleranceRange renders the numeric tolerance as "lsl~usl unit".
// Callers must check HasTolerance first.
func (c *Characteristic) ToleranceRange() string {
	unit := ""
	if c.Unit != nil {
		unit = *c.Unit
	}
	return fmt.Sprintf("%g~%g%s", *c.LSL, *c.USL, unit)
}

// SpecText returns the best human-readable specification for the
// characteristic: the numeric range when present, else the free text.
func (c *Characteristic) SpecText() string {
	if c.HasTolerance() {
		return c.ToleranceRange()
	}
	if c.Specification != nil && *c.Specification != "" {
		return *c.Specification
	}
	return ""
}

// Valid reports whether type and category carry known values.
func (t CharacteristicType) Valid() bool {
	return t == CharacteristicProduct || t == CharacteristicProcess
}

// Valid reports whether the category is one of the closed set.
func (c CharacteristicCategory) Valid() bool {
	return c == CategoryCritical || c == CategoryMajor || c == CategoryMinor
}

// Package models contains domain types for the APQP traceability graph.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the root of the traceability graph. Every characteristic,
// risk line, control item, work step and inspection item is reachable
// from exactly one product.
type Product struct {
	ID           uuid.UUID `json:"id"`
	PartNumber   string    `json:"part_number"`
	Name         string    `json:"name"`
	CustomerName string    `json:"customer_name"`
	VehicleModel string    `json:"vehicle_model"`
	ProcessName  string    `json:"process_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

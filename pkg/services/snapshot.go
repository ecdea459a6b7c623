package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
	"github.com/tracewright/apqp-engine/pkg/models"
)

// GraphSnapshot is a read-only view of one PFMEA's document chain with
// precomputed adjacency. The rule engine runs on snapshots only, never on
// repositories.
type GraphSnapshot struct {
	Header          *models.RiskHeader
	Lines           []*models.RiskLine
	Items           []*models.ControlPlanItem
	Steps           []*models.SopStep
	Inspections     []*models.InspectionItem
	Characteristics map[uuid.UUID]*models.Characteristic

	ItemsByLine       map[uuid.UUID][]*models.ControlPlanItem
	StepsByItem       map[uuid.UUID][]*models.SopStep
	InspectionsByItem map[uuid.UUID][]*models.InspectionItem
}

// buildAdjacency fills the lookup maps from the flat slices.
func (snap *GraphSnapshot) buildAdjacency() {
	snap.ItemsByLine = make(map[uuid.UUID][]*models.ControlPlanItem, len(snap.Lines))
	for _, item := range snap.Items {
		snap.ItemsByLine[item.PFMEALineID] = append(snap.ItemsByLine[item.PFMEALineID], item)
	}

	snap.StepsByItem = make(map[uuid.UUID][]*models.SopStep, len(snap.Items))
	for _, step := range snap.Steps {
		snap.StepsByItem[step.LinkedCPItemID] = append(snap.StepsByItem[step.LinkedCPItemID], step)
	}

	snap.InspectionsByItem = make(map[uuid.UUID][]*models.InspectionItem, len(snap.Items))
	for _, insp := range snap.Inspections {
		snap.InspectionsByItem[insp.LinkedCPItemID] = append(snap.InspectionsByItem[insp.LinkedCPItemID], insp)
	}
}

// loadSnapshot walks the chain from a risk header downward. Documents not
// yet generated simply leave their slices empty; the rules report the
// resulting missing links.
func (s *consistencyService) loadSnapshot(ctx context.Context, riskHeaderID uuid.UUID) (*GraphSnapshot, error) {
	header, err := s.stores.RiskHeaders.Get(ctx, riskHeaderID)
	if err != nil {
		return nil, fmt.Errorf("load risk header: %w", err)
	}

	snap := &GraphSnapshot{
		Header:          header,
		Characteristics: make(map[uuid.UUID]*models.Characteristic),
	}

	snap.Lines, err = s.stores.RiskLines.GetByHeader(ctx, riskHeaderID)
	if err != nil {
		return nil, fmt.Errorf("load risk lines: %w", err)
	}

	chars, err := s.stores.Characteristics.GetByProduct(ctx, header.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load characteristics: %w", err)
	}
	for _, c := range chars {
		snap.Characteristics[c.ID] = c
	}

	plan, err := s.stores.ControlPlans.GetByHeader(ctx, riskHeaderID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("load control plan: %w", err)
	}
	if plan != nil {
		snap.Items, err = s.stores.ControlItems.GetByPlan(ctx, plan.ID)
		if err != nil {
			return nil, fmt.Errorf("load control plan items: %w", err)
		}

		sop, err := s.stores.Sops.GetByPlan(ctx, plan.ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("load sop: %w", err)
		}
		if sop != nil {
			snap.Steps, err = s.stores.SopSteps.GetBySop(ctx, sop.ID)
			if err != nil {
				return nil, fmt.Errorf("load sop steps: %w", err)
			}
		}

		std, err := s.stores.Standards.GetByPlan(ctx, plan.ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("load inspection standard: %w", err)
		}
		if std != nil {
			snap.Inspections, err = s.stores.Inspections.GetByStandard(ctx, std.ID)
			if err != nil {
				return nil, fmt.Errorf("load inspection items: %w", err)
			}
		}
	}

	snap.buildAdjacency()
	return snap, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
	"github.com/tracewright/apqp-engine/pkg/models"
)

// GenerateControlPlan implements stage 2. Each risk line yields up to two
// control plan items, tagged prevention and detection, whose sampling
// schedule tightens with the line's action priority.
func (s *generationService) GenerateControlPlan(ctx context.Context, riskHeaderID, productID uuid.UUID) (*StageResult, error) {
	header, err := s.stores.RiskHeaders.Get(ctx, riskHeaderID)
	if err != nil {
		return nil, fmt.Errorf("load risk header: %w", err)
	}
	if header.ProductID != productID {
		return nil, fmt.Errorf("risk header %s does not belong to product %s: %w",
			riskHeaderID, productID, apperrors.ErrNotFound)
	}

	lines, err := s.stores.RiskLines.GetByHeader(ctx, riskHeaderID)
	if err != nil {
		return nil, fmt.Errorf("load risk lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("risk header %s has no lines: %w", riskHeaderID, apperrors.ErrNoInputData)
	}

	existing, err := s.stores.ControlPlans.GetByHeader(ctx, riskHeaderID)
	if err == nil {
		items, err := s.stores.ControlItems.GetByPlan(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("load existing control plan items: %w", err)
		}
		return &StageResult{
			CreatedID:       existing.ID,
			ItemCount:       len(items),
			LinkedParentIDs: []uuid.UUID{riskHeaderID, productID},
			Existed:         true,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing control plan: %w", err)
	}

	product, err := s.stores.Products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	plan := &models.ControlPlan{
		RiskHeaderID: riskHeaderID,
		ProductID:    productID,
		DocNumber:    "CP-" + product.PartNumber,
	}
	if err := s.stores.ControlPlans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("create control plan: %w", err)
	}

	count := 0
	for _, line := range lines {
		char, err := s.stores.Characteristics.Get(ctx, line.CharacteristicID)
		if err != nil {
			return nil, s.rollbackControlPlan(ctx, plan.ID,
				fmt.Errorf("load characteristic %s: %v: %w", line.CharacteristicID, err, apperrors.ErrPartialInsert))
		}
		class := s.rules.Classify(char.Name)

		for _, item := range s.deriveControlItems(plan.ID, line, char, class) {
			if err := s.stores.ControlItems.Create(ctx, item); err != nil {
				return nil, s.rollbackControlPlan(ctx, plan.ID,
					fmt.Errorf("insert control plan item for line %s: %v: %w", line.ID, err, apperrors.ErrPartialInsert))
			}
			count++
		}
	}

	s.logger.Info("Generated control plan",
		zap.String("plan_id", plan.ID.String()),
		zap.String("risk_header_id", riskHeaderID.String()),
		zap.Int("items", count))

	return &StageResult{
		CreatedID:       plan.ID,
		ItemCount:       count,
		LinkedParentIDs: []uuid.UUID{riskHeaderID, productID},
	}, nil
}

// deriveControlItems builds the prevention and detection items for one
// risk line. A line with empty control text on one side yields only the
// other item.
func (s *generationService) deriveControlItems(planID uuid.UUID, line *models.RiskLine, char *models.Characteristic, class FailureClass) []*models.ControlPlanItem {
	reaction := s.rules.ReactionPlan(class)
	var items []*models.ControlPlanItem

	if line.PreventionControl != "" {
		sched := s.rules.PreventionSampling[line.Priority]
		items = append(items, &models.ControlPlanItem{
			PlanID:           planID,
			PFMEALineID:      line.ID,
			CharacteristicID: line.CharacteristicID,
			ProcessStep:      line.ProcessStep,
			ControlType:      models.ControlPrevention,
			ControlMethod:    line.PreventionControl,
			Specification:    char.SpecText(),
			SampleSize:       sched.SampleSize,
			Frequency:        sched.Frequency,
			ReactionPlan:     reaction,
		})
	}

	if line.DetectionControl != "" {
		sched := s.rules.DetectionSampling[line.Priority]
		items = append(items, &models.ControlPlanItem{
			PlanID:           planID,
			PFMEALineID:      line.ID,
			CharacteristicID: line.CharacteristicID,
			ProcessStep:      line.ProcessStep,
			ControlType:      models.ControlDetection,
			ControlMethod:    line.DetectionControl,
			Specification:    char.SpecText(),
			SampleSize:       sched.SampleSize,
			Frequency:        sched.Frequency,
			ReactionPlan:     reaction,
		})
	}

	return items
}

func (s *generationService) rollbackControlPlan(ctx context.Context, planID uuid.UUID, cause error) error {
	if err := s.stores.ControlPlans.Delete(ctx, planID); err != nil {
		s.logger.Error("Rollback of control plan failed",
			zap.String("plan_id", planID.String()),
			zap.Error(err))
	}
	return cause
}

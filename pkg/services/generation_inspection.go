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

// GenerateInspectionStandard implements stage 4. Each detection control
// plan item yields one inspection item. Acceptance criteria are the
// literal numeric range when the characteristic carries both limits,
// otherwise a reference-sample comparison.
func (s *generationService) GenerateInspectionStandard(ctx context.Context, controlPlanID, productID uuid.UUID) (*StageResult, error) {
	items, err := s.loadPlanItemsForStage(ctx, controlPlanID, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.stores.Standards.GetByPlan(ctx, controlPlanID)
	if err == nil {
		inspections, err := s.stores.Inspections.GetByStandard(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("load existing inspection items: %w", err)
		}
		return &StageResult{
			CreatedID:       existing.ID,
			ItemCount:       len(inspections),
			LinkedParentIDs: []uuid.UUID{controlPlanID, productID},
			Existed:         true,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing inspection standard: %w", err)
	}

	product, err := s.stores.Products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	std := &models.InspectionStandard{
		ControlPlanID: controlPlanID,
		ProductID:     productID,
		DocNumber:     "IS-" + product.PartNumber,
	}
	if err := s.stores.Standards.Create(ctx, std); err != nil {
		return nil, fmt.Errorf("create inspection standard: %w", err)
	}

	itemNumber := 0
	for _, item := range items {
		if item.ControlType != models.ControlDetection {
			continue
		}
		itemNumber++

		char, err := s.stores.Characteristics.Get(ctx, item.CharacteristicID)
		if err != nil {
			return nil, s.rollbackInspectionStandard(ctx, std.ID,
				fmt.Errorf("load characteristic %s: %v: %w", item.CharacteristicID, err, apperrors.ErrPartialInsert))
		}

		inspection := &models.InspectionItem{
			StandardID:         std.ID,
			LinkedCPItemID:     item.ID,
			CharacteristicID:   char.ID,
			ItemNumber:         itemNumber,
			InspectionName:     char.Name,
			AcceptanceCriteria: acceptanceCriteria(char),
			InspectionMethod:   inspectionMethod(char, item),
			SampleSize:         item.SampleSize,
			Frequency:          item.Frequency,
		}
		if err := s.stores.Inspections.Create(ctx, inspection); err != nil {
			return nil, s.rollbackInspectionStandard(ctx, std.ID,
				fmt.Errorf("insert inspection item for control item %s: %v: %w", item.ID, err, apperrors.ErrPartialInsert))
		}
	}

	s.logger.Info("Generated inspection standard",
		zap.String("standard_id", std.ID.String()),
		zap.String("control_plan_id", controlPlanID.String()),
		zap.Int("items", itemNumber))

	return &StageResult{
		CreatedID:       std.ID,
		ItemCount:       itemNumber,
		LinkedParentIDs: []uuid.UUID{controlPlanID, productID},
	}, nil
}

// acceptanceCriteria is numeric when both limits exist, qualitative
// otherwise.
func acceptanceCriteria(char *models.Characteristic) string {
	if char.HasTolerance() {
		return char.ToleranceRange()
	}
	if char.Specification != nil && *char.Specification != "" {
		return *char.Specification
	}
	return "한도 샘플과 비교하여 이상 없을 것"
}

func inspectionMethod(char *models.Characteristic, item *models.ControlPlanItem) string {
	if char.MeasurementMethod != nil && *char.MeasurementMethod != "" {
		return *char.MeasurementMethod
	}
	return item.ControlMethod
}

func (s *generationService) rollbackInspectionStandard(ctx context.Context, standardID uuid.UUID, cause error) error {
	if err := s.stores.Standards.Delete(ctx, standardID); err != nil {
		s.logger.Error("Rollback of inspection standard failed",
			zap.String("standard_id", standardID.String()),
			zap.Error(err))
	}
	return cause
}

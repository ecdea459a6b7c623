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

// GenerateSop implements stage 3. Each prevention control plan item yields
// one work instruction step whose key point is the three-part composition:
// control point, verification method, abnormality response.
func (s *generationService) GenerateSop(ctx context.Context, controlPlanID, productID uuid.UUID) (*StageResult, error) {
	items, err := s.loadPlanItemsForStage(ctx, controlPlanID, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.stores.Sops.GetByPlan(ctx, controlPlanID)
	if err == nil {
		steps, err := s.stores.SopSteps.GetBySop(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("load existing sop steps: %w", err)
		}
		return &StageResult{
			CreatedID:       existing.ID,
			ItemCount:       len(steps),
			LinkedParentIDs: []uuid.UUID{controlPlanID, productID},
			Existed:         true,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing sop: %w", err)
	}

	product, err := s.stores.Products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	sop := &models.Sop{
		ControlPlanID: controlPlanID,
		ProductID:     productID,
		DocNumber:     "SOP-" + product.PartNumber,
	}
	if err := s.stores.Sops.Create(ctx, sop); err != nil {
		return nil, fmt.Errorf("create sop: %w", err)
	}

	stepNumber := 0
	for _, item := range items {
		if item.ControlType != models.ControlPrevention {
			continue
		}
		stepNumber++

		char, err := s.stores.Characteristics.Get(ctx, item.CharacteristicID)
		if err != nil {
			return nil, s.rollbackSop(ctx, sop.ID,
				fmt.Errorf("load characteristic %s: %v: %w", item.CharacteristicID, err, apperrors.ErrPartialInsert))
		}

		step := &models.SopStep{
			SopID:          sop.ID,
			LinkedCPItemID: item.ID,
			StepNumber:     stepNumber,
			Title:          fmt.Sprintf("%s 관리 작업", char.Name),
			Description:    item.ControlMethod,
			KeyPoint:       composeKeyPoint(char, item),
			SafetyNote:     safetyNote(char),
			QualityPoint:   item.Specification,
		}
		if err := s.stores.SopSteps.Create(ctx, step); err != nil {
			return nil, s.rollbackSop(ctx, sop.ID,
				fmt.Errorf("insert sop step for item %s: %v: %w", item.ID, err, apperrors.ErrPartialInsert))
		}
	}

	s.logger.Info("Generated sop",
		zap.String("sop_id", sop.ID.String()),
		zap.String("control_plan_id", controlPlanID.String()),
		zap.Int("steps", stepNumber))

	return &StageResult{
		CreatedID:       sop.ID,
		ItemCount:       stepNumber,
		LinkedParentIDs: []uuid.UUID{controlPlanID, productID},
	}, nil
}

// composeKeyPoint joins the three mandatory key point parts. Each part
// must survive into the text: the consistency engine checks the result
// for control and response vocabulary independently.
func composeKeyPoint(char *models.Characteristic, item *models.ControlPlanItem) string {
	controlPoint := char.SpecText()
	if controlPoint == "" {
		controlPoint = char.Name + " 규격 준수"
	}
	return fmt.Sprintf("관리 포인트: %s / 확인 방법: %s / 이상 발생 시: %s",
		controlPoint, item.ControlMethod, item.ReactionPlan)
}

func safetyNote(char *models.Characteristic) string {
	if char.Category == models.CategoryCritical {
		return "중요 특성: 보호구 착용 및 작업 표준 임의 변경 금지"
	}
	return "작업 표준 준수"
}

func (s *generationService) rollbackSop(ctx context.Context, sopID uuid.UUID, cause error) error {
	if err := s.stores.Sops.Delete(ctx, sopID); err != nil {
		s.logger.Error("Rollback of sop failed",
			zap.String("sop_id", sopID.String()),
			zap.Error(err))
	}
	return cause
}

// loadPlanItemsForStage resolves and validates the control plan parent
// shared by stages 3 and 4, returning its items.
func (s *generationService) loadPlanItemsForStage(ctx context.Context, controlPlanID, productID uuid.UUID) ([]*models.ControlPlanItem, error) {
	plan, err := s.stores.ControlPlans.Get(ctx, controlPlanID)
	if err != nil {
		return nil, fmt.Errorf("load control plan: %w", err)
	}
	if plan.ProductID != productID {
		return nil, fmt.Errorf("control plan %s does not belong to product %s: %w",
			controlPlanID, productID, apperrors.ErrNotFound)
	}

	items, err := s.stores.ControlItems.GetByPlan(ctx, controlPlanID)
	if err != nil {
		return nil, fmt.Errorf("load control plan items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("control plan %s has no items: %w", controlPlanID, apperrors.ErrNoInputData)
	}
	return items, nil
}

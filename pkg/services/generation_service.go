package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
	"github.com/tracewright/apqp-engine/pkg/llm"
	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/repositories"
	"github.com/tracewright/apqp-engine/pkg/riskpriority"
)

// StageResult reports the outcome of one generation stage.
type StageResult struct {
	CreatedID       uuid.UUID   `json:"created_id"`
	ItemCount       int         `json:"item_count"`
	LinkedParentIDs []uuid.UUID `json:"linked_parent_ids"`

	// Existed is true when the stage found its output already generated
	// and returned it unchanged.
	Existed bool `json:"existed"`
}

// GenerationService runs the four-stage document pipeline. Every stage is
// generate-if-absent: re-invoking a stage with the same parent returns the
// existing document and its items unchanged.
//
// The absence check is a plain read before the writes, not an atomic
// operation. Two concurrent requests for the same parent can both observe
// "absent" and both insert; this tool runs at low concurrency and accepts
// at-most-one-winner rather than guaranteeing it.
type GenerationService interface {
	// GenerateRiskAnalysis expands a product's characteristics into a
	// PFMEA (stage 1). Fails with ErrNoInputData when the product has no
	// characteristics. All-or-nothing: a line insert failure rolls back
	// the newly created header.
	GenerateRiskAnalysis(ctx context.Context, productID uuid.UUID) (*StageResult, error)

	// GenerateControlPlan expands PFMEA lines into control plan items
	// (stage 2): up to two items per line, one prevention, one detection.
	GenerateControlPlan(ctx context.Context, riskHeaderID, productID uuid.UUID) (*StageResult, error)

	// GenerateSop expands prevention control items into work instruction
	// steps (stage 3).
	GenerateSop(ctx context.Context, controlPlanID, productID uuid.UUID) (*StageResult, error)

	// GenerateInspectionStandard expands detection control items into
	// inspection items (stage 4).
	GenerateInspectionStandard(ctx context.Context, controlPlanID, productID uuid.UUID) (*StageResult, error)
}

// GenerationStores bundles the repositories the pipeline writes through.
type GenerationStores struct {
	Products        repositories.ProductRepository
	Characteristics repositories.CharacteristicRepository
	RiskHeaders     repositories.RiskHeaderRepository
	RiskLines       repositories.RiskLineRepository
	ControlPlans    repositories.ControlPlanRepository
	ControlItems    repositories.ControlPlanItemRepository
	Sops            repositories.SopRepository
	SopSteps        repositories.SopStepRepository
	Standards       repositories.InspectionStandardRepository
	Inspections     repositories.InspectionItemRepository
}

// GenerationOptions tunes the pipeline. Zero value means defaults: stock
// derivation rules, template narrative only.
type GenerationOptions struct {
	// Rules overrides the derivation vocabulary.
	Rules *DerivationRules

	// Narrative is the optional enhanced text generator. Nil means
	// templates only.
	Narrative llm.NarrativeGenerator

	// NarrativeTimeout bounds each enhanced-generator call.
	NarrativeTimeout time.Duration
}

type generationService struct {
	stores    GenerationStores
	rules     *DerivationRules
	fallback  *llm.TemplateGenerator
	narrative llm.NarrativeGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGenerationService creates the pipeline service.
func NewGenerationService(stores GenerationStores, opts GenerationOptions, logger *zap.Logger) GenerationService {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultDerivationRules()
	}
	timeout := opts.NarrativeTimeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &generationService{
		stores:    stores,
		rules:     rules,
		fallback:  llm.NewTemplateGenerator(),
		narrative: opts.Narrative,
		timeout:   timeout,
		logger:    logger.Named("generation-service"),
	}
}

var _ GenerationService = (*generationService)(nil)

// GenerateRiskAnalysis implements stage 1.
func (s *generationService) GenerateRiskAnalysis(ctx context.Context, productID uuid.UUID) (*StageResult, error) {
	product, err := s.stores.Products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	chars, err := s.stores.Characteristics.GetByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load characteristics: %w", err)
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("product %s has no characteristics: %w", productID, apperrors.ErrNoInputData)
	}

	// Existence check. Not atomic with the insert below.
	existing, err := s.stores.RiskHeaders.GetByProduct(ctx, productID)
	if err == nil {
		lines, err := s.stores.RiskLines.GetByHeader(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("load existing risk lines: %w", err)
		}
		return &StageResult{
			CreatedID:       existing.ID,
			ItemCount:       len(lines),
			LinkedParentIDs: []uuid.UUID{productID},
			Existed:         true,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing risk header: %w", err)
	}

	header := &models.RiskHeader{
		ProductID: productID,
		DocNumber: "PFMEA-" + product.PartNumber,
	}
	if err := s.stores.RiskHeaders.Create(ctx, header); err != nil {
		return nil, fmt.Errorf("create risk header: %w", err)
	}

	for _, c := range chars {
		line := s.deriveRiskLine(ctx, product, header.ID, c)
		if err := s.stores.RiskLines.Create(ctx, line); err != nil {
			// All-or-nothing for the stage: drop the new header, lines
			// cascade with it.
			if delErr := s.stores.RiskHeaders.Delete(ctx, header.ID); delErr != nil {
				s.logger.Error("Rollback of risk header failed",
					zap.String("header_id", header.ID.String()),
					zap.Error(delErr))
			}
			return nil, fmt.Errorf("insert risk line for characteristic %s: %v: %w",
				c.ID, err, apperrors.ErrPartialInsert)
		}
	}

	s.logger.Info("Generated risk analysis",
		zap.String("product_id", productID.String()),
		zap.String("header_id", header.ID.String()),
		zap.Int("lines", len(chars)))

	return &StageResult{
		CreatedID:       header.ID,
		ItemCount:       len(chars),
		LinkedParentIDs: []uuid.UUID{productID},
	}, nil
}

// deriveRiskLine builds one PFMEA line from a characteristic using the
// derivation tables and the action priority decision table.
func (s *generationService) deriveRiskLine(ctx context.Context, product *models.Product, headerID uuid.UUID, c *models.Characteristic) *models.RiskLine {
	class := s.rules.Classify(c.Name)
	tmpl := s.rules.Template(class)

	severity := riskpriority.Clamp(s.rules.Severity(c.Category, c.Name))
	occurrence := riskpriority.Clamp(s.rules.Occurrence(class))
	method := ""
	if c.MeasurementMethod != nil {
		method = *c.MeasurementMethod
	}
	detection := riskpriority.Clamp(s.rules.Detection(method))

	priority := riskpriority.ActionPriority(severity, occurrence, detection)

	effect := s.resolveNarrative(ctx, llm.Request{
		Field:              llm.FieldFailureEffect,
		CharacteristicName: c.Name,
		Category:           c.Category,
		FailureMode:        tmpl.FailureMode,
		ProcessName:        product.ProcessName,
	})
	action := s.resolveNarrative(ctx, llm.Request{
		Field:              llm.FieldRecommendedAction,
		CharacteristicName: c.Name,
		Category:           c.Category,
		FailureMode:        tmpl.FailureMode,
		ProcessName:        product.ProcessName,
		Priority:           priority,
	})

	return &models.RiskLine{
		HeaderID:          headerID,
		CharacteristicID:  c.ID,
		ProcessStep:       product.ProcessName,
		FailureMode:       tmpl.FailureMode,
		FailureEffect:     effect,
		FailureCause:      tmpl.FailureCause,
		PreventionControl: tmpl.PreventionControl,
		DetectionControl:  tmpl.DetectionControl,
		Severity:          severity,
		Occurrence:        occurrence,
		Detection:         detection,
		RPN:               riskpriority.RPN(severity, occurrence, detection),
		Priority:          priority,
		RecommendedAction: action,
	}
}

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/repositories"
)

// DocumentKind names one of the four generated document types.
type DocumentKind string

const (
	KindRiskAnalysis       DocumentKind = "risk-analysis"
	KindControlPlan        DocumentKind = "control-plan"
	KindSop                DocumentKind = "sop"
	KindInspectionStandard DocumentKind = "inspection-standard"
)

// RiskAnalysisDoc is a risk header with its lines.
type RiskAnalysisDoc struct {
	Header *models.RiskHeader `json:"header"`
	Lines  []*models.RiskLine `json:"lines"`
}

// ControlPlanDoc is a control plan with its items.
type ControlPlanDoc struct {
	Plan  *models.ControlPlan       `json:"plan"`
	Items []*models.ControlPlanItem `json:"items"`
}

// SopDoc is a work instruction with its steps.
type SopDoc struct {
	Sop   *models.Sop       `json:"sop"`
	Steps []*models.SopStep `json:"steps"`
}

// InspectionDoc is an inspection standard with its items.
type InspectionDoc struct {
	Standard *models.InspectionStandard `json:"standard"`
	Items    []*models.InspectionItem   `json:"items"`
}

// DocumentService reads generated documents with their rows and applies
// status transitions. Transitions are monotonic draft -> review ->
// approved; the only backward edge is the explicit return to draft.
type DocumentService interface {
	GetRiskAnalysis(ctx context.Context, id uuid.UUID) (*RiskAnalysisDoc, error)
	GetControlPlan(ctx context.Context, id uuid.UUID) (*ControlPlanDoc, error)
	GetSop(ctx context.Context, id uuid.UUID) (*SopDoc, error)
	GetInspectionStandard(ctx context.Context, id uuid.UUID) (*InspectionDoc, error)

	// UpdateStatus moves a document to the requested status, rejecting
	// transitions outside the allowed edges with ErrInvalidTransition.
	UpdateStatus(ctx context.Context, kind DocumentKind, id uuid.UUID, status models.DocumentStatus) error
}

// DocumentStores bundles the repositories the document service reads.
type DocumentStores struct {
	RiskHeaders  repositories.RiskHeaderRepository
	RiskLines    repositories.RiskLineRepository
	ControlPlans repositories.ControlPlanRepository
	ControlItems repositories.ControlPlanItemRepository
	Sops         repositories.SopRepository
	SopSteps     repositories.SopStepRepository
	Standards    repositories.InspectionStandardRepository
	Inspections  repositories.InspectionItemRepository
}

type documentService struct {
	stores DocumentStores
	logger *zap.Logger
}

// NewDocumentService creates the document read/status service.
func NewDocumentService(stores DocumentStores, logger *zap.Logger) DocumentService {
	return &documentService{
		stores: stores,
		logger: logger.Named("document-service"),
	}
}

var _ DocumentService = (*documentService)(nil)

func (s *documentService) GetRiskAnalysis(ctx context.Context, id uuid.UUID) (*RiskAnalysisDoc, error) {
	header, err := s.stores.RiskHeaders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load risk header: %w", err)
	}
	lines, err := s.stores.RiskLines.GetByHeader(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load risk lines: %w", err)
	}
	return &RiskAnalysisDoc{Header: header, Lines: lines}, nil
}

func (s *documentService) GetControlPlan(ctx context.Context, id uuid.UUID) (*ControlPlanDoc, error) {
	plan, err := s.stores.ControlPlans.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load control plan: %w", err)
	}
	items, err := s.stores.ControlItems.GetByPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load control plan items: %w", err)
	}
	return &ControlPlanDoc{Plan: plan, Items: items}, nil
}

func (s *documentService) GetSop(ctx context.Context, id uuid.UUID) (*SopDoc, error) {
	sop, err := s.stores.Sops.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load sop: %w", err)
	}
	steps, err := s.stores.SopSteps.GetBySop(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load sop steps: %w", err)
	}
	return &SopDoc{Sop: sop, Steps: steps}, nil
}

func (s *documentService) GetInspectionStandard(ctx context.Context, id uuid.UUID) (*InspectionDoc, error) {
	std, err := s.stores.Standards.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load inspection standard: %w", err)
	}
	items, err := s.stores.Inspections.GetByStandard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load inspection items: %w", err)
	}
	return &InspectionDoc{Standard: std, Items: items}, nil
}

func (s *documentService) UpdateStatus(ctx context.Context, kind DocumentKind, id uuid.UUID, status models.DocumentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown document status %q: %w", status, apperrors.ErrInvalidTransition)
	}

	current, err := s.currentStatus(ctx, kind, id)
	if err != nil {
		return err
	}

	if !models.CanTransition(current, status) {
		return fmt.Errorf("transition %s -> %s not allowed: %w", current, status, apperrors.ErrInvalidTransition)
	}

	if err := s.applyStatus(ctx, kind, id, status); err != nil {
		return err
	}

	s.logger.Info("Document status updated",
		zap.String("kind", string(kind)),
		zap.String("id", id.String()),
		zap.String("from", string(current)),
		zap.String("to", string(status)))
	return nil
}

func (s *documentService) currentStatus(ctx context.Context, kind DocumentKind, id uuid.UUID) (models.DocumentStatus, error) {
	switch kind {
	case KindRiskAnalysis:
		header, err := s.stores.RiskHeaders.Get(ctx, id)
		if err != nil {
			return "", fmt.Errorf("load risk header: %w", err)
		}
		return header.Status, nil
	case KindControlPlan:
		plan, err := s.stores.ControlPlans.Get(ctx, id)
		if err != nil {
			return "", fmt.Errorf("load control plan: %w", err)
		}
		return plan.Status, nil
	case KindSop:
		sop, err := s.stores.Sops.Get(ctx, id)
		if err != nil {
			return "", fmt.Errorf("load sop: %w", err)
		}
		return sop.Status, nil
	case KindInspectionStandard:
		std, err := s.stores.Standards.Get(ctx, id)
		if err != nil {
			return "", fmt.Errorf("load inspection standard: %w", err)
		}
		return std.Status, nil
	default:
		return "", fmt.Errorf("unknown document kind %q: %w", kind, apperrors.ErrNotFound)
	}
}

func (s *documentService) applyStatus(ctx context.Context, kind DocumentKind, id uuid.UUID, status models.DocumentStatus) error {
	switch kind {
	case KindRiskAnalysis:
		return s.stores.RiskHeaders.UpdateStatus(ctx, id, status)
	case KindControlPlan:
		return s.stores.ControlPlans.UpdateStatus(ctx, id, status)
	case KindSop:
		return s.stores.Sops.UpdateStatus(ctx, id, status)
	case KindInspectionStandard:
		return s.stores.Standards.UpdateStatus(ctx, id, status)
	default:
		return fmt.Errorf("unknown document kind %q: %w", kind, apperrors.ErrNotFound)
	}
}

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/repositories"
)

// CheckRequest identifies the document chain to audit. At least one of
// the two ids is required; when only the control plan is given its risk
// header is resolved by parent lookup.
type CheckRequest struct {
	RiskHeaderID  *uuid.UUID `json:"risk_header_id,omitempty"`
	ControlPlanID *uuid.UUID `json:"control_plan_id,omitempty"`
}

// CheckResult is the consistency report: the full issue list and the
// per-severity summary. Counts always sum to the issue count.
type CheckResult struct {
	Issues  []models.Issue      `json:"issues"`
	Summary models.IssueSummary `json:"summary"`
}

// ConsistencyService audits a document chain for missing links,
// inconsistent sampling and incomplete content.
type ConsistencyService interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)
}

// ConsistencyStores bundles the repositories the snapshot loader reads.
type ConsistencyStores struct {
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

type consistencyService struct {
	stores ConsistencyStores
	logger *zap.Logger
}

// NewConsistencyService creates the consistency checker.
func NewConsistencyService(stores ConsistencyStores, logger *zap.Logger) ConsistencyService {
	return &consistencyService{
		stores: stores,
		logger: logger.Named("consistency-service"),
	}
}

var _ ConsistencyService = (*consistencyService)(nil)

func (s *consistencyService) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	headerID, err := s.resolveHeaderID(ctx, req)
	if err != nil {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	issues := EvaluateRules(snap)
	summary := models.Summarize(issues)

	s.logger.Info("Consistency check complete",
		zap.String("risk_header_id", headerID.String()),
		zap.Int("issues", len(issues)),
		zap.Int("high", summary.High),
		zap.Int("medium", summary.Medium),
		zap.Int("low", summary.Low))

	return &CheckResult{Issues: issues, Summary: summary}, nil
}

func (s *consistencyService) resolveHeaderID(ctx context.Context, req CheckRequest) (uuid.UUID, error) {
	if req.RiskHeaderID != nil {
		return *req.RiskHeaderID, nil
	}
	if req.ControlPlanID == nil {
		return uuid.Nil, fmt.Errorf("either risk_header_id or control_plan_id is required")
	}

	plan, err := s.stores.ControlPlans.Get(ctx, *req.ControlPlanID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve control plan parent: %w", err)
	}
	return plan.RiskHeaderID, nil
}

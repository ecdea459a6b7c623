package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/services"
)

// GenerationResponse is the stage result envelope. Existed distinguishes
// a fresh generation from an idempotent re-run.
type GenerationResponse struct {
	Success         bool        `json:"success"`
	CreatedID       uuid.UUID   `json:"created_id"`
	ItemCount       int         `json:"item_count"`
	LinkedParentIDs []uuid.UUID `json:"linked_parent_ids"`
	Existed         bool        `json:"existed"`
}

// GenerationHandler exposes the four pipeline stages.
type GenerationHandler struct {
	generation services.GenerationService
	logger     *zap.Logger
}

// NewGenerationHandler creates a new generation handler.
func NewGenerationHandler(generation services.GenerationService, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{generation: generation, logger: logger}
}

// RegisterRoutes registers the generation routes on the given mux.
func (h *GenerationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/products/{pid}/generate/risk-analysis", h.GenerateRiskAnalysis)
	mux.HandleFunc("POST /api/risk-headers/{hid}/generate/control-plan", h.GenerateControlPlan)
	mux.HandleFunc("POST /api/control-plans/{cid}/generate/sop", h.GenerateSop)
	mux.HandleFunc("POST /api/control-plans/{cid}/generate/inspection-standard", h.GenerateInspectionStandard)
}

// GenerateRiskAnalysis handles POST /api/products/{pid}/generate/risk-analysis
func (h *GenerationHandler) GenerateRiskAnalysis(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.generation.GenerateRiskAnalysis(r.Context(), productID)
	if err != nil {
		h.logger.Error("Risk analysis generation failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		ServiceError(w, err, "generate_risk_analysis_failed", h.logger)
		return
	}

	h.writeStageResult(w, result)
}

// GenerateControlPlan handles POST /api/risk-headers/{hid}/generate/control-plan
// The product id rides in the query string so the stage can verify the
// parent chain.
func (h *GenerationHandler) GenerateControlPlan(w http.ResponseWriter, r *http.Request) {
	headerID, ok := ParseRiskHeaderID(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := h.queryProductID(w, r)
	if !ok {
		return
	}

	result, err := h.generation.GenerateControlPlan(r.Context(), headerID, productID)
	if err != nil {
		h.logger.Error("Control plan generation failed",
			zap.String("risk_header_id", headerID.String()),
			zap.Error(err))
		ServiceError(w, err, "generate_control_plan_failed", h.logger)
		return
	}

	h.writeStageResult(w, result)
}

// GenerateSop handles POST /api/control-plans/{cid}/generate/sop
func (h *GenerationHandler) GenerateSop(w http.ResponseWriter, r *http.Request) {
	planID, ok := ParseControlPlanID(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := h.queryProductID(w, r)
	if !ok {
		return
	}

	result, err := h.generation.GenerateSop(r.Context(), planID, productID)
	if err != nil {
		h.logger.Error("Sop generation failed",
			zap.String("control_plan_id", planID.String()),
			zap.Error(err))
		ServiceError(w, err, "generate_sop_failed", h.logger)
		return
	}

	h.writeStageResult(w, result)
}

// GenerateInspectionStandard handles POST /api/control-plans/{cid}/generate/inspection-standard
func (h *GenerationHandler) GenerateInspectionStandard(w http.ResponseWriter, r *http.Request) {
	planID, ok := ParseControlPlanID(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := h.queryProductID(w, r)
	if !ok {
		return
	}

	result, err := h.generation.GenerateInspectionStandard(r.Context(), planID, productID)
	if err != nil {
		h.logger.Error("Inspection standard generation failed",
			zap.String("control_plan_id", planID.String()),
			zap.Error(err))
		ServiceError(w, err, "generate_inspection_standard_failed", h.logger)
		return
	}

	h.writeStageResult(w, result)
}

func (h *GenerationHandler) queryProductID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get("product_id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_product_id", "product_id query parameter is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

func (h *GenerationHandler) writeStageResult(w http.ResponseWriter, result *services.StageResult) {
	status := http.StatusCreated
	if result.Existed {
		status = http.StatusOK
	}
	response := GenerationResponse{
		Success:         true,
		CreatedID:       result.CreatedID,
		ItemCount:       result.ItemCount,
		LinkedParentIDs: result.LinkedParentIDs,
		Existed:         result.Existed,
	}
	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

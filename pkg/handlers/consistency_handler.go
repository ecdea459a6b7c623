package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/services"
)

// ConsistencyCheckResponse is the consistency report envelope.
type ConsistencyCheckResponse struct {
	Success bool                `json:"success"`
	Issues  []models.Issue      `json:"issues"`
	Summary models.IssueSummary `json:"summary"`
}

// ConsistencyHandler exposes the document chain audit.
type ConsistencyHandler struct {
	consistency services.ConsistencyService
	logger      *zap.Logger
}

// NewConsistencyHandler creates a new consistency handler.
func NewConsistencyHandler(consistency services.ConsistencyService, logger *zap.Logger) *ConsistencyHandler {
	return &ConsistencyHandler{consistency: consistency, logger: logger}
}

// RegisterRoutes registers the consistency routes on the given mux.
func (h *ConsistencyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/consistency/check", h.Check)
}

// Check handles POST /api/consistency/check
func (h *ConsistencyHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req services.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.RiskHeaderID == nil && req.ControlPlanID == nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_target",
			"either risk_header_id or control_plan_id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.consistency.Check(r.Context(), req)
	if err != nil {
		h.logger.Error("Consistency check failed", zap.Error(err))
		ServiceError(w, err, "consistency_check_failed", h.logger)
		return
	}

	// Issues marshals as [] rather than null when empty.
	issues := result.Issues
	if issues == nil {
		issues = []models.Issue{}
	}

	response := ConsistencyCheckResponse{
		Success: true,
		Issues:  issues,
		Summary: result.Summary,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/services"
)

// StatusUpdateRequest for PATCH .../status
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// DocumentsHandler serves generated documents and their status
// transitions.
type DocumentsHandler struct {
	documents services.DocumentService
	logger    *zap.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(documents services.DocumentService, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{documents: documents, logger: logger}
}

// RegisterRoutes registers the document routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/risk-analyses/{did}", h.GetRiskAnalysis)
	mux.HandleFunc("GET /api/control-plans/{did}", h.GetControlPlan)
	mux.HandleFunc("GET /api/sops/{did}", h.GetSop)
	mux.HandleFunc("GET /api/inspection-standards/{did}", h.GetInspectionStandard)

	mux.HandleFunc("PATCH /api/risk-analyses/{did}/status", h.statusUpdater(services.KindRiskAnalysis))
	mux.HandleFunc("PATCH /api/control-plans/{did}/status", h.statusUpdater(services.KindControlPlan))
	mux.HandleFunc("PATCH /api/sops/{did}/status", h.statusUpdater(services.KindSop))
	mux.HandleFunc("PATCH /api/inspection-standards/{did}/status", h.statusUpdater(services.KindInspectionStandard))
}

// GetRiskAnalysis handles GET /api/risk-analyses/{did}
func (h *DocumentsHandler) GetRiskAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documents.GetRiskAnalysis(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "get_risk_analysis_failed", h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: doc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetControlPlan handles GET /api/control-plans/{did}
func (h *DocumentsHandler) GetControlPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documents.GetControlPlan(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "get_control_plan_failed", h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: doc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetSop handles GET /api/sops/{did}
func (h *DocumentsHandler) GetSop(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documents.GetSop(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "get_sop_failed", h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: doc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetInspectionStandard handles GET /api/inspection-standards/{did}
func (h *DocumentsHandler) GetInspectionStandard(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documents.GetInspectionStandard(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "get_inspection_standard_failed", h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: doc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// statusUpdater builds the PATCH .../status handler for one document
// kind.
func (h *DocumentsHandler) statusUpdater(kind services.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ParseDocumentID(w, r, h.logger)
		if !ok {
			return
		}

		var req StatusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		err := h.documents.UpdateStatus(r.Context(), kind, id, models.DocumentStatus(req.Status))
		if err != nil {
			h.logger.Warn("Status update rejected",
				zap.String("kind", string(kind)),
				zap.String("document_id", id.String()),
				zap.String("requested", req.Status),
				zap.Error(err))
			ServiceError(w, err, "update_status_failed", h.logger)
			return
		}

		if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "status updated"}); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
	}
}

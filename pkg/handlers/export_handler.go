package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/export"
	"github.com/tracewright/apqp-engine/pkg/services"
)

// ExportHandler serves XLSX renditions of generated documents and
// consistency reports.
type ExportHandler struct {
	documents   services.DocumentService
	consistency services.ConsistencyService
	logger      *zap.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(
	documents services.DocumentService,
	consistency services.ConsistencyService,
	logger *zap.Logger,
) *ExportHandler {
	return &ExportHandler{
		documents:   documents,
		consistency: consistency,
		logger:      logger,
	}
}

// RegisterRoutes registers the export routes on the given mux.
func (h *ExportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/control-plans/{did}/export", h.ExportControlPlan)
	mux.HandleFunc("GET /api/inspection-standards/{did}/export", h.ExportInspectionStandard)
	mux.HandleFunc("GET /api/risk-headers/{hid}/consistency-report", h.ExportConsistencyReport)
}

// ExportControlPlan handles GET /api/control-plans/{did}/export
func (h *ExportHandler) ExportControlPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documents.GetControlPlan(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "get_control_plan_failed", h.logger)
		return
	}

	f, err := export.ControlPlanWorkbook(doc.Plan, doc.Items)
	if err != nil {
		h.logger.Error("Control plan export failed",
			zap.String("control_plan_id", id.String()),
			zap.Error(err))
		ServiceError(w, err, "export_control_plan_failed", h.logger)
		return
	}
	h.writeWorkbook(w, f, doc.Plan.DocNumber)
}

// ExportInspectionStandard handles GET /api/inspection-standards/{did}/export
func (h *ExportHandler) ExportInspectionStandard(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documents.GetInspectionStandard(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "get_inspection_standard_failed", h.logger)
		return
	}

	f, err := export.InspectionStandardWorkbook(doc.Standard, doc.Items)
	if err != nil {
		h.logger.Error("Inspection standard export failed",
			zap.String("standard_id", id.String()),
			zap.Error(err))
		ServiceError(w, err, "export_inspection_standard_failed", h.logger)
		return
	}
	h.writeWorkbook(w, f, doc.Standard.DocNumber)
}

// ExportConsistencyReport handles GET /api/risk-headers/{hid}/consistency-report
func (h *ExportHandler) ExportConsistencyReport(w http.ResponseWriter, r *http.Request) {
	headerID, ok := ParseRiskHeaderID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.consistency.Check(r.Context(), services.CheckRequest{RiskHeaderID: &headerID})
	if err != nil {
		ServiceError(w, err, "consistency_check_failed", h.logger)
		return
	}

	f, err := export.ConsistencyReportWorkbook(result.Issues, result.Summary)
	if err != nil {
		h.logger.Error("Consistency report export failed",
			zap.String("risk_header_id", headerID.String()),
			zap.Error(err))
		ServiceError(w, err, "export_consistency_report_failed", h.logger)
		return
	}
	h.writeWorkbook(w, f, "consistency-"+shortID(headerID))
}

func (h *ExportHandler) writeWorkbook(w http.ResponseWriter, f *excelize.File, name string) {
	defer func() {
		if err := f.Close(); err != nil {
			h.logger.Error("Failed to close workbook", zap.Error(err))
		}
	}()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s.xlsx", strings.ToLower(name)))

	if err := f.Write(w); err != nil {
		h.logger.Error("Failed to write workbook", zap.Error(err))
	}
}

func shortID(id uuid.UUID) string {
	return strings.SplitN(id.String(), "-", 2)[0]
}

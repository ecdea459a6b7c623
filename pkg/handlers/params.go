package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseProductID extracts and validates the product ID from the request
// path. Returns the parsed UUID and true on success, or uuid.Nil and
// false after writing an error response.
// Expects path parameter: pid
func ParseProductID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "pid", "invalid_product_id", "Invalid product ID format", logger)
}

// ParseCharacteristicID extracts and validates the characteristic ID from
// the request path.
// Expects path parameter: chid
func ParseCharacteristicID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "chid", "invalid_characteristic_id", "Invalid characteristic ID format", logger)
}

// ParseRiskHeaderID extracts and validates the risk header ID from the
// request path.
// Expects path parameter: hid
func ParseRiskHeaderID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "hid", "invalid_risk_header_id", "Invalid risk header ID format", logger)
}

// ParseControlPlanID extracts and validates the control plan ID from the
// request path.
// Expects path parameter: cid
func ParseControlPlanID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "cid", "invalid_control_plan_id", "Invalid control plan ID format", logger)
}

// ParseDocumentID extracts and validates a generic document ID from the
// request path.
// Expects path parameter: did
func ParseDocumentID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "did", "invalid_document_id", "Invalid document ID format", logger)
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

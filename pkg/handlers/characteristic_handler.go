package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/repositories"
)

// CharacteristicListResponse for GET /api/products/{pid}/characteristics
type CharacteristicListResponse struct {
	Characteristics []*models.Characteristic `json:"characteristics"`
	Total           int                      `json:"total"`
}

// CharacteristicRequest for POST and PUT on characteristics.
type CharacteristicRequest struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Category          string   `json:"category"`
	Specification     *string  `json:"specification,omitempty"`
	LSL               *float64 `json:"lsl,omitempty"`
	USL               *float64 `json:"usl,omitempty"`
	Unit              *string  `json:"unit,omitempty"`
	MeasurementMethod *string  `json:"measurement_method,omitempty"`
}

// CharacteristicsHandler handles characteristic CRUD requests.
type CharacteristicsHandler struct {
	products        repositories.ProductRepository
	characteristics repositories.CharacteristicRepository
	logger          *zap.Logger
}

// NewCharacteristicsHandler creates a new characteristics handler.
func NewCharacteristicsHandler(
	products repositories.ProductRepository,
	characteristics repositories.CharacteristicRepository,
	logger *zap.Logger,
) *CharacteristicsHandler {
	return &CharacteristicsHandler{
		products:        products,
		characteristics: characteristics,
		logger:          logger,
	}
}

// RegisterRoutes registers the characteristic routes on the given mux.
func (h *CharacteristicsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/products/{pid}/characteristics", h.Create)
	mux.HandleFunc("GET /api/products/{pid}/characteristics", h.List)
	mux.HandleFunc("PUT /api/characteristics/{chid}", h.Update)
	mux.HandleFunc("DELETE /api/characteristics/{chid}", h.Delete)
}

// Create handles POST /api/products/{pid}/characteristics
func (h *CharacteristicsHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req CharacteristicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if msg, ok := validateCharacteristic(&req); !ok {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", msg); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// The parent must exist; a dangling product id is a 404, not a
	// silently orphaned row.
	if _, err := h.products.Get(r.Context(), productID); err != nil {
		ServiceError(w, err, "get_product_failed", h.logger)
		return
	}

	char := &models.Characteristic{
		ProductID:         productID,
		Name:              req.Name,
		Type:              models.CharacteristicType(req.Type),
		Category:          models.CharacteristicCategory(req.Category),
		Specification:     req.Specification,
		LSL:               req.LSL,
		USL:               req.USL,
		Unit:              req.Unit,
		MeasurementMethod: req.MeasurementMethod,
	}
	if err := h.characteristics.Create(r.Context(), char); err != nil {
		h.logger.Error("Failed to create characteristic",
			zap.String("product_id", productID.String()),
			zap.String("name", req.Name),
			zap.Error(err))
		ServiceError(w, err, "create_characteristic_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: char}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/products/{pid}/characteristics
func (h *CharacteristicsHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	chars, err := h.characteristics.GetByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to list characteristics",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		ServiceError(w, err, "list_characteristics_failed", h.logger)
		return
	}

	response := CharacteristicListResponse{Characteristics: chars, Total: len(chars)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/characteristics/{chid}
func (h *CharacteristicsHandler) Update(w http.ResponseWriter, r *http.Request) {
	charID, ok := ParseCharacteristicID(w, r, h.logger)
	if !ok {
		return
	}

	var req CharacteristicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if msg, ok := validateCharacteristic(&req); !ok {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", msg); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	char, err := h.characteristics.Get(r.Context(), charID)
	if err != nil {
		ServiceError(w, err, "get_characteristic_failed", h.logger)
		return
	}

	char.Name = req.Name
	char.Type = models.CharacteristicType(req.Type)
	char.Category = models.CharacteristicCategory(req.Category)
	char.Specification = req.Specification
	char.LSL = req.LSL
	char.USL = req.USL
	char.Unit = req.Unit
	char.MeasurementMethod = req.MeasurementMethod

	if err := h.characteristics.Update(r.Context(), char); err != nil {
		h.logger.Error("Failed to update characteristic",
			zap.String("characteristic_id", charID.String()),
			zap.Error(err))
		ServiceError(w, err, "update_characteristic_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: char}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/characteristics/{chid}
func (h *CharacteristicsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	charID, ok := ParseCharacteristicID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.characteristics.Delete(r.Context(), charID); err != nil {
		ServiceError(w, err, "delete_characteristic_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "characteristic deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func validateCharacteristic(req *CharacteristicRequest) (string, bool) {
	if req.Name == "" {
		return "name is required", false
	}
	if !models.CharacteristicType(req.Type).Valid() {
		return "type must be product or process", false
	}
	if !models.CharacteristicCategory(req.Category).Valid() {
		return "category must be critical, major or minor", false
	}
	if (req.LSL == nil) != (req.USL == nil) {
		return "lsl and usl must be set together", false
	}
	if req.LSL != nil && *req.LSL > *req.USL {
		return "lsl must not exceed usl", false
	}
	return "", true
}

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/repositories"
)

// ProductListResponse for GET /api/products
type ProductListResponse struct {
	Products []*models.Product `json:"products"`
	Total    int               `json:"total"`
}

// ProductRequest for POST and PUT on products.
type ProductRequest struct {
	PartNumber   string `json:"part_number"`
	Name         string `json:"name"`
	CustomerName string `json:"customer_name"`
	VehicleModel string `json:"vehicle_model"`
	ProcessName  string `json:"process_name"`
}

// ProductsHandler handles product CRUD requests.
type ProductsHandler struct {
	products repositories.ProductRepository
	logger   *zap.Logger
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(products repositories.ProductRepository, logger *zap.Logger) *ProductsHandler {
	return &ProductsHandler{products: products, logger: logger}
}

// RegisterRoutes registers the product routes on the given mux.
func (h *ProductsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/products", h.Create)
	mux.HandleFunc("GET /api/products", h.List)
	mux.HandleFunc("GET /api/products/{pid}", h.Get)
	mux.HandleFunc("PUT /api/products/{pid}", h.Update)
	mux.HandleFunc("DELETE /api/products/{pid}", h.Delete)
}

// Create handles POST /api/products
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.PartNumber == "" || req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "part_number and name are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	product := &models.Product{
		PartNumber:   req.PartNumber,
		Name:         req.Name,
		CustomerName: req.CustomerName,
		VehicleModel: req.VehicleModel,
		ProcessName:  req.ProcessName,
	}
	if err := h.products.Create(r.Context(), product); err != nil {
		h.logger.Error("Failed to create product",
			zap.String("part_number", req.PartNumber),
			zap.Error(err))
		ServiceError(w, err, "create_product_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		ServiceError(w, err, "list_products_failed", h.logger)
		return
	}

	response := ProductListResponse{Products: products, Total: len(products)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/products/{pid}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		ServiceError(w, err, "get_product_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/products/{pid}
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		ServiceError(w, err, "get_product_failed", h.logger)
		return
	}

	product.PartNumber = req.PartNumber
	product.Name = req.Name
	product.CustomerName = req.CustomerName
	product.VehicleModel = req.VehicleModel
	product.ProcessName = req.ProcessName

	if err := h.products.Update(r.Context(), product); err != nil {
		h.logger.Error("Failed to update product",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		ServiceError(w, err, "update_product_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/products/{pid}
// Deleting a product cascades through every generated document below it.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), productID); err != nil {
		ServiceError(w, err, "delete_product_failed", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "product deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

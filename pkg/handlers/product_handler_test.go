package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/products", ProductRequest{
		PartNumber:   "45326-4G100",
		Name:         "드라이브 샤프트",
		CustomerName: "현대자동차",
		ProcessName:  "CNC 선삭",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ApiResponse
	decodeJSON(t, rec, &resp)
	assert.True(t, resp.Success)
}

func TestCreateProductValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/products", ProductRequest{Name: "이름만 있음"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts(t *testing.T) {
	srv := newTestServer(t)
	srv.seedProduct(t)

	rec := srv.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    ProductListResponse `json:"data"`
	}
	decodeJSON(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Total)
}

func TestGetProductNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductBadID(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	srv := newTestServer(t)
	product := srv.seedProduct(t)

	rec := srv.do(t, http.MethodDelete, "/api/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/products/"+product.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

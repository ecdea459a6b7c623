package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestCreateCharacteristic(t *testing.T) {
	srv := newTestServer(t)
	product := srv.seedProduct(t)

	rec := srv.do(t, http.MethodPost, "/api/products/"+product.ID.String()+"/characteristics",
		CharacteristicRequest{
			Name:     "외경 치수",
			Type:     "product",
			Category: "critical",
			LSL:      floatPtr(9.8),
			USL:      floatPtr(10.2),
		})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ApiResponse
	decodeJSON(t, rec, &resp)
	assert.True(t, resp.Success)
}

func TestCreateCharacteristicUnknownProduct(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/products/"+uuid.NewString()+"/characteristics",
		CharacteristicRequest{Name: "외경 치수", Type: "product", Category: "major"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCharacteristicValidation(t *testing.T) {
	srv := newTestServer(t)
	product := srv.seedProduct(t)
	base := "/api/products/" + product.ID.String() + "/characteristics"

	tests := []struct {
		name string
		req  CharacteristicRequest
	}{
		{"missing name", CharacteristicRequest{Type: "product", Category: "major"}},
		{"bad type", CharacteristicRequest{Name: "외경", Type: "shape", Category: "major"}},
		{"bad category", CharacteristicRequest{Name: "외경", Type: "product", Category: "urgent"}},
		{"half tolerance", CharacteristicRequest{Name: "외경", Type: "product", Category: "major", LSL: floatPtr(1)}},
		{"inverted tolerance", CharacteristicRequest{Name: "외경", Type: "product", Category: "major", LSL: floatPtr(2), USL: floatPtr(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, base, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListCharacteristics(t *testing.T) {
	srv := newTestServer(t)
	product := srv.seedProduct(t)

	for _, name := range []string{"외경 치수", "표면 외관"} {
		rec := srv.do(t, http.MethodPost, "/api/products/"+product.ID.String()+"/characteristics",
			CharacteristicRequest{Name: name, Type: "product", Category: "major"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := srv.do(t, http.MethodGet, "/api/products/"+product.ID.String()+"/characteristics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                       `json:"success"`
		Data    CharacteristicListResponse `json:"data"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, 2, resp.Data.Total)
}

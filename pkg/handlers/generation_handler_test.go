package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/apqp-engine/pkg/models"
)

// seedProductWithCharacteristics prepares a product ready for stage 1.
func seedProductWithCharacteristics(t *testing.T, srv *testServer) *models.Product {
	t.Helper()
	product := srv.seedProduct(t)
	srv.seedCharacteristic(t, &models.Characteristic{
		ProductID: product.ID,
		Name:      "외경 치수",
		Type:      models.CharacteristicProduct,
		Category:  models.CategoryCritical,
		LSL:       floatPtr(9.8),
		USL:       floatPtr(10.2),
	})
	srv.seedCharacteristic(t, &models.Characteristic{
		ProductID: product.ID,
		Name:      "표면 외관",
		Type:      models.CharacteristicProduct,
		Category:  models.CategoryMinor,
	})
	return product
}

func TestGeneratePipelineOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	product := seedProductWithCharacteristics(t, srv)
	pid := product.ID.String()

	// Stage 1.
	rec := srv.do(t, http.MethodPost, "/api/products/"+pid+"/generate/risk-analysis", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var stage1 GenerationResponse
	decodeJSON(t, rec, &stage1)
	assert.True(t, stage1.Success)
	assert.False(t, stage1.Existed)
	assert.Equal(t, 2, stage1.ItemCount)
	assert.Equal(t, []uuid.UUID{product.ID}, stage1.LinkedParentIDs)

	// Stage 2.
	rec = srv.do(t, http.MethodPost,
		"/api/risk-headers/"+stage1.CreatedID.String()+"/generate/control-plan?product_id="+pid, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var stage2 GenerationResponse
	decodeJSON(t, rec, &stage2)
	assert.Equal(t, 4, stage2.ItemCount)

	// Stages 3 and 4.
	rec = srv.do(t, http.MethodPost,
		"/api/control-plans/"+stage2.CreatedID.String()+"/generate/sop?product_id="+pid, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodPost,
		"/api/control-plans/"+stage2.CreatedID.String()+"/generate/inspection-standard?product_id="+pid, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var stage4 GenerationResponse
	decodeJSON(t, rec, &stage4)
	assert.Equal(t, 2, stage4.ItemCount)
}

func TestGenerateRiskAnalysisIdempotentOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	product := seedProductWithCharacteristics(t, srv)
	path := "/api/products/" + product.ID.String() + "/generate/risk-analysis"

	rec := srv.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var first GenerationResponse
	decodeJSON(t, rec, &first)

	// Re-run returns 200 with the same document.
	rec = srv.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second GenerationResponse
	decodeJSON(t, rec, &second)
	assert.True(t, second.Existed)
	assert.Equal(t, first.CreatedID, second.CreatedID)
}

func TestGenerateRiskAnalysisUnknownProductOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/products/"+uuid.NewString()+"/generate/risk-analysis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateRiskAnalysisNoInputOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	product := srv.seedProduct(t)

	rec := srv.do(t, http.MethodPost, "/api/products/"+product.ID.String()+"/generate/risk-analysis", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerateControlPlanMissingProductQuery(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/risk-headers/"+uuid.NewString()+"/generate/control-plan", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

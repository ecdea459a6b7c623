package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestExportControlPlan(t *testing.T) {
	srv := newTestServer(t)
	product := seedProductWithCharacteristics(t, srv)
	pid := product.ID.String()

	rec := srv.do(t, http.MethodPost, "/api/products/"+pid+"/generate/risk-analysis", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var stage1 GenerationResponse
	decodeJSON(t, rec, &stage1)

	rec = srv.do(t, http.MethodPost,
		"/api/risk-headers/"+stage1.CreatedID.String()+"/generate/control-plan?product_id="+pid, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var stage2 GenerationResponse
	decodeJSON(t, rec, &stage2)

	rec = srv.do(t, http.MethodGet, "/api/control-plans/"+stage2.CreatedID.String()+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cp-45326-4g100.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestExportControlPlanNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/control-plans/"+uuid.NewString()+"/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportConsistencyReport(t *testing.T) {
	srv := newTestServer(t)
	generated := generateRiskAnalysis(t, srv)

	rec := srv.do(t, http.MethodGet,
		"/api/risk-headers/"+generated.CreatedID.String()+"/consistency-report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

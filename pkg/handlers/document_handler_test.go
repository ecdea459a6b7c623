package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/apqp-engine/pkg/services"
)

func generateRiskAnalysis(t *testing.T, srv *testServer) GenerationResponse {
	t.Helper()
	product := seedProductWithCharacteristics(t, srv)

	rec := srv.do(t, http.MethodPost, "/api/products/"+product.ID.String()+"/generate/risk-analysis", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result GenerationResponse
	decodeJSON(t, rec, &result)
	return result
}

func TestGetRiskAnalysisDocument(t *testing.T) {
	srv := newTestServer(t)
	generated := generateRiskAnalysis(t, srv)

	rec := srv.do(t, http.MethodGet, "/api/risk-analyses/"+generated.CreatedID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    services.RiskAnalysisDoc `json:"data"`
	}
	decodeJSON(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, generated.CreatedID, resp.Data.Header.ID)
	assert.Len(t, resp.Data.Lines, 2)
}

func TestGetRiskAnalysisDocumentNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/risk-analyses/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchStatus(t *testing.T) {
	srv := newTestServer(t)
	generated := generateRiskAnalysis(t, srv)
	path := "/api/risk-analyses/" + generated.CreatedID.String() + "/status"

	rec := srv.do(t, http.MethodPatch, path, StatusUpdateRequest{Status: "review"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPatch, path, StatusUpdateRequest{Status: "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPatchStatusInvalidTransition(t *testing.T) {
	srv := newTestServer(t)
	generated := generateRiskAnalysis(t, srv)
	path := "/api/risk-analyses/" + generated.CreatedID.String() + "/status"

	// draft -> approved skips review.
	rec := srv.do(t, http.MethodPatch, path, StatusUpdateRequest{Status: "approved"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPatchStatusUnknownStatus(t *testing.T) {
	srv := newTestServer(t)
	generated := generateRiskAnalysis(t, srv)
	path := "/api/risk-analyses/" + generated.CreatedID.String() + "/status"

	rec := srv.do(t, http.MethodPatch, path, StatusUpdateRequest{Status: "published"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

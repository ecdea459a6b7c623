package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/services"
)

func TestConsistencyCheckMissingTarget(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/consistency/check", services.CheckRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsistencyCheckUnknownHeader(t *testing.T) {
	srv := newTestServer(t)

	id := uuid.New()
	rec := srv.do(t, http.MethodPost, "/api/consistency/check", services.CheckRequest{RiskHeaderID: &id})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConsistencyCheck(t *testing.T) {
	srv := newTestServer(t)
	generated := generateRiskAnalysis(t, srv)

	rec := srv.do(t, http.MethodPost, "/api/consistency/check",
		services.CheckRequest{RiskHeaderID: &generated.CreatedID})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConsistencyCheckResponse
	decodeJSON(t, rec, &resp)
	assert.True(t, resp.Success)

	// Only the risk analysis exists, so the high-priority line is an
	// uncontrolled risk.
	require.NotEmpty(t, resp.Issues)
	for _, issue := range resp.Issues {
		assert.Equal(t, models.RuleUncontrolledHighRisk, issue.RuleCode)
	}
	assert.Equal(t, len(resp.Issues), resp.Summary.Total())
}

func TestConsistencyCheckEmptyIssuesMarshalsAsArray(t *testing.T) {
	srv := newTestServer(t)
	product := srv.seedProduct(t)
	srv.seedCharacteristic(t, &models.Characteristic{
		ProductID: product.ID,
		Name:      "누설량",
		Type:      models.CharacteristicProcess,
		Category:  models.CategoryMinor,
	})

	rec := srv.do(t, http.MethodPost, "/api/products/"+product.ID.String()+"/generate/risk-analysis", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var generated GenerationResponse
	decodeJSON(t, rec, &generated)

	rec = srv.do(t, http.MethodPost, "/api/consistency/check",
		services.CheckRequest{RiskHeaderID: &generated.CreatedID})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(), `"issues":[]`)
}

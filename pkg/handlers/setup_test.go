package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/config"
	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/services"
	"github.com/tracewright/apqp-engine/pkg/testhelpers"
)

// testServer wires every handler against an in-memory store.
type testServer struct {
	mux   *http.ServeMux
	store *testhelpers.MemStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := testhelpers.NewMemStore()

	generation := services.NewGenerationService(services.GenerationStores{
		Products:        store.Products(),
		Characteristics: store.Characteristics(),
		RiskHeaders:     store.RiskHeaders(),
		RiskLines:       store.RiskLines(),
		ControlPlans:    store.ControlPlans(),
		ControlItems:    store.ControlItems(),
		Sops:            store.Sops(),
		SopSteps:        store.SopSteps(),
		Standards:       store.Standards(),
		Inspections:     store.Inspections(),
	}, services.GenerationOptions{}, logger)

	consistency := services.NewConsistencyService(services.ConsistencyStores{
		Characteristics: store.Characteristics(),
		RiskHeaders:     store.RiskHeaders(),
		RiskLines:       store.RiskLines(),
		ControlPlans:    store.ControlPlans(),
		ControlItems:    store.ControlItems(),
		Sops:            store.Sops(),
		SopSteps:        store.SopSteps(),
		Standards:       store.Standards(),
		Inspections:     store.Inspections(),
	}, logger)

	documents := services.NewDocumentService(services.DocumentStores{
		RiskHeaders:  store.RiskHeaders(),
		RiskLines:    store.RiskLines(),
		ControlPlans: store.ControlPlans(),
		ControlItems: store.ControlItems(),
		Sops:         store.Sops(),
		SopSteps:     store.SopSteps(),
		Standards:    store.Standards(),
		Inspections:  store.Inspections(),
	}, logger)

	mux := http.NewServeMux()
	cfg := &config.Config{Version: "test", Env: "test"}

	NewHealthHandler(cfg, nil, logger).RegisterRoutes(mux)
	NewProductsHandler(store.Products(), logger).RegisterRoutes(mux)
	NewCharacteristicsHandler(store.Products(), store.Characteristics(), logger).RegisterRoutes(mux)
	NewGenerationHandler(generation, logger).RegisterRoutes(mux)
	NewDocumentsHandler(documents, logger).RegisterRoutes(mux)
	NewConsistencyHandler(consistency, logger).RegisterRoutes(mux)
	NewExportHandler(documents, consistency, logger).RegisterRoutes(mux)

	return &testServer{mux: mux, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedProduct(t *testing.T) *models.Product {
	t.Helper()
	product := &models.Product{
		PartNumber:   "45326-4G100",
		Name:         "드라이브 샤프트",
		CustomerName: "현대자동차",
		ProcessName:  "CNC 선삭",
	}
	require.NoError(t, s.store.Products().Create(context.Background(), product))
	return product
}

func (s *testServer) seedCharacteristic(t *testing.T, c *models.Characteristic) *models.Characteristic {
	t.Helper()
	require.NoError(t, s.store.Characteristics().Create(context.Background(), c))
	return c
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

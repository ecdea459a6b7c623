package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/testhelpers"
)

func newTestDocuments(t *testing.T, store *testhelpers.MemStore) DocumentService {
	t.Helper()
	return NewDocumentService(DocumentStores{
		RiskHeaders:  store.RiskHeaders(),
		RiskLines:    store.RiskLines(),
		ControlPlans: store.ControlPlans(),
		ControlItems: store.ControlItems(),
		Sops:         store.Sops(),
		SopSteps:     store.SopSteps(),
		Standards:    store.Standards(),
		Inspections:  store.Inspections(),
	}, zap.NewNop())
}

func TestGetRiskAnalysisDoc(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	pipeline := newTestPipeline(t, store, GenerationOptions{})
	stage1, err := pipeline.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	docs := newTestDocuments(t, store)
	doc, err := docs.GetRiskAnalysis(ctx, stage1.CreatedID)
	require.NoError(t, err)
	assert.Equal(t, stage1.CreatedID, doc.Header.ID)
	assert.Len(t, doc.Lines, 3)
}

func TestGetRiskAnalysisDocNotFound(t *testing.T) {
	docs := newTestDocuments(t, testhelpers.NewMemStore())
	_, err := docs.GetRiskAnalysis(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	pipeline := newTestPipeline(t, store, GenerationOptions{})
	stage1, err := pipeline.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	docs := newTestDocuments(t, store)
	id := stage1.CreatedID

	// draft -> approved skips review and is rejected.
	err = docs.UpdateStatus(ctx, KindRiskAnalysis, id, models.StatusApproved)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	require.NoError(t, docs.UpdateStatus(ctx, KindRiskAnalysis, id, models.StatusReview))
	require.NoError(t, docs.UpdateStatus(ctx, KindRiskAnalysis, id, models.StatusApproved))

	// approved -> review is not an edge; the only way back is draft.
	err = docs.UpdateStatus(ctx, KindRiskAnalysis, id, models.StatusReview)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	require.NoError(t, docs.UpdateStatus(ctx, KindRiskAnalysis, id, models.StatusDraft))

	header, err := store.RiskHeaders().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, header.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	docs := newTestDocuments(t, store)

	err := docs.UpdateStatus(ctx, KindRiskAnalysis, uuid.New(), models.DocumentStatus("published"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestUpdateStatusUnknownDocument(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocuments(t, testhelpers.NewMemStore())

	err := docs.UpdateStatus(ctx, KindControlPlan, uuid.New(), models.StatusReview)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

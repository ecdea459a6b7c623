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
	"github.com/tracewright/apqp-engine/pkg/repositories"
	"github.com/tracewright/apqp-engine/pkg/riskpriority"
	"github.com/tracewright/apqp-engine/pkg/testhelpers"
)

func ptr[T any](v T) *T { return &v }

func newTestPipeline(t *testing.T, store *testhelpers.MemStore, opts GenerationOptions) GenerationService {
	t.Helper()
	return NewGenerationService(GenerationStores{
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
	}, opts, zap.NewNop())
}

func seedProduct(t *testing.T, store *testhelpers.MemStore) *models.Product {
	t.Helper()
	product := &models.Product{
		PartNumber:   "45326-4G100",
		Name:         "드라이브 샤프트",
		CustomerName: "현대자동차",
		VehicleModel: "NX4",
		ProcessName:  "CNC 선삭",
	}
	require.NoError(t, store.Products().Create(context.Background(), product))
	return product
}

func seedCharacteristic(t *testing.T, store *testhelpers.MemStore, c *models.Characteristic) *models.Characteristic {
	t.Helper()
	require.NoError(t, store.Characteristics().Create(context.Background(), c))
	return c
}

// seedThreeCharacteristics covers the three categories and distinct
// failure classes.
func seedThreeCharacteristics(t *testing.T, store *testhelpers.MemStore, productID uuid.UUID) []*models.Characteristic {
	t.Helper()
	return []*models.Characteristic{
		seedCharacteristic(t, store, &models.Characteristic{
			ProductID:         productID,
			Name:              "외경 치수",
			Type:              models.CharacteristicProduct,
			Category:          models.CategoryCritical,
			LSL:               ptr(9.8),
			USL:               ptr(10.2),
			Unit:              ptr("mm"),
			MeasurementMethod: ptr("CMM 측정"),
		}),
		seedCharacteristic(t, store, &models.Characteristic{
			ProductID:         productID,
			Name:              "표면 외관",
			Type:              models.CharacteristicProduct,
			Category:          models.CategoryMinor,
			Specification:     ptr("스크래치, 버 없을 것"),
			MeasurementMethod: ptr("육안 검사"),
		}),
		seedCharacteristic(t, store, &models.Characteristic{
			ProductID:         productID,
			Name:              "체결 토크",
			Type:              models.CharacteristicProcess,
			Category:          models.CategoryMajor,
			LSL:               ptr(40.0),
			USL:               ptr(50.0),
			Unit:              ptr("Nm"),
			MeasurementMethod: ptr("토크 렌치"),
		}),
	}
}

func TestGenerateRiskAnalysis(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	chars := seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	result, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, result.Existed)
	assert.Equal(t, len(chars), result.ItemCount)
	assert.Equal(t, []uuid.UUID{product.ID}, result.LinkedParentIDs)

	header, err := store.RiskHeaders().Get(ctx, result.CreatedID)
	require.NoError(t, err)
	assert.Equal(t, "PFMEA-45326-4G100", header.DocNumber)
	assert.Equal(t, models.StatusDraft, header.Status)

	lines, err := store.RiskLines().GetByHeader(ctx, header.ID)
	require.NoError(t, err)
	require.Len(t, lines, len(chars))

	byChar := make(map[uuid.UUID]*models.RiskLine, len(lines))
	for _, line := range lines {
		byChar[line.CharacteristicID] = line
		assert.Equal(t, line.Severity*line.Occurrence*line.Detection, line.RPN)
		assert.Equal(t, riskpriority.ActionPriority(line.Severity, line.Occurrence, line.Detection), line.Priority)
		assert.NotEmpty(t, line.FailureMode)
		assert.NotEmpty(t, line.FailureEffect)
		assert.NotEmpty(t, line.RecommendedAction)
	}

	critical := byChar[chars[0].ID]
	require.NotNil(t, critical)
	assert.Equal(t, 9, critical.Severity)
	assert.Equal(t, 3, critical.Detection)
	assert.Equal(t, "치수 규격 이탈", critical.FailureMode)

	cosmetic := byChar[chars[1].ID]
	require.NotNil(t, cosmetic)
	assert.Equal(t, 4, cosmetic.Severity)
	assert.Equal(t, 7, cosmetic.Detection)
}

func TestGenerateRiskAnalysisIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	first, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	second, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, second.Existed)
	assert.Equal(t, first.CreatedID, second.CreatedID)
	assert.Equal(t, first.ItemCount, second.ItemCount)

	lines, err := store.RiskLines().GetByHeader(ctx, first.CreatedID)
	require.NoError(t, err)
	assert.Len(t, lines, 3)
}

func TestGenerateRiskAnalysisNoCharacteristics(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)

	svc := newTestPipeline(t, store, GenerationOptions{})

	_, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoInputData)
}

func TestGenerateRiskAnalysisUnknownProduct(t *testing.T) {
	store := testhelpers.NewMemStore()
	svc := newTestPipeline(t, store, GenerationOptions{})

	_, err := svc.GenerateRiskAnalysis(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGenerateRiskAnalysisRollsBackOnLineFailure(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	// Fail the second line insert.
	store.FailRiskLineInsertAfter = 1

	svc := newTestPipeline(t, store, GenerationOptions{})

	_, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPartialInsert)

	// The header and its partial lines are gone: the store is as it was
	// before the call.
	_, err = store.RiskHeaders().GetByProduct(ctx, product.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGenerateControlPlan(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	result, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)
	assert.False(t, result.Existed)

	// One prevention and one detection item per risk line.
	assert.Equal(t, 2*stage1.ItemCount, result.ItemCount)
	assert.Equal(t, []uuid.UUID{stage1.CreatedID, product.ID}, result.LinkedParentIDs)

	plan, err := store.ControlPlans().Get(ctx, result.CreatedID)
	require.NoError(t, err)
	assert.Equal(t, "CP-45326-4G100", plan.DocNumber)

	items, err := store.ControlItems().GetByPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, items, result.ItemCount)

	prevention, detection := 0, 0
	for _, item := range items {
		switch item.ControlType {
		case models.ControlPrevention:
			prevention++
		case models.ControlDetection:
			detection++
		}
		assert.NotEqual(t, uuid.Nil, item.PFMEALineID)
		assert.NotEmpty(t, item.SampleSize)
		assert.NotEmpty(t, item.Frequency)
		assert.NotEmpty(t, item.ReactionPlan)
	}
	assert.Equal(t, stage1.ItemCount, prevention)
	assert.Equal(t, stage1.ItemCount, detection)
}

func TestGenerateControlPlanSamplingByPriority(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)

	// High priority: critical severity, default occurrence and detection.
	char := seedCharacteristic(t, store, &models.Characteristic{
		ProductID: product.ID,
		Name:      "용접 강도",
		Type:      models.CharacteristicProcess,
		Category:  models.CategoryCritical,
	})

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	lines, err := store.RiskLines().GetByHeader(ctx, stage1.CreatedID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, models.PriorityHigh, lines[0].Priority)

	stage2, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)

	items, err := store.ControlItems().GetByPlan(ctx, stage2.CreatedID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	for _, item := range items {
		assert.Equal(t, char.ID, item.CharacteristicID)
		switch item.ControlType {
		case models.ControlPrevention:
			assert.Equal(t, "5", item.SampleSize)
			assert.Equal(t, "매 시간", item.Frequency)
		case models.ControlDetection:
			assert.Equal(t, "100%", item.SampleSize)
			assert.Equal(t, "전수", item.Frequency)
		}
	}
}

func TestGenerateControlPlanWrongProduct(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	_, err = svc.GenerateControlPlan(ctx, stage1.CreatedID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGenerateControlPlanIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	first, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)

	second, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)
	assert.True(t, second.Existed)
	assert.Equal(t, first.CreatedID, second.CreatedID)
	assert.Equal(t, first.ItemCount, second.ItemCount)
}

func TestGenerateSop(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	chars := seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)
	stage2, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)

	result, err := svc.GenerateSop(ctx, stage2.CreatedID, product.ID)
	require.NoError(t, err)
	assert.False(t, result.Existed)

	// One step per prevention item, which is one per risk line.
	assert.Equal(t, len(chars), result.ItemCount)

	sop, err := store.Sops().Get(ctx, result.CreatedID)
	require.NoError(t, err)
	assert.Equal(t, "SOP-45326-4G100", sop.DocNumber)

	steps, err := store.SopSteps().GetBySop(ctx, sop.ID)
	require.NoError(t, err)
	require.Len(t, steps, len(chars))

	for i, step := range steps {
		assert.Equal(t, i+1, step.StepNumber)
		assert.NotEqual(t, uuid.Nil, step.LinkedCPItemID)
		assert.Contains(t, step.KeyPoint, "관리 포인트:")
		assert.Contains(t, step.KeyPoint, "확인 방법:")
		assert.Contains(t, step.KeyPoint, "이상 발생 시:")
	}

	// The toleranced characteristic's step carries the numeric range.
	var found bool
	for _, step := range steps {
		item, err := store.ControlItems().Get(ctx, step.LinkedCPItemID)
		require.NoError(t, err)
		if item.CharacteristicID == chars[0].ID {
			assert.Contains(t, step.KeyPoint, "9.8~10.2mm")
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateSopIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)
	stage2, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)

	first, err := svc.GenerateSop(ctx, stage2.CreatedID, product.ID)
	require.NoError(t, err)

	second, err := svc.GenerateSop(ctx, stage2.CreatedID, product.ID)
	require.NoError(t, err)
	assert.True(t, second.Existed)
	assert.Equal(t, first.CreatedID, second.CreatedID)
	assert.Equal(t, first.ItemCount, second.ItemCount)
}

func TestGenerateInspectionStandard(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	chars := seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)
	stage2, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)

	result, err := svc.GenerateInspectionStandard(ctx, stage2.CreatedID, product.ID)
	require.NoError(t, err)
	assert.False(t, result.Existed)

	// One inspection item per detection item, one per risk line.
	assert.Equal(t, len(chars), result.ItemCount)

	std, err := store.Standards().Get(ctx, result.CreatedID)
	require.NoError(t, err)
	assert.Equal(t, "IS-45326-4G100", std.DocNumber)

	items, err := store.Inspections().GetByStandard(ctx, std.ID)
	require.NoError(t, err)
	require.Len(t, items, len(chars))

	byChar := make(map[uuid.UUID]*models.InspectionItem, len(items))
	for i, item := range items {
		byChar[item.CharacteristicID] = item
		assert.Equal(t, i+1, item.ItemNumber)

		// Sampling is copied from the linked detection control item.
		linked, err := store.ControlItems().Get(ctx, item.LinkedCPItemID)
		require.NoError(t, err)
		assert.Equal(t, models.ControlDetection, linked.ControlType)
		assert.Equal(t, linked.SampleSize, item.SampleSize)
		assert.Equal(t, linked.Frequency, item.Frequency)
	}

	// Numeric tolerance yields the numeric range as criteria.
	assert.Equal(t, "9.8~10.2mm", byChar[chars[0].ID].AcceptanceCriteria)
	// Free-text specification passes through.
	assert.Equal(t, "스크래치, 버 없을 것", byChar[chars[1].ID].AcceptanceCriteria)
}

func TestGenerateInspectionStandardIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	svc := newTestPipeline(t, store, GenerationOptions{})

	stage1, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)
	stage2, err := svc.GenerateControlPlan(ctx, stage1.CreatedID, product.ID)
	require.NoError(t, err)

	first, err := svc.GenerateInspectionStandard(ctx, stage2.CreatedID, product.ID)
	require.NoError(t, err)

	second, err := svc.GenerateInspectionStandard(ctx, stage2.CreatedID, product.ID)
	require.NoError(t, err)
	assert.True(t, second.Existed)
	assert.Equal(t, first.CreatedID, second.CreatedID)
	assert.Equal(t, first.ItemCount, second.ItemCount)
}

// blindRiskHeaders never sees existing headers, emulating two requests
// that both pass the existence check before either inserts.
type blindRiskHeaders struct {
	repositories.RiskHeaderRepository
}

func (b *blindRiskHeaders) GetByProduct(context.Context, uuid.UUID) (*models.RiskHeader, error) {
	return nil, apperrors.ErrNotFound
}

// The existence check and the insert are not atomic, so overlapping
// generate calls can each create a header. The store, like the schema,
// has no uniqueness constraint to stop them.
func TestGenerateRiskAnalysisCheckInsertWindow(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedThreeCharacteristics(t, store, product.ID)

	svc := NewGenerationService(GenerationStores{
		Products:        store.Products(),
		Characteristics: store.Characteristics(),
		RiskHeaders:     &blindRiskHeaders{RiskHeaderRepository: store.RiskHeaders()},
		RiskLines:       store.RiskLines(),
		ControlPlans:    store.ControlPlans(),
		ControlItems:    store.ControlItems(),
		Sops:            store.Sops(),
		SopSteps:        store.SopSteps(),
		Standards:       store.Standards(),
		Inspections:     store.Inspections(),
	}, GenerationOptions{}, zap.NewNop())

	first, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)
	second, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	assert.False(t, first.Existed)
	assert.False(t, second.Existed)
	assert.NotEqual(t, first.CreatedID, second.CreatedID)
}

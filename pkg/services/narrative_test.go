package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/apqp-engine/pkg/llm"
	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/testhelpers"
)

// generateOneLine runs stage 1 over a single critical characteristic and
// returns its line.
func generateOneLine(t *testing.T, opts GenerationOptions) *models.RiskLine {
	t.Helper()
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	product := seedProduct(t, store)
	seedCharacteristic(t, store, &models.Characteristic{
		ProductID: product.ID,
		Name:      "외경 치수",
		Type:      models.CharacteristicProduct,
		Category:  models.CategoryCritical,
	})

	svc := newTestPipeline(t, store, opts)
	result, err := svc.GenerateRiskAnalysis(ctx, product.ID)
	require.NoError(t, err)

	lines, err := store.RiskLines().GetByHeader(ctx, result.CreatedID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	return lines[0]
}

func TestNarrativeEnhancedTextUsed(t *testing.T) {
	mock := llm.NewMockGenerator()
	mock.NarrativeFunc = func(_ context.Context, req llm.Request) (string, error) {
		if req.Field == llm.FieldFailureEffect {
			return "enhanced effect", nil
		}
		return "enhanced action", nil
	}

	line := generateOneLine(t, GenerationOptions{Narrative: mock})
	assert.Equal(t, "enhanced effect", line.FailureEffect)
	assert.Equal(t, "enhanced action", line.RecommendedAction)
	assert.Equal(t, 2, mock.NarrativeCalls)
}

func TestNarrativeFallsBackOnError(t *testing.T) {
	mock := llm.NewMockGenerator()
	mock.NarrativeFunc = func(context.Context, llm.Request) (string, error) {
		return "", errors.New("upstream unavailable")
	}

	line := generateOneLine(t, GenerationOptions{Narrative: mock})

	// Template text for a critical characteristic.
	assert.Contains(t, line.FailureEffect, "외경 치수 불량 시")
	assert.NotEmpty(t, line.RecommendedAction)
}

func TestNarrativeFallsBackOnEmptyAnswer(t *testing.T) {
	mock := llm.NewMockGenerator()
	mock.NarrativeFunc = func(context.Context, llm.Request) (string, error) {
		return "", nil
	}

	line := generateOneLine(t, GenerationOptions{Narrative: mock})
	assert.Contains(t, line.FailureEffect, "외경 치수 불량 시")
}

func TestNarrativeFallsBackOnTimeout(t *testing.T) {
	mock := llm.NewMockGenerator()
	mock.NarrativeFunc = func(ctx context.Context, _ llm.Request) (string, error) {
		select {
		case <-time.After(time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	start := time.Now()
	line := generateOneLine(t, GenerationOptions{
		Narrative:        mock,
		NarrativeTimeout: 20 * time.Millisecond,
	})

	assert.Contains(t, line.FailureEffect, "외경 치수 불량 시")
	assert.Less(t, time.Since(start), time.Second)
}

func TestNarrativeNilGeneratorUsesTemplate(t *testing.T) {
	line := generateOneLine(t, GenerationOptions{})
	assert.Equal(t, "외경 치수 불량 시 안전/법규 요구사항 불만족 및 라인 정지 우려", line.FailureEffect)
}

package llm

import (
	"context"
	"fmt"

	"github.com/tracewright/apqp-engine/pkg/models"
)

// TemplateGenerator is the always-available deterministic implementation.
// Same request, same text.
type TemplateGenerator struct{}

// NewTemplateGenerator creates the deterministic narrative generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

var _ NarrativeGenerator = (*TemplateGenerator)(nil)

// Name implements NarrativeGenerator.
func (g *TemplateGenerator) Name() string { return "template" }

// Narrative implements NarrativeGenerator.
func (g *TemplateGenerator) Narrative(_ context.Context, req Request) (string, error) {
	switch req.Field {
	case FieldFailureEffect:
		return g.failureEffect(req), nil
	case FieldRecommendedAction:
		return g.recommendedAction(req), nil
	default:
		return "", fmt.Errorf("unknown narrative field %q", req.Field)
	}
}

func (g *TemplateGenerator) failureEffect(req Request) string {
	switch req.Category {
	case models.CategoryCritical:
		return fmt.Sprintf("%s 불량 시 안전/법규 요구사항 불만족 및 라인 정지 우려", req.CharacteristicName)
	case models.CategoryMajor:
		return fmt.Sprintf("%s 불량 시 조립 불가 또는 기능 저하 발생", req.CharacteristicName)
	default:
		return fmt.Sprintf("%s 불량 시 외관 품질 저하 및 고객 불만", req.CharacteristicName)
	}
}

func (g *TemplateGenerator) recommendedAction(req Request) string {
	switch req.Priority {
	case models.PriorityHigh:
		return "공정 개선 및 검출력 강화 대책 수립 후 유효성 검증 필요"
	case models.PriorityMedium:
		return "현 관리 방법 유지, 주기적 공정능력 모니터링"
	default:
		return "현 관리 수준 유지"
	}
}

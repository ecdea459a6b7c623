package services

import (
	"strings"

	"github.com/tracewright/apqp-engine/pkg/models"
)

// FailureClass buckets a characteristic by the vocabulary of its name.
// The class selects failure-mode templates and the occurrence rating.
type FailureClass string

const (
	ClassDimensional FailureClass = "dimensional"
	ClassCosmetic    FailureClass = "cosmetic"
	ClassTorque      FailureClass = "torque"
	ClassMaterial    FailureClass = "material"
	ClassGeneral     FailureClass = "general"
)

// FailureTemplate holds the deterministic text for one failure class.
type FailureTemplate struct {
	FailureMode       string
	FailureCause      string
	PreventionControl string
	DetectionControl  string
}

// SamplingSchedule is a sample size / frequency pair.
type SamplingSchedule struct {
	SampleSize string
	Frequency  string
}

// DerivationRules is the configured vocabulary and rating tables the risk
// analysis stage runs on. The keyword lists are heuristics inherited from
// shop-floor practice, not law: callers may override them via
// GenerationOptions when the default vocabulary misclassifies.
type DerivationRules struct {
	// ClassKeywords maps each failure class to the substrings that select
	// it. First match in classOrder wins.
	ClassKeywords map[FailureClass][]string

	// Templates maps each class to its failure-mode text.
	Templates map[FailureClass]FailureTemplate

	// SafetyKeywords force severity to at least 9 when found in the
	// characteristic name, regardless of category.
	SafetyKeywords []string

	// SeverityByCategory is the base severity per characteristic category.
	SeverityByCategory map[models.CharacteristicCategory]int

	// OccurrenceByClass is the occurrence rating per failure class.
	OccurrenceByClass map[FailureClass]int

	// DetectionKeywords maps measurement-method substrings to a detection
	// rating. Lower is better detection.
	DetectionKeywords []DetectionKeyword

	// VisualKeywords mark a measurement method as visual inspection.
	// A method that is visual and names no instrumented keyword is floored
	// at VisualDetectionFloor: visual inspection cannot claim high
	// detection capability.
	VisualKeywords       []string
	VisualDetectionFloor int
	DefaultDetection     int
	PreventionSampling   map[models.ActionPriority]SamplingSchedule
	DetectionSampling    map[models.ActionPriority]SamplingSchedule
	ReactionPlanByClass  map[FailureClass]string
	DefaultReactionPlan  string
}

// DetectionKeyword pairs a measurement-method substring with its rating.
type DetectionKeyword struct {
	Keyword string
	Rating  int
}

// classOrder fixes the match precedence between classes.
var classOrder = []FailureClass{ClassTorque, ClassDimensional, ClassCosmetic, ClassMaterial}

// DefaultDerivationRules returns the stock vocabulary. Korean terms first
// since that is what the shop documents carry, with English fallbacks.
func DefaultDerivationRules() *DerivationRules {
	return &DerivationRules{
		ClassKeywords: map[FailureClass][]string{
			ClassDimensional: {"치수", "직경", "외경", "내경", "길이", "두께", "깊이", "높이", "폭", "diameter", "length", "thickness", "dimension", "width", "depth"},
			ClassCosmetic:    {"외관", "표면", "스크래치", "버", "이물", "도장", "색상", "appearance", "surface", "scratch", "burr", "paint", "color"},
			ClassTorque:      {"토크", "체결", "조립력", "압입", "torque", "tighten", "fastening", "press-fit"},
			ClassMaterial:    {"경도", "재질", "인장", "강도", "열처리", "hardness", "material", "tensile", "strength", "heat treat"},
		},
		Templates: map[FailureClass]FailureTemplate{
			ClassDimensional: {
				FailureMode:       "치수 규격 이탈",
				FailureCause:      "공구 마모 및 설비 조건 변동",
				PreventionControl: "공구 교체 주기 관리, 설비 조건 표준화",
				DetectionControl:  "측정기 치수 검사",
			},
			ClassCosmetic: {
				FailureMode:       "외관 불량 발생",
				FailureCause:      "취급 중 손상 및 이물 유입",
				PreventionControl: "취급 표준 준수, 작업장 청결 관리",
				DetectionControl:  "육안 검사",
			},
			ClassTorque: {
				FailureMode:       "체결 토크 미달/과다",
				FailureCause:      "토크 공구 세팅 불량",
				PreventionControl: "토크 공구 일상 점검 및 교정 관리",
				DetectionControl:  "토크 모니터링 시스템 검출",
			},
			ClassMaterial: {
				FailureMode:       "재질 특성 규격 이탈",
				FailureCause:      "열처리 조건 변동 및 소재 로트 편차",
				PreventionControl: "열처리 조건 관리, 소재 성적서 확인",
				DetectionControl:  "경도계 측정 검사",
			},
			ClassGeneral: {
				FailureMode:       "특성 규격 이탈",
				FailureCause:      "공정 조건 변동",
				PreventionControl: "공정 조건 표준화 및 작업 표준 준수",
				DetectionControl:  "자주 검사",
			},
		},
		SafetyKeywords: []string{"안전", "용접", "브레이크", "조향", "에어백", "safety", "weld", "brake", "steering", "airbag"},
		SeverityByCategory: map[models.CharacteristicCategory]int{
			models.CategoryCritical: 9,
			models.CategoryMajor:    7,
			models.CategoryMinor:    4,
		},
		OccurrenceByClass: map[FailureClass]int{
			ClassDimensional: 4,
			ClassCosmetic:    5,
			ClassTorque:      3,
			ClassMaterial:    3,
			ClassGeneral:     4,
		},
		DetectionKeywords: []DetectionKeyword{
			{Keyword: "spc", Rating: 2},
			{Keyword: "자동", Rating: 2},
			{Keyword: "포카요케", Rating: 2},
			{Keyword: "poka", Rating: 2},
			{Keyword: "cmm", Rating: 3},
			{Keyword: "3차원", Rating: 3},
			{Keyword: "토크", Rating: 3},
			{Keyword: "게이지", Rating: 4},
			{Keyword: "gauge", Rating: 4},
			{Keyword: "경도계", Rating: 4},
			{Keyword: "버니어", Rating: 5},
			{Keyword: "캘리퍼", Rating: 5},
			{Keyword: "caliper", Rating: 5},
			{Keyword: "micrometer", Rating: 4},
			{Keyword: "마이크로미터", Rating: 4},
		},
		VisualKeywords:       []string{"육안", "목시", "visual"},
		VisualDetectionFloor: 7,
		DefaultDetection:     6,
		PreventionSampling: map[models.ActionPriority]SamplingSchedule{
			models.PriorityHigh:   {SampleSize: "5", Frequency: "매 시간"},
			models.PriorityMedium: {SampleSize: "3", Frequency: "매 4시간"},
			models.PriorityLow:    {SampleSize: "1", Frequency: "매 로트"},
		},
		DetectionSampling: map[models.ActionPriority]SamplingSchedule{
			models.PriorityHigh:   {SampleSize: "100%", Frequency: "전수"},
			models.PriorityMedium: {SampleSize: "5", Frequency: "매 로트"},
			models.PriorityLow:    {SampleSize: "1", Frequency: "매 로트"},
		},
		ReactionPlanByClass: map[FailureClass]string{
			ClassDimensional: "해당 로트 격리, 공구 점검 후 재측정, 품질팀 보고",
			ClassCosmetic:    "부적합품 식별 격리, 한도 샘플 재확인, 품질팀 보고",
			ClassTorque:      "라인 정지, 토크 공구 재세팅 및 재체결 확인, 품질팀 보고",
			ClassMaterial:    "해당 로트 격리, 열처리 조건 점검, 품질팀 보고",
		},
		DefaultReactionPlan: "부적합품 격리 및 식별, 발생 원인 조사 후 품질팀 보고",
	}
}

// Classify returns the failure class for a characteristic name.
func (r *DerivationRules) Classify(name string) FailureClass {
	lower := strings.ToLower(name)
	for _, class := range classOrder {
		for _, kw := range r.ClassKeywords[class] {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return class
			}
		}
	}
	return ClassGeneral
}

// Template returns the failure template for a class.
func (r *DerivationRules) Template(class FailureClass) FailureTemplate {
	if t, ok := r.Templates[class]; ok {
		return t
	}
	return r.Templates[ClassGeneral]
}

// Severity derives S from the category, with the safety-keyword override
// forcing safety class (S >= 9) regardless of the declared category.
func (r *DerivationRules) Severity(category models.CharacteristicCategory, name string) int {
	s, ok := r.SeverityByCategory[category]
	if !ok {
		s = r.SeverityByCategory[models.CategoryMinor]
	}
	lower := strings.ToLower(name)
	for _, kw := range r.SafetyKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			if s < 9 {
				s = 9
			}
			break
		}
	}
	return s
}

// Occurrence derives O from the failure class.
func (r *DerivationRules) Occurrence(class FailureClass) int {
	if o, ok := r.OccurrenceByClass[class]; ok {
		return o
	}
	return r.OccurrenceByClass[ClassGeneral]
}

// Detection derives D from the declared measurement method. Methods that
// mention only visual inspection are floored at VisualDetectionFloor.
func (r *DerivationRules) Detection(measurementMethod string) int {
	if measurementMethod == "" {
		return r.DefaultDetection
	}
	lower := strings.ToLower(measurementMethod)

	instrumented := false
	rating := r.DefaultDetection
	for _, dk := range r.DetectionKeywords {
		if strings.Contains(lower, strings.ToLower(dk.Keyword)) {
			instrumented = true
			if dk.Rating < rating {
				rating = dk.Rating
			}
		}
	}

	if !instrumented && r.isVisual(lower) && rating < r.VisualDetectionFloor {
		rating = r.VisualDetectionFloor
	}
	return rating
}

func (r *DerivationRules) isVisual(lowerMethod string) bool {
	for _, kw := range r.VisualKeywords {
		if strings.Contains(lowerMethod, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ReactionPlan returns the abnormality response text for a class.
func (r *DerivationRules) ReactionPlan(class FailureClass) string {
	if p, ok := r.ReactionPlanByClass[class]; ok {
		return p
	}
	return r.DefaultReactionPlan
}

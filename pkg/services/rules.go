package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tracewright/apqp-engine/pkg/models"
)

// The six consistency rules. Each is independent and pure: it reads the
// snapshot and returns zero or more issues. Evaluation never fails; a
// missing link is exactly what the rules exist to report, and a dangling
// reference becomes a data-integrity issue rather than an error.

// rpnAttentionThreshold marks lines whose raw RPN demands a control even
// when the table priority is below H.
const rpnAttentionThreshold = 100

// EvaluateRules runs every rule over the snapshot and concatenates the
// findings. Rules are order-independent and never short-circuit: one
// entity may appear in several issues.
func EvaluateRules(snap *GraphSnapshot) []models.Issue {
	var issues []models.Issue
	issues = append(issues, checkDanglingReferences(snap)...)
	issues = append(issues, checkUncontrolledHighRisk(snap)...)
	issues = append(issues, checkControlWithoutSop(snap)...)
	issues = append(issues, checkDetectionNotInspected(snap)...)
	issues = append(issues, checkSamplingMismatch(snap)...)
	issues = append(issues, checkKeyPointContent(snap)...)
	issues = append(issues, checkNumericCriteria(snap)...)
	return issues
}

// checkDanglingReferences reports snapshot rows whose back-references
// resolve to nothing in the same snapshot.
func checkDanglingReferences(snap *GraphSnapshot) []models.Issue {
	lineIDs := make(map[string]bool, len(snap.Lines))
	for _, line := range snap.Lines {
		lineIDs[line.ID.String()] = true
	}

	var issues []models.Issue
	for _, item := range snap.Items {
		if !lineIDs[item.PFMEALineID.String()] {
			issues = append(issues, models.Issue{
				Severity: models.SeverityMedium,
				RuleCode: models.RuleDanglingReference,
				Message:  fmt.Sprintf("control plan item references missing risk line %s", item.PFMEALineID),
				Refs:     models.IssueRefs{ControlPlanItemID: item.ID},
			})
		}
	}
	for _, insp := range snap.Inspections {
		if _, ok := snap.Characteristics[insp.CharacteristicID]; !ok {
			issues = append(issues, models.Issue{
				Severity: models.SeverityMedium,
				RuleCode: models.RuleDanglingReference,
				Message:  fmt.Sprintf("inspection item references missing characteristic %s", insp.CharacteristicID),
				Refs:     models.IssueRefs{InspectionItemID: insp.ID},
			})
		}
	}
	return issues
}

// checkUncontrolledHighRisk (R1): a risk line with priority H or RPN at
// or above the attention threshold must have at least one control item.
func checkUncontrolledHighRisk(snap *GraphSnapshot) []models.Issue {
	var issues []models.Issue
	for _, line := range snap.Lines {
		if line.Priority != models.PriorityHigh && line.RPN < rpnAttentionThreshold {
			continue
		}
		if len(snap.ItemsByLine[line.ID]) > 0 {
			continue
		}
		issues = append(issues, models.Issue{
			Severity: models.SeverityHigh,
			RuleCode: models.RuleUncontrolledHighRisk,
			Message: fmt.Sprintf("risk line %q (priority %s, RPN %d) has no control plan item",
				line.FailureMode, line.Priority, line.RPN),
			Refs: models.IssueRefs{RiskLineID: line.ID, CharacteristicID: line.CharacteristicID},
		})
	}
	return issues
}

// checkControlWithoutSop (R2): every control plan item, regardless of
// control type, must be backed by at least one work instruction step.
func checkControlWithoutSop(snap *GraphSnapshot) []models.Issue {
	var issues []models.Issue
	for _, item := range snap.Items {
		if len(snap.StepsByItem[item.ID]) > 0 {
			continue
		}
		issues = append(issues, models.Issue{
			Severity: models.SeverityHigh,
			RuleCode: models.RuleControlWithoutSop,
			Message: fmt.Sprintf("%s control %q has no linked work instruction step",
				item.ControlType, item.ControlMethod),
			Refs: models.IssueRefs{ControlPlanItemID: item.ID, CharacteristicID: item.CharacteristicID},
		})
	}
	return issues
}

// checkDetectionNotInspected (R3): a detection control must have a linked
// inspection item.
func checkDetectionNotInspected(snap *GraphSnapshot) []models.Issue {
	var issues []models.Issue
	for _, item := range snap.Items {
		if item.ControlType != models.ControlDetection {
			continue
		}
		if len(snap.InspectionsByItem[item.ID]) > 0 {
			continue
		}
		issues = append(issues, models.Issue{
			Severity: models.SeverityHigh,
			RuleCode: models.RuleDetectionNotInspected,
			Message: fmt.Sprintf("detection control %q has no linked inspection item",
				item.ControlMethod),
			Refs: models.IssueRefs{ControlPlanItemID: item.ID, CharacteristicID: item.CharacteristicID},
		})
	}
	return issues
}

// checkSamplingMismatch (R4): for every linked (control item, inspection
// item) pair, the normalized "sample_size/frequency" strings must match
// exactly.
func checkSamplingMismatch(snap *GraphSnapshot) []models.Issue {
	var issues []models.Issue
	for _, item := range snap.Items {
		want := normalizeSampling(item.SampleSize + "/" + item.Frequency)
		for _, insp := range snap.InspectionsByItem[item.ID] {
			got := normalizeSampling(insp.SamplingPlan())
			if got == want {
				continue
			}
			issues = append(issues, models.Issue{
				Severity: models.SeverityMedium,
				RuleCode: models.RuleSamplingMismatch,
				Message: fmt.Sprintf("control plan sampling %q does not match inspection sampling %q",
					item.SampleSize+"/"+item.Frequency, insp.SamplingPlan()),
				Refs: models.IssueRefs{ControlPlanItemID: item.ID, InspectionItemID: insp.ID},
			})
		}
	}
	return issues
}

// Key point vocabulary for R5. Matching is substring-based over the
// normalized lower-case text.
var (
	controlKeywords  = []string{"관리", "기준", "한도", "공차", "규격", "포인트", "control", "limit", "tolerance", "spec"}
	responseKeywords = []string{"이상", "중지", "정지", "보고", "격리", "abnormal", "stop", "report", "quarantine"}
)

// checkKeyPointContent (R5): a work step's key point must carry at least
// one control keyword and one abnormality-response keyword.
func checkKeyPointContent(snap *GraphSnapshot) []models.Issue {
	var issues []models.Issue
	for _, step := range snap.Steps {
		text := strings.ToLower(step.KeyPoint)
		hasControl := containsAny(text, controlKeywords)
		hasResponse := containsAny(text, responseKeywords)
		if hasControl && hasResponse {
			continue
		}

		var missing []string
		if !hasControl {
			missing = append(missing, "control point")
		}
		if !hasResponse {
			missing = append(missing, "abnormality response")
		}
		issues = append(issues, models.Issue{
			Severity: models.SeverityMedium,
			RuleCode: models.RuleIncompleteKeyPoint,
			Message: fmt.Sprintf("work step %d key point is missing %s content",
				step.StepNumber, strings.Join(missing, " and ")),
			Refs: models.IssueRefs{SopStepID: step.ID, ControlPlanItemID: step.LinkedCPItemID},
		})
	}
	return issues
}

var numericToken = regexp.MustCompile(`[0-9]`)

// checkNumericCriteria (R6): a characteristic with a numeric tolerance
// must be inspected against criteria containing at least one numeric
// token.
func checkNumericCriteria(snap *GraphSnapshot) []models.Issue {
	var issues []models.Issue
	for _, insp := range snap.Inspections {
		char, ok := snap.Characteristics[insp.CharacteristicID]
		if !ok {
			// Reported by the dangling-reference check.
			continue
		}
		if char.LSL == nil && char.USL == nil {
			continue
		}
		if numericToken.MatchString(insp.AcceptanceCriteria) {
			continue
		}
		issues = append(issues, models.Issue{
			Severity: models.SeverityLow,
			RuleCode: models.RuleCriteriaNotNumeric,
			Message: fmt.Sprintf("characteristic %q has a numeric tolerance but acceptance criteria %q contains no number",
				char.Name, insp.AcceptanceCriteria),
			Refs: models.IssueRefs{InspectionItemID: insp.ID, CharacteristicID: char.ID},
		})
	}
	return issues
}

// normalizeSampling trims and collapses internal whitespace so that
// cosmetic spacing differences do not count as mismatches.
func normalizeSampling(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

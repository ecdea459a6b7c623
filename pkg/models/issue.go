package models

import "github.com/google/uuid"

// IssueSeverity classifies consistency findings.
type IssueSeverity string

const (
	SeverityHigh   IssueSeverity = "HIGH"
	SeverityMedium IssueSeverity = "MEDIUM"
	SeverityLow    IssueSeverity = "LOW"
)

// RuleCode identifies a consistency rule. Codes are a stable external
// contract: new rules take new codes, existing codes are never renumbered.
type RuleCode string

const (
	RuleUncontrolledHighRisk  RuleCode = "R1"
	RuleControlWithoutSop     RuleCode = "R2"
	RuleDetectionNotInspected RuleCode = "R3"
	RuleSamplingMismatch      RuleCode = "R4"
	RuleIncompleteKeyPoint    RuleCode = "R5"
	RuleCriteriaNotNumeric    RuleCode = "R6"

	// RuleDanglingReference reports a snapshot row whose foreign key
	// resolves to nothing. Data-integrity finding, not a rule failure.
	RuleDanglingReference RuleCode = "R0"
)

// RuleDescriptions carries the fixed human-readable description per code.
var RuleDescriptions = map[RuleCode]string{
	RuleDanglingReference:     "reference to a missing entity",
	RuleUncontrolledHighRisk:  "high-priority risk line has no control plan item",
	RuleControlWithoutSop:     "control plan item has no linked work instruction step",
	RuleDetectionNotInspected: "detection control has no linked inspection item",
	RuleSamplingMismatch:      "control plan and inspection sampling disagree",
	RuleIncompleteKeyPoint:    "work step key point is missing control or response content",
	RuleCriteriaNotNumeric:    "toleranced characteristic has non-numeric acceptance criteria",
}

// IssueRefs names the entities involved in a finding. Zero values mean
// the reference does not apply to the rule.
type IssueRefs struct {
	RiskLineID        uuid.UUID `json:"risk_line_id,omitempty"`
	ControlPlanItemID uuid.UUID `json:"control_plan_item_id,omitempty"`
	SopStepID         uuid.UUID `json:"sop_step_id,omitempty"`
	InspectionItemID  uuid.UUID `json:"inspection_item_id,omitempty"`
	CharacteristicID  uuid.UUID `json:"characteristic_id,omitempty"`
}

// Issue is one consistency finding. Every triggering condition produces its
// own instance; there is no deduplication or suppression.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	RuleCode RuleCode      `json:"rule_code"`
	Message  string        `json:"message"`
	Refs     IssueRefs     `json:"references"`
}

// IssueSummary counts issues by severity.
type IssueSummary struct {
	High   int `json:"HIGH"`
	Medium int `json:"MEDIUM"`
	Low    int `json:"LOW"`
}

// Total returns the summed count across severities.
func (s IssueSummary) Total() int {
	return s.High + s.Medium + s.Low
}

// Summarize counts the given issues by severity.
func Summarize(issues []Issue) IssueSummary {
	var sum IssueSummary
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityHigh:
			sum.High++
		case SeverityMedium:
			sum.Medium++
		case SeverityLow:
			sum.Low++
		}
	}
	return sum
}

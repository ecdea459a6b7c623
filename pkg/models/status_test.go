package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardFlow(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusReview))
	assert.True(t, CanTransition(StatusReview, StatusApproved))
}

func TestCanTransition_OnlyBackwardEdgeIsRevertToDraft(t *testing.T) {
	assert.True(t, CanTransition(StatusReview, StatusDraft))
	assert.True(t, CanTransition(StatusApproved, StatusDraft))

	assert.False(t, CanTransition(StatusApproved, StatusReview))
	assert.False(t, CanTransition(StatusDraft, StatusApproved), "must pass through review")
	assert.False(t, CanTransition(StatusDraft, StatusDraft))
}

func TestDocumentStatus_Editable(t *testing.T) {
	assert.True(t, StatusDraft.Editable())
	assert.False(t, StatusReview.Editable())
	assert.False(t, StatusApproved.Editable())
}

func TestSummarize_CountsMatchIssueList(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityHigh, RuleCode: RuleUncontrolledHighRisk},
		{Severity: SeverityHigh, RuleCode: RuleControlWithoutSop},
		{Severity: SeverityMedium, RuleCode: RuleSamplingMismatch},
		{Severity: SeverityLow, RuleCode: RuleCriteriaNotNumeric},
	}

	sum := Summarize(issues)
	assert.Equal(t, 2, sum.High)
	assert.Equal(t, 1, sum.Medium)
	assert.Equal(t, 1, sum.Low)
	assert.Equal(t, len(issues), sum.Total())
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, 0, sum.Total())
}

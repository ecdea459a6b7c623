package models

// DocumentStatus is the three-state lifecycle flag shared by all four
// document headers.
type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "draft"
	StatusReview   DocumentStatus = "review"
	StatusApproved DocumentStatus = "approved"
)

// ValidStatusTransitions lists the allowed forward transitions plus the
// single administrative revert to draft, which re-enables editing.
var ValidStatusTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:    {StatusReview},
	StatusReview:   {StatusApproved, StatusDraft},
	StatusApproved: {StatusDraft},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to DocumentStatus) bool {
	for _, next := range ValidStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether the status is one of the closed set.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusApproved:
		return true
	}
	return false
}

// Editable reports whether a document in this status accepts edits.
func (s DocumentStatus) Editable() bool {
	return s == StatusDraft
}

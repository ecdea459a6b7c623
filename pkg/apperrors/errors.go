package apperrors

import "errors"

var (
	// ErrNotFound means a referenced parent entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoInputData means the parent exists but has no children to
	// expand, e.g. a product with zero characteristics.
	ErrNoInputData = errors.New("no input data to generate from")

	// ErrPartialInsert means a multi-row insert partially succeeded; the
	// stage's newly created header has been rolled back.
	ErrPartialInsert = errors.New("partial insert failure")

	// ErrInvalidTransition means a document status change violates the
	// draft -> review -> approved flow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict means the datastore rejected a write due to a
	// constraint violation.
	ErrConflict = errors.New("conflict")
)

// services/collection-service/internal/assignment/errors.go
package assignment

import "errors"

var (
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrInvalidTransition protects the state machine. Only
	// assigned -> visit_success|visit_failed, visit_success -> deposited and
	// deposited -> confirmed exist.
	ErrInvalidTransition = errors.New("invalid assignment status transition")

	// ErrIncompleteVisit: a successful visit needs notes, and a photo when policy requires one.
	ErrIncompleteVisit = errors.New("visit report is incomplete")

	ErrReasonRequired = errors.New("a failed visit requires a reason")

	// ErrFieldImmutable: a field written by an earlier transition cannot be rewritten.
	ErrFieldImmutable = errors.New("assignment field is read-only once written")

	// ErrStaleStatus is returned by the store when the CAS guard did not match.
	ErrStaleStatus = errors.New("assignment status changed concurrently")

	ErrActiveAssignmentExists = errors.New("invoice already has an active assignment")
)

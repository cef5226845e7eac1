package domain

import "errors"

var (
	// ErrInvalidResourceRef is returned when a session is created without a
	// resource type or id.
	ErrInvalidResourceRef = errors.New("missing resource reference")

	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionInactive is returned when an operation targets an ended session.
	ErrSessionInactive = errors.New("session is not active")

	// ErrNotParticipant is returned when the caller has no active membership
	// in the session.
	ErrNotParticipant = errors.New("not an active participant")

	// ErrPermissionDenied is returned when the caller's capability set does
	// not allow the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidReference is returned when a comment references an annotation
	// or parent comment outside its session.
	ErrInvalidReference = errors.New("reference outside session")

	// ErrAnnotationNotFound is returned when no annotation exists for the
	// given id.
	ErrAnnotationNotFound = errors.New("annotation not found")
)

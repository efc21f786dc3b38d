package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't own the resource
	ErrPermissionDenied = errors.New("permission denied")

	// ErrEstimateNotFound is returned when an estimate is not found
	ErrEstimateNotFound = errors.New("estimate not found")

	// ErrItemNotFound is returned when an estimate item is not found
	ErrItemNotFound = errors.New("estimate item not found")

	// ErrProjectTypeNotFound is returned when a project type is not found
	ErrProjectTypeNotFound = errors.New("project type not found")

	// ErrLocationNotFound is returned when a location is not found
	ErrLocationNotFound = errors.New("location not found")

	// ErrShareNotFound is returned when a share token does not exist
	ErrShareNotFound = errors.New("share not found")

	// ErrShareExpired is returned when a share token exists but is no longer usable
	ErrShareExpired = errors.New("share link has expired")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidStatus is returned for an unknown estimate status value
	ErrInvalidStatus = errors.New("invalid estimate status")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrEstimatorDisabled is returned when the AI estimator is not configured
	ErrEstimatorDisabled = errors.New("ai estimator is not enabled")
)

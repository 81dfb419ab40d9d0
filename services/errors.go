package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrTeamNameRequired      = errors.New("team name is required")
	ErrEventNameRequired     = errors.New("event name is required")
	ErrEventDatesRequired    = errors.New("event start and end dates are required")
	ErrEventInvalidDateRange = errors.New("event end date must be after start date")
	ErrRegistrationNotOpen   = errors.New("event registration is not open")
	ErrMatchStageUnknown     = errors.New("match has no recognized stage metadata")
	ErrScoresRequired        = errors.New("at least one game score is required")

	// Conflicts
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrTeamNameConflict     = errors.New("team name is already in use")
	ErrRegistrationConflict = errors.New("team is already registered for this event")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

package domain

import "errors"

// Domain errors
var (
	ErrInvalidChart     = errors.New("chart selector outside the known tier/mode domain")
	ErrUnknownCourse    = errors.New("course not present in the active catalog")
	ErrScoreNotFound    = errors.New("no score record for player and chart")
	ErrProgressNotFound = errors.New("no course progress for player and course")
	ErrProfileNotFound  = errors.New("no profile for player on any known revision")
	ErrUnknownVersion   = errors.New("unknown game revision")
	ErrNoSchedule       = errors.New("no challenge schedule for the current period")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInternalError    = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrScoreNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrUnknownCourse)
}

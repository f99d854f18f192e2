package habit

import "errors"

var (
	// ErrHabitNotFound indicates the habit doesn't exist.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidInput indicates invalid habit input.
	ErrInvalidInput = errors.New("invalid habit input")
	// ErrDuplicateID indicates a habit with the same id already exists.
	ErrDuplicateID = errors.New("habit id already exists")
)

package reminder

import "errors"

var (
	// ErrInvalidTime indicates a reminder time that is not "HH:mm".
	ErrInvalidTime = errors.New("invalid reminder time")
	// ErrPermissionDenied indicates the platform refused notification delivery.
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrInvalidInput indicates a reminder without a habit id.
	ErrInvalidInput = errors.New("invalid reminder input")
)

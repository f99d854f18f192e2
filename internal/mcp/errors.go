package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/domain/settings"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, habit.ErrHabitNotFound):
		return &APIError{Code: "HABIT_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_habits for valid ids"}
	case errors.Is(err, habit.ErrDuplicateID):
		return &APIError{Code: "DUPLICATE_ID", Message: err.Error(), RecoveryHint: "Omit id to have one generated"}
	case errors.Is(err, habit.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "title and goal are required; reminder is HH:mm"}
	case errors.Is(err, settings.ErrUnknownSetting):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Use enabled, dailyReminder, weeklyReport or achievementAlerts"}
	default:
		return nil
	}
}

func invalidInput(format string, args ...any) *APIError {
	return &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf(format, args...)}
}

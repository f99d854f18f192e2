package habit

import (
	"fmt"
	"strings"

	"github.com/rpggio/habitkit/internal/domain/reminder"
)

// ValidateHabit validates the caller-supplied fields of a new habit.
func ValidateHabit(h Habit) error {
	if strings.TrimSpace(h.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(h.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(h.Goal) == "" {
		return fmt.Errorf("%w: goal is required", ErrInvalidInput)
	}
	if _, ok := ParseFrequency(string(h.Frequency)); !ok {
		return fmt.Errorf("%w: unsupported frequency %q", ErrInvalidInput, h.Frequency)
	}
	if h.HasReminder() {
		if _, _, err := reminder.ParseTimeOfDay(*h.Reminder); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

package reminder

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// NativeAlarmBackend registers one daily-repeating alarm per habit on an
// AlarmClock and remembers the handle so it can be superseded or cancelled.
type NativeAlarmBackend struct {
	clock AlarmClock

	mu      sync.Mutex
	handles map[string]string
}

// NewNativeAlarmBackend creates a backend over clock.
func NewNativeAlarmBackend(clock AlarmClock) *NativeAlarmBackend {
	return &NativeAlarmBackend{
		clock:   clock,
		handles: make(map[string]string),
	}
}

// Schedule arms a daily alarm for r, replacing any earlier alarm for the habit.
func (b *NativeAlarmBackend) Schedule(ctx context.Context, r Reminder) error {
	if strings.TrimSpace(r.HabitID) == "" {
		return ErrInvalidInput
	}
	hour, minute, err := ParseTimeOfDay(r.TimeOfDay)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.handles[r.HabitID]; ok {
		if err := b.clock.Cancel(ctx, old); err != nil {
			return fmt.Errorf("cancelling previous alarm: %w", err)
		}
		delete(b.handles, r.HabitID)
	}

	handle, err := b.clock.ScheduleRecurring(ctx, r.HabitID, NotificationFor(r.HabitID, r.Title), hour, minute)
	if err != nil {
		return fmt.Errorf("scheduling alarm: %w", err)
	}
	b.handles[r.HabitID] = handle
	return nil
}

// Cancel removes the alarm for habitID, if any.
func (b *NativeAlarmBackend) Cancel(ctx context.Context, habitID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	handle, ok := b.handles[habitID]
	if !ok {
		return nil
	}
	if err := b.clock.Cancel(ctx, handle); err != nil {
		return fmt.Errorf("cancelling alarm: %w", err)
	}
	delete(b.handles, habitID)
	return nil
}

package habit

import "context"

// Repository provides durable storage for the habit collection.
type Repository interface {
	Load(ctx context.Context) ([]Habit, error)
	Add(ctx context.Context, h Habit) error
	Update(ctx context.Context, h Habit) error
	Remove(ctx context.Context, id string) error
}

// ReminderScheduler arms and cancels daily reminders. Implementations
// handle their own failures.
type ReminderScheduler interface {
	Schedule(ctx context.Context, habitID, title, timeOfDay string)
	Cancel(ctx context.Context, habitID string)
}

package reminder

import "context"

// Backend arms and cancels reminders. Scheduling the same habit twice
// replaces the earlier registration.
type Backend interface {
	Schedule(ctx context.Context, r Reminder) error
	Cancel(ctx context.Context, habitID string) error
}

// AlarmClock is a platform primitive that fires a payload every day at
// a fixed time-of-day until cancelled.
type AlarmClock interface {
	ScheduleRecurring(ctx context.Context, id string, n Notification, hour, minute int) (handle string, err error)
	Cancel(ctx context.Context, handle string) error
}

// Notifier surfaces a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Permissions reports whether notifications may be delivered.
type Permissions interface {
	RequestPermission(ctx context.Context) (bool, error)
}

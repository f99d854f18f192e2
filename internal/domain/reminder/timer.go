package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/habitkit/internal/metrics"
)

// TimerAlarmClock is an in-process AlarmClock. Each alarm is a
// time.Timer that re-arms itself for the next day after firing.
type TimerAlarmClock struct {
	notifier Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	alarms map[string]*alarm
}

type alarm struct {
	id           string
	notification Notification
	hour, minute int
	timer        *time.Timer
}

// NewTimerAlarmClock creates a clock that delivers to notifier.
func NewTimerAlarmClock(notifier Notifier, logger *slog.Logger) *TimerAlarmClock {
	return &TimerAlarmClock{
		notifier: notifier,
		logger:   loggerOrDiscard(logger),
		alarms:   make(map[string]*alarm),
	}
}

// ScheduleRecurring arms a daily alarm and returns its handle.
func (c *TimerAlarmClock) ScheduleRecurring(_ context.Context, id string, n Notification, hour, minute int) (string, error) {
	handle := uuid.NewString()
	a := &alarm{id: id, notification: n, hour: hour, minute: minute}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.alarms[handle] = a
	c.arm(handle, a, timeNow())
	return handle, nil
}

// Cancel stops the alarm behind handle. Unknown handles are ignored.
func (c *TimerAlarmClock) Cancel(_ context.Context, handle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.alarms[handle]; ok {
		a.timer.Stop()
		delete(c.alarms, handle)
	}
	return nil
}

// Pending returns the number of armed alarms.
func (c *TimerAlarmClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alarms)
}

// Close stops every alarm.
func (c *TimerAlarmClock) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for handle, a := range c.alarms {
		a.timer.Stop()
		delete(c.alarms, handle)
	}
}

// arm must be called with c.mu held.
func (c *TimerAlarmClock) arm(handle string, a *alarm, from time.Time) {
	now := timeNow()
	next := nextAt(from, a.hour, a.minute)
	a.timer = time.AfterFunc(next.Sub(now), func() { c.fire(handle) })
	c.logger.Debug("alarm armed", "habit_id", a.id, "next_fire", next)
}

func (c *TimerAlarmClock) fire(handle string) {
	c.mu.Lock()
	a, ok := c.alarms[handle]
	if !ok {
		c.mu.Unlock()
		return
	}
	n := a.notification
	// Start the search a minute later so today's slot is never picked again.
	c.arm(handle, a, timeNow().Add(time.Minute))
	c.mu.Unlock()

	err := c.notifier.Notify(context.Background(), n)
	if errors.Is(err, ErrPermissionDenied) {
		c.logger.Debug("reminder suppressed", "habit_id", n.HabitID, "error", err)
		metrics.RecordReminderOp("fire", "denied")
		return
	}
	if err != nil {
		c.logger.Error("failed to deliver reminder", "habit_id", n.HabitID, "error", err)
		return
	}
	metrics.RecordReminderFired("native")
}

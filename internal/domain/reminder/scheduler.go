package reminder

import (
	"context"
	"log/slog"

	"github.com/rpggio/habitkit/internal/metrics"
)

// Scheduler is the best-effort front of a Backend. It checks
// notification permission before arming and never returns errors: every
// failure is logged and counted.
type Scheduler struct {
	backend Backend
	perms   Permissions
	logger  *slog.Logger
}

// NewScheduler creates a scheduler. A nil perms grants every request.
func NewScheduler(backend Backend, perms Permissions, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		backend: backend,
		perms:   perms,
		logger:  loggerOrDiscard(logger),
	}
}

// Schedule arms a daily reminder for the habit at timeOfDay ("HH:mm").
func (s *Scheduler) Schedule(ctx context.Context, habitID, title, timeOfDay string) {
	if s.perms != nil {
		granted, err := s.perms.RequestPermission(ctx)
		if err != nil {
			s.logger.Error("notification permission check failed", "habit_id", habitID, "error", err)
			metrics.RecordReminderOp("schedule", "failed")
			return
		}
		if !granted {
			s.logger.Debug("reminder skipped", "habit_id", habitID, "error", ErrPermissionDenied)
			metrics.RecordReminderOp("schedule", "denied")
			return
		}
	}

	err := s.backend.Schedule(ctx, Reminder{
		HabitID:   habitID,
		Title:     title,
		TimeOfDay: timeOfDay,
	})
	if err != nil {
		s.logger.Error("failed to schedule reminder", "habit_id", habitID, "time", timeOfDay, "error", err)
		metrics.RecordReminderOp("schedule", "failed")
		return
	}
	metrics.RecordReminderOp("schedule", "success")
}

// Cancel removes any reminder for the habit.
func (s *Scheduler) Cancel(ctx context.Context, habitID string) {
	if err := s.backend.Cancel(ctx, habitID); err != nil {
		s.logger.Error("failed to cancel reminder", "habit_id", habitID, "error", err)
		metrics.RecordReminderOp("cancel", "failed")
		return
	}
	metrics.RecordReminderOp("cancel", "success")
}

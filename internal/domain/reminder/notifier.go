package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// LogNotifier surfaces notifications as structured log lines.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier writing to logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: loggerOrDiscard(logger)}
}

// Notify logs n at info level.
func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.logger.InfoContext(ctx, notification.Title,
		"habit_id", notification.HabitID,
		"body", notification.Body,
	)
	return nil
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// PermittedNotifier delivers through next only while perms grants
// notifications, so turning permission off silences armed reminders.
type PermittedNotifier struct {
	next  Notifier
	perms Permissions
}

// NewPermittedNotifier gates next behind perms. A nil perms grants every request.
func NewPermittedNotifier(next Notifier, perms Permissions) *PermittedNotifier {
	return &PermittedNotifier{next: next, perms: perms}
}

// Notify returns ErrPermissionDenied without delivering when permission is off.
func (n *PermittedNotifier) Notify(ctx context.Context, notification Notification) error {
	if n.perms != nil {
		granted, err := n.perms.RequestPermission(ctx)
		if err != nil {
			return fmt.Errorf("checking notification permission: %w", err)
		}
		if !granted {
			return ErrPermissionDenied
		}
	}
	return n.next.Notify(ctx, notification)
}

// StaticPermissions grants or denies every request.
type StaticPermissions bool

// RequestPermission returns the fixed answer.
func (p StaticPermissions) RequestPermission(context.Context) (bool, error) {
	return bool(p), nil
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/habitkit/internal/metrics"
	"github.com/rpggio/habitkit/internal/repository"
)

const (
	// KeyPrefix namespaces polled reminder entries in the KV store.
	KeyPrefix = "notification_"
	// DefaultPollInterval is how often Run checks for due reminders.
	DefaultPollInterval = time.Minute
)

// PolledBackend stores each reminder's next-fire instant in a KV store
// and relies on periodic Check calls to deliver due reminders.
type PolledBackend struct {
	kv       repository.KVStore
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger

	// mu serializes entry writes and guards titles.
	mu     sync.Mutex
	titles map[string]string
}

// NewPolledBackend creates a backend. A non-positive interval uses DefaultPollInterval.
func NewPolledBackend(kv repository.KVStore, notifier Notifier, interval time.Duration, logger *slog.Logger) *PolledBackend {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PolledBackend{
		kv:       kv,
		notifier: notifier,
		interval: interval,
		logger:   loggerOrDiscard(logger),
		titles:   make(map[string]string),
	}
}

// Schedule stores the next fire instant for r, replacing any earlier entry.
func (b *PolledBackend) Schedule(ctx context.Context, r Reminder) error {
	if strings.TrimSpace(r.HabitID) == "" {
		return ErrInvalidInput
	}
	next, err := NextFire(timeNow(), r.TimeOfDay)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.kv.Set(ctx, KeyPrefix+r.HabitID, next.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("storing reminder: %w", err)
	}
	b.titles[r.HabitID] = r.Title
	return nil
}

// Cancel removes the entry for habitID.
func (b *PolledBackend) Cancel(ctx context.Context, habitID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.kv.Delete(ctx, KeyPrefix+habitID); err != nil {
		return fmt.Errorf("removing reminder: %w", err)
	}
	delete(b.titles, habitID)
	return nil
}

// NextFireFor returns the stored next-fire instant for habitID.
func (b *PolledBackend) NextFireFor(ctx context.Context, habitID string) (time.Time, error) {
	value, err := b.kv.Get(ctx, KeyPrefix+habitID)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// dueEntry is a reminder found due by Check.
type dueEntry struct {
	habitID string
	key     string
	value   string
	next    time.Time
	title   string
}

// Check delivers every reminder whose instant is at or before now and
// advances each delivered entry by exactly one day. An entry left stale
// by downtime catches up one day per check. It returns the number of
// notifications delivered.
func (b *PolledBackend) Check(ctx context.Context, now time.Time) (int, error) {
	keys, err := b.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing reminders: %w", err)
	}

	fired := 0
	for _, key := range keys {
		entry, ok := b.due(ctx, key, now)
		if !ok {
			continue
		}

		err := b.notifier.Notify(ctx, NotificationFor(entry.habitID, entry.title))
		switch {
		case errors.Is(err, ErrPermissionDenied):
			b.logger.Debug("reminder suppressed", "habit_id", entry.habitID, "error", err)
			metrics.RecordReminderOp("fire", "denied")
		case err != nil:
			b.logger.Error("failed to deliver reminder", "habit_id", entry.habitID, "error", err)
		default:
			fired++
			metrics.RecordReminderFired("polled")
		}

		b.rearm(ctx, entry)
	}
	return fired, nil
}

// due reads key and reports whether its entry fires at now.
func (b *PolledBackend) due(ctx context.Context, key string, now time.Time) (dueEntry, bool) {
	habitID := strings.TrimPrefix(key, KeyPrefix)

	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := b.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return dueEntry{}, false // cancelled since listing
	}
	if err != nil {
		b.logger.Error("failed to read reminder", "habit_id", habitID, "error", err)
		return dueEntry{}, false
	}
	next, err := time.Parse(time.RFC3339, value)
	if err != nil {
		b.logger.Warn("dropping malformed reminder entry", "habit_id", habitID, "value", value)
		_ = b.kv.Delete(ctx, key)
		return dueEntry{}, false
	}
	next = next.In(now.Location())
	if now.Before(next) {
		return dueEntry{}, false
	}
	return dueEntry{
		habitID: habitID,
		key:     key,
		value:   value,
		next:    next,
		title:   b.titles[habitID],
	}, true
}

// rearm advances a delivered entry by one day unless it was cancelled
// or rescheduled while the notification was out.
func (b *PolledBackend) rearm(ctx context.Context, entry dueEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.kv.Get(ctx, entry.key)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		b.logger.Error("failed to re-read reminder", "habit_id", entry.habitID, "error", err)
		return
	}
	if current != entry.value {
		return
	}
	if err := b.kv.Set(ctx, entry.key, addDay(entry.next).Format(time.RFC3339)); err != nil {
		b.logger.Error("failed to re-arm reminder", "habit_id", entry.habitID, "error", err)
	}
}

// Run checks once immediately and then every interval until ctx is done.
func (b *PolledBackend) Run(ctx context.Context) {
	b.logger.Info("reminder poller started", "interval", b.interval)

	b.checkAndLog(ctx)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("reminder poller stopped")
			return
		case <-ticker.C:
			b.checkAndLog(ctx)
		}
	}
}

func (b *PolledBackend) checkAndLog(ctx context.Context) {
	fired, err := b.Check(ctx, timeNow())
	if err != nil {
		b.logger.Error("reminder check failed", "error", err)
		return
	}
	if fired > 0 {
		b.logger.Debug("reminders delivered", "count", fired)
	}
}

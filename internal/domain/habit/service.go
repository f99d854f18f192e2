package habit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rpggio/habitkit/internal/metrics"
)

// Store is the authoritative in-memory habit collection. It mirrors every
// mutation to a Repository asynchronously and keeps reminders in step.
type Store struct {
	repo      Repository
	reminders ReminderScheduler
	logger    *slog.Logger

	mu     sync.Mutex
	habits []Habit
	last   *Write
}

// NewStore creates a store. reminders and logger may be nil.
func NewStore(repo Repository, reminders ReminderScheduler, logger *slog.Logger) *Store {
	if reminders == nil {
		reminders = noopReminders{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		repo:      repo,
		reminders: reminders,
		logger:    logger,
		habits:    []Habit{},
	}
}

// Load replaces the collection with the persisted snapshot and re-arms
// every reminder. Read or decode failures are logged and leave the
// collection empty.
func (s *Store) Load(ctx context.Context) {
	stored, err := s.repo.Load(ctx)
	metrics.RecordStoreLoad(err)
	if err != nil {
		s.logger.Error("failed to load habits", "error", err)
		stored = nil
	}

	today := DateOf(timeNow())
	loaded := make([]Habit, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, h := range stored {
		if _, ok := seen[h.ID]; ok {
			s.logger.Warn("skipping duplicate habit id in snapshot", "habit_id", h.ID)
			continue
		}
		seen[h.ID] = struct{}{}
		h = h.Clone()
		h.normalize(today)
		loaded = append(loaded, h)
	}

	s.mu.Lock()
	s.habits = loaded
	s.mu.Unlock()

	for _, h := range loaded {
		if h.HasReminder() {
			s.reminders.Schedule(ctx, h.ID, h.Title, *h.Reminder)
		}
	}

	s.logger.Info("habits loaded", "count", len(loaded))
}

// AddHabit appends h as a fresh habit and persists it. Streak and
// completion history start empty. An empty id is replaced with a generated
// one; a colliding id is rejected with ErrDuplicateID.
func (s *Store) AddHabit(ctx context.Context, h Habit) (Habit, *Write, error) {
	h = h.Clone()
	h.ID = strings.TrimSpace(h.ID)
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.Title = strings.TrimSpace(h.Title)
	h.Goal = strings.TrimSpace(h.Goal)
	if err := ValidateHabit(h); err != nil {
		return Habit{}, nil, err
	}
	h.Frequency, _ = ParseFrequency(string(h.Frequency))
	if h.Reminder != nil && !h.HasReminder() {
		h.Reminder = nil
	}
	if h.Reminder != nil {
		r := strings.TrimSpace(*h.Reminder)
		h.Reminder = &r
	}
	h.Streak = 0
	h.CompletedToday = false
	h.CompletedDates = []string{}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = timeNow()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(h.ID) >= 0 {
		return Habit{}, nil, fmt.Errorf("%w: %s", ErrDuplicateID, h.ID)
	}
	s.habits = append(s.habits, h)

	stored := h.Clone()
	w := s.dispatch(ctx, "add",
		func(ctx context.Context) error { return s.repo.Add(ctx, stored) },
		func(ctx context.Context) {
			if stored.HasReminder() {
				s.reminders.Schedule(ctx, stored.ID, stored.Title, *stored.Reminder)
			}
		},
	)
	return h.Clone(), w, nil
}

// DeleteHabit removes the habit with id and cancels its reminder. Unknown
// ids are a no-op.
func (s *Store) DeleteHabit(ctx context.Context, id string) *Write {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return completedWrite()
	}
	s.habits = append(s.habits[:i:i], s.habits[i+1:]...)

	return s.dispatch(ctx, "delete",
		func(ctx context.Context) error { return s.repo.Remove(ctx, id) },
		func(ctx context.Context) { s.reminders.Cancel(ctx, id) },
	)
}

// ToggleHabit flips today's completion for the habit with id. Unknown ids
// are a no-op.
func (s *Store) ToggleHabit(ctx context.Context, id string) *Write {
	today := DateOf(timeNow())

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return completedWrite()
	}

	h := s.habits[i].Clone()
	h.CompletedToday = h.HasCompleted(today)
	if !h.CompletedToday {
		h.CompletedToday = true
		if !h.HasCompleted(today) {
			h.CompletedDates = append(h.CompletedDates, today)
		}
		h.Streak++
	} else {
		h.CompletedToday = false
		dates := make([]string, 0, len(h.CompletedDates))
		for _, d := range h.CompletedDates {
			if d != today {
				dates = append(dates, d)
			}
		}
		h.CompletedDates = dates
		h.Streak = max(0, h.Streak-1)
	}
	s.habits[i] = h

	stored := h.Clone()
	return s.dispatch(ctx, "toggle",
		func(ctx context.Context) error { return s.repo.Update(ctx, stored) },
		nil,
	)
}

// Habits returns a copy of the collection in insertion order.
func (s *Store) Habits() []Habit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Habit, len(s.habits))
	for i, h := range s.habits {
		out[i] = h.Clone()
	}
	return out
}

// Get returns a copy of the habit with id.
func (s *Store) Get(id string) (Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Habit{}, false
	}
	return s.habits[i].Clone(), true
}

// Flush waits for every write issued so far.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return nil
	}
	return last.Wait(ctx)
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}

// dispatch runs persist and then after in the background, once every
// earlier write has finished. Must be called with s.mu held.
func (s *Store) dispatch(ctx context.Context, op string, persist func(context.Context) error, after func(context.Context)) *Write {
	w := newWrite()
	prev := s.last
	s.last = w

	// The write outlives the caller's request.
	ctx = context.WithoutCancel(ctx)

	go func() {
		if prev != nil {
			<-prev.done
		}

		err := persist(ctx)
		metrics.RecordStoreWrite(op, err)
		if err != nil {
			s.logger.Error("failed to persist habits", "op", op, "error", err)
			err = fmt.Errorf("persisting %s: %w", op, err)
		}

		if after != nil {
			after(ctx)
		}
		w.finish(err)
	}()

	return w
}

type noopReminders struct{}

func (noopReminders) Schedule(context.Context, string, string, string) {}
func (noopReminders) Cancel(context.Context, string)                   {}

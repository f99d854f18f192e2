package habit_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memRepo keeps the last persisted collection in memory.
type memRepo struct {
	mu     sync.Mutex
	habits []habit.Habit
}

func (r *memRepo) Load(context.Context) ([]habit.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]habit.Habit, len(r.habits))
	for i, h := range r.habits {
		out[i] = h.Clone()
	}
	return out, nil
}

func (r *memRepo) Add(_ context.Context, h habit.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.habits = append(r.habits, h.Clone())
	return nil
}

func (r *memRepo) Update(_ context.Context, h habit.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.habits {
		if r.habits[i].ID == h.ID {
			r.habits[i] = h.Clone()
		}
	}
	return nil
}

func (r *memRepo) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.habits {
		if r.habits[i].ID == id {
			r.habits = append(r.habits[:i], r.habits[i+1:]...)
			return nil
		}
	}
	return nil
}

var day = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.Local)

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	restore := habit.SetTimeNow(func() time.Time { return at })
	t.Cleanup(restore)
}

func strPtr(s string) *string { return &s }

func readHabit(id string) habit.Habit {
	return habit.Habit{ID: id, Title: "Read", Goal: "20 pages", Frequency: habit.FrequencyDaily}
}

func TestStore_AddToggleToggle(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	repo := &memRepo{}
	store := habit.NewStore(repo, nil, nil)

	added, w, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)
	require.NoError(t, w.Wait(ctx))
	require.Equal(t, "1", added.ID)
	require.Equal(t, 0, added.Streak)
	require.False(t, added.CompletedToday)
	require.Equal(t, float64(0), added.Progress())

	require.NoError(t, store.ToggleHabit(ctx, "1").Wait(ctx))
	h, ok := store.Get("1")
	require.True(t, ok)
	require.True(t, h.CompletedToday)
	require.Equal(t, 1, h.Streak)
	require.Equal(t, float64(1), h.Progress())
	require.Equal(t, []string{"2024-03-10"}, h.CompletedDates)

	require.NoError(t, store.ToggleHabit(ctx, "1").Wait(ctx))
	h, _ = store.Get("1")
	require.False(t, h.CompletedToday)
	require.Equal(t, 0, h.Streak)
	require.Equal(t, float64(0), h.Progress())
	require.Empty(t, h.CompletedDates)

	persisted, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	require.Equal(t, h, persisted[0])
}

func TestStore_AddDistinctIDs(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store := habit.NewStore(&memRepo{}, nil, nil)

	for i := range 5 {
		_, _, err := store.AddHabit(ctx, readHabit(fmt.Sprintf("h%d", i)))
		require.NoError(t, err)
	}
	require.NoError(t, store.Flush(ctx))

	require.Len(t, store.Habits(), 5)
	for i := range 5 {
		_, ok := store.Get(fmt.Sprintf("h%d", i))
		require.True(t, ok)
	}
}

func TestStore_AddGeneratesID(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store := habit.NewStore(&memRepo{}, nil, nil)

	added, _, err := store.AddHabit(ctx, readHabit(""))
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	require.Equal(t, day, added.CreatedAt)
}

func TestStore_AddDuplicateID(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store := habit.NewStore(&memRepo{}, nil, nil)

	_, _, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)
	_, w, err := store.AddHabit(ctx, readHabit("1"))
	require.ErrorIs(t, err, habit.ErrDuplicateID)
	require.Nil(t, w)
	require.Len(t, store.Habits(), 1)
}

func TestStore_AddValidation(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()

	cases := map[string]habit.Habit{
		"missing title":     {ID: "1", Goal: "g"},
		"missing goal":      {ID: "1", Title: "t"},
		"bad frequency":     {ID: "1", Title: "t", Goal: "g", Frequency: "Hourly"},
		"bad reminder":      {ID: "1", Title: "t", Goal: "g", Reminder: strPtr("7:5")},
		"reminder too late": {ID: "1", Title: "t", Goal: "g", Reminder: strPtr("24:00")},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			store := habit.NewStore(&memRepo{}, nil, nil)
			_, _, err := store.AddHabit(ctx, h)
			require.ErrorIs(t, err, habit.ErrInvalidInput)
			require.Empty(t, store.Habits())
		})
	}
}

func TestStore_AddSchedulesReminder(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	reminders := &mocks.ReminderScheduler{}
	reminders.On("Schedule", mock.Anything, "1", "Read", "07:00").Return()

	store := habit.NewStore(&memRepo{}, reminders, nil)
	h := readHabit("1")
	h.Reminder = strPtr("07:00")
	_, w, err := store.AddHabit(ctx, h)
	require.NoError(t, err)
	require.NoError(t, w.Wait(ctx))

	reminders.AssertExpectations(t)
}

func TestStore_DeleteCancelsReminder(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	reminders := &mocks.ReminderScheduler{}
	reminders.On("Schedule", mock.Anything, "1", "Read", "07:00").Return()
	reminders.On("Cancel", mock.Anything, "1").Return()

	repo := &memRepo{}
	store := habit.NewStore(repo, reminders, nil)
	h := readHabit("1")
	h.Reminder = strPtr("07:00")
	_, _, err := store.AddHabit(ctx, h)
	require.NoError(t, err)
	_, _, err = store.AddHabit(ctx, readHabit("2"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteHabit(ctx, "1").Wait(ctx))

	habits := store.Habits()
	require.Len(t, habits, 1)
	require.Equal(t, "2", habits[0].ID)
	persisted, _ := repo.Load(ctx)
	require.Len(t, persisted, 1)
	reminders.AssertExpectations(t)
	reminders.AssertNumberOfCalls(t, "Cancel", 1)
}

func TestStore_UnknownIDIsNoop(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	repo := &mocks.HabitRepository{}
	repo.On("Add", mock.Anything, mock.Anything).Return(nil)
	reminders := &mocks.ReminderScheduler{}

	store := habit.NewStore(repo, reminders, nil)
	_, _, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)
	before := store.Habits()

	w := store.DeleteHabit(ctx, "missing")
	select {
	case <-w.Done():
	default:
		t.Fatal("no-op delete should return a finished write")
	}
	require.NoError(t, store.ToggleHabit(ctx, "missing").Wait(ctx))
	require.NoError(t, store.Flush(ctx))

	require.Equal(t, before, store.Habits())
	repo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	reminders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestStore_StreakNeverNegative(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	repo := &memRepo{habits: []habit.Habit{{
		ID: "1", Title: "Read", Goal: "g", Frequency: habit.FrequencyDaily,
		Streak: 0, CompletedDates: []string{"2024-03-10"},
	}}}
	store := habit.NewStore(repo, nil, nil)
	store.Load(ctx)

	h, _ := store.Get("1")
	require.True(t, h.CompletedToday)

	require.NoError(t, store.ToggleHabit(ctx, "1").Wait(ctx))
	h, _ = store.Get("1")
	require.False(t, h.CompletedToday)
	require.Equal(t, 0, h.Streak)
}

func TestStore_ToggleAcrossDays(t *testing.T) {
	ctx := context.Background()
	now := day
	restore := habit.SetTimeNow(func() time.Time { return now })
	t.Cleanup(restore)

	store := habit.NewStore(&memRepo{}, nil, nil)
	_, _, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)

	require.NoError(t, store.ToggleHabit(ctx, "1").Wait(ctx))
	now = day.AddDate(0, 0, 1)
	require.NoError(t, store.ToggleHabit(ctx, "1").Wait(ctx))

	h, _ := store.Get("1")
	require.True(t, h.CompletedToday)
	require.Equal(t, 2, h.Streak)
	require.Equal(t, []string{"2024-03-10", "2024-03-11"}, h.CompletedDates)
}

func TestStore_LoadRoundTrip(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	repo := &memRepo{}
	store := habit.NewStore(repo, nil, nil)

	_, _, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)
	_, _, err = store.AddHabit(ctx, readHabit("2"))
	require.NoError(t, err)
	store.ToggleHabit(ctx, "2")
	store.DeleteHabit(ctx, "1")
	require.NoError(t, store.Flush(ctx))

	reloaded := habit.NewStore(repo, nil, nil)
	reloaded.Load(ctx)
	require.Equal(t, store.Habits(), reloaded.Habits())
}

func TestStore_LoadRearmsReminders(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	repo := &mocks.HabitRepository{}
	repo.On("Load", ctx).Return([]habit.Habit{
		{ID: "1", Title: "Read", Goal: "g", Reminder: strPtr("07:00")},
		{ID: "2", Title: "Run", Goal: "g"},
	}, nil)
	reminders := &mocks.ReminderScheduler{}
	reminders.On("Schedule", ctx, "1", "Read", "07:00").Return()

	store := habit.NewStore(repo, reminders, nil)
	store.Load(ctx)

	require.Len(t, store.Habits(), 2)
	reminders.AssertExpectations(t)
	reminders.AssertNumberOfCalls(t, "Schedule", 1)
}

func TestStore_LoadFailureLeavesEmpty(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.HabitRepository{}
	repo.On("Load", ctx).Return(nil, errors.New("corrupt"))

	store := habit.NewStore(repo, nil, nil)
	store.Load(ctx)
	require.Empty(t, store.Habits())
}

func TestStore_WriteFailureKeepsMemory(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	repo := &mocks.HabitRepository{}
	repo.On("Add", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	store := habit.NewStore(repo, nil, nil)
	_, w, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)
	require.ErrorContains(t, w.Wait(ctx), "disk full")

	_, ok := store.Get("1")
	require.True(t, ok)
}

func TestStore_WritesApplyInOrder(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	repo := &memRepo{}
	store := habit.NewStore(repo, nil, nil)

	_, _, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)
	for range 11 {
		store.ToggleHabit(ctx, "1")
	}
	require.NoError(t, store.Flush(ctx))

	persisted, _ := repo.Load(ctx)
	require.Len(t, persisted, 1)
	require.True(t, persisted[0].CompletedToday)
	require.Equal(t, 1, persisted[0].Streak)
}

func TestStore_ConcurrentToggles(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store := habit.NewStore(&memRepo{}, nil, nil)
	_, _, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.ToggleHabit(ctx, "1")
		}()
	}
	wg.Wait()
	require.NoError(t, store.Flush(ctx))

	h, _ := store.Get("1")
	require.False(t, h.CompletedToday)
	require.Equal(t, 0, h.Streak)
	require.Empty(t, h.CompletedDates)
}

func TestStore_HabitsReturnsCopies(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store := habit.NewStore(&memRepo{}, nil, nil)
	_, _, err := store.AddHabit(ctx, readHabit("1"))
	require.NoError(t, err)
	require.NoError(t, store.ToggleHabit(ctx, "1").Wait(ctx))

	habits := store.Habits()
	habits[0].CompletedDates[0] = "1999-01-01"
	habits[0].Title = "changed"

	h, _ := store.Get("1")
	require.Equal(t, "Read", h.Title)
	require.Equal(t, []string{"2024-03-10"}, h.CompletedDates)
}

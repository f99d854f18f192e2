package mocks

import (
	"context"

	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/domain/reminder"
	"github.com/stretchr/testify/mock"
)

// KVStore is a mock for repository.KVStore.
type KVStore struct {
	mock.Mock
}

func (m *KVStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *KVStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

// HabitRepository is a mock for habit.Repository.
type HabitRepository struct {
	mock.Mock
}

func (m *HabitRepository) Load(ctx context.Context) ([]habit.Habit, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]habit.Habit); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HabitRepository) Add(ctx context.Context, h habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *HabitRepository) Update(ctx context.Context, h habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *HabitRepository) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ReminderScheduler is a mock for habit.ReminderScheduler.
type ReminderScheduler struct {
	mock.Mock
}

func (m *ReminderScheduler) Schedule(ctx context.Context, habitID, title, timeOfDay string) {
	m.Called(ctx, habitID, title, timeOfDay)
}

func (m *ReminderScheduler) Cancel(ctx context.Context, habitID string) {
	m.Called(ctx, habitID)
}

// ReminderBackend is a mock for reminder.Backend.
type ReminderBackend struct {
	mock.Mock
}

func (m *ReminderBackend) Schedule(ctx context.Context, r reminder.Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ReminderBackend) Cancel(ctx context.Context, habitID string) error {
	args := m.Called(ctx, habitID)
	return args.Error(0)
}

// AlarmClock is a mock for reminder.AlarmClock.
type AlarmClock struct {
	mock.Mock
}

func (m *AlarmClock) ScheduleRecurring(ctx context.Context, id string, n reminder.Notification, hour, minute int) (string, error) {
	args := m.Called(ctx, id, n, hour, minute)
	return args.String(0), args.Error(1)
}

func (m *AlarmClock) Cancel(ctx context.Context, handle string) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

// Notifier is a mock for reminder.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, n reminder.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// Permissions is a mock for reminder.Permissions.
type Permissions struct {
	mock.Mock
}

func (m *Permissions) RequestPermission(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

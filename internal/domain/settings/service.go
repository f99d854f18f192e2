package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/habitkit/internal/repository"
)

// Key is the KV key holding the settings document.
const Key = "settings-storage"

// envelope matches the persisted layout {"state": ..., "version": n}.
type envelope struct {
	State   Settings `json:"state"`
	Version int      `json:"version"`
}

// Service reads and updates user settings in a KV store.
type Service struct {
	kv     repository.KVStore
	logger *slog.Logger

	mu sync.Mutex
}

// NewService creates a settings service.
func NewService(kv repository.KVStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{kv: kv, logger: logger}
}

// Get returns the stored settings, or defaults when none are stored or
// the stored document is unreadable.
func (s *Service) Get(ctx context.Context) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// ToggleDarkMode flips dark mode and its theme and returns the result.
func (s *Service) ToggleDarkMode(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load(ctx)
	st.DarkMode = !st.DarkMode
	st.Theme = ThemeFor(st.DarkMode)
	if err := s.save(ctx, st); err != nil {
		return Settings{}, err
	}
	return st, nil
}

// UpdateNotification sets one notification preference and returns the result.
func (s *Service) UpdateNotification(ctx context.Context, key NotificationKey, value bool) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load(ctx)
	if !st.Notifications.set(key, value) {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	if err := s.save(ctx, st); err != nil {
		return Settings{}, err
	}
	return st, nil
}

// RequestPermission grants reminders while notifications and daily
// reminders are both enabled.
func (s *Service) RequestPermission(ctx context.Context) (bool, error) {
	n := s.Get(ctx).Notifications
	return n.Enabled && n.DailyReminder, nil
}

func (s *Service) load(ctx context.Context) Settings {
	raw, err := s.kv.Get(ctx, Key)
	if errors.Is(err, repository.ErrNotFound) {
		return Defaults()
	}
	if err != nil {
		s.logger.Error("failed to read settings", "error", err)
		return Defaults()
	}

	env := envelope{State: Defaults()}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		s.logger.Warn("ignoring malformed settings", "error", err)
		return Defaults()
	}
	env.State.Theme = ThemeFor(env.State.DarkMode)
	return env.State
}

func (s *Service) save(ctx context.Context, st Settings) error {
	data, err := json.Marshal(envelope{State: st})
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

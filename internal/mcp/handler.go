package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/domain/settings"
)

// HabitService defines habit operations needed by MCP.
type HabitService interface {
	AddHabit(ctx context.Context, h habit.Habit) (habit.Habit, *habit.Write, error)
	DeleteHabit(ctx context.Context, id string) *habit.Write
	ToggleHabit(ctx context.Context, id string) *habit.Write
	Habits() []habit.Habit
	Get(id string) (habit.Habit, bool)
	Stats(window int) habit.Stats
}

// SettingsService defines settings operations needed by MCP.
type SettingsService interface {
	Get(ctx context.Context) settings.Settings
	ToggleDarkMode(ctx context.Context) (settings.Settings, error)
	UpdateNotification(ctx context.Context, key settings.NotificationKey, value bool) (settings.Settings, error)
}

// Handler dispatches MCP tool calls.
type Handler struct {
	habits   HabitService
	settings SettingsService
	logger   *slog.Logger
}

// NewHandler creates a new MCP handler.
func NewHandler(habits HabitService, settingsSvc SettingsService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		habits:   habits,
		settings: settingsSvc,
		logger:   logger,
	}
}

// Handle dispatches a tool call to the domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "list_habits":
		habits := h.habits.Habits()
		resp := ListHabitsResponse{Habits: make([]HabitResponse, 0, len(habits))}
		for _, hb := range habits {
			resp.Habits = append(resp.Habits, toHabitResponse(hb))
		}
		if len(habits) > 0 {
			resp.TodayProgress = h.habits.Stats(1).Days[0].Progress
		}
		return resp, nil
	case "add_habit":
		var req AddHabitParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		added, write, err := h.habits.AddHabit(ctx, habit.Habit{
			ID:        req.ID,
			Title:     req.Title,
			Goal:      req.Goal,
			Frequency: habit.Frequency(req.Frequency),
			Reminder:  req.Reminder,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := toHabitResponse(added)
		return MutationResponse{Habit: &resp, Warning: h.await(ctx, write)}, nil
	case "delete_habit":
		var req HabitIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if _, ok := h.habits.Get(req.ID); !ok {
			return nil, mapError(fmt.Errorf("%w: %s", habit.ErrHabitNotFound, req.ID))
		}
		write := h.habits.DeleteHabit(ctx, req.ID)
		return MutationResponse{Deleted: req.ID, Warning: h.await(ctx, write)}, nil
	case "toggle_habit":
		var req HabitIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if _, ok := h.habits.Get(req.ID); !ok {
			return nil, mapError(fmt.Errorf("%w: %s", habit.ErrHabitNotFound, req.ID))
		}
		write := h.habits.ToggleHabit(ctx, req.ID)
		warning := h.await(ctx, write)
		toggled, ok := h.habits.Get(req.ID)
		if !ok {
			return nil, mapError(fmt.Errorf("%w: %s", habit.ErrHabitNotFound, req.ID))
		}
		resp := toHabitResponse(toggled)
		return MutationResponse{Habit: &resp, Warning: warning}, nil
	case "habit_stats":
		var req HabitStatsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Days < 0 {
			return nil, invalidInput("days must be positive")
		}
		return h.habits.Stats(req.Days), nil
	case "get_settings":
		return SettingsResponse{Settings: h.settings.Get(ctx)}, nil
	case "update_settings":
		var req UpdateSettingsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.updateSettings(ctx, req)
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) updateSettings(ctx context.Context, req UpdateSettingsParams) (any, error) {
	if req.DarkMode == nil && req.Notification == "" {
		return nil, invalidInput("nothing to update: set dark_mode or notification")
	}
	if req.Notification != "" && req.Value == nil {
		return nil, invalidInput("value is required with notification")
	}

	current := h.settings.Get(ctx)
	if req.DarkMode != nil && *req.DarkMode != current.DarkMode {
		updated, err := h.settings.ToggleDarkMode(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		current = updated
	}
	if req.Notification != "" {
		updated, err := h.settings.UpdateNotification(ctx, settings.NotificationKey(req.Notification), *req.Value)
		if err != nil {
			return nil, mapError(err)
		}
		current = updated
	}
	return SettingsResponse{Settings: current}, nil
}

// await waits for a durable write and turns its failure into a warning.
func (h *Handler) await(ctx context.Context, w *habit.Write) string {
	if w == nil {
		return ""
	}
	if err := w.Wait(ctx); err != nil {
		h.logger.Warn("habit change not persisted", "session_id", getSessionID(ctx), "error", err)
		return fmt.Sprintf("change applied but not persisted: %v", err)
	}
	return ""
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return invalidInput("malformed arguments: %v", err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

package mcp

import (
	"time"

	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/domain/settings"
)

type AddHabitParams struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Goal      string  `json:"goal"`
	Frequency string  `json:"frequency,omitempty"`
	Reminder  *string `json:"reminder,omitempty"`
}

type HabitIDParams struct {
	ID string `json:"id"`
}

type HabitStatsParams struct {
	Days int `json:"days,omitempty"`
}

type UpdateSettingsParams struct {
	DarkMode     *bool  `json:"dark_mode,omitempty"`
	Notification string `json:"notification,omitempty"`
	Value        *bool  `json:"value,omitempty"`
}

type HabitResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Goal           string    `json:"goal"`
	Frequency      string    `json:"frequency"`
	Reminder       *string   `json:"reminder"`
	Streak         int       `json:"streak"`
	CompletedToday bool      `json:"completed_today"`
	Progress       float64   `json:"progress"`
	CompletedDates []string  `json:"completed_dates"`
	CreatedAt      time.Time `json:"created_at"`
}

type ListHabitsResponse struct {
	Habits        []HabitResponse `json:"habits"`
	TodayProgress float64         `json:"today_progress"`
}

// MutationResponse reports a change. Warning is set when the change was
// applied in memory but could not be persisted.
type MutationResponse struct {
	Habit   *HabitResponse `json:"habit,omitempty"`
	Deleted string         `json:"deleted,omitempty"`
	Warning string         `json:"warning,omitempty"`
}

type SettingsResponse struct {
	Settings settings.Settings `json:"settings"`
}

func toHabitResponse(h habit.Habit) HabitResponse {
	dates := h.CompletedDates
	if dates == nil {
		dates = []string{}
	}
	return HabitResponse{
		ID:             h.ID,
		Title:          h.Title,
		Goal:           h.Goal,
		Frequency:      string(h.Frequency),
		Reminder:       h.Reminder,
		Streak:         h.Streak,
		CompletedToday: h.CompletedToday,
		Progress:       h.Progress(),
		CompletedDates: dates,
		CreatedAt:      h.CreatedAt,
	}
}

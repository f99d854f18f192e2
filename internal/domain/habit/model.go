package habit

import (
	"slices"
	"strings"
	"time"
)

// DateLayout formats calendar-date completion markers.
const DateLayout = "2006-01-02"

// Frequency describes how often a habit is meant to be done. It is
// informational only; scheduling does not enforce it.
type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// ParseFrequency accepts any casing of daily/weekly/monthly. Empty means daily.
func ParseFrequency(s string) (Frequency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "daily":
		return FrequencyDaily, true
	case "weekly":
		return FrequencyWeekly, true
	case "monthly":
		return FrequencyMonthly, true
	default:
		return "", false
	}
}

// Habit is one user-tracked activity with its completion history.
type Habit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Goal           string    `json:"goal"`
	Frequency      Frequency `json:"frequency"`
	Reminder       *string   `json:"reminder"`
	Streak         int       `json:"streak"`
	CompletedToday bool      `json:"completedToday"`
	CompletedDates []string  `json:"completedDates"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Progress is 1 when the habit is completed today and 0 otherwise.
func (h Habit) Progress() float64 {
	if h.CompletedToday {
		return 1
	}
	return 0
}

// HasCompleted reports whether date (YYYY-MM-DD) carries a completion marker.
func (h Habit) HasCompleted(date string) bool {
	return slices.Contains(h.CompletedDates, date)
}

// HasReminder reports whether a reminder time is set.
func (h Habit) HasReminder() bool {
	return h.Reminder != nil && strings.TrimSpace(*h.Reminder) != ""
}

// Clone returns a deep copy.
func (h Habit) Clone() Habit {
	out := h
	if h.Reminder != nil {
		r := *h.Reminder
		out.Reminder = &r
	}
	if h.CompletedDates != nil {
		out.CompletedDates = slices.Clone(h.CompletedDates)
	}
	return out
}

// normalize drops duplicate markers, clamps the streak and derives
// CompletedToday for today.
func (h *Habit) normalize(today string) {
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	seen := make(map[string]struct{}, len(h.CompletedDates))
	dates := h.CompletedDates[:0]
	for _, d := range h.CompletedDates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	h.CompletedDates = dates
	if h.Streak < 0 {
		h.Streak = 0
	}
	h.CompletedToday = h.HasCompleted(today)
}

// DateOf returns the local calendar-date marker for t.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

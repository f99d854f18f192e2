package habit

import (
	"slices"
	"time"
)

// DefaultStatsWindow is the trailing window used when none is given.
const DefaultStatsWindow = 7

// DayStat summarises one calendar date.
type DayStat struct {
	Date      string  `json:"date"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Progress  float64 `json:"progress"`
}

// HabitStat summarises one habit over the window.
type HabitStat struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
}

// Stats is a trailing-window report over the collection.
type Stats struct {
	From           string      `json:"from"`
	To             string      `json:"to"`
	Days           []DayStat   `json:"days"`
	Habits         []HabitStat `json:"habits"`
	CompletionRate float64     `json:"completionRate"`
}

// Stats reports the trailing window of days ending today.
func (s *Store) Stats(window int) Stats {
	return ComputeStats(s.Habits(), timeNow(), window)
}

// ComputeStats reports the window days ending on now's date. A window
// below one falls back to DefaultStatsWindow.
func ComputeStats(habits []Habit, now time.Time, window int) Stats {
	if window < 1 {
		window = DefaultStatsWindow
	}
	today := DateOf(now)
	end, _ := parseDate(today)

	dates := make([]string, window)
	for i := range window {
		dates[i] = end.AddDate(0, 0, i-window+1).Format(DateLayout)
	}

	st := Stats{
		From:   dates[0],
		To:     today,
		Days:   make([]DayStat, 0, window),
		Habits: make([]HabitStat, 0, len(habits)),
	}

	for _, d := range dates {
		ds := DayStat{Date: d, Total: len(habits), Progress: DayProgress(habits, d)}
		for _, h := range habits {
			if h.HasCompleted(d) {
				ds.Completed++
			}
		}
		st.Days = append(st.Days, ds)
	}

	done := 0
	for _, h := range habits {
		cur, longest := ConsecutiveStreaks(h.CompletedDates, today)
		hs := HabitStat{ID: h.ID, Title: h.Title, CurrentStreak: cur, LongestStreak: longest}
		for _, d := range dates {
			if h.HasCompleted(d) {
				hs.Completed++
			}
		}
		hs.CompletionRate = float64(hs.Completed) / float64(window)
		done += hs.Completed
		st.Habits = append(st.Habits, hs)
	}
	if len(habits) > 0 {
		st.CompletionRate = float64(done) / float64(window*len(habits))
	}
	return st
}

// DayProgress is the share of habits completed on date, in [0,1].
func DayProgress(habits []Habit, date string) float64 {
	if len(habits) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range habits {
		if h.HasCompleted(date) {
			sum++
		}
	}
	return sum / float64(len(habits))
}

// ConsecutiveStreaks returns the current and longest runs of consecutive
// completed dates. The current run counts back from today, or from
// yesterday when today is not yet completed. Unparseable markers are ignored.
func ConsecutiveStreaks(completed []string, today string) (current, longest int) {
	days := make([]time.Time, 0, len(completed))
	for _, s := range completed {
		if d, ok := parseDate(s); ok {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return 0, 0
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	days = slices.Compact(days)

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	t, ok := parseDate(today)
	if !ok {
		return 0, longest
	}
	last := days[len(days)-1]
	if !last.Equal(t) && !last.Equal(t.AddDate(0, 0, -1)) {
		return 0, longest
	}
	current = 1
	for i := len(days) - 1; i > 0; i-- {
		if !days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			break
		}
		current++
	}
	return current, longest
}

// parseDate reads a marker as a UTC midnight so day arithmetic is exact.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

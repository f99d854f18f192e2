package reminder

// Reminder is a request to deliver a daily notification for a habit.
type Reminder struct {
	HabitID   string `json:"habit_id"`
	Title     string `json:"title"`
	TimeOfDay string `json:"time_of_day"` // "HH:mm"
}

// Notification is the payload surfaced to the user when a reminder is due.
type Notification struct {
	HabitID string `json:"habit_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

const notificationTitle = "Habit Reminder"

// NotificationFor builds the payload for a habit titled title.
func NotificationFor(habitID, title string) Notification {
	body := "Time to complete your habit!"
	if title != "" {
		body = "Time to " + title + "!"
	}
	return Notification{
		HabitID: habitID,
		Title:   notificationTitle,
		Body:    body,
	}
}

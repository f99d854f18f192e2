package settings

// Theme is the colour palette that follows the dark-mode flag.
type Theme struct {
	Background    string `json:"background"`
	Text          string `json:"text"`
	SecondaryText string `json:"secondaryText"`
	Card          string `json:"card"`
	Border        string `json:"border"`
	Primary       string `json:"primary"`
	Error         string `json:"error"`
	Success       string `json:"success"`
}

var (
	LightTheme = Theme{
		Background:    "#FFFFFF",
		Text:          "#1F2937",
		SecondaryText: "#6B7280",
		Card:          "#F9FAFB",
		Border:        "#E5E7EB",
		Primary:       "#6366F1",
		Error:         "#EF4444",
		Success:       "#10B981",
	}
	DarkTheme = Theme{
		Background:    "#111827",
		Text:          "#F9FAFB",
		SecondaryText: "#9CA3AF",
		Card:          "#1F2937",
		Border:        "#374151",
		Primary:       "#818CF8",
		Error:         "#F87171",
		Success:       "#34D399",
	}
)

// Notifications holds the user's notification preferences.
type Notifications struct {
	Enabled           bool `json:"enabled"`
	DailyReminder     bool `json:"dailyReminder"`
	WeeklyReport      bool `json:"weeklyReport"`
	AchievementAlerts bool `json:"achievementAlerts"`
}

// Settings is the persisted user preference document.
type Settings struct {
	DarkMode      bool          `json:"darkMode"`
	Theme         Theme         `json:"theme"`
	Notifications Notifications `json:"notifications"`
}

// NotificationKey names one field of Notifications.
type NotificationKey string

const (
	KeyEnabled           NotificationKey = "enabled"
	KeyDailyReminder     NotificationKey = "dailyReminder"
	KeyWeeklyReport      NotificationKey = "weeklyReport"
	KeyAchievementAlerts NotificationKey = "achievementAlerts"
)

// Defaults returns the settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		DarkMode: false,
		Theme:    LightTheme,
		Notifications: Notifications{
			Enabled:           true,
			DailyReminder:     true,
			WeeklyReport:      true,
			AchievementAlerts: true,
		},
	}
}

// ThemeFor returns the palette matching darkMode.
func ThemeFor(darkMode bool) Theme {
	if darkMode {
		return DarkTheme
	}
	return LightTheme
}

func (n *Notifications) set(key NotificationKey, value bool) bool {
	switch key {
	case KeyEnabled:
		n.Enabled = value
	case KeyDailyReminder:
		n.DailyReminder = value
	case KeyWeeklyReport:
		n.WeeklyReport = value
	case KeyAchievementAlerts:
		n.AchievementAlerts = value
	default:
		return false
	}
	return true
}

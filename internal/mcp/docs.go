package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `habitkit tracks daily habits: completion per day, streaks, progress and reminders.

Core concepts:
- Habit: title + goal + informational frequency, optional daily reminder "HH:mm" (local time).
- Completion: one marker per calendar day. toggle_habit flips today's marker.
- Streak: +1 when completing, -1 when undoing (never below 0). habit_stats reports true consecutive-day runs.
- Progress: 1 when completed today, else 0.

Workflow:
1) list_habits to see ids and today's state.
2) add_habit / toggle_habit / delete_habit to change things. Mutations wait until the change is stored;
   a "warning" field means it was applied but could not be persisted.
3) habit_stats{days} for a trailing summary.
4) Reminders only fire while notifications.enabled and notifications.dailyReminder are true (see get_settings).

Docs:
- habitkit://docs/index
- habitkit://docs/reminders
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "habitkit://docs/index",
		Name:        "docs_index",
		Title:       "habitkit docs index",
		Description: "What the tools do and how habit state changes over a day.",
		Content: `# habitkit: Agent Docs Index

## Tools

- list_habits: every habit plus today_progress (share of habits done today).
- add_habit{title, goal, frequency?, reminder?, id?}: id is generated when omitted; duplicate ids are rejected (DUPLICATE_ID).
- toggle_habit{id}: done today <-> not done today.
- delete_habit{id}: removes the habit and its reminder.
- habit_stats{days?}: per-day progress, per-habit current/longest streaks, completion rate.
- get_settings / update_settings{dark_mode?, notification?, value?}.

## Day boundaries

"Today" is the server's local calendar date. After midnight a habit reads as not done until toggled again;
the previous day's marker stays in completed_dates.

## Errors

Tool errors come back as JSON with code, message and recovery_hint:
INVALID_INPUT, DUPLICATE_ID, HABIT_NOT_FOUND.
`,
	},
	{
		URI:         "habitkit://docs/reminders",
		Name:        "docs_reminders",
		Title:       "Reminders",
		Description: "How daily reminders are armed, delivered and cancelled.",
		Content: `# Reminders

- A reminder is a daily "HH:mm" time on a habit. It is armed when the habit is added and re-armed at startup.
- Delivery happens at the next matching local time; if that time already passed today, tomorrow.
- Deleting a habit cancels its reminder.
- Reminders are skipped while notifications are disabled in settings. Changing the setting does not
  re-arm existing habits until the next restart.
- Two backends exist: an in-process alarm clock (native) and a stored next-fire time checked once per
  poll interval (polled). The polled backend delivers at most one missed reminder per check.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

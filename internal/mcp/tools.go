package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
	ReadOnly    bool
}

func idSchema(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"id"},
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Habits
		{
			Name:        "list_habits",
			Description: "List all habits with today's completion state, streak and progress",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			ReadOnly: true,
		},
		{
			Name:        "add_habit",
			Description: "Create a habit, optionally with a daily reminder time",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Unique habit identifier (optional, will be generated if not provided)",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Short habit name, e.g. Read",
					},
					"goal": map[string]any{
						"type":        "string",
						"description": "Free-text goal, e.g. 20 pages",
					},
					"frequency": map[string]any{
						"type":        "string",
						"description": "How often the habit is meant to be done (informational)",
						"enum":        []string{"daily", "weekly", "monthly"},
					},
					"reminder": map[string]any{
						"type":        "string",
						"description": "Daily reminder time as HH:mm (24h, local time)",
						"pattern":     "^[0-2][0-9]:[0-5][0-9]$",
					},
				},
				"required": []string{"title", "goal"},
			},
		},
		{
			Name:        "delete_habit",
			Description: "Delete a habit and cancel its reminder",
			InputSchema: idSchema("Habit ID"),
		},
		{
			Name:        "toggle_habit",
			Description: "Mark a habit done for today, or undo today's completion",
			InputSchema: idSchema("Habit ID"),
		},
		{
			Name:        "habit_stats",
			Description: "Completion statistics and consecutive-day streaks over a trailing window",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"days": map[string]any{
						"type":        "integer",
						"description": "Window length in days ending today (default 7)",
						"minimum":     1,
					},
				},
			},
			ReadOnly: true,
		},

		// Settings
		{
			Name:        "get_settings",
			Description: "Get display and notification settings",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			ReadOnly: true,
		},
		{
			Name:        "update_settings",
			Description: "Set dark mode and/or one notification preference",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dark_mode": map[string]any{
						"type":        "boolean",
						"description": "Desired dark mode state",
					},
					"notification": map[string]any{
						"type":        "string",
						"description": "Notification preference to change",
						"enum":        []string{"enabled", "dailyReminder", "weeklyReport", "achievementAlerts"},
					},
					"value": map[string]any{
						"type":        "boolean",
						"description": "New value for the notification preference",
					},
				},
			},
		},
	}
}

// registerTools adds every catalog tool to server, backed by handler.
func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		tool := &sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
		if def.ReadOnly {
			tool.Annotations = &sdkmcp.ToolAnnotations{ReadOnlyHint: true}
		}
		server.AddTool(tool, toolHandler(handler, def.Name, logger))
	}
}

func toolHandler(handler *Handler, name string, logger *slog.Logger) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}

		result, err := handler.Handle(ctx, name, args)
		if err != nil {
			apiErr := MapError(err)
			if apiErr == nil {
				logger.Error("tool call failed", "tool", name, "session_id", getSessionID(ctx), "error", err)
				apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
			}
			return errorResult(apiErr), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		}, nil
	}
}

func errorResult(apiErr *APIError) *sdkmcp.CallToolResult {
	data, err := json.Marshal(apiErr)
	if err != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}

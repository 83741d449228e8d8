package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/neilberkman/tickr/internal/core/db"
	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

// ListTimeEntriesArgs defines arguments for the list_time_entries tool
type ListTimeEntriesArgs struct {
	Query    string `json:"query,omitempty" jsonschema:"description=Full-text search over activity and description"`
	Tag      string `json:"tag,omitempty" jsonschema:"description=Only entries with this tag"`
	Activity string `json:"activity,omitempty" jsonschema:"description=Only activities containing this text"`
	Since    string `json:"since,omitempty" jsonschema:"description=Only entries started at or after this time"`
	Until    string `json:"until,omitempty" jsonschema:"description=Only entries started before this time"`
	Limit    int    `json:"limit,omitempty" jsonschema:"description=Max entries to return (default: 20)"`
}

// GetTimeEntryArgs defines arguments for the get_time_entry tool
type GetTimeEntryArgs struct {
	ID string `json:"id" jsonschema:"description=Entry id or unique id prefix,required"`
}

// EntryDetail is the JSON form of one entry
type EntryDetail struct {
	ID          string   `json:"id"`
	Activity    string   `json:"activity"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	Elapsed     int64    `json:"elapsed_seconds"`
	Duration    string   `json:"duration"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Synced      bool     `json:"synced"`
}

// StatsSummary is the JSON form of tracking_stats
type StatsSummary struct {
	TotalEntries    int    `json:"total_entries"`
	TotalTracked    string `json:"total_tracked"`
	Today           string `json:"today"`
	LastSevenDays   string `json:"last_seven_days"`
	TopActivity     string `json:"top_activity,omitempty"`
	TopActivityTime string `json:"top_activity_time,omitempty"`
	TopTag          string `json:"top_tag,omitempty"`
	UnsyncedEntries int    `json:"unsynced_entries"`
}

// StartServer starts the MCP server on stdio
func StartServer(dbPath string, log zerolog.Logger) error {
	// Open database
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing database")
		}
	}()

	return server.ServeStdio(NewServer(database))
}

// NewServer registers the tools over an open database
func NewServer(database *db.DB) *server.MCPServer {
	s := server.NewMCPServer(
		"tickr",
		"1.0.0",
	)

	listTool := mcp.NewTool("list_time_entries",
		mcp.WithDescription("List tracked time entries, newest first. Supports full-text search plus tag, activity and date filters."),
		mcp.WithString("query",
			mcp.Description("Full-text search over activity and description")),
		mcp.WithString("tag",
			mcp.Description("Only entries with this tag")),
		mcp.WithString("activity",
			mcp.Description("Only activities containing this text (case-insensitive)")),
		mcp.WithString("since",
			mcp.Description("Only entries started at or after this time ('2025-06-01', 'monday', 'yesterday')")),
		mcp.WithString("until",
			mcp.Description("Only entries started before this time")),
		mcp.WithNumber("limit",
			mcp.Description("Max entries to return (default: 20)")),
	)
	s.AddTool(listTool, makeListTimeEntriesHandler(database))

	getTool := mcp.NewTool("get_time_entry",
		mcp.WithDescription("Retrieve one time entry by id or unique id prefix"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry id or unique id prefix")),
	)
	s.AddTool(getTool, makeGetTimeEntryHandler(database))

	statsTool := mcp.NewTool("tracking_stats",
		mcp.WithDescription("Totals for today, the last seven days and all time, plus the most tracked activity and tag"),
	)
	s.AddTool(statsTool, makeTrackingStatsHandler(database, time.Now))

	return s
}

func decodeArgs(request mcp.CallToolRequest, out any) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	return json.Unmarshal(argsBytes, out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func toDetail(e models.TimeEntry) EntryDetail {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EntryDetail{
		ID:          e.ID,
		Activity:    e.Activity,
		Description: e.Description,
		Tags:        tags,
		Elapsed:     e.Elapsed,
		Duration:    timefmt.Format(e.Elapsed),
		Start:       e.Timestamp.Format(time.RFC3339),
		End:         e.End().Format(time.RFC3339),
		Synced:      e.Synced,
	}
}

func makeListTimeEntriesHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListTimeEntriesArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		// Set defaults (interface concern - pagination)
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}

		filter := store.Filter{Tag: args.Tag, Activity: args.Activity, Limit: limit}
		now := time.Now()
		if args.Since != "" {
			t, err := editor.ParseTime(args.Since, now)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid since: %v", err)), nil
			}
			filter.Since = t
		}
		if args.Until != "" {
			t, err := editor.ParseTime(args.Until, now)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid until: %v", err)), nil
			}
			filter.Until = t
		}

		var entries []models.TimeEntry
		var err error
		if args.Query != "" {
			entries, err = database.SearchTimeEntries(ctx, args.Query, 500)
		} else {
			entries, err = database.GetAllTimeEntries(ctx)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		entries = filter.Apply(entries)

		details := make([]EntryDetail, 0, len(entries))
		for _, e := range entries {
			details = append(details, toDetail(e))
		}
		return jsonResult(map[string]any{
			"entries":       details,
			"total_tracked": timefmt.Human(store.TotalElapsed(entries)),
		})
	}
}

func makeGetTimeEntryHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetTimeEntryArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		matches, err := database.FindByPrefix(ctx, args.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		switch len(matches) {
		case 0:
			return mcp.NewToolResultError(fmt.Sprintf("entry not found: %s", args.ID)), nil
		case 1:
			return jsonResult(toDetail(matches[0]))
		}
		return mcp.NewToolResultError(fmt.Sprintf("id prefix %q is ambiguous (%d entries match)", args.ID, len(matches))), nil
	}
}

func makeTrackingStatsHandler(database *db.DB, now func() time.Time) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		n := now()
		today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
		stats, err := database.GetStats(ctx, today)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		summary := StatsSummary{
			TotalEntries:    stats.TotalEntries,
			TotalTracked:    timefmt.Human(stats.TotalSeconds),
			Today:           timefmt.Human(stats.TodaySeconds),
			LastSevenDays:   timefmt.Human(stats.LastSevenDaysSecs),
			TopActivity:     stats.TopActivity,
			TopTag:          stats.TopTag,
			UnsyncedEntries: stats.UnsyncedEntries,
		}
		if stats.TopActivity != "" {
			summary.TopActivityTime = timefmt.Human(stats.TopActivitySecs)
		}
		return jsonResult(summary)
	}
}

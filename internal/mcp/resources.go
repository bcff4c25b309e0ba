package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// recentWorkoutDays is the window of the recent_workouts resource.
const recentWorkoutDays = 14

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	start, end, err := defaultDateRange(h.now(), "", "", recentWorkoutDays)
	if err != nil {
		return nil, err
	}

	workouts, err := h.ds.QueryWorkouts(ctx, start, end, "")
	if err != nil {
		return nil, err
	}

	return jsonContents(req.Params.URI, map[string]any{
		"start":    start,
		"end":      end,
		"workouts": workouts,
	})
}

func (h *handlers) movementCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	movements, err := h.ds.ListMovements(ctx)
	if err != nil {
		return nil, err
	}

	sums, err := h.ds.GetMovementSummaries(ctx)
	if err != nil {
		h.log.Warn("movements: summaries failed", "error", err)
	}

	return jsonContents(req.Params.URI, map[string]any{
		"movements": movements,
		"summaries": sums,
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

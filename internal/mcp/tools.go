package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/stats"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultWorkoutDays is the look-back window of get_workouts when no start
// date is given.
const defaultWorkoutDays = 30

// defaultDateRange validates start/end as workout dates. A missing end is
// today and a missing start is days before end.
func defaultDateRange(now time.Time, startStr, endStr string, days int) (string, string, error) {
	end := models.FormatDate(now)
	if endStr != "" {
		d, err := models.ParseDate(endStr)
		if err != nil {
			return "", "", fmt.Errorf("end %q: %w", endStr, err)
		}
		end = d
	}

	if startStr != "" {
		d, err := models.ParseDate(startStr)
		if err != nil {
			return "", "", fmt.Errorf("start %q: %w", startStr, err)
		}
		return d, end, nil
	}
	endDate, _ := time.Parse(models.DateLayout, end)
	return models.FormatDate(endDate.AddDate(0, 0, -days)), end, nil
}

// --- Tool definitions ---

var toolListMovements = mcp.NewTool("list_movements",
	mcp.WithDescription("List every movement in the catalog with its id, name and body part."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Retrieve logged workouts with their sets (movement, weight, unit, reps, intensity), newest first."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days before end.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("movement", mcp.Description("Only include sets whose movement name contains this text (case-insensitive).")),
)

var toolGetLastUsed = mcp.NewTool("get_last_used",
	mcp.WithDescription("Get the most recent set logged for a movement and the date of its workout."),
	mcp.WithString("movement", mcp.Required(), mcp.Description("Movement id or name")),
)

var toolSuggestWeight = mcp.NewTool("suggest_weight",
	mcp.WithDescription("Suggest a starting weight for a movement based on the last set used. Returns no weight when the movement has no history."),
	mcp.WithString("movement", mcp.Required(), mcp.Description("Movement id or name")),
)

var toolEstimate1RM = mcp.NewTool("estimate_1rm",
	mcp.WithDescription("Estimate a one-rep max with the Epley formula, rounded to the nearest whole number."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions performed")),
)

var toolGetMovementSummary = mcp.NewTool("get_movement_summary",
	mcp.WithDescription("Summarize the training history of a movement: workouts, sets, reps, tonnage, heaviest weight, best estimated 1RM and per-workout progression. Omit movement to summarize every movement with history."),
	mcp.WithString("movement", mcp.Description("Movement id or name")),
)

// --- Tool handlers ---

func (h *handlers) listMovements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	movements, err := h.ds.ListMovements(ctx)
	if err != nil {
		h.log.Error("list_movements failed", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(movements)
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultDateRange(h.now(), req.GetString("start", ""), req.GetString("end", ""), defaultWorkoutDays)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.QueryWorkouts(ctx, start, end, req.GetString("movement", ""))
	if err != nil {
		h.log.Error("get_workouts failed", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{
		"start":    start,
		"end":      end,
		"workouts": workouts,
	})
}

func (h *handlers) getLastUsed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	movement, err := req.RequireString("movement")
	if err != nil {
		return mcp.NewToolResultError("movement parameter is required"), nil
	}

	last, err := h.ds.GetLastUsed(ctx, movement)
	if err != nil {
		return h.queryError("get_last_used", movement, err), nil
	}
	if last == nil {
		return mcp.NewToolResultText("No history yet for " + movement + "."), nil
	}
	return jsonResult(last)
}

func (h *handlers) suggestWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	movement, err := req.RequireString("movement")
	if err != nil {
		return mcp.NewToolResultError("movement parameter is required"), nil
	}

	sug, err := h.ds.SuggestWeight(ctx, movement)
	if err != nil {
		return h.queryError("suggest_weight", movement, err), nil
	}
	return jsonResult(sug)
}

func (h *handlers) estimate1RM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight")
	if err != nil || weight < 0 {
		return mcp.NewToolResultError("weight must be a non-negative number"), nil
	}
	reps, err := req.RequireFloat("reps")
	if err != nil || reps < 0 || reps != math.Trunc(reps) {
		return mcp.NewToolResultError("reps must be a non-negative integer"), nil
	}

	return jsonResult(map[string]any{
		"weight": weight,
		"reps":   int(reps),
		"e1rm":   stats.Estimate1RM(weight, int(reps)),
	})
}

func (h *handlers) getMovementSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	movement := req.GetString("movement", "")
	if movement == "" {
		sums, err := h.ds.GetMovementSummaries(ctx)
		if err != nil {
			h.log.Error("get_movement_summary failed", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		return jsonResult(sums)
	}

	sum, err := h.ds.GetMovementSummary(ctx, movement)
	if err != nil {
		return h.queryError("get_movement_summary", movement, err), nil
	}
	return jsonResult(sum)
}

func (h *handlers) queryError(tool, movement string, err error) *mcp.CallToolResult {
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultError("unknown movement: " + movement)
	}
	h.log.Error(tool+" failed", "movement", movement, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

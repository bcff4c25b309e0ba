package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/pocketlifts/internal/history"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/stats"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSource records the arguments it was queried with.
type fakeSource struct {
	movements []models.Movement
	workouts  []models.Workout
	last      *history.LastSet

	gotStart, gotEnd, gotFilter, gotMovement string
}

func (f *fakeSource) ListMovements(ctx context.Context) ([]models.Movement, error) {
	return f.movements, nil
}

func (f *fakeSource) QueryWorkouts(ctx context.Context, start, end, movementFilter string) ([]models.Workout, error) {
	f.gotStart, f.gotEnd, f.gotFilter = start, end, movementFilter
	return history.InRange(f.workouts, start, end), nil
}

func (f *fakeSource) GetLastUsed(ctx context.Context, movement string) (*history.LastSet, error) {
	f.gotMovement = movement
	if movement == "unknown" {
		return nil, models.ErrNotFound
	}
	return f.last, nil
}

func (f *fakeSource) SuggestWeight(ctx context.Context, movement string) (history.Suggestion, error) {
	f.gotMovement = movement
	return history.Suggestion{MovementID: movement}, nil
}

func (f *fakeSource) GetMovementSummary(ctx context.Context, movement string) (*stats.MovementSummary, error) {
	f.gotMovement = movement
	return &stats.MovementSummary{MovementID: movement}, nil
}

func (f *fakeSource) GetMovementSummaries(ctx context.Context) ([]stats.MovementSummary, error) {
	return []stats.MovementSummary{{MovementID: "m1"}, {MovementID: "m2"}}, nil
}

func newTestHandlers(ds DataSource) *handlers {
	return &handlers{
		ds:  ds,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) },
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestDefaultDateRange verifies the look-back default and date validation.
func TestDefaultDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)

	start, end, err := defaultDateRange(now, "", "", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != "2024-03-01" || end != "2024-03-15" {
		t.Errorf("range = %s..%s, want 2024-03-01..2024-03-15", start, end)
	}

	start, end, err = defaultDateRange(now, "", "2024-01-31", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != "2024-01-01" || end != "2024-01-31" {
		t.Errorf("range = %s..%s, want 2024-01-01..2024-01-31", start, end)
	}

	start, _, err = defaultDateRange(now, "2023-12-25", "", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != "2023-12-25" {
		t.Errorf("start = %s, want 2023-12-25", start)
	}

	if _, _, err := defaultDateRange(now, "03/01/2024", "", 30); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestGetWorkoutsDefaults verifies get_workouts queries the last 30 days and
// passes the movement filter through.
func TestGetWorkoutsDefaults(t *testing.T) {
	ds := &fakeSource{workouts: []models.Workout{
		{ID: "old", Date: "2024-01-02"},
		{ID: "new", Date: "2024-03-10"},
	}}
	h := newTestHandlers(ds)

	res, err := h.getWorkouts(context.Background(), callRequest(map[string]any{"movement": "bench"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if ds.gotStart != "2024-02-14" || ds.gotEnd != "2024-03-15" {
		t.Errorf("queried %s..%s, want 2024-02-14..2024-03-15", ds.gotStart, ds.gotEnd)
	}
	if ds.gotFilter != "bench" {
		t.Errorf("filter = %q, want bench", ds.gotFilter)
	}

	var body struct {
		Workouts []models.Workout `json:"workouts"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Workouts) != 1 || body.Workouts[0].ID != "new" {
		t.Errorf("workouts = %+v, want only new", body.Workouts)
	}
}

// TestGetWorkoutsInvalidDate verifies a malformed date is a tool error.
func TestGetWorkoutsInvalidDate(t *testing.T) {
	h := newTestHandlers(&fakeSource{})
	res, err := h.getWorkouts(context.Background(), callRequest(map[string]any{"start": "yesterday"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error for invalid start")
	}
}

// TestGetLastUsedTool covers the found, empty and unknown movement cases.
func TestGetLastUsedTool(t *testing.T) {
	ds := &fakeSource{last: &history.LastSet{
		Set:  models.Set{MovementID: "m1", MovementName: "Bench Press", Weight: 100, Reps: 5, Unit: models.UnitPound},
		Date: "2024-03-10",
	}}
	h := newTestHandlers(ds)

	res, _ := h.getLastUsed(context.Background(), callRequest(map[string]any{"movement": "Bench Press"}))
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), `"date":"2024-03-10"`) {
		t.Errorf("result = %s, want date", resultText(t, res))
	}

	ds.last = nil
	res, _ = h.getLastUsed(context.Background(), callRequest(map[string]any{"movement": "Lunge"}))
	if res.IsError || !strings.Contains(resultText(t, res), "No history yet") {
		t.Errorf("result = %s, want no-history text", resultText(t, res))
	}

	res, _ = h.getLastUsed(context.Background(), callRequest(map[string]any{"movement": "unknown"}))
	if !res.IsError {
		t.Error("expected tool error for unknown movement")
	}

	res, _ = h.getLastUsed(context.Background(), callRequest(map[string]any{}))
	if !res.IsError {
		t.Error("expected tool error for missing movement")
	}
}

// TestEstimate1RMTool verifies the Epley estimate and argument validation.
func TestEstimate1RMTool(t *testing.T) {
	h := newTestHandlers(&fakeSource{})

	res, _ := h.estimate1RM(context.Background(), callRequest(map[string]any{"weight": 100.0, "reps": 5.0}))
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	var body struct {
		E1RM float64 `json:"e1rm"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatal(err)
	}
	if body.E1RM != 117 {
		t.Errorf("e1rm = %v, want 117", body.E1RM)
	}

	tests := []map[string]any{
		{"weight": -1.0, "reps": 5.0},
		{"weight": 100.0, "reps": 2.5},
		{"weight": 100.0},
	}
	for _, args := range tests {
		res, _ := h.estimate1RM(context.Background(), callRequest(args))
		if !res.IsError {
			t.Errorf("estimate1RM(%v) succeeded, want tool error", args)
		}
	}
}

// TestGetMovementSummaryAll verifies omitting movement returns every summary.
func TestGetMovementSummaryAll(t *testing.T) {
	ds := &fakeSource{}
	h := newTestHandlers(ds)

	res, _ := h.getMovementSummary(context.Background(), callRequest(map[string]any{}))
	var sums []stats.MovementSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &sums); err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 {
		t.Errorf("summaries = %d, want 2", len(sums))
	}

	res, _ = h.getMovementSummary(context.Background(), callRequest(map[string]any{"movement": "m1"}))
	if res.IsError || ds.gotMovement != "m1" {
		t.Errorf("movement = %q, want m1", ds.gotMovement)
	}
}

// TestRecentWorkoutsResource verifies the resource reads the last 14 days.
func TestRecentWorkoutsResource(t *testing.T) {
	ds := &fakeSource{}
	h := newTestHandlers(ds)

	var req mcp.ReadResourceRequest
	req.Params.URI = "pocketlifts://recent_workouts"
	contents, err := h.recentWorkouts(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if ds.gotStart != "2024-03-01" || ds.gotEnd != "2024-03-15" {
		t.Errorf("queried %s..%s, want 2024-03-01..2024-03-15", ds.gotStart, ds.gotEnd)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents = %T, want TextResourceContents", contents[0])
	}
	if tc.URI != req.Params.URI || tc.MIMEType != "application/json" {
		t.Errorf("contents = %+v", tc)
	}
}

// TestNewRegistersTools verifies the server builds with a data source.
func TestNewRegistersTools(t *testing.T) {
	s := New(&fakeSource{}, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if s == nil {
		t.Fatal("New returned nil")
	}
}

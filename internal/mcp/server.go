// Package mcp exposes the training log to MCP clients as read-only tools
// and resources.
package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Pocket Lifts", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Pocket Lifts strength training log. Look up movements, past workouts, the last set used for a movement, suggested starting weights and estimated one-rep maxes. Dates are YYYY-MM-DD; weights are in the unit reported alongside them."),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	s.AddTools(
		server.ServerTool{Tool: toolListMovements, Handler: h.listMovements},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetLastUsed, Handler: h.getLastUsed},
		server.ServerTool{Tool: toolSuggestWeight, Handler: h.suggestWeight},
		server.ServerTool{Tool: toolEstimate1RM, Handler: h.estimate1RM},
		server.ServerTool{Tool: toolGetMovementSummary, Handler: h.getMovementSummary},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resMovementCatalog, Handler: h.movementCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"pocketlifts://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days, newest first"),
	mcp.WithMIMEType("application/json"),
)

var resMovementCatalog = mcp.NewResource(
	"pocketlifts://movements",
	"Movement Catalog",
	mcp.WithResourceDescription("All movements with per-movement training summaries"),
	mcp.WithMIMEType("application/json"),
)

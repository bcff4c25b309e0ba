package mcp

import (
	"context"

	"github.com/claude/pocketlifts/internal/history"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/stats"
	"github.com/claude/pocketlifts/internal/tracker"
)

// DataSource abstracts the read-only training queries used by MCP tools and
// resources. *tracker.Tracker serves a local database, HTTPClient a remote
// server.
type DataSource interface {
	ListMovements(ctx context.Context) ([]models.Movement, error)
	QueryWorkouts(ctx context.Context, start, end, movementFilter string) ([]models.Workout, error)
	GetLastUsed(ctx context.Context, movement string) (*history.LastSet, error)
	SuggestWeight(ctx context.Context, movement string) (history.Suggestion, error)
	GetMovementSummary(ctx context.Context, movement string) (*stats.MovementSummary, error)
	GetMovementSummaries(ctx context.Context) ([]stats.MovementSummary, error)
}

// Compile-time check: Tracker satisfies DataSource.
var _ DataSource = (*tracker.Tracker)(nil)

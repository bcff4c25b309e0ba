package tracker

import (
	"context"
	"strings"

	"github.com/claude/pocketlifts/internal/history"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/stats"
)

// The methods in this file serve read-only consumers such as the MCP
// server. They take a context to match remote data sources.

// ListMovements returns the movement catalog.
func (t *Tracker) ListMovements(ctx context.Context) ([]models.Movement, error) {
	return t.Movements(), nil
}

// QueryWorkouts returns workouts dated within [start, end], newest first.
// A non-empty movementFilter keeps only sets whose movement name contains
// it (ignoring case) and drops workouts left without sets.
func (t *Tracker) QueryWorkouts(ctx context.Context, start, end, movementFilter string) ([]models.Workout, error) {
	t.mu.Lock()
	workouts := history.InRange(t.store.Workouts(), start, end)
	t.mu.Unlock()

	filter := strings.ToLower(strings.TrimSpace(movementFilter))
	if filter == "" {
		return nonNil(workouts), nil
	}
	out := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		var sets []models.Set
		for _, s := range w.Sets {
			if strings.Contains(strings.ToLower(s.MovementName), filter) {
				sets = append(sets, s)
			}
		}
		if len(sets) > 0 {
			w.Sets = sets
			out = append(out, w)
		}
	}
	return out, nil
}

// GetLastUsed returns the last set for a movement id or name, or nil.
func (t *Tracker) GetLastUsed(ctx context.Context, movement string) (*history.LastSet, error) {
	id, err := t.resolveMovementID(movement)
	if err != nil {
		return nil, err
	}
	last, ok := t.LastUsed(id)
	if !ok {
		return nil, nil
	}
	return &last, nil
}

// SuggestWeight returns the suggested starting weight for a movement id or
// name.
func (t *Tracker) SuggestWeight(ctx context.Context, movement string) (history.Suggestion, error) {
	id, err := t.resolveMovementID(movement)
	if err != nil {
		return history.Suggestion{}, err
	}
	return t.Suggest(id), nil
}

// GetMovementSummary aggregates the history of one movement in the active
// unit.
func (t *Tracker) GetMovementSummary(ctx context.Context, movement string) (*stats.MovementSummary, error) {
	id, err := t.resolveMovementID(movement)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	sum := stats.Summarize(t.store.Workouts(), id, t.store.Unit())
	if sum.Name == "" {
		if m, ok := t.store.Movement(id); ok {
			sum.Name = m.Name
		}
	}
	return &sum, nil
}

// GetMovementSummaries aggregates every movement with history.
func (t *Tracker) GetMovementSummaries(ctx context.Context) ([]stats.MovementSummary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return nonNil(stats.SummarizeAll(t.store.Workouts(), t.store.Unit())), nil
}

// resolveMovementID accepts a catalog id, a catalog name, or the id of a
// deleted movement that still appears in history.
func (t *Tracker) resolveMovementID(movement string) (string, error) {
	if m, ok := t.FindMovement(movement); ok {
		return m.ID, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, w := range t.store.Workouts() {
		for _, s := range w.Sets {
			if s.MovementID == movement || models.SameName(s.MovementName, movement) {
				return s.MovementID, nil
			}
		}
	}
	return "", models.ErrNotFound
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

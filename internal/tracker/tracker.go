// Package tracker ties the store, the draft and persistence together. Every
// exported method runs under one lock, so callers on different goroutines
// see the same single-actor ordering a UI event loop would give.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/pocketlifts/internal/draft"
	"github.com/claude/pocketlifts/internal/export"
	"github.com/claude/pocketlifts/internal/history"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/storage"
	"github.com/claude/pocketlifts/internal/store"
	"github.com/claude/pocketlifts/internal/units"
)

// ErrPersistence wraps a failed save. The in-memory state has been rolled
// back when it is returned.
var ErrPersistence = errors.New("saving state failed")

// Persister loads and saves the whole state.
type Persister interface {
	LoadState(ctx context.Context) (*models.State, error)
	SaveState(ctx context.Context, st *models.State) error
}

// Options configures a Tracker.
type Options struct {
	Seed   string
	Locale string
	Now    func() time.Time
}

// Tracker is the single owner of all mutable state.
type Tracker struct {
	log       *slog.Logger
	persist   Persister
	formatter *units.Formatter

	mu    sync.Mutex
	store *store.Store
	draft *draft.Manager
}

// New loads persisted state. A missing or unreadable record is logged and
// replaced by a freshly seeded state; it is never returned as an error.
func New(ctx context.Context, p Persister, opts Options, log *slog.Logger) *Tracker {
	st, err := p.LoadState(ctx)
	switch {
	case errors.Is(err, storage.ErrNoState):
		log.Info("no saved state, starting fresh", "seed", opts.Seed)
	case err != nil:
		log.Warn("loading saved state failed, starting fresh", "error", err, "seed", opts.Seed)
		st = nil
	}

	s := store.New(st, opts.Seed)
	return &Tracker{
		log:       log,
		persist:   p,
		formatter: units.NewFormatter(opts.Locale),
		store:     s,
		draft:     draft.NewManager(s, opts.Now),
	}
}

// Formatter returns the locale formatter used for display strings.
func (t *Tracker) Formatter() *units.Formatter {
	return t.formatter
}

// mutate applies fn and saves. When either step fails the store is
// restored to its prior state. Callers hold t.mu.
func (t *Tracker) mutate(ctx context.Context, op string, fn func(s *store.Store) error) error {
	snap := t.store.Snapshot()
	if err := fn(t.store); err != nil {
		t.store.Restore(snap)
		return err
	}
	if err := t.persist.SaveState(ctx, t.store.Snapshot()); err != nil {
		t.store.Restore(snap)
		t.log.Error("saving state failed, rolled back", "op", op, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	t.log.Debug("state saved", "op", op)
	return nil
}

// State returns a deep copy of the persisted aggregate.
func (t *Tracker) State() *models.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Snapshot()
}

// Unit returns the active display unit.
func (t *Tracker) Unit() models.Unit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Unit()
}

// ChangeUnit switches the display unit without converting stored weights.
func (t *Tracker) ChangeUnit(ctx context.Context, u models.Unit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutate(ctx, "change_unit", func(s *store.Store) error {
		return s.ChangeUnit(u)
	})
}

// AddMovement adds one movement. A case-insensitive name collision returns
// ErrDuplicateMovement.
func (t *Tracker) AddMovement(ctx context.Context, name, bodyPart string) (models.Movement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var m models.Movement
	err := t.mutate(ctx, "add_movement", func(s *store.Store) error {
		var err error
		m, err = s.AddMovement(name, bodyPart)
		return err
	})
	if err != nil {
		return models.Movement{}, err
	}
	t.log.Info("movement added", "id", m.ID, "name", m.Name)
	return m, nil
}

// AddMovements adds every new name, skipping blanks and duplicates, and
// returns what was added.
func (t *Tracker) AddMovements(ctx context.Context, names []string) ([]models.Movement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var added []models.Movement
	err := t.mutate(ctx, "add_movements", func(s *store.Store) error {
		added = s.AddMovements(names)
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.log.Info("movements added", "requested", len(names), "added", len(added))
	return added, nil
}

// DeleteMovement removes a movement. Saved sets keep their name snapshot;
// a draft that had it selected moves to the first remaining movement.
func (t *Tracker) DeleteMovement(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.mutate(ctx, "delete_movement", func(s *store.Store) error {
		return s.DeleteMovement(id)
	})
	if err != nil {
		return err
	}
	t.draft.MovementRemoved(id)
	t.log.Info("movement deleted", "id", id)
	return nil
}

// DeleteWorkout permanently removes a saved workout.
func (t *Tracker) DeleteWorkout(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.mutate(ctx, "delete_workout", func(s *store.Store) error {
		return s.DeleteWorkout(id)
	})
	if err != nil {
		return err
	}
	t.log.Info("workout deleted", "id", id)
	return nil
}

// Movements lists the catalog in insertion order.
func (t *Tracker) Movements() []models.Movement {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Movements()
}

// HasMovement reports whether a movement with this name (ignoring case)
// exists.
func (t *Tracker) HasMovement(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.store.MovementByName(name)
	return ok
}

// Workouts returns saved workouts newest first.
func (t *Tracker) Workouts() []models.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return history.ByDateDesc(t.store.Workouts())
}

// LastUsed returns the most recent set for a movement.
func (t *Tracker) LastUsed(movementID string) (history.LastSet, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return history.LastUsed(movementID, t.store.Workouts())
}

// Suggest returns the default starting weight for a movement.
func (t *Tracker) Suggest(movementID string) history.Suggestion {
	t.mu.Lock()
	defer t.mu.Unlock()
	return history.Suggest(movementID, t.store.Workouts())
}

// ExportCSV writes every saved set as CSV.
func (t *Tracker) ExportCSV(w io.Writer) error {
	st := t.State()
	return export.WriteCSV(w, st)
}

// FindMovement resolves an id or a case-insensitive name.
func (t *Tracker) FindMovement(idOrName string) (models.Movement, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.store.Movement(idOrName); ok {
		return m, true
	}
	return t.store.MovementByName(strings.TrimSpace(idOrName))
}

// Package store holds the movement catalog and committed workouts.
package store

import (
	"slices"
	"strings"

	"github.com/claude/pocketlifts/internal/models"
)

// Store wraps a State with the catalog rules. It is not safe for concurrent
// use; callers serialize access.
type Store struct {
	state *models.State
}

// New returns a Store over state, normalising it first. A nil state starts
// fresh from seed.
func New(state *models.State, seed string) *Store {
	if state == nil {
		state = models.NewState(seed)
	}
	state.Normalize(seed)
	return &Store{state: state}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *models.State {
	return s.state.Clone()
}

// Restore replaces the state wholesale with a copy of state, e.g. to roll
// back after a failed save. No seeding is applied.
func (s *Store) Restore(state *models.State) {
	s.state = state.Clone()
}

func (s *Store) Unit() models.Unit {
	return s.state.Unit
}

// Movements returns the catalog in insertion order.
func (s *Store) Movements() []models.Movement {
	return slices.Clone(s.state.Movements)
}

// Workouts returns committed workouts in insertion order.
func (s *Store) Workouts() []models.Workout {
	out := make([]models.Workout, len(s.state.Workouts))
	for i, w := range s.state.Workouts {
		w.Sets = models.CopySets(w.Sets)
		out[i] = w
	}
	return out
}

func (s *Store) Movement(id string) (models.Movement, bool) {
	i := s.movementIndex(id)
	if i < 0 {
		return models.Movement{}, false
	}
	return s.state.Movements[i], true
}

// FirstMovement is the oldest movement in the catalog, if any.
func (s *Store) FirstMovement() (models.Movement, bool) {
	if len(s.state.Movements) == 0 {
		return models.Movement{}, false
	}
	return s.state.Movements[0], true
}

// MovementByName finds a movement by case-insensitive name.
func (s *Store) MovementByName(name string) (models.Movement, bool) {
	name = strings.TrimSpace(name)
	for _, m := range s.state.Movements {
		if models.SameName(m.Name, name) {
			return m, true
		}
	}
	return models.Movement{}, false
}

// AddMovement appends a movement. Names are unique ignoring case.
func (s *Store) AddMovement(name, bodyPart string) (models.Movement, error) {
	m, err := models.NewMovement(name, bodyPart)
	if err != nil {
		return models.Movement{}, err
	}
	if _, exists := s.MovementByName(m.Name); exists {
		return models.Movement{}, models.DuplicateMovement(m.Name)
	}
	s.state.Movements = append(s.state.Movements, m)
	return m, nil
}

// AddMovements adds every name not already present, skipping blanks and
// duplicates, and returns the movements actually added.
func (s *Store) AddMovements(names []string) []models.Movement {
	var added []models.Movement
	for _, name := range names {
		m, err := s.AddMovement(name, "")
		if err != nil {
			continue
		}
		added = append(added, m)
	}
	return added
}

// DeleteMovement removes a movement from the catalog. Sets that reference
// it keep their recorded name.
func (s *Store) DeleteMovement(id string) error {
	i := s.movementIndex(id)
	if i < 0 {
		return models.ErrNotFound
	}
	s.state.Movements = slices.Delete(s.state.Movements, i, i+1)
	return nil
}

// AppendWorkout records a committed workout.
func (s *Store) AppendWorkout(w models.Workout) error {
	if len(w.Sets) == 0 {
		return models.ErrNoSets
	}
	w.Sets = models.CopySets(w.Sets)
	s.state.Workouts = append(s.state.Workouts, w)
	return nil
}

// DeleteWorkout removes one workout by id.
func (s *Store) DeleteWorkout(id string) error {
	i := slices.IndexFunc(s.state.Workouts, func(w models.Workout) bool { return w.ID == id })
	if i < 0 {
		return models.ErrNotFound
	}
	s.state.Workouts = slices.Delete(s.state.Workouts, i, i+1)
	return nil
}

// ChangeUnit switches the display unit. Stored weights are not rewritten;
// each set keeps the unit it was entered in.
func (s *Store) ChangeUnit(u models.Unit) error {
	if !u.Valid() {
		return models.ErrInvalidUnit
	}
	s.state.Unit = u
	return nil
}

func (s *Store) movementIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.state.Movements, func(m models.Movement) bool { return m.ID == id })
}

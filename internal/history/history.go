// Package history answers "what did I do last time" over saved workouts.
package history

import (
	"slices"
	"strings"

	"github.com/claude/pocketlifts/internal/models"
)

// LastSet is the most recent set for a movement and the date of the
// workout it belongs to.
type LastSet struct {
	models.Set
	Date string `json:"date"`
}

// Suggestion is the default starting weight for a movement.
type Suggestion struct {
	MovementID string      `json:"movementId"`
	Weight     *float64    `json:"weight,omitempty"`
	Unit       models.Unit `json:"unit,omitempty"`
}

// ByDateDesc returns workouts ordered newest first. Workouts sharing a date
// keep their insertion order.
func ByDateDesc(workouts []models.Workout) []models.Workout {
	out := slices.Clone(workouts)
	slices.SortStableFunc(out, func(a, b models.Workout) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out
}

// LastUsed scans workouts newest first and returns the latest-added set for
// movementID within the first workout that contains one.
func LastUsed(movementID string, workouts []models.Workout) (LastSet, bool) {
	if movementID == "" {
		return LastSet{}, false
	}
	for _, w := range ByDateDesc(workouts) {
		for i := len(w.Sets) - 1; i >= 0; i-- {
			if w.Sets[i].MovementID == movementID {
				return LastSet{Set: w.Sets[i], Date: w.Date}, true
			}
		}
	}
	return LastSet{}, false
}

// SuggestWeight is the weight of LastUsed, or false without history.
func SuggestWeight(movementID string, workouts []models.Workout) (float64, bool) {
	last, ok := LastUsed(movementID, workouts)
	if !ok {
		return 0, false
	}
	return last.Weight, true
}

// Suggest wraps SuggestWeight for transport.
func Suggest(movementID string, workouts []models.Workout) Suggestion {
	s := Suggestion{MovementID: movementID}
	if last, ok := LastUsed(movementID, workouts); ok {
		w := last.Weight
		s.Weight = &w
		s.Unit = last.Unit
	}
	return s
}

// InRange returns workouts whose date lies within [from, to], newest first.
// Empty bounds are open.
func InRange(workouts []models.Workout, from, to string) []models.Workout {
	var out []models.Workout
	for _, w := range ByDateDesc(workouts) {
		if from != "" && w.Date < from {
			continue
		}
		if to != "" && w.Date > to {
			continue
		}
		out = append(out, w)
	}
	return out
}

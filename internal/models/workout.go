package models

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Movement is a named exercise type.
type Movement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BodyPart string `json:"bodypart,omitempty"`
}

// NewMovement trims the inputs and assigns a fresh ID.
func NewMovement(name, bodyPart string) (Movement, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Movement{}, ErrBlankName
	}
	return Movement{
		ID:       NewID(),
		Name:     name,
		BodyPart: strings.TrimSpace(bodyPart),
	}, nil
}

// SameName reports whether two movement names collide.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Set is one recorded effort. MovementName is a snapshot taken at creation
// so history survives deletion of the movement.
type Set struct {
	ID           string    `json:"id"`
	MovementID   string    `json:"movementId"`
	MovementName string    `json:"movementName"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	Intensity    Intensity `json:"intensity,omitempty"`
	Unit         Unit      `json:"unit,omitempty"`
}

// NewSet validates weight and reps and snapshots the movement name.
func NewSet(m Movement, weight float64, reps int, intensity Intensity, unit Unit) (Set, error) {
	if m.ID == "" {
		return Set{}, ErrNoMovement
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 || reps <= 0 {
		return Set{}, ErrInvalidWeightReps
	}
	if !unit.Valid() {
		return Set{}, ErrInvalidUnit
	}
	return Set{
		ID:           NewID(),
		MovementID:   m.ID,
		MovementName: m.Name,
		Weight:       weight,
		Reps:         reps,
		Intensity:    intensity,
		Unit:         unit,
	}, nil
}

// Workout is a committed, immutable session.
type Workout struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Notes string `json:"notes"`
	Sets  []Set  `json:"sets"`
}

// NewWorkout builds a workout from a copy of sets. The caller's slice is
// never retained.
func NewWorkout(date, notes string, sets []Set) (Workout, error) {
	if len(sets) == 0 {
		return Workout{}, ErrNoSets
	}
	date, err := ParseDate(date)
	if err != nil {
		return Workout{}, err
	}
	return Workout{
		ID:    NewID(),
		Date:  date,
		Notes: strings.TrimSpace(notes),
		Sets:  CopySets(sets),
	}, nil
}

// CopySets returns an independent copy of sets.
func CopySets(sets []Set) []Set {
	if sets == nil {
		return nil
	}
	out := make([]Set, len(sets))
	copy(out, sets)
	return out
}

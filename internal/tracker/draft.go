package tracker

import (
	"context"

	"github.com/claude/pocketlifts/internal/draft"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/store"
)

// DraftPatch updates the staging fields of the draft. Nil fields are left
// unchanged.
type DraftPatch struct {
	Date       *string `json:"date,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	MovementID *string `json:"movementId,omitempty"`
	Weight     *string `json:"weight,omitempty"`
	Reps       *string `json:"reps,omitempty"`
	Intensity  *string `json:"intensity,omitempty"`
}

// Draft renders the current draft.
func (t *Tracker) Draft() draft.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft.View(t.formatter)
}

// UpdateDraft applies p. Every field is validated before any is applied.
// Selecting a different movement re-suggests the weight unless the patch
// also sets one.
func (t *Tracker) UpdateDraft(p DraftPatch) (draft.View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var intensity models.Intensity
	if p.Intensity != nil {
		v, err := models.ParseIntensity(*p.Intensity)
		if err != nil {
			return draft.View{}, err
		}
		intensity = v
	}
	if p.Date != nil {
		if _, err := models.ParseDate(*p.Date); err != nil {
			return draft.View{}, err
		}
	}
	if p.MovementID != nil && *p.MovementID != "" {
		if _, ok := t.store.Movement(*p.MovementID); !ok {
			return draft.View{}, models.ErrNotFound
		}
	}

	if p.MovementID != nil && *p.MovementID != t.draft.Draft().MovementID {
		if err := t.draft.SelectMovement(*p.MovementID); err != nil {
			return draft.View{}, err
		}
	}
	if p.Date != nil {
		if err := t.draft.SetDate(*p.Date); err != nil {
			return draft.View{}, err
		}
	}
	if p.Notes != nil {
		t.draft.SetNotes(*p.Notes)
	}
	if p.Weight != nil {
		t.draft.SetWeight(*p.Weight)
	}
	if p.Reps != nil {
		t.draft.SetReps(*p.Reps)
	}
	if p.Intensity != nil {
		t.draft.SetIntensity(intensity)
	}
	return t.draft.View(t.formatter), nil
}

// SelectMovement selects a movement for the next set and re-suggests its
// weight.
func (t *Tracker) SelectMovement(id string) (draft.View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.draft.SelectMovement(id); err != nil {
		return draft.View{}, err
	}
	return t.draft.View(t.formatter), nil
}

// Nudge steps the staged weight and/or reps by one increment in the given
// directions (-1, 0 or 1).
func (t *Tracker) Nudge(weightDir, repsDir int) draft.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	if weightDir != 0 {
		t.draft.NudgeWeight(weightDir)
	}
	if repsDir != 0 {
		t.draft.NudgeReps(repsDir)
	}
	return t.draft.View(t.formatter)
}

// AddSet appends the staged set to the draft.
func (t *Tracker) AddSet() (models.Set, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.draft.AddSet()
	if err != nil {
		return models.Set{}, err
	}
	t.log.Debug("set added", "movement", s.MovementName, "weight", s.Weight, "reps", s.Reps)
	return s, nil
}

// AddWave appends one or two 6-4-2 waves to the draft.
func (t *Tracker) AddWave(count int, weights draft.WaveWeights) ([]models.Set, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sets, err := t.draft.AddWave(count, weights)
	if err != nil {
		return nil, err
	}
	t.log.Debug("wave added", "count", count, "sets", len(sets))
	return sets, nil
}

// CommitDraft saves the draft as a workout and resets it. If the save
// fails the draft and the store are both left as they were.
func (t *Tracker) CommitDraft(ctx context.Context) (models.Workout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, err := t.draft.Commit(appenderFunc(func(w models.Workout) error {
		return t.mutate(ctx, "commit", func(s *store.Store) error {
			return s.AppendWorkout(w)
		})
	}))
	if err != nil {
		return models.Workout{}, err
	}
	t.log.Info("workout saved", "id", w.ID, "date", w.Date, "sets", len(w.Sets))
	return w, nil
}

// ResetDraft discards the draft.
func (t *Tracker) ResetDraft() draft.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft.Reset()
	return t.draft.View(t.formatter)
}

type appenderFunc func(models.Workout) error

func (f appenderFunc) AppendWorkout(w models.Workout) error { return f(w) }

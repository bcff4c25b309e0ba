package draft_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/pocketlifts/internal/draft"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/store"
	"github.com/claude/pocketlifts/internal/units"
)

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newFixture(t *testing.T) (*store.Store, *draft.Manager) {
	t.Helper()
	st := store.New(nil, models.SeedTwo)
	return st, draft.NewManager(st, fixedClock("2024-03-10"))
}

type failingAppender struct{}

func (failingAppender) AppendWorkout(models.Workout) error { return errors.New("disk full") }

// TestNewManagerDefaults checks the initial draft state.
func TestNewManagerDefaults(t *testing.T) {
	st, m := newFixture(t)
	first, _ := st.FirstMovement()

	d := m.Draft()
	assert.Equal(t, "2024-03-10", d.Date)
	assert.Equal(t, first.ID, d.MovementID)
	assert.Equal(t, "", d.Weight)
	assert.Equal(t, "5", d.Reps)
	assert.Empty(t, d.Sets)
	assert.NotNil(t, d.Sets)
}

// TestAddSetAppendsInputs verifies a valid set is appended with the staged values.
func TestAddSetAppendsInputs(t *testing.T) {
	st, m := newFixture(t)
	bench, _ := st.MovementByName("bench press")
	require.NoError(t, m.SelectMovement(bench.ID))
	m.SetWeight("135")
	m.SetReps("8")
	m.SetIntensity(models.IntensityHeavy)

	s, err := m.AddSet()
	require.NoError(t, err)

	d := m.Draft()
	require.Len(t, d.Sets, 1)
	assert.Equal(t, s, d.Sets[0])
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, bench.ID, s.MovementID)
	assert.Equal(t, "Bench Press", s.MovementName)
	assert.Equal(t, 135.0, s.Weight)
	assert.Equal(t, 8, s.Reps)
	assert.Equal(t, models.IntensityHeavy, s.Intensity)
	assert.Equal(t, models.UnitPound, s.Unit)
	assert.Equal(t, "135", d.Weight, "weight stays staged")
}

// TestAddSetRejectsInvalidInput verifies rejected sets leave the draft unchanged.
func TestAddSetRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		weight string
		reps   string
	}{
		{"zero reps", "100", "0"},
		{"non-numeric weight", "heavy", "5"},
		{"empty weight", "", "5"},
		{"negative weight", "-10", "5"},
		{"zero weight", "0", "5"},
		{"fractional reps", "100", "2.5"},
		{"non-numeric reps", "100", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m := newFixture(t)
			m.SetWeight("100")
			m.SetReps("5")
			_, err := m.AddSet()
			require.NoError(t, err)

			m.SetWeight(tt.weight)
			m.SetReps(tt.reps)
			_, err = m.AddSet()
			assert.ErrorIs(t, err, models.ErrInvalidWeightReps)
			assert.True(t, models.IsValidation(err))
			assert.Len(t, m.Draft().Sets, 1)
		})
	}
}

// TestAddSetRequiresMovement checks the no-movement validation.
func TestAddSetRequiresMovement(t *testing.T) {
	_, m := newFixture(t)
	require.NoError(t, m.SelectMovement(""))
	m.SetWeight("100")

	_, err := m.AddSet()
	assert.ErrorIs(t, err, models.ErrNoMovement)
	assert.Empty(t, m.Draft().Sets)
}

// TestSelectMovementSuggestsWeight checks the weight is re-suggested from history.
func TestSelectMovementSuggestsWeight(t *testing.T) {
	st, m := newFixture(t)
	bench, _ := st.MovementByName("Bench Press")
	squat, _ := st.MovementByName("Back Squat")

	old, err := models.NewSet(bench, 100, 5, "", models.UnitPound)
	require.NoError(t, err)
	recent, err := models.NewSet(bench, 110, 5, "", models.UnitPound)
	require.NoError(t, err)
	w1, _ := models.NewWorkout("2024-02-01", "", []models.Set{recent})
	w2, _ := models.NewWorkout("2024-01-01", "", []models.Set{old})
	require.NoError(t, st.AppendWorkout(w1))
	require.NoError(t, st.AppendWorkout(w2))

	require.NoError(t, m.SelectMovement(squat.ID))
	assert.Equal(t, "", m.Draft().Weight)

	require.NoError(t, m.SelectMovement(bench.ID))
	assert.Equal(t, "110", m.Draft().Weight)

	assert.ErrorIs(t, m.SelectMovement("missing"), models.ErrNotFound)
	assert.Equal(t, bench.ID, m.Draft().MovementID)
}

// TestAddWaveFromBase checks a single 6-4-2 wave from a 100 lb base.
func TestAddWaveFromBase(t *testing.T) {
	_, m := newFixture(t)
	m.SetWeight("100")

	added, err := m.AddWave(1, draft.WaveWeights{})
	require.NoError(t, err)
	require.Len(t, added, 3)

	wantWeights := []float64{90, 100, 110}
	wantReps := []int{6, 4, 2}
	wantTags := []models.Intensity{models.IntensityEasy, models.IntensityModerate, models.IntensityHeavy}
	for i, s := range added {
		assert.Equal(t, wantWeights[i], s.Weight, "set %d weight", i)
		assert.Equal(t, wantReps[i], s.Reps, "set %d reps", i)
		assert.Equal(t, wantTags[i], s.Intensity, "set %d intensity", i)
	}
	assert.Equal(t, added, m.Draft().Sets)
}

// TestAddWaveDouble checks two waves repeat the tag cycle.
func TestAddWaveDouble(t *testing.T) {
	_, m := newFixture(t)

	added, err := m.AddWave(2, draft.WaveWeights{Heavy: "125"})
	require.NoError(t, err)
	require.Len(t, added, 6)

	reps := make([]int, 0, len(added))
	for _, s := range added {
		reps = append(reps, s.Reps)
	}
	assert.Equal(t, []int{6, 4, 2, 6, 4, 2}, reps)
	assert.Equal(t, 90.0, added[3].Weight, "fallback base of 100")
	assert.Equal(t, 100.0, added[4].Weight)
	assert.Equal(t, 125.0, added[5].Weight, "explicit heavy weight")
}

// TestAddWaveKilograms checks kilogram waves keep one decimal.
func TestAddWaveKilograms(t *testing.T) {
	st, m := newFixture(t)
	require.NoError(t, st.ChangeUnit(models.UnitKilogram))
	m.SetWeight("62.5")

	added, err := m.AddWave(1, draft.WaveWeights{Easy: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 56.3, added[0].Weight)
	assert.Equal(t, 62.5, added[1].Weight)
	assert.Equal(t, 68.8, added[2].Weight)
	assert.Equal(t, models.UnitKilogram, added[0].Unit)
}

// TestSuggestionFollowsActiveUnit checks history recorded in pounds is
// staged and used as a wave base in kilograms after a unit change.
func TestSuggestionFollowsActiveUnit(t *testing.T) {
	st, m := newFixture(t)
	bench, _ := st.MovementByName("Bench Press")

	s, err := models.NewSet(bench, 225, 5, "", models.UnitPound)
	require.NoError(t, err)
	w, _ := models.NewWorkout("2024-01-01", "", []models.Set{s})
	require.NoError(t, st.AppendWorkout(w))
	require.NoError(t, st.ChangeUnit(models.UnitKilogram))

	m.Reset()
	require.NoError(t, m.SelectMovement(bench.ID))
	assert.Equal(t, "102.1", m.Draft().Weight)
	assert.Equal(t, "Last: 102.06 kg × 5 • 2024-01-01", m.View(units.NewFormatter("en")).Hint)

	added, err := m.AddSet()
	require.NoError(t, err)
	assert.Equal(t, 102.1, added.Weight)
	assert.Equal(t, models.UnitKilogram, added.Unit)

	m.SetWeight("")
	wave, err := m.AddWave(1, draft.WaveWeights{})
	require.NoError(t, err)
	assert.Equal(t, 91.9, wave[0].Weight)
	assert.Equal(t, 102.1, wave[1].Weight)
	assert.Equal(t, 112.3, wave[2].Weight)
}

// TestWaveBaseStagedWeight checks the staged weight is read by its leading
// number and a non-numeric value falls back to 100 without consulting history.
func TestWaveBaseStagedWeight(t *testing.T) {
	st, m := newFixture(t)
	bench, _ := st.MovementByName("Bench Press")
	s, err := models.NewSet(bench, 200, 5, "", models.UnitPound)
	require.NoError(t, err)
	w, _ := models.NewWorkout("2024-01-01", "", []models.Set{s})
	require.NoError(t, st.AppendWorkout(w))
	require.NoError(t, m.SelectMovement(bench.ID))

	m.SetWeight("135lb")
	wave, err := m.AddWave(1, draft.WaveWeights{})
	require.NoError(t, err)
	assert.Equal(t, 135.0, wave[1].Weight)

	m.SetWeight("heavy")
	wave, err = m.AddWave(1, draft.WaveWeights{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, wave[1].Weight)
}

// TestAddWaveValidation checks wave preconditions.
func TestAddWaveValidation(t *testing.T) {
	_, m := newFixture(t)

	_, err := m.AddWave(3, draft.WaveWeights{})
	assert.ErrorIs(t, err, models.ErrInvalidWaveCount)

	require.NoError(t, m.SelectMovement(""))
	_, err = m.AddWave(1, draft.WaveWeights{})
	assert.ErrorIs(t, err, models.ErrNoMovement)
	assert.Empty(t, m.Draft().Sets)
}

// TestCommitDeepCopiesAndResets verifies commit semantics.
func TestCommitDeepCopiesAndResets(t *testing.T) {
	st, m := newFixture(t)
	require.NoError(t, m.SetDate("2024-03-01"))
	m.SetNotes("  felt good  ")
	m.SetWeight("100")
	_, err := m.AddSet()
	require.NoError(t, err)
	m.SetWeight("105")
	_, err = m.AddSet()
	require.NoError(t, err)

	w, err := m.Commit(st)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", w.Date)
	assert.Equal(t, "felt good", w.Notes)
	require.Len(t, w.Sets, 2)

	d := m.Draft()
	assert.Empty(t, d.Sets)
	assert.Equal(t, "2024-03-10", d.Date)
	assert.Equal(t, "", d.Notes)
	assert.Equal(t, "5", d.Reps)
	assert.Equal(t, "105", d.Weight, "suggestion from the committed workout")

	workouts := st.Workouts()
	require.Len(t, workouts, 1)

	m.SetWeight("300")
	_, err = m.AddSet()
	require.NoError(t, err)
	w.Sets[0].Weight = 1
	stored := st.Workouts()[0]
	require.Len(t, stored.Sets, 2)
	assert.Equal(t, 100.0, stored.Sets[0].Weight)
	assert.Equal(t, 105.0, stored.Sets[1].Weight)
}

// TestCommitEmptyDraft checks the no-sets validation.
func TestCommitEmptyDraft(t *testing.T) {
	st, m := newFixture(t)
	_, err := m.Commit(st)
	assert.ErrorIs(t, err, models.ErrNoSets)
	assert.Empty(t, st.Workouts())
}

// TestCommitKeepsDraftOnStoreFailure checks a failed append leaves the draft intact.
func TestCommitKeepsDraftOnStoreFailure(t *testing.T) {
	_, m := newFixture(t)
	m.SetWeight("100")
	_, err := m.AddSet()
	require.NoError(t, err)

	_, err = m.Commit(failingAppender{})
	assert.Error(t, err)
	assert.Len(t, m.Draft().Sets, 1)
}

// TestReset discards mutations without creating a workout.
func TestReset(t *testing.T) {
	st, m := newFixture(t)
	m.SetWeight("100")
	m.SetNotes("scratch")
	_, err := m.AddSet()
	require.NoError(t, err)

	m.Reset()
	d := m.Draft()
	assert.Empty(t, d.Sets)
	assert.Equal(t, "", d.Notes)
	assert.Equal(t, "", d.Weight)
	assert.Empty(t, st.Workouts())
}

// TestMovementRemoved checks reselection after the selected movement is deleted.
func TestMovementRemoved(t *testing.T) {
	st, m := newFixture(t)
	bench, _ := st.MovementByName("Bench Press")
	squat, _ := st.MovementByName("Back Squat")
	require.NoError(t, m.SelectMovement(squat.ID))

	m.MovementRemoved(bench.ID)
	assert.Equal(t, squat.ID, m.Draft().MovementID)

	require.NoError(t, st.DeleteMovement(squat.ID))
	m.MovementRemoved(squat.ID)
	assert.Equal(t, bench.ID, m.Draft().MovementID)

	require.NoError(t, st.DeleteMovement(bench.ID))
	m.MovementRemoved(bench.ID)
	assert.Equal(t, "", m.Draft().MovementID)
}

// TestNudge checks step sizes and clamping.
func TestNudge(t *testing.T) {
	st, m := newFixture(t)
	m.SetWeight("3")
	m.NudgeWeight(-1)
	assert.Equal(t, "0", m.Draft().Weight)
	m.NudgeWeight(1)
	assert.Equal(t, "5", m.Draft().Weight)

	require.NoError(t, st.ChangeUnit(models.UnitKilogram))
	m.NudgeWeight(1)
	assert.Equal(t, "7.5", m.Draft().Weight)

	m.SetReps("3")
	m.NudgeReps(1)
	assert.Equal(t, "8", m.Draft().Reps)
	m.NudgeReps(-1)
	m.NudgeReps(-1)
	assert.Equal(t, "0", m.Draft().Reps)
}

// TestViewHint checks the last-used hint and per-set estimates.
func TestViewHint(t *testing.T) {
	st, m := newFixture(t)
	f := units.NewFormatter("en")

	v := m.View(f)
	assert.Equal(t, "No history yet for this movement.", v.Hint)
	assert.Nil(t, v.Last)

	m.SetWeight("100")
	m.SetReps("5")
	_, err := m.AddSet()
	require.NoError(t, err)
	v = m.View(f)
	require.Len(t, v.Sets, 1)
	assert.Equal(t, 117.0, v.Sets[0].E1RM)

	_, err = m.Commit(st)
	require.NoError(t, err)
	v = m.View(f)
	require.NotNil(t, v.Last)
	assert.Equal(t, "Last: 100 lb × 5 • 2024-03-10", v.Hint)
	assert.Equal(t, 5.0, v.WeightStep)
	assert.Equal(t, 5, v.RepStep)
}

package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/pocketlifts/internal/models"
)

func fixtureState(t *testing.T, notes string) *models.State {
	t.Helper()
	st := models.NewState(models.SeedTwo)
	bench := st.Movements[0]
	a, err := models.NewSet(bench, 135, 5, models.IntensityHeavy, models.UnitPound)
	require.NoError(t, err)
	b, err := models.NewSet(bench, 62.5, 8, "", models.UnitKilogram)
	require.NoError(t, err)
	w, err := models.NewWorkout("2024-04-01", notes, []models.Set{a, b})
	require.NoError(t, err)
	st.Workouts = []models.Workout{w}
	return st
}

// TestWriteCSV checks the header, quoting and row count.
func TestWriteCSV(t *testing.T) {
	st := fixtureState(t, `Tough day, said "ok"`)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, st))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"date","movement","weight","reps","unit","intensity","notes"`, lines[0])
	assert.Equal(t, `"2024-04-01","Bench Press","135","5","lb","heavy","Tough day, said ""ok"""`, lines[1])
	assert.Equal(t, `"2024-04-01","Bench Press","62.5","8","kg","","Tough day, said ""ok"""`, lines[2])
	assert.False(t, strings.HasSuffix(buf.String(), "\n"))
}

// TestWriteCSVFlattensNotes checks multi-line notes stay on one row.
func TestWriteCSVFlattensNotes(t *testing.T) {
	st := fixtureState(t, "line one\nline two")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, st))
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], `"line one line two"`))
}

// TestWriteCSVEmpty checks an empty history yields only the header.
func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, models.NewState(models.SeedTwo)))
	assert.Equal(t, `"date","movement","weight","reps","unit","intensity","notes"`, buf.String())
}

// TestRowsDefaultsUnit checks legacy sets fall back to the state unit.
func TestRowsDefaultsUnit(t *testing.T) {
	st := fixtureState(t, "")
	st.Unit = models.UnitKilogram
	st.Workouts[0].Sets[0].Unit = ""

	rows := Rows(st)
	assert.Equal(t, "kg", rows[1][4])
}

// Package export renders saved workouts as CSV.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/units"
)

// Header is the CSV column order.
var Header = []string{"date", "movement", "weight", "reps", "unit", "intensity", "notes"}

// ContentType and Filename are used when serving the export over HTTP.
const (
	ContentType = "text/csv; charset=utf-8"
	Filename    = "pocket-lifts.csv"
)

// Rows returns the header followed by one row per set, workouts in
// insertion order. Workout notes repeat on every row of the workout with
// newlines flattened to spaces. A set without a unit uses the state unit.
func Rows(st *models.State) [][]string {
	rows := [][]string{Header}
	for _, w := range st.Workouts {
		notes := flattenNotes(w.Notes)
		for _, s := range w.Sets {
			unit := s.Unit
			if !unit.Valid() {
				unit = st.Unit
			}
			rows = append(rows, []string{
				w.Date,
				s.MovementName,
				units.FormatWeight(s.Weight),
				strconv.Itoa(s.Reps),
				string(unit),
				string(s.Intensity),
				notes,
			})
		}
	}
	return rows
}

// WriteCSV writes every field double-quoted with embedded quotes doubled.
// Rows are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, st *models.State) error {
	var b strings.Builder
	for i, row := range Rows(st) {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(field))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func flattenNotes(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

package stats

import (
	"math"
	"slices"
	"strings"

	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/units"
)

// Estimate1RM is the Epley estimate round(weight * (1 + reps/30)),
// rounded half-up to a whole number.
func Estimate1RM(weight float64, reps int) float64 {
	return math.Floor(weight*(1+float64(reps)/30) + 0.5)
}

// MovementSummary aggregates every saved set of one movement, expressed in
// a single display unit.
type MovementSummary struct {
	MovementID   string               `json:"movementId"`
	Name         string               `json:"name"`
	Unit         models.Unit          `json:"unit"`
	Workouts     int                  `json:"workouts"`
	TotalSets    int                  `json:"total_sets"`
	TotalReps    int                  `json:"total_reps"`
	Tonnage      float64              `json:"tonnage"`
	MaxWeight    float64              `json:"max_weight"`
	BestE1RM     float64              `json:"best_e1rm"`
	BestE1RMDate string               `json:"best_e1rm_date,omitempty"`
	LastDate     string               `json:"last_date,omitempty"`
	Progression  []SessionProgression `json:"progression,omitempty"`
}

// SessionProgression is one workout's contribution to a movement.
type SessionProgression struct {
	Date      string  `json:"date"`
	MaxWeight float64 `json:"max_weight"`
	Tonnage   float64 `json:"tonnage"`
	Sets      int     `json:"sets"`
	BestE1RM  float64 `json:"best_e1rm"`
}

// Summarize builds the summary of movementID in unit. Set weights recorded
// in the other unit are converted before aggregation. Progression is in
// chronological order.
func Summarize(workouts []models.Workout, movementID string, unit models.Unit) MovementSummary {
	sum := MovementSummary{MovementID: movementID, Unit: unit}

	ordered := slices.Clone(workouts)
	slices.SortStableFunc(ordered, func(a, b models.Workout) int {
		return strings.Compare(a.Date, b.Date)
	})

	for _, w := range ordered {
		var p SessionProgression
		for _, s := range w.Sets {
			if s.MovementID != movementID {
				continue
			}
			weight := units.Convert(s.Weight, s.Unit, unit)
			e1rm := Estimate1RM(weight, s.Reps)

			sum.Name = s.MovementName
			sum.TotalSets++
			sum.TotalReps += s.Reps
			sum.Tonnage += weight * float64(s.Reps)
			sum.MaxWeight = math.Max(sum.MaxWeight, weight)
			if e1rm > sum.BestE1RM {
				sum.BestE1RM = e1rm
				sum.BestE1RMDate = w.Date
			}

			p.Sets++
			p.Tonnage += weight * float64(s.Reps)
			p.MaxWeight = math.Max(p.MaxWeight, weight)
			p.BestE1RM = math.Max(p.BestE1RM, e1rm)
		}
		if p.Sets == 0 {
			continue
		}
		p.Date = w.Date
		sum.Workouts++
		sum.LastDate = w.Date
		sum.Progression = append(sum.Progression, p)
	}
	return sum
}

// SummarizeAll summarizes every movement that appears in history, heaviest
// tonnage first.
func SummarizeAll(workouts []models.Workout, unit models.Unit) []MovementSummary {
	var ids []string
	seen := map[string]bool{}
	for _, w := range workouts {
		for _, s := range w.Sets {
			if !seen[s.MovementID] {
				seen[s.MovementID] = true
				ids = append(ids, s.MovementID)
			}
		}
	}

	out := make([]MovementSummary, 0, len(ids))
	for _, id := range ids {
		s := Summarize(workouts, id, unit)
		s.Progression = nil
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b MovementSummary) int {
		switch {
		case a.Tonnage > b.Tonnage:
			return -1
		case a.Tonnage < b.Tonnage:
			return 1
		}
		return 0
	})
	return out
}

package models

// State is the persisted aggregate: active unit, movements and workouts,
// each in insertion order.
type State struct {
	Unit      Unit       `json:"unit"`
	Movements []Movement `json:"movements"`
	Workouts  []Workout  `json:"workouts"`
}

// Seed variants for a fresh or movement-less state.
const (
	SeedTwo  = "two"
	SeedFive = "five"
)

var seedNames = map[string][]string{
	SeedTwo:  {"Bench Press", "Back Squat"},
	SeedFive: {"Bench Press", "Back Squat", "Deadlift", "Overhead Press", "Barbell Row"},
}

// SeedNames returns the movement names for a seed variant, falling back to
// the two-movement seed for unknown variants.
func SeedNames(variant string) []string {
	if names, ok := seedNames[variant]; ok {
		return names
	}
	return seedNames[SeedTwo]
}

// NewState returns an empty pound-based state seeded with movements.
func NewState(seed string) *State {
	s := &State{Unit: UnitPound}
	s.seedMovements(seed)
	return s
}

func (s *State) seedMovements(seed string) {
	for _, name := range SeedNames(seed) {
		m, _ := NewMovement(name, "")
		s.Movements = append(s.Movements, m)
	}
}

// Normalize fills in fields missing from older records: an unknown unit
// becomes lb, nil collections become empty, sets without a unit inherit the
// state unit, and an empty movement list is re-seeded.
func (s *State) Normalize(seed string) {
	if !s.Unit.Valid() {
		s.Unit = UnitPound
	}
	if s.Movements == nil {
		s.Movements = []Movement{}
	}
	if s.Workouts == nil {
		s.Workouts = []Workout{}
	}
	for i := range s.Workouts {
		w := &s.Workouts[i]
		if w.Sets == nil {
			w.Sets = []Set{}
		}
		for j := range w.Sets {
			if !w.Sets[j].Unit.Valid() {
				w.Sets[j].Unit = s.Unit
			}
		}
	}
	if len(s.Movements) == 0 {
		s.seedMovements(seed)
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := &State{Unit: s.Unit}
	if s.Movements != nil {
		out.Movements = make([]Movement, len(s.Movements))
		copy(out.Movements, s.Movements)
	}
	if s.Workouts != nil {
		out.Workouts = make([]Workout, len(s.Workouts))
		for i, w := range s.Workouts {
			w.Sets = CopySets(w.Sets)
			out.Workouts[i] = w
		}
	}
	return out
}

// Package draft holds the single in-progress workout and the rules for
// adding sets and waves to it.
package draft

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/claude/pocketlifts/internal/history"
	"github.com/claude/pocketlifts/internal/models"
	"github.com/claude/pocketlifts/internal/stats"
	"github.com/claude/pocketlifts/internal/units"
)

// DefaultReps is the rep count staged on a fresh draft.
const DefaultReps = 5

// FallbackWaveBase is the wave base weight used when neither the draft nor
// history provides one.
const FallbackWaveBase = 100

// Catalog is the read side of the workout store the draft depends on.
type Catalog interface {
	Unit() models.Unit
	Movement(id string) (models.Movement, bool)
	FirstMovement() (models.Movement, bool)
	Workouts() []models.Workout
}

// Appender receives committed workouts.
type Appender interface {
	AppendWorkout(w models.Workout) error
}

// Draft is the uncommitted workout plus the staging fields for the next set.
// Weight and Reps hold raw user input.
type Draft struct {
	Date       string           `json:"date"`
	Notes      string           `json:"notes"`
	MovementID string           `json:"movementId,omitempty"`
	Weight     string           `json:"weight"`
	Reps       string           `json:"reps"`
	Intensity  models.Intensity `json:"intensity,omitempty"`
	Sets       []models.Set     `json:"sets"`
}

// Manager owns the draft. It is not safe for concurrent use.
type Manager struct {
	catalog Catalog
	now     func() time.Time
	d       Draft
}

// NewManager returns a Manager with a freshly initialised draft. now
// defaults to time.Now.
func NewManager(catalog Catalog, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	m := &Manager{catalog: catalog, now: now}
	m.Reset()
	return m
}

// Draft returns a copy of the current draft.
func (m *Manager) Draft() Draft {
	d := m.d
	d.Sets = models.CopySets(m.d.Sets)
	if d.Sets == nil {
		d.Sets = []models.Set{}
	}
	return d
}

// Reset discards the draft and starts over: today's date, no notes, the
// first movement selected with its suggested weight, five reps, no sets.
func (m *Manager) Reset() {
	m.d = Draft{
		Date: models.FormatDate(m.now()),
		Reps: strconv.Itoa(DefaultReps),
	}
	if first, ok := m.catalog.FirstMovement(); ok {
		m.d.MovementID = first.ID
		m.d.Weight = m.suggestedWeight(first.ID)
	}
}

// SelectMovement changes the selected movement and re-suggests the weight
// from history. An empty id clears the selection.
func (m *Manager) SelectMovement(id string) error {
	if id != "" {
		if _, ok := m.catalog.Movement(id); !ok {
			return models.ErrNotFound
		}
	}
	m.d.MovementID = id
	m.d.Weight = m.suggestedWeight(id)
	return nil
}

// MovementRemoved must be called after a movement is deleted from the
// store. A draft pointing at it falls back to the first remaining movement.
func (m *Manager) MovementRemoved(id string) {
	if m.d.MovementID != id {
		return
	}
	next := ""
	if first, ok := m.catalog.FirstMovement(); ok {
		next = first.ID
	}
	m.d.MovementID = next
	m.d.Weight = m.suggestedWeight(next)
}

func (m *Manager) SetWeight(v string) { m.d.Weight = strings.TrimSpace(v) }

func (m *Manager) SetReps(v string) { m.d.Reps = strings.TrimSpace(v) }

func (m *Manager) SetNotes(v string) { m.d.Notes = v }

func (m *Manager) SetIntensity(v models.Intensity) { m.d.Intensity = v }

// SetDate validates and sets the workout date.
func (m *Manager) SetDate(v string) error {
	date, err := models.ParseDate(v)
	if err != nil {
		return err
	}
	m.d.Date = date
	return nil
}

// NudgeWeight moves the staged weight one step (direction +1 or -1) for the
// active unit.
func (m *Manager) NudgeWeight(direction int) {
	unit := m.catalog.Unit()
	w := units.NudgeWeight(m.d.Weight, float64(sign(direction))*units.WeightStep(unit), unit)
	m.d.Weight = units.FormatWeight(w)
}

// NudgeReps moves the staged reps one step.
func (m *Manager) NudgeReps(direction int) {
	m.d.Reps = strconv.Itoa(units.NudgeReps(m.d.Reps, sign(direction)*units.RepStep()))
}

// AddSet validates the staged fields and appends a new set. The entered
// weight stays staged for the next set.
func (m *Manager) AddSet() (models.Set, error) {
	mv, err := m.selected()
	if err != nil {
		return models.Set{}, err
	}
	weight, ok := parseWeight(m.d.Weight)
	if !ok {
		return models.Set{}, models.ErrInvalidWeightReps
	}
	reps, ok := parseReps(m.d.Reps)
	if !ok {
		return models.Set{}, models.ErrInvalidWeightReps
	}
	s, err := models.NewSet(mv, weight, reps, m.d.Intensity, m.catalog.Unit())
	if err != nil {
		return models.Set{}, err
	}
	m.d.Sets = append(m.d.Sets, s)
	m.d.Weight = units.FormatWeight(weight)
	return s, nil
}

// WaveWeights are optional explicit per-tag weights. Blank or unparseable
// entries are computed from the base weight.
type WaveWeights struct {
	Easy     string `json:"easy"`
	Moderate string `json:"moderate"`
	Heavy    string `json:"heavy"`
}

// WaveScheme returns the rep scheme for count waves: 6-4-2 once or twice.
func WaveScheme(count int) ([]int, error) {
	switch count {
	case 1:
		return []int{6, 4, 2}, nil
	case 2:
		return []int{6, 4, 2, 6, 4, 2}, nil
	}
	return nil, models.ErrInvalidWaveCount
}

// SuggestWaveWeights derives easy/moderate/heavy from a base weight:
// 90%, 100%, 110%, rounded for the unit. Moderate is the base itself.
func SuggestWaveWeights(base float64, unit models.Unit) map[models.Intensity]float64 {
	return map[models.Intensity]float64{
		models.IntensityEasy:     units.Round(base*0.9, unit),
		models.IntensityModerate: base,
		models.IntensityHeavy:    units.Round(base*1.1, unit),
	}
}

// AddWave appends a 6-4-2 wave (count 1) or two (count 2), tagging the
// sets easy, moderate, heavy in turn.
func (m *Manager) AddWave(count int, explicit WaveWeights) ([]models.Set, error) {
	mv, err := m.selected()
	if err != nil {
		return nil, err
	}
	scheme, err := WaveScheme(count)
	if err != nil {
		return nil, err
	}

	unit := m.catalog.Unit()
	weights := SuggestWaveWeights(m.waveBase(mv.ID), unit)
	for tag, raw := range map[models.Intensity]string{
		models.IntensityEasy:     explicit.Easy,
		models.IntensityModerate: explicit.Moderate,
		models.IntensityHeavy:    explicit.Heavy,
	} {
		if w, ok := parseWeight(raw); ok {
			weights[tag] = w
		}
	}

	added := make([]models.Set, 0, len(scheme))
	for i, reps := range scheme {
		tag := models.WaveIntensities[i%len(models.WaveIntensities)]
		s, err := models.NewSet(mv, weights[tag], reps, tag, unit)
		if err != nil {
			return nil, err
		}
		added = append(added, s)
	}
	m.d.Sets = append(m.d.Sets, added...)
	return added, nil
}

// Commit turns a non-empty draft into a workout, hands it to store and
// resets the draft. If store fails the draft is left as it was.
func (m *Manager) Commit(store Appender) (models.Workout, error) {
	w, err := models.NewWorkout(m.d.Date, m.d.Notes, m.d.Sets)
	if err != nil {
		return models.Workout{}, err
	}
	if err := store.AppendWorkout(w); err != nil {
		return models.Workout{}, err
	}
	m.Reset()
	return w, nil
}

// SetView is a draft set with its estimated max.
type SetView struct {
	models.Set
	E1RM float64 `json:"e1rm"`
}

// View is the draft as shown to the user.
type View struct {
	Draft
	Sets       []SetView        `json:"sets"`
	Unit       models.Unit      `json:"unit"`
	WeightStep float64          `json:"weight_step"`
	RepStep    int              `json:"rep_step"`
	Last       *history.LastSet `json:"last,omitempty"`
	Hint       string           `json:"hint,omitempty"`
}

// View renders the draft with the last-used hint for the selected movement.
func (m *Manager) View(f *units.Formatter) View {
	unit := m.catalog.Unit()
	v := View{
		Draft:      m.Draft(),
		Unit:       unit,
		WeightStep: units.WeightStep(unit),
		RepStep:    units.RepStep(),
		Sets:       make([]SetView, 0, len(m.d.Sets)),
	}
	for _, s := range m.d.Sets {
		v.Sets = append(v.Sets, SetView{Set: s, E1RM: stats.Estimate1RM(s.Weight, s.Reps)})
	}
	if m.d.MovementID == "" {
		return v
	}
	last, ok := history.LastUsed(m.d.MovementID, m.catalog.Workouts())
	if !ok {
		v.Hint = "No history yet for this movement."
		return v
	}
	v.Last = &last
	weight := units.Convert(last.Weight, last.Unit, unit)
	v.Hint = "Last: " + f.Format(weight, unit) + " × " + strconv.Itoa(last.Reps) + " • " + last.Date
	return v
}

func (m *Manager) selected() (models.Movement, error) {
	if m.d.MovementID == "" {
		return models.Movement{}, models.ErrNoMovement
	}
	mv, ok := m.catalog.Movement(m.d.MovementID)
	if !ok {
		return models.Movement{}, models.ErrNoMovement
	}
	return mv, nil
}

// lastWeight is the most recent weight used for movementID, converted to
// the active unit.
func (m *Manager) lastWeight(movementID string) (float64, bool) {
	last, ok := history.LastUsed(movementID, m.catalog.Workouts())
	if !ok {
		return 0, false
	}
	unit := m.catalog.Unit()
	return units.Round(units.Convert(last.Weight, last.Unit, unit), unit), true
}

func (m *Manager) suggestedWeight(movementID string) string {
	w, ok := m.lastWeight(movementID)
	if !ok {
		return ""
	}
	return units.FormatWeight(w)
}

// waveBase is the leading number of the staged weight, else the history
// suggestion. Anything unusable falls back to 100.
func (m *Manager) waveBase(movementID string) float64 {
	if m.d.Weight == "" {
		if w, ok := m.lastWeight(movementID); ok && w > 0 {
			return w
		}
		return FallbackWaveBase
	}
	if w, ok := units.ParseLeadingFloat(m.d.Weight); ok && w > 0 {
		return w
	}
	return FallbackWaveBase
}

// parseWeight accepts a finite positive number.
func parseWeight(s string) (float64, bool) {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return 0, false
	}
	return w, true
}

// parseReps accepts a positive whole number.
func parseReps(s string) (int, bool) {
	r, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || r <= 0 {
		return 0, false
	}
	return r, true
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

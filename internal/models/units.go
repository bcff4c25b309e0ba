package models

import "strings"

// Unit is the weight unit a number was entered in.
type Unit string

const (
	UnitPound    Unit = "lb"
	UnitKilogram Unit = "kg"
)

// Valid reports whether u is one of the two recognised units.
func (u Unit) Valid() bool {
	return u == UnitPound || u == UnitKilogram
}

// ParseUnit accepts "lb"/"kg" case-insensitively, plus the common plurals.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lb", "lbs":
		return UnitPound, nil
	case "kg", "kgs":
		return UnitKilogram, nil
	}
	return "", ErrInvalidUnit
}

// Intensity is the optional effort tag of a set.
type Intensity string

const (
	IntensityNone     Intensity = ""
	IntensityEasy     Intensity = "easy"
	IntensityModerate Intensity = "moderate"
	IntensityHeavy    Intensity = "heavy"
)

// WaveIntensities is the cyclic tag order used by waves.
var WaveIntensities = [3]Intensity{IntensityEasy, IntensityModerate, IntensityHeavy}

// ParseIntensity maps user input to an Intensity. Empty input and "-"
// mean no tag.
func ParseIntensity(s string) (Intensity, error) {
	switch v := Intensity(strings.ToLower(strings.TrimSpace(s))); v {
	case IntensityNone, IntensityEasy, IntensityModerate, IntensityHeavy:
		return v, nil
	case "-", "—":
		return IntensityNone, nil
	}
	return "", ErrInvalidIntensity
}

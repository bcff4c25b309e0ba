// Package units holds the pure helpers behind the weight and rep steppers
// and weight display.
package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/pocketlifts/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PoundsPerKilogram is the exact avoirdupois conversion factor.
const PoundsPerKilogram = 2.20462262185

var (
	leadingFloatRe = regexp.MustCompile(`^\s*[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
	leadingIntRe   = regexp.MustCompile(`^\s*[+-]?\d+`)
)

// WeightStep is the stepper increment: 5 for lb, 2.5 for kg.
func WeightStep(u models.Unit) float64 {
	if u == models.UnitKilogram {
		return 2.5
	}
	return 5
}

// RepStep is the rep stepper increment, independent of unit.
func RepStep() int {
	return 5
}

// ParseLeadingFloat reads the numeric prefix of s ("135lb" -> 135).
// ok is false when s has no numeric prefix.
func ParseLeadingFloat(s string) (float64, bool) {
	m := leadingFloatRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseLeadingInt reads the integer prefix of s ("5.5" -> 5).
func ParseLeadingInt(s string) (int, bool) {
	m := leadingIntRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Round rounds a weight the way the unit is entered: whole pounds,
// tenths of a kilogram. Halves round up.
func Round(v float64, u models.Unit) float64 {
	if u == models.UnitKilogram {
		return math.Floor(v*10+0.5) / 10
	}
	return math.Floor(v + 0.5)
}

// NudgeWeight adds delta to the numeric value of current (0 when
// non-numeric) and rounds for the unit. Results below zero clamp to 0.
func NudgeWeight(current string, delta float64, u models.Unit) float64 {
	w, ok := ParseLeadingFloat(current)
	if !ok {
		w = 0
	}
	w = Round(w+delta, u)
	if w < 0 {
		return 0
	}
	return w
}

// NudgeReps adds delta to the integer value of current (0 when
// non-numeric), clamped to a minimum of 0.
func NudgeReps(current string, delta int) int {
	r, ok := ParseLeadingInt(current)
	if !ok {
		r = 0
	}
	r += delta
	if r < 0 {
		return 0
	}
	return r
}

// Convert re-expresses a weight entered in from as a weight in to.
func Convert(v float64, from, to models.Unit) float64 {
	switch {
	case from == to, !from.Valid(), !to.Valid():
		return v
	case from == models.UnitKilogram:
		return v * PoundsPerKilogram
	default:
		return v / PoundsPerKilogram
	}
}

// FormatWeight renders a number as a plain string without trailing zeros,
// the form used in CSV cells and text inputs.
func FormatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Formatter renders weights with locale-aware digit grouping.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a Formatter for the given locale tag. An
// unparseable tag falls back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

var defaultFormatter = NewFormatter("en")

// FormatWithUnit formats value with at most two fraction digits and the
// unit label. Empty or non-numeric input renders as "".
func (f *Formatter) FormatWithUnit(value string, u models.Unit) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	v, ok := ParseLeadingFloat(value)
	if !ok {
		return ""
	}
	return f.Format(v, u)
}

// Format renders v with the unit label, e.g. "1,234.5 lb".
func (f *Formatter) Format(v float64, u models.Unit) string {
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2))) + " " + string(u)
}

// FormatWithUnit uses the English formatter.
func FormatWithUnit(value string, u models.Unit) string {
	return defaultFormatter.FormatWithUnit(value, u)
}

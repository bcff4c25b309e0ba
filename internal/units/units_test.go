package units

import (
	"testing"

	"github.com/claude/pocketlifts/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWeightStep(t *testing.T) {
	assert.Equal(t, 5.0, WeightStep(models.UnitPound))
	assert.Equal(t, 2.5, WeightStep(models.UnitKilogram))
	assert.Equal(t, 5, RepStep())
}

func TestNudgeWeight(t *testing.T) {
	tests := []struct {
		current string
		delta   float64
		unit    models.Unit
		want    float64
	}{
		{"135", 5, models.UnitPound, 140},
		{"", 5, models.UnitPound, 5},
		{"abc", 2.5, models.UnitKilogram, 2.5},
		{"60", 2.5, models.UnitKilogram, 62.5},
		{"62.44", 2.5, models.UnitKilogram, 64.9},
		{"132.6", 5, models.UnitPound, 138},
		{"2", -5, models.UnitPound, 0},
		{"135lb", -5, models.UnitPound, 130},
	}
	for _, tt := range tests {
		got := NudgeWeight(tt.current, tt.delta, tt.unit)
		assert.InDelta(t, tt.want, got, 1e-9, "NudgeWeight(%q, %v, %s)", tt.current, tt.delta, tt.unit)
	}
}

func TestNudgeReps(t *testing.T) {
	assert.Equal(t, 10, NudgeReps("5", 5))
	assert.Equal(t, 5, NudgeReps("x", 5))
	assert.Equal(t, 0, NudgeReps("3", -5))
	assert.Equal(t, 10, NudgeReps("5.9", 5))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 91.0, Round(90.5, models.UnitPound))
	assert.Equal(t, 99.0, Round(99.0000001, models.UnitPound))
	assert.InDelta(t, 67.5, Round(67.46, models.UnitKilogram), 1e-9)
}

func TestFormatWithUnit(t *testing.T) {
	assert.Equal(t, "", FormatWithUnit("", models.UnitPound))
	assert.Equal(t, "", FormatWithUnit("  ", models.UnitPound))
	assert.Equal(t, "135 lb", FormatWithUnit("135", models.UnitPound))
	assert.Equal(t, "1,234.57 kg", FormatWithUnit("1234.567", models.UnitKilogram))
	assert.Equal(t, "62.5 kg", FormatWithUnit("62.5", models.UnitKilogram))
}

func TestFormatterLocale(t *testing.T) {
	f := NewFormatter("de")
	assert.Equal(t, "1.234,5 kg", f.Format(1234.5, models.UnitKilogram))

	fallback := NewFormatter("not a tag!")
	assert.Equal(t, "1,000 lb", fallback.Format(1000, models.UnitPound))
}

func TestConvert(t *testing.T) {
	assert.InDelta(t, 220.462, Convert(100, models.UnitKilogram, models.UnitPound), 1e-3)
	assert.InDelta(t, 100, Convert(220.462262185, models.UnitPound, models.UnitKilogram), 1e-9)
	assert.Equal(t, 100.0, Convert(100, models.UnitPound, models.UnitPound))
}

func TestParseLeading(t *testing.T) {
	f, ok := ParseLeadingFloat(" 72.5kg")
	assert.True(t, ok)
	assert.Equal(t, 72.5, f)

	_, ok = ParseLeadingFloat("kg")
	assert.False(t, ok)

	n, ok := ParseLeadingInt("12 reps")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
}

func TestFormatWeight(t *testing.T) {
	assert.Equal(t, "135", FormatWeight(135))
	assert.Equal(t, "72.5", FormatWeight(72.5))
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoutineType(t *testing.T) {
	cases := map[string]RoutineType{
		"A":              RoutineMorningHybrid,
		"a":              RoutineMorningHybrid,
		"morning_hybrid": RoutineMorningHybrid,
		"B":              RoutineBiweeklyDeep,
		"C":              RoutineWeekendTheme,
		"D":              RoutineEducational,
		"educational":    RoutineEducational,
	}
	for input, want := range cases {
		got, err := ParseRoutineType(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got)
	}

	_, err := ParseRoutineType("E")
	assert.Error(t, err)
	_, err = ParseRoutineType("")
	assert.Error(t, err)
}

func TestRoutineDisplayName(t *testing.T) {
	assert.Equal(t, "Routine A: Daily Morning Hybrid", RoutineMorningHybrid.DisplayName())
	assert.Equal(t, "Routine D: Educational Confidence Building", RoutineEducational.DisplayName())
	assert.Equal(t, "mystery", RoutineType("mystery").DisplayName())
}

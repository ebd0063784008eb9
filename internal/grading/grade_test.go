package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		percentage float64
		expected   Grade
	}{
		{100, GradeA1},
		{90, GradeA1},
		{89.9, GradeA2},
		{80, GradeA2},
		{79.9, GradeB3},
		{75, GradeB3},
		{73, GradeB4},
		{70, GradeB4},
		{65, GradeC5},
		{60, GradeC6},
		{55, GradeD7},
		{50, GradeE8},
		{49, GradeF9},
		{0, GradeF9},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, Classify(tc.percentage), "percentage %v", tc.percentage)
	}
}

func TestClassifyTotalAndMonotonic(t *testing.T) {
	rank := map[Grade]int{
		GradeA1: 9, GradeA2: 8, GradeB3: 7, GradeB4: 6,
		GradeC5: 5, GradeC6: 4, GradeD7: 3, GradeE8: 2, GradeF9: 1,
	}

	previous := 0
	for p := 0.0; p <= 100.0; p += 0.5 {
		grade := Classify(p)
		value, known := rank[grade]
		require.True(t, known, "classify returned an unknown grade %q", grade)
		require.GreaterOrEqual(t, value, previous, "grade worsened as percentage rose at %v", p)
		previous = value
	}
}

func TestClassifyStrength(t *testing.T) {
	require.Equal(t, StrengthWeak, ClassifyStrength(49.9))
	require.Equal(t, StrengthDeveloping, ClassifyStrength(50))
	require.Equal(t, StrengthDeveloping, ClassifyStrength(69))
	require.Equal(t, StrengthProficient, ClassifyStrength(70))
	require.Equal(t, StrengthProficient, ClassifyStrength(84))
	require.Equal(t, StrengthStrong, ClassifyStrength(85))
}

func TestClassifyAbility(t *testing.T) {
	require.Equal(t, AbilityBelowGrade, ClassifyAbility(49.9))
	require.Equal(t, AbilityAtGrade, ClassifyAbility(50))
	require.Equal(t, AbilityAtGrade, ClassifyAbility(74.9))
	require.Equal(t, AbilityAboveGrade, ClassifyAbility(75))
}

func TestPercentage(t *testing.T) {
	require.Equal(t, 73.0, Percentage(73, 100))
	require.Equal(t, 66.7, Percentage(2, 3))
	require.Equal(t, 0.0, Percentage(10, 0))
}

package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMovingAverageWindowGrowth(t *testing.T) {
	values := []float64{60, 70, 80, 90}

	averages := MovingAverage(values, 3)

	require.Equal(t, []float64{60, 65, 70, 80}, averages)
}

func TestMovingAverageRounding(t *testing.T) {
	averages := MovingAverage([]float64{50, 51}, 3)
	require.Equal(t, []float64{50, 50.5}, averages)

	averages = MovingAverage([]float64{50, 51, 51}, 3)
	require.Equal(t, 50.7, averages[2])
}

func TestMovingAverageEmpty(t *testing.T) {
	require.Empty(t, MovingAverage(nil, 3))
}

func TestTrendLabel(t *testing.T) {
	require.Equal(t, TrendImproving, TrendLabel(80, 70))
	require.Equal(t, TrendDeclining, TrendLabel(60, 70))
	require.Equal(t, TrendConsistent, TrendLabel(72, 70))
	require.Equal(t, TrendConsistent, TrendLabel(65, 70))
	require.Equal(t, TrendConsistent, TrendLabel(70, 70))
}

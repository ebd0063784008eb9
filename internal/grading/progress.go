package grading

// Trend labels describe the direction of a student's recent scores.
const (
	TrendImproving  = "improving"
	TrendDeclining  = "declining"
	TrendConsistent = "consistent"
)

// trendBand is the dead zone within which score movement counts as consistent.
const trendBand = 5.0

// MovingAverage computes a trailing-window moving average over values in
// chronological order, rounded to one decimal. The window grows from 1 up to
// window as early points lack history.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	averages := make([]float64, 0, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		averages = append(averages, Round1(Mean(values[start:i+1])))
	}
	return averages
}

// TrendLabel compares the mean of a recent score group against the mean of
// the preceding group. Movement beyond the band is improving or declining;
// anything inside it is consistent.
func TrendLabel(recentMean, previousMean float64) string {
	diff := recentMean - previousMean
	switch {
	case diff > trendBand:
		return TrendImproving
	case diff < -trendBand:
		return TrendDeclining
	default:
		return TrendConsistent
	}
}

package grading

import "math"

// Grade is a letter grade on the nine-band O-level scale surfaced to
// students and teachers.
type Grade string

// The closed grade scale, best to worst.
const (
	GradeA1 Grade = "A1"
	GradeA2 Grade = "A2"
	GradeB3 Grade = "B3"
	GradeB4 Grade = "B4"
	GradeC5 Grade = "C5"
	GradeC6 Grade = "C6"
	GradeD7 Grade = "D7"
	GradeE8 Grade = "E8"
	GradeF9 Grade = "F9"
)

// gradeBand pairs a minimum percentage with the grade it earns.
type gradeBand struct {
	min   float64
	grade Grade
}

// Bands are checked in descending order; the first match wins.
var gradeBands = []gradeBand{
	{90, GradeA1},
	{80, GradeA2},
	{75, GradeB3},
	{70, GradeB4},
	{65, GradeC5},
	{60, GradeC6},
	{55, GradeD7},
	{50, GradeE8},
}

// Classify maps a percentage score to its letter grade. This is the single
// grading scale used everywhere a grade is computed.
func Classify(percentage float64) Grade {
	for _, band := range gradeBands {
		if percentage >= band.min {
			return band.grade
		}
	}
	return GradeF9
}

// StrengthLevel classifies a topic average relative to mastery expectations.
type StrengthLevel string

const (
	StrengthWeak       StrengthLevel = "weak"
	StrengthDeveloping StrengthLevel = "developing"
	StrengthProficient StrengthLevel = "proficient"
	StrengthStrong     StrengthLevel = "strong"
)

// ClassifyStrength maps a topic average score to a strength level.
func ClassifyStrength(averageScore float64) StrengthLevel {
	switch {
	case averageScore >= 85:
		return StrengthStrong
	case averageScore >= 70:
		return StrengthProficient
	case averageScore >= 50:
		return StrengthDeveloping
	default:
		return StrengthWeak
	}
}

// AbilityLevel is the coarse classification of a student's overall recent
// performance relative to grade-level expectations.
type AbilityLevel string

const (
	AbilityBelowGrade AbilityLevel = "below_grade"
	AbilityAtGrade    AbilityLevel = "at_grade"
	AbilityAboveGrade AbilityLevel = "above_grade"
)

// ClassifyAbility maps the mean of recent percentage scores to an ability level.
func ClassifyAbility(meanPercentage float64) AbilityLevel {
	switch {
	case meanPercentage >= 75:
		return AbilityAboveGrade
	case meanPercentage >= 50:
		return AbilityAtGrade
	default:
		return AbilityBelowGrade
	}
}

// Percentage computes awarded/possible as a percentage rounded to one decimal.
// A non-positive possible yields zero rather than NaN.
func Percentage(awarded, possible float64) float64 {
	if possible <= 0 {
		return 0
	}
	return Round1(awarded / possible * 100)
}

// Round1 rounds to one decimal place.
func Round1(value float64) float64 {
	return math.Round(value*10) / 10
}

// Mean returns the arithmetic mean of values, or zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

package domain

import "math"

const (
	// MaxWeeklyPoints caps a single evaluation's award.
	MaxWeeklyPoints = 100
	// BaselineWeeks is the length of the trailing window averaged into the baseline.
	BaselineWeeks = 4
	// penaltyRate marks "no waste last week, some waste this week".
	penaltyRate = -1.0
)

// EvaluateRates returns the reduction rate against last week and against the
// baseline weekly average. Positive means less waste this week.
func EvaluateRates(thisWeekGrams, lastWeekGrams, baselineGrams float64) (rateLastWeek, rateBaseline float64) {
	switch {
	case lastWeekGrams > 0:
		rateLastWeek = (lastWeekGrams - thisWeekGrams) / lastWeekGrams
	case thisWeekGrams > 0:
		rateLastWeek = penaltyRate
	}

	// No penalty branch here: a zero baseline leaves the rate at 0.
	if baselineGrams > 0 {
		rateBaseline = (baselineGrams - thisWeekGrams) / baselineGrams
	}
	return rateLastWeek, rateBaseline
}

// FinalRate picks the stricter of the two rates.
func FinalRate(rateLastWeek, rateBaseline float64) float64 {
	return math.Min(rateLastWeek, rateBaseline)
}

// PointsForRate converts a reduction rate into points: one point per full ten
// percentage points, capped at MaxWeeklyPoints. Non-positive rates earn nothing.
func PointsForRate(rate float64) int {
	if !(rate > 0) {
		return 0
	}
	pct := rate * 100
	if pct >= float64(MaxWeeklyPoints*10) {
		return MaxWeeklyPoints
	}
	return min(int(pct)/10, MaxWeeklyPoints)
}

// Percent renders a fractional rate as a percentage rounded to two decimals.
func Percent(rate float64) float64 {
	return math.Round(rate*100*100) / 100
}

package templates

import "math"

// #region feedback-weights

// Feedback deltas before the learning rate is applied.
const (
	AcceptDelta     = 0.1
	RejectDelta     = -0.05
	EditedDelta     = -0.02
	RatingDelta     = 0.03 // per rating point away from 3
	MinLearningRate = 0.01
)

// #endregion feedback-weights

// #region learning-rate

// LearningRate decays with usage: max(0.01, 1/sqrt(usage)).
// Heavily used templates react less to any single event.
func LearningRate(usage int) float64 {
	if usage <= 1 {
		return 1
	}
	return math.Max(MinLearningRate, 1/math.Sqrt(float64(usage)))
}

// RawDelta is the unscaled effectiveness change for one feedback event.
func RawDelta(fb Feedback) float64 {
	d := RejectDelta
	if fb.Accepted {
		d = AcceptDelta
	}
	if fb.Edited {
		d += EditedDelta
	}
	if fb.Rating >= 1 && fb.Rating <= 5 {
		d += RatingDelta * float64(fb.Rating-3)
	}
	return d
}

// #endregion learning-rate

// #region apply-feedback

// ApplyFeedback is a pure function returning t after one feedback event:
// usage is incremented first, then the raw delta is scaled by the learning
// rate at the new usage and the score clamped into [0, 1].
func ApplyFeedback(t Template, fb Feedback) Template {
	t.UsageCount++
	t.Effectiveness = clamp(t.Effectiveness + RawDelta(fb)*LearningRate(t.UsageCount))
	return t
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion apply-feedback

package okr

import "math"

// KeyResultProgress is the completion percentage for one key result,
// clamped to [0,100]. A non-positive target reads as 0% rather than
// dividing by zero.
func KeyResultProgress(kr KeyResult) int {
	if kr.Target <= 0 {
		return 0
	}
	pct := int(math.Round(kr.Current / kr.Target * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ObjectiveProgress is the rounded arithmetic mean of the key results'
// progress, capped at 100. Key-result weights do not enter the average;
// they express priority, not progress share.
func ObjectiveProgress(obj Objective) int {
	if len(obj.KeyResults) == 0 {
		return 0
	}
	sum := 0
	for _, kr := range obj.KeyResults {
		sum += KeyResultProgress(kr)
	}
	pct := int(math.Round(float64(sum) / float64(len(obj.KeyResults))))
	if pct > 100 {
		return 100
	}
	return pct
}

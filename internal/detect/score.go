package detect

import (
	"math"
	"sort"
)

// consistencyConstant is the 0.75 quantile of the standard normal
// distribution. Scaling by it makes the MAD a consistent estimator for the
// standard deviation under normality.
const consistencyConstant = 0.6745

// median returns the standard median: the mean of the two middle elements
// for even-length input. values must be non-empty and is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// meanStdDev returns the mean and population standard deviation
// (normalized by n, not n-1).
func meanStdDev(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(values)))
}

// modifiedZScores computes the absolute Modified Z-Score for every element
// of values: |0.6745 * (v - median) / MAD|.
//
// The MAD collapses to exactly zero when a majority of values are
// identical, which would divide by zero, so scoring then falls back to the
// classical mean/standard-deviation z-score; a single spike injected into
// otherwise constant data still registers against that degenerate baseline.
// When the standard deviation is also zero every score is zero. The
// zero-MAD comparison is deliberately exact, not an epsilon band. Scores
// are always finite for finite input.
func modifiedZScores(values []float64) []float64 {
	med := median(values)

	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = math.Abs(v - med)
	}
	mad := median(devs)

	scores := make([]float64, len(values))
	if mad == 0 {
		mean, std := meanStdDev(values)
		if std == 0 {
			return scores
		}
		for i, v := range values {
			scores[i] = math.Abs(v-mean) / std
		}
		return scores
	}

	for i, v := range values {
		scores[i] = math.Abs(consistencyConstant * (v - med) / mad)
	}
	return scores
}

// round4 rounds a score to four decimal places for presentation.
// Threshold comparisons always use the unrounded score.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

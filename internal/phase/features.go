package phase

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ExtractFeatures computes the per-sample rolling statistics over the
// smoothed trace. Every feature uses a bounded trailing window that grows
// from the start of the trace, so all values are defined and finite for
// every index. The smoothed slice is read-only; disjoint index ranges could
// be computed concurrently, but the batch sizes here do not warrant it.
func ExtractFeatures(smoothed []float64, p Params) []FeatureVector {
	features := make([]FeatureVector, len(smoothed))
	for i := range smoothed {
		features[i] = extractAt(smoothed, i, p)
	}
	return features
}

func extractAt(x []float64, i int, p Params) FeatureVector {
	short := trailing(x, i, p.ShortWindow)
	long := trailing(x, i, p.LongWindow)
	extended := trailing(x, i, 2*p.LongWindow)

	fv := FeatureVector{
		AvgShort: stat.Mean(short, nil),
		AvgLong:  stat.Mean(long, nil),
		StdShort: sampleStdDev(short),
		StdLong:  sampleStdDev(long),
	}

	fv.MinShort, fv.MaxShort = minMax(short)
	fv.RangeShort = fv.MaxShort - fv.MinShort
	fv.Derivative = gradientAt(x, i)
	fv.TimeInRange = timeInRange(x, i, p.LongWindow, p.InRangeToleranceW)

	longMin, longMax := minMax(long)
	fv.Oscillation = (longMax - longMin) / (fv.AvgLong + p.Epsilon)
	fv.PeakCount = peakCount(long)
	fv.Regularity = regularity(extended)
	fv.HighPowerRatio = highPowerRatio(long, p.WashingMaxW)
	fv.Stability = stability(long, fv.AvgLong, p.Epsilon)
	fv.MAD = meanAbsDeviation(long, fv.AvgLong)

	return fv
}

// sampleStdDev is the sample standard deviation with the degenerate-window
// fallback: fewer than two samples yields 0, never NaN.
func sampleStdDev(window []float64) float64 {
	if len(window) < 2 {
		return 0
	}
	return stat.StdDev(window, nil)
}

func minMax(window []float64) (min, max float64) {
	min, max = window[0], window[0]
	for _, v := range window[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// gradientAt is the numerical gradient at index i: central difference in the
// interior, one-sided difference at the two ends, unit sample spacing.
func gradientAt(x []float64, i int) float64 {
	n := len(x)
	switch {
	case n < 2:
		return 0
	case i == 0:
		return x[1] - x[0]
	case i == n-1:
		return x[n-1] - x[n-2]
	default:
		return (x[i+1] - x[i-1]) / 2
	}
}

// timeInRange counts the samples in the trailing long window (current sample
// included) whose value is within tolerance of the current sample. For
// indices with less history than the window it degrades to the number of
// samples seen so far, matching the original stability indicator.
func timeInRange(x []float64, i, window int, tolerance float64) float64 {
	if i < window {
		return float64(i)
	}
	current := x[i]
	count := 0
	for _, v := range x[i-window : i+1] {
		if math.Abs(v-current) < tolerance {
			count++
		}
	}
	return float64(count)
}

// peakCount counts strict local maxima inside the window. Windows shorter
// than three samples cannot contain an interior maximum.
func peakCount(window []float64) int {
	if len(window) < 3 {
		return 0
	}
	count := 0
	for k := 1; k < len(window)-1; k++ {
		if window[k-1] < window[k] && window[k] > window[k+1] {
			count++
		}
	}
	return count
}

// regularity measures rhythmic consistency as 1/(1+std(diff)) over the
// extended window; a periodic load oscillates with near-constant steps.
func regularity(window []float64) float64 {
	d := diffs(window)
	if d == nil {
		return 0
	}
	return 1 / (1 + stdDevOrZero(d))
}

func highPowerRatio(window []float64, threshold float64) float64 {
	count := 0
	for _, v := range window {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(window))
}

// stability distinguishes smooth oscillation from abrupt jumps.
func stability(window []float64, mean, eps float64) float64 {
	d := diffs(window)
	if d == nil {
		return 0
	}
	return 1 - stdDevOrZero(d)/(mean+eps)
}

func meanAbsDeviation(window []float64, mean float64) float64 {
	var sum float64
	for _, v := range window {
		sum += math.Abs(v - mean)
	}
	return sum / float64(len(window))
}

func stdDevOrZero(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}

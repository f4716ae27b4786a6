package phase

import (
	"math"
	"testing"
)

func TestExtractFeatures_FiniteEverywhere(t *testing.T) {
	traces := [][]float64{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{5},
		{100, 180, 90, 210, 110, 195, 85, 205, 120, 190},
		{350, 350, 350, 350, 350},
	}
	params := DefaultParams()

	for _, trace := range traces {
		features := ExtractFeatures(trace, params)
		if len(features) != len(trace) {
			t.Fatalf("feature count = %d, want %d", len(features), len(trace))
		}
		for i, fv := range features {
			for j, v := range fv.Values() {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("feature %s at index %d is %v", FeatureColumns()[j], i, v)
				}
			}
		}
	}
}

func TestExtractFeatures_StartOfTrace(t *testing.T) {
	x := []float64{100, 120, 110, 130, 105, 125}
	fv := ExtractFeatures(x, DefaultParams())[0]

	if fv.AvgShort != 100 || fv.AvgLong != 100 {
		t.Errorf("averages at index 0 = %v/%v, want 100/100", fv.AvgShort, fv.AvgLong)
	}
	if fv.StdShort != 0 || fv.StdLong != 0 {
		t.Errorf("stddevs at index 0 = %v/%v, want 0/0", fv.StdShort, fv.StdLong)
	}
	if fv.RangeShort != 0 {
		t.Errorf("range at index 0 = %v, want 0", fv.RangeShort)
	}
	if fv.TimeInRange != 0 {
		t.Errorf("time_in_range at index 0 = %v, want 0", fv.TimeInRange)
	}
	if fv.Derivative != x[1]-x[0] {
		t.Errorf("derivative at index 0 = %v, want forward difference %v", fv.Derivative, x[1]-x[0])
	}
	if fv.PeakCount != 0 {
		t.Errorf("peak count at index 0 = %d, want 0", fv.PeakCount)
	}
}

func TestExtractFeatures_Derivative(t *testing.T) {
	x := []float64{0, 2, 6, 6, 4}
	features := ExtractFeatures(x, DefaultParams())

	if got := features[1].Derivative; got != 3 {
		t.Errorf("central derivative = %v, want 3", got)
	}
	if got := features[len(x)-1].Derivative; got != -2 {
		t.Errorf("backward derivative = %v, want -2", got)
	}
}

func TestExtractFeatures_TimeInRange(t *testing.T) {
	params := DefaultParams()

	// Short history: degrades to samples seen so far.
	x := []float64{100, 100, 100}
	features := ExtractFeatures(x, params)
	for i, fv := range features {
		if fv.TimeInRange != float64(i) {
			t.Errorf("time_in_range[%d] = %v, want %d", i, fv.TimeInRange, i)
		}
	}

	// Constant trace with full history: the whole window is in range.
	x = []float64{100, 100, 100, 100, 100, 100}
	fv := ExtractFeatures(x, params)[5]
	if fv.TimeInRange != float64(params.LongWindow+1) {
		t.Errorf("time_in_range = %v, want %d", fv.TimeInRange, params.LongWindow+1)
	}

	// A step larger than the tolerance drops the old samples out of range.
	x = []float64{100, 100, 100, 100, 200, 200}
	fv = ExtractFeatures(x, params)[5]
	if fv.TimeInRange != 2 {
		t.Errorf("time_in_range after step = %v, want 2", fv.TimeInRange)
	}
}

func TestExtractFeatures_OscillationAndPeaks(t *testing.T) {
	params := DefaultParams()

	x := []float64{100, 210, 100, 210, 100}
	fv := ExtractFeatures(x, params)[4]

	// Long window covers [210, 100, 210, 100]: one interior strict maximum.
	if fv.PeakCount != 1 {
		t.Errorf("peak count = %d, want 1", fv.PeakCount)
	}
	wantOsc := 110.0 / (155.0 + params.Epsilon)
	if math.Abs(fv.Oscillation-wantOsc) > 1e-9 {
		t.Errorf("oscillation = %v, want %v", fv.Oscillation, wantOsc)
	}

	// A flat window has no spread at all.
	flat := ExtractFeatures([]float64{100, 100, 100, 100, 100}, params)[4]
	if flat.Oscillation != 0 || flat.PeakCount != 0 {
		t.Errorf("flat window oscillation/peaks = %v/%d, want 0/0", flat.Oscillation, flat.PeakCount)
	}
	if flat.Regularity != 1 {
		t.Errorf("flat window regularity = %v, want 1", flat.Regularity)
	}
	if flat.MAD != 0 {
		t.Errorf("flat window mad = %v, want 0", flat.MAD)
	}
}

func TestExtractFeatures_HighPowerRatio(t *testing.T) {
	params := DefaultParams()
	x := []float64{100, 100, 250, 250, 100}
	fv := ExtractFeatures(x, params)[4]

	// Long window covers [100, 250, 250, 100]: half above the threshold.
	if fv.HighPowerRatio != 0.5 {
		t.Errorf("high_power_ratio = %v, want 0.5", fv.HighPowerRatio)
	}
}

func TestPeakCount_WindowCeiling(t *testing.T) {
	// A window of n samples holds at most (n-1)/2 strict maxima; a
	// perfectly alternating signal saturates the bound.
	if got := peakCount([]float64{100, 210, 100, 210}); got != 1 {
		t.Errorf("peak count over 4 samples = %d, want ceiling 1", got)
	}
	if got := peakCount([]float64{100, 210, 100, 210, 100}); got != 2 {
		t.Errorf("peak count over 5 samples = %d, want ceiling 2", got)
	}
}

func TestFeatureColumns_MatchValues(t *testing.T) {
	fv := FeatureVector{}
	if len(fv.Values()) != len(FeatureColumns()) {
		t.Fatalf("Values() has %d entries, FeatureColumns() has %d",
			len(fv.Values()), len(FeatureColumns()))
	}
}

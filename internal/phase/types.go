// Package phase segments an appliance power trace into operating phases.
//
// The pipeline is strictly linear and batch: a raw trace is smoothed with a
// Savitzky-Golay filter, per-sample rolling features are extracted from the
// smoothed trace, each sample is given a raw phase label by a threshold rule
// tree, and a temporal refiner repairs the label sequence into a physically
// plausible timeline. The output is training data for a downstream
// classifier, not a deployed inference path.
package phase

// Phase is the operating state assigned to one power sample.
type Phase string

const (
	// PhaseIdle indicates standby draw (door locked, pumps off).
	PhaseIdle Phase = "IDLE"
	// PhaseWashing indicates the oscillating drum-agitation baseline.
	PhaseWashing Phase = "WASHING"
	// PhaseRinse indicates a rinse interval (fill/drain pump peaks).
	PhaseRinse Phase = "RINSE"
	// PhaseSpin indicates sustained high motor draw during a spin cycle.
	PhaseSpin Phase = "SPIN"
)

// Phases lists all phase values in a stable order.
var Phases = []Phase{PhaseIdle, PhaseWashing, PhaseRinse, PhaseSpin}

// Sample is one raw power measurement.
type Sample struct {
	TimeSeconds float64 // seconds since trace start
	Power       float64 // raw watts
}

// FeatureVector holds the rolling-window statistics computed for one sample.
// Every field is derived from the smoothed trace over a bounded trailing
// window and is always finite; degenerate windows fall back to zero.
type FeatureVector struct {
	AvgShort       float64 // mean over the short trailing window
	AvgLong        float64 // mean over the long trailing window
	StdShort       float64 // sample stddev over the short window, 0 if <2 samples
	StdLong        float64 // sample stddev over the long window, 0 if <2 samples
	MinShort       float64 // minimum over the short window
	MaxShort       float64 // maximum over the short window
	RangeShort     float64 // MaxShort - MinShort
	Derivative     float64 // numerical gradient of smoothed power
	TimeInRange    float64 // samples in the long window within tolerance of current
	Oscillation    float64 // (max-min)/(mean+eps) over the long window
	PeakCount      int     // strict local maxima inside the long window
	Regularity     float64 // 1/(1+std(diff)) over the extended window
	HighPowerRatio float64 // fraction of long-window samples above the high-power threshold
	Stability      float64 // 1 - std(diff)/(mean+eps) over the long window
	MAD            float64 // mean absolute deviation over the long window
}

// FeatureColumns returns the feature column names in the order used by
// Values. This order is the contract consumed by classifier training.
func FeatureColumns() []string {
	return []string{
		"avg_short", "avg_long",
		"std_short", "std_long",
		"min_short", "max_short", "range_short",
		"derivative", "time_in_range", "oscillation",
		"peak_count", "regularity", "high_power_ratio",
		"stability", "mad",
	}
}

// Values returns the feature values in FeatureColumns order.
func (fv FeatureVector) Values() []float64 {
	return []float64{
		fv.AvgShort, fv.AvgLong,
		fv.StdShort, fv.StdLong,
		fv.MinShort, fv.MaxShort, fv.RangeShort,
		fv.Derivative, fv.TimeInRange, fv.Oscillation,
		float64(fv.PeakCount), fv.Regularity, fv.HighPowerRatio,
		fv.Stability, fv.MAD,
	}
}

// LabeledTrace is the final artifact of one segmentation run: the raw
// samples, the smoothed trace, the per-sample feature vectors, and the
// refined phase sequence. All four slices have identical length.
type LabeledTrace struct {
	Samples  []Sample
	Smoothed []float64
	Features []FeatureVector
	Phases   []Phase
}

// Len returns the number of samples in the trace.
func (lt *LabeledTrace) Len() int { return len(lt.Samples) }

// Duration returns the elapsed seconds between the first and last sample.
func (lt *LabeledTrace) Duration() float64 {
	if len(lt.Samples) < 2 {
		return 0
	}
	return lt.Samples[len(lt.Samples)-1].TimeSeconds - lt.Samples[0].TimeSeconds
}

// PhaseCounts returns the number of samples labeled with each phase.
func (lt *LabeledTrace) PhaseCounts() map[Phase]int {
	counts := make(map[Phase]int, len(Phases))
	for _, p := range Phases {
		counts[p] = 0
	}
	for _, p := range lt.Phases {
		counts[p]++
	}
	return counts
}

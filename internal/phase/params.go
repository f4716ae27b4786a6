package phase

import "fmt"

// Params collects every tunable of the segmentation pipeline in one explicit
// structure passed into each component. The defaults were tuned against the
// power distribution of a single appliance (median ~89 W, p75 ~146 W,
// p95 ~278 W); other appliances need recalibration via the tuning file
// rather than code changes.
type Params struct {
	// Savitzky-Golay smoothing
	SmoothingWindow int // odd window length, >= SmoothingOrder+2
	SmoothingOrder  int // polynomial order

	// Rolling feature windows (samples)
	ShortWindow int
	LongWindow  int

	// Classifier thresholds (watts unless noted)
	IdleMaxW            float64 // below this: IDLE
	WashingMaxW         float64 // washing band top / high-power-ratio threshold
	RinseBandTopW       float64 // brief spikes above this: RINSE
	SpinW               float64 // above this: unambiguous SPIN
	SpinSustainedAvgW   float64 // long-average gate for sustained SPIN
	OscillationBandTopW float64 // top of the washing oscillation carve-out band
	OscillationMin      float64 // minimum oscillation for the carve-out (ratio)

	// PeakCountMin is the minimum peak count for the carve-out. A window of
	// n samples holds at most (n-1)/2 strict maxima, so values above 1 need
	// LongWindow >= 2*PeakCountMin+1 to be reachable.
	PeakCountMin int
	InRangeToleranceW   float64 // tolerance for the time_in_range feature
	Epsilon             float64 // division-by-zero guard for ratio features

	// Temporal refinement
	RinseRadius int     // samples relabeled around each RINSE sample
	SpinRadius  int     // samples inspected around each SPIN sample
	SpinSkirtW  float64 // RINSE above this within SpinRadius becomes SPIN
	MinDwell    int     // minimum run length for non-IDLE phases
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		SmoothingWindow: 11,
		SmoothingOrder:  3,

		ShortWindow: 2,
		LongWindow:  4,

		IdleMaxW:            15,
		WashingMaxW:         200,
		RinseBandTopW:       270,
		SpinW:               300,
		SpinSustainedAvgW:   250,
		OscillationBandTopW: 220,
		OscillationMin:      0.3,
		PeakCountMin:        2,
		InRangeToleranceW:   20,
		Epsilon:             1e-6,

		RinseRadius: 30,
		SpinRadius:  10,
		SpinSkirtW:  250,
		MinDwell:    3,
	}
}

// Validate checks the static parameter invariants that do not depend on
// trace length. Trace-dependent checks happen at the start of smoothing.
func (p Params) Validate() error {
	if p.SmoothingWindow < 1 || p.SmoothingWindow%2 == 0 {
		return fmt.Errorf("smoothing window must be a positive odd number, got %d", p.SmoothingWindow)
	}
	if p.SmoothingOrder < 0 {
		return fmt.Errorf("smoothing order must be non-negative, got %d", p.SmoothingOrder)
	}
	if p.SmoothingOrder >= p.SmoothingWindow {
		return fmt.Errorf("smoothing order %d must be less than window %d", p.SmoothingOrder, p.SmoothingWindow)
	}
	if p.SmoothingWindow < p.SmoothingOrder+2 {
		return fmt.Errorf("smoothing window %d too short for order %d", p.SmoothingWindow, p.SmoothingOrder)
	}
	if p.ShortWindow < 1 {
		return fmt.Errorf("short window must be positive, got %d", p.ShortWindow)
	}
	if p.LongWindow < p.ShortWindow {
		return fmt.Errorf("long window %d must be >= short window %d", p.LongWindow, p.ShortWindow)
	}
	if p.IdleMaxW < 0 || p.WashingMaxW <= p.IdleMaxW ||
		p.RinseBandTopW <= p.WashingMaxW || p.SpinW <= p.RinseBandTopW {
		return fmt.Errorf("power thresholds must satisfy 0 <= idle < washing < rinse < spin, got %.0f/%.0f/%.0f/%.0f",
			p.IdleMaxW, p.WashingMaxW, p.RinseBandTopW, p.SpinW)
	}
	if p.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", p.Epsilon)
	}
	if p.RinseRadius < 0 || p.SpinRadius < 0 {
		return fmt.Errorf("expansion radii must be non-negative, got %d/%d", p.RinseRadius, p.SpinRadius)
	}
	if p.MinDwell < 1 {
		return fmt.Errorf("minimum dwell must be at least 1, got %d", p.MinDwell)
	}
	return nil
}

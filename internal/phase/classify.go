package phase

// Classifier assigns a raw phase label to each sample from its smoothed
// power and feature vector. Rules are evaluated in priority order, first
// match wins; the output has no temporal awareness yet, that is the
// refiner's job.
type Classifier struct {
	params Params
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(params Params) *Classifier {
	return &Classifier{params: params}
}

// Classify labels every sample of the smoothed trace.
func (c *Classifier) Classify(smoothed []float64, features []FeatureVector) []Phase {
	labels := make([]Phase, len(smoothed))
	for i := range smoothed {
		labels[i] = c.classifySample(smoothed[i], features[i])
	}
	return labels
}

func (c *Classifier) classifySample(p float64, fv FeatureVector) Phase {
	cfg := c.params
	switch {
	case p < cfg.IdleMaxW:
		return PhaseIdle

	case p > cfg.SpinW || (p > cfg.RinseBandTopW && fv.AvgLong > cfg.SpinSustainedAvgW):
		// Sustained very high draw. A reading above the spin threshold is
		// unambiguous; just above the rinse band it also needs a high
		// rolling average to rule out a brief spike.
		return PhaseSpin

	case p > cfg.RinseBandTopW:
		// High spike without the sustained average: rinse pump peak.
		return PhaseRinse

	case p > cfg.WashingMaxW:
		if c.isOscillatingWash(p, fv) {
			return PhaseWashing
		}
		return PhaseRinse

	default:
		// The idle..washing band, and anything the rules above did not claim.
		return PhaseWashing
	}
}

// isOscillatingWash detects regular mid-range drum agitation that the level
// thresholds alone would misread as RINSE: power just above the washing
// band, strong oscillation, and repeated peaks in the long window.
func (c *Classifier) isOscillatingWash(p float64, fv FeatureVector) bool {
	return p < c.params.OscillationBandTopW &&
		fv.Oscillation > c.params.OscillationMin &&
		fv.PeakCount >= c.params.PeakCountMin
}

package phase

import "fmt"

// Segmenter runs the full segmentation pipeline over one trace: signal
// conditioning, feature extraction, threshold classification and temporal
// refinement. A Segmenter is a pure function of its parameters; running the
// same trace twice yields identical output.
type Segmenter struct {
	params     Params
	classifier *Classifier
	refiner    *Refiner
}

// NewSegmenter validates the parameters and builds the pipeline.
func NewSegmenter(params Params) (*Segmenter, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmentation params: %w", err)
	}
	return &Segmenter{
		params:     params,
		classifier: NewClassifier(params),
		refiner:    NewRefiner(params),
	}, nil
}

// Params returns the parameters the segmenter was built with.
func (s *Segmenter) Params() Params { return s.params }

// Run segments the trace and returns the labeled result. It fails eagerly,
// before producing any output, if the trace is missing or too short for the
// configured smoothing window.
func (s *Segmenter) Run(samples []Sample) (*LabeledTrace, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no input samples")
	}
	if s.params.SmoothingWindow > len(samples) {
		return nil, fmt.Errorf("trace has %d samples, need at least %d for the smoothing window",
			len(samples), s.params.SmoothingWindow)
	}

	raw := make([]float64, len(samples))
	for i, sample := range samples {
		raw[i] = sample.Power
	}

	smoothed, err := Smooth(raw, s.params.SmoothingWindow, s.params.SmoothingOrder)
	if err != nil {
		return nil, fmt.Errorf("smoothing failed: %w", err)
	}

	features := ExtractFeatures(smoothed, s.params)
	labels := s.classifier.Classify(smoothed, features)
	labels = s.refiner.Refine(labels, smoothed)

	return &LabeledTrace{
		Samples:  samples,
		Smoothed: smoothed,
		Features: features,
		Phases:   labels,
	}, nil
}

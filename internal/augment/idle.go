// Package augment appends synthetic idle samples to a prepared trace. Real
// recordings stop shortly after the cycle ends, which underrepresents IDLE
// in the training data; padding the tail with noise drawn from the trace's
// own idle distribution rebalances the classes without inventing a new
// power profile.
package augment

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/cycle.report/internal/phase"
	"github.com/banshee-data/cycle.report/internal/powerlog"
)

// idleTailFit is the maximum number of trailing IDLE rows used to fit the
// idle power distribution.
const idleTailFit = 200

// timeInRangeIdle matches the steady-state time_in_range value of real
// idle rows (full long window within tolerance).
const timeInRangeIdle = 5

// Options controls the idle-tail generation.
type Options struct {
	Seconds float64 // duration of idle to append
	Seed    uint64  // RNG seed; same seed, same tail
}

// IdleTail returns a copy of the prepared trace with synthetic IDLE rows
// appended. The sampling interval is inferred from the median time delta of
// the existing rows; the idle power level is fitted to the trailing IDLE
// rows, falling back to the lowest power decile when the trace has none.
func IdleTail(timestamps []string, lt *phase.LabeledTrace, options Options) ([]string, *phase.LabeledTrace, error) {
	if options.Seconds <= 0 {
		return nil, nil, fmt.Errorf("idle tail duration must be positive, got %g", options.Seconds)
	}

	dt, err := medianInterval(lt.Samples)
	if err != nil {
		return nil, nil, err
	}
	count := int(options.Seconds / dt)
	if count < 1 {
		return nil, nil, fmt.Errorf("idle tail of %gs adds no rows at a %gs interval", options.Seconds, dt)
	}

	mu, sigma := idleDistribution(lt)

	src := rand.NewPCG(options.Seed, 0)
	power := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	oscillation := distuv.Uniform{Min: 0.15, Max: 0.7, Src: src}

	outStamps := append([]string(nil), timestamps...)
	out := &phase.LabeledTrace{
		Samples:  append([]phase.Sample(nil), lt.Samples...),
		Smoothed: append([]float64(nil), lt.Smoothed...),
		Features: append([]phase.FeatureVector(nil), lt.Features...),
		Phases:   append([]phase.Phase(nil), lt.Phases...),
	}

	last := lt.Samples[len(lt.Samples)-1].TimeSeconds
	for i := 1; i <= count; i++ {
		t := last + float64(i)*dt
		w := power.Rand()

		out.Samples = append(out.Samples, phase.Sample{TimeSeconds: t, Power: w})
		out.Smoothed = append(out.Smoothed, w)
		out.Features = append(out.Features, idleFeatures(w, oscillation.Rand()))
		out.Phases = append(out.Phases, phase.PhaseIdle)
		outStamps = append(outStamps, powerlog.FormatClock(t))
	}

	return outStamps, out, nil
}

// idleFeatures builds the flat-signal feature vector of a synthetic idle
// row: window statistics collapse onto the sample itself.
func idleFeatures(w, oscillation float64) phase.FeatureVector {
	return phase.FeatureVector{
		AvgShort:    w,
		AvgLong:     w,
		MinShort:    w,
		MaxShort:    w,
		TimeInRange: timeInRangeIdle,
		Oscillation: oscillation,
		Regularity:  1,
		Stability:   1,
	}
}

// medianInterval infers the sampling interval from the median positive time
// delta between consecutive samples.
func medianInterval(samples []phase.Sample) (float64, error) {
	if len(samples) < 2 {
		return 0, fmt.Errorf("need at least 2 samples to infer the sampling interval")
	}
	deltas := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		if d := samples[i].TimeSeconds - samples[i-1].TimeSeconds; d > 0 {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return 0, fmt.Errorf("could not infer a positive sampling interval")
	}
	sort.Float64s(deltas)
	return deltas[len(deltas)/2], nil
}

// idleDistribution fits a Normal to the trailing IDLE rows' raw power, or
// to the lowest power decile when the trace has no IDLE rows at all. A
// degenerate spread gets a small floor so the tail is not perfectly flat.
func idleDistribution(lt *phase.LabeledTrace) (mu, sigma float64) {
	var idle []float64
	for i := lt.Len() - 1; i >= 0 && len(idle) < idleTailFit; i-- {
		if lt.Phases[i] == phase.PhaseIdle {
			idle = append(idle, lt.Samples[i].Power)
		}
	}

	if len(idle) == 0 {
		power := make([]float64, lt.Len())
		for i, s := range lt.Samples {
			power[i] = s.Power
		}
		sort.Float64s(power)
		cut := len(power) / 10
		if cut < 1 {
			cut = 1
		}
		idle = power[:cut]
	}

	mu = stat.Mean(idle, nil)
	if len(idle) >= 2 {
		sigma = stat.StdDev(idle, nil)
	}
	if sigma == 0 || math.IsNaN(sigma) {
		sigma = 0.3
	}
	return mu, sigma
}

package phase

// Refiner repairs the raw per-sample label sequence into a temporally
// coherent timeline. It applies four passes in a fixed order:
//
//  1. rinse-neighbourhood expansion
//  2. spin-skirt cleanup
//  3. minimum dwell
//  4. legal spin transitions
//
// The ordering matters: the skirt pass must see the expanded rinse blocks,
// and the state-machine passes must see the result of both. Each pass reads
// an immutable snapshot of its input and writes a fresh copy. The sequence
// repeats until one full cycle leaves the labels unchanged, so the returned
// sequence is a fixed point: refining it again is a no-op.
type Refiner struct {
	params Params
}

// NewRefiner creates a refiner with the given dwell and radius settings.
func NewRefiner(params Params) *Refiner {
	return &Refiner{params: params}
}

// Refine returns the repaired label sequence. The input slice is not
// modified; smoothed is consulted for the power-dependent rules.
func (r *Refiner) Refine(labels []Phase, smoothed []float64) []Phase {
	out := clonePhases(labels)
	for {
		next := r.expandRinse(out, smoothed)
		next = r.absorbSpinSkirt(next, smoothed)
		next = r.enforceMinDwell(next)
		next = r.enforceSpinPrecondition(next, smoothed)
		if phasesEqual(out, next) {
			return next
		}
		out = next
	}
}

// expandRinse relabels WASHING samples within RinseRadius of each rinse
// spike to RINSE. A spike is a RINSE sample whose smoothed power is still
// above the rinse band top: the brief pump peak inside a longer rinse
// interval whose true boundary comes from dwell, not from the instantaneous
// threshold. Anchoring on the spike power rather than the label keeps the
// pass from feeding itself: relabelled neighbours sit below the band and
// never seed further expansion. IDLE and SPIN samples are never
// overwritten.
func (r *Refiner) expandRinse(labels []Phase, smoothed []float64) []Phase {
	out := clonePhases(labels)
	radius := r.params.RinseRadius
	for i, label := range labels {
		if label != PhaseRinse || smoothed[i] <= r.params.RinseBandTopW {
			continue
		}
		lo, hi := clampWindow(i-radius, i+radius, len(labels))
		for j := lo; j < hi; j++ {
			if labels[j] == PhaseWashing {
				out[j] = PhaseRinse
			}
		}
	}
	return out
}

// absorbSpinSkirt relabels RINSE samples near a SPIN sample to SPIN when
// their smoothed power exceeds the skirt threshold. This captures the
// ramp-up and ramp-down of a spin cycle that the level threshold alone
// assigns to RINSE.
func (r *Refiner) absorbSpinSkirt(labels []Phase, smoothed []float64) []Phase {
	out := clonePhases(labels)
	radius := r.params.SpinRadius
	for i, label := range labels {
		if label != PhaseSpin {
			continue
		}
		lo, hi := clampWindow(i-radius, i+radius, len(labels))
		for j := lo; j < hi; j++ {
			if labels[j] == PhaseRinse && smoothed[j] > r.params.SpinSkirtW {
				out[j] = PhaseSpin
			}
		}
	}
	return out
}

// enforceMinDwell absorbs runs shorter than the minimum dwell into the
// immediately preceding run, suppressing single-sample classification
// jitter. IDLE runs are exempt regardless of length: a brief pause between
// cycle segments is real, not noise. A short run at the very start of the
// trace has no predecessor and is left unchanged.
//
// The scan intentionally reads labels it has already rewritten: a chain of
// short runs collapses into the phase that precedes the whole chain.
func (r *Refiner) enforceMinDwell(labels []Phase) []Phase {
	out := clonePhases(labels)
	i := 0
	for i < len(out) {
		j := i
		for j < len(out) && out[j] == out[i] {
			j++
		}
		if j-i < r.params.MinDwell && out[i] != PhaseIdle && i > 0 {
			for k := i; k < j; k++ {
				out[k] = out[i-1]
			}
		}
		i = j
	}
	return out
}

// enforceSpinPrecondition rejects transitions into SPIN from anything other
// than WASHING, RINSE or SPIN: a washing-machine spin never starts from
// idle. The offending sample inherits its predecessor's phase unless its
// smoothed power is an unambiguous spin reading. The scan is sequential so
// a rejected spin start cascades through the rest of the bogus run.
func (r *Refiner) enforceSpinPrecondition(labels []Phase, smoothed []float64) []Phase {
	out := clonePhases(labels)
	for i := 1; i < len(out); i++ {
		if out[i] != PhaseSpin {
			continue
		}
		if legalSpinPredecessor(out[i-1]) {
			continue
		}
		if smoothed[i] < r.params.SpinW {
			out[i] = out[i-1]
		}
	}
	return out
}

func legalSpinPredecessor(p Phase) bool {
	return p == PhaseWashing || p == PhaseRinse || p == PhaseSpin
}

func clonePhases(labels []Phase) []Phase {
	out := make([]Phase, len(labels))
	copy(out, labels)
	return out
}

func phasesEqual(a, b []Phase) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// clampWindow clips the half-open interval [lo, hi) to the array bounds.
func clampWindow(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

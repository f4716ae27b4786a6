package phase

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// block builds a label sequence from (phase, count) runs.
func block(runs ...interface{}) []Phase {
	var out []Phase
	for i := 0; i < len(runs); i += 2 {
		p := runs[i].(Phase)
		n := runs[i+1].(int)
		for j := 0; j < n; j++ {
			out = append(out, p)
		}
	}
	return out
}

func constSlice(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// spikeTrace builds a washing trace with above-band rinse spikes at the
// given indices.
func spikeTrace(n int, spikes ...int) ([]Phase, []float64) {
	labels := block(PhaseWashing, n)
	smoothed := constSlice(150, n)
	for _, i := range spikes {
		labels[i] = PhaseRinse
		smoothed[i] = 290
	}
	return labels, smoothed
}

func TestRefine_RinseExpansion(t *testing.T) {
	r := NewRefiner(DefaultParams())

	labels, smoothed := spikeTrace(100, 50)
	out := r.Refine(labels, smoothed)

	want := block(PhaseWashing, 20, PhaseRinse, 60, PhaseWashing, 20)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("refined labels mismatch (-want +got):\n%s", diff)
	}
	if labels[20] != PhaseWashing {
		t.Error("input slice was modified")
	}
}

func TestExpandRinse_SpikesGrowSeparateBlocks(t *testing.T) {
	// A relabelled sample sits below the rinse band and never anchors
	// further expansion: two spikes 99 apart grow two bounded blocks that
	// do not merge.
	r := NewRefiner(DefaultParams())

	labels, smoothed := spikeTrace(200, 50, 149)
	out := r.expandRinse(labels, smoothed)

	want := block(
		PhaseWashing, 20, PhaseRinse, 60,
		PhaseWashing, 39, PhaseRinse, 60,
		PhaseWashing, 21,
	)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("expanded labels mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandRinse_SteadyRinseDoesNotExpand(t *testing.T) {
	// A mid-band rinse plateau is not a spike; the washing neighbourhood
	// around it keeps its labels.
	r := NewRefiner(DefaultParams())

	labels := block(PhaseWashing, 20, PhaseRinse, 20, PhaseWashing, 20)
	smoothed := constSlice(250, len(labels))

	out := r.expandRinse(labels, smoothed)
	if diff := cmp.Diff(labels, out); diff != "" {
		t.Errorf("plateau expanded (-want +got):\n%s", diff)
	}
}

func TestExpandRinse_OnlyWashingIsOverwritten(t *testing.T) {
	r := NewRefiner(DefaultParams())

	labels := block(PhaseIdle, 25, PhaseRinse, 1, PhaseSpin, 25)
	smoothed := constSlice(290, len(labels))
	out := r.expandRinse(labels, smoothed)

	if diff := cmp.Diff(labels, out); diff != "" {
		t.Errorf("idle/spin neighbours changed (-want +got):\n%s", diff)
	}
}

func TestRefine_FixedPoint(t *testing.T) {
	r := NewRefiner(DefaultParams())

	labels, smoothed := spikeTrace(100, 50)
	once := r.Refine(labels, smoothed)
	twice := r.Refine(once, smoothed)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second refinement changed labels (-once +twice):\n%s", diff)
	}
}

func TestAbsorbSpinSkirt(t *testing.T) {
	r := NewRefiner(DefaultParams())

	labels := block(PhaseRinse, 15, PhaseSpin, 15)
	// Everything is above the skirt threshold, but only the rinse samples
	// within SpinRadius of a spin sample are absorbed.
	smoothed := constSlice(280, len(labels))

	out := r.absorbSpinSkirt(labels, smoothed)

	want := block(PhaseRinse, 5, PhaseSpin, 25)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("skirt labels mismatch (-want +got):\n%s", diff)
	}
}

func TestAbsorbSpinSkirt_RespectsPowerFloor(t *testing.T) {
	r := NewRefiner(DefaultParams())

	labels := block(PhaseRinse, 5, PhaseSpin, 5)
	smoothed := constSlice(240, len(labels)) // below the skirt threshold

	out := r.absorbSpinSkirt(labels, smoothed)
	if diff := cmp.Diff(labels, out); diff != "" {
		t.Errorf("low-power rinse samples changed (-want +got):\n%s", diff)
	}
}

func TestEnforceMinDwell(t *testing.T) {
	r := NewRefiner(DefaultParams())

	t.Run("short run absorbed into predecessor", func(t *testing.T) {
		labels := block(PhaseWashing, 10, PhaseRinse, 2, PhaseWashing, 10)
		out := r.enforceMinDwell(labels)
		want := block(PhaseWashing, 22)
		if diff := cmp.Diff(want, out); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("chain of short runs collapses", func(t *testing.T) {
		labels := block(PhaseWashing, 10, PhaseRinse, 2, PhaseSpin, 2, PhaseWashing, 10)
		out := r.enforceMinDwell(labels)
		want := block(PhaseWashing, 24)
		if diff := cmp.Diff(want, out); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("idle is exempt", func(t *testing.T) {
		labels := block(PhaseWashing, 10, PhaseIdle, 1, PhaseWashing, 10)
		out := r.enforceMinDwell(labels)
		if diff := cmp.Diff(labels, out); diff != "" {
			t.Errorf("single idle sample absorbed (-want +got):\n%s", diff)
		}
	})

	t.Run("short run at trace start has no predecessor", func(t *testing.T) {
		labels := block(PhaseRinse, 2, PhaseWashing, 20)
		out := r.enforceMinDwell(labels)
		if diff := cmp.Diff(labels, out); diff != "" {
			t.Errorf("leading run changed (-want +got):\n%s", diff)
		}
	})
}

func TestEnforceSpinPrecondition(t *testing.T) {
	r := NewRefiner(DefaultParams())

	t.Run("spin from idle is rejected and cascades", func(t *testing.T) {
		labels := block(PhaseIdle, 20, PhaseSpin, 20)
		smoothed := constSlice(200, len(labels))
		out := r.enforceSpinPrecondition(labels, smoothed)
		want := block(PhaseIdle, 40)
		if diff := cmp.Diff(want, out); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("unambiguous power keeps the spin", func(t *testing.T) {
		labels := block(PhaseIdle, 20, PhaseSpin, 20)
		smoothed := constSlice(350, len(labels))
		out := r.enforceSpinPrecondition(labels, smoothed)
		if diff := cmp.Diff(labels, out); diff != "" {
			t.Errorf("high-power spin rejected (-want +got):\n%s", diff)
		}
	})

	t.Run("spin from washing or rinse is legal", func(t *testing.T) {
		labels := block(PhaseWashing, 10, PhaseSpin, 10, PhaseRinse, 10, PhaseSpin, 10)
		smoothed := constSlice(200, len(labels))
		out := r.enforceSpinPrecondition(labels, smoothed)
		if diff := cmp.Diff(labels, out); diff != "" {
			t.Errorf("legal transition rewritten (-want +got):\n%s", diff)
		}
	})
}

func TestRefine_StableOnCleanTimeline(t *testing.T) {
	r := NewRefiner(DefaultParams())

	labels := block(PhaseIdle, 30, PhaseWashing, 30, PhaseSpin, 30)
	smoothed := append(append(constSlice(5, 30), constSlice(100, 30)...), constSlice(350, 30)...)

	once := r.Refine(labels, smoothed)
	twice := r.Refine(once, smoothed)

	if diff := cmp.Diff(labels, once); diff != "" {
		t.Errorf("clean timeline was rewritten (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("refinement is not stable (-want +got):\n%s", diff)
	}
}

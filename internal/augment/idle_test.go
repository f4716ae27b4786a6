package augment

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/cycle.report/internal/phase"
)

func preparedFixture() ([]string, *phase.LabeledTrace) {
	powers := []float64{5.1, 4.8, 5.3, 120, 130, 125, 5.0, 5.2, 4.9, 5.1}
	lt := &phase.LabeledTrace{}
	stamps := make([]string, len(powers))
	for i, p := range powers {
		lt.Samples = append(lt.Samples, phase.Sample{TimeSeconds: float64(i) * 2, Power: p})
		lt.Smoothed = append(lt.Smoothed, p)
		lt.Features = append(lt.Features, phase.FeatureVector{AvgShort: p, AvgLong: p})
		label := phase.PhaseIdle
		if p > 100 {
			label = phase.PhaseWashing
		}
		lt.Phases = append(lt.Phases, label)
		stamps[i] = "00:00.0"
	}
	return stamps, lt
}

func TestIdleTail_AppendsIdleRows(t *testing.T) {
	stamps, lt := preparedFixture()

	outStamps, out, err := IdleTail(stamps, lt, Options{Seconds: 60, Seed: 1})
	if err != nil {
		t.Fatalf("IdleTail failed: %v", err)
	}

	// 60 seconds at the inferred 2s interval.
	wantAdded := 30
	if out.Len() != lt.Len()+wantAdded {
		t.Fatalf("augmented length = %d, want %d", out.Len(), lt.Len()+wantAdded)
	}
	if len(outStamps) != out.Len() {
		t.Fatalf("timestamp count = %d, want %d", len(outStamps), out.Len())
	}

	last := lt.Samples[lt.Len()-1].TimeSeconds
	for i := lt.Len(); i < out.Len(); i++ {
		if out.Phases[i] != phase.PhaseIdle {
			t.Errorf("appended row %d has phase %s, want IDLE", i, out.Phases[i])
		}
		wantT := last + float64(i-lt.Len()+1)*2
		if math.Abs(out.Samples[i].TimeSeconds-wantT) > 1e-9 {
			t.Errorf("appended row %d time = %v, want %v", i, out.Samples[i].TimeSeconds, wantT)
		}
		// Power is noise around the trace's own idle level, nowhere near
		// the washing band.
		if out.Samples[i].Power < 0 || out.Samples[i].Power > 15 {
			t.Errorf("appended row %d power = %v, want near 5W", i, out.Samples[i].Power)
		}
		if out.Features[i].Regularity != 1 || out.Features[i].Stability != 1 {
			t.Errorf("appended row %d features = %+v, want flat-signal values", i, out.Features[i])
		}
		if outStamps[i] == "" {
			t.Errorf("appended row %d has no timestamp", i)
		}
	}
}

func TestIdleTail_InputUnmodified(t *testing.T) {
	stamps, lt := preparedFixture()
	before := lt.PhaseCounts()

	_, _, err := IdleTail(stamps, lt, Options{Seconds: 60, Seed: 1})
	if err != nil {
		t.Fatalf("IdleTail failed: %v", err)
	}
	if diff := cmp.Diff(before, lt.PhaseCounts()); diff != "" {
		t.Errorf("input trace modified (-want +got):\n%s", diff)
	}
	if len(lt.Samples) != 10 {
		t.Errorf("input length changed to %d", len(lt.Samples))
	}
}

func TestIdleTail_SeedDeterminism(t *testing.T) {
	stamps, lt := preparedFixture()

	_, first, err := IdleTail(stamps, lt, Options{Seconds: 60, Seed: 7})
	if err != nil {
		t.Fatalf("first IdleTail failed: %v", err)
	}
	_, second, err := IdleTail(stamps, lt, Options{Seconds: 60, Seed: 7})
	if err != nil {
		t.Fatalf("second IdleTail failed: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same seed produced different tails (-first +second):\n%s", diff)
	}

	_, other, err := IdleTail(stamps, lt, Options{Seconds: 60, Seed: 8})
	if err != nil {
		t.Fatalf("reseeded IdleTail failed: %v", err)
	}
	if cmp.Equal(first, other) {
		t.Error("different seeds produced identical tails")
	}
}

func TestIdleTail_NoIdleRowsFallsBackToLowDecile(t *testing.T) {
	lt := &phase.LabeledTrace{}
	var stamps []string
	for i := 0; i < 20; i++ {
		p := 100 + float64(i)
		lt.Samples = append(lt.Samples, phase.Sample{TimeSeconds: float64(i), Power: p})
		lt.Smoothed = append(lt.Smoothed, p)
		lt.Features = append(lt.Features, phase.FeatureVector{})
		lt.Phases = append(lt.Phases, phase.PhaseWashing)
		stamps = append(stamps, "00:00.0")
	}

	_, out, err := IdleTail(stamps, lt, Options{Seconds: 10, Seed: 1})
	if err != nil {
		t.Fatalf("IdleTail failed: %v", err)
	}
	for i := lt.Len(); i < out.Len(); i++ {
		if out.Samples[i].Power > 110 {
			t.Errorf("fallback idle power %v is not drawn from the low decile", out.Samples[i].Power)
		}
	}
}

func TestIdleTail_Errors(t *testing.T) {
	stamps, lt := preparedFixture()

	if _, _, err := IdleTail(stamps, lt, Options{Seconds: 0}); err == nil {
		t.Error("accepted a zero-length tail")
	}
	if _, _, err := IdleTail(stamps, lt, Options{Seconds: 0.1}); err == nil {
		t.Error("accepted a tail shorter than one sampling interval")
	}

	single := &phase.LabeledTrace{
		Samples:  []phase.Sample{{TimeSeconds: 0, Power: 5}},
		Smoothed: []float64{5},
		Features: make([]phase.FeatureVector, 1),
		Phases:   []phase.Phase{phase.PhaseIdle},
	}
	if _, _, err := IdleTail([]string{"00:00.0"}, single, Options{Seconds: 60}); err == nil {
		t.Error("accepted a trace too short to infer the sampling interval")
	}
}

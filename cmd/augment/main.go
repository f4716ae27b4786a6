// Command augment appends synthetic idle samples to a prepared table so the
// IDLE class is not underrepresented in training. The idle power level is
// learned from the trace itself.
package main

import (
	"flag"
	"log"

	"github.com/banshee-data/cycle.report/internal/augment"
	"github.com/banshee-data/cycle.report/internal/powerlog"
)

var (
	input   = flag.String("input", "power_log_prepared.csv", "Prepared table CSV")
	output  = flag.String("output", "power_log_with_extra_idle.csv", "Augmented table output path")
	seconds = flag.Float64("seconds", 600, "Duration of idle tail to append")
	seed    = flag.Uint64("seed", 1, "RNG seed for the synthetic tail")
)

func main() {
	flag.Parse()

	timestamps, labeled, err := powerlog.LoadPrepared(*input)
	if err != nil {
		log.Fatalf("failed to load prepared table: %v", err)
	}

	outStamps, augmented, err := augment.IdleTail(timestamps, labeled, augment.Options{
		Seconds: *seconds,
		Seed:    *seed,
	})
	if err != nil {
		log.Fatalf("augmentation failed: %v", err)
	}

	if err := powerlog.SavePrepared(*output, outStamps, augmented); err != nil {
		log.Fatalf("failed to save augmented table: %v", err)
	}
	log.Printf("Appended %d idle rows: %d -> %d samples, saved to %s",
		augmented.Len()-labeled.Len(), labeled.Len(), augmented.Len(), *output)
}

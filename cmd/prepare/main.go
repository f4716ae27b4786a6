// Command prepare runs the full segmentation pipeline over a raw power log:
// Savitzky-Golay smoothing, feature extraction, rule-based labeling and
// temporal refinement. It writes the prepared feature/label table plus its
// metadata record, and can optionally store the run in sqlite and render a
// chart report.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/cycle.report/internal/config"
	"github.com/banshee-data/cycle.report/internal/db"
	"github.com/banshee-data/cycle.report/internal/phase"
	"github.com/banshee-data/cycle.report/internal/powerlog"
	"github.com/banshee-data/cycle.report/internal/report"
)

var (
	input      = flag.String("input", "", "Raw power log CSV (required)")
	output     = flag.String("output", "power_log_prepared.csv", "Prepared table output path")
	configPath = flag.String("config", "", "Optional tuning config JSON")
	dbPath     = flag.String("db", "", "Optional sqlite database to store the run in")
	reportPath = flag.String("report", "", "Optional chart output (.html or .png)")
)

func main() {
	flag.Parse()

	if *input == "" {
		log.Fatal("-input is required")
	}

	params := phase.DefaultParams()
	if *configPath != "" {
		cfg, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		params = cfg.Params()
	}

	segmenter, err := phase.NewSegmenter(params)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	trace, err := powerlog.Load(*input)
	if err != nil {
		log.Fatalf("failed to load power log: %v", err)
	}
	minPower, maxPower := trace.PowerRange()
	log.Printf("Loaded %d samples from %s (%.1f min, %.1fW-%.1fW)",
		len(trace.Samples), *input,
		trace.Samples[len(trace.Samples)-1].TimeSeconds/60, minPower, maxPower)

	labeled, err := segmenter.Run(trace.Samples)
	if err != nil {
		log.Fatalf("segmentation failed: %v", err)
	}

	raw := make([]float64, labeled.Len())
	for i, s := range labeled.Samples {
		raw[i] = s.Power
	}
	log.Printf("Smoothing complete (window=%d poly=%d, noise reduction %.1f%%)",
		params.SmoothingWindow, params.SmoothingOrder, phase.NoiseReduction(raw, labeled.Smoothed))

	for _, p := range phase.Phases {
		count := labeled.PhaseCounts()[p]
		log.Printf("  %-8s %5d samples (%5.1f%%)", p, count,
			float64(count)/float64(labeled.Len())*100)
	}

	if err := powerlog.SavePrepared(*output, trace.Timestamps, labeled); err != nil {
		log.Fatalf("failed to save prepared table: %v", err)
	}
	meta := powerlog.BuildMetadata(labeled, params)
	metaPath := powerlog.MetadataPath(*output)
	if err := powerlog.WriteMetadata(metaPath, meta); err != nil {
		log.Fatalf("failed to write metadata: %v", err)
	}
	log.Printf("Saved %d rows to %s (metadata: %s)", labeled.Len(), *output, metaPath)

	if *dbPath != "" {
		store, err := db.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer store.Close()

		run := db.Run{
			RunID:           uuid.NewString(),
			Source:          *input,
			CreatedAt:       time.Now().UTC(),
			Samples:         labeled.Len(),
			DurationSeconds: labeled.Duration(),
			SmoothingWindow: params.SmoothingWindow,
			SmoothingOrder:  params.SmoothingOrder,
			PhaseCounts:     labeled.PhaseCounts(),
		}
		if err := store.RecordRun(run, labeled); err != nil {
			log.Fatalf("failed to store run: %v", err)
		}
		log.Printf("Stored run %s in %s", run.RunID, *dbPath)
	}

	if *reportPath != "" {
		if err := report.Render(*reportPath, labeled, "Cycle phases: "+*input); err != nil {
			log.Fatalf("failed to render report: %v", err)
		}
		log.Printf("Rendered report to %s", *reportPath)
	}
}

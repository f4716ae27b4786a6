// Command train fits a random-forest phase classifier on a prepared table.
// The heavy lifting is golearn's; this command only shapes the prepared
// table into a feature/label view, runs the fit, and records the metrics.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/evaluation"

	"github.com/banshee-data/cycle.report/internal/phase"
	"github.com/banshee-data/cycle.report/internal/powerlog"
)

var (
	input     = flag.String("input", "power_log_prepared.csv", "Prepared table CSV")
	metaOut   = flag.String("meta", "random_forest_metadata.json", "Training metadata output path")
	trees     = flag.Int("trees", 200, "Number of trees in the forest")
	split     = flag.Int("split-features", 4, "Features sampled per split")
	testShare = flag.Float64("test", 0.2, "Held-out test fraction")
)

// trainingMetadata records what was fitted and how well it did.
type trainingMetadata struct {
	ModelType       string    `json:"model_type"`
	Trees           int       `json:"trees"`
	FeaturesPerTree int       `json:"features_per_split"`
	FeatureColumns  []string  `json:"feature_columns"`
	TrainSamples    int       `json:"train_samples"`
	TestSamples     int       `json:"test_samples"`
	Accuracy        float64   `json:"accuracy"`
	TrainedAt       time.Time `json:"trained_at"`
}

func main() {
	flag.Parse()

	_, labeled, err := powerlog.LoadPrepared(*input)
	if err != nil {
		log.Fatalf("failed to load prepared table: %v", err)
	}
	log.Printf("Loaded %d samples with %d features from %s",
		labeled.Len(), len(phase.FeatureColumns()), *input)

	viewPath, err := writeTrainingView(labeled)
	if err != nil {
		log.Fatalf("failed to build training view: %v", err)
	}
	defer os.Remove(viewPath)

	instances, err := base.ParseCSVToInstances(viewPath, true)
	if err != nil {
		log.Fatalf("failed to parse training view: %v", err)
	}

	trainData, testData := base.InstancesTrainTestSplit(instances, *testShare)

	forest := ensemble.NewRandomForest(*trees, *split)
	log.Printf("Training random forest (%d trees, %d features per split)...", *trees, *split)
	if err := forest.Fit(trainData); err != nil {
		log.Fatalf("training failed: %v", err)
	}

	predictions, err := forest.Predict(testData)
	if err != nil {
		log.Fatalf("prediction failed: %v", err)
	}

	confusion, err := evaluation.GetConfusionMatrix(testData, predictions)
	if err != nil {
		log.Fatalf("failed to compute confusion matrix: %v", err)
	}
	accuracy := evaluation.GetAccuracy(confusion)

	log.Printf("Test accuracy: %.2f%%", accuracy*100)
	fmt.Println(evaluation.GetSummary(confusion))

	_, trainRows := trainData.Size()
	_, testRows := testData.Size()
	meta := trainingMetadata{
		ModelType:       "RandomForest",
		Trees:           *trees,
		FeaturesPerTree: *split,
		FeatureColumns:  phase.FeatureColumns(),
		TrainSamples:    trainRows,
		TestSamples:     testRows,
		Accuracy:        accuracy,
		TrainedAt:       time.Now().UTC(),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal training metadata: %v", err)
	}
	if err := os.WriteFile(*metaOut, data, 0o644); err != nil {
		log.Fatalf("failed to write training metadata: %v", err)
	}
	log.Printf("Saved training metadata to %s", *metaOut)
}

// writeTrainingView writes a temporary CSV with only the feature columns
// and the phase label, the shape golearn expects (class attribute last).
func writeTrainingView(lt *phase.LabeledTrace) (string, error) {
	f, err := os.CreateTemp("", "training_view_*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create training view: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, phase.FeatureColumns()...), "phase")
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write view header: %w", err)
	}
	for i := 0; i < lt.Len(); i++ {
		row := make([]string, 0, len(header))
		for _, v := range lt.Features[i].Values() {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		row = append(row, string(lt.Phases[i]))
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write view row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush training view: %w", err)
	}
	return filepath.Clean(f.Name()), nil
}

package powerlog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/cycle.report/internal/phase"
)

// Metadata is the companion record written alongside the prepared table.
// It is the contract the training collaborator relies on to know which
// columns are features versus label versus bookkeeping.
type Metadata struct {
	Samples         int            `json:"samples"`
	DurationSeconds float64        `json:"duration_seconds"`
	Features        []string       `json:"features"`
	Phases          map[string]int `json:"phases"`
	Smoothing       SmoothingMeta  `json:"smoothing"`
	CreatedAt       time.Time      `json:"created_at"`
}

// SmoothingMeta records the signal-conditioner configuration of the run.
type SmoothingMeta struct {
	Method       string `json:"method"`
	WindowLength int    `json:"window_length"`
	PolyOrder    int    `json:"polyorder"`
}

// BuildMetadata summarises a labeled trace and its smoothing configuration.
func BuildMetadata(lt *phase.LabeledTrace, params phase.Params) Metadata {
	phases := make(map[string]int, len(phase.Phases))
	for p, count := range lt.PhaseCounts() {
		phases[string(p)] = count
	}
	return Metadata{
		Samples:         lt.Len(),
		DurationSeconds: lt.Duration(),
		Features:        phase.FeatureColumns(),
		Phases:          phases,
		Smoothing: SmoothingMeta{
			Method:       "savitzky_golay",
			WindowLength: params.SmoothingWindow,
			PolyOrder:    params.SmoothingOrder,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// preparedHeader is the fixed column layout of the prepared table.
func preparedHeader() []string {
	header := []string{"timestamp", "time_seconds", "power", "power_smooth"}
	header = append(header, phase.FeatureColumns()...)
	return append(header, "phase")
}

// SavePrepared writes the prepared feature/label table. Timestamps may be
// empty, in which case an elapsed mm:ss.t clock is synthesised from the
// time axis so the column is always populated.
func SavePrepared(path string, timestamps []string, lt *phase.LabeledTrace) error {
	if len(timestamps) != 0 && len(timestamps) != lt.Len() {
		return fmt.Errorf("timestamp count %d does not match sample count %d", len(timestamps), lt.Len())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create prepared table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(preparedHeader()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < lt.Len(); i++ {
		stamp := ""
		if len(timestamps) != 0 {
			stamp = timestamps[i]
		}
		if stamp == "" {
			stamp = FormatClock(lt.Samples[i].TimeSeconds)
		}

		row := []string{
			stamp,
			formatFloat(lt.Samples[i].TimeSeconds),
			formatFloat(lt.Samples[i].Power),
			formatFloat(lt.Smoothed[i]),
		}
		for _, v := range lt.Features[i].Values() {
			row = append(row, formatFloat(v))
		}
		row = append(row, string(lt.Phases[i]))

		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush prepared table: %w", err)
	}
	return nil
}

// LoadPrepared reads a prepared table back into memory. The header must
// match the layout SavePrepared writes.
func LoadPrepared(path string) ([]string, *phase.LabeledTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open prepared table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read prepared table: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("prepared table %s has no data rows", path)
	}

	want := preparedHeader()
	if len(records[0]) != len(want) {
		return nil, nil, fmt.Errorf("prepared table has %d columns, want %d", len(records[0]), len(want))
	}
	for i, col := range records[0] {
		if col != want[i] {
			return nil, nil, fmt.Errorf("prepared table column %d is %q, want %q", i, col, want[i])
		}
	}

	n := len(records) - 1
	timestamps := make([]string, 0, n)
	lt := &phase.LabeledTrace{
		Samples:  make([]phase.Sample, 0, n),
		Smoothed: make([]float64, 0, n),
		Features: make([]phase.FeatureVector, 0, n),
		Phases:   make([]phase.Phase, 0, n),
	}

	for rowNum, row := range records[1:] {
		values := make([]float64, 0, len(row)-2)
		for _, cell := range row[1 : len(row)-1] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: failed to parse %q: %w", rowNum+2, cell, err)
			}
			values = append(values, v)
		}

		label := phase.Phase(row[len(row)-1])
		if !validPhase(label) {
			return nil, nil, fmt.Errorf("row %d: unknown phase %q", rowNum+2, label)
		}

		timestamps = append(timestamps, row[0])
		lt.Samples = append(lt.Samples, phase.Sample{TimeSeconds: values[0], Power: values[1]})
		lt.Smoothed = append(lt.Smoothed, values[2])
		lt.Features = append(lt.Features, featureVectorFromValues(values[3:]))
		lt.Phases = append(lt.Phases, label)
	}

	return timestamps, lt, nil
}

// WriteMetadata writes the companion metadata record as indented JSON.
func WriteMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// MetadataPath derives the metadata filename from the prepared table path.
func MetadataPath(preparedPath string) string {
	if strings.HasSuffix(preparedPath, ".csv") {
		return strings.TrimSuffix(preparedPath, ".csv") + "_metadata.json"
	}
	return preparedPath + "_metadata.json"
}

// FormatClock renders elapsed seconds as "mm:ss.t".
func FormatClock(seconds float64) string {
	minutes := int(seconds) / 60
	rest := seconds - float64(minutes*60)
	return fmt.Sprintf("%02d:%04.1f", minutes, rest)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func validPhase(p phase.Phase) bool {
	for _, known := range phase.Phases {
		if p == known {
			return true
		}
	}
	return false
}

func featureVectorFromValues(v []float64) phase.FeatureVector {
	return phase.FeatureVector{
		AvgShort:       v[0],
		AvgLong:        v[1],
		StdShort:       v[2],
		StdLong:        v[3],
		MinShort:       v[4],
		MaxShort:       v[5],
		RangeShort:     v[6],
		Derivative:     v[7],
		TimeInRange:    v[8],
		Oscillation:    v[9],
		PeakCount:      int(v[10]),
		Regularity:     v[11],
		HighPowerRatio: v[12],
		Stability:      v[13],
		MAD:            v[14],
	}
}

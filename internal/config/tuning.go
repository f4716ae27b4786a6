// Package config loads segmentation tuning parameters from a JSON file.
// Fields omitted from the file keep the tuned defaults, so partial configs
// are safe; this is how per-appliance recalibration is deployed without
// code changes.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/cycle.report/internal/phase"
)

// TuningConfig mirrors phase.Params with optional fields. A nil field means
// "use the default"; the JSON schema therefore only ever states overrides.
type TuningConfig struct {
	// Savitzky-Golay smoothing
	SmoothingWindow *int `json:"smoothing_window,omitempty"`
	SmoothingOrder  *int `json:"smoothing_order,omitempty"`

	// Rolling feature windows
	ShortWindow *int `json:"short_window,omitempty"`
	LongWindow  *int `json:"long_window,omitempty"`

	// Classifier thresholds
	IdleMaxW            *float64 `json:"idle_max_w,omitempty"`
	WashingMaxW         *float64 `json:"washing_max_w,omitempty"`
	RinseBandTopW       *float64 `json:"rinse_band_top_w,omitempty"`
	SpinW               *float64 `json:"spin_w,omitempty"`
	SpinSustainedAvgW   *float64 `json:"spin_sustained_avg_w,omitempty"`
	OscillationBandTopW *float64 `json:"oscillation_band_top_w,omitempty"`
	OscillationMin      *float64 `json:"oscillation_min,omitempty"`
	PeakCountMin        *int     `json:"peak_count_min,omitempty"`
	InRangeToleranceW   *float64 `json:"in_range_tolerance_w,omitempty"`

	// Temporal refinement
	RinseRadius *int     `json:"rinse_radius,omitempty"`
	SpinRadius  *int     `json:"spin_radius,omitempty"`
	SpinSkirtW  *float64 `json:"spin_skirt_w,omitempty"`
	MinDwell    *int     `json:"min_dwell,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the size cap; the resulting
// parameter set is validated before being returned.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Params().Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Params materialises the tuning config into a phase.Params, starting from
// the defaults and applying every set override.
func (c *TuningConfig) Params() phase.Params {
	p := phase.DefaultParams()

	if c.SmoothingWindow != nil {
		p.SmoothingWindow = *c.SmoothingWindow
	}
	if c.SmoothingOrder != nil {
		p.SmoothingOrder = *c.SmoothingOrder
	}
	if c.ShortWindow != nil {
		p.ShortWindow = *c.ShortWindow
	}
	if c.LongWindow != nil {
		p.LongWindow = *c.LongWindow
	}
	if c.IdleMaxW != nil {
		p.IdleMaxW = *c.IdleMaxW
	}
	if c.WashingMaxW != nil {
		p.WashingMaxW = *c.WashingMaxW
	}
	if c.RinseBandTopW != nil {
		p.RinseBandTopW = *c.RinseBandTopW
	}
	if c.SpinW != nil {
		p.SpinW = *c.SpinW
	}
	if c.SpinSustainedAvgW != nil {
		p.SpinSustainedAvgW = *c.SpinSustainedAvgW
	}
	if c.OscillationBandTopW != nil {
		p.OscillationBandTopW = *c.OscillationBandTopW
	}
	if c.OscillationMin != nil {
		p.OscillationMin = *c.OscillationMin
	}
	if c.PeakCountMin != nil {
		p.PeakCountMin = *c.PeakCountMin
	}
	if c.InRangeToleranceW != nil {
		p.InRangeToleranceW = *c.InRangeToleranceW
	}
	if c.RinseRadius != nil {
		p.RinseRadius = *c.RinseRadius
	}
	if c.SpinRadius != nil {
		p.SpinRadius = *c.SpinRadius
	}
	if c.SpinSkirtW != nil {
		p.SpinSkirtW = *c.SpinSkirtW
	}
	if c.MinDwell != nil {
		p.MinDwell = *c.MinDwell
	}

	return p
}

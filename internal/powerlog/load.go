// Package powerlog reads raw appliance power logs and writes the prepared
// feature/label table consumed by classifier training.
package powerlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/cycle.report/internal/phase"
)

// Trace is a loaded power log: the parsed samples on an elapsed-seconds
// axis plus the original timestamp strings for round-tripping into the
// prepared table.
type Trace struct {
	Source     string
	Timestamps []string
	Samples    []phase.Sample
}

// timestampLayouts are the absolute formats accepted for the timestamp
// column, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Load reads a raw power log CSV. The file needs a power column ("power" or
// "power_w") and a time axis: either a relative "time_seconds" column used
// as-is, or a "timestamp" column converted to elapsed seconds anchored at
// the first sample. Timestamps may be absolute datetimes or elapsed clock
// readings like "46:07.7".
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open power log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read power log CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("power log %s has no data rows", path)
	}

	header := records[0]
	powerIdx := columnIndex(header, "power", "power_w")
	if powerIdx < 0 {
		return nil, fmt.Errorf("power log %s has no power or power_w column", path)
	}
	secondsIdx := columnIndex(header, "time_seconds")
	timestampIdx := columnIndex(header, "timestamp")
	if secondsIdx < 0 && timestampIdx < 0 {
		return nil, fmt.Errorf("power log %s has no time_seconds or timestamp column", path)
	}

	tr := &Trace{
		Source:     path,
		Timestamps: make([]string, 0, len(records)-1),
		Samples:    make([]phase.Sample, 0, len(records)-1),
	}

	var anchor float64
	for rowNum, row := range records[1:] {
		power, err := strconv.ParseFloat(row[powerIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse power %q: %w", rowNum+2, row[powerIdx], err)
		}

		var seconds float64
		var stamp string
		if secondsIdx >= 0 {
			seconds, err = strconv.ParseFloat(row[secondsIdx], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: failed to parse time_seconds %q: %w", rowNum+2, row[secondsIdx], err)
			}
			if timestampIdx >= 0 {
				stamp = row[timestampIdx]
			}
		} else {
			stamp = row[timestampIdx]
			seconds, err = parseTimestamp(stamp)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum+2, err)
			}
			if rowNum == 0 {
				anchor = seconds
			}
			seconds -= anchor
		}

		tr.Timestamps = append(tr.Timestamps, stamp)
		tr.Samples = append(tr.Samples, phase.Sample{TimeSeconds: seconds, Power: power})
	}

	return tr, nil
}

// PowerRange returns the minimum and maximum raw power in the trace.
func (tr *Trace) PowerRange() (min, max float64) {
	if len(tr.Samples) == 0 {
		return 0, 0
	}
	min, max = tr.Samples[0].Power, tr.Samples[0].Power
	for _, s := range tr.Samples[1:] {
		if s.Power < min {
			min = s.Power
		}
		if s.Power > max {
			max = s.Power
		}
	}
	return min, max
}

// parseTimestamp converts a timestamp cell to absolute seconds. Absolute
// datetime layouts take precedence; otherwise the cell is read as an
// elapsed clock value ("mm:ss.t" or "hh:mm:ss").
func parseTimestamp(s string) (float64, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixNano()) / 1e9, nil
		}
	}
	if seconds, ok := parseClock(s); ok {
		return seconds, nil
	}
	return 0, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseClock reads "mm:ss.t" or "hh:mm:ss.t" elapsed clock strings.
func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	var seconds float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		seconds = seconds*60 + v
	}
	return seconds, true
}

func columnIndex(header []string, names ...string) int {
	for i, col := range header {
		col = strings.TrimSpace(strings.ToLower(col))
		for _, name := range names {
			if col == name {
				return i
			}
		}
	}
	return -1
}

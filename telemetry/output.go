package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/kkingfung/ecosim/config"
)

// OutputManager handles structured run output: windowed stats and
// metrics snapshots as CSV, plus a config snapshot for reproducibility.
type OutputManager struct {
	dir         string
	statsFile   *os.File
	metricsFile *os.File

	statsHeaderWritten   bool
	metricsHeaderWritten bool
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled); all methods are
// nil-safe.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	f, err = os.Create(filepath.Join(dir, "metrics.csv"))
	if err != nil {
		om.statsFile.Close()
		return nil, fmt.Errorf("creating metrics.csv: %w", err)
	}
	om.metricsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends a window stats record to stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}
	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WriteMetrics appends an aggregate metrics record to metrics.csv.
func (om *OutputManager) WriteMetrics(m Metrics) error {
	if om == nil {
		return nil
	}

	records := []Metrics{m}
	if !om.metricsHeaderWritten {
		if err := gocsv.Marshal(records, om.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		om.metricsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.metricsFile); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if om.statsFile != nil {
		if err := om.statsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.metricsFile != nil {
		if err := om.metricsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

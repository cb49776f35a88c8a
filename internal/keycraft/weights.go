package keycraft

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Weights holds per-metric weight overrides parsed from a config file and/or
// a CLI string, keyed by the metric's config name (as listed by
// KnownMetricNames, e.g. "key_cost").
type Weights struct {
	weights map[string]float64
}

// NewWeights creates an empty Weights structure ready to be populated.
func NewWeights() *Weights {
	return &Weights{weights: make(map[string]float64)}
}

// NewWeightsFromString parses a comma-separated `metric=weight` string into a
// Weights instance, validated against validMetrics.
func NewWeightsFromString(weightsStr string, validMetrics []string) (*Weights, error) {
	w := NewWeights()
	if err := w.AddWeightsFromString(weightsStr, validMetrics); err != nil {
		return nil, fmt.Errorf("could not add weights from string: %w", err)
	}
	return w, nil
}

// NewWeightsFromParams constructs weights from an optional file and CLI
// string, both validated against validMetrics.
func NewWeightsFromParams(path, weightsStr string, validMetrics []string) (*Weights, error) {
	weights := NewWeights()

	if path != "" {
		if err := weights.AddWeightsFromFile(path, validMetrics); err != nil {
			return nil, fmt.Errorf("could not add weights from file: %w", err)
		}
	}

	if err := weights.AddWeightsFromString(weightsStr, validMetrics); err != nil {
		return nil, fmt.Errorf("could not parse weights from string: %w", err)
	}

	return weights, nil
}

// AddWeightsFromFile reads weights from a file (ignoring comments/blanks) and applies them to the receiver.
func (w *Weights) AddWeightsFromFile(path string, validMetrics []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read weights file %q: %w", path, err)
	}

	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") && line != "" {
			if err := w.AddWeightsFromString(line, validMetrics); err != nil {
				return fmt.Errorf("could not parse weights from file %q: %w", path, err)
			}
		}
	}
	return nil
}

// AddWeightsFromString parses and applies a comma-separated `metric=weight`
// string, validated against validMetrics. If weightsStr is empty, the
// receiver is left unchanged.
func (w *Weights) AddWeightsFromString(weightsStr string, validMetrics []string) error {
	if weightsStr == "" {
		return nil
	}

	validSet := make(map[string]bool, len(validMetrics))
	for _, m := range validMetrics {
		validSet[m] = true
	}

	for pair := range strings.SplitSeq(weightsStr, ",") {
		parts := strings.Split(pair, "=")
		if len(parts) != 2 {
			return fmt.Errorf("invalid weights format: %s", pair)
		}
		metric := strings.TrimSpace(parts[0])

		if !validSet[metric] {
			return fmt.Errorf("invalid metric %q; see the metric registry for valid names", metric)
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid weight value for metric %s", metric)
		}
		w.weights[metric] = weight
	}

	return nil
}

// Get returns the weight for a metric or 0 if not present.
func (w *Weights) Get(metric string) float64 {
	if val, ok := w.weights[metric]; ok {
		return val
	}
	return 0.0
}

package keycraft

import (
	"os"
	"path/filepath"
	"testing"
)

var testMetrics = []string{"key_cost", "hand_disbalance", "finger_balance"}

func TestNewWeights(t *testing.T) {
	weights := NewWeights()
	if weights == nil {
		t.Fatal("NewWeights() returned nil")
	}
	if weights.weights == nil {
		t.Error("weights map should be initialized")
	}
}

func TestNewWeightsFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		checks  map[string]float64
	}{
		{
			name:   "single metric",
			input:  "key_cost=2.0",
			checks: map[string]float64{"key_cost": 2.0},
		},
		{
			name:  "multiple metrics",
			input: "key_cost=2.0,hand_disbalance=5.0",
			checks: map[string]float64{
				"key_cost":        2.0,
				"hand_disbalance": 5.0,
			},
		},
		{
			name:  "metrics with spaces",
			input: " key_cost = 2.0 , hand_disbalance = 5.0 ",
			checks: map[string]float64{
				"key_cost":        2.0,
				"hand_disbalance": 5.0,
			},
		},
		{
			name:    "unknown metric",
			input:   "not_a_metric=1.0",
			wantErr: true,
		},
		{
			name:    "malformed pair",
			input:   "key_cost",
			wantErr: true,
		},
		{
			name:    "non-numeric weight",
			input:   "key_cost=abc",
			wantErr: true,
		},
		{
			name:   "empty string is a no-op",
			input:  "",
			checks: map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWeightsFromString(tt.input, testMetrics)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for input %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for metric, want := range tt.checks {
				if got := w.Get(metric); got != want {
					t.Errorf("Get(%q) = %v, want %v", metric, got, want)
				}
			}
		})
	}
}

func TestWeightsGetMissingMetricIsZero(t *testing.T) {
	w := NewWeights()
	if got := w.Get("key_cost"); got != 0.0 {
		t.Errorf("Get on empty Weights = %v, want 0", got)
	}
}

func TestAddWeightsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.txt")
	content := "# comment line\nkey_cost=3.0\n\nhand_disbalance=1.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write temp weights file: %v", err)
	}

	w := NewWeights()
	if err := w.AddWeightsFromFile(path, testMetrics); err != nil {
		t.Fatalf("AddWeightsFromFile: %v", err)
	}
	if got := w.Get("key_cost"); got != 3.0 {
		t.Errorf("key_cost = %v, want 3.0", got)
	}
	if got := w.Get("hand_disbalance"); got != 1.5 {
		t.Errorf("hand_disbalance = %v, want 1.5", got)
	}
}

func TestNewWeightsFromParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.txt")
	if err := os.WriteFile(path, []byte("key_cost=1.0\n"), 0o644); err != nil {
		t.Fatalf("could not write temp weights file: %v", err)
	}

	// The CLI string overrides the file for the same metric.
	w, err := NewWeightsFromParams(path, "key_cost=9.0", testMetrics)
	if err != nil {
		t.Fatalf("NewWeightsFromParams: %v", err)
	}
	if got := w.Get("key_cost"); got != 9.0 {
		t.Errorf("key_cost = %v, want 9.0 (CLI override)", got)
	}
}

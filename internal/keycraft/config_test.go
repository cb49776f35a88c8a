package keycraft

import (
	"os"
	"path/filepath"
	"testing"
)

const testKeyboardYAML = `
name: test-board
keys:
  - column: 0
    row: 0
    hand: left
    finger: pinky
    cost: 3.0
  - column: 1
    row: 0
    hand: left
    finger: ring
    cost: 1.0
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write temp file %q: %v", name, err)
	}
	return path
}

func TestLoadKeyboardYAMLAndBuild(t *testing.T) {
	path := writeTemp(t, "keyboard.yaml", testKeyboardYAML)

	cfg, err := LoadKeyboardYAML(path)
	if err != nil {
		t.Fatalf("LoadKeyboardYAML: %v", err)
	}
	kb, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if kb.NumKeys() != 2 {
		t.Fatalf("NumKeys() = %d, want 2", kb.NumKeys())
	}
	if kb.Key(0).Hand != Left || kb.Key(0).Finger != Pinky {
		t.Errorf("Key(0) = %+v, want Left/Pinky", kb.Key(0))
	}
}

func TestKeyboardConfigBuildUnknownHand(t *testing.T) {
	cfg := &KeyboardConfig{Keys: []KeyConfig{{Hand: "sideways", Finger: "index"}}}
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected an error for an unknown hand")
	}
}

func TestKeyboardConfigBuildUnknownFinger(t *testing.T) {
	cfg := &KeyboardConfig{Keys: []KeyConfig{{Hand: "left", Finger: "tail"}}}
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected an error for an unknown finger")
	}
}

func TestBaseLayoutConfigBuild(t *testing.T) {
	kb := testKeyboard()
	cfg := &BaseLayoutConfig{
		Keys:        [][]string{{"q"}, {"a"}, {"b"}, {"z"}},
		FixedKeys:   []bool{true, false, false, true},
		FixedLayers: []bool{false},
		LayerCosts:  []float64{0},
	}

	layout, err := cfg.Build(kb)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if layout.Keyboard != kb {
		t.Error("Build did not bind the given Keyboard")
	}
}

func TestBaseLayoutConfigBuildRejectsInvalidUTF8(t *testing.T) {
	kb := testKeyboard()
	cfg := &BaseLayoutConfig{
		Keys:        [][]string{{"q"}, {string([]byte{0xff, 0xfe})}, {"b"}, {"z"}},
		FixedKeys:   []bool{true, false, false, true},
		FixedLayers: []bool{false},
		LayerCosts:  []float64{0},
	}

	if _, err := cfg.Build(kb); err == nil {
		t.Fatal("expected an error for an invalid UTF-8 key symbol")
	}
}

func TestNormalizationConfigBuild(t *testing.T) {
	tests := []struct {
		kind    string
		want    NormalizationKind
		wantErr bool
	}{
		{"fixed", Fixed, false},
		{"", Fixed, false},
		{"weight_found", WeightFound, false},
		{"weight_all", WeightAll, false},
		{"nonsense", 0, true},
	}
	for _, tt := range tests {
		n, err := NormalizationConfig{Kind: tt.kind, Value: 2}.build()
		if tt.wantErr {
			if err == nil {
				t.Errorf("kind %q: expected error", tt.kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("kind %q: unexpected error: %v", tt.kind, err)
		}
		if n.Kind != tt.want {
			t.Errorf("kind %q: got Kind %v, want %v", tt.kind, n.Kind, tt.want)
		}
	}
}

func TestWeightForAppliesOverride(t *testing.T) {
	mc := MetricConfig{Name: "key_cost", Weight: 1.0}

	if got := weightFor(nil, mc); got != 1.0 {
		t.Errorf("weightFor(nil) = %v, want 1.0 (config weight)", got)
	}

	overrides := NewWeights()
	overrides.weights["key_cost"] = 9.0
	if got := weightFor(overrides, mc); got != 9.0 {
		t.Errorf("weightFor(overrides) = %v, want 9.0", got)
	}

	overrides2 := NewWeights()
	if got := weightFor(overrides2, mc); got != 1.0 {
		t.Errorf("weightFor(empty overrides) = %v, want fallback 1.0", got)
	}
}

func TestBuildEvaluatorSmoke(t *testing.T) {
	cfg := &EvaluationParametersConfig{}
	cfg.Metrics.Unigram = []MetricConfig{
		{Name: "key_cost", Weight: 2.0, Normalization: NormalizationConfig{Kind: "fixed", Value: 1}},
	}

	unigrams := NewUnigrams()
	eval, err := BuildEvaluator(cfg, unigrams, NewBigrams(), NewTrigrams(), nil)
	if err != nil {
		t.Fatalf("BuildEvaluator: %v", err)
	}
	if len(eval.UnigramMetrics) != 1 {
		t.Fatalf("expected 1 unigram metric, got %d", len(eval.UnigramMetrics))
	}
	if eval.UnigramMetrics[0].Weight != 2.0 {
		t.Errorf("Weight = %v, want 2.0", eval.UnigramMetrics[0].Weight)
	}
}

func TestBuildEvaluatorUnknownMetricErrors(t *testing.T) {
	cfg := &EvaluationParametersConfig{}
	cfg.Metrics.Unigram = []MetricConfig{{Name: "not_a_metric"}}

	if _, err := BuildEvaluator(cfg, NewUnigrams(), NewBigrams(), NewTrigrams(), nil); err == nil {
		t.Fatal("expected an error for an unknown metric name")
	}
}

func TestKnownMetricNamesNonEmpty(t *testing.T) {
	names := KnownMetricNames()
	if len(names) == 0 {
		t.Fatal("KnownMetricNames() returned an empty list")
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate metric name %q", n)
		}
		seen[n] = true
	}
}

func TestBuildBigramMetricManualBigramPenaltyParsesMatrixPositions(t *testing.T) {
	params := map[string]interface{}{
		"matrix_positions": []interface{}{
			map[string]interface{}{
				"from": map[string]interface{}{"column": 0, "row": 1},
				"to":   map[string]interface{}{"column": 2, "row": 1},
				"cost": 1.5,
			},
		},
	}
	metric, err := buildBigramMetric("manual_bigram_penalty", params)
	if err != nil {
		t.Fatalf("buildBigramMetric: %v", err)
	}
	mbp, ok := metric.(*ManualBigramPenalty)
	if !ok {
		t.Fatalf("got %T, want *ManualBigramPenalty", metric)
	}
	if got := mbp.MatrixPositions[[2]MatrixPosition{{Column: 0, Row: 1}, {Column: 2, Row: 1}}]; got != 1.5 {
		t.Errorf("forward entry = %v, want 1.5", got)
	}
	if got := mbp.MatrixPositions[[2]MatrixPosition{{Column: 2, Row: 1}, {Column: 0, Row: 1}}]; got != 1.5 {
		t.Errorf("reverse entry = %v, want 1.5", got)
	}
}

func TestBuildTrigramMetricTrigramFingerRepeatsDecodesParams(t *testing.T) {
	params := map[string]interface{}{"factor_lateral_movement": 1.7}
	metric, err := buildTrigramMetric("trigram_finger_repeats", params)
	if err != nil {
		t.Fatalf("buildTrigramMetric: %v", err)
	}
	tfr, ok := metric.(*TrigramFingerRepeats)
	if !ok {
		t.Fatalf("got %T, want *TrigramFingerRepeats", metric)
	}
	if tfr.FactorLateralMovement != 1.7 {
		t.Errorf("FactorLateralMovement = %v, want 1.7", tfr.FactorLateralMovement)
	}
}

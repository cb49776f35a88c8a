package keycraft

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// KeyConfig is one physical key's YAML description.
type KeyConfig struct {
	Column        int     `yaml:"column"`
	Row           int     `yaml:"row"`
	Hand          string  `yaml:"hand"`
	Finger        string  `yaml:"finger"`
	Cost          float64 `yaml:"cost"`
	UnbalancingX  float64 `yaml:"unbalancing_x"`
	UnbalancingY  float64 `yaml:"unbalancing_y"`
	SymmetryIndex int     `yaml:"symmetry_index"`
}

// KeyboardConfig is a keyboard geometry template loaded from YAML.
type KeyboardConfig struct {
	Name string      `yaml:"name"`
	Keys []KeyConfig `yaml:"keys"`
}

var handNames = map[string]Hand{"left": Left, "right": Right}
var fingerByName = map[string]Finger{
	"thumb": Thumb, "index": Index, "middle": Middle, "ring": Ring, "pinky": Pinky,
}

// LoadKeyboardYAML reads and parses a keyboard geometry file.
func LoadKeyboardYAML(path string) (*KeyboardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read keyboard file %q: %w", path, err)
	}
	var cfg KeyboardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse keyboard file %q: %w", path, err)
	}
	return &cfg, nil
}

// Build turns a KeyboardConfig into a Keyboard, resolving hand/finger names.
func (c *KeyboardConfig) Build() (*Keyboard, error) {
	keys := make([]Key, len(c.Keys))
	for i, kc := range c.Keys {
		hand, ok := handNames[kc.Hand]
		if !ok {
			return nil, fmt.Errorf("keyboard %q key %d: unknown hand %q", c.Name, i, kc.Hand)
		}
		finger, ok := fingerByName[kc.Finger]
		if !ok {
			return nil, fmt.Errorf("keyboard %q key %d: unknown finger %q", c.Name, i, kc.Finger)
		}
		keys[i] = Key{
			Index:         i,
			Position:      MatrixPosition{Column: kc.Column, Row: kc.Row},
			Hand:          hand,
			Finger:        finger,
			Cost:          kc.Cost,
			UnbalancingX:  kc.UnbalancingX,
			UnbalancingY:  kc.UnbalancingY,
			SymmetryIndex: kc.SymmetryIndex,
		}
	}
	return &Keyboard{Name: c.Name, Keys: keys}, nil
}

// BaseLayoutConfig is a layout template loaded from YAML: the symbols each
// key holds per layer, which keys/layers are fixed, and the modifier table.
type BaseLayoutConfig struct {
	Keys          [][]string          `yaml:"keys"`
	FixedKeys     []bool              `yaml:"fixed_keys"`
	FixedLayers   []bool              `yaml:"fixed_layers"`
	GroupedLayers int                 `yaml:"grouped_layers"`
	Modifiers     []map[string]string `yaml:"modifiers"`
	LayerCosts    []float64           `yaml:"layer_costs"`
}

// LoadBaseLayoutYAML reads and parses a layout template file.
func LoadBaseLayoutYAML(path string) (*BaseLayoutConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read layout template %q: %w", path, err)
	}
	var cfg BaseLayoutConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse layout template %q: %w", path, err)
	}
	return &cfg, nil
}

// Build turns a BaseLayoutConfig into a BaseLayout bound to kb.
func (c *BaseLayoutConfig) Build(kb *Keyboard) (*BaseLayout, error) {
	if err := c.validateKeys(); err != nil {
		return nil, err
	}

	mods := make([]map[Hand][]rune, len(c.Modifiers))
	for layer, byHand := range c.Modifiers {
		m := make(map[Hand][]rune, len(byHand))
		for handName, chars := range byHand {
			hand, ok := handNames[handName]
			if !ok {
				return nil, fmt.Errorf("layout template modifiers[%d]: unknown hand %q", layer, handName)
			}
			m[hand] = []rune(chars)
		}
		mods[layer] = m
	}

	return &BaseLayout{
		Keyboard:      kb,
		Keys:          c.Keys,
		FixedKeys:     c.FixedKeys,
		FixedLayers:   c.FixedLayers,
		GroupedLayers: c.GroupedLayers,
		Modifiers:     mods,
		LayerCosts:    c.LayerCosts,
	}, nil
}

// validateKeys checks that every non-empty key/layer symbol string in the
// template is valid UTF-8, catching a mis-encoded template file before it
// reaches the generator.
func (c *BaseLayoutConfig) validateKeys() error {
	for ki, perLayer := range c.Keys {
		for layer, s := range perLayer {
			if govalidator.IsNull(s) {
				continue
			}
			if !utf8.ValidString(s) {
				return fmt.Errorf("layout template key %d layer %d: %q is not valid UTF-8", ki, layer, s)
			}
		}
	}
	return nil
}

// MetricConfig is one metric's YAML entry: which metric, its weight and
// normalization, and a free-form parameter block decoded per metric name.
type MetricConfig struct {
	Name          string                 `yaml:"name" mapstructure:"name"`
	Weight        float64                `yaml:"weight" mapstructure:"weight"`
	Normalization NormalizationConfig    `yaml:"normalization" mapstructure:"normalization"`
	Parameters    map[string]interface{} `yaml:"parameters" mapstructure:"parameters"`
}

// NormalizationConfig mirrors Normalization for YAML/mapstructure decoding.
type NormalizationConfig struct {
	Kind  string  `yaml:"kind" mapstructure:"kind"`
	Value float64 `yaml:"value" mapstructure:"value"`
}

func (n NormalizationConfig) build() (Normalization, error) {
	switch n.Kind {
	case "fixed", "":
		return Normalization{Kind: Fixed, Value: n.Value}, nil
	case "weight_found":
		return Normalization{Kind: WeightFound, Value: n.Value}, nil
	case "weight_all":
		return Normalization{Kind: WeightAll, Value: n.Value}, nil
	default:
		return Normalization{}, fmt.Errorf("unknown normalization kind %q", n.Kind)
	}
}

// EvaluationParametersConfig is the full evaluation configuration: ngram
// mapper tunables plus the weighted metric sets for all four families.
type EvaluationParametersConfig struct {
	NgramMapper struct {
		SplitModifiers struct {
			Enabled          bool    `yaml:"enabled"`
			SameKeyModFactor float64 `yaml:"same_key_mod_factor"`
		} `yaml:"split_modifiers"`
		SecondaryBigramsFromTrigrams struct {
			Enabled              bool    `yaml:"enabled"`
			FactorNoHandswitch   float64 `yaml:"factor_no_handswitch"`
			FactorHandswitch     float64 `yaml:"factor_handswitch"`
			ExcludeModifierFirst bool    `yaml:"exclude_modifier_first"`
		} `yaml:"secondary_bigrams_from_trigrams"`
		IncreaseCommonBigrams struct {
			Enabled              bool    `yaml:"enabled"`
			CriticalFraction     float64 `yaml:"critical_fraction"`
			Factor               float64 `yaml:"factor"`
			TotalWeightThreshold float64 `yaml:"total_weight_threshold"`
		} `yaml:"increase_common_bigrams"`
		ExcludeLineBreaks bool `yaml:"exclude_line_breaks"`
	} `yaml:"ngram_mapper"`

	Metrics struct {
		Layout  []MetricConfig `yaml:"layout"`
		Unigram []MetricConfig `yaml:"unigram"`
		Bigram  []MetricConfig `yaml:"bigram"`
		Trigram []MetricConfig `yaml:"trigram"`
	} `yaml:"metrics"`
}

// LoadEvaluationParametersYAML reads and parses an evaluation parameters file.
func LoadEvaluationParametersYAML(path string) (*EvaluationParametersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read evaluation parameters %q: %w", path, err)
	}
	var cfg EvaluationParametersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse evaluation parameters %q: %w", path, err)
	}
	return &cfg, nil
}

func (c *EvaluationParametersConfig) ngramMapperConfig() NgramMapperConfig {
	return NgramMapperConfig{
		SplitModifiers: SplitModifiersConfig{
			Enabled:          c.NgramMapper.SplitModifiers.Enabled,
			SameKeyModFactor: c.NgramMapper.SplitModifiers.SameKeyModFactor,
		},
		SecondaryBigramsFromTrigrams: SecondaryBigramsConfig{
			Enabled:              c.NgramMapper.SecondaryBigramsFromTrigrams.Enabled,
			FactorNoHandswitch:   c.NgramMapper.SecondaryBigramsFromTrigrams.FactorNoHandswitch,
			FactorHandswitch:     c.NgramMapper.SecondaryBigramsFromTrigrams.FactorHandswitch,
			ExcludeModifierFirst: c.NgramMapper.SecondaryBigramsFromTrigrams.ExcludeModifierFirst,
		},
		IncreaseCommonBigrams: IncreaseCommonBigramsConfig{
			Enabled:              c.NgramMapper.IncreaseCommonBigrams.Enabled,
			CriticalFraction:     c.NgramMapper.IncreaseCommonBigrams.CriticalFraction,
			Factor:               c.NgramMapper.IncreaseCommonBigrams.Factor,
			TotalWeightThreshold: c.NgramMapper.IncreaseCommonBigrams.TotalWeightThreshold,
		},
		ExcludeLineBreaks: c.NgramMapper.ExcludeLineBreaks,
	}
}

// decodeParams decodes a metric's free-form parameter block into dst via
// mapstructure, so each metric's concrete struct stays strongly typed while
// the YAML schema stays uniform across metric families.
func decodeParams(params map[string]interface{}, dst interface{}) error {
	if params == nil {
		return nil
	}
	return mapstructure.Decode(params, dst)
}

// KnownMetricNames lists every metric name buildable by BuildEvaluator,
// across all four families; used to validate Weights overrides.
func KnownMetricNames() []string {
	return []string{
		"shortcut_keys", "asymmetric_keys",
		"key_cost", "hand_disbalance", "finger_balance",
		"finger_repeats", "line_changes", "movement_pattern",
		"no_handswitch_after_unbalancing_key", "unbalancing_after_neighboring",
		"asymmetric_bigrams", "finger_repeats_lateral", "finger_repeats_top_bottom",
		"manual_bigram_penalty",
		"irregularity", "no_handswitch_in_trigram", "secondary_bigrams",
		"trigram_finger_repeats",
	}
}

func buildLayoutMetric(name string, params map[string]interface{}) (LayoutMetric, error) {
	switch name {
	case "shortcut_keys":
		var m ShortcutKeys
		if err := decodeParams(params, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case "asymmetric_keys":
		var m AsymmetricKeys
		if err := decodeParams(params, &m); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown layout metric %q", name)
	}
}

func buildUnigramMetric(name string, params map[string]interface{}) (UnigramMetric, error) {
	switch name {
	case "key_cost":
		return &KeyCost{}, nil
	case "hand_disbalance":
		return &HandDisbalance{}, nil
	case "finger_balance":
		targets := NewFingerBalanceTargets()
		if raw, ok := params["target_finger_load"].(string); ok {
			if err := targets.SetFingerLoad(raw); err != nil {
				return nil, err
			}
		}
		return &FingerBalance{Targets: *targets}, nil
	default:
		return nil, fmt.Errorf("unknown unigram metric %q", name)
	}
}

func buildBigramMetric(name string, params map[string]interface{}) (BigramMetric, error) {
	switch name {
	case "finger_repeats":
		var m FingerRepeats
		if err := decodeParams(params, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case "line_changes":
		var fields struct {
			ShortUpLongDownReduction    float64 `mapstructure:"short_up_long_down_reduction"`
			ShortDownLongUpIncrease     float64 `mapstructure:"short_down_long_up_increase"`
			CountRowChangesBetweenHands bool    `mapstructure:"count_row_changes_between_hands"`
		}
		if err := decodeParams(params, &fields); err != nil {
			return nil, err
		}
		return &LineChanges{
			FingerLengths:               fingerLengthsFromParams(params["finger_lengths"]),
			ShortUpLongDownReduction:    fields.ShortUpLongDownReduction,
			ShortDownLongUpIncrease:     fields.ShortDownLongUpIncrease,
			CountRowChangesBetweenHands: fields.CountRowChangesBetweenHands,
		}, nil
	case "movement_pattern":
		return &MovementPattern{Costs: movementCostsFromParams(params["costs"])}, nil
	case "no_handswitch_after_unbalancing_key":
		return &NoHandswitchAfterUnbalancingKey{}, nil
	case "unbalancing_after_neighboring":
		return &UnbalancingAfterNeighboring{}, nil
	case "asymmetric_bigrams":
		return &AsymmetricBigrams{}, nil
	case "finger_repeats_lateral":
		return &FingerRepeatsLateral{}, nil
	case "finger_repeats_top_bottom":
		return &FingerRepeatsTopBottom{}, nil
	case "manual_bigram_penalty":
		return &ManualBigramPenalty{MatrixPositions: matrixPositionsFromParams(params["matrix_positions"])}, nil
	default:
		return nil, fmt.Errorf("unknown bigram metric %q", name)
	}
}

func buildTrigramMetric(name string, params map[string]interface{}, bigramMetrics []BigramMetric) (TrigramMetric, error) {
	switch name {
	case "irregularity":
		sum, _ := params["sum"].(bool)
		return &Irregularity{BigramMetrics: bigramMetrics, Sum: sum}, nil
	case "no_handswitch_in_trigram":
		var m NoHandswitchInTrigram
		if err := decodeParams(params, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case "secondary_bigrams":
		var cfg struct {
			FactorNoHandswitch float64 `mapstructure:"factor_no_handswitch"`
			FactorHandswitch   float64 `mapstructure:"factor_handswitch"`
		}
		if err := decodeParams(params, &cfg); err != nil {
			return nil, err
		}
		return &SecondaryBigrams{
			BigramMetrics:      bigramMetrics,
			FactorNoHandswitch: cfg.FactorNoHandswitch,
			FactorHandswitch:   cfg.FactorHandswitch,
		}, nil
	case "trigram_finger_repeats":
		var m TrigramFingerRepeats
		if err := decodeParams(params, &m); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown trigram metric %q", name)
	}
}

// BuildEvaluator constructs an Evaluator from parsed evaluation parameters,
// ngrams, and an optional Weights override applied on top of each metric's
// configured weight.
func BuildEvaluator(cfg *EvaluationParametersConfig, unigrams *Ngrams[Unigram], bigrams *Ngrams[Bigram], trigrams *Ngrams[Trigram], overrides *Weights) (*Evaluator, error) {
	mapper := NewNgramMapper(unigrams, bigrams, trigrams, cfg.ngramMapperConfig())

	layoutMetrics := make([]WeightedLayoutMetric, 0, len(cfg.Metrics.Layout))
	for _, mc := range cfg.Metrics.Layout {
		m, err := buildLayoutMetric(mc.Name, mc.Parameters)
		if err != nil {
			return nil, err
		}
		norm, err := mc.Normalization.build()
		if err != nil {
			return nil, err
		}
		layoutMetrics = append(layoutMetrics, WeightedLayoutMetric{Metric: m, Weight: weightFor(overrides, mc), Normalization: norm})
	}

	unigramMetrics := make([]WeightedUnigramMetric, 0, len(cfg.Metrics.Unigram))
	for _, mc := range cfg.Metrics.Unigram {
		m, err := buildUnigramMetric(mc.Name, mc.Parameters)
		if err != nil {
			return nil, err
		}
		norm, err := mc.Normalization.build()
		if err != nil {
			return nil, err
		}
		unigramMetrics = append(unigramMetrics, WeightedUnigramMetric{Metric: m, Weight: weightFor(overrides, mc), Normalization: norm})
	}

	bigramMetricsList := make([]BigramMetric, 0, len(cfg.Metrics.Bigram))
	bigramMetrics := make([]WeightedBigramMetric, 0, len(cfg.Metrics.Bigram))
	for _, mc := range cfg.Metrics.Bigram {
		m, err := buildBigramMetric(mc.Name, mc.Parameters)
		if err != nil {
			return nil, err
		}
		norm, err := mc.Normalization.build()
		if err != nil {
			return nil, err
		}
		bigramMetricsList = append(bigramMetricsList, m)
		bigramMetrics = append(bigramMetrics, WeightedBigramMetric{Metric: m, Weight: weightFor(overrides, mc), Normalization: norm})
	}

	trigramMetrics := make([]WeightedTrigramMetric, 0, len(cfg.Metrics.Trigram))
	for _, mc := range cfg.Metrics.Trigram {
		m, err := buildTrigramMetric(mc.Name, mc.Parameters, bigramMetricsList)
		if err != nil {
			return nil, err
		}
		norm, err := mc.Normalization.build()
		if err != nil {
			return nil, err
		}
		trigramMetrics = append(trigramMetrics, WeightedTrigramMetric{Metric: m, Weight: weightFor(overrides, mc), Normalization: norm})
	}

	return NewEvaluator(mapper, layoutMetrics, unigramMetrics, bigramMetrics, trigramMetrics), nil
}

var fingerSlotNames = map[string]struct {
	Hand   Hand
	Finger Finger
}{
	"left_thumb": {Left, Thumb}, "left_index": {Left, Index}, "left_middle": {Left, Middle},
	"left_ring": {Left, Ring}, "left_pinky": {Left, Pinky},
	"right_thumb": {Right, Thumb}, "right_index": {Right, Index}, "right_middle": {Right, Middle},
	"right_ring": {Right, Ring}, "right_pinky": {Right, Pinky},
}

// fingerLengthsFromParams builds a HandFingerMap from a
// {"left_pinky": 1.0, "right_index": 1.2, ...} style parameter block.
func fingerLengthsFromParams(raw interface{}) HandFingerMap[float64] {
	var hfm HandFingerMap[float64]
	m, ok := raw.(map[string]interface{})
	if !ok {
		return hfm
	}
	for name, v := range m {
		slot, ok := fingerSlotNames[name]
		if !ok {
			continue
		}
		if f, ok := toFloat(v); ok {
			hfm.Set(slot.Hand, slot.Finger, f)
		}
	}
	return hfm
}

// movementCostsFromParams builds the MovementPattern cost table from a list
// of {from_hand, from_finger, to_hand, to_finger, cost} entries.
func movementCostsFromParams(raw interface{}) [2]FingerMap[HandFingerMap[float64]] {
	var costs [2]FingerMap[HandFingerMap[float64]]
	entries, ok := raw.([]interface{})
	if !ok {
		return costs
	}
	for _, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		fromHand, ok1 := handNames[asString(entry["from_hand"])]
		fromFinger, ok2 := fingerByName[asString(entry["from_finger"])]
		toHand, ok3 := handNames[asString(entry["to_hand"])]
		toFinger, ok4 := fingerByName[asString(entry["to_finger"])]
		cost, ok5 := toFloat(entry["cost"])
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			continue
		}
		slot := costs[fromHand][fromFinger]
		slot.Set(toHand, toFinger, cost)
		costs[fromHand][fromFinger] = slot
	}
	return costs
}

// matrixPositionsFromParams builds the ManualBigramPenalty lookup table from
// a list of {from: {column, row}, to: {column, row}, cost} entries, adding
// each pair's reverse so lookups work regardless of typing direction.
func matrixPositionsFromParams(raw interface{}) map[[2]MatrixPosition]float64 {
	out := map[[2]MatrixPosition]float64{}
	entries, ok := raw.([]interface{})
	if !ok {
		return out
	}
	for _, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		from, ok1 := matrixPositionFromParams(entry["from"])
		to, ok2 := matrixPositionFromParams(entry["to"])
		cost, ok3 := toFloat(entry["cost"])
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out[[2]MatrixPosition{from, to}] = cost
		out[[2]MatrixPosition{to, from}] = cost
	}
	return out
}

func matrixPositionFromParams(raw interface{}) (MatrixPosition, bool) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return MatrixPosition{}, false
	}
	col, ok1 := toFloat(m["column"])
	row, ok2 := toFloat(m["row"])
	if !ok1 || !ok2 {
		return MatrixPosition{}, false
	}
	return MatrixPosition{Column: int(col), Row: int(row)}, true
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func weightFor(overrides *Weights, mc MetricConfig) float64 {
	if overrides == nil {
		return mc.Weight
	}
	if w, ok := overrides.weights[mc.Name]; ok {
		return w
	}
	return mc.Weight
}

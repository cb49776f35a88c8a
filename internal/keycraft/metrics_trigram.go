package keycraft

// Irregularity aggregates a panel of bigram metrics over both bigrams of a
// trigram (k1,k2) and (k2,k3), charging the configured combination of their
// costs as the trigram's irregularity.
type Irregularity struct {
	BigramMetrics []BigramMetric
	// Sum, when true, adds both bigram costs; otherwise the larger of the
	// two is charged (the open question on aggregation variant, fixed here
	// rather than left ambiguous).
	Sum bool
}

func (m *Irregularity) Name() string { return "Irregularity" }

func (m *Irregularity) IndividualCost(k1, k2, k3 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	var cost1, cost2 float64
	for _, bm := range m.BigramMetrics {
		if c, ok := bm.IndividualCost(k1, k2, weight, totalWeight, layout); ok {
			cost1 += c
		}
		if c, ok := bm.IndividualCost(k2, k3, weight, totalWeight, layout); ok {
			cost2 += c
		}
	}
	if m.Sum {
		return cost1 + cost2, true
	}
	if cost1 > cost2 {
		return cost1, true
	}
	return cost2, true
}

func (m *Irregularity) TotalCost(ngrams []MappedTrigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumTrigramIndividual(m, ngrams, totalWeight, layout), ""
}

// NoHandswitchInTrigram penalizes trigrams typed entirely on one hand
// (thumbs and modifiers excluded), since no hand ever gets a rest. The
// charged weight is scaled by a factor chosen from the trigram's column
// geometry: a same-key run, a repeated finger, a same start/end position,
// a direction change, or none of those; any trigram that uses an index
// finger is additionally scaled by FactorContainsIndex.
type NoHandswitchInTrigram struct {
	FactorWithDirectionChange    float64 `mapstructure:"factor_with_direction_change"`
	FactorWithoutDirectionChange float64 `mapstructure:"factor_without_direction_change"`
	FactorContainsIndex          float64 `mapstructure:"factor_contains_index"`
	FactorSameKey                float64 `mapstructure:"factor_same_key"`
	FactorContainsFingerRepeat   float64 `mapstructure:"factor_contains_finger_repeat"`
	FactorSameKeyStartEnd        float64 `mapstructure:"factor_same_key_start_end"`
}

func (m *NoHandswitchInTrigram) Name() string { return "No Handswitch In Trigram" }

func (m *NoHandswitchInTrigram) IndividualCost(k1, k2, k3 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	if k1.IsModifier || k2.IsModifier || k3.IsModifier {
		return 0, true
	}

	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	key3 := layout.Keyboard.Key(k3.Key)

	if key1.Finger == Thumb || key2.Finger == Thumb || key3.Finger == Thumb {
		return 0, true
	}
	if key1.Hand != key2.Hand || key2.Hand != key3.Hand {
		return 0, true
	}

	pos1, pos2, pos3 := key1.Position, key2.Position, key3.Position

	containsRepeat := (key1.Finger == key2.Finger && key1.Hand == key2.Hand) ||
		(key2.Finger == key3.Finger && key2.Hand == key3.Hand)
	sameKey := pos1 == pos2 && pos2 == pos3

	containsIndex := 1.0
	if key1.Finger == Index || key2.Finger == Index || key3.Finger == Index {
		containsIndex = m.FactorContainsIndex
	}

	var factor float64
	switch {
	case sameKey:
		factor = m.FactorSameKey
	case containsRepeat:
		factor = m.FactorContainsFingerRepeat
	case pos1 == pos3:
		factor = m.FactorSameKeyStartEnd
	case (pos1.Column > pos2.Column && pos2.Column < pos3.Column) ||
		(pos1.Column < pos2.Column && pos2.Column > pos3.Column):
		factor = m.FactorWithDirectionChange
	default:
		factor = m.FactorWithoutDirectionChange
	}

	return weight * factor * containsIndex, true
}

func (m *NoHandswitchInTrigram) TotalCost(ngrams []MappedTrigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumTrigramIndividual(m, ngrams, totalWeight, layout), ""
}

// SecondaryBigrams re-evaluates a panel of bigram metrics on the (k1,k3)
// secondary bigram formed by skipping the trigram's middle key, weighted by
// the handswitch factor. Distinct from the ngram mapper's secondary-bigram
// synthesis pass: this metric always re-derives the (k1,k3) pair at score
// time rather than consuming pre-synthesized bigram ngrams.
type SecondaryBigrams struct {
	BigramMetrics      []BigramMetric
	FactorNoHandswitch float64
	FactorHandswitch   float64
}

func (m *SecondaryBigrams) Name() string { return "Secondary Bigrams" }

func (m *SecondaryBigrams) IndividualCost(k1, k2, k3 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	key3 := layout.Keyboard.Key(k3.Key)

	if key1.Hand != key3.Hand {
		return 0, true
	}

	factor := m.FactorHandswitch
	if key1.Hand == key2.Hand {
		factor = m.FactorNoHandswitch
	}
	w := weight * factor

	var cost float64
	for _, bm := range m.BigramMetrics {
		if c, ok := bm.IndividualCost(k1, k3, w, totalWeight, layout); ok {
			cost += c
		}
	}
	return cost, true
}

func (m *SecondaryBigrams) TotalCost(ngrams []MappedTrigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumTrigramIndividual(m, ngrams, totalWeight, layout), ""
}

// TrigramFingerRepeats penalizes trigrams typed entirely with the same
// hand and finger (thumbs and consecutive identical keys excluded),
// charging an extra FactorLateralMovement for each of the two bigrams
// within the trigram that crosses columns.
type TrigramFingerRepeats struct {
	FactorLateralMovement float64 `mapstructure:"factor_lateral_movement"`
}

func (m *TrigramFingerRepeats) Name() string { return "Trigram Finger Repeats" }

func (m *TrigramFingerRepeats) IndividualCost(k1, k2, k3 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	if k1.Index == k2.Index || k2.Index == k3.Index {
		return 0, true
	}

	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	key3 := layout.Keyboard.Key(k3.Key)

	if key1.Finger == Thumb || key2.Finger == Thumb || key3.Finger == Thumb {
		return 0, true
	}
	if key1.Hand != key2.Hand || key2.Hand != key3.Hand {
		return 0, true
	}
	if key1.Finger != key2.Finger || key2.Finger != key3.Finger {
		return 0, true
	}

	cost := weight
	if key1.Position.Column != key2.Position.Column {
		cost *= m.FactorLateralMovement
	}
	if key2.Position.Column != key3.Position.Column {
		cost *= m.FactorLateralMovement
	}
	return cost, true
}

func (m *TrigramFingerRepeats) TotalCost(ngrams []MappedTrigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumTrigramIndividual(m, ngrams, totalWeight, layout), ""
}

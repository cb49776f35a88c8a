package keycraft

// FingerRepeats penalizes bigrams using the same hand and finger for two
// different keys (thumbs never trigger). Index/pinky finger repeats scale
// by a configurable factor, and very common repeats are amplified further.
type FingerRepeats struct {
	IndexFingerFactor    float64 `mapstructure:"index_finger_factor"`
	PinkyFingerFactor    float64 `mapstructure:"pinky_finger_factor"`
	CriticalFraction     float64 `mapstructure:"critical_fraction"`
	Factor               float64 `mapstructure:"factor"`
	TotalWeightThreshold float64 `mapstructure:"total_weight_threshold"`
}

func (m *FingerRepeats) Name() string { return "Finger Repeats" }

func (m *FingerRepeats) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)

	if k1.Index == k2.Index || key1.Hand != key2.Hand || key1.Finger != key2.Finger || key1.Finger == Thumb {
		return 0, true
	}

	cost := weight
	if key1.Finger == Index {
		cost *= m.IndexFingerFactor
	}
	if key1.Finger == Pinky {
		cost *= m.PinkyFingerFactor
	}

	critical := m.CriticalFraction * totalWeight
	if cost > critical && totalWeight > m.TotalWeightThreshold {
		cost += (cost - critical) * (m.Factor - 1)
	}
	return cost, true
}

func (m *FingerRepeats) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

// LineChanges measures the vertical travel of a bigram (thumbs excluded),
// normalized by finger distance and adjusted for short/long finger
// direction and per-key unbalancing, then squared.
type LineChanges struct {
	FingerLengths                HandFingerMap[float64]
	ShortUpLongDownReduction     float64 `mapstructure:"short_up_long_down_reduction"`
	ShortDownLongUpIncrease      float64 `mapstructure:"short_down_long_up_increase"`
	CountRowChangesBetweenHands  bool    `mapstructure:"count_row_changes_between_hands"`
}

func (m *LineChanges) Name() string { return "Line Changes" }

func (m *LineChanges) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)

	if key1.Finger == Thumb || key2.Finger == Thumb {
		return 0, true
	}
	if !m.CountRowChangesBetweenHands && key1.Hand != key2.Hand {
		return 0, true
	}

	len1 := m.FingerLengths.Get(key1.Hand, key1.Finger)
	len2 := m.FingerLengths.Get(key2.Hand, key2.Finger)
	firstLonger := len1 > len2
	firstShorter := len1 < len2

	numRows := absInt(key1.Position.Row - key2.Position.Row)
	rows := float64(numRows)
	upwards := key2.Position.Row < key1.Position.Row
	downwards := key2.Position.Row > key1.Position.Row

	if (upwards && firstShorter) || (downwards && firstLonger) {
		rows -= m.ShortUpLongDownReduction
	}
	if (downwards && firstShorter) || (upwards && firstLonger) {
		rows += m.ShortDownLongUpIncrease
	}

	fingerDist := float64(key1.Finger.Distance(key2.Finger))
	if fingerDist < 0.5 {
		fingerDist = 0.5
	}

	sqrtCost := rows / fingerDist * (1 + key1.UnbalancingX + key1.UnbalancingY) * (1 + key2.UnbalancingX + key2.UnbalancingY)
	return weight * sqrtCost * sqrtCost, true
}

func (m *LineChanges) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// MovementPattern looks up a fixed cost for the (hand,finger)->(hand,finger)
// transition of a bigram.
type MovementPattern struct {
	// Costs[h1][f1][h2][f2] is the cost of moving from (h1,f1) to (h2,f2).
	Costs [2]FingerMap[HandFingerMap[float64]]
}

func (m *MovementPattern) Name() string { return "Movement Pattern" }

func (m *MovementPattern) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	cost := m.Costs[key1.Hand][key1.Finger].Get(key2.Hand, key2.Finger)
	return weight * cost, true
}

func (m *MovementPattern) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

// NoHandswitchAfterUnbalancingKey penalizes same-hand bigrams (thumbs
// excluded) that follow an unbalancing key with further reach.
type NoHandswitchAfterUnbalancingKey struct{}

func (m *NoHandswitchAfterUnbalancingKey) Name() string { return "No Handswitch After Unbalancing Key" }

func (m *NoHandswitchAfterUnbalancingKey) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	if key1.Hand != key2.Hand || key1.Finger == Thumb || key2.Finger == Thumb {
		return 0, true
	}
	dx := key1.UnbalancingX - key2.UnbalancingX
	dy := key1.UnbalancingY - key2.UnbalancingY
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return weight * (dx + dy), true
}

func (m *NoHandswitchAfterUnbalancingKey) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

// UnbalancingAfterNeighboring penalizes same-hand, different-finger bigrams
// (thumbs excluded) proportional to their combined unbalancing and inverse
// to the square of finger distance.
type UnbalancingAfterNeighboring struct{}

func (m *UnbalancingAfterNeighboring) Name() string { return "Unbalancing After Neighboring" }

func (m *UnbalancingAfterNeighboring) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	if key1.Hand != key2.Hand || key1.Finger == key2.Finger || key1.Finger == Thumb || key2.Finger == Thumb {
		return 0, true
	}
	fingerDist := float64(key1.Finger.Distance(key2.Finger))
	if fingerDist == 0 {
		return 0, true
	}
	unb := (key1.UnbalancingX + key1.UnbalancingY) + (key2.UnbalancingX + key2.UnbalancingY)
	return weight * unb / (fingerDist * fingerDist), true
}

func (m *UnbalancingAfterNeighboring) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

// AsymmetricBigrams charges the full weight of any bigram whose two keys
// don't share a symmetry index, i.e. aren't mirror-image positions on the
// two hands.
type AsymmetricBigrams struct{}

func (m *AsymmetricBigrams) Name() string { return "Asymmetric Bigrams" }

func (m *AsymmetricBigrams) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	if key1.SymmetryIndex != key2.SymmetryIndex {
		return weight, true
	}
	return 0, true
}

func (m *AsymmetricBigrams) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

// FingerRepeatsLateral penalizes same-hand, same-finger bigrams (thumbs
// excluded) that move sideways between columns.
type FingerRepeatsLateral struct{}

func (m *FingerRepeatsLateral) Name() string { return "Finger Repeats Lateral" }

func (m *FingerRepeatsLateral) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	if k1.Index == k2.Index ||
		key1.Hand != key2.Hand ||
		key1.Finger != key2.Finger ||
		key1.Finger == Thumb ||
		key1.Position.Column == key2.Position.Column {
		return 0, true
	}
	return weight, true
}

func (m *FingerRepeatsLateral) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

// FingerRepeatsTopBottom penalizes same-hand, same-finger bigrams (thumbs
// excluded) that move between rows, mirroring FingerRepeatsLateral's column
// check against rows instead.
type FingerRepeatsTopBottom struct{}

func (m *FingerRepeatsTopBottom) Name() string { return "Finger Repeats Top Bottom" }

func (m *FingerRepeatsTopBottom) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)
	if k1.Index == k2.Index ||
		key1.Hand != key2.Hand ||
		key1.Finger != key2.Finger ||
		key1.Finger == Thumb ||
		key1.Position.Row == key2.Position.Row {
		return 0, true
	}
	return weight, true
}

func (m *FingerRepeatsTopBottom) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

// ManualBigramPenalty charges a configured weight multiplier for specific
// (from,to) matrix-position pairs (stored both ways round), plus a flat
// penalty for every same-hand pinky-to-pinky repeat not already listed.
type ManualBigramPenalty struct {
	MatrixPositions map[[2]MatrixPosition]float64
}

func (m *ManualBigramPenalty) Name() string { return "Manual Bigram Penalty" }

func (m *ManualBigramPenalty) IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	key1 := layout.Keyboard.Key(k1.Key)
	key2 := layout.Keyboard.Key(k2.Key)

	if val, ok := m.MatrixPositions[[2]MatrixPosition{key1.Position, key2.Position}]; ok {
		return weight * val, true
	}
	if key1.Hand == key2.Hand && key1.Finger == Pinky && key2.Finger == Pinky {
		return weight, true
	}
	return 0, true
}

func (m *ManualBigramPenalty) TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumBigramIndividual(m, ngrams, totalWeight, layout), ""
}

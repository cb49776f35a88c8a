package keycraft

import (
	"fmt"
	"math"
)

// KeyCost charges each unigram the cost of its own key plus the cost of
// every modifier needed to reach it, so higher-layer symbols inherit their
// chord's cost.
type KeyCost struct{}

func (m *KeyCost) Name() string { return "Key Cost" }

func (m *KeyCost) IndividualCost(k LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	cost := layout.Keyboard.Key(k.Key).Cost
	for _, modIdx := range k.Modifiers {
		modKey := layout.LayerKeyAt(modIdx)
		cost += layout.Keyboard.Key(modKey.Key).Cost
	}
	return weight * cost, true
}

func (m *KeyCost) TotalCost(ngrams []MappedUnigram, totalWeight float64, layout *Layout) (float64, string) {
	return sumUnigramIndividual(m, ngrams, totalWeight, layout), ""
}

// HandDisbalance compares the two hands' share of unigram weight (thumbs
// excluded); cost is half the absolute difference of their shares.
type HandDisbalance struct{}

func (m *HandDisbalance) Name() string { return "Hand Disbalance" }

func (m *HandDisbalance) IndividualCost(LayerKey, float64, float64, *Layout) (float64, bool) {
	return 0, false
}

func (m *HandDisbalance) TotalCost(ngrams []MappedUnigram, totalWeight float64, layout *Layout) (float64, string) {
	var hand HandMap[float64]
	var total float64
	for _, ng := range ngrams {
		k := layout.LayerKeyAt(ng.Key)
		key := layout.Keyboard.Key(k.Key)
		if key.Finger == Thumb {
			continue
		}
		hand[key.Hand] += ng.Weight
		total += ng.Weight
	}
	if total == 0 {
		return 0, ""
	}
	leftShare := hand[Left] / total
	rightShare := hand[Right] / total
	cost := math.Abs(leftShare-rightShare) / 2
	msg := fmt.Sprintf("left %.2f%% / right %.2f%%", 100*leftShare, 100*rightShare)
	return cost, msg
}

// FingerBalanceTargets names the intended (non-thumb) per-finger share of
// typing load, used by FingerBalance.
type FingerBalanceTargets struct {
	Loads HandFingerMap[float64]
}

// FingerBalance compares each (hand,finger)'s weight share to its intended
// load; cost is the sample standard deviation of the actual/intended ratios.
type FingerBalance struct {
	Targets FingerBalanceTargets
}

func (m *FingerBalance) Name() string { return "Finger Balance" }

func (m *FingerBalance) IndividualCost(LayerKey, float64, float64, *Layout) (float64, bool) {
	return 0, false
}

func (m *FingerBalance) TotalCost(ngrams []MappedUnigram, totalWeight float64, layout *Layout) (float64, string) {
	var load HandFingerMap[float64]
	var total float64
	for _, ng := range ngrams {
		k := layout.LayerKeyAt(ng.Key)
		key := layout.Keyboard.Key(k.Key)
		if key.Finger == Thumb {
			continue
		}
		load[key.Hand][key.Finger] += ng.Weight
		total += ng.Weight
	}
	if total == 0 {
		return 0, ""
	}

	var ratios []float64
	for h := Left; h <= Right; h++ {
		for f := Index; f < numFingers; f++ {
			target := m.Targets.Loads.Get(h, f)
			if target <= 0 {
				continue
			}
			actual := load.Get(h, f) / total
			ratios = append(ratios, actual/target)
		}
	}
	if len(ratios) == 0 {
		return 0, ""
	}

	var mean float64
	for _, r := range ratios {
		mean += r
	}
	mean /= float64(len(ratios))

	var variance float64
	for _, r := range ratios {
		d := r - mean
		variance += d * d
	}
	if len(ratios) > 1 {
		variance /= float64(len(ratios) - 1)
	}

	return math.Sqrt(variance), ""
}

package keycraft

import (
	"math"
	"testing"
)

// unigramTestLayout wraps testKeyboard() in a Layout whose LayerKeys mirror
// the keyboard's keys 1:1, so MappedUnigram.Key can reference key indices
// directly without going through a LayoutGenerator.
func unigramTestLayout(kb *Keyboard) *Layout {
	lks := make([]LayerKey, len(kb.Keys))
	for i := range kb.Keys {
		lks[i] = LayerKey{Index: i, Key: i}
	}
	return &Layout{Keyboard: kb, LayerKeys: lks}
}

func TestKeyCostIndividualAddsModifierCosts(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].Cost = 5.0
	kb.Keys[1].Cost = 2.0
	layout := unigramTestLayout(kb)
	layout.LayerKeys[1].Modifiers = []LayerKeyIndex{0}

	m := &KeyCost{}
	cost, ok := m.IndividualCost(layout.LayerKeys[1], 3, 100, layout)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if cost != 21.0 {
		t.Errorf("cost = %v, want 21.0 (weight 3 * (2.0 key + 5.0 modifier))", cost)
	}
}

func TestKeyCostTotalCostSumsAllUnigrams(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].Cost = 1.0
	kb.Keys[1].Cost = 2.0
	layout := unigramTestLayout(kb)

	m := &KeyCost{}
	total, _ := m.TotalCost([]MappedUnigram{{Key: 0, Weight: 4}, {Key: 1, Weight: 5}}, 9, layout)
	if total != 14.0 {
		t.Errorf("total = %v, want 14.0 (4*1 + 5*2)", total)
	}
}

func TestHandDisbalanceExcludesThumbs(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].Finger = Thumb
	layout := unigramTestLayout(kb)

	m := &HandDisbalance{}
	cost, _ := m.TotalCost([]MappedUnigram{{Key: 0, Weight: 100}, {Key: 1, Weight: 10}}, 110, layout)
	// key 0 is excluded as a thumb; only key 1 (Left) counts, so the hands
	// are perfectly disbalanced: |1-0|/2 = 0.5.
	if cost != 0.5 {
		t.Errorf("cost = %v, want 0.5", cost)
	}
}

func TestHandDisbalanceComputesShareDifference(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[2].Hand = Right
	layout := unigramTestLayout(kb)

	m := &HandDisbalance{}
	// key0 (Left) weight 30, key2 (Right) weight 10: left share 0.75, right 0.25.
	cost, msg := m.TotalCost([]MappedUnigram{{Key: 0, Weight: 30}, {Key: 2, Weight: 10}}, 40, layout)
	if cost != 0.25 {
		t.Errorf("cost = %v, want 0.25 (|0.75-0.25|/2)", cost)
	}
	if msg == "" {
		t.Error("expected a non-empty diagnostic message")
	}
}

func TestHandDisbalanceNoWeightIsZero(t *testing.T) {
	kb := testKeyboard()
	layout := unigramTestLayout(kb)

	m := &HandDisbalance{}
	cost, _ := m.TotalCost(nil, 0, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 when no weight is found", cost)
	}
}

func TestFingerBalancePerfectMatchIsZero(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[2].Hand = Right // key0=Left/Pinky, key1=Left/Ring
	layout := unigramTestLayout(kb)

	var targets HandFingerMap[float64]
	targets.Set(Left, Pinky, 1.0)
	targets.Set(Left, Ring, 1.0)

	m := &FingerBalance{Targets: FingerBalanceTargets{Loads: targets}}
	cost, _ := m.TotalCost([]MappedUnigram{{Key: 0, Weight: 5}, {Key: 1, Weight: 5}}, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 when actual/target ratios are all equal", cost)
	}
}

func TestFingerBalanceSkewedLoadIsPositive(t *testing.T) {
	kb := testKeyboard()
	layout := unigramTestLayout(kb)

	var targets HandFingerMap[float64]
	targets.Set(Left, Pinky, 0.5)
	targets.Set(Left, Ring, 0.5)

	m := &FingerBalance{Targets: FingerBalanceTargets{Loads: targets}}
	cost, _ := m.TotalCost([]MappedUnigram{{Key: 0, Weight: 9}, {Key: 1, Weight: 1}}, 10, layout)
	if cost <= 0 {
		t.Errorf("cost = %v, want > 0 for an uneven actual/target ratio split", cost)
	}
	if math.IsNaN(cost) {
		t.Error("cost is NaN")
	}
}

func TestFingerBalanceNoTargetsIsZero(t *testing.T) {
	kb := testKeyboard()
	layout := unigramTestLayout(kb)

	m := &FingerBalance{}
	cost, _ := m.TotalCost([]MappedUnigram{{Key: 0, Weight: 5}}, 5, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 when no finger has a configured target", cost)
	}
}

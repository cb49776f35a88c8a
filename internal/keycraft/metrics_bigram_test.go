package keycraft

import (
	"math"
	"testing"
)

// bigramTestLayout wraps testKeyboard() in a minimal Layout so bigram metrics
// (which only need layout.Keyboard) can be exercised directly on LayerKeys
// built from known key indices.
func bigramTestLayout() *Layout {
	return &Layout{Keyboard: testKeyboard()}
}

func lk(keyIdx int) LayerKey {
	return LayerKey{Index: keyIdx, Key: keyIdx}
}

func TestFingerRepeatsDifferentFingerIsZero(t *testing.T) {
	layout := bigramTestLayout()
	m := &FingerRepeats{IndexFingerFactor: 2, PinkyFingerFactor: 3}

	// Keys 0 and 1 are different fingers (Pinky, Ring); no repeat.
	cost, ok := m.IndividualCost(lk(0), lk(1), 5, 100, layout)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if cost != 0 {
		t.Errorf("cost = %v, want 0 for a different-finger bigram", cost)
	}
}

func TestFingerRepeatsSameLayerKeyIsZero(t *testing.T) {
	layout := bigramTestLayout()
	m := &FingerRepeats{PinkyFingerFactor: 3, CriticalFraction: 1.0, TotalWeightThreshold: 1e9}

	// Key 0 is Pinky, but pressing the same LayerKey twice is not a finger
	// repeat, so the pinky factor never applies.
	cost, _ := m.IndividualCost(lk(0), lk(0), 2, 100, layout)
	if cost != 0 {
		t.Errorf("same LayerKey (k1==k2) should short-circuit to 0, got %v", cost)
	}
}

func TestFingerRepeatsIndexFactorAndAmplification(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].Finger = Index
	kb.Keys[1].Finger = Index
	layout := &Layout{Keyboard: kb}

	m := &FingerRepeats{IndexFingerFactor: 2, CriticalFraction: 0.1, Factor: 2, TotalWeightThreshold: 0}
	// weight 10 * IndexFingerFactor 2 = 20; critical = 0.1*100 = 10;
	// 20 > 10, so amplified: 20 + (20-10)*(2-1) = 30.
	cost, _ := m.IndividualCost(lk(0), lk(1), 10, 100, layout)
	if cost != 30 {
		t.Errorf("cost = %v, want 30", cost)
	}
}

func TestLineChangesExcludesThumbs(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].Finger = Thumb
	layout := &Layout{Keyboard: kb}

	m := &LineChanges{}
	cost, ok := m.IndividualCost(lk(0), lk(1), 1, 10, layout)
	if !ok || cost != 0 {
		t.Errorf("cost = %v, ok = %v, want 0/true when either key is a thumb", cost, ok)
	}
}

func TestLineChangesExcludesCrossHandByDefault(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Hand = Right
	layout := &Layout{Keyboard: kb}

	m := &LineChanges{CountRowChangesBetweenHands: false}
	cost, _ := m.IndividualCost(lk(0), lk(1), 1, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 for a cross-hand bigram when not counted", cost)
	}
}

func TestLineChangesSameRowIsZero(t *testing.T) {
	layout := bigramTestLayout() // all keys are row 0
	m := &LineChanges{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 1, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 for a same-row bigram", cost)
	}
}

func TestMovementPatternLooksUpConfiguredCost(t *testing.T) {
	layout := bigramTestLayout()
	var costs [2]FingerMap[HandFingerMap[float64]]
	var hfm HandFingerMap[float64]
	hfm.Set(Left, Ring, 4.5)
	costs[Left][Pinky] = hfm

	m := &MovementPattern{Costs: costs}
	cost, _ := m.IndividualCost(lk(0), lk(1), 2, 10, layout) // key0=Pinky, key1=Ring
	if cost != 9.0 {
		t.Errorf("cost = %v, want 9.0 (weight 2 * configured cost 4.5)", cost)
	}
}

func TestNoHandswitchAfterUnbalancingKeyCrossHandIsZero(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Hand = Right
	layout := &Layout{Keyboard: kb}

	m := &NoHandswitchAfterUnbalancingKey{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 1, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 across hands", cost)
	}
}

func TestNoHandswitchAfterUnbalancingKeySameHand(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].UnbalancingX = 0.3
	kb.Keys[1].UnbalancingX = 0.1
	layout := &Layout{Keyboard: kb}

	m := &NoHandswitchAfterUnbalancingKey{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 2, 10, layout)
	if math.Abs(cost-0.4) > 1e-12 {
		t.Errorf("cost = %v, want 0.4 (weight 2 * |0.3-0.1|)", cost)
	}
}

func TestUnbalancingAfterNeighboringSameFingerIsZero(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Finger = kb.Keys[0].Finger
	layout := &Layout{Keyboard: kb}

	m := &UnbalancingAfterNeighboring{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 1, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 for a same-finger bigram", cost)
	}
}

func TestUnbalancingAfterNeighboringComputesCost(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].UnbalancingX = 1.0
	kb.Keys[1].UnbalancingY = 1.0
	layout := &Layout{Keyboard: kb}

	m := &UnbalancingAfterNeighboring{}
	// key0=Pinky, key1=Ring: finger distance 1.
	cost, _ := m.IndividualCost(lk(0), lk(1), 2, 10, layout)
	if cost != 4.0 {
		t.Errorf("cost = %v, want 4.0 (weight 2 * unb 2.0 / dist^2 1)", cost)
	}
}

func TestAsymmetricBigramsDifferingSymmetryIndexChargesWeight(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].SymmetryIndex = 1
	kb.Keys[1].SymmetryIndex = 2
	layout := &Layout{Keyboard: kb}

	m := &AsymmetricBigrams{}
	cost, ok := m.IndividualCost(lk(0), lk(1), 3, 10, layout)
	if !ok || cost != 3 {
		t.Errorf("cost = %v, ok = %v, want 3/true for differing symmetry indices", cost, ok)
	}
}

func TestAsymmetricBigramsSameSymmetryIndexIsZero(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[0].SymmetryIndex = 5
	kb.Keys[1].SymmetryIndex = 5
	layout := &Layout{Keyboard: kb}

	m := &AsymmetricBigrams{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 3, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 for a matching symmetry index", cost)
	}
}

func TestFingerRepeatsLateralChargesOnColumnChange(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Finger = kb.Keys[0].Finger // both Pinky, still different columns (0, 1)
	layout := &Layout{Keyboard: kb}

	m := &FingerRepeatsLateral{}
	cost, ok := m.IndividualCost(lk(0), lk(1), 4, 10, layout)
	if !ok || cost != 4 {
		t.Errorf("cost = %v, ok = %v, want 4/true for a same-finger column change", cost, ok)
	}
}

func TestFingerRepeatsLateralSameColumnIsZero(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Finger = kb.Keys[0].Finger
	kb.Keys[1].Position.Column = kb.Keys[0].Position.Column
	layout := &Layout{Keyboard: kb}

	m := &FingerRepeatsLateral{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 4, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 when the column doesn't change", cost)
	}
}

func TestFingerRepeatsLateralExcludesThumbs(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Finger = kb.Keys[0].Finger
	kb.Keys[0].Finger = Thumb
	kb.Keys[1].Finger = Thumb
	layout := &Layout{Keyboard: kb}

	m := &FingerRepeatsLateral{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 4, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 for thumbs", cost)
	}
}

func TestFingerRepeatsTopBottomChargesOnRowChange(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Finger = kb.Keys[0].Finger
	kb.Keys[1].Position.Row = kb.Keys[0].Position.Row + 1
	layout := &Layout{Keyboard: kb}

	m := &FingerRepeatsTopBottom{}
	cost, ok := m.IndividualCost(lk(0), lk(1), 4, 10, layout)
	if !ok || cost != 4 {
		t.Errorf("cost = %v, ok = %v, want 4/true for a same-finger row change", cost, ok)
	}
}

func TestFingerRepeatsTopBottomSameRowIsZero(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Finger = kb.Keys[0].Finger // same row already (both row 0)
	layout := &Layout{Keyboard: kb}

	m := &FingerRepeatsTopBottom{}
	cost, _ := m.IndividualCost(lk(0), lk(1), 4, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 when the row doesn't change", cost)
	}
}

func TestManualBigramPenaltyUsesConfiguredPairCost(t *testing.T) {
	layout := bigramTestLayout()
	m := &ManualBigramPenalty{
		MatrixPositions: map[[2]MatrixPosition]float64{
			{{Column: 0, Row: 0}, {Column: 1, Row: 0}}: 2.5,
			{{Column: 1, Row: 0}, {Column: 0, Row: 0}}: 2.5,
		},
	}
	cost, ok := m.IndividualCost(lk(0), lk(1), 2, 10, layout)
	if !ok || cost != 5.0 {
		t.Errorf("cost = %v, ok = %v, want 5.0 (weight 2 * configured cost 2.5)", cost, ok)
	}
}

func TestManualBigramPenaltyFallsBackToPinkyRepeat(t *testing.T) {
	kb := testKeyboard()
	kb.Keys[1].Finger = Pinky
	layout := &Layout{Keyboard: kb}

	m := &ManualBigramPenalty{MatrixPositions: map[[2]MatrixPosition]float64{}}
	cost, _ := m.IndividualCost(lk(0), lk(1), 3, 10, layout)
	if cost != 3 {
		t.Errorf("cost = %v, want 3 for an unlisted same-hand pinky repeat", cost)
	}
}

func TestManualBigramPenaltyUnlistedNonPinkyIsZero(t *testing.T) {
	layout := bigramTestLayout()
	m := &ManualBigramPenalty{MatrixPositions: map[[2]MatrixPosition]float64{}}
	// key0=Pinky, key1=Ring: not a pinky-pinky repeat, and not listed.
	cost, _ := m.IndividualCost(lk(0), lk(1), 3, 10, layout)
	if cost != 0 {
		t.Errorf("cost = %v, want 0 for an unlisted non-pinky pair", cost)
	}
}

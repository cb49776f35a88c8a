package keycraft

import "testing"

// countingUnigramMetric scores each unigram activation by its key's Cost
// field, proving that the layout passed into TotalCost is the real,
// non-nil evaluation target (not the stale nil regression this guards).
type countingUnigramMetric struct{}

func (countingUnigramMetric) Name() string { return "counting_unigram" }

func (countingUnigramMetric) IndividualCost(k LayerKey, weight, totalWeight float64, layout *Layout) (float64, bool) {
	return 0, false
}

func (countingUnigramMetric) TotalCost(ngrams []MappedUnigram, totalWeight float64, layout *Layout) (float64, string) {
	var total float64
	for _, ng := range ngrams {
		k := layout.LayerKeyAt(ng.Key)
		total += layout.Keyboard.Key(k.Key).Cost * ng.Weight
	}
	return total, ""
}

func TestEvaluateLayoutThreadsRealLayoutIntoMetrics(t *testing.T) {
	kb := testKeyboard()
	base := testBaseLayout(kb)
	kb.Keys[1].Cost = 5.0 // the key 'a'/'b' can land on
	kb.Keys[2].Cost = 1.0

	gen, err := NewLayoutGenerator(base)
	if err != nil {
		t.Fatalf("NewLayoutGenerator: %v", err)
	}
	layout, err := gen.Generate("ab")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	unigrams, err := UnigramsFromFrequenciesText("2 a\n3 b\n")
	if err != nil {
		t.Fatalf("UnigramsFromFrequenciesText: %v", err)
	}
	mapper := NewNgramMapper(unigrams, NewBigrams(), NewTrigrams(), NgramMapperConfig{})

	eval := NewEvaluator(mapper, nil,
		[]WeightedUnigramMetric{{Metric: countingUnigramMetric{}, Weight: 1, Normalization: Normalization{Kind: Fixed, Value: 1}}},
		nil, nil)

	results := eval.EvaluateLayout(layout)
	if len(results) != 4 {
		t.Fatalf("expected 4 MetricResults (layout/unigram/bigram/trigram), got %d", len(results))
	}

	unigramResult := results[UnigramFamily]
	if len(unigramResult.MetricCosts) != 1 {
		t.Fatalf("expected exactly 1 unigram metric cost, got %d", len(unigramResult.MetricCosts))
	}

	// 'a' lands on key 1 (cost 5) weighted 2, 'b' lands on key 2 (cost 1)
	// weighted 3: 2*5 + 3*1 = 13. A nil *Layout would panic before this.
	got := unigramResult.MetricCosts[0].Cost
	if got != 13.0 {
		t.Errorf("TotalCost = %v, want 13.0", got)
	}
}

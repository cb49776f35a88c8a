package keycraft

// LayoutMetric scores a whole Layout directly (no ngram iteration).
type LayoutMetric interface {
	Name() string
	TotalCost(layout *Layout) (cost float64, message string)
}

// UnigramMetric scores mapped unigrams. IndividualCost is optional: metrics
// that can score each activation independently return ok=true; aggregate-
// only metrics return ok=false and compute everything in TotalCost.
type UnigramMetric interface {
	Name() string
	IndividualCost(k LayerKey, weight, totalWeight float64, layout *Layout) (cost float64, ok bool)
	TotalCost(ngrams []MappedUnigram, totalWeight float64, layout *Layout) (cost float64, message string)
}

// BigramMetric scores mapped bigrams.
type BigramMetric interface {
	Name() string
	IndividualCost(k1, k2 LayerKey, weight, totalWeight float64, layout *Layout) (cost float64, ok bool)
	TotalCost(ngrams []MappedBigram, totalWeight float64, layout *Layout) (cost float64, message string)
}

// TrigramMetric scores mapped trigrams.
type TrigramMetric interface {
	Name() string
	IndividualCost(k1, k2, k3 LayerKey, weight, totalWeight float64, layout *Layout) (cost float64, ok bool)
	TotalCost(ngrams []MappedTrigram, totalWeight float64, layout *Layout) (cost float64, message string)
}

// sumUnigramIndividual sums IndividualCost over every mapped unigram, for
// metrics whose TotalCost is purely the sum of independent per-ngram costs.
func sumUnigramIndividual(m UnigramMetric, ngrams []MappedUnigram, totalWeight float64, layout *Layout) float64 {
	var total float64
	for _, ng := range ngrams {
		k := layout.LayerKeyAt(ng.Key)
		if c, ok := m.IndividualCost(k, ng.Weight, totalWeight, layout); ok {
			total += c
		}
	}
	return total
}

func sumBigramIndividual(m BigramMetric, ngrams []MappedBigram, totalWeight float64, layout *Layout) float64 {
	var total float64
	for _, ng := range ngrams {
		k1 := layout.LayerKeyAt(ng.Keys[0])
		k2 := layout.LayerKeyAt(ng.Keys[1])
		if c, ok := m.IndividualCost(k1, k2, ng.Weight, totalWeight, layout); ok {
			total += c
		}
	}
	return total
}

func sumTrigramIndividual(m TrigramMetric, ngrams []MappedTrigram, totalWeight float64, layout *Layout) float64 {
	var total float64
	for _, ng := range ngrams {
		k1 := layout.LayerKeyAt(ng.Keys[0])
		k2 := layout.LayerKeyAt(ng.Keys[1])
		k3 := layout.LayerKeyAt(ng.Keys[2])
		if c, ok := m.IndividualCost(k1, k2, k3, ng.Weight, totalWeight, layout); ok {
			total += c
		}
	}
	return total
}

func totalUnigramWeight(ngrams []MappedUnigram) float64 {
	var t float64
	for _, ng := range ngrams {
		t += ng.Weight
	}
	return t
}

func totalBigramWeight(ngrams []MappedBigram) float64 {
	var t float64
	for _, ng := range ngrams {
		t += ng.Weight
	}
	return t
}

func totalTrigramWeight(ngrams []MappedTrigram) float64 {
	var t float64
	for _, ng := range ngrams {
		t += ng.Weight
	}
	return t
}

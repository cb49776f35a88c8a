package keycraft

// WeightedLayoutMetric pairs a LayoutMetric with its configured weight and
// normalization.
type WeightedLayoutMetric struct {
	Metric        LayoutMetric
	Weight        float64
	Normalization Normalization
}

// WeightedUnigramMetric pairs a UnigramMetric with its configured weight and
// normalization.
type WeightedUnigramMetric struct {
	Metric        UnigramMetric
	Weight        float64
	Normalization Normalization
}

// WeightedBigramMetric pairs a BigramMetric with its configured weight and
// normalization.
type WeightedBigramMetric struct {
	Metric        BigramMetric
	Weight        float64
	Normalization Normalization
}

// WeightedTrigramMetric pairs a TrigramMetric with its configured weight and
// normalization.
type WeightedTrigramMetric struct {
	Metric        TrigramMetric
	Weight        float64
	Normalization Normalization
}

// Evaluator scores Layouts against a fixed set of weighted metrics, using an
// NgramMapper to resolve character ngrams into key activations.
type Evaluator struct {
	NgramMapper *NgramMapper

	LayoutMetrics  []WeightedLayoutMetric
	UnigramMetrics []WeightedUnigramMetric
	BigramMetrics  []WeightedBigramMetric
	TrigramMetrics []WeightedTrigramMetric
}

// NewEvaluator builds an Evaluator from an NgramMapper and its metric sets.
func NewEvaluator(mapper *NgramMapper, layoutMetrics []WeightedLayoutMetric, unigramMetrics []WeightedUnigramMetric, bigramMetrics []WeightedBigramMetric, trigramMetrics []WeightedTrigramMetric) *Evaluator {
	return &Evaluator{
		NgramMapper:    mapper,
		LayoutMetrics:  layoutMetrics,
		UnigramMetrics: unigramMetrics,
		BigramMetrics:  bigramMetrics,
		TrigramMetrics: trigramMetrics,
	}
}

// EvaluateLayout scores layout against every configured metric, returning
// exactly four MetricResults in family order: layout, unigram, bigram,
// trigram.
func (e *Evaluator) EvaluateLayout(layout *Layout) []MetricResults {
	mapped := e.NgramMapper.Map(layout)

	return []MetricResults{
		e.evaluateLayoutMetrics(layout),
		e.evaluateUnigramMetrics(mapped, layout),
		e.evaluateBigramMetrics(mapped, layout),
		e.evaluateTrigramMetrics(mapped, layout),
	}
}

// evaluateLayoutMetrics scores metrics that look at the whole Layout rather
// than at mapped ngrams; found/not-found weight is fixed at 1.0/0.0 since
// there is no lookup miss concept for this family.
func (e *Evaluator) evaluateLayoutMetrics(layout *Layout) MetricResults {
	costs := make([]MetricResult, 0, len(e.LayoutMetrics))
	for _, wm := range e.LayoutMetrics {
		cost, msg := wm.Metric.TotalCost(layout)
		costs = append(costs, MetricResult{
			Name:          wm.Metric.Name(),
			Cost:          cost,
			Weight:        wm.Weight,
			Normalization: wm.Normalization,
			Message:       msg,
		})
	}
	return MetricResults{
		MetricType:     LayoutFamily,
		FoundWeight:    1.0,
		NotFoundWeight: 0.0,
		MetricCosts:    costs,
	}
}

func (e *Evaluator) evaluateUnigramMetrics(mapped MappedNgrams, layout *Layout) MetricResults {
	total := totalUnigramWeight(mapped.Unigrams)
	costs := make([]MetricResult, 0, len(e.UnigramMetrics))
	for _, wm := range e.UnigramMetrics {
		cost, msg := wm.Metric.TotalCost(mapped.Unigrams, total, layout)
		costs = append(costs, MetricResult{
			Name:          wm.Metric.Name(),
			Cost:          cost,
			Weight:        wm.Weight,
			Normalization: wm.Normalization,
			Message:       msg,
		})
	}
	return MetricResults{
		MetricType:     UnigramFamily,
		FoundWeight:    mapped.UnigramsFoundWeight,
		NotFoundWeight: mapped.UnigramsNotFoundWeight,
		MetricCosts:    costs,
	}
}

func (e *Evaluator) evaluateBigramMetrics(mapped MappedNgrams, layout *Layout) MetricResults {
	total := totalBigramWeight(mapped.Bigrams)
	costs := make([]MetricResult, 0, len(e.BigramMetrics))
	for _, wm := range e.BigramMetrics {
		cost, msg := wm.Metric.TotalCost(mapped.Bigrams, total, layout)
		costs = append(costs, MetricResult{
			Name:          wm.Metric.Name(),
			Cost:          cost,
			Weight:        wm.Weight,
			Normalization: wm.Normalization,
			Message:       msg,
		})
	}
	return MetricResults{
		MetricType:     BigramFamily,
		FoundWeight:    mapped.BigramsFoundWeight,
		NotFoundWeight: mapped.BigramsNotFoundWeight,
		MetricCosts:    costs,
	}
}

func (e *Evaluator) evaluateTrigramMetrics(mapped MappedNgrams, layout *Layout) MetricResults {
	total := totalTrigramWeight(mapped.Trigrams)
	costs := make([]MetricResult, 0, len(e.TrigramMetrics))
	for _, wm := range e.TrigramMetrics {
		cost, msg := wm.Metric.TotalCost(mapped.Trigrams, total, layout)
		costs = append(costs, MetricResult{
			Name:          wm.Metric.Name(),
			Cost:          cost,
			Weight:        wm.Weight,
			Normalization: wm.Normalization,
			Message:       msg,
		})
	}
	return MetricResults{
		MetricType:     TrigramFamily,
		FoundWeight:    mapped.TrigramsFoundWeight,
		NotFoundWeight: mapped.TrigramsNotFoundWeight,
		MetricCosts:    costs,
	}
}

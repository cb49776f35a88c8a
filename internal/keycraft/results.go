package keycraft

import (
	"fmt"
	"io"
)

// NormalizationKind selects how a metric's raw cost is turned into a
// comparable contribution to the total.
type NormalizationKind int

const (
	// Fixed divides the raw cost by a constant.
	Fixed NormalizationKind = iota
	// WeightFound divides by (constant * family.found_weight).
	WeightFound
	// WeightAll divides by (constant * (family.found_weight + family.not_found_weight)).
	WeightAll
)

// Normalization pairs a NormalizationKind with its constant.
type Normalization struct {
	Kind  NormalizationKind
	Value float64
}

// MetricType names the four metric families.
type MetricType int

const (
	LayoutFamily MetricType = iota
	UnigramFamily
	BigramFamily
	TrigramFamily
)

func (t MetricType) String() string {
	switch t {
	case LayoutFamily:
		return "layout"
	case UnigramFamily:
		return "unigram"
	case BigramFamily:
		return "bigram"
	case TrigramFamily:
		return "trigram"
	default:
		return "unknown"
	}
}

// MetricResult is one metric's contribution: its raw cost, configured
// weight and normalization, and an optional diagnostic message.
type MetricResult struct {
	Name          string
	Cost          float64
	Weight        float64
	Normalization Normalization
	Message       string
}

// MetricResults is one family's full set of metric results, plus the
// found/not-found weight the ngram mapper reported for that family.
type MetricResults struct {
	MetricType      MetricType
	FoundWeight     float64
	NotFoundWeight  float64
	MetricCosts     []MetricResult
}

func normalizeValue(val float64, n Normalization, foundWeight, notFoundWeight float64) float64 {
	var denom float64
	switch n.Kind {
	case Fixed:
		denom = n.Value
	case WeightFound:
		denom = n.Value * foundWeight
	case WeightAll:
		denom = n.Value * (foundWeight + notFoundWeight)
	}
	if denom == 0 {
		return 0
	}
	return val / denom
}

func (r *MetricResults) computeMetricCost(mc MetricResult, normalize, weight bool) float64 {
	cost := mc.Cost
	if weight {
		cost = mc.Weight * mc.Cost
	}
	if normalize {
		return normalizeValue(cost, mc.Normalization, r.FoundWeight, r.NotFoundWeight)
	}
	return cost
}

func (r *MetricResults) aggregate(normalize, weight bool) float64 {
	var acc float64
	for _, mc := range r.MetricCosts {
		acc += r.computeMetricCost(mc, normalize, weight)
	}
	return acc
}

// TotalCost is the normalized, weighted sum of this family's metric costs.
func (r *MetricResults) TotalCost() float64 {
	return r.aggregate(true, true)
}

// UnnormalizedTotalCost is the weighted-but-unnormalized sum, useful for
// diagnostics.
func (r *MetricResults) UnnormalizedTotalCost() float64 {
	return r.aggregate(false, true)
}

// Print renders a human-readable breakdown of the family's metric costs.
func (r *MetricResults) Print(w io.Writer) {
	fmt.Fprintf(w, "%s metrics:\n", r.MetricType)
	if r.MetricType != LayoutFamily {
		total := r.FoundWeight + r.NotFoundWeight
		var pct float64
		if total > 0 {
			pct = 100 * r.NotFoundWeight / total
		}
		fmt.Fprintf(w, "  Not found: %.4f%% of %.4f\n", pct, total)
	}
	for _, mc := range r.MetricCosts {
		fmt.Fprintf(w, "  %9.4f (weighted: %9.4f) %-35s | %s\n",
			r.computeMetricCost(mc, true, false),
			r.computeMetricCost(mc, true, true),
			mc.Name,
			mc.Message,
		)
	}
}

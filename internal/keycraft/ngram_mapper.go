package keycraft

// MappedUnigram is one resolved unigram activation and its weight.
type MappedUnigram struct {
	Key    LayerKeyIndex
	Weight float64
}

// MappedBigram is one resolved bigram activation pair and its weight.
type MappedBigram struct {
	Keys   [2]LayerKeyIndex
	Weight float64
}

// MappedTrigram is one resolved trigram activation triple and its weight.
type MappedTrigram struct {
	Keys   [3]LayerKeyIndex
	Weight float64
}

// MappedNgrams is the output of one NgramMapper pass over one Layout.
type MappedNgrams struct {
	Unigrams             []MappedUnigram
	UnigramsFoundWeight  float64
	UnigramsNotFoundWeight float64

	Bigrams             []MappedBigram
	BigramsFoundWeight  float64
	BigramsNotFoundWeight float64

	Trigrams             []MappedTrigram
	TrigramsFoundWeight  float64
	TrigramsNotFoundWeight float64
}

// SplitModifiersConfig parameterizes modifier splitting (NgramMapper Pass 2).
type SplitModifiersConfig struct {
	Enabled          bool
	SameKeyModFactor float64
}

// SecondaryBigramsConfig parameterizes synthesizing bigrams from trigrams
// (NgramMapper Pass 3).
type SecondaryBigramsConfig struct {
	Enabled            bool
	FactorNoHandswitch float64
	FactorHandswitch   float64
	// ExcludeModifierFirst skips secondary bigrams whose first key is a
	// modifier. Fixed per config rather than hardcoded, per the open
	// question on secondary-bigram exclusions.
	ExcludeModifierFirst bool
}

// IncreaseCommonBigramsConfig parameterizes common-bigram amplification
// (NgramMapper Pass 4). Distinct from IncreaseCommonConfig (used by
// Ngrams.IncreaseCommon) because the mapper also gates on a minimum total
// weight before amplifying at all.
type IncreaseCommonBigramsConfig struct {
	Enabled              bool
	CriticalFraction     float64
	Factor               float64
	TotalWeightThreshold float64
}

// NgramMapperConfig bundles all of NgramMapper's tunables.
type NgramMapperConfig struct {
	SplitModifiers               SplitModifiersConfig
	SecondaryBigramsFromTrigrams SecondaryBigramsConfig
	IncreaseCommonBigrams        IncreaseCommonBigramsConfig
	ExcludeLineBreaks            bool
}

// NgramMapper resolves character ngrams against a Layout into weighted
// key-activation ngrams.
type NgramMapper struct {
	Unigrams *Ngrams[Unigram]
	Bigrams  *Ngrams[Bigram]
	Trigrams *Ngrams[Trigram]
	Config   NgramMapperConfig
}

// NewNgramMapper constructs a mapper over the given char ngrams.
func NewNgramMapper(unigrams *Ngrams[Unigram], bigrams *Ngrams[Bigram], trigrams *Ngrams[Trigram], config NgramMapperConfig) *NgramMapper {
	return &NgramMapper{Unigrams: unigrams, Bigrams: bigrams, Trigrams: trigrams, Config: config}
}

const lineBreak = '\n'

// Map resolves the mapper's char ngrams against layout, performing direct
// mapping, modifier splitting, secondary-bigram synthesis, and common-bigram
// amplification in that order.
func (m *NgramMapper) Map(layout *Layout) MappedNgrams {
	unigramKeys, unigramsNotFound := m.mapUnigrams(layout)

	// Trigrams are mapped before bigrams so secondary bigrams can be added
	// to the bigram stream below.
	trigramKeys, trigramsNotFound := m.directMapTrigrams(layout)
	splitTrigrams := trigramKeys
	if m.Config.SplitModifiers.Enabled {
		splitTrigrams = m.splitTrigramModifiers(trigramKeys, layout)
	}
	trigramsFound := sumWeights3(splitTrigrams)

	bigramKeys, bigramsNotFound := m.directMapBigrams(layout)
	if m.Config.SplitModifiers.Enabled {
		bigramKeys = m.splitBigramModifiers(bigramKeys, layout)
	}
	bigramKeys = m.addSecondaryBigramsFromTrigrams(bigramKeys, splitTrigrams, layout)
	bigramKeys = m.increaseCommonBigrams(bigramKeys)
	bigramsFound := sumWeights2(bigramKeys)

	splitUnigrams := unigramKeys
	if m.Config.SplitModifiers.Enabled {
		splitUnigrams = m.splitUnigramModifiers(unigramKeys, layout)
	}
	unigramsFound := sumWeights1(splitUnigrams)

	return MappedNgrams{
		Unigrams:               toMappedUnigrams(splitUnigrams),
		UnigramsFoundWeight:    unigramsFound,
		UnigramsNotFoundWeight: unigramsNotFound,
		Bigrams:                toMappedBigrams(bigramKeys),
		BigramsFoundWeight:     bigramsFound,
		BigramsNotFoundWeight:  bigramsNotFound,
		Trigrams:               toMappedTrigrams(splitTrigrams),
		TrigramsFoundWeight:    trigramsFound,
		TrigramsNotFoundWeight: trigramsNotFound,
	}
}

type weightedKey1 struct {
	k LayerKeyIndex
	w float64
}
type weightedKey2 struct {
	k [2]LayerKeyIndex
	w float64
}
type weightedKey3 struct {
	k [3]LayerKeyIndex
	w float64
}

func sumWeights1(xs []weightedKey1) float64 {
	var s float64
	for _, x := range xs {
		s += x.w
	}
	return s
}
func sumWeights2(xs []weightedKey2) float64 {
	var s float64
	for _, x := range xs {
		s += x.w
	}
	return s
}
func sumWeights3(xs []weightedKey3) float64 {
	var s float64
	for _, x := range xs {
		s += x.w
	}
	return s
}

func toMappedUnigrams(xs []weightedKey1) []MappedUnigram {
	out := make([]MappedUnigram, len(xs))
	for i, x := range xs {
		out[i] = MappedUnigram{Key: x.k, Weight: x.w}
	}
	return out
}
func toMappedBigrams(xs []weightedKey2) []MappedBigram {
	out := make([]MappedBigram, len(xs))
	for i, x := range xs {
		out[i] = MappedBigram{Keys: x.k, Weight: x.w}
	}
	return out
}
func toMappedTrigrams(xs []weightedKey3) []MappedTrigram {
	out := make([]MappedTrigram, len(xs))
	for i, x := range xs {
		out[i] = MappedTrigram{Keys: x.k, Weight: x.w}
	}
	return out
}

func isLineBreakPair(c1, c2 rune) bool {
	return c1 == lineBreak && c2 != lineBreak
}

func (m *NgramMapper) mapUnigrams(layout *Layout) ([]weightedKey1, float64) {
	out := make([]weightedKey1, 0, len(m.Unigrams.Grams))
	var notFound float64
	for c, w := range m.Unigrams.Grams {
		idx, ok := layout.GetLayerKeyIndexForChar(c)
		if !ok {
			notFound += w
			continue
		}
		out = append(out, weightedKey1{idx, w})
	}
	return out, notFound
}

func (m *NgramMapper) directMapBigrams(layout *Layout) ([]weightedKey2, float64) {
	out := make([]weightedKey2, 0, len(m.Bigrams.Grams))
	var notFound float64
	for c, w := range m.Bigrams.Grams {
		if m.Config.ExcludeLineBreaks && isLineBreakPair(c[0], c[1]) {
			continue
		}
		idx1, ok1 := layout.GetLayerKeyIndexForChar(c[0])
		idx2, ok2 := layout.GetLayerKeyIndexForChar(c[1])
		if !ok1 || !ok2 {
			notFound += w
			continue
		}
		out = append(out, weightedKey2{[2]LayerKeyIndex{idx1, idx2}, w})
	}
	return out, notFound
}

func (m *NgramMapper) directMapTrigrams(layout *Layout) ([]weightedKey3, float64) {
	out := make([]weightedKey3, 0, len(m.Trigrams.Grams))
	var notFound float64
	for c, w := range m.Trigrams.Grams {
		if m.Config.ExcludeLineBreaks && (isLineBreakPair(c[0], c[1]) || isLineBreakPair(c[1], c[2])) {
			continue
		}
		idx1, ok1 := layout.GetLayerKeyIndexForChar(c[0])
		idx2, ok2 := layout.GetLayerKeyIndexForChar(c[1])
		idx3, ok3 := layout.GetLayerKeyIndexForChar(c[2])
		if !ok1 || !ok2 || !ok3 {
			notFound += w
			continue
		}
		out = append(out, weightedKey3{[3]LayerKeyIndex{idx1, idx2, idx3}, w})
	}
	return out, notFound
}

// one is the base/modifier combinator: the base key plus each modifier
// independently, all at weight w.
func one(layout *Layout, base LayerKeyIndex, mods []LayerKeyIndex, w float64) []weightedKey1 {
	out := make([]weightedKey1, 0, 1+len(mods))
	out = append(out, weightedKey1{base, w})
	for _, mo := range mods {
		out = append(out, weightedKey1{mo, w})
	}
	return out
}

// two emits all (mod_i, base) pairs at weight w, plus all distinct
// (mod_i, mod_j) pairs (both orders) at weight m*w.
func two(base LayerKeyIndex, mods []LayerKeyIndex, w, m float64) []weightedKey2 {
	out := make([]weightedKey2, 0, 2*len(mods))
	for i, m1 := range mods {
		out = append(out, weightedKey2{[2]LayerKeyIndex{m1, base}, w})
		for _, m2 := range mods[i+1:] {
			if m1 != m2 {
				out = append(out, weightedKey2{[2]LayerKeyIndex{m1, m2}, m * w})
				out = append(out, weightedKey2{[2]LayerKeyIndex{m2, m1}, m * w})
			}
		}
	}
	return out
}

// three is the triple analogue of two: (mod_i, mod_j, base) triples (both
// orders) at weight m*w for keys with 2+ modifiers, plus every ordering of
// three distinct modifiers at m*m*w for keys with 3+ modifiers.
func three(base LayerKeyIndex, mods []LayerKeyIndex, w, m float64) []weightedKey3 {
	var out []weightedKey3
	for i, m1 := range mods {
		for j := i + 1; j < len(mods); j++ {
			m2 := mods[j]
			out = append(out, weightedKey3{[3]LayerKeyIndex{m1, m2, base}, m * w})
			out = append(out, weightedKey3{[3]LayerKeyIndex{m2, m1, base}, m * w})

			for _, m3 := range mods[j+1:] {
				mm := m * m * w
				out = append(out,
					weightedKey3{[3]LayerKeyIndex{m1, m2, m3}, mm},
					weightedKey3{[3]LayerKeyIndex{m1, m3, m2}, mm},
					weightedKey3{[3]LayerKeyIndex{m2, m1, m3}, mm},
					weightedKey3{[3]LayerKeyIndex{m2, m3, m1}, mm},
					weightedKey3{[3]LayerKeyIndex{m3, m1, m2}, mm},
					weightedKey3{[3]LayerKeyIndex{m3, m2, m1}, mm},
				)
			}
		}
	}
	return out
}

func (m *NgramMapper) splitUnigramModifiers(keys []weightedKey1, layout *Layout) []weightedKey1 {
	out := make([]weightedKey1, 0, len(keys))
	for _, x := range keys {
		base, mods := layout.ResolveModifiers(x.k)
		out = append(out, one(layout, base, mods, x.w)...)
	}
	return out
}

// splitBigramModifiers implements spec.md S4: the base bigram, cross
// mod/base pairs at 0.5w/2w, cross mod/mod pairs at w, and same-key
// modifier interactions at the configured factor.
func (m *NgramMapper) splitBigramModifiers(keys []weightedKey2, layout *Layout) []weightedKey2 {
	factor := m.Config.SplitModifiers.SameKeyModFactor
	out := make([]weightedKey2, 0, 2*len(keys))

	for _, x := range keys {
		base1, mods1 := layout.ResolveModifiers(x.k[0])
		base2, mods2 := layout.ResolveModifiers(x.k[1])
		w := x.w

		out = append(out, weightedKey2{[2]LayerKeyIndex{base1, base2}, w})

		for _, mod1 := range mods1 {
			out = append(out, weightedKey2{[2]LayerKeyIndex{mod1, base2}, 0.5 * w})
			for _, mod2 := range mods2 {
				if mod1 != mod2 {
					out = append(out, weightedKey2{[2]LayerKeyIndex{mod1, mod2}, w})
				}
			}
		}
		for _, mod2 := range mods2 {
			out = append(out, weightedKey2{[2]LayerKeyIndex{base1, mod2}, 2 * w})
		}

		out = append(out, two(base1, mods1, w, factor)...)
		out = append(out, two(base2, mods2, w, factor)...)
	}
	return out
}

// splitTrigramModifiers enumerates the one-one-one, two-one, one-two, and
// three-position combinations across the three trigram positions, skipping
// any combination with two consecutive equal keys.
func (m *NgramMapper) splitTrigramModifiers(keys []weightedKey3, layout *Layout) []weightedKey3 {
	factor := m.Config.SplitModifiers.SameKeyModFactor
	out := make([]weightedKey3, 0, 4*len(keys))

	for _, x := range keys {
		base1, mods1 := layout.ResolveModifiers(x.k[0])
		base2, mods2 := layout.ResolveModifiers(x.k[1])
		base3, mods3 := layout.ResolveModifiers(x.k[2])
		w := x.w

		ones1 := one(layout, base1, mods1, w)
		ones2 := one(layout, base2, mods2, w)
		ones3 := one(layout, base3, mods3, w)

		// one-one-one
		for _, e1 := range ones1 {
			for _, e2 := range ones2 {
				if e1.k == e2.k {
					continue
				}
				for _, e3 := range ones3 {
					if e2.k == e3.k {
						continue
					}
					out = append(out, weightedKey3{[3]LayerKeyIndex{e1.k, e2.k, e3.k}, w})
				}
			}
		}

		// two of first, one of second
		for _, e12 := range two(base1, mods1, w, factor) {
			for _, e3 := range ones2 {
				if e12.k[0] == e12.k[1] || e12.k[1] == e3.k {
					continue
				}
				out = append(out, weightedKey3{[3]LayerKeyIndex{e12.k[0], e12.k[1], e3.k}, e12.w})
			}
		}

		// one of first, two of second
		for _, e1 := range ones1 {
			for _, e23 := range two(base2, mods2, w, factor) {
				if e1.k == e23.k[0] || e23.k[0] == e23.k[1] {
					continue
				}
				out = append(out, weightedKey3{[3]LayerKeyIndex{e1.k, e23.k[0], e23.k[1]}, e23.w})
			}
		}

		// two of second, one of third
		for _, e12 := range two(base2, mods2, w, factor) {
			for _, e3 := range ones3 {
				if e12.k[0] == e12.k[1] || e12.k[1] == e3.k {
					continue
				}
				out = append(out, weightedKey3{[3]LayerKeyIndex{e12.k[0], e12.k[1], e3.k}, e12.w})
			}
		}

		// one of second, two of third
		for _, e1 := range ones2 {
			for _, e23 := range two(base3, mods3, w, factor) {
				if e1.k == e23.k[0] || e23.k[0] == e23.k[1] {
					continue
				}
				out = append(out, weightedKey3{[3]LayerKeyIndex{e1.k, e23.k[0], e23.k[1]}, e23.w})
			}
		}

		// three-position concentrations from each single position
		out = append(out, three(base1, mods1, w, factor)...)
		out = append(out, three(base2, mods2, w, factor)...)
		out = append(out, three(base3, mods3, w, factor)...)
	}
	return out
}

// addSecondaryBigramsFromTrigrams appends, for every mapped trigram
// (k1,k2,k3,w) with hand(k1)==hand(k3) (after modifier splitting, when that
// is enabled), a bigram (k1,k3) weighted by FactorHandswitch, or by
// FactorNoHandswitch when k2 is on the same hand. Trigrams whose k1 is a
// modifier are skipped when ExcludeModifierFirst is set.
func (m *NgramMapper) addSecondaryBigramsFromTrigrams(bigramKeys []weightedKey2, trigramKeys []weightedKey3, layout *Layout) []weightedKey2 {
	cfg := m.Config.SecondaryBigramsFromTrigrams
	if !cfg.Enabled {
		return bigramKeys
	}

	agg := make(map[[2]LayerKeyIndex]float64, len(trigramKeys))
	for _, x := range trigramKeys {
		lk1 := layout.LayerKeyAt(x.k[0])
		lk2 := layout.LayerKeyAt(x.k[1])
		lk3 := layout.LayerKeyAt(x.k[2])

		key1 := layout.Keyboard.Key(lk1.Key)
		key2 := layout.Keyboard.Key(lk2.Key)
		key3 := layout.Keyboard.Key(lk3.Key)

		if key1.Hand != key3.Hand {
			continue
		}
		if cfg.ExcludeModifierFirst && lk1.IsModifier {
			continue
		}

		factor := cfg.FactorHandswitch
		if key1.Hand == key2.Hand {
			factor = cfg.FactorNoHandswitch
		}
		agg[[2]LayerKeyIndex{lk1.Index, lk3.Index}] += x.w * factor
	}

	out := make([]weightedKey2, len(bigramKeys), len(bigramKeys)+len(agg))
	copy(out, bigramKeys)
	for k, w := range agg {
		out = append(out, weightedKey2{k, w})
	}
	return out
}

// increaseCommonBigrams aggregates duplicate bigram tuples by summing
// weight, then boosts entries above the configured critical fraction.
func (m *NgramMapper) increaseCommonBigrams(keys []weightedKey2) []weightedKey2 {
	cfg := m.Config.IncreaseCommonBigrams

	agg := make(map[[2]LayerKeyIndex]float64, len(keys))
	for _, x := range keys {
		agg[x.k] += x.w
	}

	if cfg.Enabled {
		var total float64
		for _, w := range agg {
			total += w
		}
		critical := cfg.CriticalFraction * total
		if total > cfg.TotalWeightThreshold {
			for k, w := range agg {
				if w > critical {
					agg[k] = w + (w-critical)*(cfg.Factor-1)
				}
			}
		}
	}

	out := make([]weightedKey2, 0, len(agg))
	for k, w := range agg {
		out = append(out, weightedKey2{k, w})
	}
	return out
}

package keycraft

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

// Unigram, Bigram and Trigram are the three ngram shapes Ngrams[T] is
// instantiated over.
type Unigram = rune
type Bigram = [2]rune
type Trigram = [3]rune

// Ngrams holds weighted ngram frequencies for one of the three shapes and
// the transforms the mapper and CLI tooling apply to them. runesOf
// decomposes an ngram of shape T into the runes it contains, which is all
// exclude_char needs to know about T's shape.
type Ngrams[T comparable] struct {
	Grams       map[T]float64
	TotalWeight float64

	runesOf func(T) []rune
}

func newNgrams[T comparable](runesOf func(T) []rune) *Ngrams[T] {
	return &Ngrams[T]{
		Grams:   make(map[T]float64),
		runesOf: runesOf,
	}
}

// NewUnigrams returns an empty Ngrams[Unigram].
func NewUnigrams() *Ngrams[Unigram] {
	return newNgrams(func(u Unigram) []rune { return []rune{u} })
}

// NewBigrams returns an empty Ngrams[Bigram].
func NewBigrams() *Ngrams[Bigram] {
	return newNgrams(func(b Bigram) []rune { return []rune{b[0], b[1]} })
}

// NewTrigrams returns an empty Ngrams[Trigram].
func NewTrigrams() *Ngrams[Trigram] {
	return newNgrams(func(t Trigram) []rune { return []rune{t[0], t[1], t[2]} })
}

// recomputeTotal recomputes TotalWeight from Grams, restoring the
// total_weight == sum(grams) invariant after an in-place mutation.
func (n *Ngrams[T]) recomputeTotal() {
	var total float64
	for _, w := range n.Grams {
		total += w
	}
	n.TotalWeight = total
}

// Tops retains the shortest prefix (sorted by weight descending) whose
// cumulative weight reaches fraction*TotalWeight, so the entry that crosses
// the threshold is kept, and recomputes TotalWeight.
func (n *Ngrams[T]) Tops(fraction float64) *Ngrams[T] {
	target := fraction * n.TotalWeight

	type entry struct {
		key T
		w   float64
	}
	entries := make([]entry, 0, len(n.Grams))
	for k, w := range n.Grams {
		entries = append(entries, entry{k, w})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].w > entries[j].w })

	out := newNgrams(n.runesOf)
	var cumulative float64
	for _, e := range entries {
		if cumulative >= target {
			break
		}
		out.Grams[e.key] = e.w
		cumulative += e.w
	}
	out.recomputeTotal()
	return out
}

// ExcludeChar drops every ngram containing c anywhere, recomputing
// TotalWeight. Applying it twice with the same c is idempotent.
func (n *Ngrams[T]) ExcludeChar(c rune) *Ngrams[T] {
	out := newNgrams(n.runesOf)
	for k, w := range n.Grams {
		contains := false
		for _, r := range n.runesOf(k) {
			if r == c {
				contains = true
				break
			}
		}
		if !contains {
			out.Grams[k] = w
		}
	}
	out.recomputeTotal()
	return out
}

// IncreaseCommonConfig parameterizes Ngrams.IncreaseCommon.
type IncreaseCommonConfig struct {
	Enabled          bool
	CriticalFraction float64
	Factor           float64
}

// IncreaseCommon boosts entries whose weight exceeds
// CriticalFraction*TotalWeight by a linear factor, in place, and recomputes
// TotalWeight. A no-op when cfg.Enabled is false.
func (n *Ngrams[T]) IncreaseCommon(cfg IncreaseCommonConfig) {
	if !cfg.Enabled {
		return
	}
	critical := cfg.CriticalFraction * n.TotalWeight
	for k, w := range n.Grams {
		if w > critical {
			n.Grams[k] = w + (w-critical)*(cfg.Factor-1)
		}
	}
	n.recomputeTotal()
}

// graphemeRunes splits s into one rune per user-perceived character
// (grapheme cluster), taking a cluster's first rune, so a combining-mark
// sequence in a corpus file counts as one ngram position rather than several.
func graphemeRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Runes()
		if len(cluster) > 0 {
			out = append(out, cluster[0])
		}
	}
	return out
}

func processEscapes(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// UnigramsFromFrequenciesText parses lines of the form "<weight> <ngram>",
// summing duplicate entries. See the ngram frequency file format.
func UnigramsFromFrequenciesText(data string) (*Ngrams[Unigram], error) {
	n := NewUnigrams()
	if err := parseFrequencies(data, 1, func(chars []rune, w float64) {
		n.Grams[chars[0]] += w
		n.TotalWeight += w
	}); err != nil {
		return nil, err
	}
	return n, nil
}

// BigramsFromFrequenciesText parses a 2-grams.txt style file.
func BigramsFromFrequenciesText(data string) (*Ngrams[Bigram], error) {
	n := NewBigrams()
	if err := parseFrequencies(data, 2, func(chars []rune, w float64) {
		n.Grams[Bigram{chars[0], chars[1]}] += w
		n.TotalWeight += w
	}); err != nil {
		return nil, err
	}
	return n, nil
}

// TrigramsFromFrequenciesText parses a 3-grams.txt style file.
func TrigramsFromFrequenciesText(data string) (*Ngrams[Trigram], error) {
	n := NewTrigrams()
	if err := parseFrequencies(data, 3, func(chars []rune, w float64) {
		n.Grams[Trigram{chars[0], chars[1], chars[2]}] += w
		n.TotalWeight += w
	}); err != nil {
		return nil, err
	}
	return n, nil
}

func parseFrequencies(data string, arity int, add func(chars []rune, w float64)) error {
	for lineNo, line := range strings.Split(data, "\n") {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: expected '<weight> <ngram>', got %q", lineNo+1, line)
		}
		weight, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid weight %q: %w", lineNo+1, parts[0], err)
		}
		chars := graphemeRunes(processEscapes(parts[1]))
		if len(chars) != arity {
			continue
		}
		add(chars, weight)
	}
	return nil
}

// UnigramsFromText slides a window of size 1 over text, incrementing by 1
// per occurrence. Whitespace is retained; line-break filtering is an
// orthogonal mapper concern.
func UnigramsFromText(text string) *Ngrams[Unigram] {
	n := NewUnigrams()
	for _, r := range text {
		n.Grams[r]++
		n.TotalWeight++
	}
	return n
}

// BigramsFromText slides a window of size 2 over text.
func BigramsFromText(text string) *Ngrams[Bigram] {
	n := NewBigrams()
	runes := []rune(text)
	for i := 0; i+1 < len(runes); i++ {
		b := Bigram{runes[i], runes[i+1]}
		n.Grams[b]++
		n.TotalWeight++
	}
	return n
}

// TrigramsFromText slides a window of size 3 over text.
func TrigramsFromText(text string) *Ngrams[Trigram] {
	n := NewTrigrams()
	runes := []rune(text)
	for i := 0; i+2 < len(runes); i++ {
		t := Trigram{runes[i], runes[i+1], runes[i+2]}
		n.Grams[t]++
		n.TotalWeight++
	}
	return n
}

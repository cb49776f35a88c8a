// Package keycraft provides the evaluation engine for keyboard layouts:
// a layered layout model, an ngram mapper that resolves character ngrams
// into weighted key-activation sequences, and a configurable set of
// ergonomic metrics used to score a layout.
package keycraft

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// LayerKeyIndex is a stable index into a Layout's LayerKeys slice.
type LayerKeyIndex = int

// LayerKey is one (layer, key, symbol) activation. Layouts own their
// LayerKeys in a flat arena; modifiers reference other LayerKeys by index
// rather than by pointer, so a LayerKey stays trivially copyable and a
// Layout has no cyclic ownership.
type LayerKey struct {
	Index      LayerKeyIndex
	Layer      int
	Key        int
	Symbol     rune
	Modifiers  []LayerKeyIndex
	IsFixed    bool
	IsModifier bool
}

// Layout is a concrete assignment of symbols to the keys of a Keyboard,
// produced by a LayoutGenerator from a permutation string. Short-lived: one
// Layout typically lives for a single evaluation cycle.
type Layout struct {
	Name       string
	Keyboard   *Keyboard
	LayerKeys  []LayerKey
	KeyLayers  [][]LayerKeyIndex // per key index: layer -> LayerKeyIndex
	LayerCosts []float64

	symbolIndex map[rune]LayerKeyIndex
}

// newLayout builds a Layout from already-populated layer keys and key-layer
// tables, then builds the symbol index. Called by LayoutGenerator.
func newLayout(name string, kb *Keyboard, layerKeys []LayerKey, keyLayers [][]LayerKeyIndex, layerCosts []float64) *Layout {
	l := &Layout{
		Name:       name,
		Keyboard:   kb,
		LayerKeys:  layerKeys,
		KeyLayers:  keyLayers,
		LayerCosts: layerCosts,
	}
	l.buildSymbolIndex()
	return l
}

// buildSymbolIndex maps each symbol to the activation minimizing
// key.cost + 3*layer_cost[layer], ties broken toward the lower layer.
func (l *Layout) buildSymbolIndex() {
	l.symbolIndex = make(map[rune]LayerKeyIndex, len(l.LayerKeys))
	entryCost := make(map[rune]float64, len(l.LayerKeys))

	for _, lk := range l.LayerKeys {
		if lk.Symbol == 0 {
			continue
		}
		key := l.Keyboard.Key(lk.Key)
		cost := key.Cost + 3*l.LayerCosts[lk.Layer]

		existingIdx, seen := l.symbolIndex[lk.Symbol]
		if !seen {
			l.symbolIndex[lk.Symbol] = lk.Index
			entryCost[lk.Symbol] = cost
			continue
		}
		existing := l.LayerKeys[existingIdx]
		existingCost := entryCost[lk.Symbol]

		if cost < existingCost || (cost == existingCost && lk.Layer < existing.Layer) {
			l.symbolIndex[lk.Symbol] = lk.Index
			entryCost[lk.Symbol] = cost
		}
	}
}

// LayerKeyAt returns the LayerKey at the given index.
func (l *Layout) LayerKeyAt(idx LayerKeyIndex) LayerKey {
	return l.LayerKeys[idx]
}

// GetLayerKeyIndexForChar returns the LayerKeyIndex of the symbol's best
// activation per the tie-break rule, and whether the symbol is present.
func (l *Layout) GetLayerKeyIndexForChar(c rune) (LayerKeyIndex, bool) {
	idx, ok := l.symbolIndex[c]
	return idx, ok
}

// GetLayerKeyForChar is a convenience wrapper around
// GetLayerKeyIndexForChar that returns the LayerKey itself.
func (l *Layout) GetLayerKeyForChar(c rune) (LayerKey, bool) {
	idx, ok := l.symbolIndex[c]
	if !ok {
		return LayerKey{}, false
	}
	return l.LayerKeys[idx], true
}

// GetBaseLayerKeyIndex returns the layer-0 LayerKeyIndex for the same key as
// the given LayerKey index.
func (l *Layout) GetBaseLayerKeyIndex(idx LayerKeyIndex) LayerKeyIndex {
	lk := l.LayerKeys[idx]
	return l.KeyLayers[lk.Key][0]
}

// ResolveModifiers splits a LayerKey into its base-layer activation plus the
// modifier LayerKeys needed to reach it.
func (l *Layout) ResolveModifiers(idx LayerKeyIndex) (base LayerKeyIndex, modifiers []LayerKeyIndex) {
	lk := l.LayerKeys[idx]
	return l.GetBaseLayerKeyIndex(idx), lk.Modifiers
}

// String renders the base layer of the layout, one row of symbols per
// physical row, in the keyboard's key-index order.
func (l *Layout) String() string {
	var sb strings.Builder
	row := -1
	for _, lk := range l.LayerKeys {
		if lk.Layer != 0 {
			continue
		}
		key := l.Keyboard.Key(lk.Key)
		if key.Position.Row != row {
			if row >= 0 {
				sb.WriteRune('\n')
			}
			row = key.Position.Row
		}
		sym := lk.Symbol
		if sym == 0 {
			sym = ' '
		}
		sb.WriteRune(sym)
		// Double-width symbols (e.g. CJK punctuation in some corpora) need
		// one fewer padding space to keep columns aligned.
		if runewidth.RuneWidth(sym) > 1 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString("  ")
		}
	}
	return sb.String()
}

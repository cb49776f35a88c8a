package keycraft

import (
	"fmt"
	"sort"
)

// BaseLayout is the template a LayoutGenerator permutes. It names, per key
// and per layer, the symbol the key holds; which keys/layers are fixed;
// which characters act as modifiers per non-base layer and hand; and the
// per-layer cost used by the symbol index tie-break rule.
type BaseLayout struct {
	Keyboard      *Keyboard
	Keys          [][]string        // per key index, per layer: symbol string (first rune wins)
	FixedKeys     []bool            // per key index
	FixedLayers   []bool            // per layer index; unused if GroupedLayers is set
	GroupedLayers int               // >0 selects GroupedLayoutGenerator semantics
	Modifiers     []map[Hand][]rune // per non-base layer (index 1..): hand -> modifier chars
	LayerCosts    []float64
}

// NumLayers returns the number of layers the template defines.
func (b *BaseLayout) NumLayers() int {
	if len(b.Keys) == 0 {
		return 0
	}
	return len(b.Keys[0])
}

// DuplicateCharsError reports a permutation string with repeated characters.
type DuplicateCharsError struct {
	Permutation string
	Duplicates  string
}

func (e *DuplicateCharsError) Error() string {
	return fmt.Sprintf("permutation %q contains duplicate characters: %q", e.Permutation, e.Duplicates)
}

// UnsupportedCharsError reports permutation characters absent from the template.
type UnsupportedCharsError struct {
	Unsupported string
}

func (e *UnsupportedCharsError) Error() string {
	return fmt.Sprintf("permutation contains characters not in the template: %q", e.Unsupported)
}

// MissingCharsError reports template characters absent from the permutation.
type MissingCharsError struct {
	Missing string
}

func (e *MissingCharsError) Error() string {
	return fmt.Sprintf("permutation is missing template characters: %q", e.Missing)
}

// WrongKeyNumberError reports a permutation whose length does not match the
// number of permutable key slots.
type WrongKeyNumberError struct {
	Have, Expected int
}

func (e *WrongKeyNumberError) Error() string {
	return fmt.Sprintf("permutation has %d characters, expected %d", e.Have, e.Expected)
}

// LayoutGenerator turns a permutation string into a concrete Layout against
// a fixed BaseLayout template.
type LayoutGenerator struct {
	Base *BaseLayout

	permutableKeys []int // key indices that are not fixed, in template traversal order
	permutableSet  map[rune]bool
}

// NewLayoutGenerator precomputes the permutable key set from the template.
func NewLayoutGenerator(base *BaseLayout) (*LayoutGenerator, error) {
	g := &LayoutGenerator{Base: base}
	g.permutableSet = make(map[rune]bool)

	for i, fixed := range base.FixedKeys {
		if fixed {
			continue
		}
		if len(base.Keys[i]) == 0 || len(base.Keys[i][0]) == 0 {
			continue
		}
		g.permutableKeys = append(g.permutableKeys, i)
		r := []rune(base.Keys[i][0])[0]
		g.permutableSet[r] = true
	}

	return g, nil
}

// PermutableKeys returns the template's permutable base-layer characters, in
// the order a valid permutation string must supply them.
func (g *LayoutGenerator) PermutableKeys() []rune {
	out := make([]rune, 0, len(g.permutableKeys))
	for _, ki := range g.permutableKeys {
		out = append(out, []rune(g.Base.Keys[ki][0])[0])
	}
	return out
}

// Generate validates the permutation and produces a concrete Layout. See
// the permutation string contract: whitespace is filtered, no duplicates,
// the multiset must equal exactly the template's permutable base-layer
// symbols.
func (g *LayoutGenerator) Generate(permutation string) (*Layout, error) {
	chars, err := g.validate(permutation)
	if err != nil {
		return nil, err
	}
	return g.generateUnchecked(chars)
}

func (g *LayoutGenerator) validate(permutation string) ([]rune, error) {
	filtered := make([]rune, 0, len(permutation))
	for _, r := range permutation {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		filtered = append(filtered, r)
	}

	seen := make(map[rune]bool, len(filtered))
	var dupes []rune
	for _, r := range filtered {
		if seen[r] {
			dupes = append(dupes, r)
		}
		seen[r] = true
	}
	if len(dupes) > 0 {
		return nil, &DuplicateCharsError{Permutation: permutation, Duplicates: string(dupes)}
	}

	var unsupported []rune
	for r := range seen {
		if !g.permutableSet[r] {
			unsupported = append(unsupported, r)
		}
	}
	if len(unsupported) > 0 {
		sort.Slice(unsupported, func(i, j int) bool { return unsupported[i] < unsupported[j] })
		return nil, &UnsupportedCharsError{Unsupported: string(unsupported)}
	}

	var missing []rune
	for r := range g.permutableSet {
		if !seen[r] {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, &MissingCharsError{Missing: string(missing)}
	}

	if len(filtered) != len(g.permutableKeys) {
		return nil, &WrongKeyNumberError{Have: len(filtered), Expected: len(g.permutableKeys)}
	}

	return filtered, nil
}

// generateUnchecked builds a Layout from a permutation already known to be
// valid (same multiset as the template's permutable characters, in
// traversal order).
func (g *LayoutGenerator) generateUnchecked(chars []rune) (*Layout, error) {
	base := g.Base
	numLayers := base.NumLayers()
	numKeys := len(base.Keys)

	charAtKey := make([]rune, numKeys)
	for i, ki := range g.permutableKeys {
		charAtKey[ki] = chars[i]
	}

	// For a permuted key, find the template key whose base-layer symbol
	// equals the assigned character, so its whole per-layer symbol block
	// (aside from fixed layers) travels with it.
	templateKeyForChar := make(map[rune]int, len(g.permutableKeys))
	for _, ki := range g.permutableKeys {
		r := []rune(base.Keys[ki][0])[0]
		templateKeyForChar[r] = ki
	}

	symbols := make([][]rune, numKeys) // per key: per-layer symbol (0 if none)
	for i := range symbols {
		symbols[i] = make([]rune, numLayers)
	}

	for ki := 0; ki < numKeys; ki++ {
		if base.FixedKeys[ki] {
			for layer := 0; layer < numLayers; layer++ {
				symbols[ki][layer] = firstRune(base.Keys[ki][layer])
			}
			continue
		}

		srcKey := templateKeyForChar[charAtKey[ki]]
		for layer := 0; layer < numLayers; layer++ {
			if isFixedLayer(base, layer) {
				symbols[ki][layer] = firstRune(base.Keys[ki][layer])
			} else {
				symbols[ki][layer] = firstRune(base.Keys[srcKey][layer])
			}
		}
	}

	return g.assemble(symbols)
}

func isFixedLayer(base *BaseLayout, layer int) bool {
	if base.GroupedLayers > 0 {
		return false
	}
	if layer >= len(base.FixedLayers) {
		return false
	}
	return base.FixedLayers[layer]
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// assemble builds LayerKeys/KeyLayers from a fully-resolved per-key,
// per-layer symbol table, marks modifiers, resolves each non-base LayerKey's
// modifier list, and builds the symbol index.
func (g *LayoutGenerator) assemble(symbols [][]rune) (*Layout, error) {
	base := g.Base
	numLayers := base.NumLayers()
	numKeys := len(base.Keys)

	layerKeys := make([]LayerKey, 0, numKeys*numLayers)
	keyLayers := make([][]LayerKeyIndex, numKeys)
	for i := range keyLayers {
		keyLayers[i] = make([]LayerKeyIndex, numLayers)
	}

	// modifierChar -> true, so we know a layer-key is a modifier once its
	// symbol appears anywhere in the template's modifier table.
	modifierChars := make(map[rune]bool)
	for _, byHand := range base.Modifiers {
		for _, chars := range byHand {
			for _, c := range chars {
				modifierChars[c] = true
			}
		}
	}

	idx := 0
	for ki := 0; ki < numKeys; ki++ {
		for layer := 0; layer < numLayers; layer++ {
			sym := symbols[ki][layer]
			lk := LayerKey{
				Index:      idx,
				Layer:      layer,
				Key:        ki,
				Symbol:     sym,
				IsFixed:    base.FixedKeys[ki] || isFixedLayer(base, layer),
				IsModifier: modifierChars[sym],
			}
			layerKeys = append(layerKeys, lk)
			keyLayers[ki][layer] = idx
			idx++
		}
	}

	l := newLayout("", base.Keyboard, layerKeys, keyLayers, base.LayerCosts)

	// Resolve each non-base LayerKey's modifier list: for layer L>0, look up
	// the modifier table for layer L-1 on the hand opposite this key's hand,
	// translated through the symbol index.
	for i := range l.LayerKeys {
		lk := &l.LayerKeys[i]
		if lk.Layer == 0 || lk.Symbol == 0 {
			continue
		}
		tableLayer := lk.Layer - 1
		if tableLayer >= len(base.Modifiers) {
			continue
		}
		key := base.Keyboard.Key(lk.Key)
		oppHand := key.Hand.Other()

		chars, ok := base.Modifiers[tableLayer][oppHand]
		if !ok {
			chars, ok = base.Modifiers[tableLayer][key.Hand]
			if !ok {
				continue
			}
		}
		mods := make([]LayerKeyIndex, 0, len(chars))
		for _, c := range chars {
			if modIdx, found := l.GetLayerKeyIndexForChar(c); found {
				mods = append(mods, modIdx)
			}
		}
		lk.Modifiers = mods
	}

	return l, nil
}

// GroupedLayoutGenerator behaves like LayoutGenerator except permutation
// characters are consumed in groups of Base.GroupedLayers: the template's
// per-character layer block is copied as a group, cycling if the template
// has more layers than the group size. Layers cannot be fixed individually;
// only the whole step is grouped or not.
type GroupedLayoutGenerator struct {
	*LayoutGenerator
}

// NewGroupedLayoutGenerator wraps base as a grouped-layer generator.
func NewGroupedLayoutGenerator(base *BaseLayout) (*GroupedLayoutGenerator, error) {
	if base.GroupedLayers <= 0 {
		return nil, fmt.Errorf("keycraft: grouped layout generator requires GroupedLayers > 0")
	}
	inner, err := NewLayoutGenerator(base)
	if err != nil {
		return nil, err
	}
	return &GroupedLayoutGenerator{LayoutGenerator: inner}, nil
}

// Generate behaves like LayoutGenerator.Generate but copies each permuted
// key's layer block in GroupedLayers-sized steps, cycling the template's
// layer block if it runs out before numLayers is reached.
func (g *GroupedLayoutGenerator) Generate(permutation string) (*Layout, error) {
	chars, err := g.validate(permutation)
	if err != nil {
		return nil, err
	}

	base := g.Base
	numLayers := base.NumLayers()
	numKeys := len(base.Keys)
	group := base.GroupedLayers

	charAtKey := make([]rune, numKeys)
	for i, ki := range g.permutableKeys {
		charAtKey[ki] = chars[i]
	}
	templateKeyForChar := make(map[rune]int, len(g.permutableKeys))
	for _, ki := range g.permutableKeys {
		r := []rune(base.Keys[ki][0])[0]
		templateKeyForChar[r] = ki
	}

	symbols := make([][]rune, numKeys)
	for i := range symbols {
		symbols[i] = make([]rune, numLayers)
	}

	for ki := 0; ki < numKeys; ki++ {
		if base.FixedKeys[ki] {
			for layer := 0; layer < numLayers; layer++ {
				symbols[ki][layer] = firstRune(base.Keys[ki][layer])
			}
			continue
		}
		srcKey := templateKeyForChar[charAtKey[ki]]
		for layer := 0; layer < numLayers; layer++ {
			symbols[ki][layer] = firstRune(base.Keys[srcKey][layer%group])
		}
	}

	return g.assemble(symbols)
}

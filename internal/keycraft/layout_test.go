package keycraft

import "testing"

func TestLayoutStringRendersOneRow(t *testing.T) {
	kb := testKeyboard()
	gen, err := NewLayoutGenerator(testBaseLayout(kb))
	if err != nil {
		t.Fatalf("NewLayoutGenerator: %v", err)
	}
	layout, err := gen.Generate("ba")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := "q  b  a  z  "
	if got := layout.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLayoutGetLayerKeyIndexForCharMissing(t *testing.T) {
	kb := testKeyboard()
	gen, _ := NewLayoutGenerator(testBaseLayout(kb))
	layout, _ := gen.Generate("ba")

	if _, ok := layout.GetLayerKeyIndexForChar('x'); ok {
		t.Error("expected 'x' to be absent from the layout's symbol index")
	}
}

func TestLayoutGetLayerKeyForChar(t *testing.T) {
	kb := testKeyboard()
	gen, _ := NewLayoutGenerator(testBaseLayout(kb))
	layout, _ := gen.Generate("ba")

	lk, ok := layout.GetLayerKeyForChar('q')
	if !ok {
		t.Fatal("expected 'q' to be found")
	}
	if lk.Key != 0 {
		t.Errorf("'q' LayerKey.Key = %d, want 0", lk.Key)
	}
}

func TestLayoutResolveModifiersBaseLayerHasNoModifiers(t *testing.T) {
	kb := testKeyboard()
	gen, _ := NewLayoutGenerator(testBaseLayout(kb))
	layout, _ := gen.Generate("ba")

	idx, ok := layout.GetLayerKeyIndexForChar('q')
	if !ok {
		t.Fatal("expected 'q' to be found")
	}
	base, mods := layout.ResolveModifiers(idx)
	if base != idx {
		t.Errorf("base-layer key should resolve to itself, got base=%d idx=%d", base, idx)
	}
	if len(mods) != 0 {
		t.Errorf("base-layer key should have no modifiers, got %v", mods)
	}
}

func TestLayoutGetBaseLayerKeyIndex(t *testing.T) {
	kb := testKeyboard()
	gen, _ := NewLayoutGenerator(testBaseLayout(kb))
	layout, _ := gen.Generate("ba")

	idx, _ := layout.GetLayerKeyIndexForChar('a')
	if got := layout.GetBaseLayerKeyIndex(idx); got != idx {
		t.Errorf("GetBaseLayerKeyIndex = %d, want %d (already base layer)", got, idx)
	}
}

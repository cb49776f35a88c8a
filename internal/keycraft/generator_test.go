package keycraft

import "testing"

// testKeyboard builds a tiny 4-key single-row keyboard for generator tests:
// two fixed keys and two permutable keys, all on the left hand.
func testKeyboard() *Keyboard {
	return &Keyboard{
		Name: "test",
		Keys: []Key{
			{Index: 0, Position: MatrixPosition{Column: 0, Row: 0}, Hand: Left, Finger: Pinky},
			{Index: 1, Position: MatrixPosition{Column: 1, Row: 0}, Hand: Left, Finger: Ring},
			{Index: 2, Position: MatrixPosition{Column: 2, Row: 0}, Hand: Left, Finger: Middle},
			{Index: 3, Position: MatrixPosition{Column: 3, Row: 0}, Hand: Left, Finger: Index},
		},
	}
}

func testBaseLayout(kb *Keyboard) *BaseLayout {
	return &BaseLayout{
		Keyboard: kb,
		Keys: [][]string{
			{"q"}, // fixed
			{"a"}, // permutable
			{"b"}, // permutable
			{"z"}, // fixed
		},
		FixedKeys:   []bool{true, false, false, true},
		FixedLayers: []bool{false},
		LayerCosts:  []float64{0},
	}
}

func TestLayoutGeneratorPermutableKeys(t *testing.T) {
	kb := testKeyboard()
	g, err := NewLayoutGenerator(testBaseLayout(kb))
	if err != nil {
		t.Fatalf("NewLayoutGenerator: %v", err)
	}

	got := g.PermutableKeys()
	if len(got) != 2 {
		t.Fatalf("expected 2 permutable keys, got %d", len(got))
	}
}

func TestLayoutGeneratorGenerateValid(t *testing.T) {
	kb := testKeyboard()
	g, err := NewLayoutGenerator(testBaseLayout(kb))
	if err != nil {
		t.Fatalf("NewLayoutGenerator: %v", err)
	}

	layout, err := g.Generate("ba")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	idx, ok := layout.GetLayerKeyIndexForChar('b')
	if !ok {
		t.Fatal("expected 'b' to be placed somewhere on the layout")
	}
	if layout.LayerKeyAt(idx).Key != 1 {
		t.Errorf("'b' landed on key %d, want key 1 (first permutable slot)", layout.LayerKeyAt(idx).Key)
	}
}

func TestLayoutGeneratorGenerateErrors(t *testing.T) {
	kb := testKeyboard()
	g, err := NewLayoutGenerator(testBaseLayout(kb))
	if err != nil {
		t.Fatalf("NewLayoutGenerator: %v", err)
	}

	tests := []struct {
		name        string
		permutation string
	}{
		{"duplicate", "aa"},
		{"unsupported", "ax"},
		{"missing", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(tt.permutation)
			if err == nil {
				t.Fatalf("expected an error for permutation %q", tt.permutation)
			}
		})
	}
}

func TestLayoutGeneratorIgnoresWhitespace(t *testing.T) {
	kb := testKeyboard()
	g, err := NewLayoutGenerator(testBaseLayout(kb))
	if err != nil {
		t.Fatalf("NewLayoutGenerator: %v", err)
	}

	if _, err := g.Generate(" b a \n"); err != nil {
		t.Fatalf("Generate with whitespace: %v", err)
	}
}

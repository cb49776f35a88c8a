package keycraft

import (
	"fmt"
	"math"
	"strings"
)

// ShortcutKeys penalizes configured shortcut characters (typically "cvxz")
// sitting outside the leftmost n columns, where common terminal/editor
// shortcuts are awkward to reach one-handed.
type ShortcutKeys struct {
	Chars               string  `mapstructure:"chars"`
	WithinNLeftmostCols int     `mapstructure:"within_n_leftmost_cols"`
	Cost                float64 `mapstructure:"cost"`
}

func (m *ShortcutKeys) Name() string { return "Shortcut Keys" }

func (m *ShortcutKeys) TotalCost(layout *Layout) (float64, string) {
	var total float64
	var offenders []string
	for _, c := range m.Chars {
		lk, ok := layout.GetLayerKeyForChar(c)
		if !ok {
			continue
		}
		key := layout.Keyboard.Key(lk.Key)
		if key.Position.Column >= m.WithinNLeftmostCols {
			total += m.Cost
			offenders = append(offenders, string(c))
		}
	}
	msg := ""
	if len(offenders) > 0 {
		msg = fmt.Sprintf("out of reach: %s", strings.Join(offenders, ","))
	}
	return total, msg
}

// AsymmetricKeys (a.k.a. SimilarLetterGroups) compares, for pairs of
// character groups meant to feel alike (e.g. "aou" vs "äöü"), how
// consistently their hand direction, finger offset, column distance, and
// row direction line up; inconsistency is penalized logarithmically.
type AsymmetricKeys struct {
	GroupA string `mapstructure:"group_a"`
	GroupB string `mapstructure:"group_b"`
}

func (m *AsymmetricKeys) Name() string { return "Asymmetric Keys" }

func (m *AsymmetricKeys) TotalCost(layout *Layout) (float64, string) {
	a := []rune(m.GroupA)
	b := []rune(m.GroupB)
	n := len(a)
	if n == 0 || n != len(b) {
		return 0, ""
	}

	var handMismatch, fingerMismatch, colMismatch, rowMismatch int
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			lkA1, ok1 := layout.GetLayerKeyForChar(a[i])
			lkA2, ok2 := layout.GetLayerKeyForChar(a[j])
			lkB1, ok3 := layout.GetLayerKeyForChar(b[i])
			lkB2, ok4 := layout.GetLayerKeyForChar(b[j])
			if !ok1 || !ok2 || !ok3 || !ok4 {
				continue
			}
			pairs++

			kA1 := layout.Keyboard.Key(lkA1.Key)
			kA2 := layout.Keyboard.Key(lkA2.Key)
			kB1 := layout.Keyboard.Key(lkB1.Key)
			kB2 := layout.Keyboard.Key(lkB2.Key)

			handDirA := kA2.Hand != kA1.Hand
			handDirB := kB2.Hand != kB1.Hand
			if handDirA != handDirB {
				handMismatch++
			}

			fingerDiffA := int(kA2.Finger) - int(kA1.Finger)
			fingerDiffB := int(kB2.Finger) - int(kB1.Finger)
			if fingerDiffA != fingerDiffB {
				fingerMismatch++
			}

			colDistA := kA2.Position.Column - kA1.Position.Column
			colDistB := kB2.Position.Column - kB1.Position.Column
			if colDistA != colDistB {
				colMismatch++
			}

			rowDirA := kA2.Position.Row - kA1.Position.Row
			rowDirB := kB2.Position.Row - kB1.Position.Row
			if (rowDirA > 0) != (rowDirB > 0) || (rowDirA < 0) != (rowDirB < 0) {
				rowMismatch++
			}
		}
	}
	if pairs == 0 {
		return 0, ""
	}

	rate := func(mismatch int) float64 { return float64(mismatch) / float64(pairs) }
	cost := math.Log(1+rate(handMismatch)) +
		math.Log(1+rate(fingerMismatch)) +
		math.Log(1+rate(colMismatch)) +
		math.Log(1+rate(rowMismatch))

	return cost, ""
}
